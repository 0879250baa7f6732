// Package assemble concatenates per-ID-group reconciliation results into
// the two output batches the engine returns.
package assemble

import (
	"github.com/gingermike/bitemporal-timeseries/pkg/reconcile"
	"github.com/gingermike/bitemporal-timeseries/pkg/row"
	"github.com/gingermike/bitemporal-timeseries/pkg/schema"
)

// Assemble concatenates every group result's expirations into one batch
// and every group result's (conflated) insertions into another, both
// carrying sch. Order within each output batch is unspecified.
func Assemble(sch schema.Schema, results []reconcile.Result) (toExpire, toInsert row.Batch) {
	expireRows := make([]row.Row, 0)
	insertRows := make([]row.Row, 0)
	for _, r := range results {
		expireRows = append(expireRows, r.ToExpire...)
		insertRows = append(insertRows, r.ToInsert...)
	}
	return row.Batch{Schema: sch, Rows: expireRows}, row.Batch{Schema: sch, Rows: insertRows}
}

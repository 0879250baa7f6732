// Package row defines the tabular batch representation the engine accepts
// and returns: a struct-of-rows batch rather than a columnar/Arrow layout,
// since columnar conversion is an external collaborator out of this
// library's scope.
package row

import (
	"time"

	"github.com/gingermike/bitemporal-timeseries/pkg/schema"
	"github.com/gingermike/bitemporal-timeseries/pkg/value"
)

// EFFInf is the distinguished far-future effective date meaning
// "currently in effect" when stored in EffectiveTo.
var EFFInf = time.Date(2260, 12, 31, 0, 0, 0, 0, time.UTC)

// ASOFInf is the distinguished far-future as-of timestamp marking the
// currently-known version when stored in AsOfTo.
var ASOFInf = time.Date(2260, 12, 31, 23, 59, 59, 0, time.UTC)

// Row is one logical bitemporal record.
type Row struct {
	Identity []value.Value
	Values   []value.Value

	EffectiveFrom time.Time
	EffectiveTo   time.Time
	AsOfFrom      time.Time
	AsOfTo        time.Time

	// Fingerprint is populated during reconciliation preparation; it is the
	// zero string before that point.
	Fingerprint string

	// OriginalIndex is this row's position within its source batch, set by
	// the caller or by Grouper before any grouping occurs, so that splits
	// and audit trails can be traced back to the row that produced them.
	OriginalIndex int
}

// IsLive reports whether this row's as-of interval is still open, i.e. it
// is part of the current live projection.
func (r Row) IsLive() bool {
	return r.AsOfTo.Equal(ASOFInf)
}

// Clone returns a deep-enough copy of r suitable for emitting as an
// independent expire/insert descriptor (identity/value slices are copied so
// later mutation of one descriptor never aliases another's).
func (r Row) Clone() Row {
	out := r
	out.Identity = append([]value.Value(nil), r.Identity...)
	out.Values = append([]value.Value(nil), r.Values...)
	return out
}

// Batch is a schema plus an ordered set of rows.
type Batch struct {
	Schema schema.Schema
	Rows   []Row
}

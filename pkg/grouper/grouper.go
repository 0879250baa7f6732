// Package grouper partitions current and update batches into per-identity
// sub-batches, the in-process analogue of the PrimaryKeyColumns-keyed
// MERGE ... USING join this codebase's SCD2 loader runs in SQL.
package grouper

import (
	"fmt"

	"github.com/gingermike/bitemporal-timeseries/pkg/rcerrors"
	"github.com/gingermike/bitemporal-timeseries/pkg/row"
	"github.com/gingermike/bitemporal-timeseries/pkg/schema"
	"github.com/gingermike/bitemporal-timeseries/pkg/value"
)

// Group holds every current and update row sharing one identity tuple.
type Group struct {
	// IDKey is the canonical-encoded identity tuple, an opaque grouping
	// key not intended for display.
	IDKey string
	// Identity is the typed identity tuple, for callers that need it
	// (e.g. error context).
	Identity []value.Value

	Current []row.Row
	Updates []row.Row
}

// Partition partitions current and updates by identity column tuple. Every
// identity appearing in either input appears in exactly one output Group.
// Rows retain the order they had in their source batch.
func Partition(sch schema.Schema, current, updates row.Batch) ([]Group, error) {
	if err := sch.Validate(); err != nil {
		return nil, rcerrors.Validation("grouper.group", err.Error(), err)
	}

	order := make([]string, 0)
	groups := make(map[string]*Group)

	get := func(r row.Row) (*Group, error) {
		if len(r.Identity) != len(sch.Identity) {
			return nil, rcerrors.Validation("grouper.group", fmt.Sprintf(
				"row identity arity mismatch: schema wants %d columns, row has %d",
				len(sch.Identity), len(r.Identity)), nil)
		}
		key := string(encodeIdentity(r.Identity))
		g, ok := groups[key]
		if !ok {
			g = &Group{IDKey: key, Identity: append([]value.Value(nil), r.Identity...)}
			groups[key] = g
			order = append(order, key)
		}
		return g, nil
	}

	for i, r := range current.Rows {
		r.OriginalIndex = i
		g, err := get(r)
		if err != nil {
			return nil, err
		}
		g.Current = append(g.Current, r)
	}
	for i, r := range updates.Rows {
		r.OriginalIndex = i
		g, err := get(r)
		if err != nil {
			return nil, err
		}
		g.Updates = append(g.Updates, r)
	}

	out := make([]Group, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out, nil
}

func encodeIdentity(identity []value.Value) []byte {
	var buf []byte
	for _, v := range identity {
		buf = v.CanonicalEncode(buf)
	}
	return buf
}


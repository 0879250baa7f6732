// Package conflate merges temporally adjacent insert rows that share a
// value fingerprint, the post-pass that keeps the reconciler itself
// (pkg/reconcile) free of merge-state bookkeeping.
package conflate

import (
	"sort"

	"github.com/gingermike/bitemporal-timeseries/pkg/row"
)

// Conflate sorts inserts by EffectiveFrom and merges any run of adjacent
// rows that share a Fingerprint, touch at the boundary (one's EffectiveTo
// equals the next's EffectiveFrom), and share AsOfFrom. The AsOfFrom guard
// prevents merging across distinct transactional origins. Conflate does not
// mutate its input slice; it returns a new slice.
func Conflate(inserts []row.Row) []row.Row {
	if len(inserts) == 0 {
		return inserts
	}

	sorted := append([]row.Row(nil), inserts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom) })

	out := make([]row.Row, 0, len(sorted))
	acc := sorted[0]
	for _, next := range sorted[1:] {
		if acc.Fingerprint == next.Fingerprint &&
			acc.EffectiveTo.Equal(next.EffectiveFrom) &&
			acc.AsOfFrom.Equal(next.AsOfFrom) {
			acc.EffectiveTo = next.EffectiveTo
			continue
		}
		out = append(out, acc)
		acc = next
	}
	out = append(out, acc)
	return out
}

package reconcile

import (
	"sort"
	"time"

	"github.com/gingermike/bitemporal-timeseries/pkg/row"
)

// updateSegment is one conflict-resolved span of an update batch: either an
// update row in full, or the surviving remainder of one after a
// later-in-input-order update clipped it.
type updateSegment struct {
	From, To time.Time
	Source   row.Row // carries Identity, Values, Fingerprint to emit from
}

// resolveUpdateConflicts walks updates in input order, maintaining a list
// of disjoint accepted segments. Each new update clips any previously
// accepted segment it overlaps down to its non-overlapping remainder(s),
// then is appended whole — "later input order wins on overlap" without a
// secondary sort.
func resolveUpdateConflicts(updates []row.Row) []updateSegment {
	var accepted []updateSegment
	for _, u := range updates {
		next := make([]updateSegment, 0, len(accepted)+1)
		for _, s := range accepted {
			if !overlaps(s.From, s.To, u.EffectiveFrom, u.EffectiveTo) {
				next = append(next, s)
				continue
			}
			if s.From.Before(u.EffectiveFrom) {
				next = append(next, updateSegment{From: s.From, To: u.EffectiveFrom, Source: s.Source})
			}
			if s.To.After(u.EffectiveTo) {
				next = append(next, updateSegment{From: u.EffectiveTo, To: s.To, Source: s.Source})
			}
		}
		next = append(next, updateSegment{From: u.EffectiveFrom, To: u.EffectiveTo, Source: u})
		sort.Slice(next, func(i, j int) bool { return next[i].From.Before(next[j].From) })
		accepted = next
	}
	return accepted
}

// reconcileDelta implements SPEC_FULL §4.3.2.
func reconcileDelta(live []row.Row, updates []row.Row, systemTime time.Time) (Result, error) {
	accepted := resolveUpdateConflicts(updates)

	var res Result

	for _, c := range live {
		var intersecting []updateSegment
		for _, s := range accepted {
			if overlaps(c.EffectiveFrom, c.EffectiveTo, s.From, s.To) {
				intersecting = append(intersecting, s)
			}
		}
		if len(intersecting) == 0 {
			continue
		}

		res.ToExpire = append(res.ToExpire, expireOf(c, systemTime))

		sort.Slice(intersecting, func(i, j int) bool { return intersecting[i].From.Before(intersecting[j].From) })

		cursor := c.EffectiveFrom
		for _, s := range intersecting {
			if s.From.After(cursor) {
				res.ToInsert = append(res.ToInsert, insertOf(c, c.Values, c.Fingerprint, cursor, s.From, systemTime))
			}
			if s.To.After(cursor) {
				cursor = s.To
			}
		}
		if c.EffectiveTo.After(cursor) {
			res.ToInsert = append(res.ToInsert, insertOf(c, c.Values, c.Fingerprint, cursor, c.EffectiveTo, systemTime))
		}
	}

	for _, s := range accepted {
		res.ToInsert = append(res.ToInsert, insertOf(s.Source, s.Source.Values, s.Source.Fingerprint, s.From, s.To, systemTime))
	}

	return res, nil
}

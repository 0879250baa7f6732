package reconcile

import (
	"time"

	"github.com/gingermike/bitemporal-timeseries/pkg/row"
)

// reconcileFullState implements SPEC_FULL §4.3.3. updates describe the
// complete desired live projection for this identity; the reconciler emits
// only the rows needed to move current state to that projection, plus a
// tombstone for each surviving current segment when the identity
// disappears from updates entirely.
func reconcileFullState(live, updates []row.Row, systemTime time.Time) (Result, error) {
	matched := make([]bool, len(updates))
	var res Result

	for _, c := range live {
		consumedBy := -1
		for i, u := range updates {
			if matched[i] {
				continue
			}
			if c.EffectiveFrom.Equal(u.EffectiveFrom) && c.EffectiveTo.Equal(u.EffectiveTo) && c.Fingerprint == u.Fingerprint {
				consumedBy = i
				break
			}
		}
		if consumedBy >= 0 {
			matched[consumedBy] = true
			continue
		}

		res.ToExpire = append(res.ToExpire, expireOf(c, systemTime))

		if len(updates) == 0 {
			res.ToInsert = append(res.ToInsert, tombstoneOf(c, systemTime))
		}
	}

	for i, u := range updates {
		if !matched[i] {
			res.ToInsert = append(res.ToInsert, insertOf(u, u.Values, u.Fingerprint, u.EffectiveFrom, u.EffectiveTo, systemTime))
		}
	}

	return res, nil
}

// tombstoneOf marks c as logically deleted as of systemTime's calendar
// day: a live insert whose effective interval ends at that day, preserving
// the audit trail for the deletion. If c already started on or after that
// day (a future-dated current row being deleted the same day it starts),
// the tombstone's interval is widened by one day to keep
// effective_from < effective_to.
func tombstoneOf(c row.Row, systemTime time.Time) row.Row {
	day := time.Date(systemTime.Year(), systemTime.Month(), systemTime.Day(), 0, 0, 0, 0, time.UTC)
	effectiveTo := day
	if !effectiveTo.After(c.EffectiveFrom) {
		effectiveTo = c.EffectiveFrom.AddDate(0, 0, 1)
	}
	return insertOf(c, c.Values, c.Fingerprint, c.EffectiveFrom, effectiveTo, systemTime)
}

// Package reconcile implements the per-ID-group timeline reconciler: the
// generalization of this codebase's SCD2 expire/insert logic
// (teacherref/lake/pkg/duck/scd.go, updateHistory) from a single-row
// replace to effective-interval splitting across two operating modes.
package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/gingermike/bitemporal-timeseries/pkg/fingerprint"
	"github.com/gingermike/bitemporal-timeseries/pkg/grouper"
	"github.com/gingermike/bitemporal-timeseries/pkg/rcerrors"
	"github.com/gingermike/bitemporal-timeseries/pkg/row"
	"github.com/gingermike/bitemporal-timeseries/pkg/value"
)

// Mode selects how updates are interpreted.
type Mode int

const (
	// ModeDelta treats updates as changes overlaid on the current
	// timeline: an update overwrites whatever it overlaps.
	ModeDelta Mode = iota
	// ModeFullState treats updates as the complete desired live
	// projection; the reconciler emits the minimal diff, including
	// tombstones for identities that vanish entirely.
	ModeFullState
)

func (m Mode) String() string {
	switch m {
	case ModeDelta:
		return "delta"
	case ModeFullState:
		return "full_state"
	default:
		return fmt.Sprintf("unknown_mode(%d)", int(m))
	}
}

// Result is one ID group's reconciliation output.
type Result struct {
	ToExpire []row.Row
	ToInsert []row.Row
}

// Group reconciles one grouper.Group. systemTime is the single microsecond
// timestamp assigned to every expiration's AsOfTo and every insertion's
// AsOfFrom in this run.
func Group(g grouper.Group, systemTime time.Time, mode Mode) (Result, error) {
	live, err := prepare(g)
	if err != nil {
		return Result{}, err
	}

	switch mode {
	case ModeDelta:
		return reconcileDelta(live, g.Updates, systemTime)
	case ModeFullState:
		return reconcileFullState(live, g.Updates, systemTime)
	default:
		return Result{}, rcerrors.Validation("reconcile.group", fmt.Sprintf("unknown mode %d", int(mode)), nil)
	}
}

// prepare filters g.Current to the live projection, sorts it by
// EffectiveFrom, fingerprints every current and update row, and verifies
// the live projection is itself non-overlapping.
func prepare(g grouper.Group) ([]row.Row, error) {
	live := make([]row.Row, 0, len(g.Current))
	for _, c := range g.Current {
		c.Fingerprint = fingerprint.Digest(c.Values)
		if c.IsLive() {
			live = append(live, c)
		}
	}
	for i := range g.Updates {
		g.Updates[i].Fingerprint = fingerprint.Digest(g.Updates[i].Values)
	}

	sort.Slice(live, func(i, j int) bool { return live[i].EffectiveFrom.Before(live[j].EffectiveFrom) })

	for i := 1; i < len(live); i++ {
		if live[i].EffectiveFrom.Before(live[i-1].EffectiveTo) {
			return nil, rcerrors.Invariant("reconcile.prepare",
				fmt.Sprintf("overlapping live segments in current state: [%s,%s) and [%s,%s)",
					live[i-1].EffectiveFrom, live[i-1].EffectiveTo, live[i].EffectiveFrom, live[i].EffectiveTo),
				nil).WithIdentity(g.IDKey)
		}
	}
	return live, nil
}

func overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return aFrom.Before(bTo) && bFrom.Before(aTo)
}

func expireOf(c row.Row, systemTime time.Time) row.Row {
	out := c.Clone()
	out.AsOfTo = systemTime
	return out
}

// insertOf builds a live insert row from identity and value-bearing source
// rows (which may be the same row) over [from, to), stamped with the run's
// system time. Every insert in this reconciler carries AsOfFrom = systemTime
// regardless of whatever as_of_from the source update row may have carried:
// the external interface defines as_of_from as caller-ignorable input,
// replaced uniformly by the per-run system time (SPEC_FULL §6).
func insertOf(identitySrc row.Row, values []value.Value, fp string, from, to, systemTime time.Time) row.Row {
	return row.Row{
		Identity:      append([]value.Value(nil), identitySrc.Identity...),
		Values:        append([]value.Value(nil), values...),
		EffectiveFrom: from,
		EffectiveTo:   to,
		AsOfFrom:      systemTime,
		AsOfTo:        row.ASOFInf,
		Fingerprint:   fp,
	}
}

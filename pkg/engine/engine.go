// Package engine is the top-level orchestration entry point most callers
// need: it validates input, then wires grouper -> reconcile -> conflate ->
// dispatch -> assemble. Grounded on this codebase's SCDTableViaCSV outer
// function (teacherref/lake/pkg/duck/scd.go) — validate, stage, compute,
// apply, all under one call — minus persistence and minus retries, since
// this core is a pure, non-retrying transform.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/gingermike/bitemporal-timeseries/pkg/assemble"
	"github.com/gingermike/bitemporal-timeseries/pkg/conflate"
	"github.com/gingermike/bitemporal-timeseries/pkg/dispatch"
	"github.com/gingermike/bitemporal-timeseries/pkg/grouper"
	"github.com/gingermike/bitemporal-timeseries/pkg/rcerrors"
	"github.com/gingermike/bitemporal-timeseries/pkg/reconcile"
	"github.com/gingermike/bitemporal-timeseries/pkg/row"
	"github.com/gingermike/bitemporal-timeseries/pkg/schema"
)

const (
	defaultParallelIDThreshold  = 50
	defaultParallelRowThreshold = 10000
)

// Options configures one Reconcile call.
type Options struct {
	Mode       reconcile.Mode
	Schema     schema.Schema
	SystemTime time.Time

	ParallelIDThreshold  int
	ParallelRowThreshold int
	MaxConcurrency       int

	// RunID correlates one Reconcile call's log lines. Generated with
	// uuid.NewString() if empty; logging-only, never affects output.
	RunID string
	// Clock times log lines only; SystemTime (always caller-supplied) is
	// what determines output, so that runs are reproducible independent
	// of wall-clock time.
	Clock clockwork.Clock
	// Logger defaults to slog.Default() if nil.
	Logger *slog.Logger
}

func (o *Options) setDefaults() {
	if o.ParallelIDThreshold == 0 {
		o.ParallelIDThreshold = defaultParallelIDThreshold
	}
	if o.ParallelRowThreshold == 0 {
		o.ParallelRowThreshold = defaultParallelRowThreshold
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

func (o Options) validate() error {
	if err := o.Schema.Validate(); err != nil {
		return rcerrors.Validation("engine.validate", "invalid schema", err)
	}
	if o.SystemTime.IsZero() {
		return rcerrors.Validation("engine.validate", "system_time is required", nil)
	}
	if o.Mode != reconcile.ModeDelta && o.Mode != reconcile.ModeFullState {
		return rcerrors.Validation("engine.validate", fmt.Sprintf("unknown mode %d", int(o.Mode)), nil)
	}
	return nil
}

// validateRows rejects malformed temporal columns before reconciliation
// starts: inverted intervals and non-day-aligned effective dates. as_of_*
// on the updates batch may be the zero time (ignored in favor of
// SystemTime); current rows must always carry a valid as_of interval.
func validateRows(batch row.Batch, requireAsOf bool, operation string) error {
	for i, r := range batch.Rows {
		if !r.EffectiveFrom.Before(r.EffectiveTo) {
			return rcerrors.Validation(operation, fmt.Sprintf("row %d: effective_from must be before effective_to", i), nil)
		}
		if !isDayAligned(r.EffectiveFrom) || !isDayAligned(r.EffectiveTo) {
			return rcerrors.Validation(operation, fmt.Sprintf("row %d: effective_from/effective_to must be day-aligned UTC", i), nil)
		}
		if requireAsOf || !r.AsOfFrom.IsZero() || !r.AsOfTo.IsZero() {
			if !r.AsOfFrom.Before(r.AsOfTo) {
				return rcerrors.Validation(operation, fmt.Sprintf("row %d: as_of_from must be before as_of_to", i), nil)
			}
			if !isMicrosecondAligned(r.AsOfFrom) || !isMicrosecondAligned(r.AsOfTo) {
				return rcerrors.Validation(operation, fmt.Sprintf("row %d: as_of_from/as_of_to must not carry sub-microsecond precision", i), nil)
			}
		}
	}
	return nil
}

func isDayAligned(t time.Time) bool {
	u := t.UTC()
	return u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0
}

func isMicrosecondAligned(t time.Time) bool {
	return t.Nanosecond()%1000 == 0
}

// Reconcile computes the minimal change set needed to move current to
// reflect updates, under opts.Mode. It returns the rows to expire and the
// rows to insert; applying both to the store is the caller's
// responsibility. A cancelled context yields an error and no partial
// change set.
func Reconcile(ctx context.Context, opts Options, current, updates row.Batch) (toExpire, toInsert row.Batch, err error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return row.Batch{}, row.Batch{}, err
	}
	if err := validateRows(current, true, "engine.reconcile"); err != nil {
		return row.Batch{}, row.Batch{}, err
	}
	if err := validateRows(updates, false, "engine.reconcile"); err != nil {
		return row.Batch{}, row.Batch{}, err
	}

	log := opts.Logger.With("run_id", opts.RunID, "mode", opts.Mode.String())
	start := opts.Clock.Now()
	log.Info("reconcile started",
		"current_rows", len(current.Rows),
		"update_rows", len(updates.Rows))

	groups, err := grouper.Partition(opts.Schema, current, updates)
	if err != nil {
		log.Error("reconcile failed: grouping", "error", err)
		return row.Batch{}, row.Batch{}, err
	}

	thresholds := dispatch.Thresholds{
		ParallelIDThreshold:  opts.ParallelIDThreshold,
		ParallelRowThreshold: opts.ParallelRowThreshold,
		MaxConcurrency:       opts.MaxConcurrency,
	}

	results, err := dispatch.Run(ctx, groups, thresholds, func(_ context.Context, g grouper.Group) (reconcile.Result, error) {
		res, err := reconcile.Group(g, opts.SystemTime, opts.Mode)
		if err != nil {
			return reconcile.Result{}, err
		}
		res.ToInsert = conflate.Conflate(res.ToInsert)
		return res, nil
	})
	if err != nil {
		log.Error("reconcile failed: group reconciliation", "error", err)
		return row.Batch{}, row.Batch{}, err
	}

	select {
	case <-ctx.Done():
		return row.Batch{}, row.Batch{}, rcerrors.Validation("engine.reconcile", "context cancelled before assembly", ctx.Err())
	default:
	}

	expireBatch, insertBatch := assemble.Assemble(opts.Schema, results)

	log.Info("reconcile completed",
		"duration", opts.Clock.Since(start).String(),
		"id_groups", len(groups),
		"to_expire", len(expireBatch.Rows),
		"to_insert", len(insertBatch.Rows))

	return expireBatch, insertBatch, nil
}

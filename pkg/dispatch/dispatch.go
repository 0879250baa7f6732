// Package dispatch decides whether ID groups are reconciled serially or
// fanned out over a worker pool, using the same pond.ResultPool idiom this
// codebase's telemetry data provider uses for per-entity concurrent fetch
// (teacherref/controlplane/telemetry/internal/data/{provider,latencies}.go).
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/alitto/pond/v2"

	"github.com/gingermike/bitemporal-timeseries/pkg/grouper"
	"github.com/gingermike/bitemporal-timeseries/pkg/rcerrors"
)

// Thresholds controls the serial-vs-parallel decision.
type Thresholds struct {
	// ParallelIDThreshold: at or above this many ID groups, run in
	// parallel regardless of the row count.
	ParallelIDThreshold int
	// ParallelRowThreshold: at or above this many total rows
	// (current+updates across all groups), run in parallel regardless of
	// the group count. Serial dispatch happens only when both counts are
	// below their thresholds.
	ParallelRowThreshold int
	// MaxConcurrency bounds the worker pool's size; 0 or a negative value
	// sizes the pool at runtime.GOMAXPROCS(0).
	MaxConcurrency int
}

// ShouldParallelize reports whether groups should be dispatched to a worker
// pool rather than processed on the calling goroutine: parallel whenever
// either threshold is exceeded, serial only when both are below their
// configured threshold.
func ShouldParallelize(groups []grouper.Group, t Thresholds) bool {
	if len(groups) >= t.ParallelIDThreshold {
		return true
	}
	rows := 0
	for _, g := range groups {
		rows += len(g.Current) + len(g.Updates)
	}
	return rows >= t.ParallelRowThreshold
}

// Run executes fn once per group, either serially or via a pond
// ResultPool, per ShouldParallelize's decision. It returns results in the
// same order as groups. Correctness never depends on which path runs:
// groups share no state, so this is purely a scheduling choice.
func Run[T any](ctx context.Context, groups []grouper.Group, t Thresholds, fn func(context.Context, grouper.Group) (T, error)) ([]T, error) {
	if !ShouldParallelize(groups, t) {
		out := make([]T, len(groups))
		for i, g := range groups {
			select {
			case <-ctx.Done():
				return nil, rcerrors.Validation("dispatch.run", "context cancelled", ctx.Err())
			default:
			}
			r, err := fn(ctx, g)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}

	maxConcurrency := t.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = runtime.GOMAXPROCS(0)
	}
	pool := pond.NewResultPool[T](maxConcurrency)
	group := pool.NewGroupContext(ctx)

	for _, g := range groups {
		g := g
		group.SubmitErr(func() (T, error) {
			r, err := fn(ctx, g)
			if err != nil {
				return r, fmt.Errorf("group %s: %w", g.IDKey, err)
			}
			return r, nil
		})
	}

	results, err := group.Wait()
	if err != nil {
		var zero []T
		var rcErr *rcerrors.Error
		if errors.As(err, &rcErr) {
			return zero, rcErr
		}
		return zero, rcerrors.ResourceExhaustion("dispatch.run", "parallel group reconciliation failed", err)
	}
	return results, nil
}

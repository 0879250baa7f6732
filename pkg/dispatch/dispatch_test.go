package dispatch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gingermike/bitemporal-timeseries/pkg/dispatch"
	"github.com/gingermike/bitemporal-timeseries/pkg/grouper"
	"github.com/gingermike/bitemporal-timeseries/pkg/row"
)

func TestShouldParallelizeBelowBothThresholds(t *testing.T) {
	t.Parallel()

	groups := make([]grouper.Group, 10)
	for i := range groups {
		groups[i].Current = []row.Row{{}}
	}
	require.False(t, dispatch.ShouldParallelize(groups, dispatch.Thresholds{
		ParallelIDThreshold:  50,
		ParallelRowThreshold: 10000,
	}))
}

func TestShouldParallelizeAboveIDThresholdAloneIsParallel(t *testing.T) {
	t.Parallel()

	// 500 ID groups but only 200 total rows: ID threshold alone must be
	// enough to trigger parallel dispatch (OR-semantics), even though the
	// row count never gets close to ParallelRowThreshold.
	groups := make([]grouper.Group, 500)
	for i := range groups {
		if i%100 == 0 {
			groups[i].Current = make([]row.Row, 40)
		}
	}
	require.True(t, dispatch.ShouldParallelize(groups, dispatch.Thresholds{
		ParallelIDThreshold:  50,
		ParallelRowThreshold: 10000,
	}))
}

func TestShouldParallelizeAboveRowThresholdAloneIsParallel(t *testing.T) {
	t.Parallel()

	groups := make([]grouper.Group, 5)
	for i := range groups {
		groups[i].Current = make([]row.Row, 3000)
	}
	require.True(t, dispatch.ShouldParallelize(groups, dispatch.Thresholds{
		ParallelIDThreshold:  50,
		ParallelRowThreshold: 10000,
	}))
}

func TestShouldParallelizeAboveBothThresholds(t *testing.T) {
	t.Parallel()

	groups := make([]grouper.Group, 100)
	for i := range groups {
		groups[i].Current = make([]row.Row, 200)
	}
	require.True(t, dispatch.ShouldParallelize(groups, dispatch.Thresholds{
		ParallelIDThreshold:  50,
		ParallelRowThreshold: 10000,
	}))
}

func TestRunSerialPreservesOrder(t *testing.T) {
	t.Parallel()

	groups := []grouper.Group{{IDKey: "a"}, {IDKey: "b"}, {IDKey: "c"}}
	out, err := dispatch.Run(context.Background(), groups, dispatch.Thresholds{
		ParallelIDThreshold:  50,
		ParallelRowThreshold: 10000,
	}, func(_ context.Context, g grouper.Group) (string, error) {
		return g.IDKey, nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, out)
}

func TestRunParallelPreservesOrder(t *testing.T) {
	t.Parallel()

	groups := make([]grouper.Group, 60)
	for i := range groups {
		groups[i].IDKey = string(rune('a' + i%26))
		groups[i].Current = make([]row.Row, 200)
	}
	out, err := dispatch.Run(context.Background(), groups, dispatch.Thresholds{
		ParallelIDThreshold:  50,
		ParallelRowThreshold: 1000,
	}, func(_ context.Context, g grouper.Group) (string, error) {
		return g.IDKey, nil
	})
	require.NoError(t, err)
	require.Len(t, out, 60)
	for i, v := range out {
		require.Equal(t, groups[i].IDKey, v)
	}
}

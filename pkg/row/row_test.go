package row_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gingermike/bitemporal-timeseries/pkg/row"
	"github.com/gingermike/bitemporal-timeseries/pkg/value"
)

func TestIsLive(t *testing.T) {
	t.Parallel()

	live := row.Row{AsOfTo: row.ASOFInf}
	require.True(t, live.IsLive())

	expired := row.Row{AsOfTo: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.False(t, expired.IsLive())
}

func TestCloneIndependence(t *testing.T) {
	t.Parallel()

	r := row.Row{
		Identity: []value.Value{value.String("a")},
		Values:   []value.Value{value.Int64(1)},
	}
	c := r.Clone()
	c.Identity[0] = value.String("b")
	require.Equal(t, "a", mustString(t, r.Identity[0]))
	require.Equal(t, "b", mustString(t, c.Identity[0]))
}

func mustString(t *testing.T, v value.Value) string {
	t.Helper()
	s, ok := v.AsString()
	require.True(t, ok)
	return s
}

package rcerrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gingermike/bitemporal-timeseries/pkg/rcerrors"
)

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := rcerrors.Validation("reconcile.prepare", "effective_from >= effective_to", cause)
	require.Contains(t, err.Error(), "validation_error")
	require.Contains(t, err.Error(), "reconcile.prepare")
	require.Contains(t, err.Error(), "boom")
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	err := rcerrors.Invariant("reconcile.verify", "overlapping live segments", cause)
	require.True(t, errors.Is(err, cause))
}

func TestWithContextIsImmutable(t *testing.T) {
	t.Parallel()

	base := rcerrors.Validation("op", "msg", nil)
	withCtx := base.WithContext("row", 3)

	require.Nil(t, base.GetContextMap()["row"])
	require.Equal(t, 3, withCtx.GetContextMap()["row"])
}

func TestWithIdentity(t *testing.T) {
	t.Parallel()

	base := rcerrors.Invariant("reconcile.verify", "overlap", nil).WithContext("segment", 1)
	withID := base.WithIdentity("id:acct-1")

	require.Equal(t, "id:acct-1", withID.IdentityKey)
	require.Equal(t, 1, withID.GetContextMap()["segment"])
	require.Empty(t, base.IdentityKey)
}

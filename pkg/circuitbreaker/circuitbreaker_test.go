package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("down")

func fail(context.Context) error { return errDown }
func ok(context.Context) error   { return nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	cb := New("test", WithFailureThreshold(2), WithTimeout(time.Hour))
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	assert.True(t, cb.IsOpen())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Millisecond))
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, fail))
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Millisecond))
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, fail))
	time.Sleep(5 * time.Millisecond)
	require.Error(t, cb.Execute(ctx, fail))
	assert.True(t, cb.IsOpen())
}

func TestBreaker_HalfOpenAllowsOneTrial(t *testing.T) {
	cb := New("test", WithFailureThreshold(1), WithTimeout(time.Millisecond))
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, fail))
	time.Sleep(5 * time.Millisecond)

	var inner error
	err := cb.Execute(ctx, func(ctx context.Context) error {
		inner = cb.Execute(ctx, ok)
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrTooManyRequests)
	assert.Equal(t, StateHalfOpen, cb.State())
}

func TestCacheBreaker_MissesDoNotCount(t *testing.T) {
	errMiss := errors.New("miss")
	var transitions []string
	cb := CacheBreaker(func(err error) bool { return errors.Is(err, errMiss) }, func(name string, from, to State) {
		transitions = append(transitions, name+":"+from.String()+"->"+to.String())
	})
	ctx := context.Background()

	for range 10 {
		assert.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return errMiss }), errMiss)
	}
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, func(context.Context) error { return errMiss })
	assert.Equal(t, StateClosed, cb.State(), "a miss resets the failure streak")

	for range 3 {
		_ = cb.Execute(ctx, fail)
	}
	assert.True(t, cb.IsOpen())
	assert.Equal(t, []string{"roster-cache:closed->open"}, transitions)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}

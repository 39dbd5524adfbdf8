package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg BreakerConfig) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 5, 14, 12, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker("test", cfg)
	cb.now = clock.now
	cb.changedAt = clock.t
	return cb, clock
}

func fail(context.Context) error    { return errUpstream }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker(t *testing.T) {
	ctx := context.Background()
	cfg := BreakerConfig{ErrorThreshold: 2, SuccessThreshold: 2, OpenTimeout: 30 * time.Second}

	t.Run("opens after threshold and rejects calls", func(t *testing.T) {
		cb, _ := newTestBreaker(cfg)

		require.ErrorIs(t, cb.Execute(ctx, fail), errUpstream)
		assert.Equal(t, StateClosed, cb.State())
		require.ErrorIs(t, cb.Execute(ctx, fail), errUpstream)
		assert.Equal(t, StateOpen, cb.State())

		called := false
		err := cb.Execute(ctx, func(context.Context) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, ErrCircuitOpen)
		assert.False(t, called)
	})

	t.Run("success resets failure count", func(t *testing.T) {
		cb, _ := newTestBreaker(cfg)

		require.Error(t, cb.Execute(ctx, fail))
		require.NoError(t, cb.Execute(ctx, succeed))
		require.Error(t, cb.Execute(ctx, fail))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("half-open closes after successes", func(t *testing.T) {
		cb, clock := newTestBreaker(cfg)
		_ = cb.Execute(ctx, fail)
		_ = cb.Execute(ctx, fail)
		require.Equal(t, StateOpen, cb.State())

		clock.advance(31 * time.Second)
		require.NoError(t, cb.Execute(ctx, succeed))
		assert.Equal(t, StateHalfOpen, cb.State())
		require.NoError(t, cb.Execute(ctx, succeed))
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("half-open failure reopens", func(t *testing.T) {
		cb, clock := newTestBreaker(cfg)
		_ = cb.Execute(ctx, fail)
		_ = cb.Execute(ctx, fail)

		clock.advance(31 * time.Second)
		require.ErrorIs(t, cb.Execute(ctx, fail), errUpstream)
		assert.Equal(t, StateOpen, cb.State())
		require.ErrorIs(t, cb.Execute(ctx, succeed), ErrCircuitOpen)
	})
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retries until success", func(t *testing.T) {
		r := NewRetry("test", RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, BackoffFactor: 2})

		calls := 0
		err := r.Execute(ctx, func(context.Context) error {
			calls++
			if calls < 3 {
				return errUpstream
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		r := NewRetry("test", RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond})

		calls := 0
		err := r.Execute(ctx, func(context.Context) error {
			calls++
			return errUpstream
		})
		require.ErrorIs(t, err, errUpstream)
		assert.Equal(t, 2, calls)
	})

	t.Run("does not retry deadline errors", func(t *testing.T) {
		r := NewRetry("test", RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond})

		calls := 0
		err := r.Execute(ctx, func(context.Context) error {
			calls++
			return context.DeadlineExceeded
		})
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		r := NewRetry("test", RetryConfig{MaxAttempts: 3, InitialBackoff: time.Hour})
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		err := r.Execute(ctx, func(context.Context) error { return errUpstream })
		require.ErrorIs(t, err, ErrRetryCanceled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGuardCountsRetriedCallOnce(t *testing.T) {
	ctx := context.Background()
	g := NewGuard("sheets",
		BreakerConfig{ErrorThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute},
		RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})

	calls := 0
	err := g.Execute(ctx, "append", func(context.Context) error {
		calls++
		return errUpstream
	})
	require.ErrorIs(t, err, errUpstream)
	assert.Equal(t, 3, calls)
	assert.Equal(t, StateClosed, g.State())

	_ = g.Execute(ctx, "append", fail)
	assert.Equal(t, StateOpen, g.State())
	require.ErrorIs(t, g.Execute(ctx, "append", succeed), ErrCircuitOpen)
}

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(cfg Config) (*Breaker, *time.Time) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	b := New(cfg)
	b.now = func() time.Time { return now }
	return b, &now
}

func fail(t *testing.T, b *Breaker) {
	t.Helper()
	done, err := b.Acquire()
	require.NoError(t, err)
	done(true)
}

func TestBreaker_OpensAfterThresholdThenProbes(t *testing.T) {
	b, now := newTestBreaker(Config{Enabled: true, Threshold: 2, Cooldown: 10 * time.Second, Probes: 1})

	fail(t, b)
	assert.Equal(t, Closed, b.State())
	fail(t, b)
	assert.Equal(t, Open, b.State())

	_, err := b.Acquire()
	assert.ErrorIs(t, err, ErrOpen)

	*now = now.Add(10 * time.Second)
	assert.Equal(t, HalfOpen, b.State())

	done, err := b.Acquire()
	require.NoError(t, err)
	_, err = b.Acquire()
	assert.ErrorIs(t, err, ErrOpen, "only one probe may be in flight")

	done(false)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	b, now := newTestBreaker(Config{Enabled: true, Threshold: 1, Cooldown: time.Second, Probes: 2})

	fail(t, b)
	*now = now.Add(time.Second)
	fail(t, b)
	assert.Equal(t, Open, b.State())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(Config{Enabled: true, Threshold: 2})

	fail(t, b)
	done, err := b.Acquire()
	require.NoError(t, err)
	done(false)
	fail(t, b)

	assert.Equal(t, Closed, b.State())
}

func TestBreaker_DoCountsOnlyMatchingErrors(t *testing.T) {
	b, _ := newTestBreaker(Config{Enabled: true, Threshold: 1, Cooldown: time.Minute})
	rejected := errors.New("422 unprocessable")
	unavailable := errors.New("503 unavailable")
	isFailure := func(err error) bool { return errors.Is(err, unavailable) }

	err := b.Do(context.Background(), func(context.Context) error { return rejected }, isFailure)
	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, Closed, b.State())

	err = b.Do(context.Background(), func(context.Context) error { return unavailable }, isFailure)
	assert.ErrorIs(t, err, unavailable)
	assert.Equal(t, Open, b.State())

	called := false
	err = b.Do(context.Background(), func(context.Context) error { called = true; return nil }, isFailure)
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreaker_DisabledAlwaysAdmits(t *testing.T) {
	b, _ := newTestBreaker(Config{Threshold: 1})

	for range 3 {
		fail(t, b)
	}
	assert.Equal(t, Closed, b.State())

	var nilBreaker *Breaker
	_, err := nilBreaker.Acquire()
	assert.NoError(t, err)
}

func TestBreaker_IgnoresSettleFromBeforeTrip(t *testing.T) {
	b, now := newTestBreaker(Config{Enabled: true, Threshold: 1, Cooldown: time.Second, Probes: 1})

	slow, err := b.Acquire()
	require.NoError(t, err)
	fail(t, b)
	require.Equal(t, Open, b.State())

	*now = now.Add(time.Second)
	trial, err := b.Acquire()
	require.NoError(t, err)

	slow(false)
	assert.Equal(t, HalfOpen, b.State(), "a call from before the trip must not close the breaker")
	_, err = b.Acquire()
	assert.ErrorIs(t, err, ErrOpen, "the half-open slot is still taken")

	trial(false)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_StaleFailureDoesNotReopen(t *testing.T) {
	b, now := newTestBreaker(Config{Enabled: true, Threshold: 1, Cooldown: time.Second, Probes: 1})

	slow, err := b.Acquire()
	require.NoError(t, err)
	fail(t, b)

	*now = now.Add(time.Second)
	trial, err := b.Acquire()
	require.NoError(t, err)
	trial(false)
	require.Equal(t, Closed, b.State())

	slow(true)
	assert.Equal(t, Closed, b.State())
}

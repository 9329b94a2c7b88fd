package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quickConfig(name string) Config {
	return Config{
		Name:         name,
		Probes:       1,
		Window:       10 * time.Second,
		Cooldown:     50 * time.Millisecond,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

func TestBreaker_Do(t *testing.T) {
	b := New(quickConfig("do"))
	assert.Equal(t, "do", b.Name())
	assert.Equal(t, gobreaker.StateClosed, b.State())

	boom := errors.New("boom")
	assert.NoError(t, b.Do(func() error { return nil }))
	assert.ErrorIs(t, b.Do(func() error { return boom }), boom)
}

func TestBreaker_TripsAndRecovers(t *testing.T) {
	b := New(quickConfig("trip"))
	opened := testutil.ToFloat64(transitions.WithLabelValues("trip", "open"))
	fail := func() error { return errors.New("down") }

	// MinRequests に届くまでは開かない
	_ = b.Do(fail)
	_ = b.Do(fail)
	require.False(t, b.Open())

	_ = b.Do(fail)
	require.True(t, b.Open(), "state %v", b.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(stateGauge.WithLabelValues("trip")))

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called, "open breaker must not call through")

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, gobreaker.StateHalfOpen, b.State())
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 0.0, testutil.ToFloat64(stateGauge.WithLabelValues("trip")))
	assert.Equal(t, opened+1, testutil.ToFloat64(transitions.WithLabelValues("trip", "open")))
}

func TestBreaker_MixedResultsBelowRatioStayClosed(t *testing.T) {
	b := New(quickConfig("mixed"))
	for range 5 {
		_ = b.Do(func() error { return nil })
		_ = b.Do(func() error { return errors.New("flaky") })
	}
	assert.False(t, b.Open())
}

func TestForWebhook(t *testing.T) {
	cfg := ForWebhook("slack")
	assert.Equal(t, "slack", cfg.Name)
	assert.Equal(t, uint32(5), cfg.MinRequests)
	assert.Equal(t, 1.0, cfg.FailureRatio)
	assert.Equal(t, 5*time.Minute, cfg.Cooldown)
}

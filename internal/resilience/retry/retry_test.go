package retry

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: 5 * time.Millisecond, MaxDelay: 20 * time.Millisecond}
}

// countingOp fails with the given errors in turn and then succeeds.
func countingOp(calls *int, errs ...error) func(context.Context) error {
	return func(context.Context) error {
		*calls++
		if *calls <= len(errs) {
			return errs[*calls-1]
		}
		return nil
	}
}

func TestDo(t *testing.T) {
	unavailable := &StatusError{Code: http.StatusBadGateway, Body: "bad gateway"}
	notFound := &StatusError{Code: http.StatusNotFound, Body: "unknown webhook"}

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{name: "first try", wantCalls: 1},
		{name: "recovers", errs: []error{unavailable, unavailable}, wantCalls: 3},
		{name: "exhausted", errs: []error{syscall.ECONNRESET, syscall.ECONNRESET, syscall.ECONNRESET}, wantCalls: 3, wantErr: syscall.ECONNRESET},
		{name: "permanent", errs: []error{notFound}, wantCalls: 1, wantErr: notFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), fastPolicy(), countingOp(&calls, tt.errs...))
			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDo_HonoursRetryAfter(t *testing.T) {
	p := fastPolicy()
	p.Attempts = 2
	throttled := &StatusError{Code: http.StatusTooManyRequests, RetryAfter: 80 * time.Millisecond}

	start := time.Now()
	calls := 0
	err := Do(context.Background(), p, countingOp(&calls, throttled))

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestDo_StopsOnCancel(t *testing.T) {
	p := fastPolicy()
	p.BaseDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, p, func(context.Context) error {
		calls++
		cancel()
		return &StatusError{Code: http.StatusServiceUnavailable}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroAttemptsStillTriesOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{}, countingOp(&calls, syscall.ECONNREFUSED))
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)
	assert.Equal(t, 1, calls)
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"500", &StatusError{Code: 500}, true},
		{"429", &StatusError{Code: 429}, true},
		{"408", &StatusError{Code: 408}, true},
		{"400", &StatusError{Code: 400}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, p.Backoff(2))
	assert.Equal(t, 300*time.Millisecond, p.Backoff(3))
	assert.Equal(t, 300*time.Millisecond, p.Backoff(10))

	p.Jitter = 0.5
	for range 50 {
		d := p.Backoff(1)
		require.GreaterOrEqual(t, d, 100*time.Millisecond)
		require.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Code: 429, Body: "slow down", RetryAfter: 2 * time.Second}
	assert.Equal(t, "status 429: slow down (retry after 2s)", err.Error())
	assert.Equal(t, "status 403: invalid_token", (&StatusError{Code: 403, Body: "invalid_token"}).Error())
}

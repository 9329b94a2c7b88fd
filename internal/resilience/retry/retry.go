// Package retry repeats webhook deliveries that failed for transient reasons.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"syscall"
	"time"
)

// Policy says how often and how patiently an operation is retried.
// The wait doubles after every failed attempt, capped at MaxDelay.
type Policy struct {
	Attempts  int           // total tries, the first one included
	BaseDelay time.Duration // wait after the first failure
	MaxDelay  time.Duration
	Jitter    float64 // up to this fraction of the wait is added at random
}

// Webhook is the policy for Slack and Discord deliveries. Both services
// throttle hard, so the policy gives up quickly.
func Webhook() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 2 * time.Second,
		MaxDelay:  15 * time.Second,
		Jitter:    0.1,
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return spread(d, p.Jitter)
}

// Do runs op until it succeeds, fails permanently or runs out of attempts.
// A StatusError carrying RetryAfter overrides the computed wait.
func Do(ctx context.Context, p Policy, op func(context.Context) error) error {
	attempts := max(p.Attempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			if attempt > 1 {
				slog.InfoContext(ctx, "delivery recovered", slog.Int("attempt", attempt))
			}
			return nil
		}
		if !Retryable(err) {
			return err
		}
		if attempt == attempts {
			return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
		}

		wait := p.Backoff(attempt)
		var se *StatusError
		if errors.As(err, &se) && se.RetryAfter > 0 {
			wait = se.RetryAfter
		}
		slog.WarnContext(ctx, "delivery failed, will retry",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.Any("error", err))

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry interrupted: %w", ctx.Err())
		}
	}
}

// Retryable reports whether err looks transient: a network timeout, a refused
// or reset connection, or a StatusError the server might not repeat.
func Retryable(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ETIMEDOUT),
		errors.Is(err, syscall.ENETUNREACH):
		return true
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Temporary()
}

// StatusError is a non-2xx answer from a webhook endpoint.
type StatusError struct {
	Code int
	Body string
	// RetryAfter is the back-off the server asked for, zero when it did not.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("status %d: %s", e.Code, e.Body)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %v)", e.RetryAfter)
	}
	return msg
}

// Temporary reports whether the same request may succeed later.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 ||
		e.Code == http.StatusTooManyRequests ||
		e.Code == http.StatusRequestTimeout
}

func spread(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	fraction = min(fraction, 1)
	// #nosec G404 -- jitter needs no cryptographic randomness
	return d + time.Duration(rand.Float64()*fraction*float64(d))
}

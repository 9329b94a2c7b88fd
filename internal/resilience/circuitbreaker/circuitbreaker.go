// Package circuitbreaker stops calling a dependency that keeps failing.
// Breakers are built on github.com/sony/gobreaker and report their state to
// Prometheus and the health endpoint.
package circuitbreaker

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config describes one breaker.
type Config struct {
	Name string

	// Probes is how many calls may go through while half-open.
	Probes uint32
	// Window clears the closed-state counts; zero keeps them forever.
	Window time.Duration
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration

	// The breaker opens once at least MinRequests calls were seen in the
	// window and FailureRatio of them failed.
	MinRequests  uint32
	FailureRatio float64
}

// ForWebhook configures the breaker of one chat channel. Once five or more
// deliveries in a minute have all failed, the channel is skipped for five
// minutes so a dead webhook does not slow every article fan-out.
func ForWebhook(channel string) Config {
	return Config{
		Name:         channel,
		Probes:       1,
		Window:       time.Minute,
		Cooldown:     5 * time.Minute,
		MinRequests:  5,
		FailureRatio: 1.0,
	}
}

// ForDatabase configures the breaker around the PostgreSQL pool.
func ForDatabase() Config {
	return Config{
		Name:         "postgres",
		Probes:       3,
		Window:       time.Minute,
		Cooldown:     30 * time.Second,
		MinRequests:  5,
		FailureRatio: 1.0,
	}
}

// Breaker guards calls to one dependency.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New returns a closed breaker.
func New(cfg Config) *Breaker {
	stateGauge.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))
	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.Probes,
		Interval:    cfg.Window,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.MinRequests &&
				float64(c.TotalFailures) >= cfg.FailureRatio*float64(c.Requests)
		},
		OnStateChange: onStateChange,
	})}
}

// Do runs fn unless the breaker is open, in which case it returns
// gobreaker.ErrOpenState (or ErrTooManyRequests while probing) without
// calling fn.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) { return nil, fn() })
	return err
}

// State is the breaker's current state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

// Name identifies the breaker in logs, metrics and /health.
func (b *Breaker) Name() string { return b.cb.Name() }

// Open reports whether calls are currently rejected outright.
func (b *Breaker) Open() bool { return b.cb.State() == gobreaker.StateOpen }

// call is Do for functions with a result.
func call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	v, err := b.cb.Execute(func() (any, error) { return fn() })
	t, _ := v.(T)
	return t, err
}

func onStateChange(name string, from, to gobreaker.State) {
	level := slog.LevelWarn
	if to == gobreaker.StateClosed {
		level = slog.LevelInfo
	}
	slog.Log(context.Background(), level, "circuit breaker state changed",
		slog.String("breaker", name),
		slog.String("from", from.String()),
		slog.String("to", to.String()))
	transitions.WithLabelValues(name, to.String()).Inc()
	stateGauge.WithLabelValues(name).Set(stateValue(to))
}

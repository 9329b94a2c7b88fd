package worker

import (
	"context"
	"log/slog"
)

// Job names used for metrics labels and logs.
const (
	JobDispatch     = "dispatch"
	JobSessionPurge = "session_purge"
)

// Purger drops expired entries and reports how many went.
type Purger interface {
	Purge() int
}

// PurgerFunc adapts a function to Purger.
type PurgerFunc func() int

func (f PurgerFunc) Purge() int { return f() }

// DispatchJob flushes the dispatcher queue.
func DispatchJob(d *Dispatcher) JobFunc {
	return func(ctx context.Context) error {
		n, err := d.Flush(ctx)
		if n > 0 {
			d.logger().InfoContext(ctx, "queued articles dispatched",
				slog.Int("articles", n),
				slog.Int("remaining", d.Pending()))
		}
		return err
	}
}

// PurgeJob runs every purger in turn. Purging never fails.
func PurgeJob(logger *slog.Logger, purgers ...Purger) JobFunc {
	return func(ctx context.Context) error {
		removed := 0
		for _, p := range purgers {
			removed += p.Purge()
		}
		if removed > 0 {
			logger.InfoContext(ctx, "expired entries purged", slog.Int("removed", removed))
		}
		return nil
	}
}

// Package worker runs background work for the API process: delivering new
// articles to subscribers and periodic housekeeping on a cron schedule.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"newsdesk/internal/domain/entity"
	feedUC "newsdesk/internal/usecase/feed"
)

// FeedNotifier delivers one article to every matching subscriber.
type FeedNotifier interface {
	NotifyAll(ctx context.Context, art *entity.Article) (*feedUC.DispatchReport, error)
}

// Dispatcher hands newly created articles to the feed engine.
//
// With Queued unset every article is dispatched at once in its own goroutine,
// so the request that created it never waits on notification channels. With
// Queued set articles wait in memory until Flush, normally called by a
// scheduled job.
type Dispatcher struct {
	Feed    FeedNotifier
	Queued  bool
	Logger  *slog.Logger
	Metrics *Metrics

	mu      sync.Mutex
	pending []*entity.Article
	wg      sync.WaitGroup
}

// Publish implements article.Publisher.
func (d *Dispatcher) Publish(ctx context.Context, art *entity.Article) {
	if art == nil {
		return
	}
	art = art.Clone()

	if d.Queued {
		d.mu.Lock()
		d.pending = append(d.pending, art)
		depth := len(d.pending)
		d.mu.Unlock()
		d.metrics().QueueDepth.Set(float64(depth))
		d.logger().DebugContext(ctx, "article queued for dispatch",
			slog.String("article_id", art.ID),
			slog.Int("queue_depth", depth))
		return
	}

	// リクエスト終了後も配信を続けるため、キャンセルだけ切り離す
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.dispatch(ctx, art)
	}()
}

// Flush dispatches every queued article in arrival order and returns how many
// were delivered. Articles whose subscriber list could not be read go back to
// the front of the queue for the next run.
func (d *Dispatcher) Flush(ctx context.Context) (int, error) {
	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	d.mu.Unlock()

	var (
		done     int
		firstErr error
		retry    []*entity.Article
	)
	for i, art := range batch {
		if err := ctx.Err(); err != nil {
			retry = append(retry, batch[i:]...)
			if firstErr == nil {
				firstErr = err
			}
			break
		}
		if err := d.dispatch(ctx, art); err != nil {
			retry = append(retry, art)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		done++
	}

	if len(retry) > 0 {
		d.mu.Lock()
		d.pending = append(retry, d.pending...)
		d.mu.Unlock()
	}
	d.metrics().QueueDepth.Set(float64(d.Pending()))
	return done, firstErr
}

// Pending reports how many articles are waiting for Flush.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Wait blocks until every in-flight immediate dispatch has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, art *entity.Article) error {
	_, err := d.Feed.NotifyAll(ctx, art)
	d.metrics().RecordDispatch(err)
	if err != nil {
		d.logger().ErrorContext(ctx, "article dispatch failed",
			slog.String("article_id", art.ID),
			slog.Any("error", err))
	}
	return err
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d *Dispatcher) metrics() *Metrics {
	if d.Metrics != nil {
		return d.Metrics
	}
	return defaultMetrics
}

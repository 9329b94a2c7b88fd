package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/observability/tracing"
	"newsdesk/internal/repository"
)

const (
	defaultMaxConcurrent = 10
	defaultTimeout       = 30 * time.Second
)

// Notifier delivers one article to one user.
type Notifier interface {
	Notify(ctx context.Context, userID string, art *entity.Article) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, userID string, art *entity.Article) error

func (f NotifierFunc) Notify(ctx context.Context, userID string, art *entity.Article) error {
	return f(ctx, userID, art)
}

// ArticleLister provides the full article set for feed queries.
type ArticleLister interface {
	List(ctx context.Context) ([]*entity.Article, error)
}

// RecipientError records a notification that could not be delivered.
type RecipientError struct {
	UserID string
	Err    error
}

// DispatchReport summarizes one NotifyAll call.
type DispatchReport struct {
	ArticleID string
	Matched   int
	Sent      int
	Failures  []RecipientError
}

// Engine holds feed preferences and fans article notifications out to users.
//
// MaxConcurrent bounds the number of in-flight notifier calls and Timeout
// bounds each call. Zero values select 10 and 30s.
type Engine struct {
	Subs     repository.SubscriptionRepository
	Articles ArticleLister
	Notifier Notifier

	MaxConcurrent int
	Timeout       time.Duration
	Tracer        trace.Tracer
}

// Matches reports whether art satisfies every preference set:
// its category, author and country must all be favorites.
func Matches(art *entity.Article, prefs entity.FeedPreferences) bool {
	if art == nil {
		return false
	}
	return prefs.FavoriteCategory.Has(art.Category) &&
		prefs.FavoriteAuthor.Has(art.Author) &&
		prefs.FavoriteCountry.Has(art.Country)
}

// RegisterUser stores or replaces the preferences of userID.
func (e *Engine) RegisterUser(ctx context.Context, userID string, prefs entity.FeedPreferences) error {
	if err := entity.Required("userId", userID); err != nil {
		return err
	}
	if err := e.Subs.Upsert(ctx, &entity.Subscription{UserID: userID, Preferences: prefs}); err != nil {
		return fmt.Errorf("register feed user: %w", err)
	}
	e.refreshGauge(ctx)
	return nil
}

// Preferences returns the stored preferences of userID.
func (e *Engine) Preferences(ctx context.Context, userID string) (entity.FeedPreferences, error) {
	sub, err := e.Subs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.FeedPreferences{}, ErrUnknownUser
		}
		return entity.FeedPreferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return sub.Preferences, nil
}

// Unregister forgets userID. Unknown users are ignored.
func (e *Engine) Unregister(ctx context.Context, userID string) error {
	if err := e.Subs.Delete(ctx, userID); err != nil {
		return fmt.Errorf("unregister feed user: %w", err)
	}
	e.refreshGauge(ctx)
	return nil
}

// FeedFor returns the articles matching userID's preferences, in stored order.
func (e *Engine) FeedFor(ctx context.Context, userID string) ([]*entity.Article, error) {
	prefs, err := e.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := e.Articles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed for %s: %w", userID, err)
	}

	out := make([]*entity.Article, 0, len(all))
	for _, a := range all {
		if Matches(a, prefs) {
			out = append(out, a)
		}
	}
	return out, nil
}

// NotifyAll calls the notifier once for every user whose preferences match art.
// Calls run in parallel, each under its own timeout. A failed call is logged and
// reported but never stops the others, so NotifyAll only fails when the
// subscriber list itself cannot be read.
func (e *Engine) NotifyAll(ctx context.Context, art *entity.Article) (*DispatchReport, error) {
	if art == nil {
		return nil, &entity.ValidationError{Field: "article", Message: "is required"}
	}

	ctx, span := e.tracer().Start(ctx, "feed.NotifyAll",
		trace.WithAttributes(attribute.String("article.id", art.ID)))
	defer span.End()
	start := time.Now()

	subs, err := e.Subs.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list subscribers")
		return nil, fmt.Errorf("notify all: %w", err)
	}

	report := &DispatchReport{ArticleID: art.ID}
	var recipients []string
	for _, s := range subs {
		if Matches(art, s.Preferences) {
			recipients = append(recipients, s.UserID)
		}
	}
	report.Matched = len(recipients)
	matchedRecipients.Observe(float64(len(recipients)))
	span.SetAttributes(attribute.Int("feed.matched", len(recipients)))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(e.maxConcurrent())

	for _, userID := range recipients {
		g.Go(func() error {
			err := e.notifyOne(ctx, userID, art.Clone())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, RecipientError{UserID: userID, Err: err})
				dispatchTotal.WithLabelValues("failed").Inc()
				slog.WarnContext(ctx, "feed notification failed",
					slog.String("article_id", art.ID),
					slog.String("user_id", userID),
					slog.Any("error", err))
				return nil
			}
			report.Sent++
			dispatchTotal.WithLabelValues("sent").Inc()
			return nil
		})
	}
	_ = g.Wait()

	dispatchDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("feed.sent", report.Sent),
		attribute.Int("feed.failed", len(report.Failures)),
	)
	if len(report.Failures) > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d notifications failed", len(report.Failures)))
	}

	slog.InfoContext(ctx, "feed dispatch completed",
		slog.String("article_id", art.ID),
		slog.Int("matched", report.Matched),
		slog.Int("sent", report.Sent),
		slog.Int("failed", len(report.Failures)),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}

// notifyOne runs a single notifier call with its own timeout and turns a panic into an error.
func (e *Engine) notifyOne(ctx context.Context, userID string, art *entity.Article) (err error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	ctx, span := e.tracer().Start(ctx, "feed.notify",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in feed notifier",
				slog.String("user_id", userID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("notifier panic: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "notify failed")
		}
	}()

	return e.Notifier.Notify(ctx, userID, art)
}

func (e *Engine) refreshGauge(ctx context.Context) {
	if subs, err := e.Subs.List(ctx); err == nil {
		subscribers.Set(float64(len(subs)))
	}
}

func (e *Engine) maxConcurrent() int {
	if e.MaxConcurrent > 0 {
		return e.MaxConcurrent
	}
	return defaultMaxConcurrent
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return defaultTimeout
}

func (e *Engine) tracer() trace.Tracer {
	if e.Tracer != nil {
		return e.Tracer
	}
	return tracing.GetTracer()
}

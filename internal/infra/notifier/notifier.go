// Package notifier delivers per-user feed notifications to external channels.
// Channels share one contract, Notify(ctx, userID, article), so they can be
// injected into the feed engine interchangeably and combined with Fanout.
//
// The package includes Slack and Discord webhook channels, a fan-out across
// channels and a no-op channel for when notifications are disabled.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"newsdesk/internal/domain/entity"
)

// Notifier sends one article to one user.
// Implementations handle rate limiting, retries and error logging internally.
type Notifier interface {
	Notify(ctx context.Context, userID string, art *entity.Article) error
}

// Channel is a named Notifier.
type Channel interface {
	Notifier
	Name() string
}

// Fanout sends every notification to all channels.
// A channel failure does not stop the remaining channels; the failures are joined.
type Fanout []Channel

func (f Fanout) Notify(ctx context.Context, userID string, art *entity.Article) error {
	var errs []error
	for _, ch := range f {
		if err := ch.Notify(ctx, userID, art); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Names lists the channel names.
func (f Fanout) Names() []string {
	names := make([]string, len(f))
	for i, ch := range f {
		names[i] = ch.Name()
	}
	return names
}

package notifier

import (
	"context"

	"newsdesk/internal/domain/entity"
)

// NoOp discards notifications. It is used when no channel is configured.
type NoOp struct{}

func (NoOp) Notify(context.Context, string, *entity.Article) error { return nil }

func (NoOp) Name() string { return "noop" }

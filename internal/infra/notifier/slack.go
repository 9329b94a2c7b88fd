package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sony/gobreaker"

	"newsdesk/internal/domain/entity"
)

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
	maxFallbackLength    = 150

	truncationSuffix = "..."
)

// SlackWebhookPayload represents the JSON payload sent to a Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`
	Blocks []SlackBlock `json:"blocks"`
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "section", "context"
	Text     *SlackTextObject  `json:"text,omitempty"`     // for section
	Elements []SlackTextObject `json:"elements,omitempty"` // for context
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

// Slack posts article notifications to a Slack incoming webhook.
// Slack allows about one message per second per webhook.
type Slack struct {
	hook *webhook
}

// NewSlack creates a Slack channel. The default rate is 1 req/s with burst 1.
func NewSlack(cfg WebhookConfig) *Slack {
	return &Slack{hook: newWebhook("slack", cfg, 1.0, 1)}
}

func (s *Slack) Name() string { return "slack" }

// State reports the channel's circuit breaker state.
func (s *Slack) State() gobreaker.State { return s.hook.breaker.State() }

// Notify posts one message addressed to userID.
func (s *Slack) Notify(ctx context.Context, userID string, art *entity.Article) error {
	return s.hook.deliver(ctx, buildSlackPayload(userID, art),
		slog.String("article_id", art.ID),
		slog.String("user_id", userID))
}

// buildSlackPayload renders the article as a section block (title and an
// excerpt of the content) followed by a context block (author, category,
// country and date).
func buildSlackPayload(userID string, art *entity.Article) SlackWebhookPayload {
	fallback := truncate(fmt.Sprintf("@%s: %s - %s", userID, art.Title, art.Author), maxFallbackLength, truncationSuffix)
	section := truncate(fmt.Sprintf("*%s*\n\n%s", art.Title, art.Content), maxSectionTextLength, truncationSuffix)

	meta := []string{art.Author}
	for _, v := range []string{art.Category, art.Country, art.CreateDate} {
		if v != "" {
			meta = append(meta, v)
		}
	}
	footer := truncate(fmt.Sprintf("for %s • %s", userID, strings.Join(meta, " • ")), maxContextTextLength, truncationSuffix)

	return SlackWebhookPayload{
		Text: fallback,
		Blocks: []SlackBlock{
			{Type: "section", Text: &SlackTextObject{Type: "mrkdwn", Text: section}},
			{Type: "context", Elements: []SlackTextObject{{Type: "mrkdwn", Text: footer}}},
		},
	}
}

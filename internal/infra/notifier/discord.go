package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker"

	"newsdesk/internal/domain/entity"
)

const (
	// Discord embed limits
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	maxFieldValueLength  = 1024

	// discordBlurple is Discord's brand color (#5865F2)
	discordBlurple = 0x5865F2
)

// DiscordWebhookPayload represents the JSON payload sent to a Discord webhook.
type DiscordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord rich embed.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      DiscordEmbedFooter  `json:"footer"`
}

// DiscordEmbedField is a name/value row in an embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// Discord posts article notifications to a Discord webhook.
type Discord struct {
	hook *webhook
}

// NewDiscord creates a Discord channel. The default rate is 2 req/s with burst 5.
func NewDiscord(cfg WebhookConfig) *Discord {
	return &Discord{hook: newWebhook("discord", cfg, 2.0, 5)}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) State() gobreaker.State { return d.hook.breaker.State() }

// Notify posts one embed addressed to userID.
func (d *Discord) Notify(ctx context.Context, userID string, art *entity.Article) error {
	return d.hook.deliver(ctx, buildDiscordPayload(userID, art),
		slog.String("article_id", art.ID),
		slog.String("user_id", userID))
}

func buildDiscordPayload(userID string, art *entity.Article) DiscordWebhookPayload {
	var fields []DiscordEmbedField
	for _, f := range []struct{ name, value string }{
		{"Author", art.Author},
		{"Category", art.Category},
		{"Country", art.Country},
	} {
		if f.value == "" {
			continue
		}
		fields = append(fields, DiscordEmbedField{
			Name:   f.name,
			Value:  truncate(f.value, maxFieldValueLength, truncationSuffix),
			Inline: true,
		})
	}

	footer := fmt.Sprintf("for %s", userID)
	if art.CreateDate != "" {
		footer += " • " + art.CreateDate
	}

	return DiscordWebhookPayload{
		Embeds: []DiscordEmbed{{
			Title:       truncate(art.Title, maxTitleLength, ""),
			Description: truncate(art.Content, maxDescriptionLength, truncationSuffix),
			Color:       discordBlurple,
			Fields:      fields,
			Footer:      DiscordEmbedFooter{Text: footer},
		}},
	}
}

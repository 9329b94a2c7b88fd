package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"newsdesk/internal/resilience/circuitbreaker"
	"newsdesk/internal/resilience/retry"
)

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 1 << 10

// defaultRetryAfter applies when a 429 response carries no usable hint.
const defaultRetryAfter = 5 * time.Second

// WebhookConfig contains configuration shared by the webhook channels.
type WebhookConfig struct {
	// Enabled indicates whether the channel is active
	Enabled bool

	// WebhookURL is the incoming webhook URL (it embeds the credentials)
	WebhookURL string

	// Timeout is the HTTP timeout for a single request
	Timeout time.Duration

	// RequestsPerSecond and Burst configure the channel's token bucket.
	// Zero values select the channel default.
	RequestsPerSecond float64
	Burst             int

	// Retry overrides retry.Webhook when Attempts is set
	Retry retry.Policy
}

// webhook posts JSON payloads to one endpoint under a rate limiter, a retry
// policy and a circuit breaker.
type webhook struct {
	name    string
	url     string
	client  *http.Client
	limiter *RateLimiter
	retry   retry.Policy
	breaker *circuitbreaker.Breaker
}

func newWebhook(name string, cfg WebhookConfig, defRate float64, defBurst int) *webhook {
	rps, burst := cfg.RequestsPerSecond, cfg.Burst
	if rps <= 0 {
		rps = defRate
	}
	if burst <= 0 {
		burst = defBurst
	}
	rc := cfg.Retry
	if rc.Attempts == 0 {
		rc = retry.Webhook()
	}
	return &webhook{
		name:    name,
		url:     cfg.WebhookURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: NewRateLimiter(rps, burst),
		retry:   rc,
		breaker: circuitbreaker.New(circuitbreaker.ForWebhook(name)),
	}
}

// deliver sends payload, retrying transient failures. The whole retried delivery
// counts as one call for the circuit breaker.
func (w *webhook) deliver(ctx context.Context, payload any, attrs ...slog.Attr) error {
	start := time.Now()
	requestID := uuid.NewString()
	logger := slog.Default().With(slog.String("channel", w.name), slog.String("request_id", requestID))
	for _, a := range attrs {
		logger = logger.With(a)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	waited, err := w.limiter.Allow(ctx)
	notificationRateLimitWait.WithLabelValues(w.name).Observe(waited.Seconds())
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	err = w.breaker.Do(func() error {
		return retry.Do(ctx, w.retry, func(ctx context.Context) error {
			return w.post(ctx, body)
		})
	})
	notificationDuration.WithLabelValues(w.name).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		notificationSentTotal.WithLabelValues(w.name, "success").Inc()
		logger.InfoContext(ctx, "webhook notification sent",
			slog.Duration("duration", time.Since(start)))
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		notificationSentTotal.WithLabelValues(w.name, "circuit_open").Inc()
		logger.WarnContext(ctx, "webhook channel circuit open, notification dropped")
		return fmt.Errorf("%s circuit open: %w", w.name, err)
	default:
		notificationSentTotal.WithLabelValues(w.name, "failure").Inc()
		logger.ErrorContext(ctx, "webhook notification failed", slog.Any("error", err))
		return err
	}
}

func (w *webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	statusErr := &retry.StatusError{
		Code: resp.StatusCode,
		Body: fmt.Sprintf("%s webhook: %s", w.name, string(respBody)),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		statusErr.RetryAfter = retryAfter(resp, respBody)
	}
	return statusErr
}

// retryAfter reads the back-off hint from a JSON retry_after field (Discord,
// seconds as a float) or the Retry-After header (Slack, whole seconds).
func retryAfter(resp *http.Response, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}
	if h := resp.Header.Get("Retry-After"); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryAfter
}

// truncate shortens text to at most max bytes on a rune boundary, ending with suffix.
func truncate(text string, max int, suffix string) string {
	if len(text) <= max {
		return text
	}
	cut := max - len(suffix)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + suffix
}

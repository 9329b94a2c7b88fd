package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/resilience/retry"
)

func sampleArticle() *entity.Article {
	return &entity.Article{
		ID:         "a1",
		Title:      "Go 1.25 released",
		Content:    "The Go team announces a new release.",
		Author:     "John Doe",
		Category:   "Technology",
		Country:    "US",
		CreateDate: "2025-08-12",
	}
}

func testConfig(url string) WebhookConfig {
	return WebhookConfig{
		Enabled:           true,
		WebhookURL:        url,
		Timeout:           2 * time.Second,
		RequestsPerSecond: 1000,
		Burst:             100,
		Retry: retry.Policy{
			Attempts:  3,
			BaseDelay: 5 * time.Millisecond,
			MaxDelay:  10 * time.Millisecond,
		},
	}
}

func TestSlack_Notify(t *testing.T) {
	var got SlackWebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	s := NewSlack(testConfig(srv.URL))
	require.NoError(t, s.Notify(context.Background(), "jane", sampleArticle()))

	assert.Equal(t, "@jane: Go 1.25 released - John Doe", got.Text)
	require.Len(t, got.Blocks, 2)
	assert.Equal(t, "section", got.Blocks[0].Type)
	assert.Contains(t, got.Blocks[0].Text.Text, "*Go 1.25 released*")
	assert.Equal(t, "for jane • John Doe • Technology • US • 2025-08-12", got.Blocks[1].Elements[0].Text)
}

func TestDiscord_Notify(t *testing.T) {
	var got DiscordWebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(testConfig(srv.URL))
	require.NoError(t, d.Notify(context.Background(), "jane", sampleArticle()))

	require.Len(t, got.Embeds, 1)
	e := got.Embeds[0]
	assert.Equal(t, "Go 1.25 released", e.Title)
	assert.Equal(t, discordBlurple, e.Color)
	assert.Len(t, e.Fields, 3)
	assert.Equal(t, "for jane • 2025-08-12", e.Footer.Text)
}

func TestWebhook_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewSlack(testConfig(srv.URL)).Notify(context.Background(), "u", sampleArticle())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWebhook_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewDiscord(testConfig(srv.URL)).Notify(context.Background(), "u", sampleArticle())
	var statusErr *retry.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhook_RateLimitedUsesRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"message":"You are being rate limited.","retry_after":0.05}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	start := time.Now()
	err := NewDiscord(testConfig(srv.URL)).Notify(context.Background(), "u", sampleArticle())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhook_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewSlack(testConfig(srv.URL))
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.Error(t, s.Notify(ctx, "u", sampleArticle()))
	}

	err := s.Notify(ctx, "u", sampleArticle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, int32(5), calls.Load(), "open circuit must not reach the webhook")
	assert.Equal(t, gobreaker.StateOpen, s.State())
}

func TestRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, 1500*time.Millisecond, retryAfter(resp, []byte(`{"retry_after":1.5}`)))

	resp.Header.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, retryAfter(resp, []byte("rate_limited")))

	assert.Equal(t, defaultRetryAfter, retryAfter(&http.Response{Header: http.Header{}}, nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10, "..."))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 3), 10, "..."))

	// マルチバイト文字の途中で切らない
	got := truncate("日本語のテキスト", 8, "...")
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "日...", got)
}

type stubChannel struct {
	name string
	err  error
	hits int
}

func (s *stubChannel) Name() string { return s.name }
func (s *stubChannel) Notify(context.Context, string, *entity.Article) error {
	s.hits++
	return s.err
}

func TestFanout(t *testing.T) {
	ok := &stubChannel{name: "ok"}
	bad := &stubChannel{name: "bad", err: errors.New("offline")}
	last := &stubChannel{name: "last"}

	f := Fanout{ok, bad, last}
	err := f.Notify(context.Background(), "u", sampleArticle())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: offline")
	assert.Equal(t, 1, last.hits, "a failing channel does not stop the rest")
	assert.Equal(t, []string{"ok", "bad", "last"}, f.Names())

	assert.NoError(t, Fanout{ok, last}.Notify(context.Background(), "u", sampleArticle()))
	assert.NoError(t, NoOp{}.Notify(context.Background(), "u", nil))
}

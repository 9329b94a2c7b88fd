package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdesk/internal/handler/http/requestid"
	"newsdesk/internal/observability/logging"
)

/* ───────── Chain ───────── */

func TestChain_FirstMiddlewareIsOutermost(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"), mark("c"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c", "handler"}, order)
}

/* ───────── Logging ───────── */

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		status    int
		wantLevel string
	}{
		{"GET 200", http.MethodGet, "/articles", http.StatusOK, "INFO"},
		{"POST 201", http.MethodPost, "/articles", http.StatusCreated, "INFO"},
		{"DELETE 204", http.MethodDelete, "/articles/123", http.StatusNoContent, "INFO"},
		{"500 logs at error", http.MethodGet, "/articles", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.New(&buf, "json", "info")

			handler := requestid.Middleware(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("response body"))
			})))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("User-Agent", "test-agent/1.0")
			req.Header.Set(requestid.Header, "req-42")
			req.RemoteAddr = "192.168.1.1:12345"

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			require.Equal(t, tt.status, rr.Code)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "req-42", entry["request_id"])
			assert.Equal(t, tt.path, entry["path"])
			assert.Equal(t, float64(tt.status), entry["status"])
			assert.Equal(t, float64(len("response body")), entry["bytes"])
		})
	}
}

func TestLogging_StoresLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "json", "info")

	handler := requestid.Middleware(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("inside handler")
	})))

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set(requestid.Header, "req-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"msg":"inside handler"`)
	assert.Contains(t, lines[0], `"request_id":"req-7"`)
}

func TestLogging_TraceIDFromHeader(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, "json", "info")

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Trace-Id", "4bf92f3577b34da6a3ce929d0e0e4736")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Contains(t, buf.String(), `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
}

/* ───────── Recover ───────── */

func TestRecover(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		panicValue  any
		shouldPanic bool
	}{
		{"panic with string", "something went wrong", true},
		{"panic with error", fmt.Errorf("test error"), true},
		{"panic with number", 42, true},
		{"no panic", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.shouldPanic {
					panic(tt.panicValue)
				}
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

			if tt.shouldPanic {
				assert.Equal(t, http.StatusInternalServerError, rr.Code)
				assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
				assert.NotContains(t, rr.Body.String(), fmt.Sprint(tt.panicValue))
			} else {
				assert.Equal(t, http.StatusOK, rr.Code)
			}
		})
	}
}

func TestRecover_RepanicsOnAbortHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

/* ───────── InputLimits ───────── */

func TestInputLimits(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			var maxErr *http.MaxBytesError
			if assert.ErrorAs(t, err, &maxErr) {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := InputLimits(16)(echo)

	tests := []struct {
		name   string
		path   string
		auth   string
		body   string
		status int
	}{
		{"small body", "/articles", "", `{"title":"x"}`, http.StatusOK},
		{"body over limit", "/articles", "", strings.Repeat("a", 17), http.StatusRequestEntityTooLarge},
		{"oversized authorization", "/articles", "Bearer " + strings.Repeat("t", maxAuthorizationHeader), "", http.StatusBadRequest},
		{"path too long", "/" + strings.Repeat("p", maxPathLength), "", "", http.StatusRequestURITooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

/* ───────── RateLimiter ───────── */

func limitedHandler(rl *RateLimiter) http.Handler {
	return rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func requestFrom(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = remote
	return req
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	now := time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	handler := limitedHandler(rl)

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, requestFrom("192.168.1.1:1234"))
		require.Equal(t, http.StatusOK, rr.Code, "request %d", i+1)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestFrom("192.168.1.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "20", rr.Header().Get("Retry-After"))
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	handler := limitedHandler(rl)

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1:1"))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestFrom("10.0.0.1:1"))
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	// 30秒で1トークン回復する
	now = now.Add(30 * time.Second)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, requestFrom("10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := limitedHandler(rl)

	for _, remote := range []string{"192.168.1.1:1", "192.168.1.2:1", "[2001:db8::1]:443"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, requestFrom(remote))
		assert.Equal(t, http.StatusOK, rr.Code, remote)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestFrom("192.168.1.1:9999"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code, "port must not split the bucket")
}

func TestRateLimiter_IgnoresForwardedFor(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := limitedHandler(rl)

	first := requestFrom("192.168.1.1:1")
	first.Header.Set("X-Forwarded-For", "1.1.1.1")
	handler.ServeHTTP(httptest.NewRecorder(), first)

	second := requestFrom("192.168.1.1:1")
	second.Header.Set("X-Forwarded-For", "2.2.2.2")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, second)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(50, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }
	handler := limitedHandler(rl)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, requestFrom("172.16.0.1:1"))
			if rr.Code == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	now := time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	handler := limitedHandler(rl)

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.1:1"))
	now = now.Add(90 * time.Second)
	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("10.0.0.2:1"))
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, rl.Cleanup())
	assert.Equal(t, 0, rl.Cleanup())
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.168.1.1:1234", "192.168.1.1"},
		{"[::1]:8080", "::1"},
		{"no-port", "no-port"},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

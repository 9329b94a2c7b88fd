package http

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetricsMiddleware_PathNormalization checks that identifiers collapse
// into a single label value.
func TestMetricsMiddleware_PathNormalization(t *testing.T) {
	requestMetrics.total.Reset()
	requestMetrics.duration.Reset()

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))

	for _, path := range []string{
		"/articles/1",
		"/articles/2",
		"/articles/0b7e7c1a-4a7b",
		"/articles/123?q=ignored",
		"/articles/9/ratings",
		"/health",
		"/nope/at/all",
	} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 4.0, testutil.ToFloat64(requestMetrics.total.WithLabelValues("GET", "/articles/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(requestMetrics.total.WithLabelValues("GET", "/articles/:id/ratings", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(requestMetrics.total.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(requestMetrics.total.WithLabelValues("GET", "/:unknown", "200")))
	assert.Equal(t, 4, testutil.CollectAndCount(requestMetrics.total))
}

func TestMetricsMiddleware_UsesMuxPattern(t *testing.T) {
	requestMetrics.total.Reset()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /articles/{id}/comments", func(w http.ResponseWriter, r *http.Request) {})
	handler := MetricsMiddleware(mux)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/articles/a1/comments", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/articles/b2/comments", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(requestMetrics.total.WithLabelValues("GET", "/articles/{id}/comments", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(requestMetrics.total))
}

func TestMetricsMiddleware_StatusCodes(t *testing.T) {
	requestMetrics.total.Reset()

	tests := []struct {
		name   string
		status int
		write  bool
	}{
		{"explicit 201", http.StatusCreated, false},
		{"explicit 404", http.StatusNotFound, false},
		{"explicit 500", http.StatusInternalServerError, false},
		{"implicit 200 from Write", http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.write {
					_, _ = w.Write([]byte("body"))
					return
				}
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/comments", nil))

			got := testutil.ToFloat64(requestMetrics.total.WithLabelValues("POST", "/comments", strconv.Itoa(tt.status)))
			assert.Equal(t, 1.0, got)
		})
	}
}

func TestMetricsMiddleware_InFlight(t *testing.T) {
	requestMetrics.inFlight.Set(0)

	var during float64
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(requestMetrics.inFlight)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/feed", nil))

	assert.Equal(t, 1.0, during)
	assert.Equal(t, 0.0, testutil.ToFloat64(requestMetrics.inFlight))
}

func TestMetricsMiddleware_Sizes(t *testing.T) {
	requestMetrics.reqSize.Reset()
	requestMetrics.respSize.Reset()

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 300)))
	}))
	req := httptest.NewRequest(http.MethodPost, "/articles", strings.NewReader(`{"title":"Go"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1, testutil.CollectAndCount(requestMetrics.reqSize))
	assert.Equal(t, 1, testutil.CollectAndCount(requestMetrics.respSize))
}

func TestRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := newRecorder(w)

	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusCreated, rec.status, "second WriteHeader is ignored")
	assert.Equal(t, http.StatusCreated, w.Code)

	data := []byte("test response")
	n, err := rec.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, len(data), rec.bytes)
	assert.Same(t, w, rec.Unwrap())
}

func TestMetricsHandler(t *testing.T) {
	requestMetrics.total.WithLabelValues("GET", "/health", "200").Inc()

	rr := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func BenchmarkMetricsMiddleware(b *testing.B) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	paths := []string{"/articles/123", "/categories/456", "/health", "/articles/search"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, paths[i%len(paths)], nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}

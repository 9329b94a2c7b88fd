package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsdesk/internal/handler/http/pathutil"
)

// sizeBuckets spans 100B to 1GB; article bodies rarely pass 64KB.
var sizeBuckets = prometheus.ExponentialBuckets(100, 10, 8)

// requestMetrics is the API's RED set. Every vector is labelled by route
// rather than raw path so article and comment ids do not explode the series.
var requestMetrics = struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
	reqSize  *prometheus.HistogramVec
	respSize *prometheus.HistogramVec
}{
	total: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"}),
	duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newsdesk_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "route", "status"}),
	inFlight: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "newsdesk_http_requests_in_flight",
		Help: "HTTP requests currently being served",
	}),
	reqSize: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newsdesk_http_request_size_bytes",
		Help:    "Declared request body size",
		Buckets: sizeBuckets,
	}, []string{"method", "route"}),
	respSize: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newsdesk_http_response_size_bytes",
		Help:    "Bytes written in the response body",
		Buckets: sizeBuckets,
	}, []string{"method", "route"}),
}

// MetricsMiddleware records request count, latency and sizes. It must sit
// directly in front of the ServeMux so the matched pattern is visible on r.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := &requestMetrics
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		rec := newRecorder(w)
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start).Seconds()

		rt := route(r)
		status := strconv.Itoa(rec.status)
		m.total.WithLabelValues(r.Method, rt, status).Inc()
		m.duration.WithLabelValues(r.Method, rt, status).Observe(elapsed)
		if r.ContentLength > 0 {
			m.reqSize.WithLabelValues(r.Method, rt).Observe(float64(r.ContentLength))
		}
		m.respSize.WithLabelValues(r.Method, rt).Observe(float64(rec.bytes))
	})
}

// route is the ServeMux pattern that served r without its method, e.g.
// "/articles/{id}". Unmatched requests fall back to the normalized path.
func route(r *http.Request) string {
	if r.Pattern == "" {
		return pathutil.NormalizePath(r.URL.Path)
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// dispatchTotal counts per-recipient notification outcomes.
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_feed_notifications_total",
			Help: "Total number of per-user feed notifications by outcome",
		},
		[]string{"status"}, // sent|failed
	)

	dispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsdesk_feed_dispatch_duration_seconds",
			Help:    "Time taken to notify every matching user about one article",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	matchedRecipients = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsdesk_feed_matched_recipients",
			Help:    "Number of users whose preferences matched a dispatched article",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		},
	)

	subscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsdesk_feed_subscribers",
			Help: "Number of users with registered feed preferences",
		},
	)
)

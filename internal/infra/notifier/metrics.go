package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// notificationSentTotal tracks delivery results per channel
	notificationSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_notification_sent_total",
			Help: "Total number of webhook notifications by channel and status",
		},
		[]string{"channel", "status"}, // status: success|failure|circuit_open
	)

	notificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsdesk_notification_duration_seconds",
			Help:    "Webhook notification duration in seconds, retries included",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)

	notificationRateLimitWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newsdesk_notification_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the channel rate limiter in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)
)

package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks scheduled jobs and the notification queue.
//
// Exposed series:
//   - newsdesk_worker_job_runs_total: job runs by job and status (success/failure)
//   - newsdesk_worker_job_duration_seconds: job duration histogram by job
//   - newsdesk_worker_job_last_success_timestamp: Unix time of the last successful run by job
//   - newsdesk_worker_dispatch_queue_depth: articles waiting for the next scheduled dispatch
//   - newsdesk_worker_articles_dispatched_total: articles handed to the feed engine by status
type Metrics struct {
	JobRunsTotal            *prometheus.CounterVec
	JobDurationSeconds      *prometheus.HistogramVec
	JobLastSuccess          *prometheus.GaugeVec
	QueueDepth              prometheus.Gauge
	ArticlesDispatchedTotal *prometheus.CounterVec
}

// NewMetrics creates the worker metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_worker_job_runs_total",
			Help: "Total number of scheduled job runs by job and status",
		}, []string{"job", "status"}),

		JobDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsdesk_worker_job_duration_seconds",
			Help:    "Duration of scheduled job runs in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 60, 300},
		}, []string{"job"}),

		JobLastSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "newsdesk_worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful job run",
		}, []string{"job"}),

		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "newsdesk_worker_dispatch_queue_depth",
			Help: "Number of articles waiting for the next scheduled dispatch",
		}),

		ArticlesDispatchedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdesk_worker_articles_dispatched_total",
			Help: "Total number of articles handed to the feed engine by status",
		}, []string{"status"}),
	}
}

// defaultMetrics は DefaultRegisterer に一度だけ登録される
var defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// RecordJobRun counts one run of job and, on success, stamps its last success time.
func (m *Metrics) RecordJobRun(job string, seconds float64, err error) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
	if err != nil {
		m.JobRunsTotal.WithLabelValues(job, "failure").Inc()
		return
	}
	m.JobRunsTotal.WithLabelValues(job, "success").Inc()
	m.JobLastSuccess.WithLabelValues(job).SetToCurrentTime()
}

// RecordDispatch counts an article handed to the feed engine.
func (m *Metrics) RecordDispatch(err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.ArticlesDispatchedTotal.WithLabelValues(status).Inc()
}

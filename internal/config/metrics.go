package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// loadTimestamp is the Unix time of the last successful Load.
	loadTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "newsdesk_config_load_timestamp",
		Help: "Unix timestamp of the last configuration load",
	})

	// validationErrors counts fields rejected by Validate.
	validationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_config_validation_errors_total",
		Help: "Total number of configuration validation errors",
	}, []string{"field"})

	// fallbacks counts environment values that were ignored in favour of a default.
	fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_config_fallbacks_total",
		Help: "Total number of configuration fallbacks to default values",
	}, []string{"field"})
)

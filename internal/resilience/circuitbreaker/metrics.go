package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsdesk_circuit_breaker_transitions_total",
		Help: "Circuit breaker state transitions by breaker and new state",
	}, []string{"breaker", "to"})

	// 0 = closed, 1 = half-open, 2 = open
	stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "newsdesk_circuit_breaker_state",
		Help: "Current circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"breaker"})
)

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Package metrics holds the Prometheus collectors Vaani exports on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaani_commands_total",
			Help: "Commands handled by the router, by result type and success",
		},
		[]string{"type", "success"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vaani_dispatch_duration_seconds",
			Help:    "Time spent in Router.Handle",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	ConfirmationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaani_confirmations_total",
			Help: "Confirmation requests by terminal state (and opened)",
		},
		[]string{"state"},
	)

	TaskRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaani_task_runs_total",
			Help: "Scheduled task firings by outcome",
		},
		[]string{"outcome"},
	)

	MacroRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaani_macro_runs_total",
			Help: "Macro runs by outcome",
		},
		[]string{"outcome"},
	)

	FallbackRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaani_fallback_requests_total",
			Help: "Conversational fallback calls by outcome",
		},
		[]string{"outcome"},
	)

	MatrixMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vaani_matrix_messages_total",
			Help: "Matrix messages accepted for handling",
		},
	)
)

// Outcome label values shared by the run and request counters.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeCancelled   = "cancelled"
	OutcomeRateLimited = "rate_limited"
	OutcomeUnavailable = "unavailable"
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Bool renders a label value for a boolean.
func Bool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Package metrics exposes Prometheus instrumentation for the solving
// pipeline: how long each solve takes, how each cascade pass fares, and
// how many violations the final schedule carries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var (
	// SolveDuration records wall-clock solve time by strategy and outcome.
	SolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_solve_duration_seconds",
		Help:    "Time spent running one Solve call.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"strategy", "status"})

	// SolvePasses counts how often each back-end pass is attempted and
	// whether it succeeded, used to tune the cascade's default timeouts.
	SolvePasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_solve_passes_total",
		Help: "Back-end passes attempted, labeled by pass and outcome.",
	}, []string{"pass", "outcome"})

	// ViolationCount tracks the violation count of the most recent solve
	// per strategy, surfaced so an operator can watch quality drift.
	ViolationCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scheduler_last_violation_count",
		Help: "Violation count from the most recently analyzed schedule.",
	}, []string{"strategy"})
)

// Handler returns the HTTP handler to mount at GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

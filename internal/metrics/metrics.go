// Package metrics provides Prometheus metrics for bracket generation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OutcomeOK labels a generation that committed.
const OutcomeOK = "ok"

var (
	// GenerationsTotal counts generation attempts by format and outcome. The
	// outcome is OutcomeOK, a domain error code, or "error".
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bracket_engine",
			Name:      "generation_total",
			Help:      "Total number of bracket generations by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bracket_engine",
			Name:      "generation_duration_seconds",
			Help:      "Duration of bracket generations in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"format"},
	)

	MatchesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bracket_engine",
			Name:      "matches_created_total",
			Help:      "Total number of match rows written by generations",
		},
		[]string{"format"},
	)
)

// Package metrics exposes Prometheus instrumentation for the assistant.
// Collectors are registered once at package load via promauto and written
// through the helper functions so callers never touch label plumbing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	classificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "egile_classifications_total",
			Help: "Messages classified, labeled by source (primary or fallback) and resulting action.",
		},
		[]string{"source", "action"},
	)

	primaryFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "egile_primary_fallbacks_total",
			Help: "AI classifier attempts that fell back to the rule engine, by reason.",
		},
		[]string{"reason"},
	)

	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "egile_resolutions_total",
			Help: "Product mention resolutions, by winning strategy and outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	resolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "egile_resolution_duration_seconds",
			Help:    "Time to resolve one product mention.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"outcome"},
	)

	chatTurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "egile_chat_turn_duration_seconds",
			Help:    "End-to-end duration of one chat turn.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	dispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "egile_dispatches_total",
			Help: "Backend actions dispatched, by action and result.",
		},
		[]string{"action", "result"},
	)
)

// IncClassification records one classified message.
func IncClassification(source, action string) {
	classificationsTotal.WithLabelValues(source, action).Inc()
}

// IncPrimaryFallback records one fall-through from the AI classifier to the
// rule engine.
func IncPrimaryFallback(reason string) {
	primaryFallbacksTotal.WithLabelValues(reason).Inc()
}

// IncResolution records the winning strategy (or "none") of one mention
// resolution.
func IncResolution(strategy, outcome string) {
	resolutionsTotal.WithLabelValues(strategy, outcome).Inc()
}

// ObserveResolution records how long one mention resolution took.
func ObserveResolution(outcome string, d time.Duration) {
	resolutionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveChatTurn records the end-to-end duration of a chat turn.
func ObserveChatTurn(source string, d time.Duration) {
	chatTurnDuration.WithLabelValues(source).Observe(d.Seconds())
}

// IncDispatch records one dispatched backend action.
func IncDispatch(action, result string) {
	dispatchesTotal.WithLabelValues(action, result).Inc()
}

// ABOUTME: Prometheus counters for the prioritization pipeline
// ABOUTME: Registered on the default registry and served by the web /metrics route
package prioritize

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PrioritizationsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagen_prioritizations_total",
			Help: "Total number of prioritizations saved, by calculated priority",
		},
		[]string{"priority"},
	)

	EnrichmentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagen_prioritization_enrichment_total",
			Help: "Image enrichment outcomes during prioritization",
		},
		[]string{"outcome"},
	)

	PrioritizationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagen_prioritization_failures_total",
			Help: "Prioritization attempts that ended in an error, by pipeline stage",
		},
		[]string{"stage"},
	)

	PrioritizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "pagen_prioritization_evaluate_duration_seconds",
			Help: "Time spent evaluating a prioritization request, including enrichment",
		},
	)
)

const (
	stageValidate = "validate"
	stageLoad     = "load"
	stageGuard    = "guard"
	stageConfirm  = "confirm"
	stageSave     = "save"
)

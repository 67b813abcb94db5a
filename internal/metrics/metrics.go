// Package metrics provides Prometheus metrics for the ensemble toolkit.
// It defines counters, gauges, and histograms for ensemble predictions,
// policy evaluation, and model fitting, exposed via the /metrics endpoint
// of the pipeline binaries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the toolkit.
type Metrics struct {
	// Voting ensemble
	VotePredictions prometheus.Counter // Ensemble predictions served
	VoteTies        prometheus.Counter // Predictions resolved by tie-break
	MemberErrors    prometheus.Counter // Member failures during voting
	EnsembleSize    prometheus.Gauge   // Members admitted after filtering

	// Evaluation
	EpisodesEvaluated prometheus.Counter   // Episodes completed across runs
	EpisodeReward     prometheus.Histogram // Total reward per episode

	// Stacking
	MetaPredictions prometheus.Counter   // Stacked-ensemble prediction calls
	MetaFeatureRows prometheus.Counter   // Meta-feature rows constructed
	FitDuration     prometheus.Histogram // Seconds per fit phase
	TestAccuracy    prometheus.Gauge     // Held-out accuracy of the last run
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry, which keeps tests
// isolated from the global Prometheus state.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		VotePredictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "vote_predictions_total",
			Help: "Total number of voting ensemble predictions served",
		}),
		VoteTies: factory.NewCounter(prometheus.CounterOpts{
			Name: "vote_ties_total",
			Help: "Total number of predictions resolved by the tie-break rule",
		}),
		MemberErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "member_errors_total",
			Help: "Total number of member failures during ensemble prediction",
		}),
		EnsembleSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ensemble_size",
			Help: "Number of members admitted to the current ensemble",
		}),
		EpisodesEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "episodes_evaluated_total",
			Help: "Total number of evaluation episodes completed",
		}),
		EpisodeReward: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "episode_reward",
			Help:    "Total reward per evaluation episode",
			Buckets: prometheus.LinearBuckets(0, 50, 11),
		}),
		MetaPredictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "meta_predictions_total",
			Help: "Total number of stacked ensemble prediction calls",
		}),
		MetaFeatureRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "meta_feature_rows_total",
			Help: "Total number of meta-feature rows constructed",
		}),
		FitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fit_duration_seconds",
			Help:    "Duration of model fit phases in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		TestAccuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "test_accuracy",
			Help: "Held-out test accuracy of the most recent stacking run",
		}),
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Score cache metrics
var (
	// ScoreCacheHits counts scores served from a fresh record
	ScoreCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "score_cache_hits_total",
			Help: "Scores served from a fresh cached record",
		},
	)

	// ScoreCacheMisses counts lookups that found no record or a stale one
	ScoreCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_cache_misses_total",
			Help: "Score lookups that required recomputation, by cause (absent/stale)",
		},
		[]string{"cause"},
	)

	// ScoreRecomputations counts score computations by trigger
	ScoreRecomputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_recomputations_total",
			Help: "Score computations by trigger (lookup/forced/sweep)",
		},
		[]string{"trigger"},
	)

	// ScoreDegraded counts results that fell back to a safe default
	ScoreDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "score_degraded_total",
			Help: "Score results degraded by reason",
		},
		[]string{"reason"},
	)

	// ScoreComputeDuration tracks the time spent computing a score
	ScoreComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "score_compute_duration_seconds",
			Help:    "Score computation latency including storage reads",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)

// Insight metrics
var (
	// InsightMerges counts keyword merges by side (positive/negative/none)
	InsightMerges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_merges_total",
			Help: "Community insight merges by side",
		},
		[]string{"side"},
	)

	// InsightFailures counts insight merges that failed on storage
	InsightFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_failures_total",
			Help: "Community insight merges that failed",
		},
	)
)

// StaleSweepItems counts items refreshed by the background sweeper
var StaleSweepItems = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "stale_sweep_items_total",
		Help: "Items recomputed by the stale score sweeper",
	},
)

package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageDuration tracks how long each pipeline stage takes.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chef_stage_duration_seconds",
			Help:    "Duration of suggestion pipeline stages in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"stage"},
	)

	// SuggestionsTotal counts finished suggestion requests by outcome.
	SuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chef_suggestions_total",
			Help: "Total number of suggestion requests",
		},
		[]string{"outcome", "cache_hit"},
	)

	// SuggestionWall tracks end-to-end wall-clock time of suggestions.
	SuggestionWall = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chef_suggestion_wall_seconds",
			Help:    "Wall-clock duration of suggestion requests in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 4, 6, 8, 10, 15, 30},
		},
		[]string{"cache_hit"},
	)

	// OperationsTotal accumulates the per-request counters.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chef_operations_total",
			Help: "Total number of external calls, cache lookups and errors",
		},
		[]string{"counter"},
	)
)

// Observe exports a finished request summary to the process metrics.
func Observe(s Summary, outcome string, cacheHit bool) {
	hit := strconv.FormatBool(cacheHit)
	for _, st := range s.Stages {
		StageDuration.WithLabelValues(st.Name).Observe(st.DurationMS / 1000)
	}
	SuggestionsTotal.WithLabelValues(outcome, hit).Inc()
	SuggestionWall.WithLabelValues(hit).Observe(s.WallMS / 1000)

	c := s.Counters
	addCounter(CounterLLMCalls, c.LLMCalls)
	addCounter(CounterSearchCalls, c.SearchCalls)
	addCounter(CounterCacheHits, c.CacheHits)
	addCounter(CounterCacheMisses, c.CacheMisses)
	addCounter(CounterErrors, c.Errors)
}

func addCounter(name string, n int) {
	if n > 0 {
		OperationsTotal.WithLabelValues(name).Add(float64(n))
	}
}

package services

import "github.com/prometheus/client_golang/prometheus"

var (
	recommendationRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_requests_total",
		Help: "Recommendation requests by outcome",
	}, []string{"outcome"})

	recommendationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_duration_seconds",
		Help:    "End-to-end recommendation pipeline latency",
		Buckets: prometheus.DefBuckets,
	})

	recommendationCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_cache_hits_total",
		Help: "Recommendation responses served from cache",
	})

	backfillRoundsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_backfill_rounds_total",
		Help: "Category backfill rounds issued",
	})

	backfillEscalationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_backfill_escalations_total",
		Help: "Category backfill escalation rounds issued",
	})

	emptyCategoriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_empty_categories_total",
		Help: "Categories omitted because they could not be filled",
	})
)

func init() {
	prometheus.MustRegister(
		recommendationRequests,
		recommendationDuration,
		recommendationCacheHits,
		backfillRoundsTotal,
		backfillEscalationsTotal,
		emptyCategoriesTotal,
	)
}

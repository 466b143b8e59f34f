package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentmatch_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "talentmatch_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	swipesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentmatch_swipes_total",
		Help: "Count of recorded swipes by role and decision",
	}, []string{"role", "decision"})

	matchesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentmatch_matches_created_total",
		Help: "Count of created matches by source",
	}, []string{"source"})

	feedRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "talentmatch_feed_request_duration_seconds",
		Help:    "Duration of feed selection by ranking mode",
		Buckets: prometheus.DefBuckets,
	}, []string{"ranked"})

	feedCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentmatch_feed_cache_total",
		Help: "Feed cache lookups by outcome",
	}, []string{"outcome"})

	escalationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "talentmatch_job_interest_escalations_total",
		Help: "Count of job-interest escalations by outcome",
	}, []string{"outcome"})

	reconcilerRepairsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "talentmatch_reconciler_repairs_total",
		Help: "Count of matches created by the mutual-swipe reconciler",
	})
)

// ObserveHTTPRequest records one completed HTTP request
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveSwipe records one persisted swipe
func ObserveSwipe(role string, interested bool) {
	decision := "reject"
	if interested {
		decision = "like"
	}
	swipesTotal.WithLabelValues(role, decision).Inc()
}

// ObserveMatchCreated records one created match. Source is "swipe",
// "job_interest" or "reconciler".
func ObserveMatchCreated(source string) {
	matchesCreatedTotal.WithLabelValues(source).Inc()
}

// ObserveFeedRequest records one feed selection
func ObserveFeedRequest(ranked bool, duration time.Duration) {
	label := "false"
	if ranked {
		label = "true"
	}
	feedRequestDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObserveFeedCache records a feed cache lookup outcome: "hit", "miss" or "error"
func ObserveFeedCache(outcome string) {
	feedCacheTotal.WithLabelValues(outcome).Inc()
}

// ObserveEscalation records one job-interest escalation outcome:
// "match_created", "match_updated", "no_employer" or "declined"
func ObserveEscalation(outcome string) {
	escalationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveReconcilerRepair records one match repaired by the reconciler
func ObserveReconcilerRepair() {
	reconcilerRepairsTotal.Inc()
}

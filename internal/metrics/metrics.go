// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total HTTP requests by route pattern, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Short links
	ShortLinksCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_short_links_created_total",
			Help: "Short links allocated for recipes",
		},
	)

	ShortLinkCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_short_link_collisions_total",
			Help: "Candidate tokens rejected because they were already taken",
		},
	)

	ShortLinkCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_short_link_cache_total",
			Help: "Short link cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// Recipes
	RecipeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Recipe create and update transactions by outcome",
		},
		[]string{"operation", "outcome"},
	)
)

// ObserveHTTP records one finished request.
func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

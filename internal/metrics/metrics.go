// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchRequestsTotal    *prometheus.CounterVec
	fetchRetriesTotal     prometheus.Counter
	postsIngestedTotal    *prometheus.CounterVec
	entitiesResolvedTotal *prometheus.CounterVec
	pagesHarvestedTotal   prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_fetch_requests_total",
				Help: "Total number of HTTP fetches, labeled by status class.",
			},
			[]string{"status"},
		)

		fetchRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_fetch_retries_total",
				Help: "Total number of fetch retry attempts.",
			},
		)

		postsIngestedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_posts_ingested_total",
				Help: "Total number of posts processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		entitiesResolvedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_entities_resolved_total",
				Help: "Total entity resolutions, labeled by kind and source.",
			},
			[]string{"kind", "source"},
		)

		pagesHarvestedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "harvester_pages_total",
				Help: "Total number of remote pages processed.",
			},
		)
	})
}

// ObserveFetch records one completed HTTP fetch.
func ObserveFetch(statusCode int) {
	if fetchRequestsTotal == nil {
		return
	}
	fetchRequestsTotal.WithLabelValues(statusClass(statusCode)).Inc()
}

// IncFetchRetry records one retry attempt.
func IncFetchRetry() {
	if fetchRetriesTotal == nil {
		return
	}
	fetchRetriesTotal.Inc()
}

// IncPostIngested records a post ingestion outcome (created, updated, failed).
func IncPostIngested(outcome string) {
	if postsIngestedTotal == nil {
		return
	}
	postsIngestedTotal.WithLabelValues(outcome).Inc()
}

// IncEntityResolved records an entity resolution and where it was served from
// (cache, store, remote, placeholder).
func IncEntityResolved(kind, source string) {
	if entitiesResolvedTotal == nil {
		return
	}
	entitiesResolvedTotal.WithLabelValues(kind, source).Inc()
}

// IncPageHarvested records one processed remote page.
func IncPageHarvested() {
	if pagesHarvestedTotal == nil {
		return
	}
	pagesHarvestedTotal.Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return fmt.Sprintf("%dxx", code/100)
}

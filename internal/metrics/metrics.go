// Package metrics provides Prometheus metrics for the blog server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spacetraveling"

var (
	// ContentRequestsTotal counts content API requests by operation and outcome.
	ContentRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_requests_total",
			Help:      "Total number of content API requests",
		},
		[]string{"operation", "status"},
	)

	// ContentRequestDuration measures content API latency.
	ContentRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "content_request_duration_seconds",
			Help:      "Duration of content API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// PageCacheLookupsTotal counts page cache lookups by result.
	PageCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_cache_lookups_total",
			Help:      "Total number of page cache lookups",
		},
		[]string{"result"},
	)

	// PageRenderDuration measures how long page generation takes.
	PageRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_render_duration_seconds",
			Help:      "Duration of page generation in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// PaginationLoadsTotal counts load-more requests by outcome.
	PaginationLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pagination_loads_total",
			Help:      "Total number of load-more requests",
		},
		[]string{"outcome"},
	)

	// PreviewRequestsTotal counts preview entries by outcome.
	PreviewRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preview_requests_total",
			Help:      "Total number of preview requests",
		},
		[]string{"outcome"},
	)
)

// RecordContentRequest records one content API request.
func RecordContentRequest(operation, status string, duration float64) {
	ContentRequestsTotal.WithLabelValues(operation, status).Inc()
	ContentRequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheLookup records a page cache lookup result.
func RecordCacheLookup(result string) {
	PageCacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordRender records a page generation.
func RecordRender(mode string, duration float64) {
	PageRenderDuration.WithLabelValues(mode).Observe(duration)
}

// RecordPaginationLoad records a load-more outcome.
func RecordPaginationLoad(outcome string) {
	PaginationLoadsTotal.WithLabelValues(outcome).Inc()
}

// RecordPreview records a preview request outcome.
func RecordPreview(outcome string) {
	PreviewRequestsTotal.WithLabelValues(outcome).Inc()
}

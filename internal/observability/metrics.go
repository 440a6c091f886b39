// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Render metrics
	RendersTotal   *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	NoDataTotal    *prometheus.CounterVec
	RowsDiscarded  *prometheus.HistogramVec

	// Cache metrics
	CacheLookups     *prometheus.CounterVec
	CacheComputes    *prometheus.CounterVec
	CacheShared      *prometheus.CounterVec
	CachePurged      prometheus.Counter
	CacheEntryBytes  *prometheus.HistogramVec
	CacheStoreErrors *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPurge prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "portfolio_graphs"
	}

	return &Metrics{
		// Render metrics
		RendersTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "total",
			Help:      "Total number of graph renders by graph type and outcome",
		}, []string{"graph_type", "outcome"}),
		RenderDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Graph render duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"graph_type"}),
		NoDataTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "nodata_total",
			Help:      "Total number of no-data results by kind",
		}, []string{"graph_type", "kind"}),
		RowsDiscarded: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "rows_discarded",
			Help:      "Rows fetched for lookback and discarded by the range trimmer",
			Buckets:   []float64{0, 1, 5, 10, 30, 60, 120, 366},
		}, []string{"graph_type"}),

		// Cache metrics
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of cache lookups by namespace and result",
		}, []string{"namespace", "result"}),
		CacheComputes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "computes_total",
			Help:      "Total number of computations run on cache miss by status",
		}, []string{"namespace", "status"}),
		CacheShared: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "shared_total",
			Help:      "Total number of callers that received another caller's computation",
		}, []string{"namespace"}),
		CachePurged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "purged_entries_total",
			Help:      "Total number of expired cache entries deleted",
		}),
		CacheEntryBytes: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entry_bytes",
			Help:      "Size of stored cache entries in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"namespace"}),
		CacheStoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "store_errors_total",
			Help:      "Total number of cache persistence errors by operation",
		}, []string{"operation"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// HTTP metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),

		// Health metrics
		LastSuccessfulPurge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_purge_timestamp",
			Help:      "Unix timestamp of last successful cache purge",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRender records a finished render.
func RecordRender(graphType, outcome string, seconds float64) {
	DefaultMetrics.RendersTotal.WithLabelValues(graphType, outcome).Inc()
	DefaultMetrics.RenderDuration.WithLabelValues(graphType).Observe(seconds)
}

// RecordNoData records a no-data result.
func RecordNoData(graphType, kind string) {
	DefaultMetrics.NoDataTotal.WithLabelValues(graphType, kind).Inc()
}

// RecordRowsDiscarded records how many rows the range trimmer removed.
func RecordRowsDiscarded(graphType string, n int) {
	DefaultMetrics.RowsDiscarded.WithLabelValues(graphType).Observe(float64(n))
}

// RecordCacheLookup records a cache lookup; result is "hit", "miss", "stale" or "bypass".
func RecordCacheLookup(namespace, result string) {
	DefaultMetrics.CacheLookups.WithLabelValues(namespace, result).Inc()
}

// RecordCacheCompute records a computation run on a cache miss.
func RecordCacheCompute(namespace string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.CacheComputes.WithLabelValues(namespace, status).Inc()
}

// RecordCacheShared records a caller served by a concurrent computation.
func RecordCacheShared(namespace string) {
	DefaultMetrics.CacheShared.WithLabelValues(namespace).Inc()
}

// RecordCacheStored records the size of a stored entry.
func RecordCacheStored(namespace string, bytes int) {
	DefaultMetrics.CacheEntryBytes.WithLabelValues(namespace).Observe(float64(bytes))
}

// RecordCacheStoreError records a failed cache persistence operation.
func RecordCacheStoreError(operation string) {
	DefaultMetrics.CacheStoreErrors.WithLabelValues(operation).Inc()
}

// RecordCachePurge records a completed purge.
func RecordCachePurge(removed int64, unixTime int64) {
	DefaultMetrics.CachePurged.Add(float64(removed))
	DefaultMetrics.LastSuccessfulPurge.Set(float64(unixTime))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(route string, code int) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, statusLabel(code)).Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

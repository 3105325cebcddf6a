// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	coverageQueries     *prometheus.CounterVec
	coverageDuration    prometheus.Histogram
	footprintsLoaded    prometheus.Gauge
	footprintsReady     prometheus.Gauge
	mosaicRuns          *prometheus.CounterVec
	mosaicDuration      prometheus.Histogram
	storageOperations   *prometheus.CounterVec
	storageDuration     *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a new Prometheus metrics collector.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "skyline"
	}

	return &Collector{
		coverageQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "coverage_queries_total",
				Help:      "Total number of sky coverage queries",
			},
			[]string{"status"},
		),

		coverageDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "coverage_query_duration_seconds",
				Help:      "Coverage query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		footprintsLoaded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "footprints_loaded",
				Help:      "Number of loaded observation footprints",
			},
		),

		footprintsReady: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "footprints_ready",
				Help:      "Number of ready observation footprints",
			},
		),

		mosaicRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mosaic_runs_total",
				Help:      "Total number of mosaic assembly runs",
			},
			[]string{"status"},
		),

		mosaicDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "mosaic_duration_seconds",
				Help:      "Mosaic assembly duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),

		storageOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Total number of storage operations",
			},
			[]string{"operation", "status"},
		),

		storageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_duration_seconds",
				Help:      "Storage operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// IncCoverageQueries increments the coverage query counter.
func (c *Collector) IncCoverageQueries(success bool) {
	c.coverageQueries.WithLabelValues(statusLabel(success)).Inc()
}

// ObserveCoverageDuration records coverage query duration.
func (c *Collector) ObserveCoverageDuration(duration time.Duration) {
	c.coverageDuration.Observe(duration.Seconds())
}

// SetFootprintsLoaded sets the number of loaded footprints.
func (c *Collector) SetFootprintsLoaded(count int) {
	c.footprintsLoaded.Set(float64(count))
}

// SetFootprintsReady sets the number of ready footprints.
func (c *Collector) SetFootprintsReady(count int) {
	c.footprintsReady.Set(float64(count))
}

// IncMosaicRuns increments the mosaic run counter.
func (c *Collector) IncMosaicRuns(success bool) {
	c.mosaicRuns.WithLabelValues(statusLabel(success)).Inc()
}

// ObserveMosaicDuration records mosaic assembly duration.
func (c *Collector) ObserveMosaicDuration(duration time.Duration) {
	c.mosaicDuration.Observe(duration.Seconds())
}

// IncStorageOperations increments storage operation counter.
func (c *Collector) IncStorageOperations(operation string, success bool) {
	c.storageOperations.WithLabelValues(operation, statusLabel(success)).Inc()
}

// ObserveStorageDuration records storage operation duration.
func (c *Collector) ObserveStorageDuration(operation string, duration time.Duration) {
	c.storageDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncHTTPRequests increments the HTTP request counter.
func (c *Collector) IncHTTPRequests(method, path, status string) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveHTTPDuration records HTTP request duration.
func (c *Collector) ObserveHTTPDuration(method, path string, duration time.Duration) {
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns HTTP middleware for metrics collection.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		path := normalizePath(r.URL.Path)
		status := statusToString(wrapped.statusCode)

		c.IncHTTPRequests(r.Method, path, status)
		c.ObserveHTTPDuration(r.Method, path, duration)
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// normalizePath normalizes the URL path for metrics.
func normalizePath(path string) string {
	// Replace dynamic segments with placeholders
	// This prevents high cardinality metrics
	switch {
	case len(path) > 20:
		return path[:20] + "..."
	default:
		return path
	}
}

// statusToString converts HTTP status code to string category.
func statusToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

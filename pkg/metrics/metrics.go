// Package metrics exposes Prometheus collectors for HTTP traffic and the
// file-management domain.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "filehub"

	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDenied  = "denied"

	unmatchedRoute = "unmatched"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_active_requests",
		Help:      "Requests currently being served.",
	})
)

var (
	// FileOperationsTotal counts file manager mutations by outcome.
	FileOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_operations_total",
			Help:      "File manager operations by operation and result.",
		},
		[]string{"operation", "result"},
	)

	UploadedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Bytes written to blob storage by uploads.",
	})

	AuditRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_records_total",
			Help:      "Audit records written by action and success flag.",
		},
		[]string{"action", "success"},
	)

	AdminAccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_access_total",
			Help:      "Admin area access attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// ObserveFileOperation records one file manager call.
func ObserveFileOperation(operation string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	FileOperationsTotal.WithLabelValues(operation, result).Inc()
}

// MetricsMiddleware records request count, latency and in-flight requests.
// The route template is used as the path label to bound cardinality.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpActiveRequests.Inc()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			httpActiveRequests.Dec()

			path := c.Path()
			if path == "" {
				path = unmatchedRoute
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			httpRequestsTotal.WithLabelValues(method, path, status).Inc()
			httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}

// RegisterMetricsRoute exposes the default registry at /metrics.
func RegisterMetricsRoute(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Handler is the raw Prometheus handler, for tests and non-echo mounts.
func Handler() http.Handler {
	return promhttp.Handler()
}

package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mmm_login_total",
			Help: "Total number of login attempts",
		},
	)

	TokenIssuedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mmm_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	TenantResolutionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmm_tenant_resolutions_total",
			Help: "Total number of tenant resolutions from request hosts",
		},
		[]string{"outcome"}, // "resolved", "none", "reserved"
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmm_auth_errors_total",
			Help: "Total number of authentication and authorization errors",
		},
		[]string{"type"}, // "invalid_token", "expired_token", "tenant_mismatch", ...
	)

	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmm_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	AnalysisRunCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mmm_analysis_runs_total",
			Help: "Total number of marketing mix model runs started",
		},
	)

	DataUploadCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mmm_data_uploads_total",
			Help: "Total number of marketing data uploads",
		},
	)

	TenantOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mmm_tenant_operations_total",
			Help: "Total number of admin tenant operations",
		},
		[]string{"operation"}, // "create", "list", "access", "statistics"
	)
)

// Histogram metrics
var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mmm_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mmm_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update"
	)
)

// Gauge metrics
var (
	ActiveTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mmm_active_tenants",
			Help: "Number of currently active tenants",
		},
	)

	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mmm_info",
			Help: "Information about the MMM platform service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(TokenIssuedCounter)
	prometheus.MustRegister(TenantResolutionCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AnalysisRunCounter)
	prometheus.MustRegister(DataUploadCounter)
	prometheus.MustRegister(TenantOperationCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(ActiveTenantsGauge)
	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "0.1.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication or authorization error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTenantResolution records the outcome of a tenant resolution
func RecordTenantResolution(outcome string) {
	TenantResolutionCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordTenantOperation records an admin tenant operation
func RecordTenantOperation(operation string) {
	TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// UpdateActiveTenants updates the active tenants gauge
func UpdateActiveTenants(count int64) {
	ActiveTenantsGauge.Set(float64(count))
}

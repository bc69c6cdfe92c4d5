package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database/Repository Metrics
var (
	// DBOperations tracks total database operations
	DBOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_db_operations_total",
			Help: "Total database operations by repository, operation, and status",
		},
		[]string{"repo", "operation", "status"},
	)

	// DBDuration tracks database operation latency
	DBDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "lock_db_operation_duration_ms",
			Help:                            "Database operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBRowsAffected tracks rows affected by write operations
	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "lock_db_rows_affected",
			Help:                            "Number of rows affected by database write operations",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBErrors tracks database errors by type
	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_db_errors_total",
			Help: "Total database errors by repository, operation, and error type",
		},
		[]string{"repo", "operation", "error_type"},
	)
)

// Service Layer Metrics
var (
	ServiceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_service_operations_total",
			Help: "Total service operations by service, method, and status",
		},
		[]string{"service", "method", "status"},
	)

	ServiceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "lock_service_operation_duration_ms",
			Help:                            "Service operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"service", "method"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_cache_hits_total",
			Help: "Total cache hits by service and cache name",
		},
		[]string{"service", "cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_cache_misses_total",
			Help: "Total cache misses by service and cache name",
		},
		[]string{"service", "cache_name"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_cache_evictions_total",
			Help: "Total cache evictions by service and cache name",
		},
		[]string{"service", "cache_name"},
	)
)

// HTTP Handler Metrics
var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "lock_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "path"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lock_http_active_requests",
			Help: "Number of active HTTP requests",
		},
	)
)

// Application CDN Metrics
var (
	// CDNRequests tracks requests made to the client configuration CDN
	CDNRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_cdn_requests_total",
			Help: "Total client configuration CDN requests by method, route (normalized path), and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	CDNDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "lock_cdn_request_duration_ms",
			Help:                            "Client configuration CDN request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	CDNErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_cdn_errors_total",
			Help: "Total client configuration CDN errors by route and error type",
		},
		[]string{"route", "error_type"},
	)

	// CDNRetries tracks retried application fetches
	CDNRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lock_cdn_retries_total",
			Help: "Total retries of client configuration fetches",
		},
	)
)

// Resolution Metrics
var (
	// ConfigurationResolutions tracks resolved configurations by the derived passwordless mode
	ConfigurationResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_configuration_resolutions_total",
			Help: "Total configuration resolutions by passwordless mode",
		},
		[]string{"passwordless_mode"},
	)

	// DefaultDatabaseFallbacks counts resolutions where the requested default database was missing
	DefaultDatabaseFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lock_default_database_fallbacks_total",
			Help: "Total resolutions where the requested default database connection was not found",
		},
	)

	// ResolvedConnections tracks the size of the last resolved configuration by auth type
	ResolvedConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lock_resolved_connections",
			Help: "Number of connections in the last resolved configuration by auth type",
		},
		[]string{"auth_type"},
	)

	// PasswordlessIdentities tracks remember/recall operations of the last passwordless identity
	PasswordlessIdentities = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lock_passwordless_identity_operations_total",
			Help: "Total passwordless identity operations by operation and status",
		},
		[]string{"operation", "status"},
	)
)

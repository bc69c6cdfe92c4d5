package metrics

import (
	"strings"
	"time"
)

// RecordDBOperation records database operation metrics consistently
// repo: repository name (e.g., "passwordless_identity")
// operation: operation name (e.g., "get", "save", "delete")
// duration: time taken for the operation
// rowsAffected: number of rows affected/returned (-1 if not applicable)
// err: error from the operation (nil if successful)
func RecordDBOperation(repo, operation string, duration time.Duration, rowsAffected int64, err error) {
	ms := float64(duration.Milliseconds())
	DBDuration.WithLabelValues(repo, operation).Observe(ms)

	if rowsAffected >= 0 {
		DBRowsAffected.WithLabelValues(repo, operation).Observe(float64(rowsAffected))
	}

	DBOperations.WithLabelValues(repo, operation, status(err)).Inc()
	if err != nil {
		DBErrors.WithLabelValues(repo, operation, classifyDBError(err)).Inc()
	}
}

// RecordServiceOperation records a service method call and its latency
func RecordServiceOperation(service, method string, duration time.Duration, err error) {
	ServiceDuration.WithLabelValues(service, method).Observe(float64(duration.Milliseconds()))
	ServiceOperations.WithLabelValues(service, method, status(err)).Inc()
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(service, cacheName string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(service, cacheName).Inc()
		return
	}
	CacheMisses.WithLabelValues(service, cacheName).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// classifyDBError categorizes database errors for metrics
func classifyDBError(err error) string {
	if err == nil {
		return "none"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "duplicate") || strings.Contains(errStr, "unique constraint"):
		return "duplicate"
	case strings.Contains(errStr, "not found") || strings.Contains(errStr, "no rows"):
		return "not_found"
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return "timeout"
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "connect"):
		return "connection"
	case strings.Contains(errStr, "constraint"):
		return "constraint"
	case strings.Contains(errStr, "syntax"):
		return "syntax"
	default:
		return "other"
	}
}

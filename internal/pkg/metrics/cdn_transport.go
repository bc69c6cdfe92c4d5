package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// cdnMetricsTransport wraps an http.RoundTripper to collect metrics on client configuration fetches
type cdnMetricsTransport struct {
	base http.RoundTripper
}

// NewCDNMetricsTransport creates a new transport wrapper that collects metrics for every
// request made through it. It should be installed on the application fetcher's HTTP client.
func NewCDNMetricsTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &cdnMetricsTransport{base: base}
}

// RoundTrip implements http.RoundTripper
func (t *cdnMetricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	route := normalizeCDNRoute(req.URL.Path)
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	CDNRequests.WithLabelValues(req.Method, route, strconv.Itoa(statusCode)).Inc()
	CDNDuration.WithLabelValues(req.Method, route).Observe(float64(duration.Milliseconds()))

	if err != nil || statusCode >= 400 {
		CDNErrors.WithLabelValues(route, classifyCDNError(statusCode, err)).Inc()
	}

	return resp, err
}

var clientRoutePattern = regexp.MustCompile(`/client/[^/]+\.js$`)

// normalizeCDNRoute replaces client IDs with a placeholder to keep label cardinality low
func normalizeCDNRoute(path string) string {
	return clientRoutePattern.ReplaceAllString(path, "/client/:id.js")
}

// classifyCDNError categorizes fetch errors for metrics
func classifyCDNError(statusCode int, err error) string {
	if err != nil {
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
			return "timeout"
		case strings.Contains(errStr, "connection"):
			return "connection"
		case strings.Contains(errStr, "tls") || strings.Contains(errStr, "TLS"):
			return "tls"
		default:
			return "network"
		}
	}

	switch {
	case statusCode == 403:
		return "forbidden"
	case statusCode == 404:
		return "not_found"
	case statusCode == 429:
		return "rate_limited"
	case statusCode >= 500:
		return "server_error"
	case statusCode >= 400:
		return "client_error"
	default:
		return "unknown"
	}
}

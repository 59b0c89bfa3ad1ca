package backendapi

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/devilmonastery/chirp/internal/pkg/metrics"
)

// metricsTransport wraps an http.RoundTripper to collect metrics on identity provider calls
type metricsTransport struct {
	base http.RoundTripper
}

// NewMetricsTransport creates a transport wrapper that records call counts,
// latency, errors and 429s for every request sent through it.
func NewMetricsTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &metricsTransport{base: base}
}

// RoundTrip implements http.RoundTripper
func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	route := normalizeRoute(req.URL.Path)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
		if statusCode == http.StatusTooManyRequests {
			metrics.IdentityRateLimitHits.WithLabelValues(route).Inc()
		}
	}

	metrics.IdentityAPICalls.WithLabelValues(req.Method, route, strconv.Itoa(statusCode)).Inc()
	metrics.IdentityAPIDuration.WithLabelValues(req.Method, route).Observe(float64(duration.Milliseconds()))

	if err != nil || statusCode >= 400 {
		metrics.IdentityAPIErrors.WithLabelValues(route, classifyError(statusCode, err)).Inc()
	}

	return resp, err
}

var routePatterns = []struct {
	regex   *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`/users/[^/]+`), "/users/:id"},
	{regexp.MustCompile(`/sessions/[^/]+`), "/sessions/:id"},
}

// normalizeRoute replaces IDs in API paths with placeholders to keep
// metric cardinality bounded
func normalizeRoute(path string) string {
	normalized := path
	for _, p := range routePatterns {
		normalized = p.regex.ReplaceAllString(normalized, p.replace)
	}
	return normalized
}

// classifyError categorizes identity provider API errors for metrics
func classifyError(statusCode int, err error) string {
	if err != nil {
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
			return "timeout"
		case strings.Contains(errStr, "canceled"):
			return "canceled"
		case strings.Contains(errStr, "connection"):
			return "connection"
		case strings.Contains(errStr, "tls"), strings.Contains(errStr, "TLS"), strings.Contains(errStr, "x509"):
			return "tls"
		default:
			return "network"
		}
	}

	switch {
	case statusCode == 400:
		return "bad_request"
	case statusCode == 401:
		return "unauthorized"
	case statusCode == 403:
		return "forbidden"
	case statusCode == 404:
		return "not_found"
	case statusCode == 422:
		return "unprocessable"
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

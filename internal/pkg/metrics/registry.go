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
			Name: "chirp_db_operations_total",
			Help: "Total database operations by repository, operation, and status",
		},
		[]string{"repo", "operation", "status"},
	)

	// DBDuration tracks database operation latency
	DBDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "chirp_db_operation_duration_ms",
			Help:                            "Database operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBRowsAffected tracks rows affected or returned by operations
	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "chirp_db_rows_affected",
			Help:                            "Number of rows affected or returned by database operations",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBErrors tracks database errors by type
	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_db_errors_total",
			Help: "Total database errors by repository, operation, and error type",
		},
		[]string{"repo", "operation", "error_type"},
	)
)

// Service Layer Metrics
var (
	// ServiceOperations tracks service-level operations
	ServiceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_service_operations_total",
			Help: "Total service operations by service, method, and status",
		},
		[]string{"service", "method", "status"},
	)

	// ServiceDuration tracks service operation latency
	ServiceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "chirp_service_operation_duration_ms",
			Help:                            "Service operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"service", "method"},
	)

	// ProfileLookupAmbiguous counts username lookups where the provider returned more than one match
	ProfileLookupAmbiguous = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chirp_profile_lookup_ambiguous_total",
			Help: "Username lookups that matched more than one provider user",
		},
	)
)

// gRPC Handler Metrics
var (
	// GRPCRequests tracks gRPC requests
	GRPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_grpc_requests_total",
			Help: "Total gRPC requests by service, method, and status code",
		},
		[]string{"service", "method", "status_code"},
	)

	// GRPCDuration tracks gRPC request duration
	GRPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "chirp_grpc_request_duration_ms",
			Help:                            "gRPC request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"service", "method"},
	)

	// GRPCRateLimited tracks requests rejected by the rate limiter
	GRPCRateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_grpc_rate_limited_total",
			Help: "Total gRPC requests rejected by the rate limiter",
		},
		[]string{"method"},
	)
)

// HTTP/Web Handler Metrics
var (
	// HTTPRequests tracks HTTP requests
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration tracks HTTP request duration
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "chirp_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "path"},
	)
)

// Identity Provider API Metrics
var (
	// IdentityAPICalls tracks calls to the hosted identity provider
	IdentityAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_identity_api_calls_total",
			Help: "Total identity provider API calls by method, route (normalized path), and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	// IdentityAPIDuration tracks identity provider API latency
	IdentityAPIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "chirp_identity_api_duration_ms",
			Help:                            "Identity provider API call duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	// IdentityAPIErrors tracks identity provider API errors
	IdentityAPIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_identity_api_errors_total",
			Help: "Total identity provider API errors by route and error type",
		},
		[]string{"route", "error_type"},
	)

	// IdentityRateLimitHits tracks 429 responses from the identity provider
	IdentityRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_identity_ratelimit_hits_total",
			Help: "Total identity provider rate limit hits (429 responses, by route)",
		},
		[]string{"route"},
	)
)

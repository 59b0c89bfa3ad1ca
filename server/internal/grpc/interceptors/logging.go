package interceptors

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/devilmonastery/chirp/internal/pkg/logger"
	"github.com/devilmonastery/chirp/internal/pkg/metrics"
)

// RequestIDHeader carries a caller-supplied request ID; one is generated when absent
const RequestIDHeader = "x-request-id"

type requestLoggerKey struct{}

// LoggerFromContext returns the request-scoped logger, or the default logger
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(requestLoggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// Observability returns a unary interceptor that assigns a request ID,
// records gRPC metrics and logs each call
func Observability() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				requestID = v[0]
			}
		}
		if requestID == "" {
			requestID = logger.NewRequestID()
		}

		log := logger.WithGRPCMethod(logger.WithRequest(slog.Default(), requestID), info.FullMethod)
		ctx = context.WithValue(ctx, requestLoggerKey{}, log)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		code := status.Code(err)
		service, method := splitMethod(info.FullMethod)
		metrics.GRPCRequests.WithLabelValues(service, method, code.String()).Inc()
		metrics.GRPCDuration.WithLabelValues(service, method).Observe(float64(duration.Milliseconds()))

		log = logger.WithDuration(log, duration)
		if err != nil {
			log.Warn("grpc request failed", "code", code.String(), "error", err)
		} else {
			log.Debug("grpc request", "code", code.String())
		}

		return resp, err
	}
}

// splitMethod splits "/pkg.Service/Method" into its service and method parts
func splitMethod(fullMethod string) (string, string) {
	trimmed := strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i], trimmed[i+1:]
	}
	return "unknown", trimmed
}

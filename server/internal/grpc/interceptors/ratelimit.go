package interceptors

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/devilmonastery/chirp/internal/auth"
	"github.com/devilmonastery/chirp/internal/pkg/metrics"
	"github.com/devilmonastery/chirp/internal/pkg/ratelimit"
)

// RateLimit returns a unary interceptor that limits the listed methods per
// authenticated user. It must run after the auth interceptor. When the
// limiter errors the request is let through.
func RateLimit(limiter ratelimit.Limiter, methods ...string) grpc.UnaryServerInterceptor {
	limited := make(map[string]bool, len(methods))
	for _, m := range methods {
		limited[m] = true
	}
	log := slog.Default().With("component", "ratelimit_interceptor")

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !limited[info.FullMethod] {
			return handler(ctx, req)
		}

		user, err := auth.GetUserFromContext(ctx)
		if err != nil {
			// Unauthenticated calls are rejected downstream
			return handler(ctx, req)
		}

		decision, err := limiter.Allow(ctx, info.FullMethod+":"+user.UserID)
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request", "error", err)
			return handler(ctx, req)
		}

		_ = grpc.SetHeader(ctx, metadata.Pairs(
			"x-ratelimit-limit", strconv.Itoa(decision.Limit),
			"x-ratelimit-remaining", strconv.Itoa(decision.Remaining),
		))

		if !decision.Allowed {
			metrics.GRPCRateLimited.WithLabelValues(info.FullMethod).Inc()
			retry := int(decision.RetryAfter.Round(time.Second) / time.Second)
			_ = grpc.SetHeader(ctx, metadata.Pairs("retry-after", strconv.Itoa(max(retry, 1))))
			return nil, status.Errorf(codes.ResourceExhausted,
				"too many requests, try again in %s", decision.RetryAfter.Round(time.Second))
		}

		return handler(ctx, req)
	}
}

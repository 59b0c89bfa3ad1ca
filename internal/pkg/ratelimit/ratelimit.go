// Package ratelimit implements a fixed-window request limiter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of a limiter check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // zero when allowed
}

// Limiter decides whether a keyed request may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter counts requests per key in windows of fixed length. The first
// request in a window starts the key's TTL.
type RedisLimiter struct {
	client redis.Cmdable
	limit  int
	window time.Duration
	prefix string
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a limiter allowing limit requests per window
func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// Allow implements Limiter. Errors mean Redis could not be consulted; callers
// decide whether to fail open.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.prefix + ":" + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	return decide(incr.Val(), l.limit, ttl.Val(), l.window), nil
}

// decide turns a window counter into a Decision
func decide(count int64, limit int, ttl, window time.Duration) Decision {
	if ttl <= 0 {
		ttl = window
	}

	if count > int64(limit) {
		return Decision{Allowed: false, Limit: limit, Remaining: 0, RetryAfter: ttl}
	}
	return Decision{Allowed: true, Limit: limit, Remaining: limit - int(count)}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "stockflow:ratelimit:"

// RedisRateLimiter is a fixed-window limiter shared by every server instance
// pointing at the same Redis. Redis errors fail open.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewRedisRateLimiter parses url and returns a limiter. It does not dial;
// use Ping to check connectivity.
func NewRedisRateLimiter(url string, limit int, window time.Duration, logger *slog.Logger) (*RedisRateLimiter, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = time.Second
	opt.WriteTimeout = time.Second
	opt.MaxRetries = 1

	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRateLimiter{
		client: redis.NewClient(opt),
		limit:  int64(limit),
		window: window,
		now:    time.Now,
		logger: logger,
	}, nil
}

// Ping verifies the Redis connection.
func (r *RedisRateLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// key buckets requests into the window containing now.
func (r *RedisRateLimiter) key(userID int64) string {
	bucket := r.now().UnixNano() / int64(r.window)
	return fmt.Sprintf("%s%d:%d", redisKeyPrefix, userID, bucket)
}

// Allow increments the user's counter for the current window.
func (r *RedisRateLimiter) Allow(ctx context.Context, userID int64) bool {
	key := r.key(userID)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, r.window)
		return nil
	})
	if err != nil {
		r.logger.Warn("Redis rate limiter unavailable, allowing request", "user_id", userID, "error", err)
		return true
	}
	return incr.Val() <= r.limit
}

// Stop closes the Redis client.
func (r *RedisRateLimiter) Stop() {
	if err := r.client.Close(); err != nil {
		r.logger.Warn("Failed to close redis client", "error", err)
	}
}

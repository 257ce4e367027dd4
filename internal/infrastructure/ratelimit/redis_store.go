// Package ratelimit provides a Redis-backed store for echo's rate limiter
// middleware, so several API instances can share one budget per client.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/taskflow/core/internal/infrastructure/logger"
)

var _ middleware.RateLimiterStore = (*RedisStore)(nil)

// slidingWindow trims entries older than the window, then admits the request
// when fewer than limit remain. Returns 1 when allowed, 0 otherwise.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	if redis.call('ZCARD', key) < limit then
		local counter = redis.call('INCR', counter_key)
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('PEXPIRE', key, window_ms)
		redis.call('PEXPIRE', counter_key, window_ms)
		return 1
	end
	return 0
`)

// Config configures a RedisStore
type Config struct {
	Limit     int
	Window    time.Duration
	KeyPrefix string
	Timeout   time.Duration
}

// RedisStore is a sliding-window middleware.RateLimiterStore
type RedisStore struct {
	client *redis.Client
	config Config
	logger *logger.Logger
	now    func() time.Time
}

// NewRedisStore creates a store on an existing client. The caller owns the client.
func NewRedisStore(client *redis.Client, cfg Config, log *logger.Logger) *RedisStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "taskflow:ratelimit:"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 100 * time.Millisecond
	}

	return &RedisStore{
		client: client,
		config: cfg,
		logger: log.WithComponent("rate_limiter"),
		now:    time.Now,
	}
}

// Allow reports whether identifier may make another request. Redis failures
// let the request through.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	allowed, err := s.allow(ctx, identifier)
	if err != nil {
		s.logger.Warnw("Rate limiter unavailable, allowing request", "identifier", identifier, "error", err)
		return true, nil
	}

	return allowed, nil
}

func (s *RedisStore) allow(ctx context.Context, identifier string) (bool, error) {
	now := s.now()
	key := s.config.KeyPrefix + identifier

	res, err := slidingWindow.Run(ctx, s.client, []string{key, key + ":counter"},
		now.UnixMilli(),
		now.Add(-s.config.Window).UnixMilli(),
		s.config.Limit,
		s.config.Window.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	return res == 1, nil
}

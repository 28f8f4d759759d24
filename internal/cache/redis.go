// Package cache provides the Redis access layer: the shared token bucket
// behind API rate limiting and the readiness ping.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client. Bucket math reads the clock through now.
type Cache struct {
	client *redis.Client
	now    func() time.Time
}

// Option adjusts the client before it connects.
type Option func(*redis.Options, *Cache)

// WithPoolSize overrides the connection pool size.
func WithPoolSize(size int) Option {
	return func(o *redis.Options, _ *Cache) {
		if size > 0 {
			o.PoolSize = size
		}
	}
}

// WithClock replaces time.Now, mainly for tests that pin bucket refills.
func WithClock(now func() time.Time) Option {
	return func(_ *redis.Options, c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New parses redisURL, applies pool defaults and opts, and pings the server.
// The client is closed again when the ping fails.
func New(ctx context.Context, redisURL string, opts ...Option) (*Cache, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	redisOpts.PoolSize = 10
	redisOpts.MinIdleConns = 2
	redisOpts.PoolTimeout = 4 * time.Second
	redisOpts.ConnMaxIdleTime = 5 * time.Minute

	c := &Cache{now: time.Now}
	for _, opt := range opts {
		opt(redisOpts, c)
	}

	c.client = redis.NewClient(redisOpts)
	if err := c.client.Ping(ctx).Err(); err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// Ping is the readiness probe for /readyz.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the raw client to integration tests.
func (c *Cache) Client() *redis.Client {
	return c.client
}

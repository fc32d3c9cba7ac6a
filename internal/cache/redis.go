// Package cache provides Redis cache access layer.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default TTLs for cached profile resolutions.
const (
	DefaultProfileTTL  = 5 * time.Minute
	DefaultNegativeTTL = 30 * time.Second
)

// ErrCacheMiss is returned when a key is absent or unreadable.
var ErrCacheMiss = errors.New("cache miss")

// Cache provides Redis cache access methods.
type Cache struct {
	client      *redis.Client
	profileTTL  time.Duration
	negativeTTL time.Duration
}

// New creates a new Cache with a Redis client.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return NewFromClient(client), nil
}

// NewFromClient wraps an existing client with default TTLs.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{
		client:      client,
		profileTTL:  DefaultProfileTTL,
		negativeTTL: DefaultNegativeTTL,
	}
}

// SetProfileTTL overrides the positive and negative profile TTLs.
// Non-positive values keep the current setting.
func (c *Cache) SetProfileTTL(positive, negative time.Duration) {
	if positive > 0 {
		c.profileTTL = positive
	}
	if negative > 0 {
		c.negativeTTL = negative
	}
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to Cache.
func (c *Cache) Client() *redis.Client {
	return c.client
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	// ErrCacheMiss is returned when a key is absent or expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrClosed is returned by writes after Close
	ErrClosed = errors.New("cache closed")
)

// Cache interface for caching operations
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeleteByPattern removes all values matching a pattern (e.g., "cache:dashboard:*")
	DeleteByPattern(ctx context.Context, pattern string) error

	// Close closes the cache connection
	Close() error
}

// Key prefixes for dashboard caching
const (
	// KeyPrefixDashboard covers every dashboard key
	KeyPrefixDashboard = "cache:dashboard:"

	// KeyDashboardStats holds the task and agent status counts
	KeyDashboardStats = "cache:dashboard:stats"

	// KeyPrefixPerformance is the prefix for performance series, suffixed by window hours
	KeyPrefixPerformance = "cache:dashboard:performance:"
)

// TTL configurations for different cache types
const (
	// TTLStats is the TTL for status counts
	TTLStats = 30 * time.Second

	// TTLPerformance is the TTL for performance series. Samples are hourly,
	// so anything below the chart refresh period is fresh enough.
	TTLPerformance = 45 * time.Second
)

// Open picks the cache backend: none when disabled, Redis when a URL is
// given, in-process memory otherwise.
func Open(ctx context.Context, redisURL string, disabled bool) (Cache, error) {
	switch {
	case disabled:
		log.Printf("[Cache] disabled")
		return NewNoOpCache(), nil
	case redisURL == "":
		log.Printf("[Cache] using in-memory cache")
		return NewMemoryCache(), nil
	}

	c, err := NewRedisCache(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open redis cache: %w", err)
	}

	log.Printf("[Cache] using redis cache")
	return c, nil
}

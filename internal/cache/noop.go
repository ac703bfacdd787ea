package cache

import (
	"context"
	"time"
)

// NoOpCache never stores anything, so every dashboard read goes to the database
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (NoOpCache) Get(context.Context, string) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (NoOpCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoOpCache) Delete(context.Context, string) error { return nil }

func (NoOpCache) DeleteByPattern(context.Context, string) error { return nil }

func (NoOpCache) Close() error { return nil }

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	_, err := c.Get(ctx, KeyDashboardStats)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, KeyDashboardStats, []byte(`{"tasks":{}}`), time.Minute))
	got, err := c.Get(ctx, KeyDashboardStats)
	require.NoError(t, err)
	assert.Equal(t, `{"tasks":{}}`, string(got))

	require.NoError(t, c.Set(ctx, KeyPrefixPerformance+"24", []byte("x"), -time.Second))
	_, err = c.Get(ctx, KeyPrefixPerformance+"24")
	assert.ErrorIs(t, err, ErrCacheMiss, "expired entries miss")

	require.NoError(t, c.Set(ctx, KeyPrefixPerformance+"48", []byte("y"), time.Minute))
	require.NoError(t, c.DeleteByPattern(ctx, KeyPrefixDashboard+"*"))

	_, err = c.Get(ctx, KeyDashboardStats)
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, KeyPrefixPerformance+"48")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNoOpCacheAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	c := NewNoOpCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheCopiesPayloads(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	payload := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", payload, time.Minute))
	payload[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCacheClose(t *testing.T) {
	c := NewMemoryCache()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Set(context.Background(), "k", nil, time.Minute), ErrClosed)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, "", true)
	require.NoError(t, err)
	assert.IsType(t, &NoOpCache{}, c)

	c, err = Open(ctx, "", false)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
	require.NoError(t, c.Close())

	_, err = Open(ctx, "http://not-redis", false)
	assert.Error(t, err)
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"cache:dashboard:*", "cache:dashboard:stats", true},
		{"cache:dashboard:*", "cache:other", false},
		{"cache:dashboard:stats", "cache:dashboard:stats", true},
		{"", "", true},
		{"", "x", false},
		{"cache:dashboard:performance:?4", "cache:dashboard:performance:24", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, matchPattern(tt.pattern, tt.key))
		})
	}
}

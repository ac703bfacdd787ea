package handlers

import (
	"context"
	"net/http"

	"github.com/sadewadee/hashcat-dashboard/internal/cache"
	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// StatsServiceInterface defines the stats service methods
type StatsServiceInterface interface {
	GetStats(ctx context.Context) (*domain.Stats, error)
}

// CachedStatsHandler serves the task, agent and result counts behind the cache
type CachedStatsHandler struct {
	stats StatsServiceInterface
	cache cache.Cache
}

// NewCachedStatsHandler creates a new CachedStatsHandler
func NewCachedStatsHandler(stats StatsServiceInterface, c cache.Cache) *CachedStatsHandler {
	return &CachedStatsHandler{
		stats: stats,
		cache: c,
	}
}

// GetDashboardStats handles GET /api/v1/stats
func (h *CachedStatsHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	serveCached(w, r, cachedResource{
		cache: h.cache,
		key:   cache.KeyDashboardStats,
		ttl:   cache.TTLStats,
		label: "stats",
		load: func(ctx context.Context) (any, error) {
			return h.stats.GetStats(ctx)
		},
		failure: "Failed to get stats",
	})
}

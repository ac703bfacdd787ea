package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/cache"
)

// cachedResource describes one JSON payload served through the cache
type cachedResource struct {
	cache   cache.Cache
	key     string
	ttl     time.Duration
	label   string
	load    func(ctx context.Context) (any, error)
	failure string
}

// serveCached answers GET requests from the cache and falls back to load.
// X-Cache tells HIT from MISS.
func serveCached(w http.ResponseWriter, r *http.Request, res cachedResource) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx := r.Context()

	if body, err := res.cache.Get(ctx, res.key); err == nil && body != nil {
		log.Printf("[Cache] HIT %s", res.label)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	log.Printf("[Cache] MISS %s", res.label)
	v, err := res.load(ctx)
	if err != nil {
		RenderError(w, http.StatusInternalServerError, res.failure+": "+err.Error())
		return
	}

	if body, err := json.Marshal(v); err == nil {
		// RenderJSON ends the body with a newline, so does a HIT
		body = append(body, '\n')
		if err := res.cache.Set(ctx, res.key, body, res.ttl); err != nil {
			log.Printf("[Cache] failed to store %s: %v", res.key, err)
		}
	}

	w.Header().Set("X-Cache", "MISS")
	RenderJSON(w, http.StatusOK, v)
}

// CachedPerformanceHandler serves performance series behind the cache
type CachedPerformanceHandler struct {
	series PerformanceServiceInterface
	cache  cache.Cache
}

// NewCachedPerformanceHandler creates a new CachedPerformanceHandler
func NewCachedPerformanceHandler(series PerformanceServiceInterface, c cache.Cache) *CachedPerformanceHandler {
	return &CachedPerformanceHandler{
		series: series,
		cache:  c,
	}
}

// Data handles GET /api/performance-data. Each window size has its own key.
func (h *CachedPerformanceHandler) Data(w http.ResponseWriter, r *http.Request) {
	hours := parseHours(r)

	serveCached(w, r, cachedResource{
		cache: h.cache,
		key:   fmt.Sprintf("%s%d", cache.KeyPrefixPerformance, hours),
		ttl:   cache.TTLPerformance,
		label: fmt.Sprintf("performance %dh", hours),
		load: func(ctx context.Context) (any, error) {
			return h.series.Series(ctx, hours)
		},
		failure: "Failed to get performance data",
	})
}

// CacheInvalidator drops cached dashboard data after writes. A nil
// invalidator is valid and does nothing.
type CacheInvalidator struct {
	cache cache.Cache
}

func NewCacheInvalidator(c cache.Cache) *CacheInvalidator {
	return &CacheInvalidator{cache: c}
}

// InvalidateStats drops the cached status counts
func (ci *CacheInvalidator) InvalidateStats(ctx context.Context) {
	if ci == nil {
		return
	}
	if err := ci.cache.Delete(ctx, cache.KeyDashboardStats); err != nil {
		log.Printf("[Cache] failed to invalidate stats: %v", err)
	}
}

// InvalidatePerformance drops every cached performance window
func (ci *CacheInvalidator) InvalidatePerformance(ctx context.Context) {
	if ci == nil {
		return
	}
	if err := ci.cache.DeleteByPattern(ctx, cache.KeyPrefixPerformance+"*"); err != nil {
		log.Printf("[Cache] failed to invalidate performance data: %v", err)
	}
}

package heartbeat

import (
	"context"
	"log"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// MetricsRecorder samples cluster throughput into the current hour bucket
type MetricsRecorder interface {
	RecordCurrent(ctx context.Context) (*domain.PerformanceMetric, error)
}

// CacheInvalidator drops cached copies of data the recorder changed
type CacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Recorder periodically stores a performance sample. Samples taken in
// the same hour overwrite each other, so the bucket holds the latest.
type Recorder struct {
	metrics  MetricsRecorder
	cache    CacheInvalidator
	cacheKey string
	interval time.Duration
}

// NewRecorder creates a new Recorder. cache may be nil.
func NewRecorder(metrics MetricsRecorder, cache CacheInvalidator, cachePattern string, interval time.Duration) *Recorder {
	if interval == 0 {
		interval = 5 * time.Minute
	}

	return &Recorder{
		metrics:  metrics,
		cache:    cache,
		cacheKey: cachePattern,
		interval: interval,
	}
}

// Run records one sample immediately and then one per interval
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("performance recorder started (interval: %s)", r.interval)

	r.record(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("performance recorder stopped")
			return nil
		case <-ticker.C:
			r.record(ctx)
		}
	}
}

func (r *Recorder) record(ctx context.Context) {
	m, err := r.metrics.RecordCurrent(ctx)
	if err != nil {
		log.Printf("error recording performance metric: %v", err)
		return
	}

	if r.cache != nil && r.cacheKey != "" {
		if err := r.cache.DeleteByPattern(ctx, r.cacheKey); err != nil {
			log.Printf("error invalidating performance cache: %v", err)
		}
	}

	log.Printf("recorded performance sample for %s: agents=%d completed=%d speed=%.0f H/s",
		m.Timestamp.Format(time.RFC3339), m.ActiveAgents, m.CompletedTasks, m.Speed)
}

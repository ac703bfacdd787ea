package perfdata

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// DefaultRefreshInterval is how often the performance chart reloads
const DefaultRefreshInterval = 60 * time.Second

// SeriesSource produces performance series. Fetch must always return a
// usable series, falling back internally.
type SeriesSource interface {
	Fetch(ctx context.Context) Result
}

// Snapshot is the state of the chart at one point in time
type Snapshot struct {
	Series    *domain.MetricsSeries `json:"series"`
	Source    Source                `json:"source"`
	Token     uint64                `json:"token"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Chart holds the series currently on display. Its data is replaced in
// place, the Chart itself lives as long as its Controller.
type Chart struct {
	mu   sync.RWMutex
	snap Snapshot
}

// Snapshot returns a copy of the current state. Series is nil before
// the first refresh has been applied.
func (c *Chart) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.snap
	snap.Series = c.snap.Series.Clone()
	return snap
}

// Controller owns the performance chart and its refresh timer
type Controller struct {
	source   SeriesSource
	interval time.Duration
	chart    *Chart

	issued   atomic.Uint64
	inflight atomic.Int32

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	onApply []func(Snapshot)
}

// NewController creates a stopped controller
func NewController(source SeriesSource, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	return &Controller{
		source:   source,
		interval: interval,
		chart:    &Chart{},
	}
}

// OnApply registers fn to run after a refresh result is applied
func (c *Controller) OnApply(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onApply = append(c.onApply, fn)
}

// Chart returns the chart handle
func (c *Controller) Chart() *Chart {
	return c.chart
}

// Snapshot is shorthand for Chart().Snapshot()
func (c *Controller) Snapshot() Snapshot {
	return c.chart.Snapshot()
}

// Loading reports whether any refresh is in flight
func (c *Controller) Loading() bool {
	return c.inflight.Load() > 0
}

// Interval returns the refresh period
func (c *Controller) Interval() time.Duration {
	return c.interval
}

// Start renders the chart once and then installs the refresh timer.
// Calling Start on a running controller is a no-op.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.Refresh(loopCtx)

	go func() {
		defer close(done)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				c.Refresh(loopCtx)
			}
		}
	}()

	log.Printf("[perfdata] chart refresh started (interval: %s)", c.interval)
}

// Stop cancels the refresh timer and waits for the loop to exit.
// It is safe to call more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	log.Println("[perfdata] chart refresh stopped")
}

// Run starts the controller and blocks until ctx is done
func (c *Controller) Run(ctx context.Context) error {
	c.Start(ctx)
	<-ctx.Done()
	c.Stop()
	return nil
}

// Refresh fetches a new series and applies it unless a newer refresh
// was issued meanwhile. It reports whether the result was applied.
func (c *Controller) Refresh(ctx context.Context) bool {
	token := c.issued.Add(1)

	c.inflight.Add(1)
	res := c.source.Fetch(ctx)
	c.inflight.Add(-1)

	if res.Series == nil {
		log.Printf("[perfdata] refresh %d returned no series", token)
		return false
	}

	return c.apply(token, res)
}

func (c *Controller) apply(token uint64, res Result) bool {
	c.chart.mu.Lock()

	if token != c.issued.Load() || token <= c.chart.snap.Token {
		c.chart.mu.Unlock()
		log.Printf("[perfdata] discarding stale refresh %d", token)
		return false
	}

	c.chart.snap = Snapshot{
		Series:    res.Series,
		Source:    res.Source,
		Token:     token,
		UpdatedAt: time.Now(),
	}
	snap := c.chart.snap
	snap.Series = snap.Series.Clone()
	c.chart.mu.Unlock()

	c.mu.Lock()
	hooks := append([]func(Snapshot){}, c.onApply...)
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(snap)
	}

	return true
}

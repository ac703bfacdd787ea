package heartbeat

import (
	"context"
	"log"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// AgentService defines methods needed for heartbeat monitoring
type AgentService interface {
	MarkOfflineAgents(ctx context.Context) (int, error)
}

// Monitor monitors agent heartbeats and marks stale agents as offline
type Monitor struct {
	agents    AgentService
	interval  time.Duration
	onOffline func(ctx context.Context, n int)
}

// NewMonitor creates a new heartbeat monitor
func NewMonitor(agents AgentService, interval time.Duration) *Monitor {
	if interval == 0 {
		interval = domain.HeartbeatInterval
	}

	return &Monitor{
		agents:   agents,
		interval: interval,
	}
}

// OnOffline registers fn to run after a sweep marks at least one agent offline
func (m *Monitor) OnOffline(fn func(ctx context.Context, n int)) *Monitor {
	m.onOffline = fn
	return m
}

// Run starts the heartbeat monitor
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	log.Printf("heartbeat monitor started (interval: %s, timeout: %s)",
		m.interval, domain.HeartbeatTimeout)

	for {
		select {
		case <-ctx.Done():
			log.Println("heartbeat monitor stopped")
			return nil
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	count, err := m.agents.MarkOfflineAgents(ctx)
	if err != nil {
		log.Printf("error marking offline agents: %v", err)
		return
	}

	if count == 0 {
		return
	}

	log.Printf("marked %d agents as offline", count)
	if m.onOffline != nil {
		m.onOffline(ctx, count)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

var (
	ErrAgentNameRequired = errors.New("agent name is required")
	ErrInvalidStatus     = errors.New("invalid status")
)

// AgentService handles agent business logic
type AgentService struct {
	agents  domain.AgentRepository
	timeout time.Duration
}

// NewAgentService creates a new AgentService
func NewAgentService(agents domain.AgentRepository) *AgentService {
	return &AgentService{
		agents:  agents,
		timeout: domain.HeartbeatTimeout,
	}
}

// Register creates an agent with a fresh API key. It stays offline
// until its first heartbeat.
func (s *AgentService) Register(ctx context.Context, req domain.CreateAgentRequest) (*domain.Agent, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrAgentNameRequired
	}

	key, err := domain.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	now := time.Now().UTC()
	agent := &domain.Agent{
		ID:        uuid.NewString(),
		Name:      name,
		Hostname:  req.Hostname,
		APIKey:    key,
		Status:    domain.AgentStatusOffline,
		LastSeen:  now,
		CreatedAt: now,
	}

	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, fmt.Errorf("failed to register agent: %w", err)
	}

	return agent, nil
}

// Heartbeat updates agent status and last_seen
func (s *AgentService) Heartbeat(ctx context.Context, hb domain.AgentHeartbeat) error {
	if hb.Status == "" {
		hb.Status = domain.AgentStatusOnline
	}
	if !hb.Status.IsValid() {
		return ErrInvalidStatus
	}

	if err := s.agents.Heartbeat(ctx, hb); err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", err)
	}

	return nil
}

// List retrieves agents
func (s *AgentService) List(ctx context.Context, params domain.AgentListParams) ([]*domain.Agent, error) {
	agents, err := s.agents.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	// Keys are only shown once, at registration
	for _, a := range agents {
		a.APIKey = ""
	}

	return agents, nil
}

// MarkOfflineAgents marks agents with a stale heartbeat as offline
func (s *AgentService) MarkOfflineAgents(ctx context.Context) (int, error) {
	n, err := s.agents.MarkOfflineAgents(ctx, s.timeout)
	if err != nil {
		return 0, fmt.Errorf("failed to mark offline agents: %w", err)
	}

	return n, nil
}

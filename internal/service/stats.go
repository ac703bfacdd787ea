package service

import (
	"context"
	"fmt"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// StatsService handles statistics aggregation
type StatsService struct {
	tasks   domain.TaskRepository
	agents  domain.AgentRepository
	results domain.ResultRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(
	tasks domain.TaskRepository,
	agents domain.AgentRepository,
	results domain.ResultRepository,
) *StatsService {
	return &StatsService{
		tasks:   tasks,
		agents:  agents,
		results: results,
	}
}

// GetStats retrieves the status counts shown on the dashboard
func (s *StatsService) GetStats(ctx context.Context) (*domain.Stats, error) {
	taskCounts, err := s.tasks.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get task stats: %w", err)
	}

	agentCounts, err := s.agents.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent stats: %w", err)
	}

	results, err := s.results.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}

	stats := &domain.Stats{Results: results}
	for status, n := range taskCounts {
		stats.Tasks.AddTaskStatus(status, n)
	}
	for status, n := range agentCounts {
		stats.Agents.AddAgentStatus(status, n)
	}

	return stats, nil
}

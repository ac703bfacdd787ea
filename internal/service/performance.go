package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// Dataset labels of the performance chart
const (
	LabelActiveAgents   = "Active Agents"
	LabelCompletedTasks = "Completed Tasks"
	LabelSpeed          = "Speed (MH/s)"
)

// DefaultWindowHours is how much history the performance chart shows
const DefaultWindowHours = 24

// PerformanceService builds performance series from hourly samples and
// records new samples.
type PerformanceService struct {
	metrics domain.PerformanceRepository
	tasks   domain.TaskRepository
	agents  domain.AgentRepository
	now     func() time.Time
}

// NewPerformanceService creates a new PerformanceService
func NewPerformanceService(
	metrics domain.PerformanceRepository,
	tasks domain.TaskRepository,
	agents domain.AgentRepository,
) *PerformanceService {
	return &PerformanceService{
		metrics: metrics,
		tasks:   tasks,
		agents:  agents,
		now:     time.Now,
	}
}

// Series returns one bucket per hour for the last hours hours, oldest
// first. Hours without a sample are zero.
func (s *PerformanceService) Series(ctx context.Context, hours int) (*domain.MetricsSeries, error) {
	if hours <= 0 {
		hours = DefaultWindowHours
	}

	end := s.now().UTC().Truncate(time.Hour)
	start := end.Add(-time.Duration(hours-1) * time.Hour)

	samples, err := s.metrics.ListSince(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("failed to list performance metrics: %w", err)
	}

	byHour := make(map[int64]*domain.PerformanceMetric, len(samples))
	for _, m := range samples {
		byHour[m.Timestamp.UTC().Truncate(time.Hour).Unix()] = m
	}

	series := &domain.MetricsSeries{
		Labels: make([]string, 0, hours),
		Datasets: []domain.Dataset{
			{Label: LabelActiveAgents, Data: make([]float64, 0, hours), Axis: domain.AxisCount},
			{Label: LabelCompletedTasks, Data: make([]float64, 0, hours), Axis: domain.AxisCount},
			{Label: LabelSpeed, Data: make([]float64, 0, hours), Axis: domain.AxisSpeed},
		},
	}

	for ts := start; !ts.After(end); ts = ts.Add(time.Hour) {
		series.Labels = append(series.Labels, domain.FormatHour(ts))

		var agents, completed, speed float64
		if m, ok := byHour[ts.Unix()]; ok {
			agents = float64(m.ActiveAgents)
			completed = float64(m.CompletedTasks)
			speed = m.Speed / 1_000_000
		}

		series.Datasets[0].Data = append(series.Datasets[0].Data, agents)
		series.Datasets[1].Data = append(series.Datasets[1].Data, completed)
		series.Datasets[2].Data = append(series.Datasets[2].Data, speed)
	}

	return series, nil
}

// RecordCurrent samples the cluster and stores it in the current hour bucket
func (s *PerformanceService) RecordCurrent(ctx context.Context) (*domain.PerformanceMetric, error) {
	now := s.now().UTC()
	hour := now.Truncate(time.Hour)

	agentCounts, err := s.agents.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count agents: %w", err)
	}

	completed, err := s.tasks.CountCompletedSince(ctx, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	speed, err := s.tasks.TotalRunningSpeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum task speed: %w", err)
	}

	metric := &domain.PerformanceMetric{
		Timestamp:      hour,
		ActiveAgents:   agentCounts[domain.AgentStatusOnline] + agentCounts[domain.AgentStatusBusy],
		CompletedTasks: completed,
		Speed:          speed,
	}

	if err := s.metrics.Record(ctx, metric); err != nil {
		return nil, fmt.Errorf("failed to record performance metric: %w", err)
	}

	return metric, nil
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskRepository defines the interface for task persistence
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *Task) error

	// GetByID retrieves a task by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)

	// List retrieves tasks with optional filtering
	List(ctx context.Context, params TaskListParams) ([]*Task, int, error)

	// UpdateProgress updates progress, speed and optionally status
	UpdateProgress(ctx context.Context, id uuid.UUID, update TaskProgressUpdate) error

	// CountByStatus returns the number of tasks per status
	CountByStatus(ctx context.Context) (map[TaskStatus]int, error)

	// CountCompletedSince counts tasks that completed at or after since
	CountCompletedSince(ctx context.Context, since time.Time) (int, error)

	// TotalRunningSpeed sums the speed of running tasks
	TotalRunningSpeed(ctx context.Context) (float64, error)
}

// AgentRepository defines the interface for agent persistence
type AgentRepository interface {
	// Create registers a new agent
	Create(ctx context.Context, agent *Agent) error

	// GetByID retrieves an agent by ID
	GetByID(ctx context.Context, id string) (*Agent, error)

	// List retrieves agents
	List(ctx context.Context, params AgentListParams) ([]*Agent, error)

	// Heartbeat records status and last_seen for an agent
	Heartbeat(ctx context.Context, hb AgentHeartbeat) error

	// MarkOfflineAgents marks agents as offline if last_seen is stale
	MarkOfflineAgents(ctx context.Context, timeout time.Duration) (int, error)

	// CountByStatus returns the number of agents per status
	CountByStatus(ctx context.Context) (map[AgentStatus]int, error)
}

// ResultRepository defines the interface for cracked result persistence
type ResultRepository interface {
	// CreateBatch stores cracked hashes for a task
	CreateBatch(ctx context.Context, batch ResultBatch) (int, error)

	// GetByID retrieves a single result
	GetByID(ctx context.Context, id int64) (*Result, error)

	// List retrieves results matching the filter, newest first
	List(ctx context.Context, filter ResultFilter) ([]*Result, int, error)

	// Count returns the total number of results
	Count(ctx context.Context) (int, error)
}

// PerformanceRepository defines the interface for performance samples
type PerformanceRepository interface {
	// Record upserts the sample for its hour bucket
	Record(ctx context.Context, metric *PerformanceMetric) error

	// ListSince returns samples at or after since, oldest first
	ListSince(ctx context.Context, since time.Time) ([]*PerformanceMetric, error)
}

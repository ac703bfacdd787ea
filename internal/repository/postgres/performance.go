package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// PerformanceRepository implements domain.PerformanceRepository for PostgreSQL
type PerformanceRepository struct {
	db *sql.DB
}

// NewPerformanceRepository creates a new PerformanceRepository
func NewPerformanceRepository(db *sql.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// Record upserts the sample for its hour bucket
func (r *PerformanceRepository) Record(ctx context.Context, m *domain.PerformanceMetric) error {
	query := `
		INSERT INTO performance_metrics (timestamp, active_agents, completed_tasks, speed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (timestamp) DO UPDATE SET
			active_agents = EXCLUDED.active_agents,
			completed_tasks = EXCLUDED.completed_tasks,
			speed = EXCLUDED.speed
	`

	_, err := r.db.ExecContext(ctx, query,
		m.Timestamp.UTC().Truncate(time.Hour), m.ActiveAgents, m.CompletedTasks, m.Speed)
	return err
}

// ListSince returns samples at or after since, oldest first
func (r *PerformanceRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.PerformanceMetric, error) {
	query := `
		SELECT id, timestamp, active_agents, completed_tasks, speed
		FROM performance_metrics
		WHERE timestamp >= $1
		ORDER BY timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []*domain.PerformanceMetric
	for rows.Next() {
		m := &domain.PerformanceMetric{}
		if err := rows.Scan(&m.ID, &m.Timestamp, &m.ActiveAgents, &m.CompletedTasks, &m.Speed); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

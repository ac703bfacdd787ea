package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// PerformanceRepository implements domain.PerformanceRepository for SQLite
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
		VALUES (?, ?, ?, ?)
		ON CONFLICT(timestamp) DO UPDATE SET
			active_agents = excluded.active_agents,
			completed_tasks = excluded.completed_tasks,
			speed = excluded.speed
	`

	_, err := r.db.ExecContext(ctx, query,
		formatTime(m.Timestamp.Truncate(time.Hour)), m.ActiveAgents, m.CompletedTasks, m.Speed)
	return err
}

// ListSince returns samples at or after since, oldest first
func (r *PerformanceRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.PerformanceMetric, error) {
	query := `
		SELECT id, timestamp, active_agents, completed_tasks, speed
		FROM performance_metrics
		WHERE timestamp >= ?
		ORDER BY timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, query, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []*domain.PerformanceMetric
	for rows.Next() {
		m := &domain.PerformanceMetric{}
		var ts string
		if err := rows.Scan(&m.ID, &ts, &m.ActiveAgents, &m.CompletedTasks, &m.Speed); err != nil {
			return nil, err
		}
		m.Timestamp = parseTime(ts)
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// TaskRepository implements domain.TaskRepository for PostgreSQL
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `
	id, name, description, hash_type, hash_type_id, hashes,
	wordlist_path, rule_path, mask, attack_mode, priority, status,
	agent_id, progress, speed, created_at, updated_at, started_at, completed_at
`

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	hashes, err := json.Marshal(task.Hashes)
	if err != nil {
		return fmt.Errorf("failed to encode hashes: %w", err)
	}

	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err = r.db.ExecContext(ctx, query,
		task.ID, task.Name, task.Description, task.HashType, task.HashTypeID, string(hashes),
		task.WordlistPath, task.RulePath, task.Mask, int(task.AttackMode), task.Priority, string(task.Status),
		task.AgentID, task.Progress, task.Speed,
		task.CreatedAt, task.UpdatedAt, task.StartedAt, task.CompletedAt,
	)

	return err
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return task, nil
}

// List retrieves tasks, highest priority and newest first
func (r *TaskRepository) List(ctx context.Context, params domain.TaskListParams) ([]*domain.Task, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, string(*params.Status))
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := 20
	if params.Limit > 0 {
		limit = params.Limit
	}

	query := fmt.Sprintf(`SELECT %s FROM tasks %s ORDER BY priority DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		taskColumns, whereClause, argNum, argNum+1)
	args = append(args, limit, params.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	return tasks, total, rows.Err()
}

// UpdateProgress updates progress, speed and optionally status
func (r *TaskRepository) UpdateProgress(ctx context.Context, id uuid.UUID, update domain.TaskProgressUpdate) error {
	var status sql.NullString
	if update.Status != nil {
		status = sql.NullString{String: string(*update.Status), Valid: true}
	}

	query := `
		UPDATE tasks SET
			progress = $1,
			speed = $2,
			updated_at = NOW(),
			status = COALESCE($3, status),
			started_at = CASE WHEN $3 = 'running' AND started_at IS NULL THEN NOW() ELSE started_at END,
			completed_at = CASE WHEN $3 IN ('completed', 'failed', 'cancelled') THEN NOW() ELSE completed_at END
		WHERE id = $4
	`

	res, err := r.db.ExecContext(ctx, query, update.Progress, update.Speed, status, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// CountByStatus returns the number of tasks per status
func (r *TaskRepository) CountByStatus(ctx context.Context) (map[domain.TaskStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TaskStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.TaskStatus(status)] = n
	}

	return counts, rows.Err()
}

// CountCompletedSince counts tasks that completed at or after since
func (r *TaskRepository) CountCompletedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status = 'completed' AND completed_at >= $1`, since).Scan(&n)
	return n, err
}

// TotalRunningSpeed sums the speed of running tasks
func (r *TaskRepository) TotalRunningSpeed(ctx context.Context) (float64, error) {
	var speed float64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(speed), 0) FROM tasks WHERE status = 'running'`).Scan(&speed)
	return speed, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	task := &domain.Task{}
	var idStr, status string
	var hashesJSON []byte
	var attackMode int
	var agentID sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&idStr, &task.Name, &task.Description, &task.HashType, &task.HashTypeID, &hashesJSON,
		&task.WordlistPath, &task.RulePath, &task.Mask, &attackMode, &task.Priority, &status,
		&agentID, &task.Progress, &task.Speed, &task.CreatedAt, &task.UpdatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	task.ID, _ = uuid.Parse(idStr)
	task.Status = domain.TaskStatus(status)
	task.AttackMode = domain.AttackMode(attackMode)
	_ = json.Unmarshal(hashesJSON, &task.Hashes)

	if agentID.Valid {
		task.AgentID = &agentID.String
	}
	if startedAt.Valid {
		task.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}

	return task, nil
}

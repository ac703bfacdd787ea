package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// ResultRepository implements domain.ResultRepository for SQLite
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// CreateBatch stores cracked hashes for a task
func (r *ResultRepository) CreateBatch(ctx context.Context, batch domain.ResultBatch) (int, error) {
	if len(batch.Results) == 0 {
		return 0, nil
	}

	agentID := sql.NullString{}
	if batch.AgentID != nil {
		agentID = sql.NullString{String: *batch.AgentID, Valid: true}
	}

	now := formatTime(time.Now())
	taskID := batch.TaskID.String()

	// SQLite limits bound variables per statement
	chunkSize := 100
	inserted := 0
	for i := 0; i < len(batch.Results); i += chunkSize {
		end := min(i+chunkSize, len(batch.Results))
		chunk := batch.Results[i:end]

		valueStrings := make([]string, 0, len(chunk))
		valueArgs := make([]interface{}, 0, len(chunk)*5)
		for _, c := range chunk {
			valueStrings = append(valueStrings, "(?, ?, ?, ?, ?)")
			valueArgs = append(valueArgs, taskID, c.Hash, c.Plaintext, agentID, now)
		}

		query := fmt.Sprintf("INSERT INTO results (task_id, hash_value, plaintext, agent_id, cracked_at) VALUES %s",
			strings.Join(valueStrings, ","))

		if _, err := r.db.ExecContext(ctx, query, valueArgs...); err != nil {
			return inserted, err
		}
		inserted += len(chunk)
	}

	return inserted, nil
}

// GetByID retrieves a single result
func (r *ResultRepository) GetByID(ctx context.Context, id int64) (*domain.Result, error) {
	query := `SELECT id, task_id, hash_value, plaintext, agent_id, cracked_at FROM results WHERE id = ?`

	res, err := scanResult(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return res, nil
}

// List retrieves results matching the filter, newest first
func (r *ResultRepository) List(ctx context.Context, filter domain.ResultFilter) ([]*domain.Result, int, error) {
	var conditions []string
	var args []interface{}

	if filter.TaskID != nil {
		conditions = append(conditions, "task_id = ?")
		args = append(args, filter.TaskID.String())
	}
	if filter.HashValue != "" {
		conditions = append(conditions, `LOWER(hash_value) LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(strings.ToLower(filter.HashValue))+"%")
	}
	if filter.Plaintext != "" {
		conditions = append(conditions, `LOWER(plaintext) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(filter.Plaintext))+"%")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM results %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, task_id, hash_value, plaintext, agent_id, cracked_at
		FROM results %s
		ORDER BY cracked_at DESC, id DESC
	`, whereClause)

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []*domain.Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}

	return results, total, rows.Err()
}

// Count returns the total number of results
func (r *ResultRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&n)
	return n, err
}

func scanResult(row rowScanner) (*domain.Result, error) {
	res := &domain.Result{}
	var taskID, crackedAt string
	var agentID sql.NullString

	if err := row.Scan(&res.ID, &taskID, &res.HashValue, &res.Plaintext, &agentID, &crackedAt); err != nil {
		return nil, err
	}

	res.TaskID, _ = uuid.Parse(taskID)
	if agentID.Valid {
		res.AgentID = &agentID.String
	}
	res.CrackedAt = parseTime(crackedAt)

	return res, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

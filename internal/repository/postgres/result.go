package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// ResultRepository implements domain.ResultRepository for PostgreSQL
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// CreateBatch stores cracked hashes for a task in one transaction
func (r *ResultRepository) CreateBatch(ctx context.Context, batch domain.ResultBatch) (int, error) {
	if len(batch.Results) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (task_id, hash_value, plaintext, agent_id, cracked_at)
		VALUES ($1, $2, $3, $4, NOW())
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range batch.Results {
		if _, err := stmt.ExecContext(ctx, batch.TaskID, c.Hash, c.Plaintext, batch.AgentID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit results: %w", err)
	}

	return len(batch.Results), nil
}

// GetByID retrieves a single result
func (r *ResultRepository) GetByID(ctx context.Context, id int64) (*domain.Result, error) {
	query := `SELECT id, task_id, hash_value, plaintext, agent_id, cracked_at FROM results WHERE id = $1`

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
	argNum := 1

	if filter.TaskID != nil {
		conditions = append(conditions, fmt.Sprintf("task_id = $%d", argNum))
		args = append(args, *filter.TaskID)
		argNum++
	}
	if filter.HashValue != "" {
		conditions = append(conditions, fmt.Sprintf("hash_value ILIKE $%d", argNum))
		args = append(args, escapeLike(filter.HashValue)+"%")
		argNum++
	}
	if filter.Plaintext != "" {
		conditions = append(conditions, fmt.Sprintf("plaintext ILIKE $%d", argNum))
		args = append(args, "%"+escapeLike(filter.Plaintext)+"%")
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, task_id, hash_value, plaintext, agent_id, cracked_at
		FROM results %s
		ORDER BY cracked_at DESC, id DESC
	`, whereClause)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
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
	var taskID string
	var agentID sql.NullString

	if err := row.Scan(&res.ID, &taskID, &res.HashValue, &res.Plaintext, &agentID, &res.CrackedAt); err != nil {
		return nil, err
	}

	res.TaskID, _ = uuid.Parse(taskID)
	if agentID.Valid {
		res.AgentID = &agentID.String
	}

	return res, nil
}

// escapeLike escapes LIKE wildcards using the default backslash escape
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

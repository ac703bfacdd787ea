package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// AgentRepository implements domain.AgentRepository for PostgreSQL
type AgentRepository struct {
	db *sql.DB
}

// NewAgentRepository creates a new AgentRepository
func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// Create registers a new agent
func (r *AgentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	query := `
		INSERT INTO agents (id, name, hostname, api_key, status, current_task_id, last_seen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		agent.ID, agent.Name, agent.Hostname, agent.APIKey, string(agent.Status),
		agent.CurrentTaskID, agent.LastSeen, agent.CreatedAt,
	)

	return err
}

// GetByID retrieves an agent by ID
func (r *AgentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	query := `
		SELECT id, name, hostname, api_key, status, current_task_id, last_seen, created_at
		FROM agents WHERE id = $1
	`

	agent, err := scanAgent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return agent, nil
}

// List retrieves agents, most recently seen first
func (r *AgentRepository) List(ctx context.Context, params domain.AgentListParams) ([]*domain.Agent, error) {
	query := `
		SELECT id, name, hostname, api_key, status, current_task_id, last_seen, created_at
		FROM agents
	`
	var args []interface{}

	if params.Status != nil {
		query += " WHERE status = $1"
		args = append(args, string(*params.Status))
	}

	query += " ORDER BY last_seen DESC"

	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", params.Limit)
	}
	if params.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", params.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []*domain.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}

	return agents, rows.Err()
}

// Heartbeat records status and last_seen for an agent
func (r *AgentRepository) Heartbeat(ctx context.Context, hb domain.AgentHeartbeat) error {
	query := `
		UPDATE agents
		SET status = $1, current_task_id = $2, last_seen = NOW(),
			hostname = COALESCE(NULLIF($3, ''), hostname)
		WHERE id = $4
	`

	res, err := r.db.ExecContext(ctx, query, string(hb.Status), hb.CurrentTaskID, hb.Hostname, hb.AgentID)
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

// MarkOfflineAgents marks agents as offline if last_seen is stale
func (r *AgentRepository) MarkOfflineAgents(ctx context.Context, timeout time.Duration) (int, error) {
	query := `
		UPDATE agents
		SET status = 'offline', current_task_id = NULL
		WHERE status != 'offline' AND last_seen < $1
	`

	res, err := r.db.ExecContext(ctx, query, time.Now().Add(-timeout))
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}

// CountByStatus returns the number of agents per status
func (r *AgentRepository) CountByStatus(ctx context.Context) (map[domain.AgentStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM agents GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.AgentStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.AgentStatus(status)] = n
	}

	return counts, rows.Err()
}

func scanAgent(row rowScanner) (*domain.Agent, error) {
	agent := &domain.Agent{}
	var status string
	var currentTaskID sql.NullString

	err := row.Scan(
		&agent.ID, &agent.Name, &agent.Hostname, &agent.APIKey, &status,
		&currentTaskID, &agent.LastSeen, &agent.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	agent.Status = domain.AgentStatus(status)
	if currentTaskID.Valid {
		if uid, err := uuid.Parse(currentTaskID.String); err == nil {
			agent.CurrentTaskID = &uid
		}
	}

	return agent, nil
}

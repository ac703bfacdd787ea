package domain

import (
	"time"

	"github.com/google/uuid"
)

// Result is a cracked hash reported by an agent
type Result struct {
	ID        int64     `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	HashValue string    `json:"hash_value"`
	Plaintext string    `json:"plaintext"`
	AgentID   *string   `json:"agent_id,omitempty"`
	CrackedAt time.Time `json:"cracked_at"`
}

// ResultBatch represents a batch of results for submission
type ResultBatch struct {
	TaskID  uuid.UUID     `json:"task_id"`
	AgentID *string       `json:"agent_id,omitempty"`
	Results []CrackedHash `json:"results"`
}

// CrackedHash is one hash:plaintext pair inside a batch
type CrackedHash struct {
	Hash      string `json:"hash"`
	Plaintext string `json:"plaintext"`
}

// ResultFilter narrows result listings. HashValue is a case-insensitive
// prefix match, Plaintext a case-insensitive substring match.
type ResultFilter struct {
	TaskID    *uuid.UUID
	HashValue string
	Plaintext string
	Limit     int
	Offset    int
}

// CrackedAtLayout is how cracked_at is printed in tables and exports
const CrackedAtLayout = "2006-01-02 15:04:05"

// ResultRow is one row of the results table, as exported
type ResultRow struct {
	Hash      string `json:"hash"`
	Plaintext string `json:"plaintext"`
	TaskID    string `json:"task_id"`
	CrackedAt string `json:"cracked_at"`

	// Cells is how many table cells the row carried when read from HTML.
	// Rows built from results always have all four.
	Cells int `json:"-"`
}

// Row converts a stored result into a table row
func (r *Result) Row() ResultRow {
	return ResultRow{
		Hash:      r.HashValue,
		Plaintext: r.Plaintext,
		TaskID:    r.TaskID.String(),
		CrackedAt: r.CrackedAt.UTC().Format(CrackedAtLayout),
		Cells:     4,
	}
}

package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a cracking task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// IsTerminal returns true if the task will not change state again
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusCancelled
}

// IsValid reports whether s is a known task status
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusAssigned, TaskStatusRunning,
		TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// Task is a unit of cracking work
type Task struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	HashType     string     `json:"hash_type"`
	HashTypeID   int        `json:"hash_type_id"`
	Hashes       []string   `json:"hashes"`
	WordlistPath string     `json:"wordlist_path,omitempty"`
	RulePath     string     `json:"rule_path,omitempty"`
	Mask         string     `json:"mask,omitempty"`
	AttackMode   AttackMode `json:"attack_mode"`
	Priority     int        `json:"priority"`
	Status       TaskStatus `json:"status"`
	AgentID      *string    `json:"agent_id,omitempty"`

	// Progress is a percentage, Speed is hashes per second
	Progress float64 `json:"progress"`
	Speed    float64 `json:"speed"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ProgressLabel renders the progress the way the task templates print it
func (t *Task) ProgressLabel() string {
	return FormatPercent(t.Progress)
}

// CreateTaskRequest is the request to create a new task
type CreateTaskRequest struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	HashType     string     `json:"hash_type"`
	HashTypeID   int        `json:"hash_type_id"`
	Hashes       []string   `json:"hashes"`
	WordlistPath string     `json:"wordlist_path"`
	RulePath     string     `json:"rule_path"`
	Mask         string     `json:"mask"`
	AttackMode   AttackMode `json:"attack_mode"`
	Priority     int        `json:"priority"`
}

var (
	ErrTaskNameRequired = errors.New("name is required")
	ErrHashesRequired   = errors.New("at least one hash is required")
	ErrWordlistRequired = errors.New("wordlist is required for this attack mode")
	ErrMaskRequired     = errors.New("mask is required for this attack mode")
)

// Validate checks the request against the fields the attack mode needs
func (r *CreateTaskRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrTaskNameRequired
	}

	hashes := 0
	for _, h := range r.Hashes {
		if strings.TrimSpace(h) != "" {
			hashes++
		}
	}
	if hashes == 0 {
		return ErrHashesRequired
	}

	if !r.AttackMode.IsValid() {
		return ErrInvalidAttackMode
	}

	if r.AttackMode.UsesWordlist() && r.WordlistPath == "" {
		return ErrWordlistRequired
	}
	if r.AttackMode.UsesMask() && r.Mask == "" {
		return ErrMaskRequired
	}

	return nil
}

// ToTask converts a CreateTaskRequest to a pending Task
func (r *CreateTaskRequest) ToTask() *Task {
	now := time.Now().UTC()

	hashes := make([]string, 0, len(r.Hashes))
	for _, h := range r.Hashes {
		if h = strings.TrimSpace(h); h != "" {
			hashes = append(hashes, h)
		}
	}

	task := &Task{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		HashType:    r.HashType,
		HashTypeID:  r.HashTypeID,
		Hashes:      hashes,
		AttackMode:  r.AttackMode,
		Priority:    r.Priority,
		Status:      TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Only carry the inputs the attack mode actually reads
	if r.AttackMode.UsesWordlist() {
		task.WordlistPath = r.WordlistPath
	}
	if r.AttackMode.UsesRules() {
		task.RulePath = r.RulePath
	}
	if r.AttackMode.UsesMask() {
		task.Mask = r.Mask
	}

	return task
}

// TaskProgressUpdate is sent by agents while a task runs
type TaskProgressUpdate struct {
	Status   *TaskStatus `json:"status,omitempty"`
	Progress float64     `json:"progress"`
	Speed    float64     `json:"speed"`
}

// TaskListParams are parameters for listing tasks
type TaskListParams struct {
	Status *TaskStatus
	Limit  int
	Offset int
}

package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// TaskService handles task business logic
type TaskService struct {
	tasks domain.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(tasks domain.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// Create validates and stores a new pending task
func (s *TaskService) Create(ctx context.Context, req *domain.CreateTaskRequest) (*domain.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	task := req.ToTask()
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetByID retrieves a task
func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// List retrieves tasks
func (s *TaskService) List(ctx context.Context, params domain.TaskListParams) ([]*domain.Task, int, error) {
	tasks, total, err := s.tasks.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateProgress applies an agent's progress report
func (s *TaskService) UpdateProgress(ctx context.Context, id uuid.UUID, update domain.TaskProgressUpdate) error {
	if update.Status != nil && !update.Status.IsValid() {
		return ErrInvalidStatus
	}

	if err := s.tasks.UpdateProgress(ctx, id, update); err != nil {
		return fmt.Errorf("failed to update task progress: %w", err)
	}

	return nil
}

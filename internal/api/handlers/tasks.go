package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
	"github.com/sadewadee/hashcat-dashboard/internal/service"
)

// TaskServiceInterface defines the task service methods
type TaskServiceInterface interface {
	Create(ctx context.Context, req *domain.CreateTaskRequest) (*domain.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	List(ctx context.Context, params domain.TaskListParams) ([]*domain.Task, int, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, update domain.TaskProgressUpdate) error
}

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks       TaskServiceInterface
	invalidator *CacheInvalidator
}

// NewTaskHandler creates a new TaskHandler. invalidator may be nil.
func NewTaskHandler(tasks TaskServiceInterface, invalidator *CacheInvalidator) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		invalidator: invalidator,
	}
}

// List handles GET /api/v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	page, perPage := parsePagination(r, 20)

	params := domain.TaskListParams{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}

	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.TaskStatus(status)
		if !s.IsValid() {
			RenderError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		params.Status = &s
	}

	tasks, total, err := h.tasks.List(r.Context(), params)
	if err != nil {
		RenderError(w, http.StatusInternalServerError, "Failed to list tasks: "+err.Error())
		return
	}

	RenderJSON(w, http.StatusOK, NewPaginatedResponse(tasks, total, page, perPage))
}

// Create handles POST /api/v1/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	task, err := h.tasks.Create(r.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			RenderError(w, http.StatusBadRequest, err.Error())
			return
		}
		RenderError(w, http.StatusInternalServerError, "Failed to create task: "+err.Error())
		return
	}

	h.invalidator.InvalidateStats(r.Context())

	RenderJSON(w, http.StatusCreated, task)
}

// GetByID handles GET /api/v1/tasks/{id}
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RenderError(w, http.StatusNotFound, "Task not found")
			return
		}
		RenderError(w, http.StatusInternalServerError, "Failed to retrieve task: "+err.Error())
		return
	}

	RenderJSON(w, http.StatusOK, task)
}

// UpdateProgress handles PATCH /api/v1/tasks/{id}/progress
func (h *TaskHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch && r.Method != http.MethodPost {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var update domain.TaskProgressUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.tasks.UpdateProgress(r.Context(), id, update); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			RenderError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			RenderError(w, http.StatusNotFound, "Task not found")
		default:
			RenderError(w, http.StatusInternalServerError, "Failed to update progress: "+err.Error())
		}
		return
	}

	if update.Status != nil {
		h.invalidator.InvalidateStats(r.Context())
	}

	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		domain.ErrTaskNameRequired,
		domain.ErrHashesRequired,
		domain.ErrInvalidAttackMode,
		domain.ErrWordlistRequired,
		domain.ErrMaskRequired,
		service.ErrAgentNameRequired,
		service.ErrInvalidStatus,
		service.ErrEmptyBatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

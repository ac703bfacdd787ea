package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// AgentServiceInterface defines the agent service methods
type AgentServiceInterface interface {
	Register(ctx context.Context, req domain.CreateAgentRequest) (*domain.Agent, error)
	Heartbeat(ctx context.Context, hb domain.AgentHeartbeat) error
	List(ctx context.Context, params domain.AgentListParams) ([]*domain.Agent, error)
}

// AgentHandler handles agent-related HTTP requests
type AgentHandler struct {
	agents      AgentServiceInterface
	invalidator *CacheInvalidator
}

// NewAgentHandler creates a new AgentHandler. invalidator may be nil.
func NewAgentHandler(agents AgentServiceInterface, invalidator *CacheInvalidator) *AgentHandler {
	return &AgentHandler{
		agents:      agents,
		invalidator: invalidator,
	}
}

// Register handles POST /api/v1/agents. The response is the only
// place the agent's API key is ever shown.
func (h *AgentHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	agent, err := h.agents.Register(r.Context(), req)
	if err != nil {
		if isValidationError(err) {
			RenderError(w, http.StatusBadRequest, err.Error())
			return
		}
		RenderError(w, http.StatusInternalServerError, "Failed to register agent: "+err.Error())
		return
	}

	h.invalidator.InvalidateStats(r.Context())

	RenderJSON(w, http.StatusCreated, agent)
}

// List handles GET /api/v1/agents
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	page, perPage := parsePagination(r, 50)
	params := domain.AgentListParams{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}

	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.AgentStatus(status)
		if !s.IsValid() {
			RenderError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		params.Status = &s
	}

	agents, err := h.agents.List(r.Context(), params)
	if err != nil {
		RenderError(w, http.StatusInternalServerError, "Failed to list agents: "+err.Error())
		return
	}

	RenderJSON(w, http.StatusOK, map[string]interface{}{
		"agents": agents,
		"count":  len(agents),
	})
}

// Heartbeat handles POST /api/v1/agents/heartbeat
func (h *AgentHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var hb domain.AgentHeartbeat
	if err := json.NewDecoder(r.Body).Decode(&hb); err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if hb.AgentID == "" {
		RenderError(w, http.StatusBadRequest, "Agent ID is required")
		return
	}

	if err := h.agents.Heartbeat(r.Context(), hb); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			RenderError(w, http.StatusNotFound, "Agent not found")
		case isValidationError(err):
			RenderError(w, http.StatusBadRequest, err.Error())
		default:
			RenderError(w, http.StatusInternalServerError, "Failed to update heartbeat: "+err.Error())
		}
		return
	}

	h.invalidator.InvalidateStats(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

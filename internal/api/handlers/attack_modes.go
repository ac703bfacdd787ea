package handlers

import (
	"net/http"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
	"github.com/sadewadee/hashcat-dashboard/internal/taskform"
)

// AttackModeInfo describes one attack mode and the form sections it shows
type AttackModeInfo struct {
	Mode     domain.AttackMode `json:"mode"`
	Name     string            `json:"name"`
	Sections taskform.Sections `json:"sections"`
}

// AttackModeHandler exposes the attack mode to form section mapping
type AttackModeHandler struct{}

// NewAttackModeHandler creates a new AttackModeHandler
func NewAttackModeHandler() *AttackModeHandler {
	return &AttackModeHandler{}
}

// List handles GET /api/v1/attack-modes
func (h *AttackModeHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	modes := make([]AttackModeInfo, 0, len(domain.AttackModes))
	for _, m := range domain.AttackModes {
		modes = append(modes, AttackModeInfo{Mode: m, Name: m.String(), Sections: taskform.Visibility(m)})
	}

	RenderJSON(w, http.StatusOK, modes)
}

// Get handles GET /api/v1/attack-modes/{mode}. Any value is accepted;
// unknown modes report every section hidden.
func (h *AttackModeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	value := r.PathValue("mode")
	mode, _ := taskform.ParseMode(value)

	RenderJSON(w, http.StatusOK, AttackModeInfo{
		Mode:     mode,
		Name:     mode.String(),
		Sections: taskform.VisibilityOf(value),
	})
}

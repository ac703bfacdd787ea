package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sadewadee/hashcat-dashboard/internal/clipboard"
	"github.com/sadewadee/hashcat-dashboard/internal/domain"
	"github.com/sadewadee/hashcat-dashboard/internal/export"
	"github.com/sadewadee/hashcat-dashboard/internal/service"
)

// ResultServiceInterface defines the result service methods
type ResultServiceInterface interface {
	List(ctx context.Context, filter domain.ResultFilter) ([]*domain.Result, int, error)
	GetByID(ctx context.Context, id int64) (*domain.Result, error)
	Submit(ctx context.Context, batch domain.ResultBatch) (int, error)
}

// ResultHandler handles cracked result HTTP requests
type ResultHandler struct {
	results     ResultServiceInterface
	invalidator *CacheInvalidator

	// clipboard returns the clipboard a copy request writes to.
	// By default every request gets its own in-memory clipboard and the
	// copied text is returned to the browser.
	clipboard func() clipboard.Clipboard
}

// NewResultHandler creates a new ResultHandler. invalidator may be nil.
func NewResultHandler(results ResultServiceInterface, invalidator *CacheInvalidator) *ResultHandler {
	return &ResultHandler{
		results:     results,
		invalidator: invalidator,
		clipboard: func() clipboard.Clipboard {
			return &clipboard.MemoryClipboard{}
		},
	}
}

// WithClipboard makes copy requests write to cb, e.g. the host's
// system clipboard when the dashboard runs on the operator's machine.
func (h *ResultHandler) WithClipboard(cb clipboard.Clipboard) *ResultHandler {
	h.clipboard = func() clipboard.Clipboard { return cb }
	return h
}

// List handles GET /api/v1/results
func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	filter, err := parseResultFilter(r)
	if err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	page, perPage := parsePagination(r, 50)
	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage

	results, total, err := h.results.List(r.Context(), filter)
	if err != nil {
		RenderError(w, http.StatusInternalServerError, "Failed to list results: "+err.Error())
		return
	}

	RenderJSON(w, http.StatusOK, NewPaginatedResponse(results, total, page, perPage))
}

// Submit handles POST /api/v1/results
func (h *ResultHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var batch domain.ResultBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	n, err := h.results.Submit(r.Context(), batch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyBatch):
			RenderError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			RenderError(w, http.StatusNotFound, "Task not found")
		default:
			RenderError(w, http.StatusInternalServerError, "Failed to submit results: "+err.Error())
		}
		return
	}

	h.invalidator.InvalidateStats(r.Context())
	h.invalidator.InvalidatePerformance(r.Context())

	RenderJSON(w, http.StatusCreated, map[string]int{"stored": n})
}

// CopyResponse is returned by the copy endpoint
type CopyResponse struct {
	Text    string             `json:"text"`
	Notices []clipboard.Notice `json:"notices"`
}

// Copy handles GET|POST /api/v1/results/{id}/copy?kind=hash|plaintext|both
func (h *ResultHandler) Copy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid result ID")
		return
	}

	kind, err := clipboard.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		RenderError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.results.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RenderError(w, http.StatusNotFound, "Result not found")
			return
		}
		RenderError(w, http.StatusInternalServerError, "Failed to retrieve result: "+err.Error())
		return
	}

	notices := &clipboard.NoticeRecorder{}
	copier := clipboard.NewCopier(h.clipboard(), notices)

	text, err := copier.Copy(r.Context(), kind, res.HashValue, res.Plaintext)
	if err != nil {
		RenderJSON(w, http.StatusInternalServerError, CopyResponse{Notices: notices.Notices()})
		return
	}

	RenderJSON(w, http.StatusOK, CopyResponse{Text: text, Notices: notices.Notices()})
}

// Export handles GET /results/export?format=csv|txt|xlsx. The filter
// of the results page is applied, pagination is not.
func (h *ResultHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		RenderError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := parseResultFilter(r)
	if err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	results, err := export.Collect(r.Context(), h.results, filter)
	if err != nil {
		RenderError(w, http.StatusInternalServerError, "Failed to export results: "+err.Error())
		return
	}

	file, err := export.Encode(format, export.RowsFromResults(results))
	if err != nil {
		if errors.Is(err, export.ErrNoResults) {
			RenderError(w, http.StatusNotFound, err.Error())
			return
		}
		RenderError(w, http.StatusInternalServerError, "Failed to export results: "+err.Error())
		return
	}

	log.Printf("[Export] %d results as %s", len(results), format)

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+file.Name)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	_, _ = w.Write(file.Data)
}

// ClearFilters handles GET /results/clear-filters by sending the browser
// back to the results page with every filter field blanked.
func (h *ResultHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseForm(); err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid form")
		return
	}

	_, target := export.ClearFilters(r.Form)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// parseResultFilter reads task_id, hash_value and plaintext from the query
func parseResultFilter(r *http.Request) (domain.ResultFilter, error) {
	q := r.URL.Query()

	filter := domain.ResultFilter{
		HashValue: strings.TrimSpace(q.Get("hash_value")),
		Plaintext: strings.TrimSpace(q.Get("plaintext")),
	}

	if s := strings.TrimSpace(q.Get("task_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return filter, err
		}
		filter.TaskID = &id
	}

	return filter, nil
}

package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
	"github.com/sadewadee/hashcat-dashboard/internal/taskform"
	"github.com/sadewadee/hashcat-dashboard/internal/web"
)

const resultsPerPage = 100

// PageHandler serves the HTML dashboard
type PageHandler struct {
	renderer    *web.Renderer
	stats       StatsServiceInterface
	tasks       TaskServiceInterface
	results     ResultServiceInterface
	chart       ChartController
	invalidator *CacheInvalidator
}

// NewPageHandler creates a new PageHandler. invalidator may be nil.
func NewPageHandler(
	renderer *web.Renderer,
	stats StatsServiceInterface,
	tasks TaskServiceInterface,
	results ResultServiceInterface,
	chart ChartController,
	invalidator *CacheInvalidator,
) *PageHandler {
	return &PageHandler{
		renderer:    renderer,
		stats:       stats,
		tasks:       tasks,
		results:     results,
		chart:       chart,
		invalidator: invalidator,
	}
}

// Dashboard handles GET /. With refresh=1 the performance chart is
// refreshed before the page is rendered.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Query().Get("refresh") == "1" {
		h.chart.Refresh(context.WithoutCancel(r.Context()))
	}

	stats, err := h.stats.GetStats(r.Context())
	if err != nil {
		log.Printf("[Dashboard] failed to get stats: %v", err)
		stats = &domain.Stats{}
	}

	h.renderer.ServePage(w, web.PageDashboard, web.NewDashboardPage(*stats, h.chart.Snapshot(), h.chart.Loading()))
}

// Tasks handles GET /tasks
func (h *PageHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page, perPage := parsePagination(r, 50)
	params := domain.TaskListParams{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if status := domain.TaskStatus(r.URL.Query().Get("status")); status.IsValid() {
		params.Status = &status
	}

	tasks, total, err := h.tasks.List(r.Context(), params)
	if err != nil {
		http.Error(w, "Failed to list tasks", http.StatusInternalServerError)
		return
	}

	h.renderer.ServePage(w, web.PageTasks, &web.TasksPage{
		Base:  web.Base{Title: "Tasks"},
		Tasks: tasks,
		Total: total,
	})
}

// TaskProgress handles GET /tasks/{id}/progress, the fragment a task
// row polls to replace itself.
func (h *PageHandler) TaskProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	task, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve task", http.StatusInternalServerError)
		return
	}

	h.renderer.ServeFragment(w, web.PageTaskProgress, task)
}

// Results handles GET /results
func (h *PageHandler) Results(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	form := web.ResultFilterForm{
		HashValue: q.Get("hash_value"),
		Plaintext: q.Get("plaintext"),
		TaskID:    q.Get("task_id"),
	}

	data := &web.ResultsPage{
		Base:   web.Base{Title: "Results"},
		Filter: form,
	}

	filter, err := parseResultFilter(r)
	if err != nil {
		data.Notice = "Invalid task ID"
		h.renderer.ServePageStatus(w, http.StatusBadRequest, web.PageResults, data)
		return
	}

	page, _ := parsePagination(r, resultsPerPage)
	filter.Limit = resultsPerPage
	filter.Offset = (page - 1) * resultsPerPage

	results, total, err := h.results.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to list results", http.StatusInternalServerError)
		return
	}

	data.Results = results
	data.Total = total

	h.renderer.ServePage(w, web.PageResults, data)
}

// NewTask handles GET /tasks/new. Changing the attack mode selector
// re-requests the page with the new attack_mode.
func (h *PageHandler) NewTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.renderer.ServePage(w, web.PageTaskNew, web.NewTaskNewPage(taskFormFrom(r)))
}

// CreateTask handles POST /tasks/new
func (h *PageHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	form := taskFormFrom(r)
	req, err := taskForm(form).request()
	if err == nil {
		_, err = h.tasks.Create(r.Context(), req)
	}
	if err != nil {
		if !isValidationError(err) {
			log.Printf("[Tasks] failed to create task: %v", err)
		}
		page := web.NewTaskNewPage(form)
		page.Error = err.Error()
		h.renderer.ServePageStatus(w, http.StatusBadRequest, web.PageTaskNew, page)
		return
	}

	h.invalidator.InvalidateStats(r.Context())

	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func taskFormFrom(r *http.Request) web.TaskForm {
	get := r.URL.Query().Get
	if r.Method == http.MethodPost {
		get = r.PostFormValue
	}

	return web.TaskForm{
		Name:         get("name"),
		HashType:     get("hash_type"),
		HashTypeID:   get("hash_type_id"),
		Hashes:       get("hashes"),
		AttackMode:   get("attack_mode"),
		WordlistPath: get("wordlist_path"),
		RulePath:     get("rule_path"),
		Mask:         get("mask"),
	}
}

type taskForm web.TaskForm

// request converts the submitted form. Inputs of hidden sections are
// dropped by ToTask, not here.
func (f taskForm) request() (*domain.CreateTaskRequest, error) {
	mode, ok := taskform.ParseMode(f.AttackMode)
	if !ok || !mode.IsValid() {
		return nil, domain.ErrInvalidAttackMode
	}

	var typeID int
	if s := strings.TrimSpace(f.HashTypeID); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.New("hash type id must be a number")
		}
		typeID = n
	}

	return &domain.CreateTaskRequest{
		Name:         f.Name,
		HashType:     strings.TrimSpace(f.HashType),
		HashTypeID:   typeID,
		Hashes:       strings.Split(strings.ReplaceAll(f.Hashes, "\r\n", "\n"), "\n"),
		AttackMode:   mode,
		WordlistPath: strings.TrimSpace(f.WordlistPath),
		RulePath:     strings.TrimSpace(f.RulePath),
		Mask:         strings.TrimSpace(f.Mask),
	}, nil
}

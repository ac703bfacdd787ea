package api

import (
	"net/http"

	"github.com/sadewadee/hashcat-dashboard/internal/api/handlers"
	"github.com/sadewadee/hashcat-dashboard/internal/progressbar"
)

// StatsEndpoint serves the status counts, cached or not
type StatsEndpoint interface {
	GetDashboardStats(w http.ResponseWriter, r *http.Request)
}

// SeriesEndpoint serves the performance series, cached or not
type SeriesEndpoint interface {
	Data(w http.ResponseWriter, r *http.Request)
}

// Handlers groups everything the router mounts
type Handlers struct {
	Pages       *handlers.PageHandler
	Charts      *handlers.ChartHandler
	Tasks       *handlers.TaskHandler
	Agents      *handlers.AgentHandler
	Results     *handlers.ResultHandler
	Performance *handlers.PerformanceHandler
	AttackModes *handlers.AttackModeHandler
	Debug       *handlers.DebugHandler
	Stats       StatsEndpoint
	Series      SeriesEndpoint
}

// Router sets up all routes
type Router struct {
	mux *http.ServeMux
	h   Handlers
}

// NewRouter creates a new Router
func NewRouter(h Handlers) *Router {
	return &Router{
		mux: http.NewServeMux(),
		h:   h,
	}
}

// Setup configures all routes
func (r *Router) Setup(token string) http.Handler {
	// Pages. Progress bars are sized before the HTML leaves the server.
	r.page("/{$}", r.h.Pages.Dashboard)
	r.page("/tasks", r.h.Pages.Tasks)
	r.page("/tasks/new", r.handleNewTask)
	r.page("/tasks/{id}/progress", r.h.Pages.TaskProgress)
	r.page("/results", r.h.Pages.Results)

	// Downloads and redirects
	r.mux.HandleFunc("/results/export", r.h.Results.Export)
	r.mux.HandleFunc("/results/clear-filters", r.h.Results.ClearFilters)

	// Chart images
	r.mux.HandleFunc("/charts/tasks.svg", r.h.Charts.Tasks)
	r.mux.HandleFunc("/charts/agents.svg", r.h.Charts.Agents)
	r.mux.HandleFunc("/charts/performance.png", r.h.Charts.Performance)

	// Performance data, polled by the chart controller
	r.mux.HandleFunc("/api/performance-data", r.h.Series.Data)
	r.mux.HandleFunc("/api/v1/performance/status", r.h.Performance.Status)
	r.mux.HandleFunc("/api/v1/performance/refresh", r.h.Performance.Refresh)

	// Stats endpoint
	r.mux.HandleFunc("/api/v1/stats", r.h.Stats.GetDashboardStats)

	// Task endpoints
	r.mux.HandleFunc("/api/v1/tasks", r.handleTasks)
	r.mux.HandleFunc("/api/v1/tasks/{id}", r.h.Tasks.GetByID)
	r.mux.HandleFunc("/api/v1/tasks/{id}/progress", r.h.Tasks.UpdateProgress)

	// Agent endpoints
	r.mux.HandleFunc("/api/v1/agents", r.handleAgents)
	r.mux.HandleFunc("/api/v1/agents/heartbeat", r.h.Agents.Heartbeat)

	// Result endpoints
	r.mux.HandleFunc("/api/v1/results", r.handleResults)
	r.mux.HandleFunc("/api/v1/results/{id}/copy", r.h.Results.Copy)

	// Attack mode to form section mapping
	r.mux.HandleFunc("/api/v1/attack-modes", r.h.AttackModes.List)
	r.mux.HandleFunc("/api/v1/attack-modes/{mode}", r.h.AttackModes.Get)

	r.mux.HandleFunc("/api/debug", r.h.Debug.Debug)

	// Apply middleware
	return Chain(r.mux,
		Recovery,
		Logger,
		CORS,
		SecurityHeaders,
		Auth(token),
	)
}

func (r *Router) page(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, progressbar.Middleware(h))
}

// handleNewTask routes requests for /tasks/new
func (r *Router) handleNewTask(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		r.h.Pages.NewTask(w, req)
	case http.MethodPost:
		r.h.Pages.CreateTask(w, req)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTasks routes requests for /api/v1/tasks
func (r *Router) handleTasks(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		r.h.Tasks.List(w, req)
	case http.MethodPost:
		r.h.Tasks.Create(w, req)
	default:
		handlers.RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleAgents routes requests for /api/v1/agents
func (r *Router) handleAgents(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		r.h.Agents.List(w, req)
	case http.MethodPost:
		r.h.Agents.Register(w, req)
	default:
		handlers.RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleResults routes requests for /api/v1/results
func (r *Router) handleResults(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		r.h.Results.List(w, req)
	case http.MethodPost:
		r.h.Results.Submit(w, req)
	default:
		handlers.RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

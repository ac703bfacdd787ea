package handlers

import (
	"bytes"
	"log"
	"net/http"
	"strconv"

	"github.com/sadewadee/hashcat-dashboard/internal/charts"
	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// ChartHandler renders dashboard chart images
type ChartHandler struct {
	chart ChartController
}

// NewChartHandler creates a new ChartHandler
func NewChartHandler(chart ChartController) *ChartHandler {
	return &ChartHandler{chart: chart}
}

// Tasks handles GET /charts/tasks.svg?task-pending=..
func (h *ChartHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !hasAny(q.Has, domain.AttrTaskPending, domain.AttrTaskRunning, domain.AttrTaskCompleted,
		domain.AttrTaskFailed, domain.AttrTaskCancelled) {
		http.NotFound(w, r)
		return
	}

	h.donut(w, charts.TaskDonut(domain.ParseTaskCounts(q.Get)), r)
}

// Agents handles GET /charts/agents.svg?agent-online=..
func (h *ChartHandler) Agents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !hasAny(q.Has, domain.AttrAgentOnline, domain.AttrAgentBusy, domain.AttrAgentOffline) {
		http.NotFound(w, r)
		return
	}

	h.donut(w, charts.AgentDonut(domain.ParseAgentCounts(q.Get)), r)
}

func (h *ChartHandler) donut(w http.ResponseWriter, m charts.DonutModel, r *http.Request) {
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	size = charts.DonutSize(size)

	var buf bytes.Buffer
	if err := charts.RenderDonutSVG(&buf, m, size); err != nil {
		log.Printf("chart error: %v", err)
		RenderError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// Performance handles GET /charts/performance.png
func (h *ChartHandler) Performance(w http.ResponseWriter, r *http.Request) {
	snap := h.chart.Snapshot()
	if snap.Series == nil {
		http.NotFound(w, r)
		return
	}

	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	height, _ := strconv.Atoi(r.URL.Query().Get("height"))
	width, height = charts.PerformanceSize(width, height)

	var buf bytes.Buffer
	if err := charts.RenderPerformancePNG(&buf, snap.Series, width, height); err != nil {
		log.Printf("chart error: %v", err)
		RenderError(w, http.StatusInternalServerError, "Failed to render chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Chart-Token", strconv.FormatUint(snap.Token, 10))
	_, _ = buf.WriteTo(w)
}

func hasAny(has func(string) bool, keys ...string) bool {
	for _, k := range keys {
		if has(k) {
			return true
		}
	}
	return false
}

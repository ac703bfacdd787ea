package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
	"github.com/sadewadee/hashcat-dashboard/internal/perfdata"
)

const maxWindowHours = 24 * 7

// PerformanceServiceInterface builds performance series
type PerformanceServiceInterface interface {
	Series(ctx context.Context, hours int) (*domain.MetricsSeries, error)
}

// ChartController is the performance chart refresh loop
type ChartController interface {
	Snapshot() perfdata.Snapshot
	Loading() bool
	Refresh(ctx context.Context) bool
	Interval() time.Duration
}

// PerformanceHandler handles performance data and chart refresh requests
type PerformanceHandler struct {
	series PerformanceServiceInterface
	chart  ChartController
}

// NewPerformanceHandler creates a new PerformanceHandler
func NewPerformanceHandler(series PerformanceServiceInterface, chart ChartController) *PerformanceHandler {
	return &PerformanceHandler{
		series: series,
		chart:  chart,
	}
}

// ChartStatus describes the chart currently on display
type ChartStatus struct {
	Token           uint64          `json:"token"`
	Source          perfdata.Source `json:"source,omitempty"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
	Loading         bool            `json:"loading"`
	Applied         *bool           `json:"applied,omitempty"`
	Buckets         int             `json:"buckets"`
	IntervalSeconds int             `json:"interval_seconds"`
}

// Data handles GET /api/performance-data
func (h *PerformanceHandler) Data(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	series, err := h.series.Series(r.Context(), parseHours(r))
	if err != nil {
		RenderError(w, http.StatusInternalServerError, "Failed to get performance data: "+err.Error())
		return
	}

	RenderJSON(w, http.StatusOK, series)
}

// Status handles GET /api/v1/performance/status
func (h *PerformanceHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	RenderJSON(w, http.StatusOK, h.status(nil))
}

// Refresh handles POST /api/v1/performance/refresh. The refresh
// outlives a disconnecting client so its result still lands.
func (h *PerformanceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	applied := h.chart.Refresh(context.WithoutCancel(r.Context()))

	RenderJSON(w, http.StatusOK, h.status(&applied))
}

func (h *PerformanceHandler) status(applied *bool) ChartStatus {
	snap := h.chart.Snapshot()

	st := ChartStatus{
		Token:           snap.Token,
		Source:          snap.Source,
		Loading:         h.chart.Loading(),
		Applied:         applied,
		IntervalSeconds: int(h.chart.Interval() / time.Second),
	}
	if snap.Series != nil {
		st.Buckets = len(snap.Series.Labels)
		st.UpdatedAt = &snap.UpdatedAt
	}

	return st
}

func parseHours(r *http.Request) int {
	hours, _ := strconv.Atoi(r.URL.Query().Get("hours"))
	if hours < 1 || hours > maxWindowHours {
		hours = 24
	}
	return hours
}

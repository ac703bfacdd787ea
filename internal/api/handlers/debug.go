package handlers

import (
	"context"
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// DebugHandler answers the connectivity probe
type DebugHandler struct {
	version   string
	startedAt time.Time
	db        Pinger
}

// NewDebugHandler creates a new DebugHandler. db may be nil.
func NewDebugHandler(version string, db Pinger) *DebugHandler {
	return &DebugHandler{
		version:   version,
		startedAt: time.Now(),
		db:        db,
	}
}

// HostInfo is what the probe reports about the machine
type HostInfo struct {
	Hostname       string  `json:"hostname,omitempty"`
	Platform       string  `json:"platform,omitempty"`
	CPUs           int     `json:"cpus"`
	MemUsedPercent float64 `json:"mem_used_percent,omitempty"`
}

// DebugResponse is the body of GET /api/debug
type DebugResponse struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Time       time.Time `json:"time"`
	Uptime     string    `json:"uptime"`
	Goroutines int       `json:"goroutines"`
	Database   string    `json:"database,omitempty"`
	Host       HostInfo  `json:"host"`
}

// Debug handles GET /api/debug. Host and database lookups never fail
// the probe, their errors are only logged.
func (h *DebugHandler) Debug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RenderError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := DebugResponse{
		Status:     "ok",
		Version:    h.version,
		Time:       time.Now().UTC(),
		Uptime:     time.Since(h.startedAt).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Host:       hostInfo(ctx),
	}

	if h.db != nil {
		resp.Database = "ok"
		if err := h.db.PingContext(ctx); err != nil {
			log.Printf("debug: database ping failed: %v", err)
			resp.Database = "unavailable"
		}
	}

	RenderJSON(w, http.StatusOK, resp)
}

func hostInfo(ctx context.Context) HostInfo {
	info := HostInfo{CPUs: runtime.NumCPU()}

	if hi, err := host.InfoWithContext(ctx); err != nil {
		log.Printf("debug: host info unavailable: %v", err)
	} else {
		info.Hostname = hi.Hostname
		info.Platform = hi.Platform
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		info.CPUs = n
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		log.Printf("debug: memory stats unavailable: %v", err)
	} else {
		info.MemUsedPercent = vm.UsedPercent
	}

	return info
}

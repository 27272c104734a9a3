package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthHandler reports process liveness plus basic host stats.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// Get answers with "ok" and a snapshot of host memory and load. Stat
// failures are non-fatal; the fields are simply omitted.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":     "ok",
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"goroutines": runtime.NumGoroutine(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		body["memUsedPercent"] = vm.UsedPercent
	}
	if avg, err := load.Avg(); err == nil {
		body["load1"] = avg.Load1
	}

	respondJSON(w, http.StatusOK, body)
}

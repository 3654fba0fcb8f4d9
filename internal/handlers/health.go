package handlers

import (
	"net/http"
	"runtime"
	"time"

	"sd-jukebox/internal/startup"
	"sd-jukebox/internal/storage"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

var startTime = time.Now()

// HealthResponse contains the health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	MountState string `json:"mountState"`
	Tracks     int    `json:"tracks"`

	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports service health. A faulted or absent removable mount
// degrades the status but never fails the check: internal-only operation
// is a supported mode, not an outage.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	mountStatus := h.mount.Status()

	response := HealthResponse{
		Status:       statusHealthy,
		Version:      startup.Version,
		Uptime:       time.Since(startTime).Round(time.Second).String(),
		MountState:   mountStatus.State.String(),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if mountStatus.State == storage.StateFaulted {
		response.Status = statusDegraded
	}

	h.mu.RLock()
	if h.cat != nil {
		response.Tracks = h.cat.Len()
	}
	h.mu.RUnlock()

	writeJSON(w, http.StatusOK, response)
}

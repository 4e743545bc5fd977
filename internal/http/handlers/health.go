package handlers

import (
	"net/http"
	"time"

	"usermgmt/internal/http/respond"
)

// HealthHandler reports service status and uptime.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// Status serves GET /health.
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "Success", map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	}, nil)
}

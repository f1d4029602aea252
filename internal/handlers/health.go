package handlers

import (
	"net/http"

	"meridianwealth/internal/services"
)

// HealthHandler exposes the liveness endpoint
type HealthHandler struct {
	health *services.HealthService
}

func NewHealthHandler(health *services.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	result := h.health.Check()
	status := http.StatusOK
	if result.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

package services

import (
	"meridianwealth/internal/config"
	"meridianwealth/internal/database"
)

// HealthService implements the health check
type HealthService struct{}

// NewHealthService creates a new health service
func NewHealthService() *HealthService {
	return &HealthService{}
}

// HealthResult reports liveness of the API and its database
type HealthResult struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

// Check reports service health
func (s *HealthService) Check() *HealthResult {
	result := &HealthResult{
		Status:   "healthy",
		Service:  config.Get().App.Name,
		Database: "up",
	}
	if err := database.HealthCheck(); err != nil {
		result.Status = "degraded"
		result.Database = "down"
	}
	return result
}

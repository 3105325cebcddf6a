package application

import (
	"context"

	"github.com/jobrunner/skyline/internal/domain"
	"github.com/jobrunner/skyline/internal/ports/input"
)

// HealthService provides health check functionality.
type HealthService struct {
	registry *FootprintRegistry
}

// NewHealthService creates a new health service.
func NewHealthService(registry *FootprintRegistry) *HealthService {
	return &HealthService{
		registry: registry,
	}
}

// IsHealthy returns true if the service is healthy.
func (s *HealthService) IsHealthy(ctx context.Context) bool {
	return true // Basic health check
}

// IsReady returns true if the service is ready to accept requests.
func (s *HealthService) IsReady(ctx context.Context) bool {
	observations, err := s.registry.ListObservations(ctx)
	if err != nil {
		return false
	}

	// Ready if at least one footprint is ready
	for _, obs := range observations {
		if obs.IsReady() {
			return true
		}
	}

	// Also ready if no observations are configured (empty state)
	return len(observations) == 0
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	observations, _ := s.registry.ListObservations(ctx)

	loaded := len(observations)
	ready := 0
	for _, obs := range observations {
		if obs.IsReady() {
			ready++
		}
	}

	components := map[string]string{
		"storage": "ok",
	}

	return input.HealthDetails{
		Healthy:            s.IsHealthy(ctx),
		Ready:              s.IsReady(ctx),
		ObservationsLoaded: loaded,
		ObservationsReady:  ready,
		Components:         components,
	}
}

// ObservationHealth contains health info for a single observation.
type ObservationHealth struct {
	ID     string
	Status domain.ObservationStatus
	Ready  bool
}

// GetObservationHealth returns health info for all observations.
func (s *HealthService) GetObservationHealth(ctx context.Context) []ObservationHealth {
	observations, _ := s.registry.ListObservations(ctx)

	health := make([]ObservationHealth, len(observations))
	for i, obs := range observations {
		status, _ := s.registry.GetObservationStatus(ctx, obs.ID)
		health[i] = ObservationHealth{
			ID:     obs.ID,
			Status: status,
			Ready:  obs.IsReady(),
		}
	}

	return health
}

// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/jobrunner/skyline/internal/domain"
)

// CoverageService defines the primary port for sky-coverage queries.
type CoverageService interface {
	// QueryPoint reports which registered footprints contain a sky position.
	QueryPoint(ctx context.Context, req domain.CoverageRequest) (*domain.CoverageResponse, error)

	// QueryPointInObservation tests a sky position against one observation.
	QueryPointInObservation(ctx context.Context, observationID string, req domain.CoverageRequest) (*domain.CoverageHit, error)
}

// FootprintRegistry defines the primary port for observation management.
type FootprintRegistry interface {
	// ListObservations returns all registered observations.
	ListObservations(ctx context.Context) ([]domain.Observation, error)

	// GetObservation returns a specific observation by ID.
	GetObservation(ctx context.Context, id string) (*domain.Observation, error)

	// GetObservationStatus returns the status of an observation.
	GetObservationStatus(ctx context.Context, id string) (domain.ObservationStatus, error)
}

// MosaicRunner defines the primary port for mosaic assembly.
type MosaicRunner interface {
	// Assemble runs the greedy mosaic over the registered footprints and
	// records the run.
	Assemble(ctx context.Context, req domain.MosaicRequest) (*domain.MosaicRun, error)

	// ListRuns returns recorded mosaic runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.MosaicRun, error)

	// GetRun returns a recorded mosaic run by ID.
	GetRun(ctx context.Context, id string) (*domain.MosaicRun, error)
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy            bool              // Overall health status
	Ready              bool              // Ready to accept requests
	ObservationsLoaded int               // Number of loaded observations
	ObservationsReady  int               // Number of ready observations
	Components         map[string]string // Component statuses
}

package output

import (
	"context"

	"github.com/jobrunner/skyline/internal/domain"
)

// MosaicCatalog defines the secondary port for the mosaic run catalog.
type MosaicCatalog interface {
	// SaveRun persists a completed mosaic run.
	SaveRun(ctx context.Context, run *domain.MosaicRun) error

	// ListRuns returns recorded runs, newest first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]domain.MosaicRun, error)

	// GetRun returns a recorded run by ID.
	GetRun(ctx context.Context, id string) (*domain.MosaicRun, error)

	// Close releases the underlying store.
	Close() error
}

package output

import (
	"context"

	"github.com/jobrunner/skyline/internal/domain"
)

// ObservationRepository defines the secondary port for observation data
// access. It doubles as the domain's source provider so footprints can be
// rebuilt from the same files the registry loads.
type ObservationRepository interface {
	domain.SourceProvider

	// Open reads an observation description file and returns its metadata.
	// The footprint is not computed yet.
	Open(ctx context.Context, path string) (*domain.Observation, error)

	// Remove forgets a registered source.
	Remove(sourceID string)
}

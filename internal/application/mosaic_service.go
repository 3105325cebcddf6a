package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jobrunner/skyline/internal/domain"
	"github.com/jobrunner/skyline/internal/ports/output"
)

// MosaicService assembles greedy mosaics over registered footprints and
// records each run in the catalog.
type MosaicService struct {
	registry *FootprintRegistry
	catalog  output.MosaicCatalog
	metrics  output.MetricsCollector
	logger   *slog.Logger
	tolerant bool
}

// NewMosaicService creates a new mosaic service. tolerant is the default
// assembly mode; requests may override it.
func NewMosaicService(
	registry *FootprintRegistry,
	catalog output.MosaicCatalog,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	tolerant bool,
) *MosaicService {
	return &MosaicService{
		registry: registry,
		catalog:  catalog,
		metrics:  metrics,
		logger:   logger,
		tolerant: tolerant,
	}
}

// Assemble runs the greedy mosaic over the ready footprints (or the
// requested subset) and records the run.
func (s *MosaicService) Assemble(ctx context.Context, req domain.MosaicRequest) (*domain.MosaicRun, error) {
	start := time.Now()

	ids, footprints := s.registry.ReadyFootprints()
	if len(req.ObservationIDs) > 0 {
		wanted := dedupIDs(req.ObservationIDs)
		ids, footprints = filterFootprints(ids, footprints, wanted)
		if len(footprints) != len(wanted) {
			s.metrics.IncMosaicRuns(false)
			return nil, fmt.Errorf("requested observations not all ready: %w", domain.ErrObservationNotFound)
		}
	}

	tolerant := s.tolerant
	if req.Tolerant != nil {
		tolerant = *req.Tolerant
	}

	s.logger.Info("assembling mosaic", "footprints", len(footprints), "tolerant", tolerant)

	result, err := domain.BuildMosaic(footprints, domain.OverlapOptions{
		Tolerant: tolerant,
		Logger:   s.logger,
	})
	if err != nil {
		s.metrics.IncMosaicRuns(false)
		s.logger.Error("mosaic assembly failed", "error", err)
		return nil, err
	}

	run := &domain.MosaicRun{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Tolerant:  tolerant,
		Included:  result.Included,
		Excluded:  result.Excluded,
		Duration:  time.Since(start),
	}
	if result.Footprint != nil {
		run.Area = result.Footprint.Area()
		run.MemberCount = result.Footprint.MemberCount()
	}

	if err := s.catalog.SaveRun(ctx, run); err != nil {
		s.metrics.IncMosaicRuns(false)
		return nil, err
	}

	s.metrics.IncMosaicRuns(true)
	s.metrics.ObserveMosaicDuration(run.Duration)
	s.logger.Info("mosaic assembled",
		"run", run.ID,
		"included", len(run.Included),
		"excluded", len(run.Excluded),
		"area_sqdeg", run.Area,
		"duration", run.Duration)

	return run, nil
}

// ListRuns returns recorded mosaic runs, newest first.
func (s *MosaicService) ListRuns(ctx context.Context, limit int) ([]domain.MosaicRun, error) {
	return s.catalog.ListRuns(ctx, limit)
}

// GetRun returns a recorded mosaic run by ID.
func (s *MosaicService) GetRun(ctx context.Context, id string) (*domain.MosaicRun, error) {
	return s.catalog.GetRun(ctx, id)
}

// dedupIDs drops repeated ids, keeping first occurrences in order, so a
// request naming the same observation twice neither feeds the assembly a
// duplicate footprint nor trips the all-ready count check.
func dedupIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// filterFootprints keeps the footprints whose ids are requested,
// preserving the requested order.
func filterFootprints(ids []string, footprints []*domain.Footprint, wanted []string) ([]string, []*domain.Footprint) {
	index := make(map[string]*domain.Footprint, len(ids))
	for i, id := range ids {
		index[id] = footprints[i]
	}
	outIDs := make([]string, 0, len(wanted))
	outFPs := make([]*domain.Footprint, 0, len(wanted))
	for _, id := range wanted {
		if fp, ok := index[id]; ok {
			outIDs = append(outIDs, id)
			outFPs = append(outFPs, fp)
		}
	}
	return outIDs, outFPs
}

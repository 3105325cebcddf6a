package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/jobrunner/skyline/internal/domain"
	"github.com/jobrunner/skyline/internal/ports/output"
)

// CoverageService answers point queries against the registered footprints.
type CoverageService struct {
	registry *FootprintRegistry
	metrics  output.MetricsCollector
	logger   *slog.Logger
}

// NewCoverageService creates a new coverage service.
func NewCoverageService(
	registry *FootprintRegistry,
	metrics output.MetricsCollector,
	logger *slog.Logger,
) *CoverageService {
	return &CoverageService{
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

// QueryPoint reports which ready footprints contain the sky position.
func (s *CoverageService) QueryPoint(ctx context.Context, req domain.CoverageRequest) (*domain.CoverageResponse, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		s.metrics.IncCoverageQueries(false)
		return nil, err
	}

	resp := &domain.CoverageResponse{
		Coord: req.Coord,
		Hits:  []domain.CoverageHit{},
	}

	ids, footprints := s.registry.ReadyFootprints()
	for i, id := range ids {
		if req.ObservationID != "" && req.ObservationID != id {
			continue
		}
		resp.Scanned++
		if !footprints[i].ContainsPoint(req.Coord) {
			continue
		}
		hit, err := s.buildHit(ctx, id, footprints[i], req.Coord)
		if err != nil {
			s.metrics.IncCoverageQueries(false)
			return nil, err
		}
		resp.Hits = append(resp.Hits, *hit)
		if req.MaxResults > 0 && len(resp.Hits) >= req.MaxResults {
			break
		}
	}

	s.metrics.IncCoverageQueries(true)
	s.metrics.ObserveCoverageDuration(time.Since(start))
	s.logger.Debug("coverage query",
		"coord", req.Coord.String(),
		"hits", len(resp.Hits),
		"scanned", resp.Scanned,
		"duration", time.Since(start))
	return resp, nil
}

// QueryPointInObservation tests a sky position against one observation.
func (s *CoverageService) QueryPointInObservation(ctx context.Context, observationID string, req domain.CoverageRequest) (*domain.CoverageHit, error) {
	if err := req.Validate(); err != nil {
		s.metrics.IncCoverageQueries(false)
		return nil, err
	}

	obs, err := s.registry.GetObservation(ctx, observationID)
	if err != nil {
		s.metrics.IncCoverageQueries(false)
		return nil, err
	}
	if !obs.IsReady() {
		s.metrics.IncCoverageQueries(false)
		return nil, domain.ErrNotReady
	}
	if !obs.Footprint.ContainsPoint(req.Coord) {
		s.metrics.IncCoverageQueries(true)
		return nil, nil
	}

	hit, err := s.buildHit(ctx, observationID, obs.Footprint, req.Coord)
	if err != nil {
		s.metrics.IncCoverageQueries(false)
		return nil, err
	}
	s.metrics.IncCoverageQueries(true)
	return hit, nil
}

// buildHit assembles the hit detail: which members of the footprint cover
// the point themselves.
func (s *CoverageService) buildHit(ctx context.Context, id string, footprint *domain.Footprint, coord domain.SkyCoord) (*domain.CoverageHit, error) {
	obs, err := s.registry.GetObservation(ctx, id)
	if err != nil {
		return nil, err
	}

	var memberSources []string
	for _, m := range footprint.Members() {
		if m.Polygon().ContainsPoint(coord) {
			memberSources = append(memberSources, m.SourceID())
		}
	}
	return &domain.CoverageHit{
		ObservationID: id,
		Name:          obs.Name,
		Area:          footprint.Area(),
		MemberSources: memberSources,
	}, nil
}

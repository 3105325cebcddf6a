// Package application contains the application services.
package application

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jobrunner/skyline/internal/adapters/observation"
	"github.com/jobrunner/skyline/internal/domain"
	"github.com/jobrunner/skyline/internal/ports/output"
)

// FootprintRegistry manages loaded observations and their footprints.
type FootprintRegistry struct {
	mu           sync.RWMutex
	observations map[string]*observationEntry
	repo         output.ObservationRepository
	combiner     domain.TransformCombiner
	polygons     domain.PolygonFactory
	storage      output.ObjectStorage
	metrics      output.MetricsCollector
	logger       *slog.Logger
	localPath    string
	regionKind   string
}

type observationEntry struct {
	Observation *domain.Observation
	Status      domain.ObservationStatus
	Error       error
}

// NewFootprintRegistry creates a new footprint registry. Footprints are
// built from regions of the given kind.
func NewFootprintRegistry(
	repo output.ObservationRepository,
	combiner domain.TransformCombiner,
	polygons domain.PolygonFactory,
	storage output.ObjectStorage,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	localPath string,
	regionKind string,
) *FootprintRegistry {
	return &FootprintRegistry{
		observations: make(map[string]*observationEntry),
		repo:         repo,
		combiner:     combiner,
		polygons:     polygons,
		storage:      storage,
		metrics:      metrics,
		logger:       logger,
		localPath:    localPath,
		regionKind:   regionKind,
	}
}

func (r *FootprintRegistry) collaborators() domain.Collaborators {
	return domain.Collaborators{
		Source:   r.repo,
		Combiner: r.combiner,
		Polygons: r.polygons,
	}
}

// LoadObservation loads an observation description file and computes its
// footprint.
func (r *FootprintRegistry) LoadObservation(ctx context.Context, path string) error {
	r.logger.Info("loading observation", "path", path)

	obs, err := r.repo.Open(ctx, path)
	if err != nil {
		r.logger.Error("failed to open observation", "path", path, "error", err)
		return err
	}
	obs.RegionKind = r.regionKind

	r.mu.Lock()
	r.observations[obs.ID] = &observationEntry{
		Observation: obs,
		Status:      domain.StatusLoading,
	}
	r.mu.Unlock()

	footprint, err := domain.NewFootprint(ctx, obs.ID, r.regionKind, r.collaborators())

	r.mu.Lock()
	if entry, ok := r.observations[obs.ID]; ok {
		if err != nil {
			entry.Status = domain.StatusError
			entry.Error = err
		} else {
			entry.Observation.Footprint = footprint
			entry.Observation.LoadedAt = time.Now()
			entry.Status = domain.StatusReady
		}
	}
	r.mu.Unlock()

	r.updateMetrics()
	if err != nil {
		r.logger.Error("failed to build footprint", "id", obs.ID, "error", err)
		return err
	}
	r.logger.Info("observation loaded", "id", obs.ID,
		"area_sqdeg", footprint.Area(), "members", footprint.MemberCount())
	return nil
}

// UnloadObservation unloads an observation.
func (r *FootprintRegistry) UnloadObservation(_ context.Context, id string) error {
	r.logger.Info("unloading observation", "id", id)

	r.mu.Lock()
	if entry, ok := r.observations[id]; ok {
		entry.Status = domain.StatusUnloading
	}
	r.mu.Unlock()

	r.repo.Remove(id)

	r.mu.Lock()
	delete(r.observations, id)
	r.mu.Unlock()

	r.updateMetrics()
	return nil
}

// ListObservations returns all registered observations.
func (r *FootprintRegistry) ListObservations(_ context.Context) ([]domain.Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	observations := make([]domain.Observation, 0, len(r.observations))
	for _, entry := range r.observations {
		observations = append(observations, *entry.Observation)
	}
	return observations, nil
}

// GetObservation returns a specific observation by ID.
func (r *FootprintRegistry) GetObservation(_ context.Context, id string) (*domain.Observation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.observations[id]
	if !ok {
		return nil, domain.ErrObservationNotFound
	}
	return entry.Observation, nil
}

// GetObservationStatus returns the status of an observation.
func (r *FootprintRegistry) GetObservationStatus(_ context.Context, id string) (domain.ObservationStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.observations[id]
	if !ok {
		return "", domain.ErrObservationNotFound
	}
	return entry.Status, nil
}

// ReadyFootprints returns the footprints of all ready observations,
// together with their observation ids, in a stable order.
func (r *FootprintRegistry) ReadyFootprints() ([]string, []*domain.Footprint) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.observations))
	for id, entry := range r.observations {
		if entry.Status == domain.StatusReady {
			ids = append(ids, id)
		}
	}
	// Map iteration order is random; keep the scan order reproducible.
	sort.Strings(ids)

	footprints := make([]*domain.Footprint, len(ids))
	for i, id := range ids {
		footprints[i] = r.observations[id].Observation.Footprint
	}
	return ids, footprints
}

// IsLoaded returns true if an observation with the given ID is loaded.
func (r *FootprintRegistry) IsLoaded(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.observations[id]
	return ok
}

// ObservationCount returns the number of loaded observations.
func (r *FootprintRegistry) ObservationCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.observations)
}

// updateMetrics pushes current observation counts to the collector.
func (r *FootprintRegistry) updateMetrics() {
	r.mu.RLock()
	total := len(r.observations)
	ready := 0
	for _, entry := range r.observations {
		if entry.Status == domain.StatusReady {
			ready++
		}
	}
	r.mu.RUnlock()

	r.metrics.SetFootprintsLoaded(total)
	r.metrics.SetFootprintsReady(ready)
}

// LoadAll loads all observation files from storage.
func (r *FootprintRegistry) LoadAll(ctx context.Context) error {
	r.logger.Info("loading all observations from storage")

	objects, err := r.storage.List(ctx)
	if err != nil {
		return err
	}

	for _, obj := range objects {
		localPath := filepath.Join(r.localPath, obj.Key)
		if err := r.storage.Download(ctx, obj.Key, localPath); err != nil {
			r.logger.Error("failed to download observation", "key", obj.Key, "error", err)
			continue
		}

		if err := r.LoadObservation(ctx, localPath); err != nil {
			r.logger.Error("failed to load observation", "path", localPath, "error", err)
		}
	}

	return nil
}

// SyncStats contains statistics from a sync operation.
type SyncStats struct {
	Added   int
	Removed int
}

// Sync synchronizes with remote storage, loading new observations and
// removing ones that no longer exist remotely.
func (r *FootprintRegistry) Sync(ctx context.Context) (SyncStats, error) {
	r.logger.Info("syncing observations from storage")

	objects, err := r.storage.List(ctx)
	if err != nil {
		return SyncStats{}, err
	}

	remote := make(map[string]string) // observation ID -> object key
	for _, obj := range objects {
		remote[observation.DeriveSourceID(obj.Key)] = obj.Key
	}

	stats := SyncStats{}

	for id, objectKey := range remote {
		if r.IsLoaded(id) {
			r.logger.Debug("observation already loaded, skipping", "id", id)
			continue
		}

		localPath := filepath.Join(r.localPath, objectKey)
		if err := r.storage.Download(ctx, objectKey, localPath); err != nil {
			r.logger.Error("failed to download observation", "key", objectKey, "error", err)
			continue
		}

		if err := r.LoadObservation(ctx, localPath); err != nil {
			r.logger.Error("failed to load observation", "path", localPath, "error", err)
			continue
		}

		stats.Added++
		r.logger.Info("new observation synced", "id", id)
	}

	for _, id := range r.findObservationsToRemove(remote) {
		r.logger.Info("removing observation not in remote storage", "id", id)

		localPath := r.getObservationPath(id)

		if err := r.UnloadObservation(ctx, id); err != nil {
			r.logger.Error("failed to unload removed observation", "id", id, "error", err)
			continue
		}

		if localPath != "" {
			if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
				r.logger.Warn("failed to delete local cache file", "path", localPath, "error", err)
			}
		}

		stats.Removed++
	}

	r.logger.Info("sync completed", "added", stats.Added, "removed", stats.Removed,
		"total", r.ObservationCount())
	return stats, nil
}

// findObservationsToRemove returns IDs that are loaded but not in remote
// storage.
func (r *FootprintRegistry) findObservationsToRemove(remote map[string]string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var toRemove []string
	for id := range r.observations {
		if _, exists := remote[id]; !exists {
			toRemove = append(toRemove, id)
		}
	}
	return toRemove
}

// getObservationPath returns the local file path for a loaded observation.
func (r *FootprintRegistry) getObservationPath(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.observations[id]; ok && entry.Observation != nil {
		return entry.Observation.Path
	}
	return ""
}

// Package observation reads observation description files: YAML documents
// listing a source's sub-regions and their tangent-plane WCS keywords.
package observation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jobrunner/skyline/internal/adapters/wcs"
	"github.com/jobrunner/skyline/internal/domain"
)

// FileSuffix is the extension observation description files carry.
const FileSuffix = ".obs.yaml"

// observationFile is the on-disk document layout.
type observationFile struct {
	Source  string       `yaml:"source"`
	Name    string       `yaml:"name"`
	Regions []regionSpec `yaml:"regions"`
}

type regionSpec struct {
	Kind     string  `yaml:"kind"`
	Selector int     `yaml:"selector"`
	WCS      wcsSpec `yaml:"wcs"`
}

type wcsSpec struct {
	CRVAL [2]float64    `yaml:"crval"`
	CRPIX [2]float64    `yaml:"crpix"`
	CD    [2][2]float64 `yaml:"cd"`
	NAXIS [2]int        `yaml:"naxis"`
}

// Repository implements the ObservationRepository port over parsed
// description files. Opened documents stay cached so footprints can be
// rebuilt without re-reading the file.
type Repository struct {
	mu   sync.RWMutex
	docs map[string]*observationFile
}

// NewRepository creates a new observation repository.
func NewRepository() *Repository {
	return &Repository{docs: make(map[string]*observationFile)}
}

// DeriveSourceID derives the observation identifier from a file path.
func DeriveSourceID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), FileSuffix)
}

// Open reads and validates an observation description file, registering it
// as a source for later region and transform lookups.
func (r *Repository) Open(_ context.Context, path string) (*domain.Observation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.SourceError{SourceID: DeriveSourceID(path), Op: "open", Err: err}
	}
	var doc observationFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.SourceError{SourceID: DeriveSourceID(path), Op: "parse", Err: err}
	}

	// The file name is the authoritative identifier: the registry, sync,
	// and the watcher all key observations by it. A document claiming a
	// different source would load under one id and be tracked under
	// another, so it is rejected outright.
	id := DeriveSourceID(path)
	if doc.Source != "" && doc.Source != id {
		return nil, &domain.SourceError{
			SourceID: id,
			Op:       "parse",
			Err: fmt.Errorf("document source %q does not match file name %q: %w",
				doc.Source, id, domain.ErrInvalidInput),
		}
	}
	doc.Source = id
	if len(doc.Regions) == 0 {
		return nil, &domain.SourceError{
			SourceID: id,
			Op:       "parse",
			Err:      fmt.Errorf("no regions declared: %w", domain.ErrInvalidInput),
		}
	}
	// Validate every WCS up front so a bad region fails at load, not at
	// footprint construction.
	for _, region := range doc.Regions {
		if _, err := buildTransform(region.WCS); err != nil {
			return nil, &domain.SourceError{
				SourceID: id,
				Op:       "parse",
				Err:      fmt.Errorf("region %d: %w", region.Selector, err),
			}
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &domain.SourceError{SourceID: id, Op: "stat", Err: err}
	}

	r.mu.Lock()
	r.docs[id] = &doc
	r.mu.Unlock()

	name := doc.Name
	if name == "" {
		name = id
	}
	return &domain.Observation{
		ID:       id,
		Name:     name,
		Path:     path,
		Size:     info.Size(),
		LoadedAt: time.Now(),
	}, nil
}

// Remove forgets a registered source.
func (r *Repository) Remove(sourceID string) {
	r.mu.Lock()
	delete(r.docs, sourceID)
	r.mu.Unlock()
}

// OpenSource implements domain.SourceProvider.
func (r *Repository) OpenSource(_ context.Context, sourceID string) ([]domain.Region, error) {
	r.mu.RLock()
	doc, ok := r.docs[sourceID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source %q: %w", sourceID, domain.ErrObservationNotFound)
	}
	regions := make([]domain.Region, len(doc.Regions))
	for i, spec := range doc.Regions {
		regions[i] = domain.Region{Kind: spec.Kind, Selector: spec.Selector}
	}
	return regions, nil
}

// TransformForRegion implements domain.SourceProvider.
func (r *Repository) TransformForRegion(_ context.Context, sourceID string, selector int) (domain.Transform, error) {
	r.mu.RLock()
	doc, ok := r.docs[sourceID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("source %q: %w", sourceID, domain.ErrObservationNotFound)
	}
	for _, spec := range doc.Regions {
		if spec.Selector == selector {
			return buildTransform(spec.WCS)
		}
	}
	return nil, fmt.Errorf("source %q region %d: %w", sourceID, selector, domain.ErrNotFound)
}

func buildTransform(spec wcsSpec) (domain.Transform, error) {
	return wcs.New(
		domain.NewSkyCoord(spec.CRVAL[0], spec.CRVAL[1]),
		spec.CRPIX,
		spec.CD,
		spec.NAXIS,
	)
}

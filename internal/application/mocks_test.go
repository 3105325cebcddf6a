package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jobrunner/skyline/internal/adapters/observation"
	"github.com/jobrunner/skyline/internal/domain"
	"github.com/jobrunner/skyline/internal/ports/output"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// cellPolygon models a region as a set of named patches so overlap areas
// are explicit in the tests.
type cellPolygon struct {
	cells map[string]float64
}

func newCellPolygon(cells ...string) *cellPolygon {
	p := &cellPolygon{cells: make(map[string]float64)}
	for _, c := range cells {
		p.cells[c] = 1.0
	}
	return p
}

func (p *cellPolygon) Union(o domain.Polygon) (domain.Polygon, error) {
	op, ok := o.(*cellPolygon)
	if !ok {
		return nil, &domain.GeometryError{Op: "union", Err: errors.New("foreign polygon type")}
	}
	out := &cellPolygon{cells: make(map[string]float64)}
	for c, a := range p.cells {
		out.cells[c] = a
	}
	for c, a := range op.cells {
		out.cells[c] = a
	}
	return out, nil
}

func (p *cellPolygon) Intersection(o domain.Polygon) (domain.Polygon, error) {
	op, ok := o.(*cellPolygon)
	if !ok {
		return nil, &domain.GeometryError{Op: "intersection", Err: errors.New("foreign polygon type")}
	}
	out := &cellPolygon{cells: make(map[string]float64)}
	for c, a := range p.cells {
		if _, ok := op.cells[c]; ok {
			out.cells[c] = a
		}
	}
	return out, nil
}

func (p *cellPolygon) Area() float64 {
	sum := 0.0
	for _, a := range p.cells {
		sum += a
	}
	return sum
}

func (p *cellPolygon) Intersects(o domain.Polygon) bool {
	op, ok := o.(*cellPolygon)
	if !ok {
		return false
	}
	for c := range p.cells {
		if _, ok := op.cells[c]; ok {
			return true
		}
	}
	return false
}

func (p *cellPolygon) ContainsPoint(coord domain.SkyCoord) bool {
	_, ok := p.cells[coord.String()]
	return ok
}

func (p *cellPolygon) IsEmpty() bool { return len(p.cells) == 0 }

func (p *cellPolygon) Clone() domain.Polygon {
	out := &cellPolygon{cells: make(map[string]float64, len(p.cells))}
	for c, a := range p.cells {
		out.cells[c] = a
	}
	return out
}

func (p *cellPolygon) Equal(o domain.Polygon) bool {
	op, ok := o.(*cellPolygon)
	if !ok || len(op.cells) != len(p.cells) {
		return false
	}
	for c, a := range p.cells {
		if op.cells[c] != a {
			return false
		}
	}
	return true
}

type cellTransform struct {
	cells []string
}

func (t *cellTransform) Center() domain.SkyCoord    { return domain.NewSkyCoord(0, 0) }
func (t *cellTransform) Corners() []domain.SkyCoord { return nil }

type cellFactory struct{}

func (cellFactory) FromTransform(t domain.Transform) (domain.Polygon, error) {
	ct, ok := t.(*cellTransform)
	if !ok {
		return nil, &domain.GeometryError{Op: "polyfill", Err: errors.New("foreign transform type")}
	}
	return newCellPolygon(ct.cells...), nil
}

func (cellFactory) Empty() domain.Polygon { return newCellPolygon() }

type cellCombiner struct{}

func (cellCombiner) Combine(transforms []domain.Transform) (domain.Transform, error) {
	if len(transforms) == 0 {
		return nil, errors.New("no transforms to combine")
	}
	out := &cellTransform{}
	seen := make(map[string]bool)
	for _, t := range transforms {
		ct, ok := t.(*cellTransform)
		if !ok {
			return nil, errors.New("foreign transform type")
		}
		for _, c := range ct.cells {
			if !seen[c] {
				seen[c] = true
				out.cells = append(out.cells, c)
			}
		}
	}
	return out, nil
}

// mockRepository implements output.ObservationRepository for testing. Each
// configured source has one SCI region whose footprint covers the given
// patches.
type mockRepository struct {
	mu      sync.Mutex
	sources map[string][]string // source ID -> patch names
	openErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{sources: make(map[string][]string)}
}

func (m *mockRepository) addSource(id string, cells ...string) {
	m.mu.Lock()
	m.sources[id] = cells
	m.mu.Unlock()
}

func (m *mockRepository) Open(_ context.Context, path string) (*domain.Observation, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	id := observation.DeriveSourceID(path)
	m.mu.Lock()
	_, ok := m.sources[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("source %q: %w", id, domain.ErrObservationNotFound)
	}
	return &domain.Observation{
		ID:       id,
		Name:     id,
		Path:     path,
		Size:     1,
		LoadedAt: time.Now(),
	}, nil
}

func (m *mockRepository) Remove(sourceID string) {
	m.mu.Lock()
	delete(m.sources, sourceID)
	m.mu.Unlock()
}

func (m *mockRepository) OpenSource(_ context.Context, sourceID string) ([]domain.Region, error) {
	m.mu.Lock()
	_, ok := m.sources[sourceID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("source %q: %w", sourceID, domain.ErrObservationNotFound)
	}
	return []domain.Region{{Kind: "SCI", Selector: 1}}, nil
}

func (m *mockRepository) TransformForRegion(_ context.Context, sourceID string, _ int) (domain.Transform, error) {
	m.mu.Lock()
	cells, ok := m.sources[sourceID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("source %q: %w", sourceID, domain.ErrObservationNotFound)
	}
	return &cellTransform{cells: cells}, nil
}

// mockStorage implements output.ObjectStorage for testing.
type mockStorage struct {
	objects     []output.StorageObject
	downloadErr error
	listErr     error
}

func (m *mockStorage) List(_ context.Context) ([]output.StorageObject, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.objects, nil
}

func (m *mockStorage) Download(_ context.Context, _, _ string) error {
	return m.downloadErr
}

func (m *mockStorage) GetReader(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, nil
}

func (m *mockStorage) Exists(_ context.Context, _ string) (bool, error) {
	return true, nil
}

// mockCatalog implements output.MosaicCatalog in memory.
type mockCatalog struct {
	mu      sync.Mutex
	runs    []domain.MosaicRun
	saveErr error
}

func (m *mockCatalog) SaveRun(_ context.Context, run *domain.MosaicRun) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	m.runs = append(m.runs, *run)
	m.mu.Unlock()
	return nil
}

func (m *mockCatalog) ListRuns(_ context.Context, limit int) ([]domain.MosaicRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.MosaicRun, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0; i-- {
		out = append(out, m.runs[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *mockCatalog) GetRun(_ context.Context, id string) (*domain.MosaicRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == id {
			run := m.runs[i]
			return &run, nil
		}
	}
	return nil, domain.ErrMosaicRunNotFound
}

func (m *mockCatalog) Close() error { return nil }

// mockMetrics counts collector calls.
type mockMetrics struct {
	mu               sync.Mutex
	coverageOK       int
	coverageFailed   int
	mosaicOK         int
	mosaicFailed     int
	footprintsLoaded int
	footprintsReady  int
}

func (m *mockMetrics) IncCoverageQueries(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.coverageOK++
	} else {
		m.coverageFailed++
	}
}

func (m *mockMetrics) ObserveCoverageDuration(_ time.Duration) {}

func (m *mockMetrics) SetFootprintsLoaded(count int) {
	m.mu.Lock()
	m.footprintsLoaded = count
	m.mu.Unlock()
}

func (m *mockMetrics) SetFootprintsReady(count int) {
	m.mu.Lock()
	m.footprintsReady = count
	m.mu.Unlock()
}

func (m *mockMetrics) IncMosaicRuns(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.mosaicOK++
	} else {
		m.mosaicFailed++
	}
}

func (m *mockMetrics) ObserveMosaicDuration(_ time.Duration) {}

func (m *mockMetrics) IncStorageOperations(_ string, _ bool) {}

func (m *mockMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}

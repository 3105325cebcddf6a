package application

import (
	"context"
	"errors"
	"testing"

	"github.com/jobrunner/skyline/internal/domain"
)

func newMosaicFixture(t *testing.T) (*MosaicService, *mockCatalog, *mockMetrics) {
	t.Helper()
	repo := newMockRepository()
	// f1 and f2 overlap on x, f3 attaches through y, f4 is disjoint.
	repo.addSource("f1", "x", "p")
	repo.addSource("f2", "x", "y")
	repo.addSource("f3", "y", "q")
	repo.addSource("f4", "z")
	metrics := &mockMetrics{}
	registry := newTestRegistry(repo, &mockStorage{}, metrics)
	loadSources(t, registry, "f1", "f2", "f3", "f4")

	catalog := &mockCatalog{}
	return NewMosaicService(registry, catalog, metrics, testLogger(), true), catalog, metrics
}

func TestAssemble(t *testing.T) {
	svc, catalog, metrics := newMosaicFixture(t)

	run, err := svc.Assemble(context.Background(), domain.MosaicRequest{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if run.ID == "" {
		t.Error("run should have an ID")
	}
	want := []string{"f1", "f2", "f3"}
	if len(run.Included) != len(want) {
		t.Fatalf("included = %v, want %v", run.Included, want)
	}
	for i, id := range want {
		if run.Included[i] != id {
			t.Errorf("included[%d] = %q, want %q", i, run.Included[i], id)
		}
	}
	if len(run.Excluded) != 1 || run.Excluded[0] != "f4" {
		t.Errorf("excluded = %v, want [f4]", run.Excluded)
	}
	if run.Area != 4.0 {
		t.Errorf("area = %v, want 4.0 (patches x p y q)", run.Area)
	}
	if run.MemberCount != 3 {
		t.Errorf("member count = %d, want 3", run.MemberCount)
	}
	if len(catalog.runs) != 1 {
		t.Errorf("catalog runs = %d, want 1", len(catalog.runs))
	}
	if metrics.mosaicOK != 1 {
		t.Errorf("mosaic success count = %d, want 1", metrics.mosaicOK)
	}
}

func TestAssembleSubset(t *testing.T) {
	svc, _, _ := newMosaicFixture(t)

	run, err := svc.Assemble(context.Background(), domain.MosaicRequest{
		ObservationIDs: []string{"f1", "f2"},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(run.Included) != 2 {
		t.Errorf("included = %v, want just the requested pair", run.Included)
	}
	if len(run.Excluded) != 0 {
		t.Errorf("excluded = %v, want empty", run.Excluded)
	}
}

func TestAssembleSubsetDeduplicatesRequest(t *testing.T) {
	svc, _, _ := newMosaicFixture(t)

	run, err := svc.Assemble(context.Background(), domain.MosaicRequest{
		ObservationIDs: []string{"f1", "f2", "f1", "f2"},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []string{"f1", "f2"}
	if len(run.Included) != len(want) {
		t.Fatalf("included = %v, want each observation once", run.Included)
	}
	for i, id := range want {
		if run.Included[i] != id {
			t.Errorf("included[%d] = %q, want %q", i, run.Included[i], id)
		}
	}
	if len(run.Excluded) != 0 {
		t.Errorf("excluded = %v, want empty", run.Excluded)
	}
	if run.MemberCount != 2 {
		t.Errorf("member count = %d, want 2", run.MemberCount)
	}
}

func TestAssembleUnknownSubset(t *testing.T) {
	svc, _, metrics := newMosaicFixture(t)

	_, err := svc.Assemble(context.Background(), domain.MosaicRequest{
		ObservationIDs: []string{"f1", "ghost"},
	})
	if !errors.Is(err, domain.ErrObservationNotFound) {
		t.Errorf("error = %v, want ErrObservationNotFound", err)
	}
	if metrics.mosaicFailed != 1 {
		t.Errorf("mosaic failure count = %d, want 1", metrics.mosaicFailed)
	}
}

func TestAssembleNoMosaic(t *testing.T) {
	repo := newMockRepository()
	repo.addSource("f1", "a")
	repo.addSource("f2", "b")
	registry := newTestRegistry(repo, &mockStorage{}, &mockMetrics{})
	loadSources(t, registry, "f1", "f2")

	catalog := &mockCatalog{}
	svc := NewMosaicService(registry, catalog, &mockMetrics{}, testLogger(), true)

	run, err := svc.Assemble(context.Background(), domain.MosaicRequest{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if run.HasMosaic() {
		t.Error("disjoint footprints should produce no mosaic")
	}
	if run.Area != 0 || run.MemberCount != 0 {
		t.Errorf("run stats = area %v, members %d, want zeros", run.Area, run.MemberCount)
	}
	if len(catalog.runs) != 1 {
		t.Error("even an empty run should be recorded")
	}
}

func TestAssembleCatalogSaveFailure(t *testing.T) {
	repo := newMockRepository()
	repo.addSource("f1", "x")
	repo.addSource("f2", "x")
	registry := newTestRegistry(repo, &mockStorage{}, &mockMetrics{})
	loadSources(t, registry, "f1", "f2")

	saveErr := &domain.CatalogError{Operation: "save", Err: errors.New("disk full")}
	svc := NewMosaicService(registry, &mockCatalog{saveErr: saveErr}, &mockMetrics{}, testLogger(), true)

	var cerr *domain.CatalogError
	if _, err := svc.Assemble(context.Background(), domain.MosaicRequest{}); !errors.As(err, &cerr) {
		t.Errorf("error = %v, want *domain.CatalogError", err)
	}
}

func TestAssembleToleranceOverride(t *testing.T) {
	svc, catalog, _ := newMosaicFixture(t)

	strict := false
	run, err := svc.Assemble(context.Background(), domain.MosaicRequest{Tolerant: &strict})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if run.Tolerant {
		t.Error("request override should force strict mode")
	}
	if catalog.runs[0].Tolerant {
		t.Error("recorded run should carry the overridden mode")
	}
}

func TestListAndGetRuns(t *testing.T) {
	svc, _, _ := newMosaicFixture(t)
	ctx := context.Background()

	first, err := svc.Assemble(ctx, domain.MosaicRequest{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	runs, err := svc.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != first.ID {
		t.Errorf("runs = %v, want the recorded run", runs)
	}

	got, err := svc.GetRun(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("run = %q, want %q", got.ID, first.ID)
	}

	if _, err := svc.GetRun(ctx, "ghost"); !errors.Is(err, domain.ErrMosaicRunNotFound) {
		t.Errorf("error = %v, want ErrMosaicRunNotFound", err)
	}
}

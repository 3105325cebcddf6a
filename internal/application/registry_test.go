package application

import (
	"context"
	"errors"
	"testing"

	"github.com/jobrunner/skyline/internal/domain"
	"github.com/jobrunner/skyline/internal/ports/output"
)

func newTestRegistry(repo *mockRepository, storage *mockStorage, metrics *mockMetrics) *FootprintRegistry {
	return NewFootprintRegistry(
		repo,
		cellCombiner{},
		cellFactory{},
		storage,
		metrics,
		testLogger(),
		"/tmp/skyline-test",
		"SCI",
	)
}

func TestLoadObservation(t *testing.T) {
	repo := newMockRepository()
	repo.addSource("f1", "a", "b")
	metrics := &mockMetrics{}
	registry := newTestRegistry(repo, &mockStorage{}, metrics)

	if err := registry.LoadObservation(context.Background(), "/data/f1.obs.yaml"); err != nil {
		t.Fatalf("LoadObservation: %v", err)
	}

	status, err := registry.GetObservationStatus(context.Background(), "f1")
	if err != nil {
		t.Fatalf("GetObservationStatus: %v", err)
	}
	if status != domain.StatusReady {
		t.Errorf("status = %q, want ready", status)
	}

	obs, err := registry.GetObservation(context.Background(), "f1")
	if err != nil {
		t.Fatalf("GetObservation: %v", err)
	}
	if !obs.IsReady() {
		t.Error("observation should be ready")
	}
	if obs.Footprint.Area() != 2.0 {
		t.Errorf("footprint area = %v, want 2.0", obs.Footprint.Area())
	}
	if metrics.footprintsLoaded != 1 || metrics.footprintsReady != 1 {
		t.Errorf("metrics = %d loaded / %d ready, want 1/1",
			metrics.footprintsLoaded, metrics.footprintsReady)
	}
}

func TestLoadObservationOpenFailure(t *testing.T) {
	repo := newMockRepository()
	registry := newTestRegistry(repo, &mockStorage{}, &mockMetrics{})

	err := registry.LoadObservation(context.Background(), "/data/absent.obs.yaml")
	if !errors.Is(err, domain.ErrObservationNotFound) {
		t.Errorf("error = %v, want ErrObservationNotFound", err)
	}
	if registry.ObservationCount() != 0 {
		t.Error("failed open should not register an observation")
	}
}

func TestUnloadObservation(t *testing.T) {
	repo := newMockRepository()
	repo.addSource("f1", "a")
	registry := newTestRegistry(repo, &mockStorage{}, &mockMetrics{})
	if err := registry.LoadObservation(context.Background(), "/data/f1.obs.yaml"); err != nil {
		t.Fatalf("LoadObservation: %v", err)
	}

	if err := registry.UnloadObservation(context.Background(), "f1"); err != nil {
		t.Fatalf("UnloadObservation: %v", err)
	}
	if registry.IsLoaded("f1") {
		t.Error("observation should be gone after unload")
	}
	if _, err := registry.GetObservation(context.Background(), "f1"); !errors.Is(err, domain.ErrObservationNotFound) {
		t.Errorf("error = %v, want ErrObservationNotFound", err)
	}
}

func TestReadyFootprintsSortedByID(t *testing.T) {
	repo := newMockRepository()
	repo.addSource("f3", "c")
	repo.addSource("f1", "a")
	repo.addSource("f2", "b")
	registry := newTestRegistry(repo, &mockStorage{}, &mockMetrics{})
	for _, id := range []string{"f3", "f1", "f2"} {
		if err := registry.LoadObservation(context.Background(), "/data/"+id+".obs.yaml"); err != nil {
			t.Fatalf("LoadObservation(%s): %v", id, err)
		}
	}

	ids, footprints := registry.ReadyFootprints()
	want := []string{"f1", "f2", "f3"}
	if len(ids) != len(want) {
		t.Fatalf("ready count = %d, want %d", len(ids), len(want))
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], id)
		}
		if footprints[i].RoughID() != id {
			t.Errorf("footprints[%d] = %q, want %q", i, footprints[i].RoughID(), id)
		}
	}
}

func TestLoadAll(t *testing.T) {
	repo := newMockRepository()
	repo.addSource("f1", "a")
	repo.addSource("f2", "b")
	storage := &mockStorage{
		objects: []output.StorageObject{
			{Key: "f1.obs.yaml", Size: 1},
			{Key: "f2.obs.yaml", Size: 1},
		},
	}
	registry := newTestRegistry(repo, storage, &mockMetrics{})

	if err := registry.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if registry.ObservationCount() != 2 {
		t.Errorf("count = %d, want 2", registry.ObservationCount())
	}
}

func TestLoadAllStorageError(t *testing.T) {
	registry := newTestRegistry(newMockRepository(), &mockStorage{listErr: domain.ErrStorageUnavailable}, &mockMetrics{})

	if err := registry.LoadAll(context.Background()); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Errorf("error = %v, want ErrStorageUnavailable", err)
	}
}

func TestSyncAddsAndRemoves(t *testing.T) {
	repo := newMockRepository()
	repo.addSource("f1", "a")
	repo.addSource("f2", "b")
	storage := &mockStorage{
		objects: []output.StorageObject{{Key: "f1.obs.yaml", Size: 1}},
	}
	registry := newTestRegistry(repo, storage, &mockMetrics{})

	// f2 loaded locally but absent remotely: sync should drop it.
	if err := registry.LoadObservation(context.Background(), "/data/f2.obs.yaml"); err != nil {
		t.Fatalf("LoadObservation: %v", err)
	}

	stats, err := registry.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Added != 1 {
		t.Errorf("added = %d, want 1", stats.Added)
	}
	if stats.Removed != 1 {
		t.Errorf("removed = %d, want 1", stats.Removed)
	}
	if !registry.IsLoaded("f1") || registry.IsLoaded("f2") {
		t.Error("after sync only f1 should remain loaded")
	}
}

func TestSyncKeepsRejectedDocumentOutOfRegistry(t *testing.T) {
	// A remote document that fails to open (for example one whose declared
	// source disagrees with its file name) must neither count as added nor
	// trigger a removal pass against observations it never registered.
	repo := newMockRepository()
	repo.addSource("alpha", "a")
	storage := &mockStorage{
		objects: []output.StorageObject{
			{Key: "alpha.obs.yaml", Size: 1},
			{Key: "bravo.obs.yaml", Size: 1},
		},
	}
	registry := newTestRegistry(repo, storage, &mockMetrics{})

	stats, err := registry.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Added != 1 || stats.Removed != 0 {
		t.Errorf("stats = %+v, want 1 added and nothing removed", stats)
	}
	if !registry.IsLoaded("alpha") {
		t.Error("the valid observation should survive the sync")
	}
	if registry.IsLoaded("bravo") {
		t.Error("the rejected document must not be registered")
	}

	// A second pass must not start flapping over the failed document.
	stats, err = registry.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if stats.Added != 0 || stats.Removed != 0 {
		t.Errorf("second sync stats = %+v, want no changes", stats)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	repo.addSource("f1", "a")
	storage := &mockStorage{
		objects: []output.StorageObject{{Key: "f1.obs.yaml", Size: 1}},
	}
	registry := newTestRegistry(repo, storage, &mockMetrics{})

	if _, err := registry.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	stats, err := registry.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Added != 0 || stats.Removed != 0 {
		t.Errorf("second sync stats = %+v, want no changes", stats)
	}
}

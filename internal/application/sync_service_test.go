package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jobrunner/skyline/internal/ports/output"
)

func TestTriggerSync(t *testing.T) {
	repo := newMockRepository()
	repo.addSource("f1", "a")
	storage := &mockStorage{
		objects: []output.StorageObject{{Key: "f1.obs.yaml", Size: 1}},
	}
	registry := newTestRegistry(repo, storage, &mockMetrics{})
	svc := NewSyncService(registry, time.Hour, testLogger())

	result, err := svc.TriggerSync(context.Background())
	if err != nil {
		t.Fatalf("TriggerSync: %v", err)
	}
	if result.ObservationsAdded != 1 {
		t.Errorf("added = %d, want 1", result.ObservationsAdded)
	}
	if result.ObservationsTotal != 1 {
		t.Errorf("total = %d, want 1", result.ObservationsTotal)
	}
}

func TestTriggerSyncRateLimited(t *testing.T) {
	registry := newTestRegistry(newMockRepository(), &mockStorage{}, &mockMetrics{})
	svc := NewSyncService(registry, time.Hour, testLogger())

	if _, err := svc.TriggerSync(context.Background()); err != nil {
		t.Fatalf("first TriggerSync: %v", err)
	}
	if _, err := svc.TriggerSync(context.Background()); !errors.Is(err, ErrRateLimited) {
		t.Errorf("second trigger error = %v, want ErrRateLimited", err)
	}
}

func TestSyncServiceStartStop(t *testing.T) {
	registry := newTestRegistry(newMockRepository(), &mockStorage{}, &mockMetrics{})
	svc := NewSyncService(registry, time.Hour, testLogger())

	svc.Start(context.Background())
	svc.Stop()
}

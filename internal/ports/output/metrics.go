package output

import "time"

// MetricsCollector defines the secondary port for metrics collection.
type MetricsCollector interface {
	// IncCoverageQueries increments the coverage query counter.
	IncCoverageQueries(success bool)

	// ObserveCoverageDuration records coverage query duration.
	ObserveCoverageDuration(duration time.Duration)

	// SetFootprintsLoaded sets the number of loaded footprints.
	SetFootprintsLoaded(count int)

	// SetFootprintsReady sets the number of ready footprints.
	SetFootprintsReady(count int)

	// IncMosaicRuns increments the mosaic run counter.
	IncMosaicRuns(success bool)

	// ObserveMosaicDuration records mosaic assembly duration.
	ObserveMosaicDuration(duration time.Duration)

	// IncStorageOperations increments storage operation counter.
	IncStorageOperations(operation string, success bool)

	// ObserveStorageDuration records storage operation duration.
	ObserveStorageDuration(operation string, duration time.Duration)
}

// NoOpMetrics is a no-op implementation of MetricsCollector.
type NoOpMetrics struct{}

// IncCoverageQueries implements MetricsCollector.
func (n *NoOpMetrics) IncCoverageQueries(_ bool) {}

// ObserveCoverageDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveCoverageDuration(_ time.Duration) {}

// SetFootprintsLoaded implements MetricsCollector.
func (n *NoOpMetrics) SetFootprintsLoaded(_ int) {}

// SetFootprintsReady implements MetricsCollector.
func (n *NoOpMetrics) SetFootprintsReady(_ int) {}

// IncMosaicRuns implements MetricsCollector.
func (n *NoOpMetrics) IncMosaicRuns(_ bool) {}

// ObserveMosaicDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveMosaicDuration(_ time.Duration) {}

// IncStorageOperations implements MetricsCollector.
func (n *NoOpMetrics) IncStorageOperations(_ string, _ bool) {}

// ObserveStorageDuration implements MetricsCollector.
func (n *NoOpMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}

package domain

import "time"

// Observation represents a registered observation description file and
// the footprint computed from it.
type Observation struct {
	ID         string     // Unique identifier (derived from filename)
	Name       string     // Display name
	Path       string     // File path
	Size       int64      // File size in bytes
	RegionKind string     // Region kind the footprint was built from
	Footprint  *Footprint // Computed footprint, nil until ready
	LoadedAt   time.Time  // Load timestamp
}

// IsReady returns true if the observation has a computed footprint.
func (o *Observation) IsReady() bool {
	return o.Footprint != nil && !o.Footprint.IsEmpty()
}

// Area returns the footprint area in square degrees, 0 when not ready.
func (o *Observation) Area() float64 {
	if o.Footprint == nil {
		return 0
	}
	return o.Footprint.Area()
}

// ObservationStatus represents the lifecycle state of an observation.
type ObservationStatus string

const (
	StatusLoading   ObservationStatus = "loading"
	StatusReady     ObservationStatus = "ready"
	StatusError     ObservationStatus = "error"
	StatusUnloading ObservationStatus = "unloading"
)

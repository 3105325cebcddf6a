package domain

import "time"

// MosaicRequest asks for a mosaic assembly over registered observations.
type MosaicRequest struct {
	ObservationIDs []string // Optional subset; empty = all ready observations
	Tolerant       *bool    // Optional override of the configured tolerance
}

// MosaicRun records one completed mosaic assembly.
type MosaicRun struct {
	ID          string        // Unique run identifier
	CreatedAt   time.Time     // Assembly timestamp
	Tolerant    bool          // Tolerance mode the run used
	Included    []string      // Source ids in inclusion order
	Excluded    []string      // Source ids that could not be attached
	Area        float64       // Mosaic area in square degrees, 0 when no mosaic
	MemberCount int           // Members in the mosaic footprint
	Duration    time.Duration // Wall-clock assembly time
}

// HasMosaic returns true if the run produced a merged region.
func (r *MosaicRun) HasMosaic() bool {
	return len(r.Included) > 0
}

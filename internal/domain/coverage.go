package domain

// CoverageRequest is a point query against the registered footprints.
type CoverageRequest struct {
	Coord         SkyCoord // Sky position to test
	ObservationID string   // Optional: restrict to a single observation
	MaxResults    int      // 0 = unlimited
}

// Validate checks the request parameters.
func (r *CoverageRequest) Validate() error {
	if err := r.Coord.Validate(); err != nil {
		return err
	}
	if r.MaxResults < 0 {
		return &ValidationError{
			Field:      "max_results",
			Value:      r.MaxResults,
			Constraint: ">= 0",
			Message:    "max results must not be negative",
		}
	}
	return nil
}

// CoverageHit is one observation whose footprint contains the queried
// position.
type CoverageHit struct {
	ObservationID string   // Observation identifier
	Name          string   // Display name
	Area          float64  // Footprint area in square degrees
	MemberSources []string // Source ids of the members covering the point
}

// CoverageResponse is the result of a coverage query.
type CoverageResponse struct {
	Coord   SkyCoord      // Echo of the queried position
	Hits    []CoverageHit // Matching observations
	Scanned int           // Number of footprints tested
}

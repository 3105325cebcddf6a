package domain

import "context"

// Region identifies one sub-region of an observation source.
type Region struct {
	Kind     string // Region kind tag (SCI, ERR, DQ, ...)
	Selector int    // Index of the region within the source
}

// SourceProvider reads observation sources. Missing sources and missing
// selectors propagate as errors immediately; they are never retried.
type SourceProvider interface {
	// OpenSource enumerates the sub-regions of a source in file order.
	OpenSource(ctx context.Context, sourceID string) ([]Region, error)
	// TransformForRegion builds the coordinate transform of one sub-region.
	TransformForRegion(ctx context.Context, sourceID string, selector int) (Transform, error)
}

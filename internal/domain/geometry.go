package domain

// Polygon is a closed region on the celestial sphere. Implementations are
// provided by a geometry adapter; the domain layer only composes them.
//
// Union and Intersection return new polygons and never mutate their
// receivers. Both may fail with a *GeometryError on degenerate or
// incompatible operands; that is the only expected failure mode.
type Polygon interface {
	// Union returns the polygon covering both regions.
	Union(other Polygon) (Polygon, error)
	// Intersection returns the polygon covering the common region.
	Intersection(other Polygon) (Polygon, error)
	// Area returns the covered area in square degrees.
	Area() float64
	// Intersects reports whether the two regions share any area.
	Intersects(other Polygon) bool
	// ContainsPoint reports whether the sky position lies inside the region.
	ContainsPoint(coord SkyCoord) bool
	// IsEmpty reports whether the polygon covers no area.
	IsEmpty() bool
	// Clone returns an independent copy.
	Clone() Polygon
	// Equal reports value equality of the covered regions.
	Equal(other Polygon) bool
}

// Transform is an opaque sky-to-pixel coordinate transform for one or more
// combined sub-regions of a source. The domain layer never inspects its
// projection math, only its footprint outline.
type Transform interface {
	// Center returns the reference sky position of the transform.
	Center() SkyCoord
	// Corners returns the sky positions outlining the transform's
	// pixel grid, in traversal order.
	Corners() []SkyCoord
}

// PolygonFactory constructs polygons. Construction stays adapter-side;
// Footprint only exposes the composition operations.
type PolygonFactory interface {
	// FromTransform derives the footprint polygon of a transform.
	FromTransform(t Transform) (Polygon, error)
	// Empty returns the empty polygon, the identity element for union.
	Empty() Polygon
}

// TransformCombiner blends one or more per-region transforms into a single
// transform spanning them all. Callers must supply at least one input.
type TransformCombiner interface {
	Combine(transforms []Transform) (Transform, error)
}

// Collaborators bundles the external geometry and source collaborators
// needed to construct members and footprints.
type Collaborators struct {
	Source   SourceProvider    // Region enumeration and per-region transforms
	Combiner TransformCombiner // Transform blending
	Polygons PolygonFactory    // Polygon derivation
}

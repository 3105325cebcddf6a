package domain

import (
	"context"
	"fmt"
	"strings"
)

// Member is an immutable record binding an observation source to the
// sub-regions of it that were combined: the source identifier, the ordered
// region selectors, the combined coordinate transform and the resulting
// spherical polygon footprint.
type Member struct {
	sourceID  string
	selectors []int
	transform Transform
	polygon   Polygon
}

// NewMember builds a member from a source. It enumerates the source's
// sub-regions, keeps those whose kind tag matches regionKind
// (case-insensitive), blends their transforms into one and derives the
// footprint polygon from it. A source with zero matching regions fails
// with a *NoMatchingRegionError.
func NewMember(ctx context.Context, sourceID, regionKind string, deps Collaborators) (*Member, error) {
	regions, err := deps.Source.OpenSource(ctx, sourceID)
	if err != nil {
		return nil, &SourceError{SourceID: sourceID, Op: "open", Err: err}
	}

	var (
		selectors  []int
		transforms []Transform
	)
	for _, region := range regions {
		if !strings.EqualFold(region.Kind, regionKind) {
			continue
		}
		t, err := deps.Source.TransformForRegion(ctx, sourceID, region.Selector)
		if err != nil {
			return nil, &SourceError{SourceID: sourceID, Op: "transform", Err: err}
		}
		selectors = append(selectors, region.Selector)
		transforms = append(transforms, t)
	}
	if len(selectors) == 0 {
		return nil, &NoMatchingRegionError{SourceID: sourceID, Kind: regionKind}
	}

	transform := transforms[0]
	if len(transforms) > 1 {
		transform, err = deps.Combiner.Combine(transforms)
		if err != nil {
			return nil, fmt.Errorf("combining %d transforms for %s: %w", len(transforms), sourceID, err)
		}
	}

	polygon, err := deps.Polygons.FromTransform(transform)
	if err != nil {
		return nil, fmt.Errorf("deriving polygon for %s: %w", sourceID, err)
	}

	return &Member{
		sourceID:  sourceID,
		selectors: selectors,
		transform: transform,
		polygon:   polygon,
	}, nil
}

// SourceID returns the identifier of the originating source.
func (m *Member) SourceID() string {
	return m.sourceID
}

// Selectors returns the ordered region selectors that were combined.
func (m *Member) Selectors() []int {
	out := make([]int, len(m.selectors))
	copy(out, m.selectors)
	return out
}

// Transform returns the combined coordinate transform.
func (m *Member) Transform() Transform {
	return m.transform
}

// Polygon returns the footprint polygon of the combined sub-regions.
func (m *Member) Polygon() Polygon {
	return m.polygon
}

// Equal reports value equality: same source, same selectors in the same
// order and matching footprint geometry. Used to deduplicate member lists.
func (m *Member) Equal(other *Member) bool {
	if other == nil {
		return false
	}
	if m.sourceID != other.sourceID {
		return false
	}
	if len(m.selectors) != len(other.selectors) {
		return false
	}
	for i, sel := range m.selectors {
		if other.selectors[i] != sel {
			return false
		}
	}
	return m.polygon.Equal(other.polygon)
}

// String returns a short description of the member.
func (m *Member) String() string {
	return fmt.Sprintf("%s%v", m.sourceID, m.selectors)
}

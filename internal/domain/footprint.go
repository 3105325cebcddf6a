package domain

import (
	"context"
	"fmt"
)

// Footprint is a named region on the celestial sphere backed by zero or
// more members. Its polygon is the union of the member polygons. Derived
// footprints (union, intersection) are always fresh values with their own
// polygon copy and member list, so read access is safe to share.
type Footprint struct {
	members []*Member
	polygon Polygon
}

// NewFootprint builds a footprint from a single observation source: one
// member constructed per NewMember, polygon set to a copy of the member's
// polygon. This is the only public constructor taking a source; footprints
// with more than one member can only come out of Union.
func NewFootprint(ctx context.Context, sourceID, regionKind string, deps Collaborators) (*Footprint, error) {
	member, err := NewMember(ctx, sourceID, regionKind, deps)
	if err != nil {
		return nil, err
	}
	f := &Footprint{}
	if err := f.setMembers([]*Member{member}); err != nil {
		return nil, err
	}
	if err := f.SetPolygon(member.Polygon()); err != nil {
		return nil, err
	}
	return f, nil
}

// NewEmptyFootprint returns a footprint with no members and an empty
// polygon, the identity element for Union.
func NewEmptyFootprint(polygons PolygonFactory) *Footprint {
	return &Footprint{polygon: polygons.Empty()}
}

// setMembers replaces the member list, deduplicating by value equality
// while preserving first-seen order. A nil element is a programming error
// and fails with ErrInvalidMemberList.
func (f *Footprint) setMembers(members []*Member) error {
	deduped := make([]*Member, 0, len(members))
	for i, m := range members {
		if m == nil {
			return fmt.Errorf("element %d is nil: %w", i, ErrInvalidMemberList)
		}
		seen := false
		for _, kept := range deduped {
			if kept.Equal(m) {
				seen = true
				break
			}
		}
		if !seen {
			deduped = append(deduped, m)
		}
	}
	f.members = deduped
	return nil
}

// Members returns the member list in first-seen order.
func (f *Footprint) Members() []*Member {
	out := make([]*Member, len(f.members))
	copy(out, f.members)
	return out
}

// MemberCount returns the number of members.
func (f *Footprint) MemberCount() int {
	return len(f.members)
}

// Polygon returns the composite polygon.
func (f *Footprint) Polygon() Polygon {
	return f.polygon
}

// SetPolygon replaces the composite polygon, storing an independent copy
// so later mutation of the argument cannot leak in. A nil polygon fails
// with ErrInvalidPolygon.
func (f *Footprint) SetPolygon(p Polygon) error {
	if p == nil {
		return ErrInvalidPolygon
	}
	f.polygon = p.Clone()
	return nil
}

// Area returns the covered area in square degrees.
func (f *Footprint) Area() float64 {
	return f.polygon.Area()
}

// Intersects reports whether the footprint shares any area with other.
func (f *Footprint) Intersects(other *Footprint) bool {
	return f.polygon.Intersects(other.polygon)
}

// ContainsPoint reports whether the sky position lies inside the footprint.
func (f *Footprint) ContainsPoint(coord SkyCoord) bool {
	return f.polygon.ContainsPoint(coord)
}

// IsEmpty reports whether the footprint covers no area.
func (f *Footprint) IsEmpty() bool {
	return f.polygon.IsEmpty()
}

// RoughID identifies the footprint by its first member's source id, or ""
// for an empty footprint. Mosaic inclusion and exclusion lists carry these.
func (f *Footprint) RoughID() string {
	if len(f.members) == 0 {
		return ""
	}
	return f.members[0].SourceID()
}

// Union returns a new footprint covering both regions. Its member list is
// f's members followed by other's, deduplicated. Neither input is mutated.
func (f *Footprint) Union(other *Footprint) (*Footprint, error) {
	merged, err := f.polygon.Union(other.polygon)
	if err != nil {
		return nil, err
	}
	out := &Footprint{}
	if err := out.setMembers(append(f.Members(), other.members...)); err != nil {
		return nil, err
	}
	if err := out.SetPolygon(merged); err != nil {
		return nil, err
	}
	return out, nil
}

// Intersect returns a new footprint covering the common region. Its member
// list is filtered from both inputs' members to those whose own polygon
// intersects the resulting region; an empty result keeps no members.
// Neither input is mutated.
func (f *Footprint) Intersect(other *Footprint) (*Footprint, error) {
	common, err := f.polygon.Intersection(other.polygon)
	if err != nil {
		return nil, err
	}
	var kept []*Member
	if !common.IsEmpty() {
		for _, m := range append(f.Members(), other.members...) {
			if m.Polygon().Intersects(common) {
				kept = append(kept, m)
			}
		}
	}
	out := &Footprint{}
	if err := out.setMembers(kept); err != nil {
		return nil, err
	}
	if err := out.SetPolygon(common); err != nil {
		return nil, err
	}
	return out, nil
}

// CombinedTransform recomputes a single transform spanning every region
// selector of every member, re-deriving the per-region transforms from the
// sources. Returns nil for an empty footprint. The result is meaningless
// for a footprint produced by Intersect: it reflects the union of the
// contributing regions, not the intersected area.
func (f *Footprint) CombinedTransform(ctx context.Context, source SourceProvider, combiner TransformCombiner) (Transform, error) {
	if len(f.members) == 0 {
		return nil, nil
	}
	var transforms []Transform
	for _, m := range f.members {
		for _, sel := range m.Selectors() {
			t, err := source.TransformForRegion(ctx, m.SourceID(), sel)
			if err != nil {
				return nil, &SourceError{SourceID: m.SourceID(), Op: "transform", Err: err}
			}
			transforms = append(transforms, t)
		}
	}
	if len(transforms) == 1 {
		return transforms[0], nil
	}
	return combiner.Combine(transforms)
}

// FindBestOverlap scans candidates in order and returns the one whose
// intersection with f has the strictly largest positive area, together
// with that area. Ties keep the first candidate found. Returns (nil, 0)
// when no candidate overlaps. A failing intersection counts as zero
// overlap with a warning when opts.Tolerant is set; otherwise the failure
// propagates and aborts the scan.
func (f *Footprint) FindBestOverlap(candidates []*Footprint, opts OverlapOptions) (*Footprint, float64, error) {
	var best *Footprint
	bestArea := 0.0
	for _, cand := range candidates {
		overlap, err := f.polygon.Intersection(cand.polygon)
		if err != nil {
			if !opts.Tolerant {
				return nil, 0, err
			}
			opts.logger().Warn("intersection failed, treating as zero overlap",
				"footprint", f.RoughID(),
				"candidate", cand.RoughID(),
				"error", err)
			continue
		}
		if area := overlap.Area(); area > bestArea {
			best = cand
			bestArea = area
		}
	}
	return best, bestArea, nil
}

// String returns a short description of the footprint.
func (f *Footprint) String() string {
	return fmt.Sprintf("footprint %q (%d members)", f.RoughID(), len(f.members))
}

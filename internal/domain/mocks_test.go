package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// fakePolygon models a spherical region as a set of named patches with
// explicit areas, so set operations give exact, predictable results.
// failOps fails every set operation; failUnion fails only Union, leaving
// intersections intact.
type fakePolygon struct {
	cells     map[string]float64
	failOps   bool
	failUnion bool
}

func newFakePolygon(cells ...string) *fakePolygon {
	p := &fakePolygon{cells: make(map[string]float64)}
	for _, c := range cells {
		p.cells[c] = 1.0
	}
	return p
}

func newFakePolygonAreas(cells map[string]float64) *fakePolygon {
	p := &fakePolygon{cells: make(map[string]float64, len(cells))}
	for c, a := range cells {
		p.cells[c] = a
	}
	return p
}

func (p *fakePolygon) other(op string, o Polygon) (*fakePolygon, error) {
	fo, ok := o.(*fakePolygon)
	if !ok {
		return nil, &GeometryError{Op: op, Err: errors.New("foreign polygon type")}
	}
	if p.failOps || fo.failOps {
		return nil, &GeometryError{Op: op, Err: errors.New("degenerate polygon")}
	}
	return fo, nil
}

func (p *fakePolygon) Union(o Polygon) (Polygon, error) {
	fo, err := p.other("union", o)
	if err != nil {
		return nil, err
	}
	if p.failUnion || fo.failUnion {
		return nil, &GeometryError{Op: "union", Err: errors.New("degenerate union")}
	}
	out := &fakePolygon{cells: make(map[string]float64)}
	for c, a := range p.cells {
		out.cells[c] = a
	}
	for c, a := range fo.cells {
		out.cells[c] = a
	}
	return out, nil
}

func (p *fakePolygon) Intersection(o Polygon) (Polygon, error) {
	fo, err := p.other("intersection", o)
	if err != nil {
		return nil, err
	}
	out := &fakePolygon{cells: make(map[string]float64)}
	for c, a := range p.cells {
		if _, ok := fo.cells[c]; ok {
			out.cells[c] = a
		}
	}
	return out, nil
}

func (p *fakePolygon) Area() float64 {
	sum := 0.0
	for _, a := range p.cells {
		sum += a
	}
	return sum
}

func (p *fakePolygon) Intersects(o Polygon) bool {
	fo, ok := o.(*fakePolygon)
	if !ok {
		return false
	}
	for c := range p.cells {
		if _, ok := fo.cells[c]; ok {
			return true
		}
	}
	return false
}

func (p *fakePolygon) ContainsPoint(coord SkyCoord) bool {
	_, ok := p.cells[coord.String()]
	return ok
}

func (p *fakePolygon) IsEmpty() bool {
	return len(p.cells) == 0
}

func (p *fakePolygon) Clone() Polygon {
	out := &fakePolygon{
		cells:     make(map[string]float64, len(p.cells)),
		failOps:   p.failOps,
		failUnion: p.failUnion,
	}
	for c, a := range p.cells {
		out.cells[c] = a
	}
	return out
}

func (p *fakePolygon) Equal(o Polygon) bool {
	fo, ok := o.(*fakePolygon)
	if !ok || len(p.cells) != len(fo.cells) {
		return false
	}
	for c, a := range p.cells {
		if fo.cells[c] != a {
			return false
		}
	}
	return true
}

func (p *fakePolygon) cellNames() []string {
	names := make([]string, 0, len(p.cells))
	for c := range p.cells {
		names = append(names, c)
	}
	sort.Strings(names)
	return names
}

// fakeTransform carries the patch names its footprint should cover.
type fakeTransform struct {
	center SkyCoord
	cells  []string
}

func (t *fakeTransform) Center() SkyCoord    { return t.center }
func (t *fakeTransform) Corners() []SkyCoord { return []SkyCoord{t.center} }

// fakeFactory derives fake polygons from fake transforms.
type fakeFactory struct{}

func (fakeFactory) FromTransform(t Transform) (Polygon, error) {
	ft, ok := t.(*fakeTransform)
	if !ok {
		return nil, &GeometryError{Op: "polyfill", Err: errors.New("foreign transform type")}
	}
	return newFakePolygon(ft.cells...), nil
}

func (fakeFactory) Empty() Polygon {
	return newFakePolygon()
}

// fakeCombiner merges transform patch lists.
type fakeCombiner struct{}

func (fakeCombiner) Combine(transforms []Transform) (Transform, error) {
	if len(transforms) == 0 {
		return nil, errors.New("no transforms to combine")
	}
	out := &fakeTransform{}
	seen := make(map[string]bool)
	for _, t := range transforms {
		ft, ok := t.(*fakeTransform)
		if !ok {
			return nil, errors.New("foreign transform type")
		}
		out.center = ft.center
		for _, c := range ft.cells {
			if !seen[c] {
				seen[c] = true
				out.cells = append(out.cells, c)
			}
		}
	}
	return out, nil
}

// fakeSource serves canned regions and transforms.
type fakeSource struct {
	regions    map[string][]Region
	transforms map[string]*fakeTransform // key: "sourceID/selector"
	openErr    error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		regions:    make(map[string][]Region),
		transforms: make(map[string]*fakeTransform),
	}
}

func (s *fakeSource) addRegion(sourceID, kind string, selector int, cells ...string) {
	s.regions[sourceID] = append(s.regions[sourceID], Region{Kind: kind, Selector: selector})
	key := fmt.Sprintf("%s/%d", sourceID, selector)
	s.transforms[key] = &fakeTransform{cells: cells}
}

func (s *fakeSource) OpenSource(_ context.Context, sourceID string) ([]Region, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	regions, ok := s.regions[sourceID]
	if !ok {
		return nil, ErrObservationNotFound
	}
	return regions, nil
}

func (s *fakeSource) TransformForRegion(_ context.Context, sourceID string, selector int) (Transform, error) {
	key := fmt.Sprintf("%s/%d", sourceID, selector)
	t, ok := s.transforms[key]
	if !ok {
		return nil, fmt.Errorf("region %d of %s: %w", selector, sourceID, ErrNotFound)
	}
	return t, nil
}

func (s *fakeSource) collaborators() Collaborators {
	return Collaborators{Source: s, Combiner: fakeCombiner{}, Polygons: fakeFactory{}}
}

// footprintFromCells builds a single-member footprint covering the given
// patches, bypassing the source machinery.
func footprintFromCells(t testingT, sourceID string, cells map[string]float64) *Footprint {
	member := &Member{
		sourceID:  sourceID,
		selectors: []int{1},
		polygon:   newFakePolygonAreas(cells),
	}
	f := &Footprint{}
	if err := f.setMembers([]*Member{member}); err != nil {
		t.Fatalf("setMembers: %v", err)
	}
	if err := f.SetPolygon(member.polygon); err != nil {
		t.Fatalf("SetPolygon: %v", err)
	}
	return f
}

type testingT interface {
	Fatalf(format string, args ...any)
}

package h3geom

import (
	"testing"

	"github.com/jobrunner/skyline/internal/domain"
)

// boxTransform outlines a rectangle on the sky.
type boxTransform struct {
	center     domain.SkyCoord
	halfWidth  float64
	halfHeight float64
}

func (t *boxTransform) Center() domain.SkyCoord { return t.center }

func (t *boxTransform) Corners() []domain.SkyCoord {
	return []domain.SkyCoord{
		domain.NewSkyCoord(t.center.RA-t.halfWidth, t.center.Dec-t.halfHeight),
		domain.NewSkyCoord(t.center.RA+t.halfWidth, t.center.Dec-t.halfHeight),
		domain.NewSkyCoord(t.center.RA+t.halfWidth, t.center.Dec+t.halfHeight),
		domain.NewSkyCoord(t.center.RA-t.halfWidth, t.center.Dec+t.halfHeight),
	}
}

func box(t *testing.T, f *Factory, ra, dec, half float64) domain.Polygon {
	t.Helper()
	p, err := f.FromTransform(&boxTransform{
		center:     domain.NewSkyCoord(ra, dec),
		halfWidth:  half,
		halfHeight: half,
	})
	if err != nil {
		t.Fatalf("FromTransform: %v", err)
	}
	return p
}

func mustFactory(t *testing.T) *Factory {
	t.Helper()
	f, err := NewFactory(DefaultResolution)
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	return f
}

func TestNewFactoryValidatesResolution(t *testing.T) {
	tests := []struct {
		name    string
		res     int
		wantErr bool
	}{
		{"minimum", 0, false},
		{"default", DefaultResolution, false},
		{"maximum", 15, false},
		{"negative", -1, true},
		{"too high", 16, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(tt.res)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewFactory(%d) error = %v, wantErr %v", tt.res, err, tt.wantErr)
			}
		})
	}
}

func TestFromTransformCoversRegion(t *testing.T) {
	f := mustFactory(t)
	p := box(t, f, 150, 2, 0.5)

	if p.IsEmpty() {
		t.Fatal("polyfill of a 1-degree box should not be empty")
	}
	if p.Area() <= 0 {
		t.Errorf("Area = %v, want > 0", p.Area())
	}
	if !p.ContainsPoint(domain.NewSkyCoord(150, 2)) {
		t.Error("polygon should contain its center")
	}
	if p.ContainsPoint(domain.NewSkyCoord(330, -2)) {
		t.Error("polygon should not contain the opposite sky")
	}
}

func TestFromTransformStraddlesLongitudeSeam(t *testing.T) {
	f := mustFactory(t)
	// Centered on RA 180, where the lat/lng mapping wraps longitude; a
	// naive polyfill would cover the complementary longitude band.
	p := box(t, f, 180, 10, 0.5)

	if !p.ContainsPoint(domain.NewSkyCoord(180, 10)) {
		t.Error("polygon should contain its center")
	}
	if !p.ContainsPoint(domain.NewSkyCoord(179.8, 10)) {
		t.Error("polygon should cover the eastern side of the seam")
	}
	if !p.ContainsPoint(domain.NewSkyCoord(180.2, 10)) {
		t.Error("polygon should cover the western side of the seam")
	}
	if p.ContainsPoint(domain.NewSkyCoord(0, 10)) {
		t.Error("polygon must not cover the opposite side of the sky")
	}

	// The cover must be the box, not the complementary band: its area
	// stays in the same ballpark as an identical box away from the seam.
	away := box(t, f, 150, 10, 0.5)
	if p.Area() > 4*away.Area() {
		t.Errorf("seam box area = %v, away box area = %v; cover exploded across the seam",
			p.Area(), away.Area())
	}
}

func TestFromTransformTooFewCorners(t *testing.T) {
	f := mustFactory(t)

	_, err := f.FromTransform(&degenerateTransform{})
	if !domain.IsGeometryError(err) {
		t.Errorf("error = %v, want a geometry error", err)
	}
}

type degenerateTransform struct{}

func (degenerateTransform) Center() domain.SkyCoord { return domain.NewSkyCoord(0, 0) }
func (degenerateTransform) Corners() []domain.SkyCoord {
	return []domain.SkyCoord{domain.NewSkyCoord(0, 0), domain.NewSkyCoord(1, 0)}
}

func TestFromTransformTinyFootprintFallsBackToCornerCells(t *testing.T) {
	f := mustFactory(t)
	// Much smaller than a resolution-6 cell.
	p := box(t, f, 150, 2, 0.0001)

	if p.IsEmpty() {
		t.Fatal("sub-cell footprint should still cover at least one cell")
	}
	if !p.ContainsPoint(domain.NewSkyCoord(150, 2)) {
		t.Error("fallback covering should contain the center")
	}
}

func TestUnionAndIntersection(t *testing.T) {
	f := mustFactory(t)
	left := box(t, f, 150, 2, 0.5)
	// Shifted by half a box: overlaps left, extends to the right.
	right := box(t, f, 150.5, 2, 0.5)
	far := box(t, f, 200, -30, 0.5)

	u, err := left.Union(right)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	if u.Area() >= left.Area()+right.Area() {
		t.Errorf("union area %v should be less than the sum %v for overlapping boxes",
			u.Area(), left.Area()+right.Area())
	}
	if u.Area() < left.Area() {
		t.Errorf("union area %v should not be below an operand's area %v", u.Area(), left.Area())
	}

	isect, err := left.Intersection(right)
	if err != nil {
		t.Fatalf("Intersection: %v", err)
	}
	if isect.IsEmpty() {
		t.Error("overlapping boxes should intersect")
	}
	if !left.Intersects(right) {
		t.Error("Intersects should agree with a non-empty intersection")
	}

	empty, err := left.Intersection(far)
	if err != nil {
		t.Fatalf("Intersection: %v", err)
	}
	if !empty.IsEmpty() {
		t.Error("distant boxes should not intersect")
	}
	if left.Intersects(far) {
		t.Error("Intersects should be false for distant boxes")
	}
}

func TestOperandValidation(t *testing.T) {
	f := mustFactory(t)
	p := box(t, f, 150, 2, 0.5)

	coarse, err := NewFactory(3)
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	other := box(t, coarse, 150, 2, 0.5)

	if _, err := p.Union(other); !domain.IsGeometryError(err) {
		t.Errorf("union across resolutions: error = %v, want a geometry error", err)
	}
	if _, err := p.Intersection(other); !domain.IsGeometryError(err) {
		t.Errorf("intersection across resolutions: error = %v, want a geometry error", err)
	}
	if p.Equal(other) {
		t.Error("polygons at different resolutions should not be equal")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := mustFactory(t)
	p := box(t, f, 150, 2, 0.5)

	clone := p.Clone()
	if !clone.Equal(p) {
		t.Fatal("clone should equal its origin")
	}
	// Mutate the original's cell set; the clone must not follow.
	orig := p.(*Polygon)
	for c := range orig.cells {
		delete(orig.cells, c)
		break
	}
	if clone.Equal(p) {
		t.Error("clone changed when the origin was mutated")
	}
}

func TestEmptyPolygon(t *testing.T) {
	f := mustFactory(t)
	empty := f.Empty()

	if !empty.IsEmpty() {
		t.Error("Empty() should be empty")
	}
	if empty.Area() != 0 {
		t.Errorf("empty area = %v, want 0", empty.Area())
	}

	p := box(t, f, 150, 2, 0.5)
	u, err := p.Union(empty)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	if !u.Equal(p) {
		t.Error("union with empty should be the identity")
	}
}

func TestSkyToLatLngWrapsRA(t *testing.T) {
	tests := []struct {
		name    string
		ra      float64
		wantLng float64
	}{
		{"eastern", 150, 150},
		{"wraps west", 330, -30},
		{"meridian", 180, -180},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ll := skyToLatLng(domain.NewSkyCoord(tt.ra, 10))
			if ll.Lng != tt.wantLng {
				t.Errorf("Lng = %v, want %v", ll.Lng, tt.wantLng)
			}
			if ll.Lat != 10 {
				t.Errorf("Lat = %v, want 10", ll.Lat)
			}
		})
	}
}

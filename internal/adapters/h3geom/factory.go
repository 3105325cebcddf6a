package h3geom

import (
	"fmt"
	"math"

	h3 "github.com/uber/h3-go/v4"

	"github.com/jobrunner/skyline/internal/domain"
)

// DefaultResolution is the H3 resolution used when none is configured.
// Resolution 6 cells average ~36 km², fine enough to resolve the overlap
// of typical instrument fields of view.
const DefaultResolution = 6

// Factory derives cell-covering polygons at a fixed H3 resolution.
type Factory struct {
	res int
}

// NewFactory creates a polygon factory. Resolution must be in 0..15.
func NewFactory(res int) (*Factory, error) {
	if res < 0 || res > 15 {
		return nil, &domain.ValidationError{
			Field:      "resolution",
			Value:      res,
			Constraint: "0..15",
			Message:    "H3 resolution out of range",
		}
	}
	return &Factory{res: res}, nil
}

// Resolution returns the fixed H3 resolution of the factory.
func (f *Factory) Resolution() int {
	return f.res
}

// FromTransform covers the transform's footprint outline with H3 cells.
// Degenerate outlines (fewer than 3 corners, polyfill failure) fail with a
// *domain.GeometryError.
func (f *Factory) FromTransform(t domain.Transform) (domain.Polygon, error) {
	corners := t.Corners()
	if len(corners) < 3 {
		return nil, &domain.GeometryError{
			Op:  "polyfill",
			Err: fmt.Errorf("outline has %d corners, need at least 3", len(corners)),
		}
	}

	p := newPolygon(f.res)
	for _, loop := range splitAtSeam(unwrapOutline(corners)) {
		if len(loop) < 3 {
			continue
		}
		cells, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: loop}, f.res)
		if err != nil {
			return nil, &domain.GeometryError{Op: "polyfill", Err: err}
		}
		for _, c := range cells {
			p.cells[c] = struct{}{}
		}
	}
	// A footprint smaller than a single cell polyfills to nothing; fall
	// back to the cells under its corners and center so it still covers
	// something.
	if len(p.cells) == 0 {
		for _, sc := range append(corners, t.Center()) {
			cell, err := h3.LatLngToCell(skyToLatLng(sc), f.res)
			if err != nil {
				return nil, &domain.GeometryError{Op: "polyfill", Err: err}
			}
			p.cells[cell] = struct{}{}
		}
	}
	return p, nil
}

// Empty returns the empty polygon at the factory's resolution.
func (f *Factory) Empty() domain.Polygon {
	return newPolygon(f.res)
}

// unwrapOutline maps the outline onto H3 lat/lng with longitudes unwrapped
// into one continuous run: each vertex is shifted by whole turns so it stays
// within half a turn of its predecessor. A duplicated closing vertex is
// dropped first.
func unwrapOutline(corners []domain.SkyCoord) h3.GeoLoop {
	loop := make(h3.GeoLoop, 0, len(corners))
	for _, c := range corners {
		loop = append(loop, skyToLatLng(c))
	}
	if len(loop) >= 2 && loop[0] == loop[len(loop)-1] {
		loop = loop[:len(loop)-1]
	}
	for i := 1; i < len(loop); i++ {
		for loop[i].Lng-loop[i-1].Lng > 180 {
			loop[i].Lng -= 360
		}
		for loop[i].Lng-loop[i-1].Lng < -180 {
			loop[i].Lng += 360
		}
	}
	return loop
}

// splitAtSeam splits an unwrapped loop that reaches across the ±180°
// longitude seam into two loops, one per side, with the far side shifted
// back into range. Polyfilling a single seam-crossing loop would cover the
// complementary longitude band instead of the footprint.
func splitAtSeam(loop h3.GeoLoop) []h3.GeoLoop {
	if len(loop) == 0 {
		return nil
	}
	minLng, maxLng := loop[0].Lng, loop[0].Lng
	for _, v := range loop[1:] {
		minLng = math.Min(minLng, v.Lng)
		maxLng = math.Max(maxLng, v.Lng)
	}
	switch {
	case maxLng > 180:
		return []h3.GeoLoop{
			clipLoopLng(loop, 180, true),
			shiftLoopLng(clipLoopLng(loop, 180, false), -360),
		}
	case minLng < -180:
		return []h3.GeoLoop{
			clipLoopLng(loop, -180, false),
			shiftLoopLng(clipLoopLng(loop, -180, true), 360),
		}
	default:
		return []h3.GeoLoop{loop}
	}
}

// clipLoopLng clips the loop against the meridian lng = bound, keeping the
// vertices on the requested side. Latitude at a crossing edge is
// interpolated linearly, which is accurate at field-of-view scales.
func clipLoopLng(loop h3.GeoLoop, bound float64, keepBelow bool) h3.GeoLoop {
	inside := func(v h3.LatLng) bool {
		if keepBelow {
			return v.Lng <= bound
		}
		return v.Lng >= bound
	}
	cross := func(a, b h3.LatLng) h3.LatLng {
		t := (bound - a.Lng) / (b.Lng - a.Lng)
		return h3.LatLng{Lat: a.Lat + t*(b.Lat-a.Lat), Lng: bound}
	}

	var out h3.GeoLoop
	for i, cur := range loop {
		prev := loop[(i+len(loop)-1)%len(loop)]
		switch {
		case inside(cur) && inside(prev):
			out = append(out, cur)
		case inside(cur):
			out = append(out, cross(prev, cur), cur)
		case inside(prev):
			out = append(out, cross(prev, cur))
		}
	}
	return out
}

func shiftLoopLng(loop h3.GeoLoop, delta float64) h3.GeoLoop {
	for i := range loop {
		loop[i].Lng += delta
	}
	return loop
}

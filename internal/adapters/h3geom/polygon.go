// Package h3geom implements the geometry port with Uber H3 geodesic cells.
//
// A spherical region is represented as the set of H3 cells covering it at a
// fixed resolution. Union and intersection become exact set operations, the
// area is the summed cell area and point containment is a single cell
// lookup, so all composition operations are closed on the sphere with no
// degenerate-polygon edge cases beyond the initial polyfill.
package h3geom

import (
	"fmt"
	"math"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/jobrunner/skyline/internal/domain"
)

// Mean Earth radius in km, used to convert cell areas to square degrees.
const earthRadiusKm = 6371.0088

// Polygon is a region on the sphere as a set of H3 cells at one resolution.
type Polygon struct {
	res   int
	cells map[h3.Cell]struct{}
}

func newPolygon(res int) *Polygon {
	return &Polygon{res: res, cells: make(map[h3.Cell]struct{})}
}

// Resolution returns the H3 resolution of the cell covering.
func (p *Polygon) Resolution() int {
	return p.res
}

// CellCount returns the number of covering cells.
func (p *Polygon) CellCount() int {
	return len(p.cells)
}

// Cells returns the covering cell ids, sorted for determinism.
func (p *Polygon) Cells() []string {
	out := make([]string, 0, len(p.cells))
	for c := range p.cells {
		out = append(out, c.String())
	}
	sort.Strings(out)
	return out
}

func (p *Polygon) operand(op string, o domain.Polygon) (*Polygon, error) {
	hp, ok := o.(*Polygon)
	if !ok {
		return nil, &domain.GeometryError{Op: op, Err: fmt.Errorf("foreign polygon type %T", o)}
	}
	if hp.res != p.res {
		return nil, &domain.GeometryError{Op: op, Err: fmt.Errorf("resolution mismatch: %d vs %d", p.res, hp.res)}
	}
	return hp, nil
}

// Union implements domain.Polygon.
func (p *Polygon) Union(o domain.Polygon) (domain.Polygon, error) {
	hp, err := p.operand("union", o)
	if err != nil {
		return nil, err
	}
	out := newPolygon(p.res)
	for c := range p.cells {
		out.cells[c] = struct{}{}
	}
	for c := range hp.cells {
		out.cells[c] = struct{}{}
	}
	return out, nil
}

// Intersection implements domain.Polygon.
func (p *Polygon) Intersection(o domain.Polygon) (domain.Polygon, error) {
	hp, err := p.operand("intersection", o)
	if err != nil {
		return nil, err
	}
	small, large := p, hp
	if len(hp.cells) < len(p.cells) {
		small, large = hp, p
	}
	out := newPolygon(p.res)
	for c := range small.cells {
		if _, ok := large.cells[c]; ok {
			out.cells[c] = struct{}{}
		}
	}
	return out, nil
}

// Area implements domain.Polygon, returning square degrees.
func (p *Polygon) Area() float64 {
	sumKm2 := 0.0
	for c := range p.cells {
		a, err := h3.CellAreaKm2(c)
		if err != nil {
			continue
		}
		sumKm2 += a
	}
	deg := 180 / math.Pi
	return sumKm2 / (earthRadiusKm * earthRadiusKm) * deg * deg
}

// Intersects implements domain.Polygon.
func (p *Polygon) Intersects(o domain.Polygon) bool {
	hp, ok := o.(*Polygon)
	if !ok || hp.res != p.res {
		return false
	}
	small, large := p, hp
	if len(hp.cells) < len(p.cells) {
		small, large = hp, p
	}
	for c := range small.cells {
		if _, ok := large.cells[c]; ok {
			return true
		}
	}
	return false
}

// ContainsPoint implements domain.Polygon.
func (p *Polygon) ContainsPoint(coord domain.SkyCoord) bool {
	cell, err := h3.LatLngToCell(skyToLatLng(coord), p.res)
	if err != nil {
		return false
	}
	_, ok := p.cells[cell]
	return ok
}

// IsEmpty implements domain.Polygon.
func (p *Polygon) IsEmpty() bool {
	return len(p.cells) == 0
}

// Clone implements domain.Polygon.
func (p *Polygon) Clone() domain.Polygon {
	out := newPolygon(p.res)
	for c := range p.cells {
		out.cells[c] = struct{}{}
	}
	return out
}

// Equal implements domain.Polygon.
func (p *Polygon) Equal(o domain.Polygon) bool {
	hp, ok := o.(*Polygon)
	if !ok || hp.res != p.res || len(hp.cells) != len(p.cells) {
		return false
	}
	for c := range p.cells {
		if _, ok := hp.cells[c]; !ok {
			return false
		}
	}
	return true
}

// skyToLatLng maps an equatorial sky position onto H3's lat/lng sphere:
// declination is latitude, right ascension is longitude shifted into
// [-180, 180).
func skyToLatLng(coord domain.SkyCoord) h3.LatLng {
	lng := coord.RA
	if lng >= 180 {
		lng -= 360
	}
	return h3.LatLng{Lat: coord.Dec, Lng: lng}
}

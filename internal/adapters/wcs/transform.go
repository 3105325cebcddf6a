// Package wcs implements the transform port with tangent-plane (gnomonic)
// world coordinate systems: a reference sky position, a reference pixel and
// a CD matrix giving the plane scale and orientation in degrees per pixel.
package wcs

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jobrunner/skyline/internal/domain"
)

// Transform is a tangent-plane projection over a rectangular pixel grid.
type Transform struct {
	crval domain.SkyCoord // Sky position of the reference pixel
	crpix [2]float64      // Reference pixel, FITS 1-based
	cd    *mat.Dense      // 2x2 pixel-to-plane matrix, degrees per pixel
	inv   *mat.Dense      // Cached inverse of cd
	naxis [2]int          // Pixel grid size
}

// New creates a tangent-plane transform. The CD matrix must be invertible
// and the pixel grid non-empty.
func New(crval domain.SkyCoord, crpix [2]float64, cd [2][2]float64, naxis [2]int) (*Transform, error) {
	if err := crval.Validate(); err != nil {
		return nil, err
	}
	if naxis[0] <= 0 || naxis[1] <= 0 {
		return nil, &domain.ValidationError{
			Field:      "naxis",
			Value:      naxis,
			Constraint: "> 0",
			Message:    "pixel grid must be non-empty",
		}
	}
	m := mat.NewDense(2, 2, []float64{cd[0][0], cd[0][1], cd[1][0], cd[1][1]})
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil, &domain.ValidationError{
			Field:      "cd",
			Value:      cd,
			Constraint: "invertible",
			Message:    "CD matrix is singular",
		}
	}
	return &Transform{crval: crval, crpix: crpix, cd: m, inv: &inv, naxis: naxis}, nil
}

// Center implements domain.Transform.
func (t *Transform) Center() domain.SkyCoord {
	return t.crval
}

// Corners implements domain.Transform, projecting the four pixel-grid
// corners onto the sky in traversal order.
func (t *Transform) Corners() []domain.SkyCoord {
	nx, ny := float64(t.naxis[0]), float64(t.naxis[1])
	return []domain.SkyCoord{
		t.PixelToSky(0.5, 0.5),
		t.PixelToSky(nx+0.5, 0.5),
		t.PixelToSky(nx+0.5, ny+0.5),
		t.PixelToSky(0.5, ny+0.5),
	}
}

// Naxis returns the pixel grid size.
func (t *Transform) Naxis() [2]int {
	return t.naxis
}

// Scale returns the mean plate scale in degrees per pixel.
func (t *Transform) Scale() float64 {
	return math.Sqrt(math.Abs(mat.Det(t.cd)))
}

// PixelToSky projects a pixel position onto the sky.
func (t *Transform) PixelToSky(x, y float64) domain.SkyCoord {
	dx := x - t.crpix[0]
	dy := y - t.crpix[1]
	xi := (t.cd.At(0, 0)*dx + t.cd.At(0, 1)*dy) * math.Pi / 180
	eta := (t.cd.At(1, 0)*dx + t.cd.At(1, 1)*dy) * math.Pi / 180

	c := t.crval.UnitVector()
	e, n := tangentBasis(t.crval)
	v := [3]float64{
		c[0] + xi*e[0] + eta*n[0],
		c[1] + xi*e[1] + eta*n[1],
		c[2] + xi*e[2] + eta*n[2],
	}
	return domain.FromUnitVector(v)
}

// SkyToPixel projects a sky position back onto the pixel grid. Positions
// on the far hemisphere of the tangent point cannot be projected.
func (t *Transform) SkyToPixel(coord domain.SkyCoord) (float64, float64, error) {
	xi, eta, err := t.planeCoords(coord)
	if err != nil {
		return 0, 0, err
	}
	x := t.crpix[0] + t.inv.At(0, 0)*xi + t.inv.At(0, 1)*eta
	y := t.crpix[1] + t.inv.At(1, 0)*xi + t.inv.At(1, 1)*eta
	return x, y, nil
}

// planeCoords returns the tangent-plane coordinates of a sky position in
// degrees.
func (t *Transform) planeCoords(coord domain.SkyCoord) (xi, eta float64, err error) {
	c := t.crval.UnitVector()
	v := coord.UnitVector()
	dot := c[0]*v[0] + c[1]*v[1] + c[2]*v[2]
	if dot <= 0 {
		return 0, 0, &domain.GeometryError{
			Op:  "projection",
			Err: fmt.Errorf("position %v is behind the tangent plane at %v", coord, t.crval),
		}
	}
	e, n := tangentBasis(t.crval)
	xi = (v[0]*e[0] + v[1]*e[1] + v[2]*e[2]) / dot * 180 / math.Pi
	eta = (v[0]*n[0] + v[1]*n[1] + v[2]*n[2]) / dot * 180 / math.Pi
	return xi, eta, nil
}

// tangentBasis returns the unit vectors pointing east and north in the
// tangent plane at the given sky position.
func tangentBasis(c domain.SkyCoord) (east, north [3]float64) {
	ra := c.RA * math.Pi / 180
	dec := c.Dec * math.Pi / 180
	east = [3]float64{-math.Sin(ra), math.Cos(ra), 0}
	north = [3]float64{
		-math.Sin(dec) * math.Cos(ra),
		-math.Sin(dec) * math.Sin(ra),
		math.Cos(dec),
	}
	return east, north
}

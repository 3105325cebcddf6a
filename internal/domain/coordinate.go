// Package domain contains the core business entities and value objects.
package domain

import (
	"fmt"
	"math"
)

// SkyCoord represents an equatorial sky position in degrees (ICRS).
type SkyCoord struct {
	RA  float64 // Right ascension, [0, 360)
	Dec float64 // Declination, [-90, 90]
}

// NewSkyCoord creates a sky coordinate with the right ascension normalized
// into [0, 360).
func NewSkyCoord(ra, dec float64) SkyCoord {
	return SkyCoord{RA: normalizeRA(ra), Dec: dec}
}

// Validate checks that the coordinate lies on the celestial sphere.
func (c SkyCoord) Validate() error {
	if math.IsNaN(c.RA) || c.RA < 0 || c.RA >= 360 {
		return &ValidationError{
			Field:      "ra",
			Value:      c.RA,
			Constraint: "[0, 360)",
			Message:    "right ascension must be between 0 and 360",
		}
	}
	if math.IsNaN(c.Dec) || c.Dec < -90 || c.Dec > 90 {
		return &ValidationError{
			Field:      "dec",
			Value:      c.Dec,
			Constraint: "[-90, 90]",
			Message:    "declination must be between -90 and 90",
		}
	}
	return nil
}

// UnitVector returns the Cartesian unit vector for the coordinate.
func (c SkyCoord) UnitVector() [3]float64 {
	ra := c.RA * math.Pi / 180
	dec := c.Dec * math.Pi / 180
	return [3]float64{
		math.Cos(dec) * math.Cos(ra),
		math.Cos(dec) * math.Sin(ra),
		math.Sin(dec),
	}
}

// FromUnitVector converts a Cartesian direction back to a sky coordinate.
// The vector does not need to be normalized.
func FromUnitVector(v [3]float64) SkyCoord {
	ra := math.Atan2(v[1], v[0]) * 180 / math.Pi
	norm := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	dec := 0.0
	if norm > 0 {
		dec = math.Asin(v[2]/norm) * 180 / math.Pi
	}
	return SkyCoord{RA: normalizeRA(ra), Dec: dec}
}

// AngularSeparation returns the great-circle distance to another
// coordinate, in degrees.
func (c SkyCoord) AngularSeparation(other SkyCoord) float64 {
	a := c.UnitVector()
	b := other.UnitVector()
	dot := a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
	dot = math.Max(-1, math.Min(1, dot))
	return math.Acos(dot) * 180 / math.Pi
}

// String returns a string representation of the coordinate.
func (c SkyCoord) String() string {
	return fmt.Sprintf("(%.6f, %+.6f)", c.RA, c.Dec)
}

func normalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	return ra
}

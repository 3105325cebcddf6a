package domain

import (
	"math"
	"testing"
)

func TestNewSkyCoordNormalizesRA(t *testing.T) {
	tests := []struct {
		name   string
		ra     float64
		wantRA float64
	}{
		{"in range", 150.0, 150.0},
		{"zero", 0.0, 0.0},
		{"wraps high", 370.0, 10.0},
		{"wraps negative", -10.0, 350.0},
		{"full turn", 360.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSkyCoord(tt.ra, 0)
			if math.Abs(c.RA-tt.wantRA) > 1e-12 {
				t.Errorf("RA = %v, want %v", c.RA, tt.wantRA)
			}
		})
	}
}

func TestSkyCoordValidate(t *testing.T) {
	tests := []struct {
		name    string
		coord   SkyCoord
		wantErr bool
	}{
		{"valid", SkyCoord{RA: 150, Dec: 2}, false},
		{"north pole", SkyCoord{RA: 0, Dec: 90}, false},
		{"south pole", SkyCoord{RA: 0, Dec: -90}, false},
		{"ra too high", SkyCoord{RA: 360, Dec: 0}, true},
		{"ra negative", SkyCoord{RA: -1, Dec: 0}, true},
		{"dec too high", SkyCoord{RA: 0, Dec: 90.1}, true},
		{"dec too low", SkyCoord{RA: 0, Dec: -90.1}, true},
		{"nan ra", SkyCoord{RA: math.NaN(), Dec: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coord.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnitVectorRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		coord SkyCoord
	}{
		{"equator", NewSkyCoord(150, 0)},
		{"mid latitude", NewSkyCoord(10, 45)},
		{"southern", NewSkyCoord(300, -60)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			back := FromUnitVector(tt.coord.UnitVector())
			if math.Abs(back.RA-tt.coord.RA) > 1e-9 || math.Abs(back.Dec-tt.coord.Dec) > 1e-9 {
				t.Errorf("round trip = %v, want %v", back, tt.coord)
			}
		})
	}
}

func TestAngularSeparation(t *testing.T) {
	tests := []struct {
		name string
		a, b SkyCoord
		want float64
	}{
		{"coincident", NewSkyCoord(150, 2), NewSkyCoord(150, 2), 0},
		{"one degree dec", NewSkyCoord(0, 0), NewSkyCoord(0, 1), 1},
		{"pole to pole", NewSkyCoord(0, 90), NewSkyCoord(180, -90), 180},
		{"quarter sphere", NewSkyCoord(0, 0), NewSkyCoord(90, 0), 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.AngularSeparation(tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AngularSeparation = %v, want %v", got, tt.want)
			}
		})
	}
}

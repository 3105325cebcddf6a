package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorWrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"observation not found", ErrObservationNotFound, ErrNotFound},
		{"mosaic run not found", ErrMosaicRunNotFound, ErrNotFound},
		{"invalid member list", ErrInvalidMemberList, ErrInvalidInput},
		{"invalid polygon", ErrInvalidPolygon, ErrInvalidInput},
		{"not ready", ErrNotReady, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%v should wrap %v", tt.err, tt.sentinel)
			}
		})
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	err := &ValidationError{Field: "ra", Value: 400.0, Constraint: "[0, 360)", Message: "out of range"}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should wrap ErrInvalidInput")
	}
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}
}

func TestNoMatchingRegionErrorUnwrap(t *testing.T) {
	err := &NoMatchingRegionError{SourceID: "img1", Kind: "SCI"}
	if !errors.Is(err, ErrNoMatchingRegion) {
		t.Error("NoMatchingRegionError should wrap ErrNoMatchingRegion")
	}
	wrapped := fmt.Errorf("building footprint: %w", err)
	var nmr *NoMatchingRegionError
	if !errors.As(wrapped, &nmr) {
		t.Error("errors.As should find NoMatchingRegionError through wrapping")
	}
}

func TestGeometryErrorDetection(t *testing.T) {
	inner := errors.New("self-intersecting polygon")
	gerr := &GeometryError{Op: "union", Err: inner}

	if !IsGeometryError(gerr) {
		t.Error("IsGeometryError should detect a direct GeometryError")
	}
	if !IsGeometryError(fmt.Errorf("assembling: %w", gerr)) {
		t.Error("IsGeometryError should detect a wrapped GeometryError")
	}
	if IsGeometryError(inner) {
		t.Error("IsGeometryError should not detect a plain error")
	}
	if !errors.Is(gerr, inner) {
		t.Error("GeometryError should unwrap to its cause")
	}
}

func TestSourceErrorUnwrap(t *testing.T) {
	err := &SourceError{SourceID: "img1", Op: "open", Err: ErrObservationNotFound}
	if !errors.Is(err, ErrNotFound) {
		t.Error("SourceError should unwrap to the underlying sentinel")
	}
}

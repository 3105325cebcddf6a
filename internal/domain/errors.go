package domain

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrUnavailable  = errors.New("service unavailable")
)

// Specific errors.
var (
	ErrObservationNotFound = fmt.Errorf("observation: %w", ErrNotFound)
	ErrMosaicRunNotFound   = fmt.Errorf("mosaic run: %w", ErrNotFound)
	ErrNoMatchingRegion    = errors.New("no matching regions")
	ErrInvalidMemberList   = fmt.Errorf("member list: %w", ErrInvalidInput)
	ErrInvalidPolygon      = fmt.Errorf("polygon: %w", ErrInvalidInput)
	ErrInvalidCoordinate   = fmt.Errorf("coordinate: %w", ErrInvalidInput)
	ErrNotReady            = fmt.Errorf("service not ready: %w", ErrUnavailable)
	ErrStorageUnavailable  = fmt.Errorf("storage: %w", ErrUnavailable)
)

// ValidationError represents a detailed validation error.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// Unwrap returns the underlying error type.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NoMatchingRegionError is returned when member construction finds no
// regions of the requested kind in a source. Always fatal to that member.
type NoMatchingRegionError struct {
	SourceID string // Source that was searched
	Kind     string // Region kind that was requested
}

// Error implements the error interface.
func (e *NoMatchingRegionError) Error() string {
	return fmt.Sprintf("source %s has no regions of kind %s", e.SourceID, e.Kind)
}

// Unwrap returns the underlying error type.
func (e *NoMatchingRegionError) Unwrap() error {
	return ErrNoMatchingRegion
}

// GeometryError reports a failed polygon operation on degenerate or
// incompatible geometry. It is the only recoverable error class: overlap
// scans and mosaic growing may skip the offending operand when running
// tolerantly.
type GeometryError struct {
	Op  string // Operation that failed (union, intersection, polyfill)
	Err error  // Underlying error
}

// Error implements the error interface.
func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *GeometryError) Unwrap() error {
	return e.Err
}

// IsGeometryError reports whether err is (or wraps) a GeometryError.
func IsGeometryError(err error) bool {
	var gerr *GeometryError
	return errors.As(err, &gerr)
}

// SourceError represents an error while reading an observation source.
type SourceError struct {
	SourceID string // Source identifier
	Op       string // Operation that failed (open, transform, etc.)
	Err      error  // Underlying error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source error during %s for %s: %v", e.Op, e.SourceID, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// CatalogError represents an error during mosaic catalog operations.
type CatalogError struct {
	Operation string // Operation that failed (save, list, get)
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidInput
}

// Package errors provides custom error types for the player registry.
// These errors enable programmatic checking of guard rejections and
// carry enough structured detail for operators to act without reading
// raw logs.
package errors

import (
	"errors"
	"fmt"

	"github.com/agentstation/playerregistry/pkg/registry"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

// Common sentinel errors for the registry system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTemporalOrdering indicates a run regressed its processor's prior progress
	ErrTemporalOrdering = errors.New("temporal ordering violation")

	// ErrPrecedence indicates a roster run tried to process a date gamebook has superseded
	ErrPrecedence = errors.New("gamebook precedence violation")

	// ErrStaleSource indicates upstream canonical data is older than its freshness threshold
	ErrStaleSource = errors.New("stale source data")

	// ErrIdentityResolution indicates an identity could not be resolved normally
	ErrIdentityResolution = errors.New("identity resolution failure")

	// ErrConfirmationRequired indicates a destructive strategy was requested without confirmation
	ErrConfirmationRequired = errors.New("confirmation required")
)

// TemporalOrderingError reports a candidate run date earlier than the
// processor's demonstrated progress for a season.
type TemporalOrderingError struct {
	Processor     registry.SourceKind
	Season        int
	CandidateDate registry.Date
	MaxSeenDate   registry.Date
}

// Error implements the error interface
func (e *TemporalOrderingError) Error() string {
	return fmt.Sprintf("temporal ordering violation: %s season %d candidate date %s precedes prior progress %s (re-run with backfill to insert historical data)",
		e.Processor, e.Season, e.CandidateDate, e.MaxSeenDate)
}

// Is implements errors.Is support
func (e *TemporalOrderingError) Is(target error) bool {
	return target == ErrTemporalOrdering
}

// PrecedenceError reports a roster run attempting a data date at or before
// gamebook's latest successfully processed date for the season.
type PrecedenceError struct {
	Season        int
	CandidateDate registry.Date
	GamebookDate  registry.Date
}

// Error implements the error interface
func (e *PrecedenceError) Error() string {
	return fmt.Sprintf("gamebook precedence violation: season %d roster date %s is not after gamebook progress %s",
		e.Season, e.CandidateDate, e.GamebookDate)
}

// Is implements errors.Is support
func (e *PrecedenceError) Is(target error) bool {
	return target == ErrPrecedence
}

// StaleSourceDataError reports an upstream source older than its freshness
// threshold. It degrades validation rather than failing the run.
type StaleSourceDataError struct {
	Source        registry.SourceKind
	DataDate      registry.Date
	ThresholdDays int
}

// Error implements the error interface
func (e *StaleSourceDataError) Error() string {
	return fmt.Sprintf("stale source data: %s last updated %s, older than %d day threshold",
		e.Source, e.DataDate, e.ThresholdDays)
}

// Is implements errors.Is support
func (e *StaleSourceDataError) Is(target error) bool {
	return target == ErrStaleSource
}

// IdentityResolutionError reports a lookup that fell back to a placeholder
// identity. The batch continues; the error is logged per lookup.
type IdentityResolutionError struct {
	Lookup        string
	PlaceholderID string
	Err           error
}

// Error implements the error interface
func (e *IdentityResolutionError) Error() string {
	return fmt.Sprintf("identity resolution failed for %q, using placeholder %s: %v", e.Lookup, e.PlaceholderID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IdentityResolutionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *IdentityResolutionError) Is(target error) bool {
	return target == ErrIdentityResolution
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error in %s: %s: %v", e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("config error in %s: %s", e.Component, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// WrapResource wraps an error with resource operation context.
// Returns nil if err is nil.
func WrapResource(err error, operation, resource, id string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %s %s: %w", operation, resource, id, err)
}

/*
errors.go - Error types for the quota engine

PURPOSE:
  The engine distinguishes two failure classes:

  1. InvalidInput - the call itself is malformed (missing period, nil
     catalog, schedules from a different period entirely). These are hard
     errors returned to the caller.
  2. Domain violations - business-rule failures (insufficient rest,
     unknown shift code). These are DATA: they surface as entries in
     PeriodBalance.ValidationErrors, never as Go errors, so one bad record
     cannot prevent reporting the rest of the period.

USAGE:
  if errors.Is(err, engine.ErrInvalidInput) { ... }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is the root of all precondition failures.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingPeriod is returned when a balance is requested without a period.
	ErrMissingPeriod = errors.New("missing period")

	// ErrMissingCatalog is returned when the shift-type catalog is nil.
	ErrMissingCatalog = errors.New("missing shift type catalog")

	// ErrPeriodMismatch is returned when every supplied schedule falls
	// outside the period's date range. A partial mismatch is handled by
	// defensive filtering instead.
	ErrPeriodMismatch = errors.New("schedules do not overlap period")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InputError describes a malformed argument.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// IsInvalidInput reports whether err is a precondition failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingPeriod) ||
		errors.Is(err, ErrMissingCatalog) ||
		errors.Is(err, ErrPeriodMismatch)
}

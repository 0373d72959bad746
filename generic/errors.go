/*
errors.go - Centralized error types for the analytics engines

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engines distinguish two failure classes and only one of them is
  an error at all:

  1. Record-level data defects (missing dates, missing weight, empty
     history, absent company name): handled by exclusion or defaulting,
     never raised. A single malformed work item must not abort the curve
     for the rest of the set.
  2. Caller-contract violations (zero week start, end-before-start
     window, month out of range): fail fast. These indicate a bug in the
     caller, not bad site data.

USAGE:
  The API layer maps these with errors.Is:

    if generic.IsClientError(err) {
        // 400
    }

SEE ALSO:
  - date.go: Period.Validate returns ErrInvalidPeriod
  - api: translates these to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a caller supplies a window whose
	// end precedes its start or whose boundaries are unset.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidDate is returned when a caller supplies a zero or
	// unparseable date where a concrete calendar day is required.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidMonth is returned when a month selector is out of range.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("record not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidDateError reports an unparseable date input.
type InvalidDateError struct {
	Input string
	Cause error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Input, e.Cause)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// NotFoundError reports a missing record by kind and identifier.
type NotFoundError struct {
	Kind string // e.g. "work item"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidMonth)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

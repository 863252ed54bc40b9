/*
errors.go - Centralized error types for the timesheet

PURPOSE:
  All error types in one place so the store, the service layer, and both
  front ends (HTTP and CLI) classify failures the same way.

ERROR CATEGORIES:
  1. Storage errors - I/O or schema failure on the embedded database
  2. Validation errors - Bad user input (empty field, bad ID, reversed range)
  3. Parse errors - Malformed clock times (never fatal, hours default to 0)

USAGE:
  if errors.Is(err, payroll.ErrValidation) {
      // 400, show message to the user
  }

SEE ALSO:
  - store/sqlite/sqlite.go: Returns StorageError
  - timesheet/service.go: Returns ValidationError
  - hours.go: Returns ParseError
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStorage is returned when the embedded database fails.
	ErrStorage = errors.New("storage error")

	// ErrValidation is returned when user input is rejected.
	ErrValidation = errors.New("validation error")

	// ErrParse is returned when a clock time cannot be parsed.
	ErrParse = errors.New("parse error")

	// ErrNotFound is returned when a referenced shift doesn't exist.
	ErrNotFound = errors.New("shift not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StorageError wraps a database failure with the operation that caused it.
type StorageError struct {
	Op  string // e.g. "create", "list", "migrate"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ParseError reports a malformed clock time.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrParse)
}

// IsNotFound returns true if the error indicates a missing shift.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place for consistency and discoverability.
  Stores and the HTTP layer wrap these errors with additional context.

ERROR CATEGORIES:
  1. Lookup errors - Calendar or entry does not exist
  2. Input errors - Malformed times, dates, shift tags, names, documents

The accounting engine itself never returns an error. Only repository
reads and boundary parsing can fail.

USAGE:
    if errors.Is(err, generic.ErrCalendarNotFound) {
        // 404
    }
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
	// ErrCalendarNotFound is returned when a referenced calendar doesn't exist.
	ErrCalendarNotFound = errors.New("calendar not found")

	// ErrEntryNotFound is returned when no entry exists for the requested day.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrNoActiveCalendar is returned when an operation needs an active calendar and none is set.
	ErrNoActiveCalendar = errors.New("no active calendar")

	// ErrInvalidTime is returned when a clock value is not "HH:MM".
	ErrInvalidTime = errors.New("invalid time, expected HH:MM")

	// ErrInvalidDate is returned when a date is neither YYYY-MM-DD nor RFC 3339.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidMonth is returned when a month is outside 1-12 or malformed.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidShiftType is returned for an unknown shift tag.
	ErrInvalidShiftType = errors.New("invalid shift type")

	// ErrEmptyName is returned when a calendar name is blank.
	ErrEmptyName = errors.New("calendar name must not be empty")

	// ErrInvalidDocument is returned when an import document cannot be decoded.
	ErrInvalidDocument = errors.New("invalid calendar document")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ShiftError points at the shift of a day that failed validation.
type ShiftError struct {
	Date  Day
	Index int
	Err   error
}

func (e *ShiftError) Error() string {
	return fmt.Sprintf("shift %d on %s: %v", e.Index, e.Date, e.Err)
}

func (e *ShiftError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidShiftType) ||
		errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrInvalidDocument)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCalendarNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrNoActiveCalendar)
}

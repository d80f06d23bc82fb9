/*
errors.go - Centralized error types for the timekeeping core

PURPOSE:
  All error types in one place. The API layer maps these onto HTTP status
  codes; the engine itself never swallows a failure, the first failing
  check short-circuits the whole operation.

ERROR CATEGORIES:
  1. Not-found errors  - missing reference data (employee, shift, assignment)
  2. Rejection errors  - business-rule rejections, surfaced verbatim
  3. Storage errors    - constraint and concurrency conflicts

USAGE:
  if errors.Is(err, timekeeping.ErrRestDay) { ... }

  var rej *timekeeping.RejectionError
  if errors.As(err, &rej) { show(rej.Reason) }

SEE ALSO:
  - engine.go: produces rejection errors
  - store.go:  storage contracts referencing the conflict errors
*/
package timekeeping

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when the referenced employee does not exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrShiftNotFound is returned when a referenced shift is missing from the catalog.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrAssignmentNotFound is returned when no shift assignment is in force
	// for the requested day. This is a hard stop, not a default.
	ErrAssignmentNotFound = errors.New("no shift assignment in force")

	// ErrTerminated is returned when the employee is terminated as of the day.
	ErrTerminated = errors.New("employee is terminated")

	// ErrOnLeave is returned when an approved leave covers the day.
	ErrOnLeave = errors.New("employee is on approved leave")

	// ErrRestDay is returned when the day is a rest day under the assignment.
	ErrRestDay = errors.New("rest day")

	// ErrAlreadyClockedIn is returned on a second clock-in for the same day.
	ErrAlreadyClockedIn = errors.New("already clocked in")

	// ErrAlreadyClockedOut is returned on a second clock-out for the same record.
	ErrAlreadyClockedOut = errors.New("already clocked out")

	// ErrNotClockedIn is returned when clocking out with no prior clock-in.
	ErrNotClockedIn = errors.New("must clock in before clocking out")

	// ErrMarkedAbsent is returned when clocking in against a day the
	// end-of-day batch already closed as absent. Absent is terminal;
	// corrections go through HR, not the engine.
	ErrMarkedAbsent = errors.New("day already closed as absent")

	// ErrDuplicateRecord is returned by ledger stores when a record for
	// (employee, day) already exists. Losers of a clock-in race observe this.
	ErrDuplicateRecord = errors.New("attendance record already exists")

	// ErrOverlappingAssignment is returned when saving an assignment whose
	// date range overlaps an existing one for the same employee.
	ErrOverlappingAssignment = errors.New("overlapping shift assignment")

	// ErrConcurrentModification is returned when optimistic locking detects
	// a stale write. Unlike business rejections, this is retryable.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RejectionError is a business-rule rejection. Reason is human-readable and
// surfaced verbatim to the end user.
type RejectionError struct {
	EmployeeID EmployeeID
	Day        Day
	Reason     string
	cause      error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s (employee %s, %s)", e.Reason, e.EmployeeID, e.Day)
}

func (e *RejectionError) Unwrap() error { return e.cause }

func reject(employeeID EmployeeID, day Day, reason string, cause error) *RejectionError {
	return &RejectionError{EmployeeID: employeeID, Day: day, Reason: reason, cause: cause}
}

// NotFoundError wraps a missing-reference failure with what was looked up.
type NotFoundError struct {
	Kind  string // "employee", "shift", "shift assignment"
	ID    string
	cause error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return e.cause }

// InvariantError reports a broken internal invariant, such as an illegal
// status transition. These indicate corrupted data, not bad requests.
type InvariantError struct {
	EmployeeID EmployeeID
	Day        Day
	Message    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %s (employee %s, %s)", e.Message, e.EmployeeID, e.Day)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates missing reference data.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrShiftNotFound) ||
		errors.Is(err, ErrAssignmentNotFound)
}

// IsClientError returns true if the error is a business-rule rejection the
// caller must fix rather than retry.
func IsClientError(err error) bool {
	return errors.Is(err, ErrTerminated) ||
		errors.Is(err, ErrOnLeave) ||
		errors.Is(err, ErrRestDay) ||
		errors.Is(err, ErrAlreadyClockedIn) ||
		errors.Is(err, ErrAlreadyClockedOut) ||
		errors.Is(err, ErrNotClockedIn) ||
		errors.Is(err, ErrMarkedAbsent) ||
		errors.Is(err, ErrOverlappingAssignment)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

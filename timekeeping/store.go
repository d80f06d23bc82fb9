/*
store.go - Persistence interfaces for the timekeeping core

PURPOSE:
  Defines the narrow read/write contracts between the engine and its
  collaborators. The engine holds no hidden process-wide state: every
  lookup goes through an injected interface, so any store satisfying the
  capability set works (SQLite in production, memory in tests).

KEY INTERFACES:
  EmployeeDirectory: read-only employee/offboarding/leave predicates
  ShiftCatalog:      immutable shift definitions
  AssignmentStore:   shift-assignment ranges (overlap rejected on save)
  Ledger:            the one-per-(employee, day) attendance records

CONCURRENCY CONTRACT:
  Ledger.Create must be atomic with respect to the existence check: at
  most one record per (employee, day) is ever created, and racing callers
  observe ErrDuplicateRecord. Ledger.Update uses optimistic versioning and
  fails stale writes with ErrConcurrentModification.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:      production SQLite
  - timekeeping/store/memory.go: in-memory for testing/dev

SEE ALSO:
  - engine.go: consumes these interfaces
*/
package timekeeping

import "context"

// =============================================================================
// EMPLOYEE DIRECTORY - Read-only collaborator predicates
// =============================================================================

// EmployeeDirectory exposes the external HR data the eligibility guard
// consults. All methods are read-only to the core.
type EmployeeDirectory interface {
	// GetEmployee returns the employee, or nil if none exists.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	// GetOffboarding returns the employee's offboarding record, or nil.
	GetOffboarding(ctx context.Context, id EmployeeID) (*Offboarding, error)

	// HasApprovedLeave reports whether any approved leave window covers the day.
	HasApprovedLeave(ctx context.Context, id EmployeeID, day Day) (bool, error)

	// ListEmployees returns all known employees. Used by the end-of-day batch.
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// =============================================================================
// SHIFT CATALOG - Immutable shift definitions
// =============================================================================

type ShiftCatalog interface {
	// GetShift returns the shift, or nil if none exists.
	GetShift(ctx context.Context, id ShiftID) (*Shift, error)

	ListShifts(ctx context.Context) ([]Shift, error)

	// SaveShift writes a shift definition. Configuration-time only; the
	// engine never calls this.
	SaveShift(ctx context.Context, shift Shift) error
}

// =============================================================================
// ASSIGNMENT STORE - Shift-assignment date ranges
// =============================================================================

type AssignmentStore interface {
	// SaveAssignment writes an assignment. Returns ErrOverlappingAssignment
	// when its date range intersects an existing assignment for the same
	// employee. Overlap is a storage-level invariant, not a read-time
	// tie-break.
	SaveAssignment(ctx context.Context, assignment ShiftAssignment) error

	// GetAssignmentsByEmployee returns all assignments for an employee.
	GetAssignmentsByEmployee(ctx context.Context, id EmployeeID) ([]ShiftAssignment, error)
}

// =============================================================================
// LEDGER - Attendance records, one per (employee, day)
// =============================================================================

type Ledger interface {
	// GetRecord returns the record for (employee, day), or nil if none exists.
	GetRecord(ctx context.Context, id EmployeeID, day Day) (*AttendanceRecord, error)

	// CreateRecord inserts a new record. Returns ErrDuplicateRecord if one
	// already exists for (employee, day). This check-then-create must be
	// atomic (unique constraint or equivalent).
	CreateRecord(ctx context.Context, record AttendanceRecord) error

	// UpdateRecord writes an existing record, matching on the record's
	// current Version and incrementing it. Returns ErrConcurrentModification
	// on a version mismatch.
	UpdateRecord(ctx context.Context, record AttendanceRecord) error

	// ListRecords returns records for an employee with from <= day <= to,
	// ordered by day.
	ListRecords(ctx context.Context, id EmployeeID, from, to Day) ([]AttendanceRecord, error)
}

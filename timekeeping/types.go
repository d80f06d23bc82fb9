/*
Package timekeeping provides the attendance timekeeping core.

PURPOSE:
  This package decides, for a given employee and instant, whether a
  clock-in/clock-out event is legal and what attendance status results
  (present, late, short-time) against the shift policy in force. Shifts
  may span midnight, carry grace periods, and be overridden by approved
  leave, termination, or rest days.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: immutable daily work-time template (start/end, type, grace)
  - ShiftAssignment: binding of an employee to a shift over a date range
  - AttendanceRecord: the one-per-(employee, day) mutable ledger entry
  - Status: closed attendance status enumeration with a transition table

DESIGN PRINCIPLES:
  1. Reference data is read-only: shifts and assignments are created by
     configuration collaborators, never by the engine.
  2. Day keys everywhere: all date-range comparisons run at day
     granularity through the Day type (time.go).
  3. Explicit transitions: status changes consult a transition table;
     an illegal transition is an error, not a silent overwrite.

SEE ALSO:
  - engine.go: ClockIn/ClockOut orchestration
  - guard.go:  eligibility checks
  - store.go:  persistence interfaces
*/
package timekeeping

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ShiftID string
type AssignmentID string

// =============================================================================
// SHIFT - Immutable daily work-time template
// =============================================================================

type ShiftType string

const (
	ShiftNormal     ShiftType = "normal"
	ShiftOvernight  ShiftType = "overnight"
	ShiftSplit      ShiftType = "split"
	ShiftRotational ShiftType = "rotational"
)

func (st ShiftType) Valid() bool {
	switch st {
	case ShiftNormal, ShiftOvernight, ShiftSplit, ShiftRotational:
		return true
	}
	return false
}

// Shift is reference data: created and edited by configuration, never by
// the engine.
type Shift struct {
	ID           ShiftID
	Name         string
	StartTime    ClockTime
	EndTime      ClockTime
	Type         ShiftType
	GraceMinutes int
}

// StartOn anchors the shift start onto a calendar day.
func (s Shift) StartOn(d Day) time.Time { return s.StartTime.On(d) }

// EndOn anchors the shift end onto a calendar day. Overnight shifts end on
// the following calendar day.
func (s Shift) EndOn(d Day) time.Time {
	end := s.EndTime.On(d)
	if s.Type == ShiftOvernight {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// =============================================================================
// SHIFT ASSIGNMENT - Employee bound to a shift over a date range
// =============================================================================

// ShiftAssignment binds an employee to a shift between StartDate and
// EndDate (inclusive; nil EndDate = open-ended), with designated rest days.
type ShiftAssignment struct {
	ID         AssignmentID
	EmployeeID EmployeeID
	ShiftID    ShiftID
	StartDate  Day
	EndDate    *Day
	RestDays   []time.Weekday
	CreatedAt  time.Time
}

// InForce reports whether the assignment covers the given day.
// Comparisons are at day granularity only.
func (a ShiftAssignment) InForce(d Day) bool {
	if d.Before(a.StartDate) {
		return false
	}
	if a.EndDate != nil && d.After(*a.EndDate) {
		return false
	}
	return true
}

// IsRestDay reports whether the day's weekday is one of the assignment's
// rest days.
func (a ShiftAssignment) IsRestDay(d Day) bool {
	wd := d.Weekday()
	for _, rest := range a.RestDays {
		if rest == wd {
			return true
		}
	}
	return false
}

// Overlaps reports whether two assignments' date ranges intersect.
// Open-ended assignments extend to infinity.
func (a ShiftAssignment) Overlaps(b ShiftAssignment) bool {
	if a.EndDate != nil && b.StartDate.After(*a.EndDate) {
		return false
	}
	if b.EndDate != nil && a.StartDate.After(*b.EndDate) {
		return false
	}
	return true
}

// =============================================================================
// STATUS - Closed attendance status enumeration with transition table
// =============================================================================

type Status string

const (
	StatusPending   Status = "pending"
	StatusPresent   Status = "present"
	StatusLate      Status = "late"
	StatusShortTime Status = "short_time"

	// StatusAbsent is terminal and written only by the end-of-day batch,
	// never by the engine.
	StatusAbsent Status = "absent"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPresent, StatusLate, StatusShortTime, StatusAbsent:
		return true
	}
	return false
}

// statusTransitions is the legal transition table. Self-transitions for
// present and late allow clock-out to finalize a record without a status
// change. short_time and absent are terminal.
var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusPresent, StatusLate},
	StatusPresent:   {StatusPresent, StatusShortTime},
	StatusLate:      {StatusLate},
	StatusShortTime: {},
	StatusAbsent:    {},
}

// CanTransition reports whether s may legally move to the target status.
func (s Status) CanTransition(to Status) bool {
	for _, next := range statusTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// =============================================================================
// ATTENDANCE RECORD - The only mutable state in the core
// =============================================================================

// AttendanceRecord is the single ledger entry for (EmployeeID, Day).
// Created by ClockIn (or the absent batch), mutated by ClockOut, never
// deleted. ShiftID is frozen at clock-in time and not re-resolved later.
type AttendanceRecord struct {
	EmployeeID       EmployeeID
	Day              Day
	ClockIn          *time.Time
	ClockOut         *time.Time
	ShiftID          ShiftID
	Status           Status
	LateMinutes      int
	ShortTimeMinutes int
	Notes            string

	// Version supports optimistic locking in the ledger store. Incremented
	// on every successful update.
	Version int
}

// Open reports whether the record has a clock-in but no clock-out yet.
func (r AttendanceRecord) Open() bool {
	return r.ClockIn != nil && r.ClockOut == nil
}

// transition moves the record to a new status, consulting the table.
func (r *AttendanceRecord) transition(to Status) error {
	if r.Status == to {
		return nil
	}
	if !r.Status.CanTransition(to) {
		return &InvariantError{
			EmployeeID: r.EmployeeID,
			Day:        r.Day,
			Message:    "illegal status transition " + string(r.Status) + " -> " + string(to),
		}
	}
	r.Status = to
	return nil
}

// =============================================================================
// EXTERNAL ENTITIES - Read-only collaborator data the guard consults
// =============================================================================

// Employee is the minimal read-only projection of the HR employee record.
type Employee struct {
	ID       EmployeeID
	Name     string
	Email    string
	HireDate Day
}

// Offboarding marks an employee's termination. The employee counts as
// terminated on the effective date itself and every day after.
type Offboarding struct {
	EmployeeID    EmployeeID
	EffectiveDate Day
}

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// Leave is a leave-request window. Only approved leaves block clock-in.
type Leave struct {
	ID         string
	EmployeeID EmployeeID
	StartDate  Day
	EndDate    Day
	Status     LeaveStatus
}

// Covers reports whether the leave window includes the day.
func (l Leave) Covers(d Day) bool {
	return l.StartDate.BeforeOrEqual(d) && d.BeforeOrEqual(l.EndDate)
}

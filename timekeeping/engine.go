/*
engine.go - The timekeeping engine: ClockIn and ClockOut

PURPOSE:
  Orchestrates eligibility checks, shift lookup, lateness/short-time
  arithmetic, and the attendance status state machine. The engine is
  stateless per call; each invocation is a short synchronous unit of work
  with no internal suspension beyond the storage collaborator.

STATE MACHINE (per employee, day):
  NONE    --ClockIn-->  PRESENT | LATE
  PENDING --ClockIn-->  PRESENT | LATE          (pending records overwritten)
  PRESENT --ClockOut--> PRESENT | SHORT_TIME
  LATE    --ClockOut--> LATE                    (early departure appends a note)

  A second ClockIn fails with "already clocked in"; ClockOut requires a
  prior ClockIn; a second ClockOut fails with "already clocked out".
  ABSENT is written only by the end-of-day batch, never here.

ARITHMETIC:
  Late minutes count from the UNADJUSTED shift start, not the grace
  boundary: with a 10-minute grace on a 09:00 shift, 09:15 is late by 15.
  Short-time minutes count to the computed shift end; overnight shifts
  end on the following calendar day.

CONCURRENCY:
  Racing clock-ins for the same day are settled by the ledger store's
  atomic create (unique constraint); the loser observes "already clocked
  in". Updates carry the record version for optimistic locking.

SEE ALSO:
  - guard.go:  eligibility sequence
  - types.go:  status transition table
  - store.go:  ledger contract
*/
package timekeeping

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Engine exposes the two core operations, ClockIn and ClockOut.
type Engine struct {
	Directory EmployeeDirectory
	Catalog   ShiftCatalog
	Ledger    Ledger
	Guard     *EligibilityGuard

	// Location controls day truncation. Nil means UTC.
	Location *time.Location

	// Now supplies the current time when a clock call omits its timestamp.
	// Nil means time.Now. Injected for tests.
	Now func() time.Time
}

// NewEngine wires an engine from its stores with default clock and location.
func NewEngine(directory EmployeeDirectory, catalog ShiftCatalog, assignments AssignmentStore, ledger Ledger) *Engine {
	return &Engine{
		Directory: directory,
		Catalog:   catalog,
		Ledger:    ledger,
		Guard: &EligibilityGuard{
			Directory: directory,
			Resolver:  &AssignmentResolver{Assignments: assignments},
		},
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) location() *time.Location {
	if e.Location != nil {
		return e.Location
	}
	return time.UTC
}

// =============================================================================
// CLOCK IN
// =============================================================================

// ClockIn records an arrival. A zero timestamp means "now".
func (e *Engine) ClockIn(ctx context.Context, employeeID EmployeeID, ts time.Time) (*AttendanceRecord, error) {
	if ts.IsZero() {
		ts = e.now()
	}
	day := DayOf(ts, e.location())

	assignment, err := e.Guard.Check(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}

	existing, err := e.Ledger.GetRecord(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ClockIn != nil {
		return nil, reject(employeeID, day, "already clocked in", ErrAlreadyClockedIn)
	}
	if existing != nil && existing.Status == StatusAbsent {
		// The end-of-day batch closed this day already; absent is terminal.
		return nil, reject(employeeID, day, "day already closed as absent", ErrMarkedAbsent)
	}

	shift, err := e.Catalog.GetShift(ctx, assignment.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, &NotFoundError{Kind: "shift", ID: string(assignment.ShiftID), cause: ErrShiftNotFound}
	}

	shiftStart := shift.StartOn(day)
	effectiveStart := shiftStart.Add(time.Duration(shift.GraceMinutes) * time.Minute)

	status := StatusPresent
	lateMinutes := 0
	notes := "On time"
	if ts.After(effectiveStart) {
		lateMinutes = int(ts.Sub(shiftStart) / time.Minute)
		status = StatusLate
		notes = fmt.Sprintf("Late by %d minutes (grace period: %d minutes)", lateMinutes, shift.GraceMinutes)
	}

	if existing != nil {
		// Pending record (e.g. imported placeholder): overwrite in place.
		if err := existing.transition(status); err != nil {
			return nil, err
		}
		existing.ClockIn = &ts
		existing.ShiftID = shift.ID
		existing.LateMinutes = lateMinutes
		existing.Notes = notes
		if err := e.Ledger.UpdateRecord(ctx, *existing); err != nil {
			return nil, err
		}
		existing.Version++
		return existing, nil
	}

	record := AttendanceRecord{
		EmployeeID:       employeeID,
		Day:              day,
		ClockIn:          &ts,
		ShiftID:          shift.ID,
		Status:           status,
		LateMinutes:      lateMinutes,
		ShortTimeMinutes: 0,
		Notes:            notes,
	}
	if err := e.Ledger.CreateRecord(ctx, record); err != nil {
		// A concurrent clock-in won the create race.
		if errors.Is(err, ErrDuplicateRecord) {
			return nil, reject(employeeID, day, "already clocked in", ErrAlreadyClockedIn)
		}
		return nil, err
	}
	return &record, nil
}

// =============================================================================
// CLOCK OUT
// =============================================================================

// ClockOut records a departure. A zero timestamp means "now".
//
// Eligibility is NOT re-run here: rest day, leave, and termination are
// enforced only at clock-in. The shift captured at clock-in time is used;
// it is never re-resolved.
func (e *Engine) ClockOut(ctx context.Context, employeeID EmployeeID, ts time.Time) (*AttendanceRecord, error) {
	if ts.IsZero() {
		ts = e.now()
	}
	day := DayOf(ts, e.location())

	emp, err := e.Directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, &NotFoundError{Kind: "employee", ID: string(employeeID), cause: ErrEmployeeNotFound}
	}

	record, err := e.findOpenRecord(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	if record.ClockOut != nil {
		return nil, reject(employeeID, record.Day, "already clocked out", ErrAlreadyClockedOut)
	}

	shift, err := e.Catalog.GetShift(ctx, record.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, &NotFoundError{Kind: "shift", ID: string(record.ShiftID), cause: ErrShiftNotFound}
	}

	// Shift end is anchored on the RECORD's day: an overnight shift opened
	// yesterday evening ends this morning, not tomorrow morning.
	shiftEnd := shift.EndOn(record.Day)

	record.ClockOut = &ts
	if ts.Before(shiftEnd) {
		short := int(shiftEnd.Sub(ts) / time.Minute)
		record.ShortTimeMinutes = short
		if record.Status != StatusLate {
			if err := record.transition(StatusShortTime); err != nil {
				return nil, err
			}
			record.Notes = fmt.Sprintf("Left %d minutes early", short)
		} else {
			record.Notes += fmt.Sprintf(" | Left %d minutes early", short)
		}
	} else if record.Status == StatusPresent {
		record.Notes = "Completed full shift"
	}

	if err := e.Ledger.UpdateRecord(ctx, *record); err != nil {
		return nil, err
	}
	record.Version++
	return record, nil
}

// findOpenRecord loads the attendance record a clock-out applies to: the
// timestamp's day first, falling back to the previous day when that record
// was opened under an overnight shift (clocking out at 05:30 against a
// 22:00-06:00 shift started the evening before). An already-closed
// overnight record is still returned so a repeated clock-out surfaces
// "already clocked out" rather than "must clock in".
func (e *Engine) findOpenRecord(ctx context.Context, employeeID EmployeeID, day Day) (*AttendanceRecord, error) {
	record, err := e.Ledger.GetRecord(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	if record != nil && record.ClockIn != nil {
		return record, nil
	}

	prev, err := e.Ledger.GetRecord(ctx, employeeID, day.AddDays(-1))
	if err != nil {
		return nil, err
	}
	if prev != nil && prev.ClockIn != nil {
		shift, err := e.Catalog.GetShift(ctx, prev.ShiftID)
		if err != nil {
			return nil, err
		}
		if shift != nil && shift.Type == ShiftOvernight {
			return prev, nil
		}
	}

	return nil, reject(employeeID, day, "must clock in before clocking out", ErrNotClockedIn)
}

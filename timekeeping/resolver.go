/*
resolver.go - Shift assignment resolution

PURPOSE:
  Finds the shift assignment in force for an employee on a given day,
  handling open-ended assignments. Zero matches is a hard failure
  (ErrAssignmentNotFound), never a default.

OVERLAP HANDLING:
  Overlapping assignments are rejected at save time (see store.go), so a
  healthy dataset yields at most one candidate. For pre-existing dirty
  data the resolver is still deterministic: the candidate with the latest
  StartDate wins, ties broken by assignment ID.

SEE ALSO:
  - guard.go: calls Resolve as its final eligibility step
*/
package timekeeping

import "context"

// AssignmentResolver selects the assignment in force for a day.
type AssignmentResolver struct {
	Assignments AssignmentStore
}

// Resolve returns the assignment covering the day, or ErrAssignmentNotFound.
// Candidates are compared on date only, at day granularity.
func (ar *AssignmentResolver) Resolve(ctx context.Context, employeeID EmployeeID, day Day) (*ShiftAssignment, error) {
	assignments, err := ar.Assignments.GetAssignmentsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	var match *ShiftAssignment
	for i := range assignments {
		a := &assignments[i]
		if !a.InForce(day) {
			continue
		}
		if match == nil || betterMatch(a, match) {
			match = a
		}
	}

	if match == nil {
		return nil, &NotFoundError{Kind: "shift assignment", ID: string(employeeID), cause: ErrAssignmentNotFound}
	}
	return match, nil
}

// betterMatch prefers the later StartDate; ties break on the larger ID so
// repeated resolutions over the same data always agree.
func betterMatch(a, current *ShiftAssignment) bool {
	if a.StartDate.After(current.StartDate) {
		return true
	}
	if current.StartDate.After(a.StartDate) {
		return false
	}
	return a.ID > current.ID
}

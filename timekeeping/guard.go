/*
guard.go - Clock-event eligibility checks

PURPOSE:
  Decides whether a clock event may proceed for an employee on a day.
  Composes three external predicates (employee exists, not terminated,
  not on approved leave) with assignment resolution and the rest-day
  check. Checks run in order and short-circuit on the first failure.

CHECK SEQUENCE:
  1. Employee exists                   -> ErrEmployeeNotFound
  2. Not terminated as of the day      -> ErrTerminated
  3. No approved leave covering day    -> ErrOnLeave
  4. Assignment resolves for the day   -> ErrAssignmentNotFound
  5. Day is not a rest day             -> ErrRestDay

  The resolved assignment is returned on success and reused by the
  engine, so the assignment lookup happens exactly once per call.

SEE ALSO:
  - resolver.go: step 4
  - engine.go:   runs the guard before every clock-in
*/
package timekeeping

import "context"

// EligibilityGuard composes the external predicates that gate clock events.
type EligibilityGuard struct {
	Directory EmployeeDirectory
	Resolver  *AssignmentResolver
}

// Check validates that a clock event may proceed on the day and returns
// the assignment in force. Fails fast on the first violated rule.
func (g *EligibilityGuard) Check(ctx context.Context, employeeID EmployeeID, day Day) (*ShiftAssignment, error) {
	emp, err := g.Directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, &NotFoundError{Kind: "employee", ID: string(employeeID), cause: ErrEmployeeNotFound}
	}

	terminated, err := g.isTerminated(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	if terminated {
		return nil, reject(employeeID, day, "cannot clock in: employee is terminated", ErrTerminated)
	}

	onLeave, err := g.Directory.HasApprovedLeave(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	if onLeave {
		return nil, reject(employeeID, day, "cannot clock in while on approved leave", ErrOnLeave)
	}

	assignment, err := g.Resolver.Resolve(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}

	if assignment.IsRestDay(day) {
		return nil, reject(employeeID, day, "cannot clock in on rest day", ErrRestDay)
	}

	return assignment, nil
}

// isTerminated reports whether an offboarding record with
// effectiveDate <= day exists. Both sides are day keys, so the comparison
// is already normalized to local midnight.
func (g *EligibilityGuard) isTerminated(ctx context.Context, employeeID EmployeeID, day Day) (bool, error) {
	off, err := g.Directory.GetOffboarding(ctx, employeeID)
	if err != nil {
		return false, err
	}
	if off == nil {
		return false, nil
	}
	return off.EffectiveDate.BeforeOrEqual(day), nil
}

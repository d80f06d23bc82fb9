package timekeeping_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/timekeeping"
	"github.com/warp/attendance-engine/timekeeping/store"
)

// stubAssignments bypasses the store's overlap rejection so resolver
// behavior over dirty, overlapping data can be exercised directly.
type stubAssignments struct {
	assignments []timekeeping.ShiftAssignment
}

func (s *stubAssignments) SaveAssignment(_ context.Context, a timekeeping.ShiftAssignment) error {
	s.assignments = append(s.assignments, a)
	return nil
}

func (s *stubAssignments) GetAssignmentsByEmployee(_ context.Context, _ timekeeping.EmployeeID) ([]timekeeping.ShiftAssignment, error) {
	return s.assignments, nil
}

func openEnded(id timekeeping.AssignmentID, shift timekeeping.ShiftID, start timekeeping.Day) timekeeping.ShiftAssignment {
	return timekeeping.ShiftAssignment{
		ID: id, EmployeeID: "emp-1", ShiftID: shift, StartDate: start,
	}
}

// =============================================================================
// RESOLVER
// =============================================================================

func TestResolver_NoAssignments_NotFound(t *testing.T) {
	resolver := &timekeeping.AssignmentResolver{Assignments: &stubAssignments{}}

	_, err := resolver.Resolve(context.Background(), "emp-1", monday)
	assert.ErrorIs(t, err, timekeeping.ErrAssignmentNotFound)
	assert.True(t, timekeeping.IsNotFound(err))
}

func TestResolver_OutOfRange_NotFound(t *testing.T) {
	// GIVEN: An assignment that ended before the day in question
	end := monday.AddDays(-5)
	stub := &stubAssignments{assignments: []timekeeping.ShiftAssignment{
		{ID: "asg-1", EmployeeID: "emp-1", ShiftID: "shift-day",
			StartDate: monday.AddDays(-30), EndDate: &end},
	}}
	resolver := &timekeeping.AssignmentResolver{Assignments: stub}

	_, err := resolver.Resolve(context.Background(), "emp-1", monday)
	assert.ErrorIs(t, err, timekeeping.ErrAssignmentNotFound)
}

func TestResolver_EndDateInclusive(t *testing.T) {
	// GIVEN: An assignment ending exactly on the day
	// THEN: It still resolves - the end date is inclusive
	end := monday
	stub := &stubAssignments{assignments: []timekeeping.ShiftAssignment{
		{ID: "asg-1", EmployeeID: "emp-1", ShiftID: "shift-day",
			StartDate: monday.AddDays(-30), EndDate: &end},
	}}
	resolver := &timekeeping.AssignmentResolver{Assignments: stub}

	match, err := resolver.Resolve(context.Background(), "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, timekeeping.AssignmentID("asg-1"), match.ID)
}

func TestResolver_DirtyOverlap_LatestStartWins(t *testing.T) {
	// GIVEN: Two overlapping open-ended assignments (pre-existing dirty data)
	// THEN: The one with the later start date wins, deterministically

	stub := &stubAssignments{assignments: []timekeeping.ShiftAssignment{
		openEnded("asg-old", "shift-day", monday.AddDays(-60)),
		openEnded("asg-new", "shift-night", monday.AddDays(-10)),
	}}
	resolver := &timekeeping.AssignmentResolver{Assignments: stub}

	for i := 0; i < 5; i++ {
		match, err := resolver.Resolve(context.Background(), "emp-1", monday)
		require.NoError(t, err)
		assert.Equal(t, timekeeping.AssignmentID("asg-new"), match.ID)
	}
}

func TestResolver_DirtyOverlap_SameStart_TieOnID(t *testing.T) {
	// GIVEN: Two overlapping assignments with identical start dates
	// THEN: The larger ID wins, regardless of slice order

	start := monday.AddDays(-10)
	stub := &stubAssignments{assignments: []timekeeping.ShiftAssignment{
		openEnded("asg-b", "shift-night", start),
		openEnded("asg-a", "shift-day", start),
	}}
	resolver := &timekeeping.AssignmentResolver{Assignments: stub}

	match, err := resolver.Resolve(context.Background(), "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, timekeeping.AssignmentID("asg-b"), match.ID)
}

// =============================================================================
// GUARD - Check ordering
// =============================================================================

func TestGuard_TerminationBeforeLeave(t *testing.T) {
	// GIVEN: An employee both terminated and on approved leave
	// THEN: The termination rejection wins - checks run in order

	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.SaveEmployee(ctx, timekeeping.Employee{ID: "emp-1", Name: "A"}))
	require.NoError(t, m.SaveOffboarding(ctx, timekeeping.Offboarding{
		EmployeeID: "emp-1", EffectiveDate: monday.AddDays(-1),
	}))
	require.NoError(t, m.SaveLeave(ctx, timekeeping.Leave{
		ID: "leave-1", EmployeeID: "emp-1",
		StartDate: monday, EndDate: monday, Status: timekeeping.LeaveApproved,
	}))

	guard := &timekeeping.EligibilityGuard{
		Directory: m,
		Resolver:  &timekeeping.AssignmentResolver{Assignments: m},
	}

	_, err := guard.Check(ctx, "emp-1", monday)
	assert.ErrorIs(t, err, timekeeping.ErrTerminated)
}

func TestGuard_LeaveBeforeAssignment(t *testing.T) {
	// GIVEN: Approved leave and no assignment at all
	// THEN: The leave rejection wins over assignment-not-found

	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.SaveEmployee(ctx, timekeeping.Employee{ID: "emp-1", Name: "A"}))
	require.NoError(t, m.SaveLeave(ctx, timekeeping.Leave{
		ID: "leave-1", EmployeeID: "emp-1",
		StartDate: monday, EndDate: monday, Status: timekeeping.LeaveApproved,
	}))

	guard := &timekeeping.EligibilityGuard{
		Directory: m,
		Resolver:  &timekeeping.AssignmentResolver{Assignments: m},
	}

	_, err := guard.Check(ctx, "emp-1", monday)
	assert.ErrorIs(t, err, timekeeping.ErrOnLeave)
}

func TestGuard_Passes_ReturnsAssignment(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.SaveEmployee(ctx, timekeeping.Employee{ID: "emp-1", Name: "A"}))
	require.NoError(t, m.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-1", EmployeeID: "emp-1", ShiftID: "shift-day",
		StartDate: monday.AddDays(-30),
		RestDays:  []time.Weekday{time.Sunday},
	}))

	guard := &timekeeping.EligibilityGuard{
		Directory: m,
		Resolver:  &timekeeping.AssignmentResolver{Assignments: m},
	}

	assignment, err := guard.Check(ctx, "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, timekeeping.ShiftID("shift-day"), assignment.ShiftID)
}

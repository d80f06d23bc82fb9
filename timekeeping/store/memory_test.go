package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/timekeeping"
	"github.com/warp/attendance-engine/timekeeping/store"
)

var day = timekeeping.NewDay(2025, time.March, 10)

func TestMemory_CreateRecord_Duplicate(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	record := timekeeping.AttendanceRecord{
		EmployeeID: "emp-1", Day: day, Status: timekeeping.StatusPresent,
	}

	require.NoError(t, m.CreateRecord(ctx, record))
	err := m.CreateRecord(ctx, record)
	assert.ErrorIs(t, err, timekeeping.ErrDuplicateRecord)
}

func TestMemory_UpdateRecord_StaleVersion(t *testing.T) {
	// GIVEN: A record updated once (version bumped to 1)
	// WHEN: Updating again with the stale version 0
	// THEN: ErrConcurrentModification, and it is retryable

	m := store.NewMemory()
	ctx := context.Background()
	record := timekeeping.AttendanceRecord{
		EmployeeID: "emp-1", Day: day, Status: timekeeping.StatusPresent,
	}
	require.NoError(t, m.CreateRecord(ctx, record))
	require.NoError(t, m.UpdateRecord(ctx, record))

	err := m.UpdateRecord(ctx, record)
	assert.ErrorIs(t, err, timekeeping.ErrConcurrentModification)
	assert.True(t, timekeeping.IsRetryable(err))

	current, err := m.GetRecord(ctx, "emp-1", day)
	require.NoError(t, err)
	assert.Equal(t, 1, current.Version)
}

func TestMemory_UpdateRecord_Missing(t *testing.T) {
	m := store.NewMemory()

	err := m.UpdateRecord(context.Background(), timekeeping.AttendanceRecord{
		EmployeeID: "emp-1", Day: day,
	})
	assert.ErrorIs(t, err, timekeeping.ErrConcurrentModification)
}

func TestMemory_SaveAssignment_RejectsOverlap(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-1", EmployeeID: "emp-1", ShiftID: "shift-day", StartDate: day,
	}))

	err := m.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-2", EmployeeID: "emp-1", ShiftID: "shift-night", StartDate: day.AddDays(30),
	})
	assert.ErrorIs(t, err, timekeeping.ErrOverlappingAssignment)
}

func TestMemory_SaveAssignment_DisjointRangesAllowed(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	end := day.AddDays(10)

	require.NoError(t, m.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-1", EmployeeID: "emp-1", ShiftID: "shift-day",
		StartDate: day, EndDate: &end,
	}))
	require.NoError(t, m.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-2", EmployeeID: "emp-1", ShiftID: "shift-night",
		StartDate: day.AddDays(11),
	}))

	assignments, err := m.GetAssignmentsByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, assignments, 2)
}

func TestMemory_SaveAssignment_SameIDReplaces(t *testing.T) {
	// Re-saving an assignment under its own ID updates it in place, the
	// way the SQLite primary key behaves, rather than duplicating it.

	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-1", EmployeeID: "emp-1", ShiftID: "shift-day", StartDate: day,
	}))
	require.NoError(t, m.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-1", EmployeeID: "emp-1", ShiftID: "shift-night", StartDate: day,
	}))

	assignments, err := m.GetAssignmentsByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, timekeeping.ShiftID("shift-night"), assignments[0].ShiftID)
}

func TestMemory_GetRecord_Absent(t *testing.T) {
	m := store.NewMemory()

	record, err := m.GetRecord(context.Background(), "emp-ghost", day)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestMemory_ListRecords_RangeAndOrder(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	for _, d := range []timekeeping.Day{day.AddDays(2), day, day.AddDays(5), day.AddDays(1)} {
		require.NoError(t, m.CreateRecord(ctx, timekeeping.AttendanceRecord{
			EmployeeID: "emp-1", Day: d, Status: timekeeping.StatusPresent,
		}))
	}

	records, err := m.ListRecords(ctx, "emp-1", day, day.AddDays(2))
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.True(t, records[0].Day.Equal(day))
	assert.True(t, records[1].Day.Equal(day.AddDays(1)))
	assert.True(t, records[2].Day.Equal(day.AddDays(2)))
}

func TestMemory_HasApprovedLeave_StatusFilter(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.SaveLeave(ctx, timekeeping.Leave{
		ID: "leave-1", EmployeeID: "emp-1",
		StartDate: day, EndDate: day, Status: timekeeping.LeaveRejected,
	}))

	onLeave, err := m.HasApprovedLeave(ctx, "emp-1", day)
	require.NoError(t, err)
	assert.False(t, onLeave)

	require.NoError(t, m.SaveLeave(ctx, timekeeping.Leave{
		ID: "leave-2", EmployeeID: "emp-1",
		StartDate: day, EndDate: day, Status: timekeeping.LeaveApproved,
	}))

	onLeave, err = m.HasApprovedLeave(ctx, "emp-1", day)
	require.NoError(t, err)
	assert.True(t, onLeave)
}

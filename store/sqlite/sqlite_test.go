package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/store/sqlite"
	"github.com/warp/attendance-engine/timekeeping"
)

var day = timekeeping.NewDay(2025, time.March, 10)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:", time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEmployeeRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	emp := timekeeping.Employee{
		ID: "emp-1", Name: "Amira Hassan", Email: "amira@example.com",
		HireDate: timekeeping.NewDay(2024, time.June, 1),
	}
	require.NoError(t, s.SaveEmployee(ctx, emp))

	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, emp.Name, got.Name)
	assert.Equal(t, emp.Email, got.Email)
	assert.True(t, got.HireDate.Equal(emp.HireDate))

	missing, err := s.GetEmployee(ctx, "emp-ghost")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveEmployee_Upsert(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	emp := timekeeping.Employee{ID: "emp-1", Name: "Old Name", HireDate: day}
	require.NoError(t, s.SaveEmployee(ctx, emp))
	emp.Name = "New Name"
	require.NoError(t, s.SaveEmployee(ctx, emp))

	got, err := s.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
}

func TestShiftRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	shift := timekeeping.Shift{
		ID:        "shift-night",
		Name:      "Night Shift",
		StartTime: timekeeping.MustClockTime("22:00"),
		EndTime:   timekeeping.MustClockTime("06:00"),
		Type:      timekeeping.ShiftOvernight, GraceMinutes: 15,
	}
	require.NoError(t, s.SaveShift(ctx, shift))

	got, err := s.GetShift(ctx, "shift-night")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, shift, *got)

	shifts, err := s.ListShifts(ctx)
	require.NoError(t, err)
	assert.Len(t, shifts, 1)
}

func TestAssignmentRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	end := day.AddDays(90)

	a := timekeeping.ShiftAssignment{
		ID: "asg-1", EmployeeID: "emp-1", ShiftID: "shift-day",
		StartDate: day, EndDate: &end,
		RestDays: []time.Weekday{time.Saturday, time.Sunday},
	}
	require.NoError(t, s.SaveAssignment(ctx, a))

	got, err := s.GetAssignmentsByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
	assert.True(t, got[0].StartDate.Equal(day))
	require.NotNil(t, got[0].EndDate)
	assert.True(t, got[0].EndDate.Equal(end))
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, got[0].RestDays)
}

func TestSaveAssignment_RejectsOverlap(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-1", EmployeeID: "emp-1", ShiftID: "shift-day", StartDate: day,
	}))

	err := s.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-2", EmployeeID: "emp-1", ShiftID: "shift-night", StartDate: day.AddDays(7),
	})
	assert.ErrorIs(t, err, timekeeping.ErrOverlappingAssignment)

	// A different employee is unaffected
	require.NoError(t, s.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-3", EmployeeID: "emp-2", ShiftID: "shift-night", StartDate: day,
	}))
}

func TestCreateRecord_DuplicateDay(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	in := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	record := timekeeping.AttendanceRecord{
		EmployeeID: "emp-1", Day: day, ClockIn: &in,
		ShiftID: "shift-day", Status: timekeeping.StatusPresent, Notes: "On time",
	}
	require.NoError(t, s.CreateRecord(ctx, record))

	err := s.CreateRecord(ctx, record)
	assert.ErrorIs(t, err, timekeeping.ErrDuplicateRecord)
}

func TestRecordRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	in := time.Date(2025, time.March, 10, 9, 20, 0, 0, time.UTC)

	require.NoError(t, s.CreateRecord(ctx, timekeeping.AttendanceRecord{
		EmployeeID: "emp-1", Day: day, ClockIn: &in,
		ShiftID: "shift-day", Status: timekeeping.StatusLate,
		LateMinutes: 20, Notes: "Late by 20 minutes (grace period: 10 minutes)",
	}))

	got, err := s.GetRecord(ctx, "emp-1", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, timekeeping.StatusLate, got.Status)
	assert.Equal(t, 20, got.LateMinutes)
	assert.Equal(t, 0, got.Version)
	require.NotNil(t, got.ClockIn)
	assert.True(t, got.ClockIn.Equal(in))
	assert.Nil(t, got.ClockOut)
}

func TestUpdateRecord_OptimisticLocking(t *testing.T) {
	// GIVEN: A stored record at version 0
	// WHEN: Two writers update from the same version
	// THEN: The first wins and bumps the version; the second gets
	//       ErrConcurrentModification

	s := newStore(t)
	ctx := context.Background()
	in := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	out := time.Date(2025, time.March, 10, 17, 0, 0, 0, time.UTC)

	record := timekeeping.AttendanceRecord{
		EmployeeID: "emp-1", Day: day, ClockIn: &in,
		ShiftID: "shift-day", Status: timekeeping.StatusPresent,
	}
	require.NoError(t, s.CreateRecord(ctx, record))

	record.ClockOut = &out
	record.Notes = "Completed full shift"
	require.NoError(t, s.UpdateRecord(ctx, record))

	err := s.UpdateRecord(ctx, record)
	assert.ErrorIs(t, err, timekeeping.ErrConcurrentModification)

	got, err := s.GetRecord(ctx, "emp-1", day)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, "Completed full shift", got.Notes)
}

func TestListRecords_Range(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateRecord(ctx, timekeeping.AttendanceRecord{
			EmployeeID: "emp-1", Day: day.AddDays(i),
			ShiftID: "shift-day", Status: timekeeping.StatusPresent,
		}))
	}

	records, err := s.ListRecords(ctx, "emp-1", day.AddDays(1), day.AddDays(3))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].Day.Equal(day.AddDays(1)))
	assert.True(t, records[2].Day.Equal(day.AddDays(3)))
}

func TestHasApprovedLeave(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveLeave(ctx, timekeeping.Leave{
		ID: "leave-1", EmployeeID: "emp-1",
		StartDate: day, EndDate: day.AddDays(3), Status: timekeeping.LeaveApproved,
	}))
	require.NoError(t, s.SaveLeave(ctx, timekeeping.Leave{
		ID: "leave-2", EmployeeID: "emp-1",
		StartDate: day.AddDays(10), EndDate: day.AddDays(12), Status: timekeeping.LeavePending,
	}))

	cases := []struct {
		d    timekeeping.Day
		want bool
	}{
		{day, true},
		{day.AddDays(3), true},
		{day.AddDays(4), false},
		{day.AddDays(11), false}, // pending leave does not block
	}
	for _, tc := range cases {
		got, err := s.HasApprovedLeave(ctx, "emp-1", tc.d)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "day %s", tc.d)
	}
}

func TestOffboardingRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveOffboarding(ctx, timekeeping.Offboarding{
		EmployeeID: "emp-1", EffectiveDate: day,
	}))

	got, err := s.GetOffboarding(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.EffectiveDate.Equal(day))

	missing, err := s.GetOffboarding(ctx, "emp-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEngineAgainstSQLite(t *testing.T) {
	// Full clock-in/clock-out cycle through the real storage layer.

	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmployee(ctx, timekeeping.Employee{
		ID: "emp-1", Name: "Amira Hassan", HireDate: day.AddDays(-100),
	}))
	require.NoError(t, s.SaveShift(ctx, timekeeping.Shift{
		ID: "shift-day", Name: "Day Shift",
		StartTime: timekeeping.MustClockTime("09:00"),
		EndTime:   timekeeping.MustClockTime("17:00"),
		Type:      timekeeping.ShiftNormal, GraceMinutes: 10,
	}))
	require.NoError(t, s.SaveAssignment(ctx, timekeeping.ShiftAssignment{
		ID: "asg-1", EmployeeID: "emp-1", ShiftID: "shift-day",
		StartDate: day.AddDays(-100),
	}))

	engine := timekeeping.NewEngine(s, s, s, s)

	in := time.Date(2025, time.March, 10, 9, 15, 0, 0, time.UTC)
	record, err := engine.ClockIn(ctx, "emp-1", in)
	require.NoError(t, err)
	assert.Equal(t, timekeeping.StatusLate, record.Status)
	assert.Equal(t, 15, record.LateMinutes)

	out := time.Date(2025, time.March, 10, 17, 0, 0, 0, time.UTC)
	record, err = engine.ClockOut(ctx, "emp-1", out)
	require.NoError(t, err)
	assert.Equal(t, timekeeping.StatusLate, record.Status)

	_, err = engine.ClockIn(ctx, "emp-1", in.Add(time.Hour))
	assert.ErrorIs(t, err, timekeeping.ErrAlreadyClockedIn)
}

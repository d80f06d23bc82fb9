package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/timekeeping"
	"github.com/warp/attendance-engine/timekeeping/store"
)

var monday = timekeeping.NewDay(2025, time.March, 10)

func seedCloserFixture(t *testing.T, m *store.Memory) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, m.SaveShift(ctx, timekeeping.Shift{
		ID: "shift-day", Name: "Day Shift",
		StartTime: timekeeping.MustClockTime("09:00"),
		EndTime:   timekeeping.MustClockTime("17:00"),
		Type:      timekeeping.ShiftNormal, GraceMinutes: 10,
	}))

	for _, id := range []timekeeping.EmployeeID{"emp-1", "emp-2", "emp-3"} {
		require.NoError(t, m.SaveEmployee(ctx, timekeeping.Employee{
			ID: id, Name: string(id), HireDate: monday.AddDays(-100),
		}))
		require.NoError(t, m.SaveAssignment(ctx, timekeeping.ShiftAssignment{
			ID:         timekeeping.AssignmentID("asg-" + id),
			EmployeeID: id, ShiftID: "shift-day",
			StartDate: monday.AddDays(-100),
			RestDays:  []time.Weekday{time.Saturday, time.Sunday},
		}))
	}
}

func TestCloseDay_MarksNoShowsAbsent(t *testing.T) {
	// GIVEN: Three assigned employees; only emp-1 clocked in
	// WHEN: Closing the day
	// THEN: emp-2 and emp-3 get absent records; emp-1's record is untouched

	m := store.NewMemory()
	seedCloserFixture(t, m)
	ctx := context.Background()

	engine := timekeeping.NewEngine(m, m, m, m)
	in := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	_, err := engine.ClockIn(ctx, "emp-1", in)
	require.NoError(t, err)

	closer := api.NewDayCloser(m, time.UTC)
	result, err := closer.CloseDay(ctx, monday)
	require.NoError(t, err)

	assert.Equal(t, 2, result.MarkedAbsent)
	assert.Equal(t, 0, result.SkippedExempt)

	record, err := m.GetRecord(ctx, "emp-2", monday)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, timekeeping.StatusAbsent, record.Status)
	assert.Equal(t, timekeeping.ShiftID("shift-day"), record.ShiftID)
	assert.Equal(t, "Absent (no clock-in recorded)", record.Notes)
	assert.Nil(t, record.ClockIn)

	present, err := m.GetRecord(ctx, "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, timekeeping.StatusPresent, present.Status)
}

func TestCloseDay_ExemptionsSkipped(t *testing.T) {
	// GIVEN: One employee terminated, one on leave, one with no assignment
	// WHEN: Closing the day
	// THEN: All exempt, none marked absent

	m := store.NewMemory()
	seedCloserFixture(t, m)
	ctx := context.Background()

	require.NoError(t, m.SaveOffboarding(ctx, timekeeping.Offboarding{
		EmployeeID: "emp-1", EffectiveDate: monday.AddDays(-1),
	}))
	require.NoError(t, m.SaveLeave(ctx, timekeeping.Leave{
		ID: "leave-1", EmployeeID: "emp-2",
		StartDate: monday, EndDate: monday, Status: timekeeping.LeaveApproved,
	}))
	require.NoError(t, m.SaveEmployee(ctx, timekeeping.Employee{
		ID: "emp-4", Name: "no assignment", HireDate: monday.AddDays(-10),
	}))

	closer := api.NewDayCloser(m, time.UTC)
	result, err := closer.CloseDay(ctx, monday)
	require.NoError(t, err)

	assert.Equal(t, 1, result.MarkedAbsent) // only emp-3 was truly expected
	assert.Equal(t, 3, result.SkippedExempt)
}

func TestCloseDay_RestDayExempt(t *testing.T) {
	m := store.NewMemory()
	seedCloserFixture(t, m)

	saturday := timekeeping.NewDay(2025, time.March, 8)
	closer := api.NewDayCloser(m, time.UTC)
	result, err := closer.CloseDay(context.Background(), saturday)
	require.NoError(t, err)

	assert.Equal(t, 0, result.MarkedAbsent)
	assert.Equal(t, 3, result.SkippedExempt)
}

func TestCloseDay_Rerun_Idempotent(t *testing.T) {
	m := store.NewMemory()
	seedCloserFixture(t, m)
	ctx := context.Background()

	closer := api.NewDayCloser(m, time.UTC)
	first, err := closer.CloseDay(ctx, monday)
	require.NoError(t, err)
	assert.Equal(t, 3, first.MarkedAbsent)

	second, err := closer.CloseDay(ctx, monday)
	require.NoError(t, err)
	assert.Equal(t, 0, second.MarkedAbsent)
}

func TestDayCloser_StartStop(t *testing.T) {
	m := store.NewMemory()
	closer := api.NewDayCloser(m, time.UTC)
	closer.CheckInterval = 10 * time.Millisecond

	closer.Start()
	time.Sleep(30 * time.Millisecond)
	closer.Stop()
}

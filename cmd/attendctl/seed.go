package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/timekeeping"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo reference data (employees, shifts, assignments)",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	store, loc, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	today := timekeeping.DayOf(time.Now(), loc)

	shifts := []timekeeping.Shift{
		{
			ID:        "shift-day",
			Name:      "Day Shift",
			StartTime: timekeeping.MustClockTime("09:00"),
			EndTime:   timekeeping.MustClockTime("17:00"),
			Type:      timekeeping.ShiftNormal, GraceMinutes: 10,
		},
		{
			ID:        "shift-night",
			Name:      "Night Shift",
			StartTime: timekeeping.MustClockTime("22:00"),
			EndTime:   timekeeping.MustClockTime("06:00"),
			Type:      timekeeping.ShiftOvernight, GraceMinutes: 15,
		},
	}
	for _, s := range shifts {
		if err := store.SaveShift(ctx, s); err != nil {
			return err
		}
	}

	employees := []struct {
		emp   timekeeping.Employee
		shift timekeeping.ShiftID
	}{
		{timekeeping.Employee{ID: "emp-1", Name: "Amira Hassan", Email: "amira@example.com", HireDate: today.AddDays(-365)}, "shift-day"},
		{timekeeping.Employee{ID: "emp-2", Name: "Jonas Weber", Email: "jonas@example.com", HireDate: today.AddDays(-200)}, "shift-night"},
	}
	for i, e := range employees {
		if err := store.SaveEmployee(ctx, e.emp); err != nil {
			return err
		}
		assignment := timekeeping.ShiftAssignment{
			ID:         timekeeping.AssignmentID(fmt.Sprintf("asg-%d", i+1)),
			EmployeeID: e.emp.ID,
			ShiftID:    e.shift,
			StartDate:  e.emp.HireDate,
			RestDays:   []time.Weekday{time.Saturday, time.Sunday},
			CreatedAt:  time.Now().UTC(),
		}
		if err := store.SaveAssignment(ctx, assignment); err != nil {
			return err
		}
	}

	fmt.Printf("Seeded %d shifts and %d employees with open-ended assignments\n", len(shifts), len(employees))
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/timekeeping"
)

var (
	clockInAt  string
	clockOutAt string
)

var clockInCmd = &cobra.Command{
	Use:   "clock-in <employee-id>",
	Short: "Record an arrival for an employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runClockIn,
}

var clockOutCmd = &cobra.Command{
	Use:   "clock-out <employee-id>",
	Short: "Record a departure for an employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runClockOut,
}

func init() {
	clockInCmd.Flags().StringVar(&clockInAt, "at", "", "Timestamp (RFC3339, default now)")
	clockOutCmd.Flags().StringVar(&clockOutAt, "at", "", "Timestamp (RFC3339, default now)")
}

func runClockIn(cmd *cobra.Command, args []string) error {
	return runClock(args[0], clockInAt, func(engine *timekeeping.Engine, id timekeeping.EmployeeID, ts time.Time) (*timekeeping.AttendanceRecord, error) {
		return engine.ClockIn(context.Background(), id, ts)
	})
}

func runClockOut(cmd *cobra.Command, args []string) error {
	return runClock(args[0], clockOutAt, func(engine *timekeeping.Engine, id timekeeping.EmployeeID, ts time.Time) (*timekeeping.AttendanceRecord, error) {
		return engine.ClockOut(context.Background(), id, ts)
	})
}

func runClock(employeeID, at string, op func(*timekeeping.Engine, timekeeping.EmployeeID, time.Time) (*timekeeping.AttendanceRecord, error)) error {
	ts, err := parseTimestamp(at)
	if err != nil {
		return fmt.Errorf("invalid --at timestamp: %w", err)
	}

	store, loc, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	record, err := op(newEngine(store, loc), timekeeping.EmployeeID(employeeID), ts)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s: %s", record.EmployeeID, record.Day, record.Status)
	if record.Notes != "" {
		fmt.Printf(" (%s)", record.Notes)
	}
	fmt.Println()
	return nil
}

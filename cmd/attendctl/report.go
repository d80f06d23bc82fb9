package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/timekeeping"
)

var (
	reportFrom string
	reportTo   string
)

var reportCmd = &cobra.Command{
	Use:   "report <employee-id>",
	Short: "Roll up attendance for an employee over a date range",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date (YYYY-MM-DD)")
	reportCmd.MarkFlagRequired("from")
	reportCmd.MarkFlagRequired("to")
}

func runReport(cmd *cobra.Command, args []string) error {
	from, err := timekeeping.ParseDay(reportFrom)
	if err != nil {
		return err
	}
	to, err := timekeeping.ParseDay(reportTo)
	if err != nil {
		return err
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	reporter := &timekeeping.Reporter{Ledger: store}
	summary, err := reporter.Summarize(context.Background(), timekeeping.EmployeeID(args[0]), from, to)
	if err != nil {
		return err
	}

	fmt.Printf("Attendance for %s, %s .. %s\n", summary.EmployeeID, summary.From, summary.To)
	fmt.Printf("  recorded:    %d days\n", summary.DaysRecorded)
	fmt.Printf("  present:     %d\n", summary.DaysPresent)
	fmt.Printf("  late:        %d (%d minutes total)\n", summary.DaysLate, summary.TotalLateMinutes)
	fmt.Printf("  short-time:  %d (%d minutes total)\n", summary.DaysShortTime, summary.TotalShortTimeMinutes)
	fmt.Printf("  absent:      %d\n", summary.DaysAbsent)
	fmt.Printf("  worked:      %s hours\n", summary.WorkedHours.StringFixed(2))
	fmt.Printf("  late rate:   %s\n", summary.LatenessRate.StringFixed(4))
	return nil
}

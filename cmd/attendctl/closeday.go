package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/timekeeping"
)

var closeDayDate string

var closeDayCmd = &cobra.Command{
	Use:   "close-day",
	Short: "Run the end-of-day absent batch for one day",
	RunE:  runCloseDay,
}

func init() {
	closeDayCmd.Flags().StringVar(&closeDayDate, "date", "", "Day to close (YYYY-MM-DD)")
	closeDayCmd.MarkFlagRequired("date")
}

func runCloseDay(cmd *cobra.Command, args []string) error {
	day, err := timekeeping.ParseDay(closeDayDate)
	if err != nil {
		return err
	}

	store, loc, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	closer := api.NewDayCloser(store, loc)
	result, err := closer.CloseDay(context.Background(), day)
	if err != nil {
		return err
	}

	fmt.Printf("Closed %s: %d marked absent, %d exempt\n", day, result.MarkedAbsent, result.SkippedExempt)
	return nil
}

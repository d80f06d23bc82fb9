// attendctl is an operations CLI for the attendance engine: clock events,
// reports, day closing, and demo seeding against a SQLite database.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/store/sqlite"
	"github.com/warp/attendance-engine/timekeeping"
)

var (
	flagDB string
	flagTZ string
)

var rootCmd = &cobra.Command{
	Use:   "attendctl",
	Short: "Attendance engine operations CLI",
	Long: `attendctl operates directly on an attendance-engine SQLite database:
record clock events, roll up attendance reports, close days, and seed
demo data.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "attendance.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagTZ, "tz", "UTC", "IANA timezone for day truncation")

	rootCmd.AddCommand(clockInCmd)
	rootCmd.AddCommand(clockOutCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(closeDayCmd)
	rootCmd.AddCommand(seedCmd)
}

func openStore() (*sqlite.Store, *time.Location, error) {
	loc, err := time.LoadLocation(flagTZ)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid timezone %q: %w", flagTZ, err)
	}
	store, err := sqlite.New(flagDB, loc)
	if err != nil {
		return nil, nil, err
	}
	return store, loc, nil
}

func newEngine(store *sqlite.Store, loc *time.Location) *timekeeping.Engine {
	engine := timekeeping.NewEngine(store, store, store, store)
	engine.Location = loc
	return engine
}

// parseTimestamp accepts an empty string (meaning "now") or RFC3339.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

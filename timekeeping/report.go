/*
report.go - Period attendance summaries

PURPOSE:
  Rolls a date range of attendance records up into the numbers payroll
  and managers consume: day counts per status, accumulated late and
  short-time minutes, total worked hours, and a lateness rate.

PRECISION:
  Worked hours and rates are computed in decimal.Decimal. Minutes divided
  by 60 do not round-trip through float64, so 7h50m stays exactly 7.83
  at two places instead of accumulating binary error across a month.
*/
package timekeeping

import (
	"context"

	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// Summary is the attendance roll-up for one employee over [From, To].
type Summary struct {
	EmployeeID EmployeeID
	From       Day
	To         Day

	DaysRecorded  int
	DaysPresent   int
	DaysLate      int
	DaysShortTime int
	DaysAbsent    int
	DaysPending   int

	TotalLateMinutes      int
	TotalShortTimeMinutes int

	// WorkedHours is the sum of clock-out minus clock-in across completed
	// records, in hours at two decimal places.
	WorkedHours decimal.Decimal

	// LatenessRate is DaysLate / DaysRecorded at four decimal places.
	// Zero when no days are recorded.
	LatenessRate decimal.Decimal
}

// Reporter computes summaries from the attendance ledger.
type Reporter struct {
	Ledger Ledger
}

// Summarize rolls up an employee's records for from <= day <= to.
func (r *Reporter) Summarize(ctx context.Context, employeeID EmployeeID, from, to Day) (*Summary, error) {
	records, err := r.Ledger.ListRecords(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		EmployeeID:   employeeID,
		From:         from,
		To:           to,
		WorkedHours:  decimal.Zero,
		LatenessRate: decimal.Zero,
	}

	workedMinutes := decimal.Zero
	for _, rec := range records {
		s.DaysRecorded++
		switch rec.Status {
		case StatusPresent:
			s.DaysPresent++
		case StatusLate:
			s.DaysLate++
		case StatusShortTime:
			s.DaysShortTime++
		case StatusAbsent:
			s.DaysAbsent++
		case StatusPending:
			s.DaysPending++
		}

		s.TotalLateMinutes += rec.LateMinutes
		s.TotalShortTimeMinutes += rec.ShortTimeMinutes

		if rec.ClockIn != nil && rec.ClockOut != nil {
			minutes := int64(rec.ClockOut.Sub(*rec.ClockIn).Minutes())
			workedMinutes = workedMinutes.Add(decimal.NewFromInt(minutes))
		}
	}

	s.WorkedHours = workedMinutes.Div(minutesPerHour).Round(2)
	if s.DaysRecorded > 0 {
		s.LatenessRate = decimal.NewFromInt(int64(s.DaysLate)).
			Div(decimal.NewFromInt(int64(s.DaysRecorded))).Round(4)
	}
	return s, nil
}

package timekeeping

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DAY - Calendar-day key (timestamp truncated to local midnight)
// =============================================================================

// Day is a calendar-day key. Every date-range comparison in the engine,
// guard, and resolver goes through this type so that local-midnight
// truncation happens in exactly one place.
type Day struct {
	t time.Time
}

// NewDay constructs a day key directly from calendar components (UTC).
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates a timestamp to its calendar day in the given location.
// A nil location means UTC.
func DayOf(ts time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	local := ts.In(loc)
	return Day{t: time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)}
}

// ParseDay parses a "2006-01-02" date string into a day key.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Day{t: t}, nil
}

// compare orders two days by calendar date. Day values reach comparisons
// anchored in different locations (ParseDay anchors UTC, stores anchor
// their configured zone), so instants must not be compared directly: the
// same calendar date would order unequal across zones. The "2006-01-02"
// form sorts lexicographically in date order.
func (d Day) compare(other Day) int {
	return strings.Compare(d.String(), other.String())
}

// Comparison
func (d Day) Before(other Day) bool        { return d.compare(other) < 0 }
func (d Day) After(other Day) bool         { return d.compare(other) > 0 }
func (d Day) Equal(other Day) bool         { return d.compare(other) == 0 }
func (d Day) BeforeOrEqual(other Day) bool { return d.compare(other) <= 0 }
func (d Day) AfterOrEqual(other Day) bool  { return d.compare(other) >= 0 }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }
func (d Day) IsZero() bool          { return d.t.IsZero() }
func (d Day) Time() time.Time       { return d.t }

func (d Day) String() string { return d.t.Format("2006-01-02") }

// =============================================================================
// CLOCK TIME - Day-local "HH:MM" wall-clock time
// =============================================================================

// ClockTime is a day-local wall-clock time, as shift definitions express
// their start and end ("09:00", "22:30").
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses an "HH:MM" string.
func ParseClockTime(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: out of range", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// MustClockTime parses an "HH:MM" string and panics on failure.
// For configuration and test fixtures only.
func MustClockTime(s string) ClockTime {
	ct, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return ct
}

// On anchors the clock time onto a specific day, in that day's location.
func (ct ClockTime) On(d Day) time.Time {
	t := d.t
	return time.Date(t.Year(), t.Month(), t.Day(), ct.Hour, ct.Minute, 0, 0, t.Location())
}

func (ct ClockTime) String() string { return fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute) }

// =============================================================================
// WEEKDAYS - Rest-day parsing helpers
// =============================================================================

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday parses a weekday name ("Friday", case-insensitive).
func ParseWeekday(name string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q", name)
	}
	return wd, nil
}

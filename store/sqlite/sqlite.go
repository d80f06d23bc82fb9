/*
Package sqlite provides a SQLite-backed implementation of the timekeeping
storage interfaces.

PURPOSE:
  Implements EmployeeDirectory, ShiftCatalog, AssignmentStore, and Ledger
  using SQLite. In production the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  employees:          Read-only employee projections
  offboardings:       Termination effective dates (one per employee)
  leaves:             Leave-request windows with status
  shifts:             Immutable shift definitions
  shift_assignments:  Employee-to-shift date ranges with rest days
  attendance_records: The per-(employee, day) attendance ledger

CONCURRENCY:
  The PRIMARY KEY on attendance_records(employee_id, day) makes the
  clock-in check-then-create atomic: the losing writer of a race gets a
  constraint violation, surfaced as ErrDuplicateRecord. Updates match on
  the stored version column and fail stale writes with
  ErrConcurrentModification.

OVERLAP INVARIANT:
  SaveAssignment rejects a date range that intersects an existing
  assignment for the same employee, inside a transaction, so overlap can
  never be created through this store.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers don't
  block and crash recovery improves.

USAGE:
  store, err := sqlite.New("./data/attendance.db", time.UTC)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - timekeeping/store.go: interface definitions
  - timekeeping/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/timekeeping"
)

const dayFormat = "2006-01-02"

// Store implements all timekeeping storage interfaces using SQLite.
type Store struct {
	db  *sql.DB
	loc *time.Location
}

// New creates a SQLite store at the given path (":memory:" for in-memory).
// Days read back from the database are anchored in loc; nil means UTC.
func New(dbPath string, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.UTC
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// A :memory: database exists per connection; keep the pool at one
		// so every query sees the same data.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, loc: loc}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		hire_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS offboardings (
		employee_id TEXT PRIMARY KEY,
		effective_date TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_employee_status
		ON leaves(employee_id, status, start_date, end_date);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		shift_type TEXT NOT NULL,
		grace_minutes INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS shift_assignments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		shift_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		rest_days_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_employee
		ON shift_assignments(employee_id, start_date);

	-- CRITICAL: the composite primary key makes clock-in's
	-- check-then-create atomic. At most one record per (employee, day).
	CREATE TABLE IF NOT EXISTS attendance_records (
		employee_id TEXT NOT NULL,
		day TEXT NOT NULL,
		clock_in TEXT,
		clock_out TEXT,
		shift_id TEXT NOT NULL,
		status TEXT NOT NULL,
		late_minutes INTEGER NOT NULL DEFAULT 0,
		short_time_minutes INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (employee_id, day)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp timekeeping.Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email,
			hire_date = excluded.hire_date
	`, emp.ID, emp.Name, emp.Email, emp.HireDate.String(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id timekeeping.EmployeeID) (*timekeeping.Employee, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, hire_date FROM employees WHERE id = ?
	`, id)

	var emp timekeeping.Employee
	var hireDate string
	if err := row.Scan(&emp.ID, &emp.Name, &emp.Email, &hireDate); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	day, err := s.parseDay(hireDate)
	if err != nil {
		return nil, err
	}
	emp.HireDate = day
	return &emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]timekeeping.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, hire_date FROM employees ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var result []timekeeping.Employee
	for rows.Next() {
		var emp timekeeping.Employee
		var hireDate string
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Email, &hireDate); err != nil {
			return nil, err
		}
		day, err := s.parseDay(hireDate)
		if err != nil {
			return nil, err
		}
		emp.HireDate = day
		result = append(result, emp)
	}
	return result, rows.Err()
}

func (s *Store) SaveOffboarding(ctx context.Context, off timekeeping.Offboarding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offboardings (employee_id, effective_date) VALUES (?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET effective_date = excluded.effective_date
	`, off.EmployeeID, off.EffectiveDate.String())
	if err != nil {
		return fmt.Errorf("failed to save offboarding: %w", err)
	}
	return nil
}

func (s *Store) GetOffboarding(ctx context.Context, id timekeeping.EmployeeID) (*timekeeping.Offboarding, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT employee_id, effective_date FROM offboardings WHERE employee_id = ?
	`, id)

	var off timekeeping.Offboarding
	var effective string
	if err := row.Scan(&off.EmployeeID, &effective); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get offboarding: %w", err)
	}
	day, err := s.parseDay(effective)
	if err != nil {
		return nil, err
	}
	off.EffectiveDate = day
	return &off, nil
}

func (s *Store) SaveLeave(ctx context.Context, leave timekeeping.Leave) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaves (id, employee_id, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET start_date = excluded.start_date,
			end_date = excluded.end_date, status = excluded.status
	`, leave.ID, leave.EmployeeID, leave.StartDate.String(), leave.EndDate.String(), leave.Status)
	if err != nil {
		return fmt.Errorf("failed to save leave: %w", err)
	}
	return nil
}

func (s *Store) HasApprovedLeave(ctx context.Context, id timekeeping.EmployeeID, day timekeeping.Day) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM leaves
		WHERE employee_id = ? AND status = ? AND start_date <= ? AND end_date >= ?
	`, id, timekeeping.LeaveApproved, day.String(), day.String())

	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check leave: %w", err)
	}
	return count > 0, nil
}

// =============================================================================
// SHIFT CATALOG
// =============================================================================

func (s *Store) SaveShift(ctx context.Context, shift timekeeping.Shift) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts (id, name, start_time, end_time, shift_type, grace_minutes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			start_time = excluded.start_time, end_time = excluded.end_time,
			shift_type = excluded.shift_type, grace_minutes = excluded.grace_minutes
	`, shift.ID, shift.Name, shift.StartTime.String(), shift.EndTime.String(),
		shift.Type, shift.GraceMinutes)
	if err != nil {
		return fmt.Errorf("failed to save shift: %w", err)
	}
	return nil
}

func (s *Store) GetShift(ctx context.Context, id timekeeping.ShiftID) (*timekeeping.Shift, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, start_time, end_time, shift_type, grace_minutes
		FROM shifts WHERE id = ?
	`, id)
	shift, err := scanShift(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return shift, nil
}

func (s *Store) ListShifts(ctx context.Context) ([]timekeeping.Shift, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, start_time, end_time, shift_type, grace_minutes
		FROM shifts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var result []timekeeping.Shift
	for rows.Next() {
		shift, err := scanShift(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *shift)
	}
	return result, rows.Err()
}

func scanShift(scan func(...any) error) (*timekeeping.Shift, error) {
	var shift timekeeping.Shift
	var start, end string
	if err := scan(&shift.ID, &shift.Name, &start, &end, &shift.Type, &shift.GraceMinutes); err != nil {
		return nil, err
	}
	var err error
	if shift.StartTime, err = timekeeping.ParseClockTime(start); err != nil {
		return nil, err
	}
	if shift.EndTime, err = timekeeping.ParseClockTime(end); err != nil {
		return nil, err
	}
	return &shift, nil
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

func (s *Store) SaveAssignment(ctx context.Context, a timekeeping.ShiftAssignment) error {
	restDays, err := encodeRestDays(a.RestDays)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Overlap is a storage-level invariant: checked and inserted in one
	// transaction so concurrent saves cannot interleave.
	existing, err := s.queryAssignments(ctx, tx, a.EmployeeID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != a.ID && other.Overlaps(a) {
			return timekeeping.ErrOverlappingAssignment
		}
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO shift_assignments
		(id, employee_id, shift_id, start_date, end_date, rest_days_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.EmployeeID, a.ShiftID, a.StartDate.String(), nullDay(a.EndDate),
		restDays, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save assignment: %w", err)
	}
	return tx.Commit()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) GetAssignmentsByEmployee(ctx context.Context, id timekeeping.EmployeeID) ([]timekeeping.ShiftAssignment, error) {
	return s.queryAssignments(ctx, s.db, id)
}

func (s *Store) queryAssignments(ctx context.Context, db querier, id timekeeping.EmployeeID) ([]timekeeping.ShiftAssignment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, employee_id, shift_id, start_date, end_date, rest_days_json, created_at
		FROM shift_assignments WHERE employee_id = ? ORDER BY start_date
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var result []timekeeping.ShiftAssignment
	for rows.Next() {
		var a timekeeping.ShiftAssignment
		var start string
		var end sql.NullString
		var restDays, createdAt string
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ShiftID, &start, &end, &restDays, &createdAt); err != nil {
			return nil, err
		}
		if a.StartDate, err = s.parseDay(start); err != nil {
			return nil, err
		}
		if end.Valid {
			day, err := s.parseDay(end.String)
			if err != nil {
				return nil, err
			}
			a.EndDate = &day
		}
		if a.RestDays, err = decodeRestDays(restDays); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			a.CreatedAt = t
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// =============================================================================
// LEDGER
// =============================================================================

func (s *Store) CreateRecord(ctx context.Context, r timekeeping.AttendanceRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_records
		(employee_id, day, clock_in, clock_out, shift_id, status,
		 late_minutes, short_time_minutes, notes, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, r.EmployeeID, r.Day.String(), nullTime(r.ClockIn), nullTime(r.ClockOut),
		r.ShiftID, r.Status, r.LateMinutes, r.ShortTimeMinutes, r.Notes)
	if err != nil {
		if isUniqueConstraintError(err) {
			return timekeeping.ErrDuplicateRecord
		}
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

func (s *Store) UpdateRecord(ctx context.Context, r timekeeping.AttendanceRecord) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET clock_in = ?, clock_out = ?, shift_id = ?, status = ?,
		    late_minutes = ?, short_time_minutes = ?, notes = ?, version = version + 1
		WHERE employee_id = ? AND day = ? AND version = ?
	`, nullTime(r.ClockIn), nullTime(r.ClockOut), r.ShiftID, r.Status,
		r.LateMinutes, r.ShortTimeMinutes, r.Notes,
		r.EmployeeID, r.Day.String(), r.Version)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return timekeeping.ErrConcurrentModification
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, id timekeeping.EmployeeID, day timekeeping.Day) (*timekeeping.AttendanceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT employee_id, day, clock_in, clock_out, shift_id, status,
		       late_minutes, short_time_minutes, notes, version
		FROM attendance_records WHERE employee_id = ? AND day = ?
	`, id, day.String())
	record, err := s.scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

func (s *Store) ListRecords(ctx context.Context, id timekeeping.EmployeeID, from, to timekeeping.Day) ([]timekeeping.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, day, clock_in, clock_out, shift_id, status,
		       late_minutes, short_time_minutes, notes, version
		FROM attendance_records
		WHERE employee_id = ? AND day >= ? AND day <= ?
		ORDER BY day
	`, id, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var result []timekeeping.AttendanceRecord
	for rows.Next() {
		record, err := s.scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	return result, rows.Err()
}

func (s *Store) scanRecord(scan func(...any) error) (*timekeeping.AttendanceRecord, error) {
	var r timekeeping.AttendanceRecord
	var day string
	var clockIn, clockOut sql.NullString
	if err := scan(&r.EmployeeID, &day, &clockIn, &clockOut, &r.ShiftID, &r.Status,
		&r.LateMinutes, &r.ShortTimeMinutes, &r.Notes, &r.Version); err != nil {
		return nil, err
	}
	var err error
	if r.Day, err = s.parseDay(day); err != nil {
		return nil, err
	}
	if r.ClockIn, err = parseTime(clockIn); err != nil {
		return nil, err
	}
	if r.ClockOut, err = parseTime(clockOut); err != nil {
		return nil, err
	}
	return &r, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) parseDay(value string) (timekeeping.Day, error) {
	t, err := time.ParseInLocation(dayFormat, value, s.loc)
	if err != nil {
		return timekeeping.Day{}, fmt.Errorf("invalid stored date %q: %w", value, err)
	}
	return timekeeping.DayOf(t, s.loc), nil
}

func nullDay(d *timekeeping.Day) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func parseTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored timestamp %q: %w", v.String, err)
	}
	return &t, nil
}

func encodeRestDays(days []time.Weekday) (string, error) {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = d.String()
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("failed to encode rest days: %w", err)
	}
	return string(b), nil
}

func decodeRestDays(value string) ([]time.Weekday, error) {
	var names []string
	if err := json.Unmarshal([]byte(value), &names); err != nil {
		return nil, fmt.Errorf("failed to decode rest days: %w", err)
	}
	days := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		wd, err := timekeeping.ParseWeekday(n)
		if err != nil {
			return nil, err
		}
		days = append(days, wd)
	}
	return days, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

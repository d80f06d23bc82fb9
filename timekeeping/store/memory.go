// Package store provides in-memory implementations of the timekeeping
// storage interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/timekeeping"
)

// =============================================================================
// MEMORY STORE - Implements every timekeeping storage interface
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	employees    map[timekeeping.EmployeeID]timekeeping.Employee
	offboardings map[timekeeping.EmployeeID]timekeeping.Offboarding
	leaves       map[timekeeping.EmployeeID][]timekeeping.Leave
	shifts       map[timekeeping.ShiftID]timekeeping.Shift
	assignments  map[timekeeping.EmployeeID][]timekeeping.ShiftAssignment
	records      map[recordKey]timekeeping.AttendanceRecord
}

type recordKey struct {
	EmployeeID timekeeping.EmployeeID
	Day        string
}

func NewMemory() *Memory {
	return &Memory{
		employees:    make(map[timekeeping.EmployeeID]timekeeping.Employee),
		offboardings: make(map[timekeeping.EmployeeID]timekeeping.Offboarding),
		leaves:       make(map[timekeeping.EmployeeID][]timekeeping.Leave),
		shifts:       make(map[timekeeping.ShiftID]timekeeping.Shift),
		assignments:  make(map[timekeeping.EmployeeID][]timekeeping.ShiftAssignment),
		records:      make(map[recordKey]timekeeping.AttendanceRecord),
	}
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id timekeeping.EmployeeID) (*timekeeping.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (m *Memory) GetOffboarding(_ context.Context, id timekeeping.EmployeeID) (*timekeeping.Offboarding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	off, ok := m.offboardings[id]
	if !ok {
		return nil, nil
	}
	return &off, nil
}

func (m *Memory) HasApprovedLeave(_ context.Context, id timekeeping.EmployeeID, day timekeeping.Day) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.leaves[id] {
		if l.Status == timekeeping.LeaveApproved && l.Covers(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]timekeeping.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]timekeeping.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SaveEmployee(_ context.Context, emp timekeeping.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) SaveOffboarding(_ context.Context, off timekeeping.Offboarding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offboardings[off.EmployeeID] = off
	return nil
}

func (m *Memory) SaveLeave(_ context.Context, leave timekeeping.Leave) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves[leave.EmployeeID] = append(m.leaves[leave.EmployeeID], leave)
	return nil
}

// =============================================================================
// SHIFT CATALOG
// =============================================================================

func (m *Memory) GetShift(_ context.Context, id timekeeping.ShiftID) (*timekeeping.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	shift, ok := m.shifts[id]
	if !ok {
		return nil, nil
	}
	return &shift, nil
}

func (m *Memory) ListShifts(_ context.Context) ([]timekeeping.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]timekeeping.Shift, 0, len(m.shifts))
	for _, s := range m.shifts {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SaveShift(_ context.Context, shift timekeeping.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[shift.ID] = shift
	return nil
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

func (m *Memory) SaveAssignment(_ context.Context, assignment timekeeping.ShiftAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.assignments[assignment.EmployeeID]
	for _, existing := range list {
		if existing.ID != assignment.ID && existing.Overlaps(assignment) {
			return timekeeping.ErrOverlappingAssignment
		}
	}
	// Same ID replaces in place, matching the SQLite primary key.
	for i := range list {
		if list[i].ID == assignment.ID {
			list[i] = assignment
			return nil
		}
	}
	m.assignments[assignment.EmployeeID] = append(list, assignment)
	return nil
}

func (m *Memory) GetAssignmentsByEmployee(_ context.Context, id timekeeping.EmployeeID) ([]timekeeping.ShiftAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]timekeeping.ShiftAssignment, len(m.assignments[id]))
	copy(result, m.assignments[id])
	return result, nil
}

// =============================================================================
// LEDGER - Atomic create, optimistic update
// =============================================================================

func (m *Memory) GetRecord(_ context.Context, id timekeeping.EmployeeID, day timekeeping.Day) (*timekeeping.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[recordKey{EmployeeID: id, Day: day.String()}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) CreateRecord(_ context.Context, record timekeeping.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := recordKey{EmployeeID: record.EmployeeID, Day: record.Day.String()}
	if _, exists := m.records[k]; exists {
		return timekeeping.ErrDuplicateRecord
	}
	record.Version = 0
	m.records[k] = record
	return nil
}

func (m *Memory) UpdateRecord(_ context.Context, record timekeeping.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := recordKey{EmployeeID: record.EmployeeID, Day: record.Day.String()}
	current, exists := m.records[k]
	if !exists || current.Version != record.Version {
		return timekeeping.ErrConcurrentModification
	}
	record.Version++
	m.records[k] = record
	return nil
}

func (m *Memory) ListRecords(_ context.Context, id timekeeping.EmployeeID, from, to timekeeping.Day) ([]timekeeping.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []timekeeping.AttendanceRecord
	for _, rec := range m.records {
		if rec.EmployeeID == id && from.BeforeOrEqual(rec.Day) && rec.Day.BeforeOrEqual(to) {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day.Before(result[j].Day) })
	return result, nil
}

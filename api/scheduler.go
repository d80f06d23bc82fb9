/*
scheduler.go - End-of-day absent batch

PURPOSE:
  The engine only ever writes pending/present/late/short_time; "absent"
  is assigned here, by a batch that closes each day after it ends. For
  every employee with an assignment in force on the closed day who never
  clocked in - and who was not terminated, on approved leave, or on a
  rest day - an absent record is written.

DESIGN:
  - CloseDay(day) is the batch itself, callable directly (admin endpoint,
    attendctl) for reruns.
  - DayCloser.Start runs a background goroutine that closes yesterday
    once per check interval. Reruns are harmless: existing records are
    never touched (create-only, duplicate creates skipped).

SEE ALSO:
  - handlers.go: manual trigger endpoint
  - timekeeping/engine.go: the statuses the engine itself writes
*/
package api

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/warp/attendance-engine/timekeeping"
)

// DayCloser marks absent days after they end.
type DayCloser struct {
	Store         Store
	Location      *time.Location
	CheckInterval time.Duration

	resolver *timekeeping.AssignmentResolver
	ticker   *time.Ticker
	stop     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// CloseDayResult reports what one batch run did.
type CloseDayResult struct {
	MarkedAbsent  int
	SkippedExempt int
}

// NewDayCloser creates a closer over the given store.
func NewDayCloser(store Store, loc *time.Location) *DayCloser {
	if loc == nil {
		loc = time.UTC
	}
	return &DayCloser{
		Store:         store,
		Location:      loc,
		CheckInterval: 1 * time.Hour,
		resolver:      &timekeeping.AssignmentResolver{Assignments: store},
		stop:          make(chan struct{}),
	}
}

// Start begins the background loop. Each tick closes yesterday.
func (dc *DayCloser) Start() {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.ticker = time.NewTicker(dc.CheckInterval)
	dc.wg.Add(1)
	go dc.run()
	log.Printf("[DayCloser] Started with check interval: %v", dc.CheckInterval)
}

// Stop stops the background loop.
func (dc *DayCloser) Stop() {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.ticker != nil {
		dc.ticker.Stop()
		close(dc.stop)
		dc.wg.Wait()
		log.Println("[DayCloser] Stopped")
	}
}

func (dc *DayCloser) run() {
	defer dc.wg.Done()

	dc.closeYesterday()
	for {
		select {
		case <-dc.ticker.C:
			dc.closeYesterday()
		case <-dc.stop:
			return
		}
	}
}

func (dc *DayCloser) closeYesterday() {
	yesterday := timekeeping.DayOf(time.Now(), dc.Location).AddDays(-1)
	result, err := dc.CloseDay(context.Background(), yesterday)
	if err != nil {
		log.Printf("[DayCloser] Failed to close %s: %v", yesterday, err)
		return
	}
	if result.MarkedAbsent > 0 {
		log.Printf("[DayCloser] Closed %s: %d marked absent", yesterday, result.MarkedAbsent)
	}
}

// CloseDay writes absent records for the given day. Safe to rerun:
// existing records for the day are left untouched.
func (dc *DayCloser) CloseDay(ctx context.Context, day timekeeping.Day) (*CloseDayResult, error) {
	employees, err := dc.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	result := &CloseDayResult{}
	for _, emp := range employees {
		exempt, shiftID, err := dc.expectation(ctx, emp.ID, day)
		if err != nil {
			return nil, err
		}
		if exempt {
			result.SkippedExempt++
			continue
		}

		existing, err := dc.Store.GetRecord(ctx, emp.ID, day)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		record := timekeeping.AttendanceRecord{
			EmployeeID: emp.ID,
			Day:        day,
			ShiftID:    shiftID,
			Status:     timekeeping.StatusAbsent,
			Notes:      "Absent (no clock-in recorded)",
		}
		if err := dc.Store.CreateRecord(ctx, record); err != nil {
			// A clock-in raced the batch; their record wins.
			if errors.Is(err, timekeeping.ErrDuplicateRecord) {
				continue
			}
			return nil, err
		}
		result.MarkedAbsent++
	}
	return result, nil
}

// expectation decides whether the employee was expected to work the day,
// returning the shift they were assigned when they were.
func (dc *DayCloser) expectation(ctx context.Context, id timekeeping.EmployeeID, day timekeeping.Day) (exempt bool, shiftID timekeeping.ShiftID, err error) {
	off, err := dc.Store.GetOffboarding(ctx, id)
	if err != nil {
		return false, "", err
	}
	if off != nil && off.EffectiveDate.BeforeOrEqual(day) {
		return true, "", nil
	}

	onLeave, err := dc.Store.HasApprovedLeave(ctx, id, day)
	if err != nil {
		return false, "", err
	}
	if onLeave {
		return true, "", nil
	}

	assignment, err := dc.resolver.Resolve(ctx, id, day)
	if err != nil {
		if errors.Is(err, timekeeping.ErrAssignmentNotFound) {
			return true, "", nil
		}
		return false, "", err
	}
	if assignment.IsRestDay(day) {
		return true, "", nil
	}
	return false, assignment.ShiftID, nil
}

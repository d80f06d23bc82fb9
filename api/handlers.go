/*
handlers.go - HTTP API handlers for the attendance timekeeping service

PURPOSE:
  Exposes the timekeeping engine via REST. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Clock events:
    POST   /api/employees/{id}/clock-in            Record arrival
    POST   /api/employees/{id}/clock-out           Record departure

  Attendance:
    GET    /api/employees/{id}/attendance          Ledger entries in a range
    GET    /api/employees/{id}/attendance/summary  Period roll-up

  Reference data (seeding; the HR platform owns these elsewhere):
    GET/POST /api/shifts, GET /api/shifts/{id}
    POST     /api/assignments
    GET/POST /api/employees
    POST     /api/employees/{id}/offboarding
    POST     /api/employees/{id}/leaves

  Admin:
    POST   /api/admin/close-day                    Run the absent batch

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Business-rule rejections (rest day, already clocked in, ...)
  - 404: Missing employee/shift/assignment
  - 409: Conflicts (overlapping assignment, concurrent modification)
  - 500: Storage/internal errors

SEE ALSO:
  - dto.go:       request/response structures
  - server.go:    router setup and middleware
  - scheduler.go: automated end-of-day batch
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/attendance-engine/timekeeping"
)

// Store is the full persistence capability set the API layer needs. Both
// the SQLite store and the in-memory store satisfy it.
type Store interface {
	timekeeping.EmployeeDirectory
	timekeeping.ShiftCatalog
	timekeeping.AssignmentStore
	timekeeping.Ledger

	SaveEmployee(ctx context.Context, emp timekeeping.Employee) error
	SaveOffboarding(ctx context.Context, off timekeeping.Offboarding) error
	SaveLeave(ctx context.Context, leave timekeeping.Leave) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Engine   *timekeeping.Engine
	Reporter *timekeeping.Reporter
	Closer   *DayCloser
}

// NewHandler creates a handler with an engine wired onto the store.
func NewHandler(store Store, loc *time.Location) *Handler {
	engine := timekeeping.NewEngine(store, store, store, store)
	engine.Location = loc
	h := &Handler{
		Store:    store,
		Engine:   engine,
		Reporter: &timekeeping.Reporter{Ledger: store},
	}
	h.Closer = NewDayCloser(store, loc)
	return h
}

// =============================================================================
// CLOCK EVENT HANDLERS
// =============================================================================

// ClockIn records an arrival.
// POST /api/employees/{id}/clock-in
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clockEvent(w, r, h.Engine.ClockIn)
}

// ClockOut records a departure.
// POST /api/employees/{id}/clock-out
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clockEvent(w, r, h.Engine.ClockOut)
}

func (h *Handler) clockEvent(w http.ResponseWriter, r *http.Request,
	op func(context.Context, timekeeping.EmployeeID, time.Time) (*timekeeping.AttendanceRecord, error)) {

	employeeID := timekeeping.EmployeeID(chi.URLParam(r, "id"))

	var ts time.Time
	if r.ContentLength > 0 {
		var req ClockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
		if req.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, req.Timestamp)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid timestamp, want RFC3339", err)
				return
			}
			ts = parsed
		}
	}

	record, err := op(r.Context(), employeeID, ts)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(record))
}

// =============================================================================
// ATTENDANCE READ HANDLERS
// =============================================================================

// ListAttendance returns ledger entries for a date range.
// GET /api/employees/{id}/attendance?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID := timekeeping.EmployeeID(chi.URLParam(r, "id"))
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	records, err := h.Store.ListRecords(r.Context(), employeeID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
		return
	}

	dtos := make([]AttendanceRecordDTO, len(records))
	for i := range records {
		dtos[i] = toRecordDTO(&records[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSummary returns the period roll-up.
// GET /api/employees/{id}/attendance/summary?from=&to=
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	employeeID := timekeeping.EmployeeID(chi.URLParam(r, "id"))
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	summary, err := h.Reporter.Summarize(r.Context(), employeeID, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

func parseRange(w http.ResponseWriter, r *http.Request) (timekeeping.Day, timekeeping.Day, bool) {
	from, err := timekeeping.ParseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'from' date", err)
		return timekeeping.Day{}, timekeeping.Day{}, false
	}
	to, err := timekeeping.ParseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'to' date", err)
		return timekeeping.Day{}, timekeeping.Day{}, false
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "'to' must not precede 'from'", nil)
		return timekeeping.Day{}, timekeeping.Day{}, false
	}
	return from, to, true
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns all shift definitions.
// GET /api/shifts
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Store.ListShifts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}
	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetShift returns a single shift.
// GET /api/shifts/{id}
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	id := timekeeping.ShiftID(chi.URLParam(r, "id"))
	shift, err := h.Store.GetShift(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}
	if shift == nil {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*shift))
}

// CreateShift defines a shift.
// POST /api/shifts
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	start, err := timekeeping.ParseClockTime(req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_time", err)
		return
	}
	end, err := timekeeping.ParseClockTime(req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_time", err)
		return
	}
	shiftType := timekeeping.ShiftType(req.Type)
	if !shiftType.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid shift type", nil)
		return
	}
	if req.GraceMinutes < 0 {
		writeError(w, http.StatusBadRequest, "grace_minutes must be >= 0", nil)
		return
	}

	shift := timekeeping.Shift{
		ID:           timekeeping.ShiftID(req.ID),
		Name:         req.Name,
		StartTime:    start,
		EndTime:      end,
		Type:         shiftType,
		GraceMinutes: req.GraceMinutes,
	}
	if err := h.Store.SaveShift(r.Context(), shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(shift))
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// CreateAssignment binds an employee to a shift over a date range.
// POST /api/assignments
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.EmployeeID == "" || req.ShiftID == "" {
		writeError(w, http.StatusBadRequest, "id, employee_id, and shift_id are required", nil)
		return
	}
	startDate, err := timekeeping.ParseDay(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}

	assignment := timekeeping.ShiftAssignment{
		ID:         timekeeping.AssignmentID(req.ID),
		EmployeeID: timekeeping.EmployeeID(req.EmployeeID),
		ShiftID:    timekeeping.ShiftID(req.ShiftID),
		StartDate:  startDate,
		CreatedAt:  time.Now().UTC(),
	}
	if req.EndDate != nil {
		endDate, err := timekeeping.ParseDay(*req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		if endDate.Before(startDate) {
			writeError(w, http.StatusBadRequest, "end_date must not precede start_date", nil)
			return
		}
		assignment.EndDate = &endDate
	}
	for _, name := range req.RestDays {
		wd, err := timekeeping.ParseWeekday(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid rest day", err)
			return
		}
		assignment.RestDays = append(assignment.RestDays, wd)
	}

	// Referenced shift must exist before the assignment is usable.
	shift, err := h.Store.GetShift(r.Context(), assignment.ShiftID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check shift", err)
		return
	}
	if shift == nil {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}

	if err := h.Store.SaveAssignment(r.Context(), assignment); err != nil {
		if errors.Is(err, timekeeping.ErrOverlappingAssignment) {
			writeError(w, http.StatusConflict, "Assignment overlaps an existing assignment", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save assignment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssignmentDTO(assignment))
}

// =============================================================================
// EMPLOYEE / REFERENCE DATA HANDLERS
// =============================================================================

// ListEmployees returns all employee projections.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = EmployeeDTO{
			ID:       string(e.ID),
			Name:     e.Name,
			Email:    e.Email,
			HireDate: e.HireDate.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee registers an employee projection.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}
	hireDate, err := timekeeping.ParseDay(req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date", err)
		return
	}

	emp := timekeeping.Employee{
		ID:       timekeeping.EmployeeID(req.ID),
		Name:     req.Name,
		Email:    req.Email,
		HireDate: hireDate,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, EmployeeDTO{
		ID: req.ID, Name: req.Name, Email: req.Email, HireDate: hireDate.String(),
	})
}

// CreateOffboarding marks an employee terminated from a date on.
// POST /api/employees/{id}/offboarding
func (h *Handler) CreateOffboarding(w http.ResponseWriter, r *http.Request) {
	employeeID := timekeeping.EmployeeID(chi.URLParam(r, "id"))
	var req CreateOffboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	effective, err := timekeeping.ParseDay(req.EffectiveDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_date", err)
		return
	}

	off := timekeeping.Offboarding{EmployeeID: employeeID, EffectiveDate: effective}
	if err := h.Store.SaveOffboarding(r.Context(), off); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save offboarding", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"employee_id":    string(employeeID),
		"effective_date": effective.String(),
	})
}

// CreateLeave registers a leave window.
// POST /api/employees/{id}/leaves
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	employeeID := timekeeping.EmployeeID(chi.URLParam(r, "id"))
	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	startDate, err := timekeeping.ParseDay(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	endDate, err := timekeeping.ParseDay(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}
	if endDate.Before(startDate) {
		writeError(w, http.StatusBadRequest, "end_date must not precede start_date", nil)
		return
	}

	leave := timekeeping.Leave{
		ID:         req.ID,
		EmployeeID: employeeID,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     timekeeping.LeaveStatus(req.Status),
	}
	if leave.Status == "" {
		leave.Status = timekeeping.LeaveApproved
	}
	if err := h.Store.SaveLeave(r.Context(), leave); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// CloseDay runs the absent batch for one day.
// POST /api/admin/close-day
func (h *Handler) CloseDay(w http.ResponseWriter, r *http.Request) {
	var req CloseDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	day, err := timekeeping.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	result, err := h.Closer.CloseDay(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to close day", err)
		return
	}
	writeJSON(w, http.StatusOK, CloseDayResponse{
		Date:          day.String(),
		MarkedAbsent:  result.MarkedAbsent,
		SkippedExempt: result.SkippedExempt,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps core errors onto HTTP statuses. Rejection reasons
// are surfaced verbatim so the end user sees the specific rule violated.
func writeDomainError(w http.ResponseWriter, err error) {
	var rejection *timekeeping.RejectionError
	if errors.As(err, &rejection) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: rejection.Reason})
		return
	}
	if timekeeping.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if timekeeping.IsRetryable(err) {
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error", err)
}

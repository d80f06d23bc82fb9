/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/timekeeping"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ClockRequest is the optional body for clock-in/clock-out calls.
// An omitted or empty timestamp means "now".
type ClockRequest struct {
	Timestamp string `json:"timestamp,omitempty"`
}

// AttendanceRecordDTO represents one attendance ledger entry.
type AttendanceRecordDTO struct {
	EmployeeID       string  `json:"employee_id"`
	Date             string  `json:"date"`
	ClockIn          *string `json:"clock_in,omitempty"`
	ClockOut         *string `json:"clock_out,omitempty"`
	ShiftID          string  `json:"shift_id"`
	Status           string  `json:"status"`
	LateMinutes      int     `json:"late_minutes"`
	ShortTimeMinutes int     `json:"short_time_minutes"`
	Notes            string  `json:"notes"`
}

func toRecordDTO(r *timekeeping.AttendanceRecord) AttendanceRecordDTO {
	dto := AttendanceRecordDTO{
		EmployeeID:       string(r.EmployeeID),
		Date:             r.Day.String(),
		ShiftID:          string(r.ShiftID),
		Status:           string(r.Status),
		LateMinutes:      r.LateMinutes,
		ShortTimeMinutes: r.ShortTimeMinutes,
		Notes:            r.Notes,
	}
	if r.ClockIn != nil {
		s := r.ClockIn.Format(time.RFC3339)
		dto.ClockIn = &s
	}
	if r.ClockOut != nil {
		s := r.ClockOut.Format(time.RFC3339)
		dto.ClockOut = &s
	}
	return dto
}

// SummaryDTO represents a period attendance roll-up.
type SummaryDTO struct {
	EmployeeID            string `json:"employee_id"`
	From                  string `json:"from"`
	To                    string `json:"to"`
	DaysRecorded          int    `json:"days_recorded"`
	DaysPresent           int    `json:"days_present"`
	DaysLate              int    `json:"days_late"`
	DaysShortTime         int    `json:"days_short_time"`
	DaysAbsent            int    `json:"days_absent"`
	DaysPending           int    `json:"days_pending"`
	TotalLateMinutes      int    `json:"total_late_minutes"`
	TotalShortTimeMinutes int    `json:"total_short_time_minutes"`
	WorkedHours           string `json:"worked_hours"`
	LatenessRate          string `json:"lateness_rate"`
}

func toSummaryDTO(s *timekeeping.Summary) SummaryDTO {
	return SummaryDTO{
		EmployeeID:            string(s.EmployeeID),
		From:                  s.From.String(),
		To:                    s.To.String(),
		DaysRecorded:          s.DaysRecorded,
		DaysPresent:           s.DaysPresent,
		DaysLate:              s.DaysLate,
		DaysShortTime:         s.DaysShortTime,
		DaysAbsent:            s.DaysAbsent,
		DaysPending:           s.DaysPending,
		TotalLateMinutes:      s.TotalLateMinutes,
		TotalShortTimeMinutes: s.TotalShortTimeMinutes,
		WorkedHours:           s.WorkedHours.StringFixed(2),
		LatenessRate:          s.LatenessRate.StringFixed(4),
	}
}

// ShiftDTO represents a shift definition.
type ShiftDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Type         string `json:"type"`
	GraceMinutes int    `json:"grace_minutes"`
}

func toShiftDTO(s timekeeping.Shift) ShiftDTO {
	return ShiftDTO{
		ID:           string(s.ID),
		Name:         s.Name,
		StartTime:    s.StartTime.String(),
		EndTime:      s.EndTime.String(),
		Type:         string(s.Type),
		GraceMinutes: s.GraceMinutes,
	}
}

// CreateShiftRequest is the request to define a shift.
type CreateShiftRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Type         string `json:"type"`
	GraceMinutes int    `json:"grace_minutes"`
}

// CreateAssignmentRequest is the request to bind an employee to a shift.
type CreateAssignmentRequest struct {
	ID         string   `json:"id"`
	EmployeeID string   `json:"employee_id"`
	ShiftID    string   `json:"shift_id"`
	StartDate  string   `json:"start_date"`
	EndDate    *string  `json:"end_date,omitempty"`
	RestDays   []string `json:"rest_days"`
}

// AssignmentDTO represents a shift assignment.
type AssignmentDTO struct {
	ID         string   `json:"id"`
	EmployeeID string   `json:"employee_id"`
	ShiftID    string   `json:"shift_id"`
	StartDate  string   `json:"start_date"`
	EndDate    *string  `json:"end_date,omitempty"`
	RestDays   []string `json:"rest_days"`
}

func toAssignmentDTO(a timekeeping.ShiftAssignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:         string(a.ID),
		EmployeeID: string(a.EmployeeID),
		ShiftID:    string(a.ShiftID),
		StartDate:  a.StartDate.String(),
		RestDays:   make([]string, 0, len(a.RestDays)),
	}
	if a.EndDate != nil {
		s := a.EndDate.String()
		dto.EndDate = &s
	}
	for _, wd := range a.RestDays {
		dto.RestDays = append(dto.RestDays, wd.String())
	}
	return dto
}

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	HireDate string `json:"hire_date"`
}

// CreateEmployeeRequest is the request to register an employee projection.
type CreateEmployeeRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	HireDate string `json:"hire_date"`
}

// CreateOffboardingRequest marks an employee terminated from a date on.
type CreateOffboardingRequest struct {
	EffectiveDate string `json:"effective_date"`
}

// CreateLeaveRequest registers a leave window.
type CreateLeaveRequest struct {
	ID        string `json:"id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

// CloseDayRequest triggers the absent batch for a specific day.
type CloseDayRequest struct {
	Date string `json:"date"`
}

// CloseDayResponse reports what the batch did.
type CloseDayResponse struct {
	Date          string `json:"date"`
	MarkedAbsent  int    `json:"marked_absent"`
	SkippedExempt int    `json:"skipped_exempt"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

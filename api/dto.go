/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DATE FORMATS:
  Day-unit fields use "2006-01-02"; hour-unit fields use
  "2006-01-02T15:04". The handlers pick the parser from the presence
  of a 'T' in the value.

VALIDATION:
  Validation is done in handlers and the domain, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/leavetype.go: LeaveTypeJSON type
*/
package api

import (
	"time"

	"github.com/furkangemici/leave-management-system-sub000/factory"
	"github.com/furkangemici/leave-management-system-sub000/leave"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// DepartmentDTO represents a department in API responses.
type DepartmentDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	HireDate       string `json:"hire_date"`
	DailyWorkHours string `json:"daily_work_hours"`
	DepartmentID   string `json:"department_id"`
	IsActive       bool   `json:"is_active"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID             string  `json:"id,omitempty"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	HireDate       string  `json:"hire_date"` // YYYY-MM-DD
	DailyWorkHours float64 `json:"daily_work_hours"`
	DepartmentID   string  `json:"department_id"`
}

// LeaveTypeDTO wraps the factory schema for API responses.
type LeaveTypeDTO struct {
	factory.LeaveTypeJSON
}

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID               string `json:"id"`
	EmployeeID       string `json:"employee_id"`
	LeaveTypeID      string `json:"leave_type_id"`
	StartAt          string `json:"start_at"`
	EndAt            string `json:"end_at"`
	DurationHours    string `json:"duration_hours"`
	Status           string `json:"status"`
	NextApproverRole string `json:"next_approver_role,omitempty"`
	Reason           string `json:"reason,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// CreateLeaveRequestRequest is the request to submit a leave request.
type CreateLeaveRequestRequest struct {
	LeaveTypeID string `json:"leave_type_id"`
	StartAt     string `json:"start_at"` // YYYY-MM-DD or YYYY-MM-DDTHH:MM
	EndAt       string `json:"end_at"`
	Reason      string `json:"reason,omitempty"`
}

// DecisionRequest carries an approver's comments.
type DecisionRequest struct {
	Comments string `json:"comments,omitempty"`
}

// ApprovalRecordDTO represents one audit trail entry.
type ApprovalRecordDTO struct {
	ID         string `json:"id"`
	ApproverID string `json:"approver_id"`
	Action     string `json:"action"`
	Comments   string `json:"comments,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// BalanceDTO is the annual entitlement view.
type BalanceDTO struct {
	EmployeeID     string `json:"employee_id"`
	Year           int    `json:"year"`
	TotalHours     string `json:"total_hours"`
	UsedHours      string `json:"used_hours"`
	RemainingHours string `json:"remaining_hours"`
	CarriedHours   string `json:"carried_forward_hours"`
}

// TypeBalanceDTO is the per-leave-type balance view.
type TypeBalanceDTO struct {
	LeaveTypeID       string `json:"leave_type_id"`
	LeaveTypeName     string `json:"leave_type_name"`
	Unit              string `json:"unit"`
	RemainingHours    string `json:"remaining_hours"`
	RemainingDays     string `json:"remaining_days,omitempty"`
	MonthRequestsLeft int    `json:"month_requests_left,omitempty"`
	MonthHoursLeft    string `json:"month_hours_left,omitempty"`
}

// HolidayDTO represents a public holiday.
type HolidayDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsHalfDay bool   `json:"is_half_day"`
	IsActive  bool   `json:"is_active"`
}

// SprintDTO represents a sprint.
type SprintDTO struct {
	ID            string `json:"id"`
	DepartmentID  string `json:"department_id"`
	Name          string `json:"name"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DurationWeeks int    `json:"duration_weeks"`
}

// SprintImpactDTO is the capacity-impact report.
type SprintImpactDTO struct {
	SprintID       string         `json:"sprint_id,omitempty"`
	SprintName     string         `json:"sprint_name,omitempty"`
	WindowStart    string         `json:"window_start"`
	WindowEnd      string         `json:"window_end"`
	Rows           []ReportRowDTO `json:"rows"`
	TotalLossHours string         `json:"total_loss_hours"`
}

// ReportRowDTO is one row of the impact report.
type ReportRowDTO struct {
	EmployeeID       string `json:"employee_id"`
	EmployeeName     string `json:"employee_name"`
	LeaveTypeName    string `json:"leave_type_name"`
	LeaveStart       string `json:"leave_start"`
	LeaveEnd         string `json:"leave_end"`
	OverlappingHours string `json:"overlapping_hours"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

func formatPoint(tp leave.TimePoint) string {
	if tp.Granularity == leave.GranularityHour {
		return tp.Time.Format(dateTimeLayout)
	}
	return tp.Time.Format(dateLayout)
}

// parsePoint parses a day ("2006-01-02") or hour ("2006-01-02T15:04")
// value depending on its shape.
func parsePoint(s string) (leave.TimePoint, error) {
	if len(s) > len(dateLayout) {
		t, err := time.Parse(dateTimeLayout, s)
		if err != nil {
			return leave.TimePoint{}, err
		}
		return leave.TimePoint{Time: t.UTC(), Granularity: leave.GranularityHour}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return leave.TimePoint{}, err
	}
	return leave.DateOf(t), nil
}

func toEmployeeDTO(e leave.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:             e.ID,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Email:          e.Email,
		HireDate:       e.HireDate.Format(dateLayout),
		DailyWorkHours: e.DailyWorkHours.String(),
		DepartmentID:   e.DepartmentID,
		IsActive:       e.IsActive,
	}
}

func toRequestDTO(r leave.LeaveRequest) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		LeaveTypeID:      r.LeaveTypeID,
		StartAt:          formatPoint(r.StartAt),
		EndAt:            formatPoint(r.EndAt),
		DurationHours:    r.DurationHours.String(),
		Status:           string(r.Status),
		NextApproverRole: string(r.NextApproverRole),
		Reason:           r.Reason,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}
}

func toRequestDTOs(rs []leave.LeaveRequest) []LeaveRequestDTO {
	out := make([]LeaveRequestDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRequestDTO(r))
	}
	return out
}

func toApprovalDTOs(recs []leave.ApprovalRecord) []ApprovalRecordDTO {
	out := make([]ApprovalRecordDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ApprovalRecordDTO{
			ID:         rec.ID,
			ApproverID: rec.ApproverID,
			Action:     string(rec.Action),
			Comments:   rec.Comments,
			CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func toHolidayDTO(h leave.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:        h.ID,
		Name:      h.Name,
		StartDate: h.StartDate.Time.Format(dateLayout),
		EndDate:   h.EndDate.Time.Format(dateLayout),
		IsHalfDay: h.IsHalfDay,
		IsActive:  h.IsActive,
	}
}

func toSprintDTO(sp leave.Sprint) SprintDTO {
	return SprintDTO{
		ID:            sp.ID,
		DepartmentID:  sp.DepartmentID,
		Name:          sp.Name,
		StartDate:     sp.StartDate.Time.Format(dateLayout),
		EndDate:       sp.EndDate.Time.Format(dateLayout),
		DurationWeeks: sp.DurationWeeks,
	}
}

func toImpactDTO(im leave.SprintImpact) SprintImpactDTO {
	rows := make([]ReportRowDTO, 0, len(im.Rows))
	for _, row := range im.Rows {
		rows = append(rows, ReportRowDTO{
			EmployeeID:       row.EmployeeID,
			EmployeeName:     row.EmployeeName,
			LeaveTypeName:    row.LeaveTypeName,
			LeaveStart:       formatPoint(row.LeaveStart),
			LeaveEnd:         formatPoint(row.LeaveEnd),
			OverlappingHours: row.OverlappingHours.String(),
		})
	}
	return SprintImpactDTO{
		SprintID:       im.SprintID,
		SprintName:     im.SprintName,
		WindowStart:    formatPoint(im.WindowStart),
		WindowEnd:      formatPoint(im.WindowEnd),
		Rows:           rows,
		TotalLossHours: im.TotalLossHours.String(),
	}
}

/*
handlers.go - HTTP API handlers for the leave engine

PURPOSE:
  Exposes the leave engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                   List employees
    POST   /api/employees                   Create employee
    GET    /api/employees/{id}              Get employee details
    GET    /api/employees/{id}/balance      Annual entitlement balance
    GET    /api/employees/{id}/balances     Per-leave-type balances

  Requests:
    POST   /api/requests                    Submit a leave request
    GET    /api/requests/mine               Caller's own requests
    GET    /api/requests/inbox              Pending approvals for caller's roles
    GET    /api/requests/team               Approved leave in caller's department
    GET    /api/requests/company            Company-wide approved leave (HR/CEO)
    GET    /api/requests/{id}               Request details
    GET    /api/requests/{id}/history       Approval audit trail
    POST   /api/requests/{id}/approve       Approve pending step
    POST   /api/requests/{id}/reject        Reject
    POST   /api/requests/{id}/cancel        Cancel (owner)

  Reference data:
    GET/POST /api/departments, /api/leave-types, /api/holidays

  Sprints:
    GET    /api/sprints?department_id=      List sprints
    POST   /api/sprints                     Create sprint
    GET    /api/sprints/{id}/impact         Capacity-impact report
    POST   /api/sprints/plan                Run the planner now

  Reports:
    GET    /api/reports/impact?from=&to=    Capacity-impact over any window

  Admin:
    POST   /api/admin/entitlements?year=    Materialize entitlement rows

IDENTITY:
  No authentication layer; the acting principal is taken from the
  X-Employee-ID and X-Roles request headers and passed explicitly into
  the domain. An auth middleware would populate the same headers.

ERROR HANDLING:
  Domain errors map to HTTP statuses via the classification helpers:
  - 400: validation failures
  - 403: authorization failures
  - 404: missing entities
  - 409: concurrent modification conflicts
  - 500: everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/furkangemici/leave-management-system-sub000/factory"
	"github.com/furkangemici/leave-management-system-sub000/leave"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        leave.TxStore
	Lifecycle    *leave.Lifecycle
	Entitlements *leave.EntitlementManager
	Reporter     *leave.Reporter
	Planner      *leave.Planner
	Factory      *factory.LeaveTypeFactory
}

// NewHandler wires the domain services over the given store.
func NewHandler(store leave.TxStore, notifier leave.Notifier) *Handler {
	calendar := leave.NewCalendar(store)
	calc := leave.NewDurationCalculator(calendar)
	entitlements := leave.NewEntitlementManager(store)
	return &Handler{
		Store:        store,
		Lifecycle:    leave.NewLifecycle(store, entitlements, calc, calendar, notifier),
		Entitlements: entitlements,
		Reporter:     leave.NewReporter(store, calc),
		Planner:      leave.NewPlanner(store),
		Factory:      factory.NewLeaveTypeFactory(),
	}
}

// principalFrom reads the acting identity from the request headers.
func principalFrom(r *http.Request) (leave.Principal, bool) {
	id := r.Header.Get("X-Employee-ID")
	if id == "" {
		return leave.Principal{}, false
	}
	var roles []leave.Role
	for _, tok := range strings.Split(r.Header.Get("X-Roles"), ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			roles = append(roles, leave.Role(tok))
		}
	}
	return leave.Principal{EmployeeID: id, Roles: roles}, true
}

func requirePrincipal(w http.ResponseWriter, r *http.Request) (leave.Principal, bool) {
	p, ok := principalFrom(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "X-Employee-ID header is required", nil)
	}
	return p, ok
}

// =============================================================================
// DEPARTMENT HANDLERS
// =============================================================================

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Store.ListDepartments(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list departments", err)
		return
	}
	dtos := make([]DepartmentDTO, 0, len(departments))
	for _, d := range departments {
		dtos = append(dtos, DepartmentDTO(d))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req DepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Department name is required", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	d := leave.Department{ID: req.ID, Name: req.Name, IsActive: true}
	if err := h.Store.SaveDepartment(r.Context(), d); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DepartmentDTO(d))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employee, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if employee == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*employee))
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	hireDate, err := time.Parse(dateLayout, req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}
	if req.DailyWorkHours <= 0 {
		writeError(w, http.StatusBadRequest, "daily_work_hours must be positive", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	employee := leave.Employee{
		ID:             req.ID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		HireDate:       hireDate,
		DailyWorkHours: leave.Hours(req.DailyWorkHours),
		DepartmentID:   req.DepartmentID,
		IsActive:       true,
	}
	if err := h.Store.SaveEmployee(r.Context(), employee); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(employee))
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	year := time.Now().UTC().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	balance, err := h.Entitlements.Balance(r.Context(), chi.URLParam(r, "id"), year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{
		EmployeeID:     balance.EmployeeID,
		Year:           balance.Year,
		TotalHours:     balance.TotalHours.String(),
		UsedHours:      balance.UsedHours.String(),
		RemainingHours: balance.RemainingHours.String(),
		CarriedHours:   balance.CarriedForwardHours.String(),
	})
}

func (h *Handler) GetTypeBalances(w http.ResponseWriter, r *http.Request) {
	views, err := h.Entitlements.TypeBalances(r.Context(), chi.URLParam(r, "id"), time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]TypeBalanceDTO, 0, len(views))
	for _, v := range views {
		dtos = append(dtos, TypeBalanceDTO{
			LeaveTypeID:       v.LeaveTypeID,
			LeaveTypeName:     v.LeaveTypeName,
			Unit:              string(v.Unit),
			RemainingHours:    v.RemainingHours.String(),
			RemainingDays:     v.RemainingDays.String(),
			MonthRequestsLeft: v.MonthRequestsLeft,
			MonthHoursLeft:    v.MonthHoursLeft.String(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// LEAVE TYPE HANDLERS
// =============================================================================

func (h *Handler) ListLeaveTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListLeaveTypes(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leave types", err)
		return
	}
	dtos := make([]LeaveTypeDTO, 0, len(types))
	for _, lt := range types {
		dtos = append(dtos, LeaveTypeDTO{h.Factory.ToJSON(lt)})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	var req factory.LeaveTypeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	lt, err := h.Factory.FromJSON(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid leave type definition", err)
		return
	}
	if err := h.Store.SaveLeaveType(r.Context(), *lt); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, LeaveTypeDTO{h.Factory.ToJSON(*lt)})
}

// SeedLeaveTypes installs the standard catalog.
func (h *Handler) SeedLeaveTypes(w http.ResponseWriter, r *http.Request) {
	for _, lt := range h.Factory.Defaults() {
		if err := h.Store.SaveLeaveType(r.Context(), lt); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

// =============================================================================
// LEAVE REQUEST HANDLERS
// =============================================================================

func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req CreateLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := parsePoint(req.StartAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_at", err)
		return
	}
	end, err := parsePoint(req.EndAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_at", err)
		return
	}

	created, err := h.Lifecycle.Create(r.Context(), principal, leave.CreateRequestInput{
		LeaveTypeID: req.LeaveTypeID,
		StartAt:     start,
		EndAt:       end,
		Reason:      req.Reason,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(*created))
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.Lifecycle.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*req))
}

func (h *Handler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	requests, err := h.Lifecycle.ListMine(r.Context(), principal)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

func (h *Handler) Inbox(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	requests, err := h.Lifecycle.Inbox(r.Context(), principal)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

func (h *Handler) TeamLeaves(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	from, ok := fromParam(w, r)
	if !ok {
		return
	}
	requests, err := h.Lifecycle.TeamLeaves(r.Context(), principal, from)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

func (h *Handler) CompanyLeaves(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	from, ok := fromParam(w, r)
	if !ok {
		return
	}
	requests, err := h.Lifecycle.CompanyLeaves(r.Context(), principal, from)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(requests))
}

func fromParam(w http.ResponseWriter, r *http.Request) (leave.TimePoint, bool) {
	v := r.URL.Query().Get("from")
	if v == "" {
		return leave.Today(), true
	}
	tp, err := parsePoint(v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return leave.TimePoint{}, false
	}
	return tp, true
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Lifecycle.Approve)
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Lifecycle.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, p leave.Principal, id, comments string) (*leave.LeaveRequest, error)) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req DecisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	updated, err := fn(r.Context(), principal, chi.URLParam(r, "id"), req.Comments)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*updated))
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	updated, err := h.Lifecycle.Cancel(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(*updated))
}

func (h *Handler) RequestHistory(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	records, err := h.Lifecycle.History(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApprovalDTOs(records))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := time.Now().UTC().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}
	holidays, err := h.Store.HolidaysInRange(r.Context(), leave.StartOfYear(year), leave.EndOfYear(year))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := parsePoint(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end := start
	if req.EndDate != "" {
		end, err = parsePoint(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date before start_date", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	holiday := leave.Holiday{
		ID:        req.ID,
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		IsHalfDay: req.IsHalfDay,
		IsActive:  true,
	}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// =============================================================================
// SPRINT HANDLERS
// =============================================================================

func (h *Handler) ListSprints(w http.ResponseWriter, r *http.Request) {
	departmentID := r.URL.Query().Get("department_id")
	if departmentID == "" {
		writeError(w, http.StatusBadRequest, "department_id is required", nil)
		return
	}
	sprints, err := h.Store.ListSprintsByDepartment(r.Context(), departmentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sprints", err)
		return
	}
	dtos := make([]SprintDTO, 0, len(sprints))
	for _, sp := range sprints {
		dtos = append(dtos, toSprintDTO(sp))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateSprint(w http.ResponseWriter, r *http.Request) {
	var req SprintDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := parsePoint(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	end, err := parsePoint(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date before start_date", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	sprint := leave.Sprint{
		ID:            req.ID,
		DepartmentID:  req.DepartmentID,
		Name:          req.Name,
		StartDate:     start,
		EndDate:       end,
		DurationWeeks: req.DurationWeeks,
	}
	if err := h.Store.CreateSprint(r.Context(), sprint); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSprintDTO(sprint))
}

func (h *Handler) SprintImpact(w http.ResponseWriter, r *http.Request) {
	impact, err := h.Reporter.ForSprint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toImpactDTO(*impact))
}

// WindowImpact reports the company-wide leave impact over an arbitrary
// date window.
func (h *Handler) WindowImpact(w http.ResponseWriter, r *http.Request) {
	from, err := parsePoint(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return
	}
	to, err := parsePoint(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return
	}
	impact, err := h.Reporter.Generate(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toImpactDTO(*impact))
}

func (h *Handler) PlanSprints(w http.ResponseWriter, r *http.Request) {
	created, err := h.Planner.PlanAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Sprint planning failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// EnsureEntitlements materializes entitlement rows for all active
// employees for the given (or current) year.
func (h *Handler) EnsureEntitlements(w http.ResponseWriter, r *http.Request) {
	year := time.Now().UTC().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}
	ensured, err := h.Entitlements.EnsureYearForAll(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to ensure entitlements", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"ensured": ensured})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case leave.IsAuthorization(err):
		writeError(w, http.StatusForbidden, err.Error(), nil)
	case leave.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case leave.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

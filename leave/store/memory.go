// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/furkangemici/leave-management-system-sub000/leave"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type entKey struct {
	EmployeeID string
	Year       int
}

// memoryState holds all tables without locking. Memory adds the lock;
// the transactional view reuses the state while WithTx holds it.
type memoryState struct {
	departments  map[string]leave.Department
	employees    map[string]leave.Employee
	leaveTypes   map[string]leave.LeaveType
	requests     map[string]leave.LeaveRequest
	entitlements map[entKey]leave.LeaveEntitlement
	approvals    map[string][]leave.ApprovalRecord
	sprints      map[string]leave.Sprint
	holidays     map[string]leave.Holiday
}

func newMemoryState() *memoryState {
	return &memoryState{
		departments:  make(map[string]leave.Department),
		employees:    make(map[string]leave.Employee),
		leaveTypes:   make(map[string]leave.LeaveType),
		requests:     make(map[string]leave.LeaveRequest),
		entitlements: make(map[entKey]leave.LeaveEntitlement),
		approvals:    make(map[string][]leave.ApprovalRecord),
		sprints:      make(map[string]leave.Sprint),
		holidays:     make(map[string]leave.Holiday),
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.departments {
		c.departments[k] = v
	}
	for k, v := range s.employees {
		c.employees[k] = v
	}
	for k, v := range s.leaveTypes {
		c.leaveTypes[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.entitlements {
		c.entitlements[k] = v
	}
	for k, v := range s.approvals {
		c.approvals[k] = append([]leave.ApprovalRecord{}, v...)
	}
	for k, v := range s.sprints {
		c.sprints[k] = v
	}
	for k, v := range s.holidays {
		c.holidays[k] = v
	}
	return c
}

// --- Departments ---

func (s *memoryState) getDepartment(id string) (*leave.Department, error) {
	if d, ok := s.departments[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *memoryState) listDepartments(activeOnly bool) ([]leave.Department, error) {
	var out []leave.Department
	for _, d := range s.departments {
		if activeOnly && !d.IsActive {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryState) saveDepartment(d leave.Department) error {
	s.departments[d.ID] = d
	return nil
}

// --- Employees ---

func (s *memoryState) getEmployee(id string) (*leave.Employee, error) {
	if e, ok := s.employees[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *memoryState) listEmployees(activeOnly bool) ([]leave.Employee, error) {
	var out []leave.Employee
	for _, e := range s.employees {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryState) listEmployeesByDepartment(departmentID string) ([]leave.Employee, error) {
	var out []leave.Employee
	for _, e := range s.employees {
		if e.DepartmentID == departmentID && e.IsActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryState) saveEmployee(e leave.Employee) error {
	s.employees[e.ID] = e
	return nil
}

// --- Leave types ---

func (s *memoryState) getLeaveType(id string) (*leave.LeaveType, error) {
	if lt, ok := s.leaveTypes[id]; ok {
		return &lt, nil
	}
	return nil, nil
}

func (s *memoryState) listLeaveTypes(activeOnly bool) ([]leave.LeaveType, error) {
	var out []leave.LeaveType
	for _, lt := range s.leaveTypes {
		if activeOnly && !lt.IsActive {
			continue
		}
		out = append(out, lt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryState) saveLeaveType(lt leave.LeaveType) error {
	s.leaveTypes[lt.ID] = lt
	return nil
}

// --- Leave requests ---

func (s *memoryState) getRequest(id string) (*leave.LeaveRequest, error) {
	if r, ok := s.requests[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *memoryState) createRequest(r leave.LeaveRequest) error {
	if _, exists := s.requests[r.ID]; exists {
		return leave.ErrConflict
	}
	s.requests[r.ID] = r
	return nil
}

func (s *memoryState) updateRequest(r leave.LeaveRequest) error {
	if _, exists := s.requests[r.ID]; !exists {
		return leave.ErrRequestNotFound
	}
	s.requests[r.ID] = r
	return nil
}

func (s *memoryState) listRequestsByEmployee(employeeID string) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range s.requests {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryState) hasOverlappingRequest(employeeID string, from, to leave.TimePoint, excludeID string) (bool, error) {
	for _, r := range s.requests {
		if r.EmployeeID != employeeID || r.ID == excludeID || r.Status.Closed() {
			continue
		}
		if intersects(r, from, to) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryState) listRequestsPendingRole(roles []leave.Role) ([]leave.LeaveRequest, error) {
	wanted := make(map[leave.Role]bool, len(roles))
	for _, role := range roles {
		wanted[role] = true
	}
	var out []leave.LeaveRequest
	for _, r := range s.requests {
		if !r.Status.Terminal() && wanted[r.NextApproverRole] {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryState) listApprovedOverlapping(employeeIDs []string, from, to leave.TimePoint) ([]leave.LeaveRequest, error) {
	var wanted map[string]bool
	if employeeIDs != nil {
		wanted = make(map[string]bool, len(employeeIDs))
		for _, id := range employeeIDs {
			wanted[id] = true
		}
	}
	var out []leave.LeaveRequest
	for _, r := range s.requests {
		if r.Status != leave.StatusApproved {
			continue
		}
		if wanted != nil && !wanted[r.EmployeeID] {
			continue
		}
		if intersects(r, from, to) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (s *memoryState) listApprovedFrom(employeeIDs []string, from leave.TimePoint) ([]leave.LeaveRequest, error) {
	var wanted map[string]bool
	if employeeIDs != nil {
		wanted = make(map[string]bool, len(employeeIDs))
		for _, id := range employeeIDs {
			wanted[id] = true
		}
	}
	var out []leave.LeaveRequest
	for _, r := range s.requests {
		if r.Status != leave.StatusApproved {
			continue
		}
		if wanted != nil && !wanted[r.EmployeeID] {
			continue
		}
		if r.EndAt.Date().AfterOrEqual(from.Date()) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (s *memoryState) monthlyHourlyUsage(employeeID, leaveTypeID string, year int, month time.Month) (int, decimal.Decimal, error) {
	count := 0
	total := decimal.Zero
	for _, r := range s.requests {
		if r.EmployeeID != employeeID || r.LeaveTypeID != leaveTypeID || r.Status.Closed() {
			continue
		}
		if r.StartAt.Year() == year && r.StartAt.Month() == month {
			count++
			total = total.Add(r.DurationHours)
		}
	}
	return count, total, nil
}

func intersects(r leave.LeaveRequest, from, to leave.TimePoint) bool {
	return r.StartAt.Date().BeforeOrEqual(to.Date()) && r.EndAt.Date().AfterOrEqual(from.Date())
}

// --- Entitlements ---

func (s *memoryState) getEntitlement(employeeID string, year int) (*leave.LeaveEntitlement, error) {
	if le, ok := s.entitlements[entKey{employeeID, year}]; ok {
		return &le, nil
	}
	return nil, nil
}

func (s *memoryState) createEntitlement(le leave.LeaveEntitlement) error {
	k := entKey{le.EmployeeID, le.Year}
	if _, exists := s.entitlements[k]; exists {
		return leave.ErrConflict
	}
	s.entitlements[k] = le
	return nil
}

func (s *memoryState) updateEntitlement(le leave.LeaveEntitlement) error {
	k := entKey{le.EmployeeID, le.Year}
	if _, exists := s.entitlements[k]; !exists {
		return leave.ErrNoLeaveBalance
	}
	s.entitlements[k] = le
	return nil
}

func (s *memoryState) listEntitlementsByYear(year int) ([]leave.LeaveEntitlement, error) {
	var out []leave.LeaveEntitlement
	for k, le := range s.entitlements {
		if k.Year == year {
			out = append(out, le)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

// --- Approval history ---

func (s *memoryState) appendApproval(rec leave.ApprovalRecord) error {
	s.approvals[rec.LeaveRequestID] = append(s.approvals[rec.LeaveRequestID], rec)
	return nil
}

func (s *memoryState) listApprovals(leaveRequestID string) ([]leave.ApprovalRecord, error) {
	out := append([]leave.ApprovalRecord{}, s.approvals[leaveRequestID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- Sprints ---

func (s *memoryState) createSprint(sp leave.Sprint) error {
	if _, exists := s.sprints[sp.ID]; exists {
		return leave.ErrConflict
	}
	s.sprints[sp.ID] = sp
	return nil
}

func (s *memoryState) getSprint(id string) (*leave.Sprint, error) {
	if sp, ok := s.sprints[id]; ok {
		return &sp, nil
	}
	return nil, nil
}

func (s *memoryState) listSprintsByDepartment(departmentID string) ([]leave.Sprint, error) {
	var out []leave.Sprint
	for _, sp := range s.sprints {
		if sp.DepartmentID == departmentID {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *memoryState) latestSprint(departmentID string) (*leave.Sprint, error) {
	var latest *leave.Sprint
	for _, sp := range s.sprints {
		if sp.DepartmentID != departmentID {
			continue
		}
		sp := sp
		if latest == nil || sp.EndDate.After(latest.EndDate) {
			latest = &sp
		}
	}
	return latest, nil
}

// --- Holidays ---

func (s *memoryState) holidaysInRange(from, to leave.TimePoint) ([]leave.Holiday, error) {
	var out []leave.Holiday
	for _, h := range s.holidays {
		if !h.IsActive {
			continue
		}
		if h.StartDate.Date().BeforeOrEqual(to.Date()) && h.EndDate.Date().AfterOrEqual(from.Date()) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *memoryState) saveHoliday(h leave.Holiday) error {
	s.holidays[h.ID] = h
	return nil
}

// =============================================================================
// MEMORY - Locked public implementation of leave.Store
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	state *memoryState
}

func NewMemory() *Memory {
	return &Memory{state: newMemoryState()}
}

func (m *Memory) GetDepartment(_ context.Context, id string) (*leave.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getDepartment(id)
}

func (m *Memory) ListDepartments(_ context.Context, activeOnly bool) ([]leave.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listDepartments(activeOnly)
}

func (m *Memory) SaveDepartment(_ context.Context, d leave.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.saveDepartment(d)
}

func (m *Memory) GetEmployee(_ context.Context, id string) (*leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getEmployee(id)
}

func (m *Memory) ListEmployees(_ context.Context, activeOnly bool) ([]leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listEmployees(activeOnly)
}

func (m *Memory) ListEmployeesByDepartment(_ context.Context, departmentID string) ([]leave.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listEmployeesByDepartment(departmentID)
}

func (m *Memory) SaveEmployee(_ context.Context, e leave.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.saveEmployee(e)
}

func (m *Memory) GetLeaveType(_ context.Context, id string) (*leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getLeaveType(id)
}

func (m *Memory) ListLeaveTypes(_ context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listLeaveTypes(activeOnly)
}

func (m *Memory) SaveLeaveType(_ context.Context, lt leave.LeaveType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.saveLeaveType(lt)
}

func (m *Memory) GetRequest(_ context.Context, id string) (*leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getRequest(id)
}

func (m *Memory) CreateRequest(_ context.Context, r leave.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createRequest(r)
}

func (m *Memory) UpdateRequest(_ context.Context, r leave.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.updateRequest(r)
}

func (m *Memory) ListRequestsByEmployee(_ context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listRequestsByEmployee(employeeID)
}

func (m *Memory) HasOverlappingRequest(_ context.Context, employeeID string, from, to leave.TimePoint, excludeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.hasOverlappingRequest(employeeID, from, to, excludeID)
}

func (m *Memory) ListRequestsPendingRole(_ context.Context, roles []leave.Role) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listRequestsPendingRole(roles)
}

func (m *Memory) ListApprovedOverlapping(_ context.Context, employeeIDs []string, from, to leave.TimePoint) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listApprovedOverlapping(employeeIDs, from, to)
}

func (m *Memory) ListApprovedFrom(_ context.Context, employeeIDs []string, from leave.TimePoint) ([]leave.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listApprovedFrom(employeeIDs, from)
}

func (m *Memory) MonthlyHourlyUsage(_ context.Context, employeeID, leaveTypeID string, year int, month time.Month) (int, decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.monthlyHourlyUsage(employeeID, leaveTypeID, year, month)
}

func (m *Memory) GetEntitlement(_ context.Context, employeeID string, year int) (*leave.LeaveEntitlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getEntitlement(employeeID, year)
}

func (m *Memory) CreateEntitlement(_ context.Context, le leave.LeaveEntitlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createEntitlement(le)
}

func (m *Memory) UpdateEntitlement(_ context.Context, le leave.LeaveEntitlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.updateEntitlement(le)
}

func (m *Memory) ListEntitlementsByYear(_ context.Context, year int) ([]leave.LeaveEntitlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listEntitlementsByYear(year)
}

func (m *Memory) AppendApproval(_ context.Context, rec leave.ApprovalRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.appendApproval(rec)
}

func (m *Memory) ListApprovals(_ context.Context, leaveRequestID string) ([]leave.ApprovalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listApprovals(leaveRequestID)
}

func (m *Memory) CreateSprint(_ context.Context, sp leave.Sprint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createSprint(sp)
}

func (m *Memory) GetSprint(_ context.Context, id string) (*leave.Sprint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getSprint(id)
}

func (m *Memory) ListSprintsByDepartment(_ context.Context, departmentID string) ([]leave.Sprint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listSprintsByDepartment(departmentID)
}

func (m *Memory) LatestSprint(_ context.Context, departmentID string) (*leave.Sprint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.latestSprint(departmentID)
}

func (m *Memory) HolidaysInRange(_ context.Context, from, to leave.TimePoint) ([]leave.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.holidaysInRange(from, to)
}

func (m *Memory) SaveHoliday(_ context.Context, h leave.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.saveHoliday(h)
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn against the state under the write lock, simulated
// with a snapshot + rollback on error. Holding the lock for the whole
// closure serializes writers, which is what the domain's
// check-then-insert paths rely on.
func (tm *TxMemory) WithTx(_ context.Context, fn func(leave.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.state.clone()

	if err := fn(&txMemoryView{state: tm.state}); err != nil {
		tm.state = snapshot
		return err
	}
	return nil
}

// txMemoryView performs unlocked operations on behalf of WithTx, which
// already holds the write lock.
type txMemoryView struct {
	state *memoryState
}

func (tv *txMemoryView) GetDepartment(_ context.Context, id string) (*leave.Department, error) {
	return tv.state.getDepartment(id)
}

func (tv *txMemoryView) ListDepartments(_ context.Context, activeOnly bool) ([]leave.Department, error) {
	return tv.state.listDepartments(activeOnly)
}

func (tv *txMemoryView) SaveDepartment(_ context.Context, d leave.Department) error {
	return tv.state.saveDepartment(d)
}

func (tv *txMemoryView) GetEmployee(_ context.Context, id string) (*leave.Employee, error) {
	return tv.state.getEmployee(id)
}

func (tv *txMemoryView) ListEmployees(_ context.Context, activeOnly bool) ([]leave.Employee, error) {
	return tv.state.listEmployees(activeOnly)
}

func (tv *txMemoryView) ListEmployeesByDepartment(_ context.Context, departmentID string) ([]leave.Employee, error) {
	return tv.state.listEmployeesByDepartment(departmentID)
}

func (tv *txMemoryView) SaveEmployee(_ context.Context, e leave.Employee) error {
	return tv.state.saveEmployee(e)
}

func (tv *txMemoryView) GetLeaveType(_ context.Context, id string) (*leave.LeaveType, error) {
	return tv.state.getLeaveType(id)
}

func (tv *txMemoryView) ListLeaveTypes(_ context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	return tv.state.listLeaveTypes(activeOnly)
}

func (tv *txMemoryView) SaveLeaveType(_ context.Context, lt leave.LeaveType) error {
	return tv.state.saveLeaveType(lt)
}

func (tv *txMemoryView) GetRequest(_ context.Context, id string) (*leave.LeaveRequest, error) {
	return tv.state.getRequest(id)
}

func (tv *txMemoryView) CreateRequest(_ context.Context, r leave.LeaveRequest) error {
	return tv.state.createRequest(r)
}

func (tv *txMemoryView) UpdateRequest(_ context.Context, r leave.LeaveRequest) error {
	return tv.state.updateRequest(r)
}

func (tv *txMemoryView) ListRequestsByEmployee(_ context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return tv.state.listRequestsByEmployee(employeeID)
}

func (tv *txMemoryView) HasOverlappingRequest(_ context.Context, employeeID string, from, to leave.TimePoint, excludeID string) (bool, error) {
	return tv.state.hasOverlappingRequest(employeeID, from, to, excludeID)
}

func (tv *txMemoryView) ListRequestsPendingRole(_ context.Context, roles []leave.Role) ([]leave.LeaveRequest, error) {
	return tv.state.listRequestsPendingRole(roles)
}

func (tv *txMemoryView) ListApprovedOverlapping(_ context.Context, employeeIDs []string, from, to leave.TimePoint) ([]leave.LeaveRequest, error) {
	return tv.state.listApprovedOverlapping(employeeIDs, from, to)
}

func (tv *txMemoryView) ListApprovedFrom(_ context.Context, employeeIDs []string, from leave.TimePoint) ([]leave.LeaveRequest, error) {
	return tv.state.listApprovedFrom(employeeIDs, from)
}

func (tv *txMemoryView) MonthlyHourlyUsage(_ context.Context, employeeID, leaveTypeID string, year int, month time.Month) (int, decimal.Decimal, error) {
	return tv.state.monthlyHourlyUsage(employeeID, leaveTypeID, year, month)
}

func (tv *txMemoryView) GetEntitlement(_ context.Context, employeeID string, year int) (*leave.LeaveEntitlement, error) {
	return tv.state.getEntitlement(employeeID, year)
}

func (tv *txMemoryView) CreateEntitlement(_ context.Context, le leave.LeaveEntitlement) error {
	return tv.state.createEntitlement(le)
}

func (tv *txMemoryView) UpdateEntitlement(_ context.Context, le leave.LeaveEntitlement) error {
	return tv.state.updateEntitlement(le)
}

func (tv *txMemoryView) ListEntitlementsByYear(_ context.Context, year int) ([]leave.LeaveEntitlement, error) {
	return tv.state.listEntitlementsByYear(year)
}

func (tv *txMemoryView) AppendApproval(_ context.Context, rec leave.ApprovalRecord) error {
	return tv.state.appendApproval(rec)
}

func (tv *txMemoryView) ListApprovals(_ context.Context, leaveRequestID string) ([]leave.ApprovalRecord, error) {
	return tv.state.listApprovals(leaveRequestID)
}

func (tv *txMemoryView) CreateSprint(_ context.Context, sp leave.Sprint) error {
	return tv.state.createSprint(sp)
}

func (tv *txMemoryView) GetSprint(_ context.Context, id string) (*leave.Sprint, error) {
	return tv.state.getSprint(id)
}

func (tv *txMemoryView) ListSprintsByDepartment(_ context.Context, departmentID string) ([]leave.Sprint, error) {
	return tv.state.listSprintsByDepartment(departmentID)
}

func (tv *txMemoryView) LatestSprint(_ context.Context, departmentID string) (*leave.Sprint, error) {
	return tv.state.latestSprint(departmentID)
}

func (tv *txMemoryView) HolidaysInRange(_ context.Context, from, to leave.TimePoint) ([]leave.Holiday, error) {
	return tv.state.holidaysInRange(from, to)
}

func (tv *txMemoryView) SaveHoliday(_ context.Context, h leave.Holiday) error {
	return tv.state.saveHoliday(h)
}

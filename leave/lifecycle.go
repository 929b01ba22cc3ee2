/*
lifecycle.go - Leave request approval state machine

PURPOSE:
  Implements the full request lifecycle: creation with validation
  (range, overlap, balance, hourly caps), the multi-step approval
  chain, rejection with credit-back, and owner cancellation.

STATE MACHINE:
  PENDING_APPROVAL
    -> APPROVED_<ROLE>   (each non-final approver in chain order)
    -> APPROVED          (final approver; balance debited here)
  Any non-closed state -> REJECTED  (credit-back if already APPROVED)
  Any non-closed state -> CANCELLED (owner only; credit-back if APPROVED)

TRANSACTIONAL GUARANTEE:
  Every transition runs inside one store transaction: the status
  change, the entitlement debit/credit, and the history append commit
  together or not at all. The creation overlap check and insert share
  a transaction too, so two racing overlapping requests cannot both
  land; the loser surfaces ErrConflict or ErrOverlappingRequest.

HOURLY LEAVE RULES (hour-unit types that do not deduct from annual):
  - start and end on working days (no weekends, no holidays)
  - exactly 2 hours per request
  - at most 4 such requests per calendar month
  - at most 8 such hours per calendar month
  The count cap is checked before the hour cap.

SEE ALSO:
  - entitlement.go: the balance ledger debited/credited here
  - duration.go: working-time calculation for day-unit requests
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURLY LEAVE CAPS
// =============================================================================

var (
	hourlyExactHours   = decimal.NewFromInt(2)
	hourlyMonthlyHours = decimal.NewFromInt(8)
	hourlyMonthlyCount = 4
)

// =============================================================================
// LIFECYCLE SERVICE
// =============================================================================

// Lifecycle drives leave requests through the approval chain.
type Lifecycle struct {
	store        TxStore
	entitlements *EntitlementManager
	calc         *DurationCalculator
	calendar     *Calendar
	notifier     Notifier
	now          func() time.Time
}

func NewLifecycle(store TxStore, entitlements *EntitlementManager, calc *DurationCalculator, calendar *Calendar, notifier Notifier) *Lifecycle {
	return &Lifecycle{
		store:        store,
		entitlements: entitlements,
		calc:         calc,
		calendar:     calendar,
		notifier:     notifier,
		now:          time.Now,
	}
}

// CreateRequestInput carries the caller-supplied fields of a new request.
type CreateRequestInput struct {
	LeaveTypeID string
	StartAt     TimePoint
	EndAt       TimePoint
	Reason      string
}

// Create validates and persists a new leave request for the principal,
// entering it at the first role of the type's approval chain.
func (l *Lifecycle) Create(ctx context.Context, principal Principal, input CreateRequestInput) (*LeaveRequest, error) {
	employee, err := l.activeEmployee(ctx, l.store, principal.EmployeeID)
	if err != nil {
		return nil, err
	}

	lt, err := l.store.GetLeaveType(ctx, input.LeaveTypeID)
	if err != nil {
		return nil, err
	}
	if lt == nil || !lt.IsActive {
		return nil, ErrLeaveTypeNotFound
	}
	if lt.Workflow.IsEmpty() {
		return nil, ErrNoWorkflow
	}
	if input.EndAt.Before(input.StartAt) {
		return nil, ErrEndBeforeStart
	}

	var duration decimal.Decimal
	if lt.RequestUnit == UnitHour {
		duration, err = l.validateHourlyRange(ctx, input.StartAt, input.EndAt)
	} else {
		duration, err = l.calc.Calculate(ctx, input.StartAt, input.EndAt, employee.DailyWorkHours)
		if err == nil && !duration.IsPositive() {
			err = ErrZeroDuration
		}
	}
	if err != nil {
		return nil, err
	}

	// Advisory balance check outside the write transaction; the
	// authoritative debit re-checks at final approval.
	if lt.DeductsFromAnnual {
		if err := l.entitlements.CheckAvailable(ctx, *employee, input.StartAt.Year(), duration); err != nil {
			return nil, err
		}
	}

	req := LeaveRequest{
		ID:               uuid.NewString(),
		EmployeeID:       employee.ID,
		LeaveTypeID:      lt.ID,
		StartAt:          input.StartAt,
		EndAt:            input.EndAt,
		DurationHours:    duration,
		Status:           StatusPendingApproval,
		NextApproverRole: lt.Workflow.First(),
		Reason:           input.Reason,
		CreatedAt:        l.now().UTC(),
		UpdatedAt:        l.now().UTC(),
	}

	err = l.store.WithTx(ctx, func(s Store) error {
		overlap, err := s.HasOverlappingRequest(ctx, employee.ID, input.StartAt.Date(), input.EndAt.Date(), "")
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlappingRequest
		}
		if lt.RequestUnit == UnitHour && !lt.DeductsFromAnnual {
			if err := l.checkHourlyCaps(ctx, s, employee.ID, lt.ID, input.StartAt, duration); err != nil {
				return err
			}
		}
		return s.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	l.notifier.ApprovalRequested(ctx, req, req.NextApproverRole)
	return &req, nil
}

// validateHourlyRange enforces the shape rules of an hour-unit request
// and returns its elapsed-hours duration.
func (l *Lifecycle) validateHourlyRange(ctx context.Context, start, end TimePoint) (decimal.Decimal, error) {
	for _, day := range []TimePoint{start, end} {
		nonWorking, err := l.calendar.IsNonWorking(ctx, day)
		if err != nil {
			return decimal.Zero, err
		}
		if nonWorking {
			return decimal.Zero, ErrWeekendOrHoliday
		}
	}

	elapsed := decimal.NewFromFloat(end.Time.Sub(start.Time).Hours())
	if !elapsed.Equal(hourlyExactHours) {
		return decimal.Zero, &HourlyRuleError{
			Rule:    "exact_hours",
			Message: fmt.Sprintf("hourly leave must be exactly %s hours, got %s", hourlyExactHours, elapsed),
		}
	}
	return elapsed, nil
}

// checkHourlyCaps enforces the monthly count and hour caps, count first.
// Runs inside the creation transaction so racing requests cannot both
// slip under a cap.
func (l *Lifecycle) checkHourlyCaps(ctx context.Context, s Store, employeeID, leaveTypeID string, start TimePoint, duration decimal.Decimal) error {
	count, hours, err := s.MonthlyHourlyUsage(ctx, employeeID, leaveTypeID, start.Year(), start.Month())
	if err != nil {
		return err
	}
	if count >= hourlyMonthlyCount {
		return &HourlyRuleError{
			Rule:    "monthly_count_cap",
			Message: fmt.Sprintf("at most %d hourly leave requests per month, already have %d", hourlyMonthlyCount, count),
		}
	}
	if hours.Add(duration).GreaterThan(hourlyMonthlyHours) {
		return &HourlyRuleError{
			Rule:    "monthly_hour_cap",
			Message: fmt.Sprintf("at most %s hourly leave hours per month, %s already used", hourlyMonthlyHours, hours),
		}
	}
	return nil
}

// =============================================================================
// APPROVE
// =============================================================================

// Approve advances the request one step in its approval chain. The
// principal must hold the pending approver role. At the final step the
// request becomes APPROVED and, for annual-deducting types, the
// duration is debited from the employee's entitlement in the same
// transaction.
func (l *Lifecycle) Approve(ctx context.Context, principal Principal, requestID, comments string) (*LeaveRequest, error) {
	var (
		updated  LeaveRequest
		advanced Role
		next     Role
		final    bool
	)
	err := l.store.WithTx(ctx, func(s Store) error {
		req, lt, err := l.loadOpenRequest(ctx, s, requestID)
		if err != nil {
			return err
		}
		if req.Status == StatusApproved {
			return ErrAlreadyApproved
		}

		pending := req.NextApproverRole
		if !principal.HasRole(pending) {
			return &RoleMismatchError{Expected: pending, Held: principal.Roles}
		}
		var ok bool
		next, final, ok = lt.Workflow.Advance(pending)
		if !ok {
			return &RoleNotInWorkflowError{Role: pending}
		}
		advanced = pending

		if final {
			req.Status = StatusApproved
			req.NextApproverRole = ""
			if lt.DeductsFromAnnual {
				employee, err := l.activeEmployee(ctx, s, req.EmployeeID)
				if err != nil {
					return err
				}
				if err := l.entitlements.Debit(ctx, s, *employee, req.StartAt.Year(), req.DurationHours); err != nil {
					return err
				}
			}
		} else {
			req.Status = StageApproved(pending)
			req.NextApproverRole = next
		}
		req.UpdatedAt = l.now().UTC()

		if err := s.UpdateRequest(ctx, *req); err != nil {
			return err
		}
		if err := s.AppendApproval(ctx, ApprovalRecord{
			ID:             uuid.NewString(),
			LeaveRequestID: req.ID,
			ApproverID:     principal.EmployeeID,
			Action:         req.Status,
			Comments:       comments,
			CreatedAt:      l.now().UTC(),
		}); err != nil {
			return err
		}
		updated = *req
		return nil
	})
	if err != nil {
		return nil, err
	}

	if final {
		l.notifier.Finalized(ctx, updated)
	} else {
		l.notifier.Progressed(ctx, updated, advanced, next)
	}
	return &updated, nil
}

// =============================================================================
// REJECT
// =============================================================================

// Reject closes the request as REJECTED. For pending or intermediate
// requests the principal must hold the pending approver role. Fully
// APPROVED requests can be rejected after the fact without a role
// match; the debited hours are credited back then.
func (l *Lifecycle) Reject(ctx context.Context, principal Principal, requestID, comments string) (*LeaveRequest, error) {
	var updated LeaveRequest
	err := l.store.WithTx(ctx, func(s Store) error {
		req, lt, err := l.loadOpenRequest(ctx, s, requestID)
		if err != nil {
			return err
		}

		if req.Status != StatusApproved {
			pending := req.NextApproverRole
			if !principal.HasRole(pending) {
				return &RoleMismatchError{Expected: pending, Held: principal.Roles}
			}
			if lt.Workflow.IndexOf(pending) < 0 {
				return &RoleNotInWorkflowError{Role: pending}
			}
		} else if lt.DeductsFromAnnual {
			if err := l.entitlements.Credit(ctx, s, req.EmployeeID, req.StartAt.Year(), req.DurationHours); err != nil {
				return err
			}
		}

		req.Status = StatusRejected
		req.NextApproverRole = ""
		req.UpdatedAt = l.now().UTC()
		if err := s.UpdateRequest(ctx, *req); err != nil {
			return err
		}
		if err := s.AppendApproval(ctx, ApprovalRecord{
			ID:             uuid.NewString(),
			LeaveRequestID: req.ID,
			ApproverID:     principal.EmployeeID,
			Action:         StatusRejected,
			Comments:       comments,
			CreatedAt:      l.now().UTC(),
		}); err != nil {
			return err
		}
		updated = *req
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.notifier.Finalized(ctx, updated)
	return &updated, nil
}

// =============================================================================
// CANCEL
// =============================================================================

// Cancel closes the request as CANCELLED. Only the owning employee may
// cancel. Cancelling an APPROVED annual-deducting request credits the
// hours back. Cancellation writes no history row; the audit trail
// records approval decisions only.
func (l *Lifecycle) Cancel(ctx context.Context, principal Principal, requestID string) (*LeaveRequest, error) {
	var updated LeaveRequest
	err := l.store.WithTx(ctx, func(s Store) error {
		req, lt, err := l.loadOpenRequest(ctx, s, requestID)
		if err != nil {
			return err
		}
		if req.EmployeeID != principal.EmployeeID {
			return ErrNotAuthorized
		}

		if req.Status == StatusApproved && lt.DeductsFromAnnual {
			if err := l.entitlements.Credit(ctx, s, req.EmployeeID, req.StartAt.Year(), req.DurationHours); err != nil {
				return err
			}
		}

		req.Status = StatusCancelled
		req.NextApproverRole = ""
		req.UpdatedAt = l.now().UTC()
		if err := s.UpdateRequest(ctx, *req); err != nil {
			return err
		}
		updated = *req
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.notifier.Finalized(ctx, updated)
	return &updated, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Get returns a single request by id.
func (l *Lifecycle) Get(ctx context.Context, id string) (*LeaveRequest, error) {
	req, err := l.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// ListMine returns the principal's own requests, newest first.
func (l *Lifecycle) ListMine(ctx context.Context, principal Principal) ([]LeaveRequest, error) {
	return l.store.ListRequestsByEmployee(ctx, principal.EmployeeID)
}

// Inbox returns the requests waiting on any of the principal's roles,
// oldest first. Requests pending the MANAGER role are scoped to the
// manager's own department; HR and CEO steps are company-wide.
func (l *Lifecycle) Inbox(ctx context.Context, principal Principal) ([]LeaveRequest, error) {
	if len(principal.Roles) == 0 {
		return nil, nil
	}
	pending, err := l.store.ListRequestsPendingRole(ctx, principal.Roles)
	if err != nil {
		return nil, err
	}

	approver, err := l.activeEmployee(ctx, l.store, principal.EmployeeID)
	if err != nil {
		return nil, err
	}

	out := make([]LeaveRequest, 0, len(pending))
	for _, req := range pending {
		if req.NextApproverRole == RoleManager {
			requester, err := l.store.GetEmployee(ctx, req.EmployeeID)
			if err != nil {
				return nil, err
			}
			if requester == nil || requester.DepartmentID != approver.DepartmentID {
				continue
			}
		}
		out = append(out, req)
	}
	return out, nil
}

// History returns the request's approval records in order. Visible to
// the owning employee and to HR/CEO principals.
func (l *Lifecycle) History(ctx context.Context, principal Principal, requestID string) ([]ApprovalRecord, error) {
	req, err := l.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.EmployeeID != principal.EmployeeID && !principal.HasAnyRole(RoleHR, RoleCEO) {
		return nil, ErrNotAuthorized
	}
	return l.store.ListApprovals(ctx, requestID)
}

// TeamLeaves returns the approved leaves of the principal's department
// still running at or after from.
func (l *Lifecycle) TeamLeaves(ctx context.Context, principal Principal, from TimePoint) ([]LeaveRequest, error) {
	employee, err := l.activeEmployee(ctx, l.store, principal.EmployeeID)
	if err != nil {
		return nil, err
	}
	colleagues, err := l.store.ListEmployeesByDepartment(ctx, employee.DepartmentID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(colleagues))
	for _, c := range colleagues {
		ids = append(ids, c.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return l.store.ListApprovedFrom(ctx, ids, from)
}

// CompanyLeaves returns all approved leaves still running at or after
// from. HR and CEO only.
func (l *Lifecycle) CompanyLeaves(ctx context.Context, principal Principal, from TimePoint) ([]LeaveRequest, error) {
	if !principal.HasAnyRole(RoleHR, RoleCEO) {
		return nil, ErrNotAuthorized
	}
	return l.store.ListApprovedFrom(ctx, nil, from)
}

// =============================================================================
// HELPERS
// =============================================================================

// loadOpenRequest loads a request and its leave type, rejecting closed
// requests up front.
func (l *Lifecycle) loadOpenRequest(ctx context.Context, s Store, requestID string) (*LeaveRequest, *LeaveType, error) {
	req, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req == nil {
		return nil, nil, ErrRequestNotFound
	}
	if req.Status.Closed() {
		return nil, nil, ErrRequestClosed
	}
	lt, err := s.GetLeaveType(ctx, req.LeaveTypeID)
	if err != nil {
		return nil, nil, err
	}
	if lt == nil {
		return nil, nil, ErrLeaveTypeNotFound
	}
	return req, lt, nil
}

func (l *Lifecycle) activeEmployee(ctx context.Context, s Store, id string) (*Employee, error) {
	employee, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil || !employee.IsActive {
		return nil, ErrEmployeeNotFound
	}
	return employee, nil
}

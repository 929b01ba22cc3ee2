/*
store.go - Persistence interface between the domain logic and the database

PURPOSE:
  Defines the Store contract the lifecycle, entitlement manager, and
  reporting services depend on. Different implementations can use
  SQLite or in-memory storage.

KEY INTERFACES:
  Store:   Entity reads/writes plus the query primitives the business
           rules need (overlap check, monthly hourly usage, inbox)
  TxStore: Transactional operations (atomic multi-table writes)

ATOMICITY CONTRACT:
  Every request transition (status change + entitlement debit/credit +
  history append) and every check-then-insert (overlap validation at
  creation) runs inside a single WithTx. Implementations serialize
  writers so two racing transitions cannot both observe the pre-state;
  the loser gets ErrConflict.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - leave/store/memory.go:  In-memory for testing

SEE ALSO:
  - lifecycle.go: the main consumer of the transactional contract
  - entitlement.go: entitlement reads/writes
*/
package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE - Interface for leave data persistence
// =============================================================================

// Store handles persistence of all leave engine entities. Write methods
// return ErrConflict on unique-key races so callers can retry.
type Store interface {
	// --- Departments ---
	GetDepartment(ctx context.Context, id string) (*Department, error)
	ListDepartments(ctx context.Context, activeOnly bool) ([]Department, error)
	SaveDepartment(ctx context.Context, d Department) error

	// --- Employees ---
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context, activeOnly bool) ([]Employee, error)
	ListEmployeesByDepartment(ctx context.Context, departmentID string) ([]Employee, error)
	SaveEmployee(ctx context.Context, e Employee) error

	// --- Leave types ---
	GetLeaveType(ctx context.Context, id string) (*LeaveType, error)
	ListLeaveTypes(ctx context.Context, activeOnly bool) ([]LeaveType, error)
	SaveLeaveType(ctx context.Context, lt LeaveType) error

	// --- Leave requests ---
	GetRequest(ctx context.Context, id string) (*LeaveRequest, error)
	CreateRequest(ctx context.Context, r LeaveRequest) error
	UpdateRequest(ctx context.Context, r LeaveRequest) error
	ListRequestsByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)

	// HasOverlappingRequest reports whether the employee has a request
	// intersecting [from, to] in any status other than REJECTED or
	// CANCELLED, excluding the request with excludeID (pass "" for none).
	HasOverlappingRequest(ctx context.Context, employeeID string, from, to TimePoint, excludeID string) (bool, error)

	// ListRequestsPendingRole returns requests whose NextApproverRole is
	// one of roles, oldest first. This is the approver's inbox.
	ListRequestsPendingRole(ctx context.Context, roles []Role) ([]LeaveRequest, error)

	// ListApprovedOverlapping returns APPROVED requests of the given
	// employees intersecting [from, to]. A nil employeeIDs slice means
	// all employees. Used by the capacity-impact reports.
	ListApprovedOverlapping(ctx context.Context, employeeIDs []string, from, to TimePoint) ([]LeaveRequest, error)

	// ListApprovedFrom returns APPROVED requests of the given employees
	// still running at or after from. A nil employeeIDs slice means all
	// employees. Used by the team and company visibility views.
	ListApprovedFrom(ctx context.Context, employeeIDs []string, from TimePoint) ([]LeaveRequest, error)

	// MonthlyHourlyUsage returns (request count, total hours) of the
	// employee's non-rejected, non-cancelled requests of the leave type
	// starting in the given month. Used by the hourly caps.
	MonthlyHourlyUsage(ctx context.Context, employeeID, leaveTypeID string, year int, month time.Month) (int, decimal.Decimal, error)

	// --- Entitlements ---

	// GetEntitlement returns the (employee, year) row or nil when absent.
	GetEntitlement(ctx context.Context, employeeID string, year int) (*LeaveEntitlement, error)
	// CreateEntitlement inserts the row; ErrConflict when the
	// (employee, year) pair already exists.
	CreateEntitlement(ctx context.Context, le LeaveEntitlement) error
	UpdateEntitlement(ctx context.Context, le LeaveEntitlement) error
	ListEntitlementsByYear(ctx context.Context, year int) ([]LeaveEntitlement, error)

	// --- Approval history ---
	AppendApproval(ctx context.Context, rec ApprovalRecord) error
	ListApprovals(ctx context.Context, leaveRequestID string) ([]ApprovalRecord, error)

	// --- Sprints ---
	CreateSprint(ctx context.Context, s Sprint) error
	GetSprint(ctx context.Context, id string) (*Sprint, error)
	ListSprintsByDepartment(ctx context.Context, departmentID string) ([]Sprint, error)
	// LatestSprint returns the department's sprint with the latest end
	// date, or nil when the department has none.
	LatestSprint(ctx context.Context, departmentID string) (*Sprint, error)

	// --- Holidays ---
	HolidaySource
	SaveHoliday(ctx context.Context, h Holiday) error
}

// =============================================================================
// TRANSACTIONAL STORE - For atomic operations across multiple writes
// =============================================================================

// TxStore wraps Store with transaction support.
// Use this for every request transition and every check-then-insert.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

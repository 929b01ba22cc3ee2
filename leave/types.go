/*
Package leave implements the leave entitlement and approval workflow engine.

PURPOSE:
  This package contains the domain model and algorithms for managing
  employee leave: per-year entitlement balances with seniority accrual
  and carry-forward, a configurable multi-step approval state machine,
  a working-time duration calculator aware of weekends and (half-day)
  public holidays, and the sprint capacity-impact report.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee / Department / LeaveType: reference entities
  - Workflow: the ordered approver-role chain of a leave type
  - LeaveRequest + Status: the approval state machine's subject
  - LeaveEntitlement: the per-(employee, year) balance row
  - ApprovalRecord: immutable audit trail entry
  - Principal: the explicit acting identity passed to every operation

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all hour quantities, never float64
  2. Explicit identity: operations take a Principal, no ambient user state
  3. Parsed workflows: role chains are split once at load time, not per
     transition
  4. Auditability: every approve/reject transition appends one
     ApprovalRecord; records are never mutated

SEE ALSO:
  - lifecycle.go: the approval state machine over these types
  - entitlement.go: balance accrual, carry-forward, debit/credit
  - store.go: persistence interfaces
*/
package leave

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HOUR QUANTITIES
// =============================================================================

// Hours constructs a decimal hour quantity from a float literal.
// Test and seed helper; persisted values round-trip through strings.
func Hours(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// MustParseHours parses a stored decimal string, treating garbage as zero.
func MustParseHours(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var half = decimal.NewFromFloat(0.5)

// =============================================================================
// REFERENCE ENTITIES
// =============================================================================

type Department struct {
	ID       string
	Name     string
	IsActive bool
}

type Employee struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	HireDate       time.Time
	DailyWorkHours decimal.Decimal
	DepartmentID   string
	IsActive       bool
}

func (e Employee) FullName() string { return e.FirstName + " " + e.LastName }

// YearsOfServiceAsOf returns whole years of service at the reference date.
func (e Employee) YearsOfServiceAsOf(ref time.Time) int {
	years := ref.Year() - e.HireDate.Year()
	anniversary := e.HireDate.AddDate(years, 0, 0)
	if anniversary.After(ref) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// =============================================================================
// LEAVE TYPES AND WORKFLOW CHAINS
// =============================================================================

type RequestUnit string

const (
	UnitDay  RequestUnit = "DAY"
	UnitHour RequestUnit = "HOUR"
)

// Role is an approver role token, e.g. "HR", "MANAGER", "CEO".
type Role string

// Well-known roles. Workflow chains may name any role, but these three
// carry extra visibility semantics: MANAGER inboxes are scoped to the
// manager's own department, HR and CEO see company-wide leave.
const (
	RoleHR      Role = "HR"
	RoleManager Role = "MANAGER"
	RoleCEO     Role = "CEO"
)

// Workflow is the ordered approver-role chain of a leave type.
// The stored representation is a comma-separated string; it is parsed
// exactly once when the leave type is loaded, never per transition.
type Workflow []Role

// ParseWorkflow splits a stored definition like "HR,MANAGER,CEO".
// Empty tokens are dropped; an empty definition yields a nil chain.
func ParseWorkflow(definition string) Workflow {
	var w Workflow
	for _, tok := range strings.Split(definition, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			w = append(w, Role(tok))
		}
	}
	return w
}

func (w Workflow) String() string {
	parts := make([]string, len(w))
	for i, r := range w {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

func (w Workflow) IsEmpty() bool { return len(w) == 0 }

// First returns the first approver role in the chain.
func (w Workflow) First() Role {
	if len(w) == 0 {
		return ""
	}
	return w[0]
}

// IndexOf returns the position of role in the chain, or -1.
func (w Workflow) IndexOf(role Role) int {
	for i, r := range w {
		if r == role {
			return i
		}
	}
	return -1
}

// Advance returns the role after current and whether current is the
// final approver of the chain. ok is false when current is not in the
// chain at all.
func (w Workflow) Advance(current Role) (next Role, final bool, ok bool) {
	i := w.IndexOf(current)
	if i < 0 {
		return "", false, false
	}
	if i == len(w)-1 {
		return "", true, true
	}
	return w[i+1], false, true
}

type LeaveType struct {
	ID                string
	Name              string
	IsPaid            bool
	DeductsFromAnnual bool
	DocumentRequired  bool
	RequestUnit       RequestUnit
	Workflow          Workflow
	IsActive          bool
}

// =============================================================================
// LEAVE REQUEST AND STATUS
// =============================================================================

// Status is the approval state of a leave request. Intermediate stage
// statuses are derived from the approving role (see StageApproved), so
// the status and pending-role pair can never disagree about which
// stage was reached.
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
	StatusCancelled       Status = "CANCELLED"
)

const stagePrefix = "APPROVED_"

// StageApproved returns the intermediate status after a non-final role
// approves, e.g. StageApproved("HR") == "APPROVED_HR".
func StageApproved(role Role) Status { return Status(stagePrefix + string(role)) }

// IsIntermediate reports whether s is a non-final APPROVED_<ROLE> stage.
func (s Status) IsIntermediate() bool {
	return strings.HasPrefix(string(s), stagePrefix) && s != StatusApproved
}

// Closed reports whether s is REJECTED or CANCELLED: nothing further
// may happen to the request.
func (s Status) Closed() bool {
	return s == StatusRejected || s == StatusCancelled
}

// Terminal reports whether s permits no further approval steps.
// APPROVED is terminal for the workflow but the request can still be
// rejected or cancelled (with a balance credit-back).
func (s Status) Terminal() bool {
	return s == StatusApproved || s.Closed()
}

type LeaveRequest struct {
	ID            string
	EmployeeID    string
	LeaveTypeID   string
	StartAt       TimePoint
	EndAt         TimePoint
	DurationHours decimal.Decimal
	Status        Status

	// NextApproverRole is the role whose approval is pending, or the
	// empty string once the request is terminal.
	NextApproverRole Role

	Reason    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// ENTITLEMENT - per (employee, year) balance row
// =============================================================================

type LeaveEntitlement struct {
	ID                  string
	EmployeeID          string
	Year                int
	TotalHoursEntitled  decimal.Decimal
	HoursUsed           decimal.Decimal
	CarriedForwardHours decimal.Decimal
	CreatedAt           time.Time
}

func (le LeaveEntitlement) RemainingHours() decimal.Decimal {
	return le.TotalHoursEntitled.Sub(le.HoursUsed)
}

// =============================================================================
// APPROVAL HISTORY - append-only audit trail
// =============================================================================

// ApprovalRecord is one immutable approve/reject transition entry.
type ApprovalRecord struct {
	ID             string
	LeaveRequestID string
	ApproverID     string
	Action         Status
	Comments       string
	CreatedAt      time.Time
}

// =============================================================================
// SPRINTS
// =============================================================================

type Sprint struct {
	ID            string
	DepartmentID  string
	Name          string
	StartDate     TimePoint
	EndDate       TimePoint
	DurationWeeks int
}

// =============================================================================
// PRINCIPAL - explicit acting identity
// =============================================================================

// Principal identifies who is performing an operation. It replaces any
// ambient "current user" lookup: callers resolve identity and roles up
// front and pass them in.
type Principal struct {
	EmployeeID string
	Roles      []Role
}

func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal holds at least one of roles.
func (p Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

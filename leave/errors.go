/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  The HTTP layer maps these to status codes without string matching.

ERROR CATEGORIES:
  1. NotFound       - referenced entity missing (404)
  2. Validation     - business rule violated (400)
  3. Authorization  - acting principal lacks the required role (403)
  4. Conflict       - concurrent writers raced, retryable (409)

USAGE:
  Callers classify with the helpers:

    if leave.IsAuthorization(err) { ... render 403 ... }

SEE ALSO:
  - lifecycle.go: produces most of these
  - api/handlers.go: maps them to HTTP statuses
*/
package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist
	// or is inactive.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrLeaveTypeNotFound is returned when a referenced leave type doesn't
	// exist or is inactive.
	ErrLeaveTypeNotFound = errors.New("leave type not found")

	// ErrRequestNotFound is returned when a leave request id resolves to nothing.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrDepartmentNotFound is returned when a referenced department doesn't
	// exist or is inactive.
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrSprintNotFound is returned when a sprint id resolves to nothing.
	ErrSprintNotFound = errors.New("sprint not found")

	// ErrEndBeforeStart is returned when a range ends before it starts.
	ErrEndBeforeStart = errors.New("end date before start date")

	// ErrOverlappingRequest is returned when the employee already has a leave
	// request covering part of the range in a live or approved status.
	ErrOverlappingRequest = errors.New("overlapping leave request exists")

	// ErrZeroDuration is returned when the requested range contains no working
	// time (all weekend or full holiday days). Zero-duration requests are
	// rejected at creation.
	ErrZeroDuration = errors.New("no working time in requested range")

	// ErrWeekendOrHoliday is returned when hourly leave is requested on a
	// weekend or public holiday.
	ErrWeekendOrHoliday = errors.New("hourly leave cannot be taken on weekends or holidays")

	// ErrNoWorkflow is returned when a leave type has no approver chain defined.
	ErrNoWorkflow = errors.New("no approval workflow defined for leave type")

	// ErrNoLeaveBalance is returned when no entitlement can be established for
	// the employee (no accrual yet, e.g. under one year of service).
	ErrNoLeaveBalance = errors.New("no leave balance")

	// ErrInsufficientBalance is returned when the requested duration exceeds
	// the remaining entitlement.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrRequestClosed is returned for transitions on already rejected or
	// cancelled requests.
	ErrRequestClosed = errors.New("leave request already rejected or cancelled")

	// ErrAlreadyApproved is returned when approving a fully approved request.
	ErrAlreadyApproved = errors.New("leave request already approved")

	// ErrConflict is returned when concurrent writers raced on the same rows
	// (duplicate unique key, overlap insert race). Retryable by the caller.
	ErrConflict = errors.New("concurrent modification conflict")

	// ErrNotAuthorized is the base of all authorization failures.
	ErrNotAuthorized = errors.New("not authorized")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RoleMismatchError reports an approve/reject attempt by a principal that
// does not hold the pending approver role.
type RoleMismatchError struct {
	Expected Role
	Held     []Role
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("not authorized for this step: expected role %s, held roles %v", e.Expected, e.Held)
}

func (e *RoleMismatchError) Unwrap() error { return ErrNotAuthorized }

// RoleNotInWorkflowError reports an approver role absent from the type's chain.
type RoleNotInWorkflowError struct {
	Role Role
}

func (e *RoleNotInWorkflowError) Error() string {
	return fmt.Sprintf("approver role %s is not part of the workflow for this leave type", e.Role)
}

func (e *RoleNotInWorkflowError) Unwrap() error { return ErrNotAuthorized }

// InsufficientBalanceError provides details about a balance shortage.
type InsufficientBalanceError struct {
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient annual leave balance: requested %s hours, remaining %s hours",
		e.Requested, e.Remaining)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// HourlyRuleError reports a violated hourly-leave rule with the rule named,
// so the caller can render the exact cap that was hit.
type HourlyRuleError struct {
	Rule    string // "exact_hours", "monthly_count_cap", "monthly_hour_cap"
	Message string
}

func (e *HourlyRuleError) Error() string { return e.Message }

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsNotFound reports whether err indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrLeaveTypeNotFound) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrDepartmentNotFound) ||
		errors.Is(err, ErrSprintNotFound)
}

// IsAuthorization reports whether err is an authorization failure (403, not 400).
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrNotAuthorized)
}

// IsConflict reports whether err might succeed on retry.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation reports whether err is a business rule violation caused by
// the caller's input.
func IsValidation(err error) bool {
	var hourly *HourlyRuleError
	return errors.Is(err, ErrEndBeforeStart) ||
		errors.Is(err, ErrOverlappingRequest) ||
		errors.Is(err, ErrZeroDuration) ||
		errors.Is(err, ErrWeekendOrHoliday) ||
		errors.Is(err, ErrNoWorkflow) ||
		errors.Is(err, ErrNoLeaveBalance) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrRequestClosed) ||
		errors.Is(err, ErrAlreadyApproved) ||
		errors.As(err, &hourly)
}

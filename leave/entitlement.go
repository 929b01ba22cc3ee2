/*
entitlement.go - Annual leave entitlement ledger

PURPOSE:
  Manages the per-(employee, year) balance rows: seniority-tiered
  accrual, carry-forward from the previous year, the lazy idempotent
  row creation, and the debit/credit operations the approval lifecycle
  calls.

ACCRUAL TIERS (evaluated at January 1 of the entitlement year):
  < 1 year of service:   0 days (no entitlement row)
  1 to < 5 years:       14 days
  >= 5 years:           20 days
  Days convert to hours via the employee's daily work hours.

CARRY-FORWARD:
  Only the hours the employee accrued THEMSELVES last year carry over;
  hours that were already carried into last year never compound.
  Consumption is attributed to carried hours first:

    ownAccrual      = prevTotal - prevCarried
    usedFromCarried = min(prevUsed, prevCarried)
    carry           = max(0, ownAccrual - (prevUsed - usedFromCarried))

LAZY CREATION:
  Rows materialize on first access for the year. Concurrent creators
  race on the (employee, year) unique key; the loser reloads the
  winner's row, so EnsureYear is idempotent.

SEE ALSO:
  - lifecycle.go: debits at final approval, credits on reject/cancel
  - api/scheduler.go: materializes rows for all employees at year start
*/
package leave

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCRUAL TIERS
// =============================================================================

var (
	tierJuniorDays = decimal.NewFromInt(14) // 1 to < 5 years
	tierSeniorDays = decimal.NewFromInt(20) // >= 5 years
)

// AccrualDays returns the annual entitlement in days for the given
// whole years of service.
func AccrualDays(yearsOfService int) decimal.Decimal {
	switch {
	case yearsOfService < 1:
		return decimal.Zero
	case yearsOfService < 5:
		return tierJuniorDays
	default:
		return tierSeniorDays
	}
}

// AccrualHours converts the tier for the employee's service years at
// the reference date into hours at their daily schedule.
func AccrualHours(e Employee, ref time.Time) decimal.Decimal {
	return AccrualDays(e.YearsOfServiceAsOf(ref)).Mul(e.DailyWorkHours)
}

// =============================================================================
// ENTITLEMENT MANAGER
// =============================================================================

// EntitlementManager owns all reads and writes of entitlement rows.
// The lifecycle calls Debit/Credit with the transactional store it is
// already inside of, so a transition and its balance change commit
// together.
type EntitlementManager struct {
	store TxStore
	now   func() time.Time
}

func NewEntitlementManager(store TxStore) *EntitlementManager {
	return &EntitlementManager{store: store, now: time.Now}
}

// EnsureYear returns the employee's entitlement row for the year,
// creating it on first access. Returns ErrNoLeaveBalance when nothing
// can be established (no accrual and no carry-forward, e.g. under one
// year of service with no prior balance).
//
// Callers inside a transaction pass the transactional store as s;
// others pass m.store.
func (m *EntitlementManager) EnsureYear(ctx context.Context, s Store, employee Employee, year int) (*LeaveEntitlement, error) {
	existing, err := s.GetEntitlement(ctx, employee.ID, year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	// Tier is evaluated at January 1 of the entitlement year.
	ref := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	accrual := AccrualHours(employee, ref)

	carry, err := m.carryForward(ctx, s, employee.ID, year-1)
	if err != nil {
		return nil, err
	}

	total := accrual.Add(carry)
	if !total.IsPositive() {
		return nil, ErrNoLeaveBalance
	}

	row := LeaveEntitlement{
		ID:                  uuid.NewString(),
		EmployeeID:          employee.ID,
		Year:                year,
		TotalHoursEntitled:  total,
		HoursUsed:           decimal.Zero,
		CarriedForwardHours: carry,
		CreatedAt:           m.now().UTC(),
	}
	if err := s.CreateEntitlement(ctx, row); err != nil {
		if IsConflict(err) {
			// A concurrent creator won the race; use its row.
			return s.GetEntitlement(ctx, employee.ID, year)
		}
		return nil, err
	}
	return &row, nil
}

// carryForward computes the hours carried from the previous year's row.
// Hours carried INTO that year never compound forward.
func (m *EntitlementManager) carryForward(ctx context.Context, s Store, employeeID string, prevYear int) (decimal.Decimal, error) {
	prev, err := s.GetEntitlement(ctx, employeeID, prevYear)
	if err != nil {
		return decimal.Zero, err
	}
	if prev == nil {
		return decimal.Zero, nil
	}

	ownAccrual := prev.TotalHoursEntitled.Sub(prev.CarriedForwardHours)
	usedFromCarried := decimal.Min(prev.HoursUsed, prev.CarriedForwardHours)
	carry := ownAccrual.Sub(prev.HoursUsed.Sub(usedFromCarried))
	if carry.IsNegative() {
		return decimal.Zero, nil
	}
	return carry, nil
}

// Debit consumes hours from the employee's entitlement for the year.
// Returns *InsufficientBalanceError when the remaining balance does not
// cover the requested hours. Must be called with the transactional
// store of the surrounding transition.
func (m *EntitlementManager) Debit(ctx context.Context, s Store, employee Employee, year int, hours decimal.Decimal) error {
	row, err := m.EnsureYear(ctx, s, employee, year)
	if err != nil {
		return err
	}
	remaining := row.RemainingHours()
	if remaining.LessThan(hours) {
		return &InsufficientBalanceError{Requested: hours, Remaining: remaining}
	}
	row.HoursUsed = row.HoursUsed.Add(hours)
	return s.UpdateEntitlement(ctx, *row)
}

// Credit returns hours to the employee's entitlement for the year,
// flooring used hours at zero. Missing rows are a no-op: nothing was
// ever debited.
func (m *EntitlementManager) Credit(ctx context.Context, s Store, employeeID string, year int, hours decimal.Decimal) error {
	row, err := s.GetEntitlement(ctx, employeeID, year)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}
	row.HoursUsed = row.HoursUsed.Sub(hours)
	if row.HoursUsed.IsNegative() {
		row.HoursUsed = decimal.Zero
	}
	return s.UpdateEntitlement(ctx, *row)
}

// CheckAvailable verifies the employee's remaining balance covers hours
// without mutating anything. Used at request creation for annual-
// deducting types; the authoritative check happens again at final
// approval inside the transition's transaction.
func (m *EntitlementManager) CheckAvailable(ctx context.Context, employee Employee, year int, hours decimal.Decimal) error {
	var checkErr error
	err := m.store.WithTx(ctx, func(s Store) error {
		row, err := m.EnsureYear(ctx, s, employee, year)
		if err != nil {
			return err
		}
		if row.RemainingHours().LessThan(hours) {
			checkErr = &InsufficientBalanceError{Requested: hours, Remaining: row.RemainingHours()}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return checkErr
}

// =============================================================================
// BALANCE VIEWS
// =============================================================================

// BalanceView is the read model the API renders for an employee's year.
type BalanceView struct {
	EmployeeID          string
	Year                int
	TotalHours          decimal.Decimal
	UsedHours           decimal.Decimal
	RemainingHours      decimal.Decimal
	CarriedForwardHours decimal.Decimal
}

// Balance returns the employee's balance view for the year, lazily
// creating the entitlement row. ErrNoLeaveBalance propagates when no
// row can exist yet.
func (m *EntitlementManager) Balance(ctx context.Context, employeeID string, year int) (*BalanceView, error) {
	employee, err := m.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}

	var row *LeaveEntitlement
	err = m.store.WithTx(ctx, func(s Store) error {
		var txErr error
		row, txErr = m.EnsureYear(ctx, s, *employee, year)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return &BalanceView{
		EmployeeID:          employeeID,
		Year:                year,
		TotalHours:          row.TotalHoursEntitled,
		UsedHours:           row.HoursUsed,
		RemainingHours:      row.RemainingHours(),
		CarriedForwardHours: row.CarriedForwardHours,
	}, nil
}

// TypeBalanceView is the per-leave-type read model. Annual-deducting
// types report against the year entitlement; hour-unit non-deducting
// types report against the monthly caps.
type TypeBalanceView struct {
	LeaveTypeID    string
	LeaveTypeName  string
	Unit           RequestUnit
	RemainingHours decimal.Decimal
	RemainingDays  decimal.Decimal
	// Monthly cap fields, hour-unit types only.
	MonthRequestsLeft int
	MonthHoursLeft    decimal.Decimal
}

// TypeBalances returns the employee's balance against every active
// leave type for the given reference time. Types that neither deduct
// from annual nor carry an hourly cap (e.g. unpaid leave) report a
// zero balance row.
func (m *EntitlementManager) TypeBalances(ctx context.Context, employeeID string, ref time.Time) ([]TypeBalanceView, error) {
	employee, err := m.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		return nil, ErrEmployeeNotFound
	}

	types, err := m.store.ListLeaveTypes(ctx, true)
	if err != nil {
		return nil, err
	}

	views := make([]TypeBalanceView, 0, len(types))
	for _, lt := range types {
		view := TypeBalanceView{LeaveTypeID: lt.ID, LeaveTypeName: lt.Name, Unit: lt.RequestUnit}
		switch {
		case lt.DeductsFromAnnual:
			balance, err := m.Balance(ctx, employeeID, ref.Year())
			if err != nil && !errors.Is(err, ErrNoLeaveBalance) {
				return nil, err
			}
			if balance != nil {
				view.RemainingHours = balance.RemainingHours
				if employee.DailyWorkHours.IsPositive() {
					view.RemainingDays = balance.RemainingHours.Div(employee.DailyWorkHours)
				}
			}
		case lt.RequestUnit == UnitHour:
			count, hours, err := m.store.MonthlyHourlyUsage(ctx, employeeID, lt.ID, ref.Year(), ref.Month())
			if err != nil {
				return nil, err
			}
			view.MonthRequestsLeft = hourlyMonthlyCount - count
			if view.MonthRequestsLeft < 0 {
				view.MonthRequestsLeft = 0
			}
			view.MonthHoursLeft = hourlyMonthlyHours.Sub(hours)
			if view.MonthHoursLeft.IsNegative() {
				view.MonthHoursLeft = decimal.Zero
			}
			view.RemainingHours = view.MonthHoursLeft
		}
		views = append(views, view)
	}
	return views, nil
}

// EnsureYearForAll materializes entitlement rows for every active
// employee. The scheduler runs this at the start of each year so
// balances exist before the first request arrives. Employees without
// accrual are skipped. Returns the number of rows ensured.
func (m *EntitlementManager) EnsureYearForAll(ctx context.Context, year int) (int, error) {
	employees, err := m.store.ListEmployees(ctx, true)
	if err != nil {
		return 0, err
	}

	ensured := 0
	for _, e := range employees {
		employee := e
		err := m.store.WithTx(ctx, func(s Store) error {
			_, txErr := m.EnsureYear(ctx, s, employee, year)
			return txErr
		})
		switch {
		case err == nil:
			ensured++
		case errors.Is(err, ErrNoLeaveBalance):
			// under one year of service, nothing to create
		default:
			return ensured, err
		}
	}
	return ensured, nil
}

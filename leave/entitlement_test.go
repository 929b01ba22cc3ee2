package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furkangemici/leave-management-system-sub000/leave"
)

// =============================================================================
// ACCRUAL TIERS
// =============================================================================

func TestAccrualDays_Tiers(t *testing.T) {
	tests := []struct {
		name  string
		years int
		want  int64
	}{
		{"under one year", 0, 0},
		{"exactly one year", 1, 14},
		{"four years", 4, 14},
		{"exactly five years", 5, 20},
		{"twenty years", 20, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := leave.AccrualDays(tt.years)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s, want %d", got, tt.want)
		})
	}
}

func TestAccrualHours_TierEvaluatedAtAnniversary(t *testing.T) {
	// GIVEN: an employee hired June 1, 2020
	// WHEN: evaluating at January 1, 2025 (4 full years)
	// THEN: the junior tier applies; a year later the senior tier does

	emp := leave.Employee{
		HireDate:       time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC),
		DailyWorkHours: decimal.NewFromInt(8),
	}

	jan2025 := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, leave.AccrualHours(emp, jan2025).Equal(hours(112)), "14 days x 8h")

	jan2026 := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, leave.AccrualHours(emp, jan2026).Equal(hours(160)), "20 days x 8h")
}

// =============================================================================
// LAZY YEAR MATERIALIZATION
// =============================================================================

func TestBalance_LazyCreation_Idempotent(t *testing.T) {
	// GIVEN: no entitlement row for 2025
	// WHEN: reading the balance twice
	// THEN: the row is created on first access and reused afterwards

	e := newStandardEngine(t)
	ctx := context.Background()

	first, err := e.entitlements.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, first.TotalHours.Equal(hours(160)), "senior tier, got %s", first.TotalHours)
	assert.True(t, first.UsedHours.IsZero())

	second, err := e.entitlements.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, second.TotalHours.Equal(first.TotalHours))
}

func TestBalance_NoAccrualNoCarry_Fails(t *testing.T) {
	e := newStandardEngine(t)
	e.seedEmployee(t, "emp-new", "dept-eng", time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC))

	_, err := e.entitlements.Balance(context.Background(), "emp-new", 2025)
	assert.ErrorIs(t, err, leave.ErrNoLeaveBalance)
}

func TestEnsureYearForAll_SkipsEmployeesWithoutBalance(t *testing.T) {
	// GIVEN: one tenured and one brand-new employee
	// WHEN: materializing the year for everyone
	// THEN: only the tenured employee gets a row, without an error

	e := newStandardEngine(t)
	e.seedEmployee(t, "emp-new", "dept-eng", time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	ensured, err := e.entitlements.EnsureYearForAll(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, ensured)

	rows, err := e.store.ListEntitlementsByYear(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "emp-1", rows[0].EmployeeID)
}

// =============================================================================
// CARRY-FORWARD
// =============================================================================

func TestCarryForward_UnusedOwnAccrual(t *testing.T) {
	// GIVEN: a 2024 row with 160h accrued and 60h used
	// WHEN: 2025 materializes
	// THEN: the 100 unused hours carry on top of the new accrual

	e := newStandardEngine(t)
	ctx := context.Background()
	seedEntitlement(t, e, "emp-1", 2024, 160, 60, 0)

	balance, err := e.entitlements.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, balance.TotalHours.Equal(hours(260)), "160 accrual + 100 carry, got %s", balance.TotalHours)
	assert.True(t, balance.CarriedForwardHours.Equal(hours(100)))
}

func TestCarryForward_CarriedHoursDoNotCompound(t *testing.T) {
	// GIVEN: a 2024 row holding 40h carried in from 2023, fully unused
	// WHEN: 2025 materializes
	// THEN: only 2024's own accrual carries; the 2023 leftovers expire

	e := newStandardEngine(t)
	ctx := context.Background()
	seedEntitlement(t, e, "emp-1", 2024, 200, 0, 40) // 160 own + 40 carried

	balance, err := e.entitlements.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, balance.CarriedForwardHours.Equal(hours(160)), "own accrual only, got %s", balance.CarriedForwardHours)
}

func TestCarryForward_UsageConsumesCarriedFirst(t *testing.T) {
	// GIVEN: 2024 held 160 own + 40 carried hours, 100 were used
	// WHEN: 2025 materializes
	// THEN: the first 40 used hours burn the carried bucket, leaving
	//       100 of the own accrual to carry forward

	e := newStandardEngine(t)
	ctx := context.Background()
	seedEntitlement(t, e, "emp-1", 2024, 200, 100, 40)

	balance, err := e.entitlements.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, balance.CarriedForwardHours.Equal(hours(100)), "got %s", balance.CarriedForwardHours)
}

func TestCarryForward_OverusedYear_CarriesNothing(t *testing.T) {
	e := newStandardEngine(t)
	ctx := context.Background()
	seedEntitlement(t, e, "emp-1", 2024, 160, 160, 0)

	balance, err := e.entitlements.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, balance.CarriedForwardHours.IsZero())
	assert.True(t, balance.TotalHours.Equal(hours(160)))
}

// =============================================================================
// DEBIT AND CREDIT
// =============================================================================

func TestDebitCredit_RoundTrip(t *testing.T) {
	e := newStandardEngine(t)
	ctx := context.Background()

	emp, err := e.store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)

	err = e.store.WithTx(ctx, func(s leave.Store) error {
		return e.entitlements.Debit(ctx, s, *emp, 2025, hours(24))
	})
	require.NoError(t, err)

	balance, err := e.entitlements.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, balance.RemainingHours.Equal(hours(136)))

	err = e.store.WithTx(ctx, func(s leave.Store) error {
		return e.entitlements.Credit(ctx, s, "emp-1", 2025, hours(24))
	})
	require.NoError(t, err)

	balance, err = e.entitlements.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, balance.RemainingHours.Equal(hours(160)))
}

func TestDebit_BeyondRemaining_Fails(t *testing.T) {
	e := newStandardEngine(t)
	ctx := context.Background()

	emp, err := e.store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)

	err = e.store.WithTx(ctx, func(s leave.Store) error {
		return e.entitlements.Debit(ctx, s, *emp, 2025, hours(200))
	})
	var insufficient *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Remaining.Equal(hours(160)))
}

func TestCredit_FloorsUsedAtZero(t *testing.T) {
	// GIVEN: a row with 10h used
	// WHEN: crediting 24h back
	// THEN: used hours floor at zero instead of going negative

	e := newStandardEngine(t)
	ctx := context.Background()
	seedEntitlement(t, e, "emp-1", 2025, 160, 10, 0)

	err := e.store.WithTx(ctx, func(s leave.Store) error {
		return e.entitlements.Credit(ctx, s, "emp-1", 2025, hours(24))
	})
	require.NoError(t, err)

	balance, err := e.entitlements.Balance(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, balance.UsedHours.IsZero())
}

func TestCredit_MissingRow_NoOp(t *testing.T) {
	e := newStandardEngine(t)

	err := e.store.WithTx(context.Background(), func(s leave.Store) error {
		return e.entitlements.Credit(context.Background(), s, "emp-1", 2030, hours(8))
	})
	assert.NoError(t, err)
}

// =============================================================================
// PER-TYPE BALANCES
// =============================================================================

func TestTypeBalances_DeductingHourlyAndOther(t *testing.T) {
	// GIVEN: the standard catalog and one approved 2h hourly request
	// WHEN: reading per-type balances
	// THEN: annual shows the year balance, the hourly type shows cap
	//       remainders, and sick shows no numbers

	e := newStandardEngine(t)
	ctx := context.Background()

	_, err := e.lifecycle.Create(ctx, principal("emp-1"), leave.CreateRequestInput{
		LeaveTypeID: "excuse",
		StartAt:     leave.NewDateTime(2025, time.June, 2, 9, 0),
		EndAt:       leave.NewDateTime(2025, time.June, 2, 11, 0),
	})
	require.NoError(t, err)

	views, err := e.entitlements.TypeBalances(ctx, "emp-1", time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	byID := make(map[string]leave.TypeBalanceView, len(views))
	for _, v := range views {
		byID[v.LeaveTypeID] = v
	}

	annual := byID["annual"]
	assert.True(t, annual.RemainingHours.Equal(hours(160)))
	assert.True(t, annual.RemainingDays.Equal(hours(20)))

	excuse := byID["excuse"]
	assert.Equal(t, 3, excuse.MonthRequestsLeft)
	assert.True(t, excuse.MonthHoursLeft.Equal(hours(6)))

	sick := byID["sick"]
	assert.True(t, sick.RemainingHours.IsZero())
}

// =============================================================================
// HELPERS
// =============================================================================

func seedEntitlement(t *testing.T, e *engine, employeeID string, year int, total, used, carried int64) {
	t.Helper()
	err := e.store.CreateEntitlement(context.Background(), leave.LeaveEntitlement{
		ID:                  employeeID + "-" + time.Now().Format("150405.000000000"),
		EmployeeID:          employeeID,
		Year:                year,
		TotalHoursEntitled:  decimal.NewFromInt(total),
		HoursUsed:           decimal.NewFromInt(used),
		CarriedForwardHours: decimal.NewFromInt(carried),
		CreatedAt:           time.Now().UTC(),
	})
	require.NoError(t, err)
}

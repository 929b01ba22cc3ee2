package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furkangemici/leave-management-system-sub000/leave"
)

// =============================================================================
// SPRINT IMPACT REPORTING
// =============================================================================

func newReporterEngine(t *testing.T) (*engine, *leave.Reporter) {
	t.Helper()
	e := newStandardEngine(t)
	return e, leave.NewReporter(e.store, e.calc)
}

func TestReport_LeaveInsideWindow_FullyCharged(t *testing.T) {
	// GIVEN: an approved 40h week of leave inside the sprint window
	// WHEN: generating the impact report
	// THEN: the full week is charged against the sprint

	e, reporter := newReporterEngine(t)
	ctx := context.Background()

	approveAnnualWeek(t, e) // March 10-14

	impact, err := reporter.Generate(ctx,
		leave.NewDate(2025, time.March, 3),
		leave.NewDate(2025, time.March, 16))
	require.NoError(t, err)

	require.Len(t, impact.Rows, 1)
	assert.Equal(t, "emp-1", impact.Rows[0].EmployeeID)
	assert.Equal(t, "Annual Leave", impact.Rows[0].LeaveTypeName)
	assert.True(t, impact.TotalLossHours.Equal(hours(40)), "got %s", impact.TotalLossHours)
}

func TestReport_LeaveStraddlingWindow_Clipped(t *testing.T) {
	// GIVEN: an approved March 10-14 leave and a window ending March 11
	// WHEN: generating the report
	// THEN: only the two overlapping workdays are charged

	e, reporter := newReporterEngine(t)
	ctx := context.Background()

	approveAnnualWeek(t, e)

	impact, err := reporter.Generate(ctx,
		leave.NewDate(2025, time.March, 1),
		leave.NewDate(2025, time.March, 11))
	require.NoError(t, err)

	require.Len(t, impact.Rows, 1)
	assert.True(t, impact.TotalLossHours.Equal(hours(16)), "Mon+Tue only, got %s", impact.TotalLossHours)
}

func TestReport_ClippedSegment_RespectsHolidays(t *testing.T) {
	// GIVEN: a holiday inside the clipped overlap
	// WHEN: generating the report
	// THEN: the overlap recalculation discounts the holiday

	e, reporter := newReporterEngine(t)
	ctx := context.Background()
	seedHoliday(t, e, "hol-1",
		leave.NewDate(2025, time.March, 11), leave.NewDate(2025, time.March, 11), false)

	approveAnnualWeek(t, e) // 32h once the holiday is discounted

	impact, err := reporter.Generate(ctx,
		leave.NewDate(2025, time.March, 1),
		leave.NewDate(2025, time.March, 12))
	require.NoError(t, err)
	assert.True(t, impact.TotalLossHours.Equal(hours(16)), "Mon and Wed, got %s", impact.TotalLossHours)
}

func TestReport_PendingLeave_NotCharged(t *testing.T) {
	e, reporter := newReporterEngine(t)
	ctx := context.Background()

	_, err := e.lifecycle.Create(ctx, principal("emp-1"), leave.CreateRequestInput{
		LeaveTypeID: "annual",
		StartAt:     leave.NewDate(2025, time.March, 10),
		EndAt:       leave.NewDate(2025, time.March, 14),
	})
	require.NoError(t, err)

	impact, err := reporter.Generate(ctx,
		leave.NewDate(2025, time.March, 1),
		leave.NewDate(2025, time.March, 31))
	require.NoError(t, err)
	assert.Empty(t, impact.Rows)
	assert.True(t, impact.TotalLossHours.IsZero())
}

func TestReport_HourlyLeave_ChargedUnclipped(t *testing.T) {
	// GIVEN: an approved 2h hourly request on a day inside the window
	// WHEN: generating the report
	// THEN: the 2 hours are charged as-is, never inflated to a day

	e, reporter := newReporterEngine(t)
	ctx := context.Background()

	req, err := e.lifecycle.Create(ctx, principal("emp-1"), leave.CreateRequestInput{
		LeaveTypeID: "excuse",
		StartAt:     leave.NewDateTime(2025, time.March, 10, 9, 0),
		EndAt:       leave.NewDateTime(2025, time.March, 10, 11, 0),
	})
	require.NoError(t, err)
	_, err = e.lifecycle.Approve(ctx, principal("mgr-1", leave.RoleManager), req.ID, "")
	require.NoError(t, err)

	impact, err := reporter.Generate(ctx,
		leave.NewDate(2025, time.March, 1),
		leave.NewDate(2025, time.March, 31))
	require.NoError(t, err)
	require.Len(t, impact.Rows, 1)
	assert.True(t, impact.TotalLossHours.Equal(hours(2)), "got %s", impact.TotalLossHours)
}

func TestReport_EmptyWindow_ZeroReport(t *testing.T) {
	// GIVEN: an inverted window
	// WHEN: generating the report
	// THEN: an empty zero-total report comes back, not an error

	_, reporter := newReporterEngine(t)

	impact, err := reporter.Generate(context.Background(),
		leave.NewDate(2025, time.March, 31),
		leave.NewDate(2025, time.March, 1))
	require.NoError(t, err)
	assert.NotNil(t, impact.Rows)
	assert.Empty(t, impact.Rows)
	assert.True(t, impact.TotalLossHours.IsZero())
}

func TestReport_ForSprint_ChargesAllDepartments(t *testing.T) {
	// GIVEN: an engineering sprint, a 40h engineering leave and a 16h
	//        sales leave both inside its window
	// WHEN: reporting for the sprint
	// THEN: both leaves are charged; the report is company-wide

	e, reporter := newReporterEngine(t)
	e.seedDepartment(t, "dept-sales", "Sales")
	e.seedEmployee(t, "emp-sales", "dept-sales", time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	approveAnnualWeek(t, e) // emp-1, engineering, 40h

	salesReq, err := e.lifecycle.Create(ctx, principal("emp-sales"), leave.CreateRequestInput{
		LeaveTypeID: "sick",
		StartAt:     leave.NewDate(2025, time.March, 10),
		EndAt:       leave.NewDate(2025, time.March, 11),
	})
	require.NoError(t, err)
	_, err = e.lifecycle.Approve(ctx, principal("hr-1", leave.RoleHR), salesReq.ID, "")
	require.NoError(t, err)

	require.NoError(t, e.store.CreateSprint(ctx, leave.Sprint{
		ID:            "sp-1",
		DepartmentID:  "dept-eng",
		Name:          "Sprint 4 - Engineering - 2025",
		StartDate:     leave.NewDate(2025, time.March, 3),
		EndDate:       leave.NewDate(2025, time.March, 16),
		DurationWeeks: 2,
	}))

	impact, err := reporter.ForSprint(ctx, "sp-1")
	require.NoError(t, err)
	assert.Equal(t, "sp-1", impact.SprintID)
	assert.Equal(t, "Sprint 4 - Engineering - 2025", impact.SprintName)
	require.Len(t, impact.Rows, 2)

	var charged []string
	for _, row := range impact.Rows {
		charged = append(charged, row.EmployeeID)
	}
	assert.ElementsMatch(t, []string{"emp-1", "emp-sales"}, charged)
	assert.True(t, impact.TotalLossHours.Equal(hours(56)), "40h + 16h, got %s", impact.TotalLossHours)
}

func TestReport_ForSprint_Missing(t *testing.T) {
	_, reporter := newReporterEngine(t)

	_, err := reporter.ForSprint(context.Background(), "nope")
	assert.ErrorIs(t, err, leave.ErrSprintNotFound)
}

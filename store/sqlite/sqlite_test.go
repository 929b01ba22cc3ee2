package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furkangemici/leave-management-system-sub000/leave"
	"github.com/furkangemici/leave-management-system-sub000/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEmployee(id string) leave.Employee {
	return leave.Employee{
		ID:             id,
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          id + "@example.com",
		HireDate:       time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC),
		DailyWorkHours: decimal.NewFromInt(8),
		DepartmentID:   "dept-1",
		IsActive:       true,
	}
}

func testRequest(id, employeeID string, start, end leave.TimePoint, status leave.Status, next leave.Role) leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:               id,
		EmployeeID:       employeeID,
		LeaveTypeID:      "annual",
		StartAt:          start,
		EndAt:            end,
		DurationHours:    decimal.NewFromInt(8),
		Status:           status,
		NextApproverRole: next,
		Reason:           "test",
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
}

func seedRequestFixtures(t *testing.T, store *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveDepartment(ctx, leave.Department{ID: "dept-1", Name: "Engineering", IsActive: true}))
	require.NoError(t, store.SaveEmployee(ctx, testEmployee("emp-1")))
	require.NoError(t, store.SaveLeaveType(ctx, leave.LeaveType{
		ID:                "annual",
		Name:              "Annual Leave",
		IsPaid:            true,
		DeductsFromAnnual: true,
		RequestUnit:       leave.UnitDay,
		Workflow:          leave.ParseWorkflow("HR,MANAGER,CEO"),
		IsActive:          true,
	}))
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestSQLite_EmployeeRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := testEmployee("emp-1")
	require.NoError(t, store.SaveEmployee(ctx, want))

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Email, got.Email)
	assert.True(t, got.DailyWorkHours.Equal(want.DailyWorkHours))
	assert.True(t, got.HireDate.Equal(want.HireDate))

	// Save is an upsert.
	want.LastName = "Byron"
	require.NoError(t, store.SaveEmployee(ctx, want))
	got, err = store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, "Byron", got.LastName)
}

func TestSQLite_GetMissing_ReturnsNil(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp, err := store.GetEmployee(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, emp)

	req, err := store.GetRequest(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, req)

	sp, err := store.GetSprint(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, sp)
}

func TestSQLite_LeaveType_WorkflowParsedOnLoad(t *testing.T) {
	// GIVEN: a leave type stored with a comma-separated chain
	// WHEN: loading it back
	// THEN: the workflow comes back as the parsed role slice

	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)

	lt, err := store.GetLeaveType(ctx, "annual")
	require.NoError(t, err)
	require.NotNil(t, lt)
	assert.Equal(t, leave.Workflow{leave.RoleHR, leave.RoleManager, leave.RoleCEO}, lt.Workflow)
}

func TestSQLite_RequestRoundTrip_KeepsGranularity(t *testing.T) {
	// GIVEN: one day-unit and one hour-unit request
	// WHEN: loading them back
	// THEN: each keeps its granularity and wall-clock times

	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)

	day := testRequest("req-day", "emp-1",
		leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 14),
		leave.StatusPendingApproval, leave.RoleHR)
	hour := testRequest("req-hour", "emp-1",
		leave.NewDateTime(2025, time.April, 7, 9, 0), leave.NewDateTime(2025, time.April, 7, 11, 0),
		leave.StatusPendingApproval, leave.RoleHR)
	require.NoError(t, store.CreateRequest(ctx, day))
	require.NoError(t, store.CreateRequest(ctx, hour))

	gotDay, err := store.GetRequest(ctx, "req-day")
	require.NoError(t, err)
	assert.Equal(t, leave.GranularityDay, gotDay.StartAt.Granularity)
	assert.Equal(t, "2025-03-10", gotDay.StartAt.String())

	gotHour, err := store.GetRequest(ctx, "req-hour")
	require.NoError(t, err)
	assert.Equal(t, leave.GranularityHour, gotHour.StartAt.Granularity)
	assert.Equal(t, 9, gotHour.StartAt.Time.Hour())
}

func TestSQLite_DuplicateRequestID_Conflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)

	req := testRequest("req-1", "emp-1",
		leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 10),
		leave.StatusPendingApproval, leave.RoleHR)
	require.NoError(t, store.CreateRequest(ctx, req))

	err := store.CreateRequest(ctx, req)
	assert.ErrorIs(t, err, leave.ErrConflict)
}

// =============================================================================
// QUERY SEMANTICS
// =============================================================================

func TestSQLite_HasOverlappingRequest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)

	open := testRequest("req-open", "emp-1",
		leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 14),
		leave.StatusPendingApproval, leave.RoleHR)
	closed := testRequest("req-closed", "emp-1",
		leave.NewDate(2025, time.April, 1), leave.NewDate(2025, time.April, 4),
		leave.StatusRejected, "")
	require.NoError(t, store.CreateRequest(ctx, open))
	require.NoError(t, store.CreateRequest(ctx, closed))

	overlap, err := store.HasOverlappingRequest(ctx, "emp-1",
		leave.NewDate(2025, time.March, 14), leave.NewDate(2025, time.March, 20), "")
	require.NoError(t, err)
	assert.True(t, overlap, "open request intersects on March 14")

	overlap, err = store.HasOverlappingRequest(ctx, "emp-1",
		leave.NewDate(2025, time.April, 1), leave.NewDate(2025, time.April, 4), "")
	require.NoError(t, err)
	assert.False(t, overlap, "rejected requests do not block")

	overlap, err = store.HasOverlappingRequest(ctx, "emp-1",
		leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 14), "req-open")
	require.NoError(t, err)
	assert.False(t, overlap, "the excluded request is skipped")

	overlap, err = store.HasOverlappingRequest(ctx, "emp-2",
		leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 14), "")
	require.NoError(t, err)
	assert.False(t, overlap, "other employees are unaffected")
}

func TestSQLite_ListRequestsPendingRole_OldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)

	older := testRequest("req-a", "emp-1",
		leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 10),
		leave.StatusPendingApproval, leave.RoleHR)
	older.CreatedAt = time.Date(2025, time.February, 1, 10, 0, 0, 0, time.UTC)
	newer := testRequest("req-b", "emp-1",
		leave.NewDate(2025, time.April, 10), leave.NewDate(2025, time.April, 10),
		leave.StageApproved(leave.RoleHR), leave.RoleManager)
	newer.CreatedAt = time.Date(2025, time.February, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateRequest(ctx, older))
	require.NoError(t, store.CreateRequest(ctx, newer))

	pending, err := store.ListRequestsPendingRole(ctx, []leave.Role{leave.RoleHR, leave.RoleManager})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "req-a", pending[0].ID)

	hrOnly, err := store.ListRequestsPendingRole(ctx, []leave.Role{leave.RoleHR})
	require.NoError(t, err)
	require.Len(t, hrOnly, 1)
	assert.Equal(t, "req-a", hrOnly[0].ID)
}

func TestSQLite_MonthlyHourlyUsage(t *testing.T) {
	// GIVEN: two open hourly requests in June and a cancelled one
	// WHEN: summing June usage
	// THEN: only the open requests count

	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)

	mk := func(id string, day int, status leave.Status) leave.LeaveRequest {
		r := testRequest(id, "emp-1",
			leave.NewDateTime(2025, time.June, day, 9, 0), leave.NewDateTime(2025, time.June, day, 11, 0),
			status, leave.RoleHR)
		r.DurationHours = decimal.NewFromInt(2)
		return r
	}
	require.NoError(t, store.CreateRequest(ctx, mk("h-1", 2, leave.StatusPendingApproval)))
	require.NoError(t, store.CreateRequest(ctx, mk("h-2", 3, leave.StatusApproved)))
	require.NoError(t, store.CreateRequest(ctx, mk("h-3", 4, leave.StatusCancelled)))

	count, hrs, err := store.MonthlyHourlyUsage(ctx, "emp-1", "annual", 2025, time.June)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, hrs.Equal(decimal.NewFromInt(4)), "got %s", hrs)

	count, _, err = store.MonthlyHourlyUsage(ctx, "emp-1", "annual", 2025, time.July)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLite_ListApprovedFrom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)
	require.NoError(t, store.SaveEmployee(ctx, testEmployee("emp-2")))

	past := testRequest("req-past", "emp-1",
		leave.NewDate(2025, time.January, 6), leave.NewDate(2025, time.January, 10),
		leave.StatusApproved, "")
	running := testRequest("req-running", "emp-2",
		leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 14),
		leave.StatusApproved, "")
	require.NoError(t, store.CreateRequest(ctx, past))
	require.NoError(t, store.CreateRequest(ctx, running))

	got, err := store.ListApprovedFrom(ctx, nil, leave.NewDate(2025, time.February, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "req-running", got[0].ID)

	got, err = store.ListApprovedFrom(ctx, []string{"emp-1"}, leave.NewDate(2025, time.January, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "req-past", got[0].ID)
}

func TestSQLite_ListApprovedOverlapping_NilMeansAllEmployees(t *testing.T) {
	// GIVEN: approved leave from two employees inside the window and a
	//        pending one
	// WHEN: querying with a nil employee filter
	// THEN: both approved requests come back, across employees

	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)
	require.NoError(t, store.SaveEmployee(ctx, testEmployee("emp-2")))

	first := testRequest("req-a", "emp-1",
		leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 14),
		leave.StatusApproved, "")
	second := testRequest("req-b", "emp-2",
		leave.NewDate(2025, time.March, 12), leave.NewDate(2025, time.March, 13),
		leave.StatusApproved, "")
	pending := testRequest("req-c", "emp-1",
		leave.NewDate(2025, time.April, 7), leave.NewDate(2025, time.April, 8),
		leave.StatusPendingApproval, leave.RoleHR)
	require.NoError(t, store.CreateRequest(ctx, first))
	require.NoError(t, store.CreateRequest(ctx, second))
	require.NoError(t, store.CreateRequest(ctx, pending))

	got, err := store.ListApprovedOverlapping(ctx, nil,
		leave.NewDate(2025, time.March, 1), leave.NewDate(2025, time.April, 30))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "req-a", got[0].ID)
	assert.Equal(t, "req-b", got[1].ID)

	got, err = store.ListApprovedOverlapping(ctx, []string{"emp-2"},
		leave.NewDate(2025, time.March, 1), leave.NewDate(2025, time.March, 31))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "req-b", got[0].ID)
}

// =============================================================================
// ENTITLEMENTS AND HISTORY
// =============================================================================

func TestSQLite_EntitlementUniquePerYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)

	row := leave.LeaveEntitlement{
		ID:                 "ent-1",
		EmployeeID:         "emp-1",
		Year:               2025,
		TotalHoursEntitled: decimal.NewFromInt(160),
		HoursUsed:          decimal.Zero,
		CreatedAt:          time.Now().UTC(),
	}
	require.NoError(t, store.CreateEntitlement(ctx, row))

	dup := row
	dup.ID = "ent-2"
	err := store.CreateEntitlement(ctx, dup)
	assert.ErrorIs(t, err, leave.ErrConflict)

	got, err := store.GetEntitlement(ctx, "emp-1", 2025)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.TotalHoursEntitled.Equal(decimal.NewFromInt(160)))

	got.HoursUsed = decimal.NewFromInt(24)
	require.NoError(t, store.UpdateEntitlement(ctx, *got))
	got, err = store.GetEntitlement(ctx, "emp-1", 2025)
	require.NoError(t, err)
	assert.True(t, got.HoursUsed.Equal(decimal.NewFromInt(24)))
}

func TestSQLite_ApprovalHistory_InOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)

	req := testRequest("req-1", "emp-1",
		leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 10),
		leave.StatusPendingApproval, leave.RoleHR)
	require.NoError(t, store.CreateRequest(ctx, req))

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i, action := range []leave.Status{
		leave.StageApproved(leave.RoleHR),
		leave.StageApproved(leave.RoleManager),
		leave.StatusApproved,
	} {
		require.NoError(t, store.AppendApproval(ctx, leave.ApprovalRecord{
			ID:             string(rune('a' + i)),
			LeaveRequestID: "req-1",
			ApproverID:     "approver",
			Action:         action,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := store.ListApprovals(ctx, "req-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, leave.StageApproved(leave.RoleHR), records[0].Action)
	assert.Equal(t, leave.StatusApproved, records[2].Action)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestSQLite_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: a transaction that writes then fails
	// WHEN: the closure returns an error
	// THEN: nothing it wrote survives

	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s leave.Store) error {
		req := testRequest("req-tx", "emp-1",
			leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 10),
			leave.StatusPendingApproval, leave.RoleHR)
		if err := s.CreateRequest(ctx, req); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.GetRequest(ctx, "req-tx")
	require.NoError(t, err)
	assert.Nil(t, got, "rolled-back insert must not be visible")
}

func TestSQLite_WithTx_CommitsOnSuccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedRequestFixtures(t, store)

	err := store.WithTx(ctx, func(s leave.Store) error {
		return s.CreateRequest(ctx, testRequest("req-tx", "emp-1",
			leave.NewDate(2025, time.March, 10), leave.NewDate(2025, time.March, 10),
			leave.StatusPendingApproval, leave.RoleHR))
	})
	require.NoError(t, err)

	got, err := store.GetRequest(ctx, "req-tx")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

// =============================================================================
// SPRINTS AND HOLIDAYS
// =============================================================================

func TestSQLite_LatestSprint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveDepartment(ctx, leave.Department{ID: "dept-1", Name: "Engineering", IsActive: true}))

	mk := func(id string, start leave.TimePoint) leave.Sprint {
		return leave.Sprint{
			ID:            id,
			DepartmentID:  "dept-1",
			Name:          "Sprint " + id,
			StartDate:     start,
			EndDate:       start.AddDays(13),
			DurationWeeks: 2,
		}
	}
	require.NoError(t, store.CreateSprint(ctx, mk("1", leave.NewDate(2025, time.March, 3))))
	require.NoError(t, store.CreateSprint(ctx, mk("2", leave.NewDate(2025, time.March, 17))))

	latest, err := store.LatestSprint(ctx, "dept-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2", latest.ID)

	none, err := store.LatestSprint(ctx, "dept-x")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSQLite_HolidaysInRange_ActiveIntersecting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	save := func(id string, start, end leave.TimePoint, active bool) {
		require.NoError(t, store.SaveHoliday(ctx, leave.Holiday{
			ID: id, Name: id, StartDate: start, EndDate: end, IsActive: active,
		}))
	}
	save("inside", leave.NewDate(2025, time.April, 23), leave.NewDate(2025, time.April, 23), true)
	save("straddles", leave.NewDate(2025, time.April, 29), leave.NewDate(2025, time.May, 2), true)
	save("outside", leave.NewDate(2025, time.June, 1), leave.NewDate(2025, time.June, 1), true)
	save("inactive", leave.NewDate(2025, time.April, 24), leave.NewDate(2025, time.April, 24), false)

	got, err := store.HolidaysInRange(ctx,
		leave.NewDate(2025, time.April, 1), leave.NewDate(2025, time.April, 30))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "inside", got[0].ID)
	assert.Equal(t, "straddles", got[1].ID)
}

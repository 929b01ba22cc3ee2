package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/furkangemici/leave-management-system-sub000/leave"
	"github.com/furkangemici/leave-management-system-sub000/leave/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// engine bundles the wired services over an in-memory store.
type engine struct {
	store        *store.TxMemory
	lifecycle    *leave.Lifecycle
	entitlements *leave.EntitlementManager
	calendar     *leave.Calendar
	calc         *leave.DurationCalculator
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	mem := store.NewTxMemory()
	calendar := leave.NewCalendar(mem)
	calc := leave.NewDurationCalculator(calendar)
	entitlements := leave.NewEntitlementManager(mem)
	return &engine{
		store:        mem,
		lifecycle:    leave.NewLifecycle(mem, entitlements, calc, calendar, leave.NopNotifier{}),
		entitlements: entitlements,
		calendar:     calendar,
		calc:         calc,
	}
}

func (e *engine) seedDepartment(t *testing.T, id, name string) {
	t.Helper()
	err := e.store.SaveDepartment(context.Background(), leave.Department{ID: id, Name: name, IsActive: true})
	require.NoError(t, err)
}

func (e *engine) seedEmployee(t *testing.T, id, departmentID string, hireDate time.Time) {
	t.Helper()
	err := e.store.SaveEmployee(context.Background(), leave.Employee{
		ID:             id,
		FirstName:      "Test",
		LastName:       id,
		Email:          id + "@example.com",
		HireDate:       hireDate,
		DailyWorkHours: decimal.NewFromInt(8),
		DepartmentID:   departmentID,
		IsActive:       true,
	})
	require.NoError(t, err)
}

func (e *engine) seedLeaveType(t *testing.T, lt leave.LeaveType) {
	t.Helper()
	require.NoError(t, e.store.SaveLeaveType(context.Background(), lt))
}

func annualType(t *testing.T) leave.LeaveType {
	t.Helper()
	return leave.LeaveType{
		ID:                "annual",
		Name:              "Annual Leave",
		IsPaid:            true,
		DeductsFromAnnual: true,
		RequestUnit:       leave.UnitDay,
		Workflow:          leave.ParseWorkflow("HR,MANAGER,CEO"),
		IsActive:          true,
	}
}

func sickType(t *testing.T) leave.LeaveType {
	t.Helper()
	return leave.LeaveType{
		ID:               "sick",
		Name:             "Sick Leave",
		IsPaid:           true,
		DocumentRequired: true,
		RequestUnit:      leave.UnitDay,
		Workflow:         leave.ParseWorkflow("HR"),
		IsActive:         true,
	}
}

func hourlyType(t *testing.T) leave.LeaveType {
	t.Helper()
	return leave.LeaveType{
		ID:          "excuse",
		Name:        "Hourly Excuse",
		IsPaid:      true,
		RequestUnit: leave.UnitHour,
		Workflow:    leave.ParseWorkflow("MANAGER"),
		IsActive:    true,
	}
}

// newStandardEngine seeds one department, a tenured employee ("emp-1",
// hired mid-2019 so the senior tier applies) and the three leave types.
func newStandardEngine(t *testing.T) *engine {
	t.Helper()
	e := newEngine(t)
	e.seedDepartment(t, "dept-eng", "Engineering")
	e.seedEmployee(t, "emp-1", "dept-eng", time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC))
	e.seedLeaveType(t, annualType(t))
	e.seedLeaveType(t, sickType(t))
	e.seedLeaveType(t, hourlyType(t))
	return e
}

func principal(id string, roles ...leave.Role) leave.Principal {
	return leave.Principal{EmployeeID: id, Roles: roles}
}

func hours(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

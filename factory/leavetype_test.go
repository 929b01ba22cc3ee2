package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furkangemici/leave-management-system-sub000/factory"
	"github.com/furkangemici/leave-management-system-sub000/leave"
)

func TestFactory_ParseRoundTrip(t *testing.T) {
	f := factory.NewLeaveTypeFactory()

	lt, err := f.Parse(`{
		"id": "annual",
		"name": "Annual Leave",
		"is_paid": true,
		"deducts_from_annual": true,
		"workflow": "HR,MANAGER,CEO"
	}`)
	require.NoError(t, err)

	assert.Equal(t, "annual", lt.ID)
	assert.True(t, lt.DeductsFromAnnual)
	assert.True(t, lt.IsActive, "active defaults to true")
	assert.Equal(t, leave.UnitDay, lt.RequestUnit, "unit defaults to DAY")
	assert.Equal(t, leave.Workflow{leave.RoleHR, leave.RoleManager, leave.RoleCEO}, lt.Workflow)

	back := f.ToJSON(*lt)
	assert.Equal(t, "HR,MANAGER,CEO", back.Workflow)
}

func TestFactory_Validation(t *testing.T) {
	f := factory.NewLeaveTypeFactory()

	_, err := f.Parse(`{"name": "No ID", "workflow": "HR"}`)
	assert.Error(t, err, "id is required")

	_, err = f.Parse(`{"id": "x", "workflow": "HR"}`)
	assert.Error(t, err, "name is required")

	_, err = f.Parse(`{"id": "x", "name": "X"}`)
	assert.Error(t, err, "workflow is required")

	_, err = f.Parse(`{"id": "x", "name": "X", "workflow": " , "}`)
	assert.Error(t, err, "workflow must name at least one role")

	_, err = f.Parse(`{"id": "x", "name": "X", "workflow": "HR", "request_unit": "WEEK"}`)
	assert.Error(t, err, "unknown request unit")
}

func TestFactory_Defaults(t *testing.T) {
	f := factory.NewLeaveTypeFactory()
	defaults := f.Defaults()
	require.Len(t, defaults, 4)

	byID := make(map[string]leave.LeaveType, len(defaults))
	for _, lt := range defaults {
		byID[lt.ID] = lt
	}

	annual := byID["annual"]
	assert.True(t, annual.DeductsFromAnnual)
	assert.Equal(t, 3, len(annual.Workflow))

	sick := byID["sick"]
	assert.True(t, sick.DocumentRequired)
	assert.Equal(t, leave.Workflow{leave.RoleHR}, sick.Workflow)

	hourly := byID["excuse-hourly"]
	assert.Equal(t, leave.UnitHour, hourly.RequestUnit)
	assert.False(t, hourly.DeductsFromAnnual)

	unpaid := byID["unpaid"]
	assert.False(t, unpaid.IsPaid)
}

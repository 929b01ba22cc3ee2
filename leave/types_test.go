package leave_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/furkangemici/leave-management-system-sub000/leave"
)

func TestParseWorkflow(t *testing.T) {
	wf := leave.ParseWorkflow(" HR, MANAGER ,CEO ")
	assert.Equal(t, leave.Workflow{leave.RoleHR, leave.RoleManager, leave.RoleCEO}, wf)
	assert.Equal(t, "HR,MANAGER,CEO", wf.String())

	assert.True(t, leave.ParseWorkflow("").IsEmpty())
	assert.True(t, leave.ParseWorkflow(" , ,").IsEmpty())
}

func TestWorkflow_Advance(t *testing.T) {
	wf := leave.ParseWorkflow("HR,MANAGER,CEO")

	next, final, ok := wf.Advance(leave.RoleHR)
	assert.True(t, ok)
	assert.False(t, final)
	assert.Equal(t, leave.RoleManager, next)

	next, final, ok = wf.Advance(leave.RoleCEO)
	assert.True(t, ok)
	assert.True(t, final)
	assert.Empty(t, next)

	_, _, ok = wf.Advance("INTERN")
	assert.False(t, ok)
}

func TestStatus_Stages(t *testing.T) {
	stage := leave.StageApproved(leave.RoleHR)
	assert.Equal(t, leave.Status("APPROVED_HR"), stage)
	assert.True(t, stage.IsIntermediate())
	assert.False(t, stage.Terminal())

	assert.False(t, leave.StatusApproved.IsIntermediate())
	assert.True(t, leave.StatusApproved.Terminal())
	assert.False(t, leave.StatusApproved.Closed())

	assert.True(t, leave.StatusRejected.Closed())
	assert.True(t, leave.StatusCancelled.Closed())
	assert.False(t, leave.StatusPendingApproval.Terminal())
}

func TestYearsOfService_AnniversaryBoundary(t *testing.T) {
	emp := leave.Employee{HireDate: time.Date(2020, time.June, 15, 0, 0, 0, 0, time.UTC)}

	dayBefore := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 4, emp.YearsOfServiceAsOf(dayBefore))

	anniversary := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 5, emp.YearsOfServiceAsOf(anniversary))
}

func TestTimePoint_Comparisons(t *testing.T) {
	a := leave.NewDate(2025, time.March, 10)
	b := leave.NewDateTime(2025, time.March, 10, 14, 0)

	assert.True(t, a.SameDay(b))
	assert.True(t, a.Before(b))
	assert.True(t, b.AfterOrEqual(a))
	assert.True(t, a.Min(b).Equal(a))
	assert.True(t, a.Max(b).Equal(b))
}

func TestHoliday_Covers(t *testing.T) {
	h := leave.Holiday{
		StartDate: leave.NewDate(2025, time.April, 23),
		EndDate:   leave.NewDate(2025, time.April, 25),
	}
	assert.True(t, h.Covers(leave.NewDate(2025, time.April, 24)))
	assert.False(t, h.Covers(leave.NewDate(2025, time.April, 26)))
}

/*
report.go - Sprint capacity-impact report

PURPOSE:
  Answers "how many working hours does this window lose to approved
  leave?". All approved requests intersecting the window, across every
  department, are clipped to the window and the duration calculator
  re-runs on the clipped dates, so a two-week vacation straddling the
  window boundary only charges the days inside it. The report is
  company-wide: a sprint window charges leave from employees outside
  the sprint's department too, since their absence still costs the
  company those hours.

HOUR-UNIT REQUESTS:
  Hourly leaves sit inside a single working day. Unlike day-unit rows,
  they are never clipped and recalculated: when that day falls in the
  window the request's own duration is charged unchanged, because a
  day-granularity recalculation would wrongly bill a full day.
*/
package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// ReportRow is one approved leave's impact on the report window.
type ReportRow struct {
	EmployeeID       string
	EmployeeName     string
	LeaveTypeName    string
	LeaveStart       TimePoint
	LeaveEnd         TimePoint
	OverlappingHours decimal.Decimal
}

// SprintImpact is the capacity report for one sprint window.
type SprintImpact struct {
	SprintID       string
	SprintName     string
	WindowStart    TimePoint
	WindowEnd      TimePoint
	Rows           []ReportRow
	TotalLossHours decimal.Decimal
}

// Reporter generates sprint capacity-impact reports.
type Reporter struct {
	store Store
	calc  *DurationCalculator
}

func NewReporter(store Store, calc *DurationCalculator) *Reporter {
	return &Reporter{store: store, calc: calc}
}

// ForSprint reports the company-wide leave impact on the given
// sprint's window.
func (r *Reporter) ForSprint(ctx context.Context, sprintID string) (*SprintImpact, error) {
	sprint, err := r.store.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		return nil, ErrSprintNotFound
	}

	impact, err := r.Generate(ctx, sprint.StartDate, sprint.EndDate)
	if err != nil {
		return nil, err
	}
	impact.SprintID = sprint.ID
	impact.SprintName = sprint.Name
	return impact, nil
}

// Generate reports the leave impact on [windowStart, windowEnd] across
// all employees. An empty window yields zero total and an empty row
// list, not an error.
func (r *Reporter) Generate(ctx context.Context, windowStart, windowEnd TimePoint) (*SprintImpact, error) {
	impact := &SprintImpact{
		WindowStart:    windowStart,
		WindowEnd:      windowEnd,
		Rows:           []ReportRow{},
		TotalLossHours: decimal.Zero,
	}
	if windowEnd.Before(windowStart) {
		return impact, nil
	}

	approved, err := r.store.ListApprovedOverlapping(ctx, nil, windowStart.Date(), windowEnd.Date())
	if err != nil {
		return nil, err
	}

	byID, err := r.employeesByID(ctx)
	if err != nil {
		return nil, err
	}
	types, err := r.leaveTypeNames(ctx, approved)
	if err != nil {
		return nil, err
	}

	for _, req := range approved {
		employee, ok := byID[req.EmployeeID]
		if !ok {
			continue
		}

		hours, err := r.overlapHours(ctx, req, employee, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}
		if !hours.IsPositive() {
			continue
		}

		impact.Rows = append(impact.Rows, ReportRow{
			EmployeeID:       employee.ID,
			EmployeeName:     employee.FullName(),
			LeaveTypeName:    types[req.LeaveTypeID],
			LeaveStart:       req.StartAt,
			LeaveEnd:         req.EndAt,
			OverlappingHours: hours,
		})
		impact.TotalLossHours = impact.TotalLossHours.Add(hours)
	}
	return impact, nil
}

// overlapHours charges a single approved request against the window.
func (r *Reporter) overlapHours(ctx context.Context, req LeaveRequest, employee Employee, windowStart, windowEnd TimePoint) (decimal.Decimal, error) {
	if req.StartAt.Granularity == GranularityHour {
		day := req.StartAt.Date()
		if day.AfterOrEqual(windowStart.Date()) && day.BeforeOrEqual(windowEnd.Date()) {
			return req.DurationHours, nil
		}
		return decimal.Zero, nil
	}

	clippedStart := req.StartAt.Date().Max(windowStart.Date())
	clippedEnd := req.EndAt.Date().Min(windowEnd.Date())
	return r.calc.Calculate(ctx, clippedStart, clippedEnd, employee.DailyWorkHours)
}

func (r *Reporter) employeesByID(ctx context.Context) (map[string]Employee, error) {
	employees, err := r.store.ListEmployees(ctx, false)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}
	return byID, nil
}

func (r *Reporter) leaveTypeNames(ctx context.Context, requests []LeaveRequest) (map[string]string, error) {
	names := map[string]string{}
	for _, req := range requests {
		if _, done := names[req.LeaveTypeID]; done {
			continue
		}
		lt, err := r.store.GetLeaveType(ctx, req.LeaveTypeID)
		if err != nil {
			return nil, err
		}
		if lt != nil {
			names[req.LeaveTypeID] = lt.Name
		}
	}
	return names, nil
}

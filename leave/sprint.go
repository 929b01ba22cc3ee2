/*
sprint.go - Sprint horizon planner

PURPOSE:
  Keeps every active department's sprint calendar populated six months
  ahead. For each department the planner finds the latest sprint by
  end date and appends contiguous sprints (next start = previous end
  plus one day) until the horizon is covered.

NAMING:
  Sprint numbers continue the department's existing sequence: the
  numeric suffix of "Sprint N" names is parsed from the latest sprint
  and incremented. Names follow "Sprint <n> - <department> - <year>".

BOOTSTRAPPING:
  A department with no sprints yet, or whose latest sprint has a
  non-positive duration, is skipped: the planner extends an existing
  cadence, it does not invent one.
*/
package leave

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const planningHorizonMonths = 6

var sprintNumberPattern = regexp.MustCompile(`Sprint\s+(\d+)`)

// Planner generates future sprints per department.
type Planner struct {
	store TxStore
	now   func() time.Time
}

func NewPlanner(store TxStore) *Planner {
	return &Planner{store: store, now: time.Now}
}

// PlanAll extends the sprint calendar of every active department and
// returns the number of sprints created.
func (p *Planner) PlanAll(ctx context.Context) (int, error) {
	departments, err := p.store.ListDepartments(ctx, true)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, dept := range departments {
		n, err := p.PlanDepartment(ctx, dept)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

// PlanDepartment appends contiguous sprints for one department until
// its calendar reaches the planning horizon. Departments without an
// existing sprint cadence are left alone.
func (p *Planner) PlanDepartment(ctx context.Context, dept Department) (int, error) {
	latest, err := p.store.LatestSprint(ctx, dept.ID)
	if err != nil {
		return 0, err
	}
	if latest == nil || latest.DurationWeeks <= 0 {
		return 0, nil
	}

	horizon := DateOf(p.now().UTC()).AddMonths(planningHorizonMonths)
	number := nextSprintNumber(latest.Name)
	weeks := latest.DurationWeeks

	created := 0
	prevEnd := latest.EndDate
	for prevEnd.Before(horizon) {
		start := prevEnd.AddDays(1)
		end := start.AddDays(weeks*7 - 1)
		sprint := Sprint{
			ID:            uuid.NewString(),
			DepartmentID:  dept.ID,
			Name:          fmt.Sprintf("Sprint %d - %s - %d", number, dept.Name, start.Year()),
			StartDate:     start,
			EndDate:       end,
			DurationWeeks: weeks,
		}
		if err := p.store.CreateSprint(ctx, sprint); err != nil {
			return created, err
		}
		created++
		number++
		prevEnd = end
	}
	return created, nil
}

// nextSprintNumber parses the numeric suffix of a "Sprint N" name and
// returns N+1. Names without a number restart at 1.
func nextSprintNumber(name string) int {
	m := sprintNumberPattern.FindStringSubmatch(name)
	if len(m) != 2 {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return n + 1
}

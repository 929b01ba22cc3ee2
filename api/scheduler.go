/*
scheduler.go - Background planning scheduler

PURPOSE:
  Periodically extends the sprint calendar for every active department
  and materializes annual leave entitlements when a new calendar year
  begins, so neither depends on anyone remembering to press a button.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Sprint planning is idempotent: departments already planned out to
    the horizon produce no new rows
  - Entitlement materialization is idempotent per (employee, year)
  - Tracks the last year it materialized to avoid redundant passes

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewPlanningScheduler(handler, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - leave/sprint.go: Planner
  - leave/entitlement.go: EntitlementManager.EnsureYearForAll
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PlanningScheduler keeps sprints and entitlements current.
type PlanningScheduler struct {
	Handler       *Handler
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker   *time.Ticker
	stop     chan bool
	wg       sync.WaitGroup
	mu       sync.Mutex
	lastYear int
}

// NewPlanningScheduler creates a new scheduler.
func NewPlanningScheduler(handler *Handler, logger *slog.Logger) *PlanningScheduler {
	return &PlanningScheduler{
		Handler:       handler,
		Logger:        logger,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ps *PlanningScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.Enabled {
		ps.Logger.Info("scheduler disabled, not starting")
		return
	}

	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.wg.Add(1)

	go ps.run()

	ps.Logger.Info("scheduler started", "check_interval", ps.CheckInterval)
}

// Stop stops the scheduler.
func (ps *PlanningScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		close(ps.stop)
		ps.wg.Wait()
		ps.Logger.Info("scheduler stopped")
	}
}

func (ps *PlanningScheduler) run() {
	defer ps.wg.Done()

	// Run immediately on start
	ps.tick()

	for {
		select {
		case <-ps.ticker.C:
			ps.tick()
		case <-ps.stop:
			return
		}
	}
}

func (ps *PlanningScheduler) tick() {
	ctx := context.Background()

	created, err := ps.Handler.Planner.PlanAll(ctx)
	if err != nil {
		ps.Logger.Error("sprint planning failed", "error", err)
	} else if created > 0 {
		ps.Logger.Info("sprint planning complete", "sprints_created", created)
	}

	year := time.Now().UTC().Year()
	if year == ps.lastYear {
		return
	}
	ensured, err := ps.Handler.Entitlements.EnsureYearForAll(ctx, year)
	if err != nil {
		ps.Logger.Error("entitlement materialization failed", "year", year, "error", err)
		return
	}
	ps.lastYear = year
	ps.Logger.Info("entitlements materialized", "year", year, "employees", ensured)
}

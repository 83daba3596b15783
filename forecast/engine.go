/*
engine.go - Store-backed forecast operations

PURPOSE:
  Wires the pure computation (Generate, RecalculateAllocation) to the
  persistence interfaces. This is the surface the HTTP layer calls.

OPERATIONS:
  CompanyForecast:  Demand across all forecastable projects in a window
  ProjectForecast:  Demand for one project over its schedule dates
  RecalculatePlan:  Flat allocation recompute + transactional replace

CONCURRENCY:
  The engine itself is stateless; each call computes from scratch.
  Serialization of concurrent allocation recomputes for the same
  project is the store's responsibility.

SEE ALSO:
  - assemble.go: Generate
  - allocation.go: RecalculateAllocation
  - store.go: Interface contracts
*/
package forecast

import (
	"context"
)

// Engine exposes forecast operations over a Store.
type Engine struct {
	Store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{Store: store}
}

// CompanyForecast aggregates demand across every forecastable project
// overlapping the window, optionally restricted by the filter. An
// inverted window is rejected before any phase data is read.
func (e *Engine) CompanyForecast(ctx context.Context, start, end Date, filter PhaseFilter, granularity Granularity) (*ForecastResult, error) {
	if end.Before(start) {
		return nil, ErrInvalidWindow
	}

	phases, err := e.Store.ActivePhasesInRange(ctx, start, end, filter)
	if err != nil {
		return nil, err
	}

	names, err := e.projectNames(ctx, phases)
	if err != nil {
		return nil, err
	}

	return Generate(phases, start, end, granularity, names)
}

// ProjectForecast builds a forecast for a single project using its
// schedule dates as the window. A project with a schedule but no
// phases yields an empty forecast rather than an error.
func (e *Engine) ProjectForecast(ctx context.Context, projectID ProjectID, granularity Granularity) (*ForecastResult, error) {
	project, err := e.Store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	schedule, err := e.Store.GetSchedule(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}

	phases, err := e.Store.SchedulePhases(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}

	if len(phases) == 0 {
		return &ForecastResult{
			StartDate:        schedule.StartDate,
			EndDate:          schedule.EndDate,
			ProjectCount:     1,
			WeeklyForecast:   []WeeklyBucket{},
			MonthlyForecast:  []MonthlyBucket{},
			ProjectsIncluded: []ProjectContribution{},
		}, nil
	}

	names := NameMap{projectID: project.Name}
	return Generate(phases, schedule.StartDate, schedule.EndDate, granularity, names)
}

// RecalculatePlan recomputes a project's flat monthly allocation from
// its stored labor plan and transactionally replaces the persisted
// rows. Returns the new allocation set.
func (e *Engine) RecalculatePlan(ctx context.Context, projectID ProjectID) ([]MonthlyAllocation, error) {
	plan, err := e.Store.GetLaborPlan(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrLaborPlanNotFound
	}

	allocations, err := RecalculateAllocation(*plan)
	if err != nil {
		return nil, err
	}

	if err := e.Store.ReplaceAllocations(ctx, projectID, allocations); err != nil {
		return nil, err
	}
	return allocations, nil
}

// SavePlan persists an updated labor plan and immediately recomputes
// its allocations, keeping the persisted rows in sync with the plan.
func (e *Engine) SavePlan(ctx context.Context, plan LaborPlan) ([]MonthlyAllocation, error) {
	if plan.EndMonth.Before(plan.StartMonth) {
		return nil, ErrInvalidMonthRange
	}

	project, err := e.Store.GetProject(ctx, plan.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	if err := e.Store.SaveLaborPlan(ctx, plan); err != nil {
		return nil, err
	}
	return e.RecalculatePlan(ctx, plan.ProjectID)
}

// projectNames prefetches display names for every distinct project in
// the phase set.
func (e *Engine) projectNames(ctx context.Context, phases []Phase) (NameMap, error) {
	seen := make(map[ProjectID]bool)
	var ids []ProjectID
	for _, p := range phases {
		if !seen[p.ProjectID] {
			seen[p.ProjectID] = true
			ids = append(ids, p.ProjectID)
		}
	}
	if len(ids) == 0 {
		return NameMap{}, nil
	}

	names, err := e.Store.ProjectNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	return NameMap(names), nil
}

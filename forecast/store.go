/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:
  Defines the storage contracts the projection engine depends on.
  Implementations live in store/sqlite (production) and store/memory
  (tests, demos). The engine package never imports a driver.

OWNERSHIP:
  The engine reads phases, projects, and labor plans; the only rows it
  writes are monthly allocations, and those are always replaced as a
  whole set inside one transaction. ReplaceAllocations implementations
  must be atomic: either every old row is gone and every new row is in,
  or nothing changed.

SEE ALSO:
  - engine.go: Uses these interfaces
  - ../store/sqlite/sqlite.go: SQLite implementation
  - ../store/memory/memory.go: In-memory implementation
*/
package forecast

import (
	"context"
)

// =============================================================================
// PROJECT / SCHEDULE / CREW RECORDS
// =============================================================================

type ProjectStatus string

const (
	StatusActive      ProjectStatus = "active"
	StatusProspective ProjectStatus = "prospective"
	StatusCompleted   ProjectStatus = "completed"
	StatusOnHold      ProjectStatus = "on_hold"
)

// ForecastableStatuses are the project statuses included in demand
// queries. Completed and on-hold work carries no future demand.
var ForecastableStatuses = []ProjectStatus{StatusActive, StatusProspective}

type Project struct {
	ID     ProjectID
	Name   string
	Status ProjectStatus
}

// Schedule is a project's phase container with its overall date range.
type Schedule struct {
	ID        int64
	ProjectID ProjectID
	StartDate Date
	EndDate   Date
}

type CrewType struct {
	ID   CrewTypeID
	Name string
}

// PhaseFilter restricts a company-wide phase query. Empty slices mean
// no restriction.
type PhaseFilter struct {
	ProjectIDs  []ProjectID
	CrewTypeIDs []CrewTypeID
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// PhaseStore supplies phases for company-wide forecasting.
type PhaseStore interface {
	// ActivePhasesInRange returns phases overlapping [start, end] whose
	// owning project has a forecastable status, optionally restricted
	// by the filter.
	ActivePhasesInRange(ctx context.Context, start, end Date, filter PhaseFilter) ([]Phase, error)
}

// ProjectStore supplies project, schedule, and crew-type records.
type ProjectStore interface {
	GetProject(ctx context.Context, id ProjectID) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	CreateProject(ctx context.Context, p Project) (ProjectID, error)

	// ProjectNames resolves display names for attribution. Missing
	// projects are simply absent from the map.
	ProjectNames(ctx context.Context, ids []ProjectID) (map[ProjectID]string, error)

	GetSchedule(ctx context.Context, projectID ProjectID) (*Schedule, error)
	SchedulePhases(ctx context.Context, scheduleID int64) ([]Phase, error)

	ListCrewTypes(ctx context.Context) ([]CrewType, error)
}

// AllocationStore owns labor plans and their monthly allocation rows.
type AllocationStore interface {
	GetLaborPlan(ctx context.Context, projectID ProjectID) (*LaborPlan, error)
	SaveLaborPlan(ctx context.Context, plan LaborPlan) error

	// ReplaceAllocations atomically swaps the project's allocation set:
	// delete all existing rows, insert the new ones, one transaction.
	ReplaceAllocations(ctx context.Context, projectID ProjectID, allocations []MonthlyAllocation) error

	Allocations(ctx context.Context, projectID ProjectID) ([]MonthlyAllocation, error)
}

// Store is the full persistence surface the engine and API need.
type Store interface {
	PhaseStore
	ProjectStore
	AllocationStore
}

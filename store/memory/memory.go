// Package memory provides an in-memory forecast.Store (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Futilediploma/SprinkSync/forecast"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu sync.RWMutex

	projects    map[forecast.ProjectID]forecast.Project
	schedules   map[int64]forecast.Schedule
	phases      map[int64][]forecast.Phase // keyed by schedule id
	crewTypes   map[forecast.CrewTypeID]forecast.CrewType
	plans       map[forecast.ProjectID]forecast.LaborPlan
	allocations map[forecast.ProjectID][]forecast.MonthlyAllocation

	nextProject  forecast.ProjectID
	nextSchedule int64
	nextPhase    forecast.PhaseID
	nextCrewType forecast.CrewTypeID
}

func New() *Store {
	return &Store{
		projects:     make(map[forecast.ProjectID]forecast.Project),
		schedules:    make(map[int64]forecast.Schedule),
		phases:       make(map[int64][]forecast.Phase),
		crewTypes:    make(map[forecast.CrewTypeID]forecast.CrewType),
		plans:        make(map[forecast.ProjectID]forecast.LaborPlan),
		allocations:  make(map[forecast.ProjectID][]forecast.MonthlyAllocation),
		nextProject:  1,
		nextSchedule: 1,
		nextPhase:    1,
		nextCrewType: 1,
	}
}

// =============================================================================
// PROJECT STORE
// =============================================================================

func (m *Store) CreateProject(_ context.Context, p forecast.Project) (forecast.ProjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.Status == "" {
		p.Status = forecast.StatusActive
	}
	p.ID = m.nextProject
	m.nextProject++
	m.projects[p.ID] = p
	return p.ID, nil
}

func (m *Store) GetProject(_ context.Context, id forecast.ProjectID) (*forecast.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Store) ListProjects(_ context.Context) ([]forecast.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	projects := make([]forecast.Project, 0, len(m.projects))
	for _, p := range m.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func (m *Store) ProjectNames(_ context.Context, ids []forecast.ProjectID) (map[forecast.ProjectID]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make(map[forecast.ProjectID]string, len(ids))
	for _, id := range ids {
		if p, ok := m.projects[id]; ok {
			names[id] = p.Name
		}
	}
	return names, nil
}

func (m *Store) CreateSchedule(_ context.Context, sched forecast.Schedule) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sched.ID = m.nextSchedule
	m.nextSchedule++
	m.schedules[sched.ID] = sched
	return sched.ID, nil
}

func (m *Store) GetSchedule(_ context.Context, projectID forecast.ProjectID) (*forecast.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sched := range m.schedules {
		if sched.ProjectID == projectID {
			s := sched
			return &s, nil
		}
	}
	return nil, nil
}

func (m *Store) CreatePhase(_ context.Context, scheduleID int64, p forecast.Phase) (forecast.PhaseID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.EstimatedHours == nil && p.CrewSize == nil {
		def := forecast.DefaultCrewSize
		p.CrewSize = &def
	}
	if sched, ok := m.schedules[scheduleID]; ok {
		p.ProjectID = sched.ProjectID
	}
	p.ID = m.nextPhase
	m.nextPhase++
	m.phases[scheduleID] = append(m.phases[scheduleID], p)
	return p.ID, nil
}

func (m *Store) SchedulePhases(_ context.Context, scheduleID int64) ([]forecast.Phase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	phases := make([]forecast.Phase, len(m.phases[scheduleID]))
	copy(phases, m.phases[scheduleID])
	return phases, nil
}

func (m *Store) CreateCrewType(_ context.Context, name string) (forecast.CrewTypeID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextCrewType
	m.nextCrewType++
	m.crewTypes[id] = forecast.CrewType{ID: id, Name: name}
	return id, nil
}

func (m *Store) ListCrewTypes(_ context.Context) ([]forecast.CrewType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	types := make([]forecast.CrewType, 0, len(m.crewTypes))
	for _, ct := range m.crewTypes {
		types = append(types, ct)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

// =============================================================================
// PHASE STORE
// =============================================================================

func (m *Store) ActivePhasesInRange(_ context.Context, start, end forecast.Date, filter forecast.PhaseFilter) ([]forecast.Phase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	projectFilter := toSet(filter.ProjectIDs)
	crewFilter := toSet(filter.CrewTypeIDs)

	var result []forecast.Phase
	for scheduleID, phases := range m.phases {
		sched, ok := m.schedules[scheduleID]
		if !ok {
			continue
		}
		project, ok := m.projects[sched.ProjectID]
		if !ok || !forecastable(project.Status) {
			continue
		}
		if len(projectFilter) > 0 && !projectFilter[int64(project.ID)] {
			continue
		}
		for _, p := range phases {
			if p.StartDate.After(end) || p.EndDate.Before(start) {
				continue
			}
			if len(crewFilter) > 0 && (p.CrewTypeID == nil || !crewFilter[int64(*p.CrewTypeID)]) {
				continue
			}
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func forecastable(status forecast.ProjectStatus) bool {
	for _, s := range forecast.ForecastableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func toSet[T ~int64](ids []T) map[int64]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[int64(id)] = true
	}
	return set
}

// =============================================================================
// ALLOCATION STORE
// =============================================================================

func (m *Store) GetLaborPlan(_ context.Context, projectID forecast.ProjectID) (*forecast.LaborPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plan, ok := m.plans[projectID]
	if !ok {
		return nil, nil
	}
	return &plan, nil
}

func (m *Store) SaveLaborPlan(_ context.Context, plan forecast.LaborPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plans[plan.ProjectID] = plan
	return nil
}

// ReplaceAllocations swaps the project's allocation set. The write
// lock makes the delete/insert pair atomic and serializes concurrent
// recomputes.
func (m *Store) ReplaceAllocations(_ context.Context, projectID forecast.ProjectID, allocations []forecast.MonthlyAllocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	replacement := make([]forecast.MonthlyAllocation, len(allocations))
	copy(replacement, allocations)
	m.allocations[projectID] = replacement
	return nil
}

func (m *Store) Allocations(_ context.Context, projectID forecast.ProjectID) ([]forecast.MonthlyAllocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	allocations := make([]forecast.MonthlyAllocation, len(m.allocations[projectID]))
	copy(allocations, m.allocations[projectID])
	sort.Slice(allocations, func(i, j int) bool { return allocations[i].Month < allocations[j].Month })
	return allocations, nil
}

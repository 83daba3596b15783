package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Futilediploma/SprinkSync/forecast"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createProject(t *testing.T, store *Store, name string, status forecast.ProjectStatus) forecast.ProjectID {
	t.Helper()
	id, err := store.CreateProject(context.Background(), forecast.Project{Name: name, Status: status})
	require.NoError(t, err)
	return id
}

func createSchedule(t *testing.T, store *Store, projectID forecast.ProjectID, start, end forecast.Date) int64 {
	t.Helper()
	id, err := store.CreateSchedule(context.Background(), forecast.Schedule{
		ProjectID: projectID,
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	return id
}

func date(y int, m time.Month, d int) forecast.Date {
	return forecast.NewDate(y, m, d)
}

func decp(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// =============================================================================
// PROJECTS AND SCHEDULES
// =============================================================================

func TestStore_ProjectRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := createProject(t, store, "Riverside Medical Center", forecast.StatusProspective)

	got, err := store.GetProject(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Riverside Medical Center", got.Name)
	assert.Equal(t, forecast.StatusProspective, got.Status)
}

func TestStore_GetProject_Missing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetProject(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_CreateProject_DefaultsToActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateProject(ctx, forecast.Project{Name: "No Status"})
	require.NoError(t, err)

	got, err := store.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, forecast.StatusActive, got.Status)
}

func TestStore_ScheduleRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	projectID := createProject(t, store, "Job", forecast.StatusActive)
	scheduleID := createSchedule(t, store, projectID, date(2026, time.January, 5), date(2026, time.March, 27))

	got, err := store.GetSchedule(ctx, projectID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, scheduleID, got.ID)
	assert.Equal(t, "2026-01-05", got.StartDate.String())
	assert.Equal(t, "2026-03-27", got.EndDate.String())
}

// =============================================================================
// PHASES
// =============================================================================

func TestStore_CreatePhase_AppliesDefaultCrewSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	projectID := createProject(t, store, "Job", forecast.StatusActive)
	scheduleID := createSchedule(t, store, projectID, date(2026, time.January, 5), date(2026, time.January, 9))

	// No hours and no crew size: store fills in the default crew.
	_, err := store.CreatePhase(ctx, scheduleID, forecast.Phase{
		Name:      "Rough-in",
		StartDate: date(2026, time.January, 5),
		EndDate:   date(2026, time.January, 9),
	})
	require.NoError(t, err)

	phases, err := store.SchedulePhases(ctx, scheduleID)
	require.NoError(t, err)
	require.Len(t, phases, 1)
	assert.Nil(t, phases[0].EstimatedHours)
	require.NotNil(t, phases[0].CrewSize)
	assert.True(t, phases[0].CrewSize.Equal(forecast.DefaultCrewSize))
}

func TestStore_SchedulePhases_PreservesLaborInputs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	projectID := createProject(t, store, "Job", forecast.StatusActive)
	scheduleID := createSchedule(t, store, projectID, date(2026, time.January, 5), date(2026, time.January, 30))
	crewTypeID, err := store.CreateCrewType(ctx, "Fitters")
	require.NoError(t, err)

	_, err = store.CreatePhase(ctx, scheduleID, forecast.Phase{
		Name:           "Overhead mains",
		StartDate:      date(2026, time.January, 5),
		EndDate:        date(2026, time.January, 16),
		EstimatedHours: decp(320.5),
		CrewTypeID:     &crewTypeID,
	})
	require.NoError(t, err)

	phases, err := store.SchedulePhases(ctx, scheduleID)
	require.NoError(t, err)
	require.Len(t, phases, 1)

	p := phases[0]
	assert.Equal(t, projectID, p.ProjectID)
	assert.Equal(t, "Overhead mains", p.Name)
	require.NotNil(t, p.EstimatedHours)
	assert.True(t, p.EstimatedHours.Equal(decimal.NewFromFloat(320.5)))
	require.NotNil(t, p.CrewTypeID)
	assert.Equal(t, crewTypeID, *p.CrewTypeID)
}

// =============================================================================
// ACTIVE PHASES IN RANGE
// =============================================================================

func TestStore_ActivePhasesInRange_StatusAndOverlap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jan5, jan9 := date(2026, time.January, 5), date(2026, time.January, 9)

	active := createProject(t, store, "Active", forecast.StatusActive)
	prospective := createProject(t, store, "Prospective", forecast.StatusProspective)
	completed := createProject(t, store, "Completed", forecast.StatusCompleted)
	onHold := createProject(t, store, "On Hold", forecast.StatusOnHold)

	for _, projectID := range []forecast.ProjectID{active, prospective, completed, onHold} {
		scheduleID := createSchedule(t, store, projectID, jan5, jan9)
		_, err := store.CreatePhase(ctx, scheduleID, forecast.Phase{
			Name:           "phase",
			StartDate:      jan5,
			EndDate:        jan9,
			EstimatedHours: decp(40),
		})
		require.NoError(t, err)
	}

	// Phase entirely outside the window on an active project.
	outsideSchedule := createSchedule(t, store,
		createProject(t, store, "Later Job", forecast.StatusActive),
		date(2026, time.June, 1), date(2026, time.June, 5))
	_, err := store.CreatePhase(ctx, outsideSchedule, forecast.Phase{
		Name:           "phase",
		StartDate:      date(2026, time.June, 1),
		EndDate:        date(2026, time.June, 5),
		EstimatedHours: decp(40),
	})
	require.NoError(t, err)

	phases, err := store.ActivePhasesInRange(ctx,
		date(2026, time.January, 1), date(2026, time.January, 31), forecast.PhaseFilter{})
	require.NoError(t, err)

	require.Len(t, phases, 2)
	gotProjects := []forecast.ProjectID{phases[0].ProjectID, phases[1].ProjectID}
	assert.ElementsMatch(t, []forecast.ProjectID{active, prospective}, gotProjects)
}

func TestStore_ActivePhasesInRange_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jan5, jan9 := date(2026, time.January, 5), date(2026, time.January, 9)

	a := createProject(t, store, "Job A", forecast.StatusActive)
	b := createProject(t, store, "Job B", forecast.StatusActive)
	schedA := createSchedule(t, store, a, jan5, jan9)
	schedB := createSchedule(t, store, b, jan5, jan9)

	fitters, err := store.CreateCrewType(ctx, "Fitters")
	require.NoError(t, err)

	_, err = store.CreatePhase(ctx, schedA, forecast.Phase{
		Name: "tagged", StartDate: jan5, EndDate: jan9,
		EstimatedHours: decp(40), CrewTypeID: &fitters,
	})
	require.NoError(t, err)
	_, err = store.CreatePhase(ctx, schedB, forecast.Phase{
		Name: "untagged", StartDate: jan5, EndDate: jan9,
		EstimatedHours: decp(40),
	})
	require.NoError(t, err)

	byProject, err := store.ActivePhasesInRange(ctx, jan5, jan9,
		forecast.PhaseFilter{ProjectIDs: []forecast.ProjectID{b}})
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, b, byProject[0].ProjectID)

	byCrew, err := store.ActivePhasesInRange(ctx, jan5, jan9,
		forecast.PhaseFilter{CrewTypeIDs: []forecast.CrewTypeID{fitters}})
	require.NoError(t, err)
	require.Len(t, byCrew, 1)
	assert.Equal(t, "tagged", byCrew[0].Name)
}

// =============================================================================
// LABOR PLANS AND ALLOCATIONS
// =============================================================================

func TestStore_LaborPlan_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	projectID := createProject(t, store, "Job", forecast.StatusActive)

	plan := forecast.LaborPlan{
		ProjectID:       projectID,
		TotalLaborHours: decimal.NewFromInt(1200),
		HoursCompleted:  decimal.NewFromInt(200),
		StartMonth:      forecast.NewMonth(2026, time.January),
		EndMonth:        forecast.NewMonth(2026, time.April),
	}
	require.NoError(t, store.SaveLaborPlan(ctx, plan))

	// Second save with new figures must overwrite, not duplicate.
	plan.HoursCompleted = decimal.NewFromInt(600)
	plan.EndMonth = forecast.NewMonth(2026, time.June)
	require.NoError(t, store.SaveLaborPlan(ctx, plan))

	got, err := store.GetLaborPlan(ctx, projectID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.HoursCompleted.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "2026-06", got.EndMonth.String())
}

func TestStore_GetLaborPlan_Missing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetLaborPlan(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_ReplaceAllocations_ReplacesWholeSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	projectID := createProject(t, store, "Job", forecast.StatusActive)

	first := []forecast.MonthlyAllocation{
		{ProjectID: projectID, Month: "2026-01", ForecastHours: decimal.NewFromInt(250)},
		{ProjectID: projectID, Month: "2026-02", ForecastHours: decimal.NewFromInt(250)},
		{ProjectID: projectID, Month: "2026-03", ForecastHours: decimal.NewFromInt(250)},
	}
	require.NoError(t, store.ReplaceAllocations(ctx, projectID, first))

	second := []forecast.MonthlyAllocation{
		{ProjectID: projectID, Month: "2026-03", ForecastHours: decimal.NewFromInt(300)},
		{ProjectID: projectID, Month: "2026-04", ForecastHours: decimal.NewFromInt(300)},
	}
	require.NoError(t, store.ReplaceAllocations(ctx, projectID, second))

	got, err := store.Allocations(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-03", got[0].Month)
	assert.True(t, got[0].ForecastHours.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "2026-04", got[1].Month)
}

func TestStore_ReplaceAllocations_EmptySetClears(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	projectID := createProject(t, store, "Job", forecast.StatusActive)
	require.NoError(t, store.ReplaceAllocations(ctx, projectID, []forecast.MonthlyAllocation{
		{ProjectID: projectID, Month: "2026-01", ForecastHours: decimal.NewFromInt(100)},
	}))

	require.NoError(t, store.ReplaceAllocations(ctx, projectID, nil))

	got, err := store.Allocations(ctx, projectID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Futilediploma/SprinkSync/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(NewHandler(memory.New()))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// seedScheduledProject creates a project with a schedule through the
// API and returns the project and schedule ids.
func seedScheduledProject(t *testing.T, router http.Handler, name, start, end string) (int64, int64) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/projects", CreateProjectRequest{Name: name})
	require.Equal(t, http.StatusCreated, rec.Code)
	project := decodeBody[ProjectDTO](t, rec)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/projects/%d/schedule", project.ID),
		CreateScheduleRequest{StartDate: start, EndDate: end})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[map[string]int64](t, rec)

	return project.ID, created["id"]
}

func addPhase(t *testing.T, router http.Handler, scheduleID int64, req CreatePhaseRequest) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/schedules/%d/phases", scheduleID), req)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func floatPtr(f float64) *float64 { return &f }

// =============================================================================
// FORECAST ENDPOINTS
// =============================================================================

func TestAPI_CompanyForecast_HappyPath(t *testing.T) {
	router := newTestRouter(t)

	_, scheduleID := seedScheduledProject(t, router, "Riverside Medical Center", "2026-01-05", "2026-01-30")
	addPhase(t, router, scheduleID, CreatePhaseRequest{
		Name:              "Rough-in",
		StartDate:         "2026-01-05",
		EndDate:           "2026-01-09",
		EstimatedManHours: floatPtr(100),
	})

	rec := doJSON(t, router, http.MethodGet,
		"/api/forecasts/company-wide?start_date=2026-01-01&end_date=2026-01-31&granularity=weekly", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	forecast := decodeBody[ForecastDTO](t, rec)
	assert.Equal(t, "2026-01-01", forecast.StartDate)
	assert.InDelta(t, 100, forecast.TotalManHours, 0.001)
	assert.Equal(t, 1, forecast.ProjectCount)
	require.Len(t, forecast.WeeklyForecast, 1)
	assert.Equal(t, "2026-W02", forecast.WeeklyForecast[0].Week)
	require.Len(t, forecast.ProjectsIncluded, 1)
	assert.Equal(t, "Riverside Medical Center", forecast.ProjectsIncluded[0].Name)
}

func TestAPI_CompanyForecast_BadRequests(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		url  string
	}{
		{"missing dates", "/api/forecasts/company-wide"},
		{"inverted window", "/api/forecasts/company-wide?start_date=2026-01-31&end_date=2026-01-01"},
		{"bad granularity", "/api/forecasts/company-wide?start_date=2026-01-01&end_date=2026-01-31&granularity=hourly"},
		{"bad id list", "/api/forecasts/company-wide?start_date=2026-01-01&end_date=2026-01-31&project_ids=1,abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodGet, tc.url, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeBody[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAPI_ProjectForecast_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/forecasts/project/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ExportCompanyForecast_CSV(t *testing.T) {
	router := newTestRouter(t)

	_, scheduleID := seedScheduledProject(t, router, "Oakdale Warehouse", "2026-01-05", "2026-01-30")
	addPhase(t, router, scheduleID, CreatePhaseRequest{
		Name:              "Mains",
		StartDate:         "2026-01-05",
		EndDate:           "2026-01-09",
		EstimatedManHours: floatPtr(40),
	})

	rec := doJSON(t, router, http.MethodGet,
		"/api/forecasts/company-wide/export?start_date=2026-01-01&end_date=2026-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Week,Week Start,Man Hours", lines[0])
	assert.Equal(t, "2026-W02,2026-01-05,40.00", lines[1])
}

func TestAPI_ExportCompanyForecast_InvalidExportType(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet,
		"/api/forecasts/company-wide/export?start_date=2026-01-01&end_date=2026-01-31&export_type=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PROJECT ENDPOINTS
// =============================================================================

func TestAPI_CreateProject_Validation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/projects", CreateProjectRequest{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ProjectLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/projects",
		CreateProjectRequest{Name: "Summit Tower", Status: "prospective"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[ProjectDTO](t, rec)
	assert.Equal(t, "prospective", created.Status)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/projects/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[ProjectDTO](t, rec)
	assert.Equal(t, created, got)

	rec = doJSON(t, router, http.MethodGet, "/api/projects/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]ProjectDTO](t, rec)
	require.Len(t, list, 1)
}

func TestAPI_CreateSchedule_ProjectMissing(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/projects/999/schedule",
		CreateScheduleRequest{StartDate: "2026-01-05", EndDate: "2026-01-30"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CreatePhase_NegativeHoursRejected(t *testing.T) {
	router := newTestRouter(t)

	_, scheduleID := seedScheduledProject(t, router, "Job", "2026-01-05", "2026-01-30")

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/schedules/%d/phases", scheduleID),
		CreatePhaseRequest{
			Name:              "bad",
			StartDate:         "2026-01-05",
			EndDate:           "2026-01-09",
			EstimatedManHours: floatPtr(-10),
		})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// LABOR PLAN ENDPOINTS
// =============================================================================

func TestAPI_PutLaborPlan_ReturnsAllocations(t *testing.T) {
	router := newTestRouter(t)

	projectID, _ := seedScheduledProject(t, router, "Summit Tower", "2026-01-05", "2026-04-24")

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/projects/%d/labor-plan", projectID),
		LaborPlanRequest{
			TotalLaborHours: 1200,
			HoursCompleted:  200,
			StartMonth:      "2026-01",
			EndMonth:        "2026-04",
		})
	require.Equal(t, http.StatusOK, rec.Code)

	plan := decodeBody[LaborPlanDTO](t, rec)
	assert.InDelta(t, 1000, plan.RemainingHours, 0.001)
	require.Len(t, plan.Allocations, 4)
	assert.Equal(t, "2026-01", plan.Allocations[0].Month)
	assert.InDelta(t, 250, plan.Allocations[0].ForecastHours, 0.001)

	// Plan persists and reads back with its allocations.
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/projects/%d/labor-plan", projectID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[LaborPlanDTO](t, rec)
	assert.Len(t, got.Allocations, 4)
}

func TestAPI_PutLaborPlan_InvertedMonths(t *testing.T) {
	router := newTestRouter(t)

	projectID, _ := seedScheduledProject(t, router, "Job", "2026-01-05", "2026-04-24")

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/projects/%d/labor-plan", projectID),
		LaborPlanRequest{
			TotalLaborHours: 100,
			StartMonth:      "2026-04",
			EndMonth:        "2026-01",
		})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_GetLaborPlan_NotFound(t *testing.T) {
	router := newTestRouter(t)

	projectID, _ := seedScheduledProject(t, router, "Job", "2026-01-05", "2026-04-24")

	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/projects/%d/labor-plan", projectID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// CREW TYPE ENDPOINTS
// =============================================================================

func TestAPI_CrewTypes(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/crew-types", CreateCrewTypeRequest{Name: "Fitters"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[CrewTypeDTO](t, rec)
	assert.Equal(t, "Fitters", created.Name)

	rec = doJSON(t, router, http.MethodGet, "/api/crew-types/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]CrewTypeDTO](t, rec)
	require.Len(t, list, 1)
}

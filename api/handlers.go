/*
handlers.go - HTTP API handlers for the labor projection engine

PURPOSE:
  Exposes the forecast engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Forecasts:
    GET /api/forecasts/company-wide         Company-wide demand forecast
    GET /api/forecasts/company-wide/export  Forecast as CSV
    GET /api/forecasts/project/{id}         Single-project forecast

  Projects:
    GET  /api/projects                      List projects
    POST /api/projects                      Create project
    GET  /api/projects/{id}                 Get project
    POST /api/projects/{id}/schedule        Create schedule
    GET  /api/projects/{id}/labor-plan      Plan + current allocations
    PUT  /api/projects/{id}/labor-plan      Set plan, recompute allocations

  Schedules:
    POST /api/schedules/{id}/phases         Add phase

  Crew types:
    GET  /api/crew-types                    List crew types
    POST /api/crew-types                    Create crew type

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input (inverted window, bad id list, bad granularity)
  - 404: Project/schedule/plan not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - ../forecast/engine.go: Domain operations
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Futilediploma/SprinkSync/forecast"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence surface the handlers need: everything the
// engine uses plus the write operations for seeding schedule data.
type Store interface {
	forecast.Store
	CreateSchedule(ctx context.Context, sched forecast.Schedule) (int64, error)
	CreatePhase(ctx context.Context, scheduleID int64, p forecast.Phase) (forecast.PhaseID, error)
	CreateCrewType(ctx context.Context, name string) (forecast.CrewTypeID, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  Store
	Engine *forecast.Engine
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store) *Handler {
	return &Handler{
		Store:  store,
		Engine: forecast.NewEngine(store),
	}
}

// =============================================================================
// FORECAST ENDPOINTS
// =============================================================================

// CompanyForecast returns the company-wide demand forecast.
// GET /api/forecasts/company-wide?start_date&end_date&project_ids&crew_type_ids&granularity
func (h *Handler) CompanyForecast(w http.ResponseWriter, r *http.Request) {
	start, end, filter, granularity, ok := h.parseForecastQuery(w, r)
	if !ok {
		return
	}

	result, err := h.Engine.CompanyForecast(r.Context(), start, end, filter, granularity)
	if err != nil {
		writeDomainError(w, "Failed to generate forecast", err)
		return
	}

	writeJSON(w, http.StatusOK, toForecastDTO(result))
}

// ProjectForecast returns the forecast for one project over its
// schedule dates.
// GET /api/forecasts/project/{id}?granularity
func (h *Handler) ProjectForecast(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlProjectID(w, r)
	if !ok {
		return
	}

	granularity, err := forecast.ParseGranularity(r.URL.Query().Get("granularity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid granularity", err)
		return
	}

	result, err := h.Engine.ProjectForecast(r.Context(), projectID, granularity)
	if err != nil {
		writeDomainError(w, "Failed to generate forecast", err)
		return
	}

	writeJSON(w, http.StatusOK, toForecastDTO(result))
}

// ExportCompanyForecast returns the company-wide forecast as CSV.
// GET /api/forecasts/company-wide/export?...&export_type=forecast|projects
func (h *Handler) ExportCompanyForecast(w http.ResponseWriter, r *http.Request) {
	start, end, filter, granularity, ok := h.parseForecastQuery(w, r)
	if !ok {
		return
	}

	result, err := h.Engine.CompanyForecast(r.Context(), start, end, filter, granularity)
	if err != nil {
		writeDomainError(w, "Failed to generate forecast", err)
		return
	}

	var content, filename string
	switch r.URL.Query().Get("export_type") {
	case "projects":
		content, err = forecast.ProjectsCSV(result.ProjectsIncluded)
		filename = fmt.Sprintf("project_breakdown_%s_%s.csv", start, end)
	case "", "forecast":
		if granularity == forecast.GranularityMonthly {
			content, err = forecast.MonthlyCSV(result.MonthlyForecast)
		} else {
			content, err = forecast.WeeklyCSV(result.WeeklyForecast)
		}
		filename = fmt.Sprintf("manpower_forecast_%s_%s_%s.csv", granularity, start, end)
	default:
		writeError(w, http.StatusBadRequest, "Invalid export_type (want forecast or projects)", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render CSV", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

// parseForecastQuery extracts the shared company-wide query parameters.
func (h *Handler) parseForecastQuery(w http.ResponseWriter, r *http.Request) (start, end forecast.Date, filter forecast.PhaseFilter, granularity forecast.Granularity, ok bool) {
	q := r.URL.Query()

	start, err := forecast.ParseDate(q.Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err = forecast.ParseDate(q.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date must be >= start_date", nil)
		return
	}

	granularity, err = forecast.ParseGranularity(q.Get("granularity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid granularity", err)
		return
	}

	projectIDs, err := parseIDList(q.Get("project_ids"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project_ids format", err)
		return
	}
	crewTypeIDs, err := parseIDList(q.Get("crew_type_ids"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid crew_type_ids format", err)
		return
	}

	for _, id := range projectIDs {
		filter.ProjectIDs = append(filter.ProjectIDs, forecast.ProjectID(id))
	}
	for _, id := range crewTypeIDs {
		filter.CrewTypeIDs = append(filter.CrewTypeIDs, forecast.CrewTypeID(id))
	}
	ok = true
	return
}

// =============================================================================
// PROJECT ENDPOINTS
// =============================================================================

// ListProjects returns all projects.
// GET /api/projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = ProjectDTO{ID: int64(p.ID), Name: p.Name, Status: string(p.Status)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProject creates a new project.
// POST /api/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Project name is required", nil)
		return
	}

	id, err := h.Store.CreateProject(r.Context(), forecast.Project{
		Name:   req.Name,
		Status: forecast.ProjectStatus(req.Status),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create project", err)
		return
	}

	project, err := h.Store.GetProject(r.Context(), id)
	if err != nil || project == nil {
		writeError(w, http.StatusInternalServerError, "Failed to load created project", err)
		return
	}
	writeJSON(w, http.StatusCreated, ProjectDTO{ID: int64(project.ID), Name: project.Name, Status: string(project.Status)})
}

// GetProject returns a single project.
// GET /api/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlProjectID(w, r)
	if !ok {
		return
	}

	project, err := h.Store.GetProject(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get project", err)
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, ProjectDTO{ID: int64(project.ID), Name: project.Name, Status: string(project.Status)})
}

// CreateSchedule creates a project's schedule.
// POST /api/projects/{id}/schedule
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlProjectID(w, r)
	if !ok {
		return
	}

	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := forecast.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := forecast.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date must be >= start_date", nil)
		return
	}

	project, err := h.Store.GetProject(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get project", err)
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "Project not found", nil)
		return
	}

	scheduleID, err := h.Store.CreateSchedule(r.Context(), forecast.Schedule{
		ProjectID: projectID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create schedule", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": scheduleID, "project_id": int64(projectID)})
}

// CreatePhase adds a phase to a schedule.
// POST /api/schedules/{id}/phases
func (h *Handler) CreatePhase(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule id", err)
		return
	}

	var req CreatePhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := forecast.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := forecast.ParseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date must be >= start_date", nil)
		return
	}

	phase := forecast.Phase{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
	}
	if req.EstimatedManHours != nil {
		d := decimal.NewFromFloat(*req.EstimatedManHours)
		if d.IsNegative() {
			writeError(w, http.StatusBadRequest, "estimated_man_hours must be non-negative", nil)
			return
		}
		phase.EstimatedHours = &d
	}
	if req.CrewSize != nil {
		d := decimal.NewFromFloat(*req.CrewSize)
		if d.IsNegative() {
			writeError(w, http.StatusBadRequest, "crew_size must be non-negative", nil)
			return
		}
		phase.CrewSize = &d
	}
	if req.CrewTypeID != nil {
		ct := forecast.CrewTypeID(*req.CrewTypeID)
		phase.CrewTypeID = &ct
	}

	phaseID, err := h.Store.CreatePhase(r.Context(), scheduleID, phase)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create phase", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": int64(phaseID), "schedule_id": scheduleID})
}

// =============================================================================
// LABOR PLAN ENDPOINTS
// =============================================================================

// GetLaborPlan returns a project's plan with its current allocations.
// GET /api/projects/{id}/labor-plan
func (h *Handler) GetLaborPlan(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlProjectID(w, r)
	if !ok {
		return
	}

	plan, err := h.Store.GetLaborPlan(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get labor plan", err)
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "Labor plan not found", nil)
		return
	}

	allocations, err := h.Store.Allocations(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get allocations", err)
		return
	}

	writeJSON(w, http.StatusOK, toLaborPlanDTO(*plan, allocations))
}

// PutLaborPlan sets a project's plan and recomputes its allocations.
// PUT /api/projects/{id}/labor-plan
func (h *Handler) PutLaborPlan(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlProjectID(w, r)
	if !ok {
		return
	}

	var req LaborPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	startMonth, err := forecast.ParseMonth(req.StartMonth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_month (use YYYY-MM)", err)
		return
	}
	endMonth, err := forecast.ParseMonth(req.EndMonth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_month (use YYYY-MM)", err)
		return
	}
	if req.TotalLaborHours < 0 || req.HoursCompleted < 0 {
		writeError(w, http.StatusBadRequest, "Hours must be non-negative", nil)
		return
	}

	plan := forecast.LaborPlan{
		ProjectID:       projectID,
		TotalLaborHours: decimal.NewFromFloat(req.TotalLaborHours),
		HoursCompleted:  decimal.NewFromFloat(req.HoursCompleted),
		StartMonth:      startMonth,
		EndMonth:        endMonth,
	}

	allocations, err := h.Engine.SavePlan(r.Context(), plan)
	if err != nil {
		writeDomainError(w, "Failed to save labor plan", err)
		return
	}

	writeJSON(w, http.StatusOK, toLaborPlanDTO(plan, allocations))
}

func toLaborPlanDTO(plan forecast.LaborPlan, allocations []forecast.MonthlyAllocation) LaborPlanDTO {
	return LaborPlanDTO{
		ProjectID:       int64(plan.ProjectID),
		TotalLaborHours: decFloat(plan.TotalLaborHours),
		HoursCompleted:  decFloat(plan.HoursCompleted),
		RemainingHours:  decFloat(plan.RemainingHours()),
		StartMonth:      plan.StartMonth.String(),
		EndMonth:        plan.EndMonth.String(),
		Allocations:     toAllocationDTOs(allocations),
	}
}

// =============================================================================
// CREW TYPE ENDPOINTS
// =============================================================================

// ListCrewTypes returns all crew types.
// GET /api/crew-types
func (h *Handler) ListCrewTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListCrewTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list crew types", err)
		return
	}

	dtos := make([]CrewTypeDTO, len(types))
	for i, ct := range types {
		dtos[i] = CrewTypeDTO{ID: int64(ct.ID), Name: ct.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCrewType creates a crew type.
// POST /api/crew-types
func (h *Handler) CreateCrewType(w http.ResponseWriter, r *http.Request) {
	var req CreateCrewTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Crew type name is required", nil)
		return
	}

	id, err := h.Store.CreateCrewType(r.Context(), req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create crew type", err)
		return
	}
	writeJSON(w, http.StatusCreated, CrewTypeDTO{ID: int64(id), Name: req.Name})
}

// =============================================================================
// HELPERS
// =============================================================================

func urlProjectID(w http.ResponseWriter, r *http.Request) (forecast.ProjectID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project id", err)
		return 0, false
	}
	return forecast.ProjectID(id), true
}

// parseIDList parses a comma-separated id list ("1,2,3"). Empty input
// yields nil (no restriction).
func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case forecast.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case forecast.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ../forecast/types.go: Domain types these map from
*/
package api

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Futilediploma/SprinkSync/forecast"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ProjectDTO represents a project in API responses.
type ProjectDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// CreateProjectRequest is the request to create a project.
type CreateProjectRequest struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

// CreateScheduleRequest is the request to create a project schedule.
type CreateScheduleRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CreatePhaseRequest is the request to add a phase to a schedule.
type CreatePhaseRequest struct {
	Name              string   `json:"name"`
	StartDate         string   `json:"start_date"`
	EndDate           string   `json:"end_date"`
	EstimatedManHours *float64 `json:"estimated_man_hours,omitempty"`
	CrewSize          *float64 `json:"crew_size,omitempty"`
	CrewTypeID        *int64   `json:"crew_type_id,omitempty"`
}

// CrewTypeDTO represents a crew type tag.
type CrewTypeDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateCrewTypeRequest is the request to create a crew type.
type CreateCrewTypeRequest struct {
	Name string `json:"name"`
}

// WeeklyBucketDTO is one ISO week of aggregated demand.
type WeeklyBucketDTO struct {
	Week          string             `json:"week"`
	WeekStart     string             `json:"week_start"`
	ManHours      float64            `json:"man_hours"`
	CrewBreakdown map[string]float64 `json:"crew_breakdown"`
}

// MonthlyBucketDTO is one calendar month of aggregated demand.
type MonthlyBucketDTO struct {
	Month         string             `json:"month"`
	MonthName     string             `json:"month_name"`
	ManHours      float64            `json:"man_hours"`
	CrewBreakdown map[string]float64 `json:"crew_breakdown"`
}

// ProjectContributionDTO is one project's ranked share of a forecast.
type ProjectContributionDTO struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ManHours float64 `json:"man_hours"`
}

// ForecastDTO is the full forecast response.
type ForecastDTO struct {
	StartDate        string                   `json:"start_date"`
	EndDate          string                   `json:"end_date"`
	TotalManHours    float64                  `json:"total_man_hours"`
	ProjectCount     int                      `json:"project_count"`
	WeeklyForecast   []WeeklyBucketDTO        `json:"weekly_forecast"`
	MonthlyForecast  []MonthlyBucketDTO       `json:"monthly_forecast"`
	ProjectsIncluded []ProjectContributionDTO `json:"projects_included"`
}

// LaborPlanRequest is the request to set a project's labor plan.
type LaborPlanRequest struct {
	TotalLaborHours float64 `json:"total_labor_hours"`
	HoursCompleted  float64 `json:"hours_completed"`
	StartMonth      string  `json:"start_month"` // "YYYY-MM"
	EndMonth        string  `json:"end_month"`   // "YYYY-MM"
}

// AllocationDTO is one month's flat allocation.
type AllocationDTO struct {
	Month         string  `json:"month"`
	ForecastHours float64 `json:"forecast_hours"`
}

// LaborPlanDTO is a project's plan with its current allocations.
type LaborPlanDTO struct {
	ProjectID       int64           `json:"project_id"`
	TotalLaborHours float64         `json:"total_labor_hours"`
	HoursCompleted  float64         `json:"hours_completed"`
	RemainingHours  float64         `json:"remaining_hours"`
	StartMonth      string          `json:"start_month"`
	EndMonth        string          `json:"end_month"`
	Allocations     []AllocationDTO `json:"allocations"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toForecastDTO(result *forecast.ForecastResult) ForecastDTO {
	dto := ForecastDTO{
		StartDate:        result.StartDate.String(),
		EndDate:          result.EndDate.String(),
		TotalManHours:    decFloat(result.TotalManHours),
		ProjectCount:     result.ProjectCount,
		WeeklyForecast:   make([]WeeklyBucketDTO, len(result.WeeklyForecast)),
		MonthlyForecast:  make([]MonthlyBucketDTO, len(result.MonthlyForecast)),
		ProjectsIncluded: make([]ProjectContributionDTO, len(result.ProjectsIncluded)),
	}

	for i, b := range result.WeeklyForecast {
		dto.WeeklyForecast[i] = WeeklyBucketDTO{
			Week:          b.Week,
			WeekStart:     b.WeekStart.String(),
			ManHours:      decFloat(b.ManHours),
			CrewBreakdown: toBreakdownDTO(b.CrewBreakdown),
		}
	}
	for i, b := range result.MonthlyForecast {
		dto.MonthlyForecast[i] = MonthlyBucketDTO{
			Month:         b.Month,
			MonthName:     b.MonthName,
			ManHours:      decFloat(b.ManHours),
			CrewBreakdown: toBreakdownDTO(b.CrewBreakdown),
		}
	}
	for i, c := range result.ProjectsIncluded {
		dto.ProjectsIncluded[i] = ProjectContributionDTO{
			ID:       int64(c.ProjectID),
			Name:     c.ProjectName,
			ManHours: decFloat(c.ManHours),
		}
	}
	return dto
}

func toAllocationDTOs(allocations []forecast.MonthlyAllocation) []AllocationDTO {
	dtos := make([]AllocationDTO, len(allocations))
	for i, a := range allocations {
		dtos[i] = AllocationDTO{Month: a.Month, ForecastHours: decFloat(a.ForecastHours)}
	}
	return dtos
}

func toBreakdownDTO(breakdown map[forecast.CrewTypeID]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(breakdown))
	for ct, hours := range breakdown {
		out[strconv.FormatInt(int64(ct), 10)] = decFloat(hours)
	}
	return out
}

func decFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

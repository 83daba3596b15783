/*
Package forecast provides the labor demand projection engine.

PURPOSE:
  This package contains the domain types and algorithms for turning
  scheduled work phases (a date range plus a labor quantity, expressed
  either as total man-hours or as a crew size) into a time-bucketed
  forecast of labor hours, company-wide or per project, at daily,
  weekly, or monthly granularity.

KEY CONCEPTS IN THIS FILE (types.go):
  - Phase: A scheduled chunk of work with its labor requirement
  - DailyRecord: One working day's share of a phase's hours (ephemeral)
  - WeeklyBucket / MonthlyBucket: Aggregated demand per time bucket
  - ForecastResult: The full response of a forecast run
  - MonthlyAllocation: A persisted flat per-month projection

DESIGN PRINCIPLES:
  1. Purity: Forecast computation is a pure function of its inputs;
     derived records are owned by the request and never persisted
  2. Precision: Uses decimal.Decimal for all hour quantities
  3. Type Safety: Strong typing for project/phase/crew identifiers
  4. Graceful degradation: An incomplete phase never aborts a
     company-wide forecast; it is skipped with a typed reason

USAGE:
  result, err := forecast.Generate(phases, window, forecast.GranularityWeekly, names)

SEE ALSO:
  - calendar.go: Working-day and ISO-week calendar math
  - demand.go: Per-phase daily distribution
  - aggregate.go: Weekly/monthly rollups
  - assemble.go: Multi-phase forecast assembly
  - allocation.go: Flat monthly allocation projector
*/
package forecast

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProjectID int64
type PhaseID int64
type CrewTypeID int64

// =============================================================================
// GRANULARITY - Requested time-bucket resolution
// =============================================================================

type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// ParseGranularity validates a granularity string, defaulting to weekly
// when empty.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return Granularity(s), nil
	case "":
		return GranularityWeekly, nil
	default:
		return "", &InvalidGranularityError{Value: s}
	}
}

// =============================================================================
// PHASE - Scheduled work with a labor requirement
// =============================================================================

// Phase is a discrete chunk of scheduled work within a project.
// The labor requirement is expressed either as explicit man-hours or
// as a crew size; at least one must resolve to a positive total for
// the phase to contribute demand.
type Phase struct {
	ID        PhaseID
	ProjectID ProjectID
	Name      string
	StartDate Date
	EndDate   Date

	// Labor input (one or both). Nil means unset.
	EstimatedHours *decimal.Decimal
	CrewSize       *decimal.Decimal

	// Optional crew type tag for breakdown reporting.
	CrewTypeID *CrewTypeID
}

// DefaultCrewSize is applied at the intake boundary when a phase
// specifies neither hours nor crew size: foreman plus one helper.
var DefaultCrewSize = decimal.NewFromInt(2)

// HoursPerCrewDay is the assumed shift length when converting crew
// size to a gross hour budget.
var HoursPerCrewDay = decimal.NewFromInt(8)

// =============================================================================
// DAILY RECORD - One working day's demand (ephemeral, never persisted)
// =============================================================================

type DailyRecord struct {
	Date       Date
	ManHours   decimal.Decimal
	PhaseID    PhaseID
	ProjectID  ProjectID
	CrewTypeID *CrewTypeID
}

// =============================================================================
// TIME BUCKETS
// =============================================================================

// WeeklyBucket aggregates demand for one ISO week.
type WeeklyBucket struct {
	Week          string // "YYYY-Www"
	WeekStart     Date   // Monday of the ISO week
	ManHours      decimal.Decimal
	CrewBreakdown map[CrewTypeID]decimal.Decimal
}

// MonthlyBucket aggregates demand for one calendar month.
type MonthlyBucket struct {
	Month         string // "YYYY-MM"
	MonthName     string // "January 2026"
	ManHours      decimal.Decimal
	CrewBreakdown map[CrewTypeID]decimal.Decimal
}

// =============================================================================
// FORECAST RESULT
// =============================================================================

// ProjectContribution is one project's share of a forecast window,
// ranked descending by hours.
type ProjectContribution struct {
	ProjectID   ProjectID
	ProjectName string
	ManHours    decimal.Decimal
}

// ForecastResult is the full output of a forecast run. All fields are
// derived fresh per request; the result holds no shared state.
type ForecastResult struct {
	StartDate        Date
	EndDate          Date
	TotalManHours    decimal.Decimal
	ProjectCount     int
	WeeklyForecast   []WeeklyBucket
	MonthlyForecast  []MonthlyBucket
	ProjectsIncluded []ProjectContribution

	// SkippedPhases lists phases excluded for missing labor input.
	// Aggregate totals are unaffected; this exists so callers who care
	// about data-quality gaps can surface them.
	SkippedPhases []PhaseID
}

// =============================================================================
// MONTHLY ALLOCATION - Flat projector output (persisted externally)
// =============================================================================

// MonthlyAllocation is one calendar month's flat share of a project's
// remaining labor hours. The full set for a project is always replaced
// wholesale, never patched, so it sums exactly to the remaining hours.
type MonthlyAllocation struct {
	ProjectID     ProjectID
	Month         string // "YYYY-MM"
	ForecastHours decimal.Decimal
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

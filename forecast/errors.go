/*
errors.go - Centralized error types for the projection engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The store and api packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Input rejection - Caller errors, reported before any computation
  2. Data-quality gaps - A phase missing labor input; skippable
  3. Store errors - Persistence-level failures

USAGE:
  Callers distinguish skippable conditions from fatal ones:

    records, err := forecast.DailyDemand(phase)
    if errors.Is(err, forecast.ErrMissingLaborInput) {
        continue // phase contributes zero demand
    }

SEE ALSO:
  - demand.go: Raises ErrMissingLaborInput
  - assemble.go: Raises ErrInvalidWindow
  - allocation.go: Raises ErrInvalidMonthRange
*/
package forecast

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingLaborInput is returned when a phase has neither
	// estimated hours nor a crew size that resolves to a positive
	// total. Callers skip such phases rather than failing the run.
	ErrMissingLaborInput = errors.New("phase has no man-hours or crew size")

	// ErrInvalidWindow is returned when a forecast window ends before
	// it starts. Rejected before any phase data is touched.
	ErrInvalidWindow = errors.New("invalid window: end date before start date")

	// ErrInvalidMonthRange is returned when an allocation month range
	// ends before it starts.
	ErrInvalidMonthRange = errors.New("invalid month range: end month before start month")

	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrScheduleNotFound is returned when a project has no schedule.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrLaborPlanNotFound is returned when a project has no labor plan
	// to recalculate allocations from.
	ErrLaborPlanNotFound = errors.New("labor plan not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MissingLaborInputError identifies which phase could not be projected.
type MissingLaborInputError struct {
	PhaseID   PhaseID
	ProjectID ProjectID
}

func (e *MissingLaborInputError) Error() string {
	return fmt.Sprintf("phase %d (project %d) has no man-hours or crew size", e.PhaseID, e.ProjectID)
}

func (e *MissingLaborInputError) Unwrap() error {
	return ErrMissingLaborInput
}

// InvalidGranularityError reports an unrecognized granularity value.
type InvalidGranularityError struct {
	Value string
}

func (e *InvalidGranularityError) Error() string {
	return fmt.Sprintf("invalid granularity %q (want daily, weekly, or monthly)", e.Value)
}

// MonthParseError reports a malformed "YYYY-MM" month key.
type MonthParseError struct {
	Value string
}

func (e *MonthParseError) Error() string {
	return fmt.Sprintf("invalid month %q (want YYYY-MM)", e.Value)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	var gran *InvalidGranularityError
	var month *MonthParseError
	return errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrInvalidMonthRange) ||
		errors.As(err, &gran) ||
		errors.As(err, &month)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrLaborPlanNotFound)
}

/*
demand.go - Per-phase daily demand distribution

PURPOSE:
  Converts one phase's labor requirement into a per-working-day hour
  series. This is the innermost step of every forecast.

ALGORITHM:
  1. Resolve the total hour budget:
     - estimated hours, when set, win outright
     - otherwise crew size x 8 hours x calendar days
     Note the deliberate asymmetry: the crew-size conversion counts ALL
     calendar days (weekends included) to produce a gross budget, while
     the distribution step below spreads that budget over weekdays only.
  2. Neither input positive -> ErrMissingLaborInput (skippable).
  3. Spread the budget evenly over the working days in range, rounding
     each day to 2 decimal places. Rounding drift across the range is
     accepted: the total may deviate by at most 0.01 x workingDayCount.

SEE ALSO:
  - calendar.go: WorkingDays
  - assemble.go: Runs this per phase and skips incomplete ones
*/
package forecast

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DailyDemand distributes a phase's hours evenly across the working
// days in its date range. A phase with no working days (e.g. entirely
// on a weekend) contributes zero demand and returns an empty series.
func DailyDemand(p Phase) ([]DailyRecord, error) {
	total, err := resolveTotalHours(p)
	if err != nil {
		return nil, err
	}

	workingDays := WorkingDays(p.StartDate, p.EndDate)
	if len(workingDays) == 0 {
		return nil, nil
	}

	hoursPerDay := total.Div(decimal.NewFromInt(int64(len(workingDays)))).Round(2)

	records := make([]DailyRecord, len(workingDays))
	for i, day := range workingDays {
		records[i] = DailyRecord{
			Date:       day,
			ManHours:   hoursPerDay,
			PhaseID:    p.ID,
			ProjectID:  p.ProjectID,
			CrewTypeID: p.CrewTypeID,
		}
	}
	return records, nil
}

// resolveTotalHours determines the phase's gross hour budget.
// Estimated hours take precedence; crew size converts via 8-hour days
// across the full calendar span.
func resolveTotalHours(p Phase) (decimal.Decimal, error) {
	if p.EstimatedHours != nil && p.EstimatedHours.IsPositive() {
		return *p.EstimatedHours, nil
	}
	if p.CrewSize != nil && p.CrewSize.IsPositive() {
		calendarDays := decimal.NewFromInt(int64(CalendarDaysBetween(p.StartDate, p.EndDate)))
		return p.CrewSize.Mul(HoursPerCrewDay).Mul(calendarDays), nil
	}
	return decimal.Zero, &MissingLaborInputError{PhaseID: p.ID, ProjectID: p.ProjectID}
}

// =============================================================================
// PHASE DEMAND - Result-with-diagnostics form
// =============================================================================

// PhaseDemand carries either a phase's daily series or the typed
// reason it was skipped, so callers who want visibility into
// data-quality gaps can surface them while the aggregate path treats
// a skip as zero contribution.
type PhaseDemand struct {
	Phase   Phase
	Records []DailyRecord
	Skipped *MissingLaborInputError
}

// Demand evaluates a phase into its diagnostic form. Only the
// missing-labor-input condition is representable as a skip; it is the
// sole non-fatal failure of DailyDemand.
func Demand(p Phase) PhaseDemand {
	records, err := DailyDemand(p)
	if err != nil {
		var missing *MissingLaborInputError
		if errors.As(err, &missing) {
			return PhaseDemand{Phase: p, Skipped: missing}
		}
		// DailyDemand has no other failure mode today; treat anything
		// unexpected as a skip rather than dropping it silently.
		return PhaseDemand{Phase: p, Skipped: &MissingLaborInputError{PhaseID: p.ID, ProjectID: p.ProjectID}}
	}
	return PhaseDemand{Phase: p, Records: records}
}

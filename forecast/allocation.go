/*
allocation.go - Flat monthly allocation projector

PURPOSE:
  The coarse forecasting mode used when only a project-level total, a
  completed-hours figure, and a start/end month are known, with no
  phase-level breakdown. Remaining hours are spread flat across every
  calendar month in range.

DISTRIBUTION POLICY:
  Unlike the daily calculator, this path does NOT exclude weekends:
  every calendar month gets an equal share. The two paths genuinely
  disagree on weekday sensitivity and callers depend on each
  independently, so both behaviors are preserved as-is.

LIFECYCLE:
  The full allocation set for a project is recomputed and replaced
  (delete-all-then-insert-all, one transaction) whenever the plan
  changes, so the persisted rows always sum exactly to the remaining
  hours. The store owns the transactional replace; see store.go.

SEE ALSO:
  - calendar.go: Month arithmetic
  - engine.go: Recalculation wired to the allocation store
*/
package forecast

import (
	"github.com/shopspring/decimal"
)

// LaborPlan is a project's aggregate labor picture: the inputs to a
// flat allocation recompute.
type LaborPlan struct {
	ProjectID       ProjectID
	TotalLaborHours decimal.Decimal
	HoursCompleted  decimal.Decimal
	StartMonth      Month
	EndMonth        Month
}

// RemainingHours is the yet-to-be-worked portion, floored at zero.
func (p LaborPlan) RemainingHours() decimal.Decimal {
	remaining := p.TotalLaborHours.Sub(p.HoursCompleted)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// RecalculateAllocation spreads a plan's remaining hours flat across
// its month range, one allocation row per calendar month inclusive.
// An inverted month range is rejected; the month-count clamp inside
// MonthsBetween remains only as a division-by-zero guard.
func RecalculateAllocation(plan LaborPlan) ([]MonthlyAllocation, error) {
	if plan.EndMonth.Before(plan.StartMonth) {
		return nil, ErrInvalidMonthRange
	}

	monthsCount := MonthsBetween(plan.StartMonth, plan.EndMonth)
	hoursPerMonth := plan.RemainingHours().Div(decimal.NewFromInt(int64(monthsCount)))

	allocations := make([]MonthlyAllocation, 0, monthsCount)
	month := plan.StartMonth
	for i := 0; i < monthsCount; i++ {
		allocations = append(allocations, MonthlyAllocation{
			ProjectID:     plan.ProjectID,
			Month:         month.String(),
			ForecastHours: hoursPerMonth,
		})
		month = month.Next()
	}
	return allocations, nil
}

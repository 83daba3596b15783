/*
assemble.go - Multi-phase forecast assembly

PURPOSE:
  Combines the per-phase calculator and the bucket aggregator across
  many phases and projects, applies the requested date window, and
  produces project-level attribution plus a total.

REQUEST FLOW:
  1. Reject an inverted window before touching phase data
  2. Expand every phase to daily records; phases missing labor input
     are skipped (recorded on the result, excluded from totals)
  3. Clip records to the window; phases may extend outside it and only
     the overlapping portion counts
  4. Aggregate per granularity: weekly computes the weekly rollup,
     monthly computes both (the weekly series is always part of the
     monthly response shape)
  5. Rank project contributions descending by hours, stable on ties

STATE:
  Pure. Every call computes from scratch; identical inputs produce
  identical output, so concurrent forecast requests are trivially safe.

SEE ALSO:
  - demand.go: Per-phase distribution
  - aggregate.go: Bucket rollups
  - engine.go: Store-backed operations built on Generate
*/
package forecast

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROJECT NAMING
// =============================================================================

// ProjectNamer resolves display names for project attribution.
type ProjectNamer interface {
	ProjectName(id ProjectID) string
}

// NameMap is a ProjectNamer over a prefetched map. Unknown projects
// get a placeholder name rather than an error.
type NameMap map[ProjectID]string

func (m NameMap) ProjectName(id ProjectID) string {
	if name, ok := m[id]; ok {
		return name
	}
	return "Unknown"
}

// =============================================================================
// FORECAST GENERATION
// =============================================================================

// Generate builds a forecast from a set of phases over a date window.
// The phase set is taken as given; callers wanting to restrict by
// project or crew type filter the slice before calling.
func Generate(phases []Phase, windowStart, windowEnd Date, granularity Granularity, names ProjectNamer) (*ForecastResult, error) {
	if windowEnd.Before(windowStart) {
		return nil, ErrInvalidWindow
	}
	if names == nil {
		names = NameMap(nil)
	}

	// Expand phases to daily records, skipping incomplete ones.
	var all []DailyRecord
	var skipped []PhaseID
	for _, p := range phases {
		demand := Demand(p)
		if demand.Skipped != nil {
			skipped = append(skipped, p.ID)
			continue
		}
		all = append(all, demand.Records...)
	}

	// Clip to the requested window.
	filtered := all[:0:0]
	for _, rec := range all {
		if rec.Date.AfterOrEqual(windowStart) && rec.Date.BeforeOrEqual(windowEnd) {
			filtered = append(filtered, rec)
		}
	}

	result := &ForecastResult{
		StartDate:        windowStart,
		EndDate:          windowEnd,
		WeeklyForecast:   []WeeklyBucket{},
		MonthlyForecast:  []MonthlyBucket{},
		ProjectsIncluded: []ProjectContribution{},
		SkippedPhases:    skipped,
	}

	switch granularity {
	case GranularityWeekly:
		result.WeeklyForecast = AggregateWeekly(filtered)
	case GranularityMonthly:
		result.WeeklyForecast = AggregateWeekly(filtered)
		result.MonthlyForecast = AggregateMonthly(filtered)
	}

	result.ProjectsIncluded = projectContributions(filtered, names)
	result.ProjectCount = len(result.ProjectsIncluded)

	total := decimal.Zero
	for _, rec := range filtered {
		total = total.Add(rec.ManHours)
	}
	result.TotalManHours = total.Round(2)

	return result, nil
}

// projectContributions groups windowed records by project and ranks
// them descending by hours. Ties keep first-encountered order; a
// project with zero hours in the window never appears.
func projectContributions(records []DailyRecord, names ProjectNamer) []ProjectContribution {
	totals := make(map[ProjectID]decimal.Decimal)
	var order []ProjectID
	for _, rec := range records {
		if _, seen := totals[rec.ProjectID]; !seen {
			order = append(order, rec.ProjectID)
		}
		totals[rec.ProjectID] = totals[rec.ProjectID].Add(rec.ManHours)
	}

	contributions := make([]ProjectContribution, 0, len(order))
	for _, id := range order {
		hours := totals[id].Round(2)
		if hours.IsZero() {
			continue
		}
		contributions = append(contributions, ProjectContribution{
			ProjectID:   id,
			ProjectName: names.ProjectName(id),
			ManHours:    hours,
		})
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].ManHours.GreaterThan(contributions[j].ManHours)
	})
	return contributions
}

package forecast_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Futilediploma/SprinkSync/forecast"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func plan(total, completed float64, startMonth, endMonth string) forecast.LaborPlan {
	start, err := forecast.ParseMonth(startMonth)
	if err != nil {
		panic(err)
	}
	end, err := forecast.ParseMonth(endMonth)
	if err != nil {
		panic(err)
	}
	return forecast.LaborPlan{
		ProjectID:       1,
		TotalLaborHours: dec(total),
		HoursCompleted:  dec(completed),
		StartMonth:      start,
		EndMonth:        end,
	}
}

func sumAllocations(allocations []forecast.MonthlyAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.ForecastHours)
	}
	return total
}

// =============================================================================
// FLAT ALLOCATION
// =============================================================================

func TestRecalculateAllocation_FlatSplit(t *testing.T) {
	// GIVEN: 1200 total hours, 200 completed, Jan-Apr 2026
	// WHEN: Recalculating
	// THEN: 4 rows of 250 each, summing exactly to the remaining 1000

	allocations, err := forecast.RecalculateAllocation(plan(1200, 200, "2026-01", "2026-04"))
	require.NoError(t, err)
	require.Len(t, allocations, 4)

	months := []string{"2026-01", "2026-02", "2026-03", "2026-04"}
	for i, a := range allocations {
		assert.Equal(t, months[i], a.Month)
		assert.True(t, a.ForecastHours.Equal(dec(250)), "got %s", a.ForecastHours)
	}
	assert.True(t, sumAllocations(allocations).Equal(dec(1000)))
}

func TestRecalculateAllocation_YearRollover(t *testing.T) {
	allocations, err := forecast.RecalculateAllocation(plan(400, 0, "2025-11", "2026-02"))
	require.NoError(t, err)
	require.Len(t, allocations, 4)

	assert.Equal(t, "2025-11", allocations[0].Month)
	assert.Equal(t, "2025-12", allocations[1].Month)
	assert.Equal(t, "2026-01", allocations[2].Month)
	assert.Equal(t, "2026-02", allocations[3].Month)
	assert.True(t, allocations[0].ForecastHours.Equal(dec(100)))
}

func TestRecalculateAllocation_SingleMonth(t *testing.T) {
	allocations, err := forecast.RecalculateAllocation(plan(300, 50, "2026-06", "2026-06"))
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.True(t, allocations[0].ForecastHours.Equal(dec(250)))
}

func TestRecalculateAllocation_OvercompletedFloorsAtZero(t *testing.T) {
	// More hours completed than planned: remaining clamps to zero, the
	// rows still cover the month range.
	allocations, err := forecast.RecalculateAllocation(plan(100, 150, "2026-01", "2026-03"))
	require.NoError(t, err)
	require.Len(t, allocations, 3)
	assert.True(t, sumAllocations(allocations).IsZero())
}

func TestRecalculateAllocation_InvertedRange_Rejected(t *testing.T) {
	_, err := forecast.RecalculateAllocation(plan(100, 0, "2026-04", "2026-01"))
	assert.ErrorIs(t, err, forecast.ErrInvalidMonthRange)
}

func TestLaborPlan_RemainingHours(t *testing.T) {
	assert.True(t, plan(1200, 200, "2026-01", "2026-01").RemainingHours().Equal(dec(1000)))
	assert.True(t, plan(100, 150, "2026-01", "2026-01").RemainingHours().IsZero())
}

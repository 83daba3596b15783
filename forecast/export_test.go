package forecast_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Futilediploma/SprinkSync/forecast"
)

func TestWeeklyCSV(t *testing.T) {
	buckets := []forecast.WeeklyBucket{
		{Week: "2026-W02", WeekStart: forecast.NewDate(2026, time.January, 5), ManHours: dec(40)},
		{Week: "2026-W03", WeekStart: forecast.NewDate(2026, time.January, 12), ManHours: dec(32.5)},
	}

	csv, err := forecast.WeeklyCSV(buckets)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Week,Week Start,Man Hours", lines[0])
	assert.Equal(t, "2026-W02,2026-01-05,40.00", lines[1])
	assert.Equal(t, "2026-W03,2026-01-12,32.50", lines[2])
}

func TestMonthlyCSV(t *testing.T) {
	buckets := []forecast.MonthlyBucket{
		{Month: "2026-01", MonthName: "January 2026", ManHours: dec(160)},
	}

	csv, err := forecast.MonthlyCSV(buckets)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Month,Month Name,Man Hours", lines[0])
	assert.Equal(t, "2026-01,January 2026,160.00", lines[1])
}

func TestProjectsCSV_QuotesNamesWithCommas(t *testing.T) {
	contributions := []forecast.ProjectContribution{
		{ProjectID: 1, ProjectName: "Riverside Medical Center", ManHours: dec(500)},
		{ProjectID: 2, ProjectName: "Warehouse, Building B", ManHours: dec(120)},
	}

	csv, err := forecast.ProjectsCSV(contributions)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Project Name,Man Hours", lines[0])
	assert.Equal(t, "Riverside Medical Center,500.00", lines[1])
	assert.Equal(t, `"Warehouse, Building B",120.00`, lines[2])
}

func TestCSV_EmptyInputs_HeaderOnly(t *testing.T) {
	csv, err := forecast.WeeklyCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "Week,Week Start,Man Hours", strings.TrimSpace(csv))
}

/*
export.go - Tabular flattening of forecast results

PURPOSE:
  Flattens forecast buckets and project contributions into CSV for
  downstream reporting. Pure data transforms; no additional semantics.

SEE ALSO:
  - assemble.go: Produces the ForecastResult consumed here
*/
package forecast

import (
	"bytes"
	"encoding/csv"
)

// WeeklyCSV renders the weekly series as CSV with a header row.
func WeeklyCSV(buckets []WeeklyBucket) (string, error) {
	rows := [][]string{{"Week", "Week Start", "Man Hours"}}
	for _, b := range buckets {
		rows = append(rows, []string{b.Week, b.WeekStart.String(), b.ManHours.StringFixed(2)})
	}
	return writeCSV(rows)
}

// MonthlyCSV renders the monthly series as CSV with a header row.
func MonthlyCSV(buckets []MonthlyBucket) (string, error) {
	rows := [][]string{{"Month", "Month Name", "Man Hours"}}
	for _, b := range buckets {
		rows = append(rows, []string{b.Month, b.MonthName, b.ManHours.StringFixed(2)})
	}
	return writeCSV(rows)
}

// ProjectsCSV renders the ranked contribution list as CSV.
func ProjectsCSV(contributions []ProjectContribution) (string, error) {
	rows := [][]string{{"Project Name", "Man Hours"}}
	for _, c := range contributions {
		rows = append(rows, []string{c.ProjectName, c.ManHours.StringFixed(2)})
	}
	return writeCSV(rows)
}

func writeCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

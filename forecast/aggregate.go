/*
aggregate.go - Weekly and monthly rollups over daily records

PURPOSE:
  Rolls a flat sequence of daily demand records into ISO-week or
  calendar-month buckets, each with a total and a per-crew-type
  breakdown. Buckets are emitted sorted ascending by key.

ISO WEEK ANCHORING:
  The Monday of a bucket's week is derived from the Jan-4 anchor rule
  (Jan 4 always falls in ISO week 1), not from a day-of-year division.
  See ISOWeekStart in calendar.go; this is what keeps weeks that
  straddle a year boundary in the right bucket.

SEE ALSO:
  - calendar.go: ISOWeekKey, ISOWeekStart, Month
  - assemble.go: Selects rollups by requested granularity
*/
package forecast

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AggregateWeekly rolls daily records into ISO-week buckets. Empty
// input yields an empty (non-nil) bucket list.
func AggregateWeekly(records []DailyRecord) []WeeklyBucket {
	byWeek := make(map[string]*WeeklyBucket)

	for _, rec := range records {
		isoYear, isoWeek := rec.Date.Time.ISOWeek()
		key := ISOWeekKey(rec.Date)

		bucket, ok := byWeek[key]
		if !ok {
			bucket = &WeeklyBucket{
				Week:          key,
				WeekStart:     ISOWeekStart(isoYear, isoWeek),
				ManHours:      decimal.Zero,
				CrewBreakdown: make(map[CrewTypeID]decimal.Decimal),
			}
			byWeek[key] = bucket
		}

		bucket.ManHours = bucket.ManHours.Add(rec.ManHours)
		if rec.CrewTypeID != nil {
			ct := *rec.CrewTypeID
			bucket.CrewBreakdown[ct] = bucket.CrewBreakdown[ct].Add(rec.ManHours)
		}
	}

	buckets := make([]WeeklyBucket, 0, len(byWeek))
	for _, b := range byWeek {
		b.ManHours = b.ManHours.Round(2)
		roundBreakdown(b.CrewBreakdown)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Week < buckets[j].Week })
	return buckets
}

// AggregateMonthly rolls daily records into calendar-month buckets.
// Empty input yields an empty (non-nil) bucket list.
func AggregateMonthly(records []DailyRecord) []MonthlyBucket {
	byMonth := make(map[string]*MonthlyBucket)

	for _, rec := range records {
		month := MonthOf(rec.Date)
		key := month.String()

		bucket, ok := byMonth[key]
		if !ok {
			bucket = &MonthlyBucket{
				Month:         key,
				MonthName:     month.DisplayName(),
				ManHours:      decimal.Zero,
				CrewBreakdown: make(map[CrewTypeID]decimal.Decimal),
			}
			byMonth[key] = bucket
		}

		bucket.ManHours = bucket.ManHours.Add(rec.ManHours)
		if rec.CrewTypeID != nil {
			ct := *rec.CrewTypeID
			bucket.CrewBreakdown[ct] = bucket.CrewBreakdown[ct].Add(rec.ManHours)
		}
	}

	buckets := make([]MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		b.ManHours = b.ManHours.Round(2)
		roundBreakdown(b.CrewBreakdown)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })
	return buckets
}

func roundBreakdown(breakdown map[CrewTypeID]decimal.Decimal) {
	for ct, hours := range breakdown {
		breakdown[ct] = hours.Round(2)
	}
}

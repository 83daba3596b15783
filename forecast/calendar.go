package forecast

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granularity time abstraction (UTC midnight)
// =============================================================================

type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (d Date) IsWorkday() bool { return !d.IsWeekend() }
func (d Date) IsZero() bool    { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// CalendarDaysBetween returns the inclusive day count from start to
// end, counting weekends. Zero when end precedes start.
func CalendarDaysBetween(start, end Date) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Time.Sub(start.Time).Hours()/24) + 1
}

// =============================================================================
// WORKING DAYS - Five-day week, no holidays
// =============================================================================

// WorkingDays returns the ordered weekdays (Mon-Fri) between start and
// end, inclusive of both ends. Empty when end precedes start or the
// range contains no weekdays.
//
// Holiday calendars and custom shift patterns are a future extension
// point; the current contract is a plain five-day week.
func WorkingDays(start, end Date) []Date {
	var days []Date
	for current := start; current.BeforeOrEqual(end); current = current.AddDays(1) {
		if current.IsWorkday() {
			days = append(days, current)
		}
	}
	return days
}

// =============================================================================
// ISO WEEKS
// =============================================================================

// ISOWeekKey returns the "YYYY-Www" bucket key for a date, using the
// ISO-8601 week-numbering year.
func ISOWeekKey(d Date) string {
	year, week := d.Time.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// ISOWeekStart returns the Monday of the given ISO week. January 4th
// always falls in ISO week 1, so the Monday of week 1 is Jan 4 minus
// its weekday offset; later weeks are whole-week increments from
// there. Anchoring on Jan 4 avoids off-by-one-week errors at year
// boundaries.
func ISOWeekStart(isoYear, week int) Date {
	jan4 := NewDate(isoYear, time.January, 4)
	offset := (int(jan4.Weekday()) + 6) % 7 // Monday = 0
	week1Monday := jan4.AddDays(-offset)
	return week1Monday.AddDays((week - 1) * 7)
}

// =============================================================================
// MONTHS - "YYYY-MM" calendar month keys
// =============================================================================

type Month struct {
	Year  int
	Month time.Month
}

func NewMonth(year int, month time.Month) Month {
	return Month{Year: year, Month: month}
}

func MonthOf(d Date) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, &MonthParseError{Value: s}
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// DisplayName renders the month for reports, e.g. "January 2026".
func (m Month) DisplayName() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// Next returns the following calendar month, rolling over the year.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) Before(other Month) bool {
	return m.Year < other.Year || (m.Year == other.Year && m.Month < other.Month)
}

func (m Month) After(other Month) bool { return other.Before(m) }

// MonthsBetween returns the inclusive month count from start to end,
// clamped to a minimum of 1. Callers should reject inverted ranges
// upstream; the clamp is only a guard against division by zero.
func MonthsBetween(start, end Month) int {
	n := (end.Year-start.Year)*12 + int(end.Month-start.Month) + 1
	if n < 1 {
		return 1
	}
	return n
}

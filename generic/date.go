/*
Package generic provides the shared date and quantity primitives for the
analytics engines.

PURPOSE:
  Both analytics engines (progress curves and workforce rollups) share the
  same computational shape: sparse, irregularly-timestamped inputs folded
  into dense day-granular output. This package owns the calendar machinery
  they share: day-granular dates, inclusive periods, and calendar-week
  partitioning.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: A calendar day (UTC-normalized, no time-of-day component)
  - Period: An inclusive day range that can expand into a dense sequence
  - Week/month helpers: calendar-week boundaries for rollups

DESIGN PRINCIPLES:
  1. Day granularity only: the engines never reason below a calendar day
  2. Normalization: every constructor strips time-of-day, so Date values
     are safe map keys and compare by calendar day
  3. Inclusive ranges: Period includes both endpoints, matching how site
     schedules are expressed ("Jan 1 through Jan 10" is ten days of work)

SEE ALSO:
  - quantity.go: decimal helpers for percentages and averages
  - errors.go: sentinel errors shared by the engines
*/
package generic

import (
	"time"
)

// =============================================================================
// DATE - Day-granular calendar date
// =============================================================================

// Date is a calendar day. The embedded time is always normalized to
// midnight UTC, so Date values are comparable and usable as map keys.
type Date struct {
	Time time.Time
}

// NewDate constructs a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, &InvalidDateError{Input: s, Cause: err}
	}
	return DateOf(t), nil
}

// Today returns the current calendar day.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Normalize returns the date with any time-of-day component stripped.
// Dates built through the constructors are already normalized; this exists
// for values assembled from raw time.Time literals.
func (d Date) Normalize() Date { return Date{Time: d.normalize()} }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.normalize().AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.normalize().AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// DaysBetween returns the number of days from one date to another
// (exclusive of `from`, so DaysBetween(d, d.AddDays(3)) == 3).
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// PERIOD - Inclusive day range
// =============================================================================

// Period is an inclusive range of calendar days [Start, End].
// It is the unit of windowing for both engines: the progress curve is
// computed over one, attendance rollups iterate one day by day.
type Period struct {
	Start Date
	End   Date
}

// NewPeriod constructs an inclusive period.
func NewPeriod(start, end Date) Period { return Period{Start: start, End: end} }

// Validate reports a caller-contract violation: an unset boundary or an
// end before the start. Record-level data defects never reach here; this
// guards the windows callers pass in.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrInvalidPeriod
	}
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the date falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days expands the period into its dense inclusive day sequence.
// Returns nil for an invalid period.
func (p Period) Days() []Date {
	if p.Validate() != nil {
		return nil
	}
	days := make([]Date, 0, p.Len())
	for current := p.Start.Normalize(); current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len returns the number of days in the period, endpoints included.
func (p Period) Len() int {
	if p.Validate() != nil {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// WEEK AND MONTH BOUNDARIES - For attendance rollups
// =============================================================================

// StartOfWeek returns the most recent day on or before d that falls on
// weekStart. Which weekday starts the week is a locale convention, so the
// caller supplies it rather than this package assuming one.
func StartOfWeek(d Date, weekStart time.Weekday) Date {
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDays(-offset)
}

// WeekOf returns the 7-day period containing d, starting on weekStart.
func WeekOf(d Date, weekStart time.Weekday) Period {
	start := StartOfWeek(d, weekStart)
	return Period{Start: start, End: start.AddDays(6)}
}

// MonthPeriod returns the inclusive period covering a calendar month.
func MonthPeriod(year int, month time.Month) Period {
	start := NewDate(year, month, 1)
	end := Date{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
	return Period{Start: start, End: end}
}

// WeeksOfMonth partitions a calendar month into its calendar weeks.
// Weeks follow the supplied week-start convention and are clipped at the
// month boundaries, so the first and last entries may span fewer than
// seven days.
func WeeksOfMonth(year int, month time.Month, weekStart time.Weekday) []Period {
	monthSpan := MonthPeriod(year, month)

	var weeks []Period
	current := monthSpan.Start
	for current.BeforeOrEqual(monthSpan.End) {
		weekEnd := StartOfWeek(current, weekStart).AddDays(6)
		if weekEnd.After(monthSpan.End) {
			weekEnd = monthSpan.End
		}
		weeks = append(weeks, Period{Start: current, End: weekEnd})
		current = weekEnd.AddDays(1)
	}
	return weeks
}

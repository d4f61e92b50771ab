package generic

import (
	"time"
)

// =============================================================================
// DAY - Calendar day without time-of-day or zone
// =============================================================================

// Day is a calendar day. The wrapped time is always midnight UTC so two Days
// built from the same wall-clock date compare equal regardless of the zone or
// time of day of their source.
type Day struct {
	Time time.Time
}

// DayLayout is the canonical text form of a Day.
const DayLayout = "2006-01-02"

// Constructors
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf drops the time-of-day and zone of t, keeping the date as seen in t's
// own location.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// ParseDay accepts "YYYY-MM-DD" or an RFC 3339 date-time. The date-time form
// keeps the date written in the string; its offset is ignored.
func ParseDay(s string) (Day, error) {
	if t, err := time.Parse(DayLayout, s); err == nil {
		return DayOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DayOf(t), nil
	}
	return Day{}, ErrInvalidDate
}

func Today() Day {
	return DayOf(time.Now())
}

// Comparison
func (d Day) Before(other Day) bool        { return d.Time.Before(other.Time) }
func (d Day) Equal(other Day) bool         { return d.Time.Equal(other.Time) }
func (d Day) After(other Day) bool         { return d.Time.After(other.Time) }
func (d Day) BeforeOrEqual(other Day) bool { return !d.After(other) }
func (d Day) AfterOrEqual(other Day) bool  { return !d.Before(other) }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Day) Year() int             { return d.Time.Year() }
func (d Day) Month() time.Month     { return d.Time.Month() }
func (d Day) Day() int              { return d.Time.Day() }
func (d Day) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Day) IsWeekend() bool       { wd := d.Weekday(); return wd == time.Saturday || wd == time.Sunday }
func (d Day) IsWorkday() bool       { return !d.IsWeekend() }
func (d Day) IsZero() bool          { return d.Time.IsZero() }
func (d Day) MonthOf() Month        { return Month{Year: d.Year(), Month: d.Month()} }

func (d Day) String() string {
	return d.Time.Format(DayLayout)
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

// Holiday is a named public holiday.
type Holiday struct {
	Date Day
	Name string
}

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	// IsHoliday reports whether the day is a holiday and its name.
	IsHoliday(day Day) (string, bool)

	// Holidays returns all holidays of a year, ordered by date.
	Holidays(year int) []Holiday
}

// NoHolidays is a calendar without holidays.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(Day) (string, bool) { return "", false }
func (NoHolidays) Holidays(int) []Holiday       { return nil }

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to Day) int { return int(to.Time.Sub(from.Time).Hours() / 24) }
func StartOfMonth(year int, month time.Month) Day { return NewDay(year, month, 1) }
func EndOfMonth(year int, month time.Month) Day {
	return Day{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

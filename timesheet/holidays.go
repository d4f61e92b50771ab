package timesheet

import (
	"sort"
	"time"

	"github.com/warp/pontaj/generic"
)

// =============================================================================
// DAY CLASSIFIER
// =============================================================================

// DayKind separates expected workdays from weekend days.
type DayKind int

const (
	Workday DayKind = iota
	Weekend
)

func (k DayKind) String() string {
	if k == Weekend {
		return "weekend"
	}
	return "workday"
}

// Classification describes a calendar day. Holiday is informational and does
// not change Kind: a holiday on a Tuesday is still a Workday.
type Classification struct {
	Date        generic.Day
	Kind        DayKind
	Holiday     bool
	HolidayName string
}

// DayClassifier classifies days against a holiday calendar.
type DayClassifier struct {
	holidays generic.HolidayCalendar
}

// NewDayClassifier uses the given holidays; nil means NationalHolidays.
func NewDayClassifier(holidays generic.HolidayCalendar) *DayClassifier {
	if holidays == nil {
		holidays = NationalHolidays
	}
	return &DayClassifier{holidays: holidays}
}

// KindOf classifies a day by weekday alone.
func KindOf(day generic.Day) DayKind {
	if day.IsWeekend() {
		return Weekend
	}
	return Workday
}

func (c *DayClassifier) Classify(day generic.Day) Classification {
	cl := Classification{Date: day, Kind: KindOf(day)}
	cl.HolidayName, cl.Holiday = c.holidays.IsHoliday(day)
	return cl
}

func (c *DayClassifier) Holidays(year int) []generic.Holiday {
	return c.holidays.Holidays(year)
}

// =============================================================================
// NATIONAL HOLIDAYS - Fixed, preloaded list
// =============================================================================

// StaticHolidays is a HolidayCalendar backed by a fixed date list.
type StaticHolidays map[generic.Day]string

func (s StaticHolidays) IsHoliday(day generic.Day) (string, bool) {
	name, ok := s[day]
	return name, ok
}

func (s StaticHolidays) Holidays(year int) []generic.Holiday {
	var out []generic.Holiday
	for day, name := range s {
		if day.Year() == year {
			out = append(out, generic.Holiday{Date: day, Name: name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// NationalHolidays are the Romanian legal holidays for 2024-2026.
var NationalHolidays = buildNationalHolidays(2024, 2025, 2026)

func buildNationalHolidays(years ...int) StaticHolidays {
	fixed := []struct {
		month, day int
		name       string
	}{
		{1, 1, "New Year's Day"},
		{1, 2, "New Year's Day (second day)"},
		{1, 24, "Unification Day"},
		{2, 10, "Public holiday"},
		{3, 8, "International Women's Day"},
		{3, 9, "Public holiday"},
		{5, 1, "Labour Day"},
		{12, 1, "National Day"},
		{12, 25, "Christmas"},
		{12, 26, "Christmas (second day)"},
	}

	out := make(StaticHolidays, len(fixed)*len(years))
	for _, y := range years {
		for _, f := range fixed {
			out[generic.NewDay(y, time.Month(f.month), f.day)] = f.name
		}
	}
	return out
}

// Package timesheet implements work-hour accounting over calendars of daily shifts.
// It uses the generic primitives for days, months and minute quantities.
package timesheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/pontaj/generic"
)

// =============================================================================
// SHIFT TYPE - Closed set of shift categories
// =============================================================================

// ShiftType is the category of a shift. Only ShiftCS is compensatory leave;
// every other category is ordinary worked time.
type ShiftType int

const (
	ShiftDay ShiftType = iota
	ShiftNight
	ShiftCS
	ShiftOther
)

// ShiftTypes lists every category in display order.
var ShiftTypes = []ShiftType{ShiftDay, ShiftNight, ShiftCS, ShiftOther}

func (t ShiftType) String() string {
	switch t {
	case ShiftDay:
		return "day"
	case ShiftNight:
		return "night"
	case ShiftCS:
		return "cs"
	case ShiftOther:
		return "other"
	default:
		return fmt.Sprintf("ShiftType(%d)", int(t))
	}
}

// IsCompensatory reports whether hours of this category offset overtime debt.
func (t ShiftType) IsCompensatory() bool {
	switch t {
	case ShiftCS:
		return true
	case ShiftDay, ShiftNight, ShiftOther:
		return false
	default:
		return false
	}
}

// DefaultTimes returns the start and end offered when a shift of this type is added.
func (t ShiftType) DefaultTimes() (start, end string) {
	switch t {
	case ShiftDay:
		return "06:45", "19:15"
	case ShiftNight:
		return "18:45", "07:15"
	default:
		return "08:00", "16:00"
	}
}

// ParseShiftType maps a tag ("day", "night", "cs", "other") to its category.
func ParseShiftType(s string) (ShiftType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day":
		return ShiftDay, nil
	case "night":
		return ShiftNight, nil
	case "cs":
		return ShiftCS, nil
	case "other":
		return ShiftOther, nil
	}
	return 0, fmt.Errorf("%w: %q", generic.ErrInvalidShiftType, s)
}

func (t ShiftType) MarshalText() ([]byte, error) {
	switch t {
	case ShiftDay, ShiftNight, ShiftCS, ShiftOther:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", generic.ErrInvalidShiftType, int(t))
}

func (t *ShiftType) UnmarshalText(text []byte) error {
	parsed, err := ParseShiftType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// =============================================================================
// SHIFT / DAY ENTRY / CALENDAR
// =============================================================================

// Shift is one block of time logged on a day. Duration is always the
// ComputeDuration of StartTime and EndTime.
type Shift struct {
	Type      ShiftType
	StartTime string
	EndTime   string
	Duration  int
}

// NewShift builds a shift with its derived duration.
func NewShift(t ShiftType, start, end string) Shift {
	return Shift{Type: t, StartTime: start, EndTime: end, Duration: ComputeDuration(start, end)}
}

// Normalized recomputes Duration from the clock times.
func (s Shift) Normalized() Shift {
	s.Duration = ComputeDuration(s.StartTime, s.EndTime)
	return s
}

// DayEntry is the record of one calendar day. An entry with no shifts is an
// explicit no-work record.
type DayEntry struct {
	Date   generic.Day
	Shifts []Shift
}

// Normalized returns a copy with recomputed shift durations.
func (e DayEntry) Normalized() DayEntry {
	shifts := make([]Shift, len(e.Shifts))
	for i, s := range e.Shifts {
		shifts[i] = s.Normalized()
	}
	return DayEntry{Date: e.Date, Shifts: shifts}
}

// TotalMinutes is the sum of all shift durations of the day.
func (e DayEntry) TotalMinutes() generic.Minutes {
	total := generic.ZeroMinutes()
	for _, s := range e.Shifts {
		total = total.Add(generic.NewMinutes(s.Duration))
	}
	return total
}

// CompensatoryMinutes is the sum of compensatory shift durations of the day.
func (e DayEntry) CompensatoryMinutes() generic.Minutes {
	total := generic.ZeroMinutes()
	for _, s := range e.Shifts {
		if s.Type.IsCompensatory() {
			total = total.Add(generic.NewMinutes(s.Duration))
		}
	}
	return total
}

// Calendar is a named, independently accounted set of day entries.
type Calendar struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Entries   []DayEntry
}

// =============================================================================
// SUMMARY - Derived figures, never stored
// =============================================================================

// MonthSummary holds the figures reported for one month. Every field except
// WorkDays and OffDays is in minutes.
type MonthSummary struct {
	TotalFTL     int `json:"totalFTL"`
	TotalOL      int `json:"totalOL"`
	TotalWeekend int `json:"totalWeekend"`
	WorkDays     int `json:"workDays"`
	OffDays      int `json:"offDays"`
	CSMonth      int `json:"csMonth"`
	CSTotal      int `json:"csTotal"`
	OSMonth      int `json:"osMonth"`
	OSTotal      int `json:"osTotal"`
	CSBalance    int `json:"csBalance"`
	OSDebt90d    int `json:"osDebt90d"`
}

// MonthFigures is one row of the cumulative breakdown.
type MonthFigures struct {
	Month generic.Month
	OL    generic.Minutes // logged
	FTL   generic.Minutes // expected
	OS    generic.Minutes // OL - FTL
	CS    generic.Minutes // compensatory
}

// HasLoggedTime reports whether any minutes were logged in the month.
func (f MonthFigures) HasLoggedTime() bool { return f.OL.IsPositive() }

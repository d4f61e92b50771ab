package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Inclusive range of days
// =============================================================================

// Period is the inclusive range [Start, End].
type Period struct {
	Start Day
	End   Day
}

// Contains returns true if the day is within the period [Start, End]
func (p Period) Contains(d Day) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all days in the period.
func (p Period) Days() []Day {
	var days []Day
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Workdays counts the Monday-Friday days of the period.
func (p Period) Workdays() int {
	n := 0
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		if current.IsWorkday() {
			n++
		}
	}
	return n
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// MONTH - Calendar month, the accounting unit
// =============================================================================

// Month identifies a calendar month. Month uses time.Month (1-12).
type Month struct {
	Year  int
	Month time.Month
}

// MonthFromIndex builds a Month from a zero-based month index. Indexes outside
// 0-11 roll into neighbouring years.
func MonthFromIndex(year, index int) Month {
	t := time.Date(year, time.Month(index+1), 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Index returns the zero-based month number.
func (m Month) Index() int { return int(m.Month) - 1 }

func (m Month) AddMonths(n int) Month {
	return MonthFromIndex(m.Year, m.Index()+n)
}

func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m Month) After(other Month) bool { return other.Before(m) }

func (m Month) Period() Period {
	return Period{Start: StartOfMonth(m.Year, m.Month), End: EndOfMonth(m.Year, m.Month)}
}

// Contains reports whether the day falls inside the month.
func (m Month) Contains(d Day) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// Workdays is the number of Monday-Friday days in the month.
func (m Month) Workdays() int { return m.Period().Workdays() }

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MonthsBetween lists every month from first to last, inclusive. It is empty
// when first is after last.
func MonthsBetween(first, last Month) []Month {
	var months []Month
	for cur := first; !cur.After(last); cur = cur.AddMonths(1) {
		months = append(months, cur)
	}
	return months
}

/*
Package generic provides the calendar and quantity primitives shared by the
work-hour accounting engine and its storage layers.

KEY CONCEPTS:
  - Day:     A calendar day with no time-of-day or zone (entry key)
  - Month:   A calendar month, the unit of every accounting figure
  - Period:  An inclusive range of days
  - Minutes: A minute quantity, summed exactly and rounded on output
  - HolidayCalendar: Holiday lookup (informational only)

DESIGN PRINCIPLES:
  1. Calendar-day equality: two timestamps on the same wall-clock date are the
     same Day, whatever their time of day.
  2. Precision: minute totals accumulate as decimal.Decimal and are rounded to
     the nearest minute only when a figure is reported.

SEE ALSO:
  - timesheet/engine.go: Monthly accounting built on these types
  - errors.go: Sentinel errors shared by all packages
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MINUTES - Quantity of work time
// =============================================================================

// MinutesPerHour and MinutesPerDay are the clock constants used in duration math.
const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour
)

// Minutes is a signed amount of minutes.
type Minutes struct {
	Value decimal.Decimal
}

func NewMinutes(value int) Minutes {
	return Minutes{Value: decimal.NewFromInt(int64(value))}
}

func NewMinutesFromFloat(value float64) Minutes {
	return Minutes{Value: decimal.NewFromFloat(value)}
}

func ZeroMinutes() Minutes { return Minutes{Value: decimal.Zero} }

func (m Minutes) Add(b Minutes) Minutes  { return Minutes{Value: m.Value.Add(b.Value)} }
func (m Minutes) Sub(b Minutes) Minutes  { return Minutes{Value: m.Value.Sub(b.Value)} }
func (m Minutes) Neg() Minutes           { return Minutes{Value: m.Value.Neg()} }
func (m Minutes) IsNegative() bool       { return m.Value.IsNegative() }
func (m Minutes) IsZero() bool           { return m.Value.IsZero() }
func (m Minutes) IsPositive() bool       { return m.Value.IsPositive() }
func (m Minutes) GreaterThan(b Minutes) bool { return m.Value.GreaterThan(b.Value) }
func (m Minutes) Max(b Minutes) Minutes {
	if m.GreaterThan(b) {
		return m
	}
	return b
}

// Times multiplies by an integer count, e.g. workdays × minutes per workday.
func (m Minutes) Times(n int) Minutes { return Minutes{Value: m.Value.Mul(decimal.NewFromInt(int64(n)))} }

// Round returns the nearest whole minute. Halves round away from zero.
func (m Minutes) Round() int {
	return int(m.Value.Round(0).IntPart())
}

func (m Minutes) String() string { return m.Value.String() }

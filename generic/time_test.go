package generic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		in   string
		want Day
	}{
		{"2025-03-10", NewDay(2025, time.March, 10)},
		{"2025-03-10T00:00:00Z", NewDay(2025, time.March, 10)},
		{"2025-03-10T00:00:00.000Z", NewDay(2025, time.March, 10)},
		// The written date wins over the offset.
		{"2025-03-10T23:30:00-05:00", NewDay(2025, time.March, 10)},
		{"2025-03-10T01:00:00+03:00", NewDay(2025, time.March, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDay(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, in := range []string{"", "10/03/2025", "2025-13-01", "2025-02-30"} {
		_, err := ParseDay(in)
		assert.ErrorIs(t, err, ErrInvalidDate, in)
	}
}

func TestDayOf_DropsTimeOfDay(t *testing.T) {
	morning := DayOf(time.Date(2025, time.March, 10, 6, 45, 0, 0, time.UTC))
	evening := DayOf(time.Date(2025, time.March, 10, 23, 59, 0, 0, time.FixedZone("EET", 2*3600)))

	assert.Equal(t, morning, evening)
	assert.Equal(t, "2025-03-10", evening.String())
}

func TestDay_Properties(t *testing.T) {
	sat := NewDay(2025, time.March, 8)
	assert.True(t, sat.IsWeekend())
	assert.False(t, sat.IsWorkday())
	assert.True(t, sat.AddDays(2).IsWorkday())
	assert.Equal(t, Month{Year: 2025, Month: time.March}, sat.MonthOf())
	assert.True(t, sat.Before(sat.AddDays(1)))
	assert.True(t, sat.BeforeOrEqual(sat))
	assert.Equal(t, 7, DaysBetween(sat, sat.AddDays(7)))
}

func TestMonth_Arithmetic(t *testing.T) {
	jan := Month{Year: 2025, Month: time.January}

	assert.Equal(t, Month{Year: 2024, Month: time.September}, jan.AddMonths(-4))
	assert.Equal(t, Month{Year: 2026, Month: time.January}, jan.AddMonths(12))
	assert.Equal(t, Month{Year: 2024, Month: time.December}, MonthFromIndex(2025, -1))
	assert.Equal(t, Month{Year: 2026, Month: time.January}, MonthFromIndex(2025, 12))
	assert.Equal(t, 0, jan.Index())
	assert.True(t, jan.AddMonths(-1).Before(jan))
	assert.True(t, jan.After(jan.AddMonths(-1)))
	assert.False(t, jan.Before(jan))
}

func TestMonth_Workdays(t *testing.T) {
	assert.Equal(t, 20, Month{Year: 2025, Month: time.February}.Workdays())
	assert.Equal(t, 23, Month{Year: 2025, Month: time.January}.Workdays())
	assert.Equal(t, 21, Month{Year: 2024, Month: time.February}.Workdays())
	assert.Equal(t, NewDay(2024, time.February, 29), EndOfMonth(2024, time.February))
}

func TestMonthsBetween(t *testing.T) {
	first := Month{Year: 2024, Month: time.November}
	last := Month{Year: 2025, Month: time.February}

	months := MonthsBetween(first, last)
	require.Len(t, months, 4)
	assert.Equal(t, "2024-11", months[0].String())
	assert.Equal(t, "2025-02", months[3].String())

	assert.Empty(t, MonthsBetween(last, first))
	assert.Len(t, MonthsBetween(first, first), 1)
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-07")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2025, Month: time.July}, m)

	_, err = ParseMonth("2025-13")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestPeriod(t *testing.T) {
	p := Month{Year: 2025, Month: time.March}.Period()
	assert.Len(t, p.Days(), 31)
	assert.Equal(t, 21, p.Workdays())
	assert.True(t, p.Contains(NewDay(2025, time.March, 31)))
	assert.False(t, p.Contains(NewDay(2025, time.April, 1)))
	assert.Equal(t, "[2025-03-01, 2025-03-31]", p.String())
}

func TestMinutes(t *testing.T) {
	total := NewMinutes(750).Add(NewMinutes(480)).Sub(NewMinutes(30))
	assert.Equal(t, 1200, total.Round())
	assert.Equal(t, 480*21, NewMinutes(480).Times(21).Round())
	assert.Equal(t, 0, NewMinutes(-5).Max(ZeroMinutes()).Round())
	assert.True(t, NewMinutes(-5).IsNegative())
	assert.True(t, NewMinutes(-5).Neg().IsPositive())

	// Halves round away from zero.
	assert.Equal(t, 3, NewMinutesFromFloat(2.5).Round())
	assert.Equal(t, -3, NewMinutesFromFloat(-2.5).Round())
	assert.Equal(t, 2, NewMinutesFromFloat(2.4).Round())
}

func TestErrorHelpers(t *testing.T) {
	shiftErr := &ShiftError{Date: NewDay(2025, time.March, 10), Index: 1, Err: ErrInvalidTime}

	assert.True(t, IsClientError(shiftErr))
	assert.False(t, IsNotFound(shiftErr))
	assert.True(t, IsNotFound(ErrCalendarNotFound))
	assert.Contains(t, shiftErr.Error(), "shift 1 on 2025-03-10")
}

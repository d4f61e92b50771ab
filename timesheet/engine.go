/*
engine.go - Monthly work-hour accounting

PURPOSE:
  Turns a calendar's day entries into the figures shown for a month:
  expected time (FTL), logged time (OL), surplus (OS), compensatory leave
  (CS) and the overtime debt that falls due four months later.

KEY INSIGHT:
  Cumulative figures run over a HORIZON that starts at the month of the
  earliest entry, not at the target month. Months inside the horizon that
  have no logged minutes still carry an FTL, but they are left out of the
  cumulative OS so that time before the calendar was used is not counted
  as a deficit.

STEPS (all in minutes):
  1. Target month:  OL, CS, weekend minutes, one workday per weekday entry
  2. FTL:           weekdays of the target month × 480
  3. Horizon:       earliest entry month .. target month
  4. Breakdown:     per month OL, FTL, CS, OS = OL - FTL
  5. Cumulative:    CSTotal = ΣCS, OSTotal = ΣOS over months with OL > 0,
                    CSBalance = OSTotal - CSTotal
  6. Debt:          row of (target - 4 months): max(0, OS - CS), else 0
  7. Output:        every minute figure rounded to the nearest minute

PURITY:
  SummarizeMonth and Breakdown are pure functions over an entry snapshot.
  Engine only adds the repository read in front of them; it never writes
  and keeps no state between calls, so it is safe for concurrent use.

SEE ALSO:
  - store.go: EntryRepository
  - diagnostics/: Explicit inspection of a breakdown
*/
package timesheet

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/warp/pontaj/generic"
)

const (
	// WorkdayMinutes is the expected load of one weekday (8h).
	WorkdayMinutes = 8 * generic.MinutesPerHour

	// DebtLagMonths is how long a month's surplus waits before it is due.
	DebtLagMonths = 4
)

// =============================================================================
// PURE ACCOUNTING
// =============================================================================

// ExpectedMinutes is the FTL of a month: every weekday counts as a full
// workday whether or not anything was logged.
func ExpectedMinutes(m generic.Month) generic.Minutes {
	return generic.NewMinutes(WorkdayMinutes).Times(m.Workdays())
}

// DebtMonth is the month whose surplus falls due in target.
func DebtMonth(target generic.Month) generic.Month {
	return target.AddMonths(-DebtLagMonths)
}

// Horizon returns the first and last month of the cumulative breakdown. With
// no entries it is the target month alone.
func Horizon(entries []DayEntry, target generic.Month) (first, last generic.Month) {
	first = target
	for i, e := range entries {
		m := e.Date.MonthOf()
		if i == 0 || m.Before(first) {
			first = m
		}
	}
	return first, target
}

// Breakdown computes the figures of every month in the horizon, oldest first.
// It is empty when every entry is later than the target month.
func Breakdown(entries []DayEntry, target generic.Month) []MonthFigures {
	first, last := Horizon(entries, target)
	months := generic.MonthsBetween(first, last)

	rows := make([]MonthFigures, len(months))
	index := make(map[generic.Month]int, len(months))
	for i, m := range months {
		index[m] = i
		ftl := ExpectedMinutes(m)
		rows[i] = MonthFigures{
			Month: m,
			OL:    generic.ZeroMinutes(),
			FTL:   ftl,
			CS:    generic.ZeroMinutes(),
		}
	}

	for _, e := range entries {
		i, ok := index[e.Date.MonthOf()]
		if !ok {
			continue
		}
		rows[i].OL = rows[i].OL.Add(e.TotalMinutes())
		rows[i].CS = rows[i].CS.Add(e.CompensatoryMinutes())
	}

	for i := range rows {
		rows[i].OS = rows[i].OL.Sub(rows[i].FTL)
	}
	return rows
}

// SummarizeMonth computes the summary of target from a snapshot of entries.
// It never fails: an empty snapshot yields zero figures apart from the FTL
// and the resulting monthly deficit.
func SummarizeMonth(entries []DayEntry, target generic.Month) MonthSummary {
	zero := generic.ZeroMinutes()

	// 1. Target month pass
	totalOL, csMonth, totalWeekend := zero, zero, zero
	workDays := 0
	for _, e := range entries {
		if !target.Contains(e.Date) {
			continue
		}
		day := e.TotalMinutes()
		totalOL = totalOL.Add(day)
		csMonth = csMonth.Add(e.CompensatoryMinutes())

		switch KindOf(e.Date) {
		case Workday:
			workDays++
		case Weekend:
			totalWeekend = totalWeekend.Add(day)
		}
	}

	// 2. Target FTL
	totalFTL := ExpectedMinutes(target)
	osMonth := totalOL.Sub(totalFTL)

	// 3-5. Horizon breakdown and cumulative totals
	rows := Breakdown(entries, target)
	csTotal, osTotal := zero, zero
	for _, r := range rows {
		csTotal = csTotal.Add(r.CS)
		if r.HasLoggedTime() {
			osTotal = osTotal.Add(r.OS)
		}
	}
	csBalance := osTotal.Sub(csTotal)

	// 6. Debt recognition
	debt := zero
	if row, ok := findMonth(rows, DebtMonth(target)); ok {
		debt = row.OS.Sub(row.CS).Max(zero)
	}

	// 7. Output
	return MonthSummary{
		TotalFTL:     totalFTL.Round(),
		TotalOL:      totalOL.Round(),
		TotalWeekend: totalWeekend.Round(),
		WorkDays:     workDays,
		OffDays:      0,
		CSMonth:      csMonth.Round(),
		CSTotal:      csTotal.Round(),
		OSMonth:      osMonth.Round(),
		OSTotal:      osTotal.Round(),
		CSBalance:    csBalance.Round(),
		OSDebt90d:    debt.Round(),
	}
}

func findMonth(rows []MonthFigures, m generic.Month) (MonthFigures, bool) {
	for _, r := range rows {
		if r.Month == m {
			return r, true
		}
	}
	return MonthFigures{}, false
}

// =============================================================================
// ENGINE - Repository-backed front
// =============================================================================

// ActiveCalendarSource resolves the active calendar id.
type ActiveCalendarSource interface {
	GetActiveCalendarID(ctx context.Context) (string, error)
}

// Engine reads entry snapshots and summarizes them.
type Engine struct {
	entries EntryRepository
	active  ActiveCalendarSource
}

func NewEngine(entries EntryRepository, active ActiveCalendarSource) *Engine {
	return &Engine{entries: entries, active: active}
}

// ComputeMonthSummary summarizes a month of the active calendar. month is
// zero-based (0 = January). With no active calendar the summary is computed
// over an empty entry set.
func (e *Engine) ComputeMonthSummary(ctx context.Context, year, month int) (MonthSummary, error) {
	id, err := e.active.GetActiveCalendarID(ctx)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("resolve active calendar: %w", err)
	}
	target := generic.MonthFromIndex(year, month)
	if id == "" {
		return SummarizeMonth(nil, target), nil
	}
	return e.ComputeForCalendar(ctx, id, target)
}

// ComputeForCalendar summarizes a month of the given calendar.
func (e *Engine) ComputeForCalendar(ctx context.Context, calendarID string, target generic.Month) (MonthSummary, error) {
	entries, err := e.entries.ListEntries(ctx, calendarID)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("list entries: %w", err)
	}
	return SummarizeMonth(entries, target), nil
}

// ComputeYear summarizes all twelve months of a year from one snapshot.
func (e *Engine) ComputeYear(ctx context.Context, calendarID string, year int) ([12]MonthSummary, error) {
	var out [12]MonthSummary

	entries, err := e.entries.ListEntries(ctx, calendarID)
	if err != nil {
		return out, fmt.Errorf("list entries: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range out {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = SummarizeMonth(entries, generic.MonthFromIndex(year, i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// Breakdown returns the cumulative monthly rows of a calendar up to target.
func (e *Engine) Breakdown(ctx context.Context, calendarID string, target generic.Month) ([]MonthFigures, error) {
	entries, err := e.entries.ListEntries(ctx, calendarID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return Breakdown(entries, target), nil
}

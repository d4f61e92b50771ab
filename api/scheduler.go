/*
scheduler.go - Automated overtime debt watch

PURPOSE:
  Periodically computes the current month of every calendar and records a
  debt notice when surplus from four months back has fallen due.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - One notice per (calendar, month); a later check overwrites it
  - Months without debt write nothing

CONFIGURATION:
  - Interval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewDebtScheduler(store, engine, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: CheckDebts endpoint (manual check)
  - timesheet/engine.go: Debt recognition
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

// DebtScheduler records debt notices on a timer.
type DebtScheduler struct {
	Store    timesheet.Backend
	Engine   *timesheet.Engine
	Interval time.Duration
	Enabled  bool
	Now      func() time.Time

	log    *slog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewDebtScheduler creates a new scheduler.
func NewDebtScheduler(store timesheet.Backend, engine *timesheet.Engine, logger *slog.Logger) *DebtScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebtScheduler{
		Store:    store,
		Engine:   engine,
		Interval: 1 * time.Hour,
		Enabled:  true,
		Now:      time.Now,
		log:      logger.With(slog.String("component", "scheduler")),
	}
}

// Start begins the scheduler.
func (ds *DebtScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		ds.log.Info("disabled, not starting")
		return
	}
	if ds.ticker != nil {
		return
	}

	ds.ticker = time.NewTicker(ds.Interval)
	ds.stop = make(chan struct{})
	ds.wg.Add(1)

	go ds.run(ds.ticker, ds.stop)

	ds.log.Info("started", slog.Duration("interval", ds.Interval))
}

// Stop stops the scheduler and waits for a running check to finish.
func (ds *DebtScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		ds.ticker = nil
		ds.log.Info("stopped")
	}
}

func (ds *DebtScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ds.wg.Done()

	ds.check()

	for {
		select {
		case <-ticker.C:
			ds.check()
		case <-stop:
			return
		}
	}
}

func (ds *DebtScheduler) check() {
	today := generic.DayOf(ds.Now())

	recorded, err := RecordDebtNotices(context.Background(), ds.Store, ds.Engine, today)
	if err != nil {
		ds.log.Error("debt check failed", slog.Any("error", err))
		return
	}
	if recorded > 0 {
		ds.log.Info("debt notices recorded", slog.Int("count", recorded), slog.String("month", today.MonthOf().String()))
	}
}

// RecordDebtNotices computes the month of today for every calendar and saves
// a notice where debt is due. It returns the number of notices written.
func RecordDebtNotices(ctx context.Context, store timesheet.Backend, engine *timesheet.Engine, today generic.Day) (int, error) {
	calendars, err := store.ListCalendars(ctx)
	if err != nil {
		return 0, fmt.Errorf("list calendars: %w", err)
	}

	month := today.MonthOf()
	recorded := 0
	for _, c := range calendars {
		summary, err := engine.ComputeForCalendar(ctx, c.ID, month)
		if err != nil {
			return recorded, fmt.Errorf("calendar %s: %w", c.ID, err)
		}
		if summary.OSDebt90d <= 0 {
			continue
		}

		notice := timesheet.DebtNotice{
			CalendarID:  c.ID,
			Month:       month,
			DebtMinutes: summary.OSDebt90d,
			CheckedAt:   today,
		}
		if err := store.SaveDebtNotice(ctx, notice); err != nil {
			return recorded, fmt.Errorf("save notice for %s: %w", c.ID, err)
		}
		recorded++
	}
	return recorded, nil
}

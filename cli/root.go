/*
Package cli is the command-line front of the tracker.

PURPOSE:
  Same store, engine and export format as the HTTP server, driven from a
  terminal. Every command opens the SQLite database, runs, and closes it.

COMMANDS:
  calendar list|create|use|rename|delete   Manage calendars
  entry set|rm|list                        Log days
  summary                                  Month figures
  breakdown                                Per-day and per-month report
  duration START END                       Shift length calculator
  holidays                                 Public holidays of a year
  export / import                          JSON documents
  debt check|list                          Overtime debt notices
  scenario list|load                       Demo data

DATABASE:
  --db overrides DATABASE_PATH from config.yaml / environment.

SEE ALSO:
  - cmd/pontaj/main.go: Entry point
  - api/handlers.go: The HTTP equivalents
*/
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/pontaj/config"
	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/store/sqlite"
	"github.com/warp/pontaj/timesheet"
)

// app carries state shared by all commands of one invocation.
type app struct {
	dbPath string
	now    func() time.Time
	quiet  bool

	log    *slog.Logger
	store  *sqlite.Store
	engine *timesheet.Engine
}

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pontaj",
		Short: "Pontaj - work-hour tracker",
		Long: `pontaj records daily shifts in named calendars and reports the monthly
expected time (FTL), logged time (OL), surplus (OS), compensatory leave (CS)
and the overtime debt that falls due four months later.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides DATABASE_PATH)")

	root.AddCommand(
		newCalendarCmd(a),
		newEntryCmd(a),
		newSummaryCmd(a),
		newBreakdownCmd(a),
		newDurationCmd(a),
		newHolidaysCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newDebtCmd(a),
		newScenarioCmd(a),
	)
	return root
}

// open loads configuration and the database.
func (a *app) open(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dbPath == "" {
		a.dbPath = cfg.Database.Path
	}

	if a.quiet {
		a.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		a.log = config.NewLogger(cfg.Log)
	}

	store, err := sqlite.New(a.dbPath, sqlite.WithLogger(a.log), sqlite.WithClock(a.now))
	if err != nil {
		return fmt.Errorf("open %s: %w", a.dbPath, err)
	}
	a.store = store
	a.engine = timesheet.NewEngine(store, store)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *app) today() generic.Day {
	return generic.DayOf(a.now())
}

// calendar resolves --calendar, falling back to the active calendar.
func (a *app) calendar(ctx context.Context, id string) (timesheet.Calendar, error) {
	if id != "" {
		return a.store.GetCalendar(ctx, id)
	}
	return timesheet.EnsureActiveCalendar(ctx, a.store)
}

// monthFlags binds --year and --month (1-12) to a command.
type monthFlags struct {
	year  int
	month int
}

func (f *monthFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.year, "year", 0, "Year (default: current)")
	cmd.Flags().IntVar(&f.month, "month", 0, "Month 1-12 (default: current)")
}

func (f *monthFlags) resolve(today generic.Day) (generic.Month, error) {
	m := today.MonthOf()
	if f.year != 0 {
		m.Year = f.year
	}
	if f.month != 0 {
		if f.month < 1 || f.month > 12 {
			return generic.Month{}, fmt.Errorf("%w: month %d", generic.ErrInvalidMonth, f.month)
		}
		m.Month = time.Month(f.month)
	}
	return m, nil
}

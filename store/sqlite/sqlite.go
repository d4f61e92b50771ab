/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements timesheet.Repository and timesheet.NoticeStore on a single
  SQLite file so calendars survive restarts of the server and the CLI.

INTERFACES IMPLEMENTED:
  timesheet.EntryRepository: Day entries and their shifts
  timesheet.CalendarManager: Calendars and the active-calendar pointer
  timesheet.NoticeStore:     Debt notices written by the scheduler

KEY TABLES:
  calendars:    One row per calendar, listed in insertion order (rowid)
  entries:      One row per (calendar, day); the day is "YYYY-MM-DD"
  shifts:       Ordered shifts of an entry, cascade-deleted with it
  settings:     Key/value pairs, "active_calendar" holds the active id
  debt_notices: One row per (calendar, month)

DAY UNIQUENESS:
  The entries primary key is (calendar_id, date). An upsert deletes the
  day (its shifts go with it) and re-inserts it inside one transaction, so
  readers never see a day with half of its shifts.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single open connection, which
  also keeps ":memory:" databases shared across calls.

MIGRATION:
  Versioned migrations are embedded (migrations/*.sql) and applied by
  golang-migrate on New().

USAGE:
  store, err := sqlite.New("./data/pontaj.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := timesheet.NewEngine(store, store)

SEE ALSO:
  - timesheet/store.go: Interface definitions
  - timesheet/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

const activeCalendarKey = "active_calendar"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	log *slog.Logger
	now func() time.Time
}

var (
	_ timesheet.Repository = (*Store)(nil)
	_ timesheet.Backend    = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for query-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the clock used to stamp new calendars.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(store)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	store.log.Debug("sqlite store opened", slog.String("path", dbPath))
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a database transaction.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// =============================================================================
// CALENDARS (timesheet.CalendarManager interface)
// =============================================================================

// ListCalendars returns calendars in insertion order, without entries.
func (s *Store) ListCalendars(ctx context.Context) ([]timesheet.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := squirrel.Select("id", "name", "created_at").
		From("calendars").
		OrderBy("rowid").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendars: %w", err)
	}
	defer rows.Close()

	var calendars []timesheet.Calendar
	for rows.Next() {
		var c timesheet.Calendar
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		calendars = append(calendars, c)
	}
	return calendars, rows.Err()
}

// GetCalendar returns a calendar with its entries.
func (s *Store) GetCalendar(ctx context.Context, id string) (timesheet.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := squirrel.Select("id", "name", "created_at").
		From("calendars").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return timesheet.Calendar{}, err
	}

	var c timesheet.Calendar
	var createdAt string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return timesheet.Calendar{}, generic.ErrCalendarNotFound
	}
	if err != nil {
		return timesheet.Calendar{}, fmt.Errorf("failed to get calendar: %w", err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	c.Entries, err = queryEntries(ctx, s.db, squirrel.Eq{"e.calendar_id": id})
	if err != nil {
		return timesheet.Calendar{}, err
	}
	return c, nil
}

// GetActiveCalendarID returns "" when no calendar is active.
func (s *Store) GetActiveCalendarID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getActive(ctx, s.db)
}

// SetActiveCalendar points the active-calendar setting at an existing calendar.
func (s *Store) SetActiveCalendar(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireCalendar(ctx, tx, id); err != nil {
			return err
		}
		return setActive(ctx, tx, id)
	})
}

// CreateCalendar stores a new empty calendar and makes it active.
func (s *Store) CreateCalendar(ctx context.Context, name string) (timesheet.Calendar, error) {
	name, err := timesheet.CleanName(name)
	if err != nil {
		return timesheet.Calendar{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := timesheet.Calendar{
		ID:        timesheet.NewCalendarID(),
		Name:      name,
		CreatedAt: s.now().UTC(),
		Entries:   []timesheet.DayEntry{},
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := squirrel.Insert("calendars").
			Columns("id", "name", "created_at").
			Values(c.ID, c.Name, c.CreatedAt.Format(time.RFC3339Nano)).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert calendar: %w", err)
		}
		return setActive(ctx, tx, c.ID)
	})
	if err != nil {
		return timesheet.Calendar{}, err
	}

	s.log.Debug("calendar created", slog.String("calendar_id", c.ID), slog.String("name", c.Name))
	return c, nil
}

// PutCalendar stores a complete calendar, replacing one with the same id and
// all of its entries. Used by imports.
func (s *Store) PutCalendar(ctx context.Context, cal timesheet.Calendar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := squirrel.Insert("calendars").
			Columns("id", "name", "created_at").
			Values(cal.ID, cal.Name, cal.CreatedAt.UTC().Format(time.RFC3339Nano)).
			Suffix("ON CONFLICT(id) DO UPDATE SET name = excluded.name, created_at = excluded.created_at").
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to put calendar: %w", err)
		}

		query, args, err = squirrel.Delete("entries").Where(squirrel.Eq{"calendar_id": cal.ID}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to clear entries: %w", err)
		}

		for _, e := range cal.Entries {
			if err := writeEntry(ctx, tx, cal.ID, e.Normalized()); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteCalendar removes a calendar with its entries and notices. If it was
// active, the first remaining calendar becomes active.
func (s *Store) DeleteCalendar(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		query, args, err := squirrel.Delete("calendars").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to delete calendar: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return generic.ErrCalendarNotFound
		}

		active, err := getActive(ctx, tx)
		if err != nil || active != id {
			return err
		}

		var next string
		query, args, err = squirrel.Select("id").From("calendars").OrderBy("rowid").Limit(1).ToSql()
		if err != nil {
			return err
		}
		err = tx.QueryRowContext(ctx, query, args...).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			return clearActive(ctx, tx)
		}
		if err != nil {
			return err
		}
		return setActive(ctx, tx, next)
	})
}

// RenameCalendar changes the name of a calendar.
func (s *Store) RenameCalendar(ctx context.Context, id, name string) error {
	name, err := timesheet.CleanName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := squirrel.Update("calendars").
		Set("name", name).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to rename calendar: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrCalendarNotFound
	}
	return nil
}

// =============================================================================
// ENTRIES (timesheet.EntryRepository interface)
// =============================================================================

// ListEntries returns every entry of the calendar ordered by date.
func (s *Store) ListEntries(ctx context.Context, calendarID string) ([]timesheet.DayEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := requireCalendar(ctx, s.db, calendarID); err != nil {
		return nil, err
	}
	return queryEntries(ctx, s.db, squirrel.Eq{"e.calendar_id": calendarID})
}

// GetEntry returns the entry of a day or ErrEntryNotFound.
func (s *Store) GetEntry(ctx context.Context, calendarID string, day generic.Day) (timesheet.DayEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := requireCalendar(ctx, s.db, calendarID); err != nil {
		return timesheet.DayEntry{}, err
	}
	entries, err := queryEntries(ctx, s.db, squirrel.Eq{"e.calendar_id": calendarID, "e.date": day.String()})
	if err != nil {
		return timesheet.DayEntry{}, err
	}
	if len(entries) == 0 {
		return timesheet.DayEntry{}, generic.ErrEntryNotFound
	}
	return entries[0], nil
}

// UpsertEntry replaces the entry of the same day, else adds it.
func (s *Store) UpsertEntry(ctx context.Context, calendarID string, entry timesheet.DayEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireCalendar(ctx, tx, calendarID); err != nil {
			return err
		}
		return writeEntry(ctx, tx, calendarID, entry.Normalized())
	})
}

// RemoveEntry deletes the entry of a day. Removing a missing day is not an error.
func (s *Store) RemoveEntry(ctx context.Context, calendarID string, day generic.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := requireCalendar(ctx, s.db, calendarID); err != nil {
		return err
	}
	query, args, err := squirrel.Delete("entries").
		Where(squirrel.Eq{"calendar_id": calendarID, "date": day.String()}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to remove entry: %w", err)
	}
	return nil
}

// writeEntry replaces the day of entry inside q.
func writeEntry(ctx context.Context, q querier, calendarID string, entry timesheet.DayEntry) error {
	date := generic.DayOf(entry.Date.Time).String()

	query, args, err := squirrel.Delete("entries").
		Where(squirrel.Eq{"calendar_id": calendarID, "date": date}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to replace entry: %w", err)
	}

	query, args, err = squirrel.Insert("entries").
		Columns("calendar_id", "date").
		Values(calendarID, date).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if len(entry.Shifts) == 0 {
		return nil
	}
	insert := squirrel.Insert("shifts").
		Columns("calendar_id", "date", "position", "shift_type", "start_time", "end_time", "duration")
	for i, sh := range entry.Shifts {
		insert = insert.Values(calendarID, date, i, sh.Type.String(), sh.StartTime, sh.EndTime, sh.Duration)
	}
	query, args, err = insert.ToSql()
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert shifts: %w", err)
	}
	return nil
}

// queryEntries loads entries with their shifts, ordered by date and position.
func queryEntries(ctx context.Context, q querier, where squirrel.Eq) ([]timesheet.DayEntry, error) {
	query, args, err := squirrel.Select(
		"e.date", "s.position", "s.shift_type", "s.start_time", "s.end_time", "s.duration",
	).
		From("entries e").
		LeftJoin("shifts s ON s.calendar_id = e.calendar_id AND s.date = e.date").
		Where(where).
		OrderBy("e.date", "s.position").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []timesheet.DayEntry{}
	for rows.Next() {
		var (
			date               string
			position, duration sql.NullInt64
			shiftType          sql.NullString
			startTime, endTime sql.NullString
		)
		if err := rows.Scan(&date, &position, &shiftType, &startTime, &endTime, &duration); err != nil {
			return nil, err
		}

		day, err := generic.ParseDay(date)
		if err != nil {
			return nil, fmt.Errorf("stored entry date %q: %w", date, err)
		}
		if n := len(entries); n == 0 || !entries[n-1].Date.Equal(day) {
			entries = append(entries, timesheet.DayEntry{Date: day, Shifts: []timesheet.Shift{}})
		}
		if !position.Valid {
			continue
		}

		t, err := timesheet.ParseShiftType(shiftType.String)
		if err != nil {
			return nil, fmt.Errorf("stored shift on %s: %w", date, err)
		}
		last := &entries[len(entries)-1]
		last.Shifts = append(last.Shifts, timesheet.Shift{
			Type:      t,
			StartTime: startTime.String,
			EndTime:   endTime.String,
			Duration:  int(duration.Int64),
		})
	}
	return entries, rows.Err()
}

// =============================================================================
// DEBT NOTICES (timesheet.NoticeStore interface)
// =============================================================================

// SaveDebtNotice stores a notice, replacing the one of the same calendar and month.
func (s *Store) SaveDebtNotice(ctx context.Context, n timesheet.DebtNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireCalendar(ctx, tx, n.CalendarID); err != nil {
			return err
		}
		query, args, err := squirrel.Insert("debt_notices").
			Columns("calendar_id", "month", "debt_minutes", "checked_at").
			Values(n.CalendarID, n.Month.String(), n.DebtMinutes, n.CheckedAt.String()).
			Suffix("ON CONFLICT(calendar_id, month) DO UPDATE SET debt_minutes = excluded.debt_minutes, checked_at = excluded.checked_at").
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to save debt notice: %w", err)
		}
		return nil
	})
}

// ListDebtNotices returns all notices ordered by month, then calendar.
func (s *Store) ListDebtNotices(ctx context.Context) ([]timesheet.DebtNotice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := squirrel.Select("calendar_id", "month", "debt_minutes", "checked_at").
		From("debt_notices").
		OrderBy("month", "calendar_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query debt notices: %w", err)
	}
	defer rows.Close()

	notices := []timesheet.DebtNotice{}
	for rows.Next() {
		var n timesheet.DebtNotice
		var month, checkedAt string
		if err := rows.Scan(&n.CalendarID, &month, &n.DebtMinutes, &checkedAt); err != nil {
			return nil, err
		}
		if n.Month, err = generic.ParseMonth(month); err != nil {
			return nil, err
		}
		if n.CheckedAt, err = generic.ParseDay(checkedAt); err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"debt_notices", "shifts", "entries", "settings", "calendars"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func requireCalendar(ctx context.Context, q querier, id string) error {
	query, args, err := squirrel.Select("1").From("calendars").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	var one int
	err = q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.ErrCalendarNotFound
	}
	return err
}

func getActive(ctx context.Context, q querier) (string, error) {
	query, args, err := squirrel.Select("value").
		From("settings").
		Where(squirrel.Eq{"key": activeCalendarKey}).
		ToSql()
	if err != nil {
		return "", err
	}
	var id string
	err = q.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active calendar: %w", err)
	}
	return id, nil
}

func setActive(ctx context.Context, q querier, id string) error {
	query, args, err := squirrel.Insert("settings").
		Columns("key", "value").
		Values(activeCalendarKey, id).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, query, args...)
	return err
}

func clearActive(ctx context.Context, q querier) error {
	query, args, err := squirrel.Delete("settings").Where(squirrel.Eq{"key": activeCalendarKey}).ToSql()
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, query, args...)
	return err
}

/*
store.go - Persistence interfaces for calendars and day entries

PURPOSE:
  Defines the boundary between accounting and storage. The engine only
  reads through EntryRepository; calendar management and entry mutation
  are driven by the API and CLI.

KEY INTERFACES:
  EntryRepository: Day entries of one calendar (list, get, upsert, remove)
  CalendarManager: Calendars and the active-calendar pointer
  Repository:      Both, as implemented by every store
  Backend:         Repository plus notices, imports and Reset

SNAPSHOT CONTRACT:
  ListEntries returns a self-consistent copy. An entry is never observed
  half-written and later mutations do not alter a returned slice.

DAY MATCHING:
  Entries are keyed by calendar day. Stores drop time-of-day and zone
  before comparing, so an upsert on a day that already has an entry
  replaces it.

IMPLEMENTATIONS:
  - timesheet/store/memory.go: In-memory for tests and demos
  - store/sqlite/sqlite.go:    SQLite
*/
package timesheet

import (
	"context"

	"github.com/warp/pontaj/generic"
)

// EntryRepository supplies and persists the day entries of a calendar.
type EntryRepository interface {
	// ListEntries returns every entry of the calendar ordered by date.
	ListEntries(ctx context.Context, calendarID string) ([]DayEntry, error)

	// GetEntry returns the entry of a day or ErrEntryNotFound.
	GetEntry(ctx context.Context, calendarID string, day generic.Day) (DayEntry, error)

	// UpsertEntry replaces the entry of the same day, else adds it.
	UpsertEntry(ctx context.Context, calendarID string, entry DayEntry) error

	// RemoveEntry deletes the entry of a day. Removing a missing day is not an error.
	RemoveEntry(ctx context.Context, calendarID string, day generic.Day) error
}

// CalendarManager owns calendars and the active-calendar state.
type CalendarManager interface {
	// ListCalendars returns calendars in creation order, without entries.
	ListCalendars(ctx context.Context) ([]Calendar, error)

	// GetCalendar returns a calendar with its entries.
	GetCalendar(ctx context.Context, id string) (Calendar, error)

	// GetActiveCalendarID returns "" when no calendar is active.
	GetActiveCalendarID(ctx context.Context) (string, error)

	SetActiveCalendar(ctx context.Context, id string) error

	// CreateCalendar stores a new empty calendar and makes it active.
	CreateCalendar(ctx context.Context, name string) (Calendar, error)

	// DeleteCalendar removes a calendar and its entries. If it was active the
	// first remaining calendar becomes active, or the active state is cleared.
	DeleteCalendar(ctx context.Context, id string) error

	RenameCalendar(ctx context.Context, id, name string) error
}

// Repository is the full storage surface.
type Repository interface {
	EntryRepository
	CalendarManager
}

// DebtNotice records that a calendar had overtime debt due in a month.
type DebtNotice struct {
	CalendarID  string
	Month       generic.Month
	DebtMinutes int
	CheckedAt   generic.Day
}

// NoticeStore persists debt notices, one per calendar and month.
type NoticeStore interface {
	SaveDebtNotice(ctx context.Context, n DebtNotice) error
	ListDebtNotices(ctx context.Context) ([]DebtNotice, error)
}

// CalendarWriter stores complete calendars with their entries, replacing a
// calendar of the same id. Used by imports.
type CalendarWriter interface {
	PutCalendar(ctx context.Context, cal Calendar) error
}

// Backend is everything the server and CLI need from a store.
type Backend interface {
	Repository
	NoticeStore
	CalendarWriter

	// Reset clears all data.
	Reset(ctx context.Context) error
}

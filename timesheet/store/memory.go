// Package store provides in-memory Repository implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	order     []string
	calendars map[string]*timesheet.Calendar
	active    string
	notices   map[noticeKey]timesheet.DebtNotice

	// Now stamps CreatedAt on new calendars.
	Now func() time.Time
}

type noticeKey struct {
	CalendarID string
	Month      generic.Month
}

var (
	_ timesheet.Repository = (*Memory)(nil)
	_ timesheet.Backend    = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		calendars: make(map[string]*timesheet.Calendar),
		notices:   make(map[noticeKey]timesheet.DebtNotice),
		Now:       time.Now,
	}
}

// =============================================================================
// CALENDARS
// =============================================================================

func (m *Memory) ListCalendars(_ context.Context) ([]timesheet.Calendar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]timesheet.Calendar, 0, len(m.order))
	for _, id := range m.order {
		c := m.calendars[id]
		result = append(result, timesheet.Calendar{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt})
	}
	return result, nil
}

func (m *Memory) GetCalendar(_ context.Context, id string) (timesheet.Calendar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.calendars[id]
	if !ok {
		return timesheet.Calendar{}, generic.ErrCalendarNotFound
	}
	out := *c
	out.Entries = copyEntries(c.Entries)
	return out, nil
}

func (m *Memory) GetActiveCalendarID(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active, nil
}

func (m *Memory) SetActiveCalendar(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.calendars[id]; !ok {
		return generic.ErrCalendarNotFound
	}
	m.active = id
	return nil
}

func (m *Memory) CreateCalendar(_ context.Context, name string) (timesheet.Calendar, error) {
	name, err := timesheet.CleanName(name)
	if err != nil {
		return timesheet.Calendar{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := &timesheet.Calendar{
		ID:        timesheet.NewCalendarID(),
		Name:      name,
		CreatedAt: m.Now().UTC(),
		Entries:   []timesheet.DayEntry{},
	}
	m.calendars[c.ID] = c
	m.order = append(m.order, c.ID)
	m.active = c.ID
	return *c, nil
}

// PutCalendar stores a complete calendar, replacing one with the same id.
// Used by imports.
func (m *Memory) PutCalendar(_ context.Context, cal timesheet.Calendar) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := cal
	c.Entries = nil
	for _, e := range cal.Entries {
		c.Entries = upsertLocked(c.Entries, e.Normalized())
	}
	if _, exists := m.calendars[c.ID]; !exists {
		m.order = append(m.order, c.ID)
	}
	m.calendars[c.ID] = &c
	return nil
}

func (m *Memory) DeleteCalendar(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.calendars[id]; !ok {
		return generic.ErrCalendarNotFound
	}
	delete(m.calendars, id)
	for i, other := range m.order {
		if other == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	for k := range m.notices {
		if k.CalendarID == id {
			delete(m.notices, k)
		}
	}

	if m.active == id {
		m.active = ""
		if len(m.order) > 0 {
			m.active = m.order[0]
		}
	}
	return nil
}

func (m *Memory) RenameCalendar(_ context.Context, id, name string) error {
	name, err := timesheet.CleanName(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.calendars[id]
	if !ok {
		return generic.ErrCalendarNotFound
	}
	c.Name = name
	return nil
}

// =============================================================================
// ENTRIES
// =============================================================================

func (m *Memory) ListEntries(_ context.Context, calendarID string) ([]timesheet.DayEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.calendars[calendarID]
	if !ok {
		return nil, generic.ErrCalendarNotFound
	}
	return copyEntries(c.Entries), nil
}

func (m *Memory) GetEntry(_ context.Context, calendarID string, day generic.Day) (timesheet.DayEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.calendars[calendarID]
	if !ok {
		return timesheet.DayEntry{}, generic.ErrCalendarNotFound
	}
	for _, e := range c.Entries {
		if e.Date.Equal(day) {
			return copyEntry(e), nil
		}
	}
	return timesheet.DayEntry{}, generic.ErrEntryNotFound
}

func (m *Memory) UpsertEntry(_ context.Context, calendarID string, entry timesheet.DayEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.calendars[calendarID]
	if !ok {
		return generic.ErrCalendarNotFound
	}
	entry.Date = generic.DayOf(entry.Date.Time)
	c.Entries = upsertLocked(c.Entries, entry.Normalized())
	return nil
}

func (m *Memory) RemoveEntry(_ context.Context, calendarID string, day generic.Day) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.calendars[calendarID]
	if !ok {
		return generic.ErrCalendarNotFound
	}
	kept := c.Entries[:0]
	for _, e := range c.Entries {
		if !e.Date.Equal(day) {
			kept = append(kept, e)
		}
	}
	c.Entries = kept
	return nil
}

// upsertLocked keeps entries sorted by date and unique per day.
func upsertLocked(entries []timesheet.DayEntry, entry timesheet.DayEntry) []timesheet.DayEntry {
	i := sort.Search(len(entries), func(i int) bool {
		return !entries[i].Date.Before(entry.Date)
	})
	if i < len(entries) && entries[i].Date.Equal(entry.Date) {
		entries[i] = entry
		return entries
	}
	entries = append(entries, timesheet.DayEntry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = entry
	return entries
}

// =============================================================================
// DEBT NOTICES
// =============================================================================

func (m *Memory) SaveDebtNotice(_ context.Context, n timesheet.DebtNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.calendars[n.CalendarID]; !ok {
		return generic.ErrCalendarNotFound
	}
	m.notices[noticeKey{CalendarID: n.CalendarID, Month: n.Month}] = n
	return nil
}

func (m *Memory) ListDebtNotices(_ context.Context) ([]timesheet.DebtNotice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]timesheet.DebtNotice, 0, len(m.notices))
	for _, n := range m.notices {
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Month != result[j].Month {
			return result[i].Month.Before(result[j].Month)
		}
		return result[i].CalendarID < result[j].CalendarID
	})
	return result, nil
}

// Reset clears all data (for demos).
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = nil
	m.calendars = make(map[string]*timesheet.Calendar)
	m.active = ""
	m.notices = make(map[noticeKey]timesheet.DebtNotice)
	return nil
}

// =============================================================================
// SNAPSHOT HELPERS
// =============================================================================

func copyEntries(entries []timesheet.DayEntry) []timesheet.DayEntry {
	result := make([]timesheet.DayEntry, len(entries))
	for i, e := range entries {
		result[i] = copyEntry(e)
	}
	return result
}

func copyEntry(e timesheet.DayEntry) timesheet.DayEntry {
	return timesheet.DayEntry{Date: e.Date, Shifts: append([]timesheet.Shift{}, e.Shifts...)}
}

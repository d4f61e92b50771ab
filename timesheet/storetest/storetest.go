// Package storetest holds behavior tests shared by every timesheet.Backend.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

// Run exercises a Backend. newBackend must return an empty store.
func Run(t *testing.T, newBackend func(t *testing.T) timesheet.Backend) {
	tests := []struct {
		name string
		fn   func(t *testing.T, b timesheet.Backend)
	}{
		{"CreateCalendarBecomesActive", testCreateCalendarBecomesActive},
		{"CreateCalendarRejectsBlankName", testCreateCalendarRejectsBlankName},
		{"ListCalendarsInCreationOrder", testListCalendarsInCreationOrder},
		{"DeleteActiveReassignsFirst", testDeleteActiveReassignsFirst},
		{"DeleteLastClearsActive", testDeleteLastClearsActive},
		{"DeleteUnknownCalendar", testDeleteUnknownCalendar},
		{"RenameCalendar", testRenameCalendar},
		{"SetActiveUnknownCalendar", testSetActiveUnknownCalendar},
		{"UpsertReplacesSameDay", testUpsertReplacesSameDay},
		{"EntriesSortedAndNormalized", testEntriesSortedAndNormalized},
		{"EmptyEntryIsKept", testEmptyEntryIsKept},
		{"GetAndRemoveEntry", testGetAndRemoveEntry},
		{"UnknownCalendarEntries", testUnknownCalendarEntries},
		{"ListEntriesIsSnapshot", testListEntriesIsSnapshot},
		{"PutCalendarReplacesEntries", testPutCalendarReplacesEntries},
		{"DebtNotices", testDebtNotices},
		{"Reset", testReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newBackend(t))
		})
	}
}

func day(y int, m time.Month, d int) generic.Day { return generic.NewDay(y, m, d) }

func testCreateCalendarBecomesActive(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()

	// WHEN: Two calendars are created
	first, err := b.CreateCalendar(ctx, "  Work  ")
	require.NoError(t, err)
	second, err := b.CreateCalendar(ctx, "Side")
	require.NoError(t, err)

	// THEN: The name is trimmed and the newest one is active
	assert.Equal(t, "Work", first.Name)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Empty(t, first.Entries)

	active, err := b.GetActiveCalendarID(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active)
}

func testCreateCalendarRejectsBlankName(t *testing.T, b timesheet.Backend) {
	_, err := b.CreateCalendar(context.Background(), "   ")
	assert.ErrorIs(t, err, generic.ErrEmptyName)
}

func testListCalendarsInCreationOrder(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		_, err := b.CreateCalendar(ctx, name)
		require.NoError(t, err)
	}

	cals, err := b.ListCalendars(ctx)
	require.NoError(t, err)
	require.Len(t, cals, 3)
	assert.Equal(t, "A", cals[0].Name)
	assert.Equal(t, "B", cals[1].Name)
	assert.Equal(t, "C", cals[2].Name)
}

func testDeleteActiveReassignsFirst(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()

	// GIVEN: A, B, C with C active
	a, err := b.CreateCalendar(ctx, "A")
	require.NoError(t, err)
	_, err = b.CreateCalendar(ctx, "B")
	require.NoError(t, err)
	c, err := b.CreateCalendar(ctx, "C")
	require.NoError(t, err)

	// WHEN: The active calendar is deleted
	require.NoError(t, b.DeleteCalendar(ctx, c.ID))

	// THEN: The first remaining calendar becomes active
	active, err := b.GetActiveCalendarID(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID, active)

	_, err = b.GetCalendar(ctx, c.ID)
	assert.ErrorIs(t, err, generic.ErrCalendarNotFound)
}

func testDeleteLastClearsActive(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "Only")
	require.NoError(t, err)
	require.NoError(t, b.UpsertEntry(ctx, c.ID, timesheet.DayEntry{
		Date:   day(2025, time.March, 3),
		Shifts: []timesheet.Shift{timesheet.NewShift(timesheet.ShiftDay, "08:00", "16:00")},
	}))

	require.NoError(t, b.DeleteCalendar(ctx, c.ID))

	active, err := b.GetActiveCalendarID(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	cals, err := b.ListCalendars(ctx)
	require.NoError(t, err)
	assert.Empty(t, cals)
}

func testDeleteUnknownCalendar(t *testing.T, b timesheet.Backend) {
	err := b.DeleteCalendar(context.Background(), "calendar_missing")
	assert.ErrorIs(t, err, generic.ErrCalendarNotFound)
}

func testRenameCalendar(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "Old")
	require.NoError(t, err)

	require.NoError(t, b.RenameCalendar(ctx, c.ID, "New"))
	got, err := b.GetCalendar(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	assert.ErrorIs(t, b.RenameCalendar(ctx, c.ID, ""), generic.ErrEmptyName)
	assert.ErrorIs(t, b.RenameCalendar(ctx, "calendar_missing", "X"), generic.ErrCalendarNotFound)
}

func testSetActiveUnknownCalendar(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "A")
	require.NoError(t, err)

	assert.ErrorIs(t, b.SetActiveCalendar(ctx, "calendar_missing"), generic.ErrCalendarNotFound)

	active, err := b.GetActiveCalendarID(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.ID, active)
}

func testUpsertReplacesSameDay(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "A")
	require.NoError(t, err)

	// GIVEN: An entry on March 3rd
	require.NoError(t, b.UpsertEntry(ctx, c.ID, timesheet.DayEntry{
		Date:   day(2025, time.March, 3),
		Shifts: []timesheet.Shift{timesheet.NewShift(timesheet.ShiftDay, "06:45", "19:15")},
	}))

	// WHEN: The same day is saved again from a later time of day
	later := generic.Day{Time: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, b.UpsertEntry(ctx, c.ID, timesheet.DayEntry{
		Date: later,
		Shifts: []timesheet.Shift{
			timesheet.NewShift(timesheet.ShiftCS, "08:00", "12:00"),
			timesheet.NewShift(timesheet.ShiftOther, "13:00", "15:00"),
		},
	}))

	// THEN: There is still one entry and it holds the new shifts in order
	entries, err := b.ListEntries(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Shifts, 2)
	assert.Equal(t, timesheet.ShiftCS, entries[0].Shifts[0].Type)
	assert.Equal(t, 240, entries[0].Shifts[0].Duration)
	assert.Equal(t, timesheet.ShiftOther, entries[0].Shifts[1].Type)
	assert.Equal(t, 120, entries[0].Shifts[1].Duration)
}

func testEntriesSortedAndNormalized(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "A")
	require.NoError(t, err)

	for _, d := range []int{20, 5, 12} {
		require.NoError(t, b.UpsertEntry(ctx, c.ID, timesheet.DayEntry{
			Date: day(2025, time.April, d),
			// Stored duration is stale on purpose.
			Shifts: []timesheet.Shift{{Type: timesheet.ShiftNight, StartTime: "18:45", EndTime: "07:15", Duration: 1}},
		}))
	}

	entries, err := b.ListEntries(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2025-04-05", entries[0].Date.String())
	assert.Equal(t, "2025-04-12", entries[1].Date.String())
	assert.Equal(t, "2025-04-20", entries[2].Date.String())
	for _, e := range entries {
		assert.Equal(t, 750, e.Shifts[0].Duration)
	}
}

func testEmptyEntryIsKept(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "A")
	require.NoError(t, err)

	require.NoError(t, b.UpsertEntry(ctx, c.ID, timesheet.DayEntry{Date: day(2025, time.May, 6)}))

	got, err := b.GetEntry(ctx, c.ID, day(2025, time.May, 6))
	require.NoError(t, err)
	assert.Empty(t, got.Shifts)
}

func testGetAndRemoveEntry(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "A")
	require.NoError(t, err)
	d := day(2025, time.June, 2)

	_, err = b.GetEntry(ctx, c.ID, d)
	assert.ErrorIs(t, err, generic.ErrEntryNotFound)

	require.NoError(t, b.UpsertEntry(ctx, c.ID, timesheet.DayEntry{
		Date:   d,
		Shifts: []timesheet.Shift{timesheet.NewShift(timesheet.ShiftDay, "08:00", "16:00")},
	}))
	got, err := b.GetEntry(ctx, c.ID, d)
	require.NoError(t, err)
	assert.Equal(t, 480, got.TotalMinutes().Round())

	require.NoError(t, b.RemoveEntry(ctx, c.ID, d))
	_, err = b.GetEntry(ctx, c.ID, d)
	assert.ErrorIs(t, err, generic.ErrEntryNotFound)

	// Removing a missing day is a no-op.
	assert.NoError(t, b.RemoveEntry(ctx, c.ID, d))
}

func testUnknownCalendarEntries(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	_, err := b.ListEntries(ctx, "calendar_missing")
	assert.ErrorIs(t, err, generic.ErrCalendarNotFound)

	err = b.UpsertEntry(ctx, "calendar_missing", timesheet.DayEntry{Date: day(2025, time.June, 2)})
	assert.ErrorIs(t, err, generic.ErrCalendarNotFound)
}

func testListEntriesIsSnapshot(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "A")
	require.NoError(t, err)
	require.NoError(t, b.UpsertEntry(ctx, c.ID, timesheet.DayEntry{
		Date:   day(2025, time.July, 1),
		Shifts: []timesheet.Shift{timesheet.NewShift(timesheet.ShiftDay, "08:00", "16:00")},
	}))

	entries, err := b.ListEntries(ctx, c.ID)
	require.NoError(t, err)
	entries[0].Shifts[0].Duration = 9999

	again, err := b.ListEntries(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 480, again[0].Shifts[0].Duration)
}

func testPutCalendarReplacesEntries(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "A")
	require.NoError(t, err)
	require.NoError(t, b.UpsertEntry(ctx, c.ID, timesheet.DayEntry{Date: day(2025, time.July, 1)}))

	c.Name = "Imported"
	c.Entries = []timesheet.DayEntry{{
		Date:   day(2025, time.August, 4),
		Shifts: []timesheet.Shift{timesheet.NewShift(timesheet.ShiftDay, "06:45", "19:15")},
	}}
	require.NoError(t, b.PutCalendar(ctx, c))

	got, err := b.GetCalendar(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Imported", got.Name)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "2025-08-04", got.Entries[0].Date.String())

	cals, err := b.ListCalendars(ctx)
	require.NoError(t, err)
	assert.Len(t, cals, 1)
}

func testDebtNotices(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "A")
	require.NoError(t, err)
	m := generic.Month{Year: 2025, Month: time.May}

	// WHEN: A notice is saved twice for the same month
	require.NoError(t, b.SaveDebtNotice(ctx, timesheet.DebtNotice{CalendarID: c.ID, Month: m, DebtMinutes: 300, CheckedAt: day(2025, time.May, 1)}))
	require.NoError(t, b.SaveDebtNotice(ctx, timesheet.DebtNotice{CalendarID: c.ID, Month: m, DebtMinutes: 600, CheckedAt: day(2025, time.May, 2)}))

	// THEN: Only the latest is kept
	notices, err := b.ListDebtNotices(ctx)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, 600, notices[0].DebtMinutes)
	assert.Equal(t, m, notices[0].Month)
	assert.Equal(t, "2025-05-02", notices[0].CheckedAt.String())

	err = b.SaveDebtNotice(ctx, timesheet.DebtNotice{CalendarID: "calendar_missing", Month: m})
	assert.ErrorIs(t, err, generic.ErrCalendarNotFound)

	// Deleting the calendar drops its notices.
	require.NoError(t, b.DeleteCalendar(ctx, c.ID))
	notices, err = b.ListDebtNotices(ctx)
	require.NoError(t, err)
	assert.Empty(t, notices)
}

func testReset(t *testing.T, b timesheet.Backend) {
	ctx := context.Background()
	c, err := b.CreateCalendar(ctx, "A")
	require.NoError(t, err)
	require.NoError(t, b.UpsertEntry(ctx, c.ID, timesheet.DayEntry{Date: day(2025, time.July, 1)}))

	require.NoError(t, b.Reset(ctx))

	cals, err := b.ListCalendars(ctx)
	require.NoError(t, err)
	assert.Empty(t, cals)
	active, err := b.GetActiveCalendarID(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

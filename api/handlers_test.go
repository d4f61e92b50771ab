/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Calendar management (create, list, rename, activate, delete)
- Entry validation and storage
- Summaries, breakdowns and calculators
- Export / import round trip
*/
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pontaj/config"
	memstore "github.com/warp/pontaj/timesheet/store"
)

// Thursday, 15 May 2025.
var testNow = time.Date(2025, time.May, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func setupTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()

	st := memstore.NewMemory()
	st.Now = fixedClock

	h := NewHandler(st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.Now = fixedClock

	return h, NewRouter(h, config.CORSConfig{AllowedOrigins: "*", MaxAge: 300})
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createCalendar(t *testing.T, router http.Handler, name string) CalendarDTO {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/calendars", CreateCalendarRequest{Name: name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[CalendarDTO](t, rec)
}

// =============================================================================
// CALENDARS
// =============================================================================

func TestCalendars_Lifecycle(t *testing.T) {
	_, router := setupTestServer(t)

	// GIVEN: Two calendars
	work := createCalendar(t, router, "Work")
	side := createCalendar(t, router, "  Side job  ")
	assert.True(t, side.Active)
	assert.Equal(t, "Side job", side.Name)

	// WHEN: Listing
	list := decode[[]CalendarDTO](t, do(t, router, http.MethodGet, "/api/calendars", nil))

	// THEN: Creation order, the newest is active
	require.Len(t, list, 2)
	assert.Equal(t, work.ID, list[0].ID)
	assert.False(t, list[0].Active)
	assert.True(t, list[1].Active)

	// WHEN: Switching back and renaming
	rec := do(t, router, http.MethodPut, "/api/calendars/active", SetActiveRequest{ID: work.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPatch, "/api/calendars/"+work.ID, RenameCalendarRequest{Name: "Hospital"})
	require.Equal(t, http.StatusOK, rec.Code)

	active := decode[CalendarDetailDTO](t, do(t, router, http.MethodGet, "/api/calendars/active", nil))
	assert.Equal(t, work.ID, active.ID)
	assert.Equal(t, "Hospital", active.Name)
	assert.Empty(t, active.Entries)

	// WHEN: Deleting the active calendar
	rec = do(t, router, http.MethodDelete, "/api/calendars/"+work.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// THEN: The remaining calendar becomes active
	list = decode[[]CalendarDTO](t, do(t, router, http.MethodGet, "/api/calendars", nil))
	require.Len(t, list, 1)
	assert.Equal(t, side.ID, list[0].ID)
	assert.True(t, list[0].Active)
}

func TestCalendars_Errors(t *testing.T) {
	_, router := setupTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"blank name", http.MethodPost, "/api/calendars", CreateCalendarRequest{Name: "   "}, http.StatusBadRequest, "invalid_input"},
		{"bad body", http.MethodPost, "/api/calendars", "{", http.StatusBadRequest, ""},
		{"activate unknown", http.MethodPut, "/api/calendars/active", SetActiveRequest{ID: "nope"}, http.StatusNotFound, "not_found"},
		{"rename unknown", http.MethodPatch, "/api/calendars/nope", RenameCalendarRequest{Name: "x"}, http.StatusNotFound, "not_found"},
		{"delete unknown", http.MethodDelete, "/api/calendars/nope", nil, http.StatusNotFound, "not_found"},
		{"entries of unknown", http.MethodGet, "/api/calendars/nope/entries", nil, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			resp := decode[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestGetActiveCalendar_CreatesPersonal(t *testing.T) {
	// GIVEN: An empty store
	_, router := setupTestServer(t)

	// WHEN: Asking for the active calendar
	rec := do(t, router, http.MethodGet, "/api/calendars/active", nil)

	// THEN: A Personal calendar is created and active
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[CalendarDetailDTO](t, rec)
	assert.Equal(t, "Personal", cal.Name)
	assert.True(t, cal.Active)

	list := decode[[]CalendarDTO](t, do(t, router, http.MethodGet, "/api/calendars", nil))
	assert.Len(t, list, 1)
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestPutEntry_NightShiftCrossesMidnight(t *testing.T) {
	_, router := setupTestServer(t)
	cal := createCalendar(t, router, "Work")

	// WHEN: Logging a night shift
	rec := do(t, router, http.MethodPut, "/api/calendars/"+cal.ID+"/entries/2025-05-05", PutEntryRequest{
		Shifts: []ShiftInput{{Type: "night", StartTime: "18:45", EndTime: "07:15"}},
	})

	// THEN: The duration wraps past midnight
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode[EntryDTO](t, rec)
	require.Len(t, entry.Shifts, 1)
	assert.Equal(t, 750, entry.Shifts[0].Duration)
	assert.Equal(t, 750, entry.TotalMinutes)

	got := decode[EntryDTO](t, do(t, router, http.MethodGet, "/api/calendars/"+cal.ID+"/entries/2025-05-05", nil))
	assert.Equal(t, entry, got)
}

func TestPutEntry_ReplacesSameDay(t *testing.T) {
	_, router := setupTestServer(t)
	cal := createCalendar(t, router, "Work")
	path := "/api/calendars/" + cal.ID + "/entries/2025-05-06"

	// GIVEN: A day shift with default times
	rec := do(t, router, http.MethodPut, path, PutEntryRequest{Shifts: []ShiftInput{{Type: "day"}}})
	require.Equal(t, http.StatusOK, rec.Code)
	entry := decode[EntryDTO](t, rec)
	assert.Equal(t, "06:45", entry.Shifts[0].StartTime)
	assert.Equal(t, "19:15", entry.Shifts[0].EndTime)

	// WHEN: The day is written again, date given as a date-time
	rec = do(t, router, http.MethodPut, "/api/calendars/"+cal.ID+"/entries/2025-05-06T00:00:00Z", PutEntryRequest{
		Shifts: []ShiftInput{
			{Type: "cs", StartTime: "08:00", EndTime: "12:00"},
			{Type: "other", StartTime: "13:00", EndTime: "15:30"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: One entry for the day with both shifts
	entries := decode[[]EntryDTO](t, do(t, router, http.MethodGet, "/api/calendars/"+cal.ID+"/entries", nil))
	require.Len(t, entries, 1)
	assert.Equal(t, "2025-05-06", entries[0].Date)
	assert.Equal(t, 240+150, entries[0].TotalMinutes)

	// WHEN: Removing it
	rec = do(t, router, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutEntry_EmptyShiftsIsKept(t *testing.T) {
	_, router := setupTestServer(t)
	cal := createCalendar(t, router, "Work")

	rec := do(t, router, http.MethodPut, "/api/calendars/"+cal.ID+"/entries/2025-05-07", PutEntryRequest{Shifts: []ShiftInput{}})
	require.Equal(t, http.StatusOK, rec.Code)

	entries := decode[[]EntryDTO](t, do(t, router, http.MethodGet, "/api/calendars/"+cal.ID+"/entries", nil))
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Shifts)
	assert.Equal(t, 0, entries[0].TotalMinutes)
}

func TestPutEntry_Validation(t *testing.T) {
	_, router := setupTestServer(t)
	cal := createCalendar(t, router, "Work")

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"unknown type", "/entries/2025-05-05", PutEntryRequest{Shifts: []ShiftInput{{Type: "vacation", StartTime: "08:00", EndTime: "16:00"}}}, http.StatusBadRequest},
		{"bad start", "/entries/2025-05-05", PutEntryRequest{Shifts: []ShiftInput{{Type: "day", StartTime: "25:00", EndTime: "16:00"}}}, http.StatusBadRequest},
		{"bad end", "/entries/2025-05-05", PutEntryRequest{Shifts: []ShiftInput{{Type: "day", StartTime: "08:00", EndTime: "8"}}}, http.StatusBadRequest},
		{"bad date", "/entries/05-05-2025", PutEntryRequest{}, http.StatusBadRequest},
		{"bad body", "/entries/2025-05-05", "not json", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPut, "/api/calendars/"+cal.ID+tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	// Nothing was written
	entries := decode[[]EntryDTO](t, do(t, router, http.MethodGet, "/api/calendars/"+cal.ID+"/entries", nil))
	assert.Empty(t, entries)
}

func TestPutEntry_ShiftErrorDetails(t *testing.T) {
	_, router := setupTestServer(t)
	cal := createCalendar(t, router, "Work")

	rec := do(t, router, http.MethodPut, "/api/calendars/"+cal.ID+"/entries/2025-05-05", PutEntryRequest{
		Shifts: []ShiftInput{
			{Type: "day", StartTime: "06:45", EndTime: "19:15"},
			{Type: "night", StartTime: "18:45", EndTime: "7:75"},
		},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "invalid_input", resp.Code)

	details, ok := resp.Details.(map[string]any)
	require.True(t, ok, "details should be an object: %#v", resp.Details)
	assert.Equal(t, "2025-05-05", details["date"])
	assert.Equal(t, float64(1), details["index"])
}

func TestPutEntry_UnknownCalendar(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPut, "/api/calendars/nope/entries/2025-05-05", PutEntryRequest{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// ACCOUNTING
// =============================================================================

func TestSummary_Month(t *testing.T) {
	_, router := setupTestServer(t)
	cal := createCalendar(t, router, "Work")

	// GIVEN: A weekday night shift and a Saturday day shift in May 2025
	do(t, router, http.MethodPut, "/api/calendars/"+cal.ID+"/entries/2025-05-05", PutEntryRequest{Shifts: []ShiftInput{{Type: "night"}}})
	do(t, router, http.MethodPut, "/api/calendars/"+cal.ID+"/entries/2025-05-10", PutEntryRequest{Shifts: []ShiftInput{{Type: "day"}}})

	// WHEN: Summarizing May (22 weekdays)
	rec := do(t, router, http.MethodGet, "/api/calendars/"+cal.ID+"/summary?year=2025&month=5", nil)

	// THEN
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s := decode[SummaryResponse](t, rec)
	assert.Equal(t, 2025, s.Year)
	assert.Equal(t, 5, s.Month)
	assert.Equal(t, 22*480, s.TotalFTL)
	assert.Equal(t, 1500, s.TotalOL)
	assert.Equal(t, 750, s.TotalWeekend)
	assert.Equal(t, 1, s.WorkDays)
	assert.Equal(t, 1500-22*480, s.OSMonth)
	assert.Equal(t, 1500-22*480, s.OSTotal)
	assert.Equal(t, 0, s.OSDebt90d)
}

func TestSummary_DefaultsToCurrentMonth(t *testing.T) {
	_, router := setupTestServer(t)

	// WHEN: No year/month given, no calendar yet
	rec := do(t, router, http.MethodGet, "/api/summary", nil)

	// THEN: May 2025 of a freshly created Personal calendar
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s := decode[SummaryResponse](t, rec)
	assert.NotEmpty(t, s.CalendarID)
	assert.Equal(t, 2025, s.Year)
	assert.Equal(t, 5, s.Month)
	assert.Equal(t, 22*480, s.TotalFTL)
	assert.Equal(t, 0, s.OSTotal)
}

func TestSummary_InvalidMonth(t *testing.T) {
	_, router := setupTestServer(t)
	cal := createCalendar(t, router, "Work")

	for _, q := range []string{"month=0", "month=13", "month=may", "year=abc"} {
		rec := do(t, router, http.MethodGet, "/api/calendars/"+cal.ID+"/summary?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestSummary_Year(t *testing.T) {
	_, router := setupTestServer(t)
	cal := createCalendar(t, router, "Work")
	do(t, router, http.MethodPut, "/api/calendars/"+cal.ID+"/entries/2025-01-06", PutEntryRequest{Shifts: []ShiftInput{{Type: "day"}}})

	rec := do(t, router, http.MethodGet, "/api/calendars/"+cal.ID+"/summary/2025", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[YearSummaryResponse](t, rec)
	require.Len(t, resp.Months, 12)
	for i, m := range resp.Months {
		assert.Equal(t, i+1, m.Month)
	}
	assert.Equal(t, 750, resp.Months[0].TotalOL)
	assert.Equal(t, 750-23*480, resp.Months[0].OSTotal)
	// Months with no logged time do not extend the cumulative deficit.
	assert.Equal(t, 750-23*480, resp.Months[11].OSTotal)
}

func TestBreakdown(t *testing.T) {
	_, router := setupTestServer(t)
	cal := createCalendar(t, router, "Work")
	do(t, router, http.MethodPut, "/api/calendars/"+cal.ID+"/entries/2025-01-01", PutEntryRequest{Shifts: []ShiftInput{{Type: "day"}}})
	do(t, router, http.MethodPut, "/api/calendars/"+cal.ID+"/entries/2025-03-04", PutEntryRequest{Shifts: []ShiftInput{{Type: "cs"}}})

	rec := do(t, router, http.MethodGet, "/api/calendars/"+cal.ID+"/breakdown?year=2025&month=5", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	b := decode[BreakdownResponse](t, rec)
	assert.Equal(t, "2025-05", b.Target)

	require.Len(t, b.Entries, 2)
	assert.Equal(t, "New Year's Day", b.Entries[0].Holiday)
	assert.Equal(t, "workday", b.Entries[0].Kind)

	require.Len(t, b.Months, 5)
	assert.Equal(t, "2025-01", b.Months[0].Month)
	assert.True(t, b.Months[0].DebtMonth)
	assert.True(t, b.Months[0].Counted)
	assert.False(t, b.Months[1].Counted)
	assert.Equal(t, 480, b.Months[2].CS)
}

// =============================================================================
// CALCULATORS
// =============================================================================

func TestDuration(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodGet, "/api/duration?start=18:45&end=07:15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[DurationResponse](t, rec)
	assert.Equal(t, 750, d.Minutes)
	assert.Equal(t, "12h 30m", d.Formatted)

	rec = do(t, router, http.MethodGet, "/api/duration?start=08:00&end=08:00", nil)
	assert.Equal(t, 0, decode[DurationResponse](t, rec).Minutes)

	rec = do(t, router, http.MethodGet, "/api/duration?start=8am&end=16:00", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDayAndHolidays(t *testing.T) {
	_, router := setupTestServer(t)

	// Christmas 2025 is a Thursday: a holiday but still a workday
	day := decode[DayDTO](t, do(t, router, http.MethodGet, "/api/days/2025-12-25", nil))
	assert.Equal(t, "workday", day.Kind)
	assert.True(t, day.Holiday)
	assert.Equal(t, "Thursday", day.Weekday)

	day = decode[DayDTO](t, do(t, router, http.MethodGet, "/api/days/2025-05-17", nil))
	assert.Equal(t, "weekend", day.Kind)
	assert.False(t, day.Holiday)

	rec := do(t, router, http.MethodGet, "/api/holidays?year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Year     int          `json:"year"`
		Holidays []HolidayDTO `json:"holidays"`
	}](t, rec)
	assert.Equal(t, 2025, resp.Year)
	require.NotEmpty(t, resp.Holidays)
	assert.Equal(t, "2025-01-01", resp.Holidays[0].Date)

	rec = do(t, router, http.MethodGet, "/api/days/tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

func TestExportImport_RoundTrip(t *testing.T) {
	_, router := setupTestServer(t)

	// GIVEN: Two calendars with entries
	work := createCalendar(t, router, "Work")
	do(t, router, http.MethodPut, "/api/calendars/"+work.ID+"/entries/2025-05-05", PutEntryRequest{Shifts: []ShiftInput{{Type: "night"}}})
	side := createCalendar(t, router, "Side")
	do(t, router, http.MethodPut, "/api/calendars/"+side.ID+"/entries/2025-05-06", PutEntryRequest{Shifts: []ShiftInput{{Type: "cs"}}})

	// WHEN: Exporting, resetting, importing
	rec := do(t, router, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	exported := rec.Body.Bytes()

	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/scenarios/reset", nil).Code)
	assert.Empty(t, decode[[]CalendarDTO](t, do(t, router, http.MethodGet, "/api/calendars", nil)))

	rec = do(t, router, http.MethodPost, "/api/import", exported)

	// THEN: Calendars, entries and the active pointer are restored
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ImportResponse](t, rec)
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, side.ID, resp.Active)

	entries := decode[[]EntryDTO](t, do(t, router, http.MethodGet, "/api/calendars/"+work.ID+"/entries", nil))
	require.Len(t, entries, 1)
	assert.Equal(t, 750, entries[0].TotalMinutes)
}

func TestImport_BareArrayActivatesFirst(t *testing.T) {
	_, router := setupTestServer(t)

	body := `[{"id":"calendar_a","name":"Imported","createdAt":"2025-01-02T08:00:00Z",
	  "entries":[{"date":"2025-02-03T00:00:00.000Z","shifts":[{"type":"day","startTime":"06:45","endTime":"19:15","duration":1}]}]}]`

	rec := do(t, router, http.MethodPost, "/api/import", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "calendar_a", decode[ImportResponse](t, rec).Active)

	entry := decode[EntryDTO](t, do(t, router, http.MethodGet, "/api/calendars/calendar_a/entries/2025-02-03", nil))
	assert.Equal(t, 750, entry.TotalMinutes)
}

func TestImport_Invalid(t *testing.T) {
	_, router := setupTestServer(t)

	for _, body := range []string{"not json", `{"calendars":[{"id":"x","name":"","entries":[]}]}`} {
		rec := do(t, router, http.MethodPost, "/api/import", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "invalid_input", decode[ErrorResponse](t, rec).Code)
	}
}

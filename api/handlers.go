/*
handlers.go - HTTP API handlers for the work-hour tracker

PURPOSE:
  Exposes calendars, day entries and the accounting engine via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  timesheet package.

ENDPOINTS:
  Calendars:
    GET    /api/calendars                     List calendars
    POST   /api/calendars                     Create calendar (becomes active)
    GET    /api/calendars/active              Active calendar, created if none
    PUT    /api/calendars/active              Switch active calendar
    PATCH  /api/calendars/{id}                Rename
    DELETE /api/calendars/{id}                Delete

  Entries:
    GET    /api/calendars/{id}/entries         All entries
    GET    /api/calendars/{id}/entries/{date}  One day
    PUT    /api/calendars/{id}/entries/{date}  Replace a day
    DELETE /api/calendars/{id}/entries/{date}  Remove a day

  Accounting:
    GET    /api/summary?year=&month=               Active calendar month summary
    GET    /api/calendars/{id}/summary?year=&month= Month summary
    GET    /api/calendars/{id}/summary/{year}      Twelve month summaries
    GET    /api/calendars/{id}/breakdown?year=&month= Diagnostics report

  Tools:
    GET    /api/days/{date}                   Day classification
    GET    /api/duration?start=&end=          Shift duration
    GET    /api/holidays?year=                Public holidays
    GET    /api/export                        Export document
    POST   /api/import                        Import document
    GET    /api/debt/notices                  Recorded debt notices
    POST   /api/debt/check                    Record notices now

MONTHS:
  Months are 1-12 on the wire. Missing year/month default to today.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Calendar or entry not found
  - 500: Internal errors

SECURITY NOTE:
  No authentication. The tracker is a single-user tool.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/pontaj/diagnostics"
	"github.com/warp/pontaj/factory"
	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

// maxImportBytes bounds the size of an import body.
const maxImportBytes = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      timesheet.Backend
	Engine     *timesheet.Engine
	Classifier *timesheet.DayClassifier
	Log        *slog.Logger

	// Now is the clock used for default months and scenarios.
	Now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store timesheet.Backend, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:      store,
		Engine:     timesheet.NewEngine(store, store),
		Classifier: timesheet.NewDayClassifier(nil),
		Log:        logger,
		Now:        time.Now,
	}
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// ListCalendars returns all calendars in creation order.
func (h *Handler) ListCalendars(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	calendars, err := h.Store.ListCalendars(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calendars", err)
		return
	}
	active, err := h.Store.GetActiveCalendarID(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read active calendar", err)
		return
	}

	dtos := make([]CalendarDTO, 0, len(calendars))
	for _, c := range calendars {
		dtos = append(dtos, toCalendarDTO(c, active))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCalendar creates a calendar and makes it active.
func (h *Handler) CreateCalendar(w http.ResponseWriter, r *http.Request) {
	var req CreateCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cal, err := h.Store.CreateCalendar(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, "Failed to create calendar", err)
		return
	}

	h.Log.Info("calendar created", slog.String("calendar_id", cal.ID), slog.String("name", cal.Name))
	writeJSON(w, http.StatusCreated, toCalendarDTO(cal, cal.ID))
}

// GetActiveCalendar returns the active calendar with its entries. A calendar
// is activated or created when none is active.
func (h *Handler) GetActiveCalendar(w http.ResponseWriter, r *http.Request) {
	cal, err := timesheet.EnsureActiveCalendar(r.Context(), h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve active calendar", err)
		return
	}

	writeJSON(w, http.StatusOK, CalendarDetailDTO{
		CalendarDTO: toCalendarDTO(cal, cal.ID),
		Entries:     toEntryDTOs(cal.Entries),
	})
}

// SetActiveCalendar switches the active calendar.
func (h *Handler) SetActiveCalendar(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.SetActiveCalendar(r.Context(), req.ID); err != nil {
		writeDomainError(w, "Failed to set active calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"active": req.ID})
}

// RenameCalendar changes the name of a calendar.
func (h *Handler) RenameCalendar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RenameCalendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.RenameCalendar(r.Context(), id, req.Name); err != nil {
		writeDomainError(w, "Failed to rename calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteCalendar removes a calendar and its entries.
func (h *Handler) DeleteCalendar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteCalendar(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete calendar", err)
		return
	}

	h.Log.Info("calendar deleted", slog.String("calendar_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns every entry of a calendar.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListEntries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// GetEntry returns the entry of one day.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	day, err := generic.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	entry, err := h.Store.GetEntry(r.Context(), chi.URLParam(r, "id"), day)
	if err != nil {
		writeDomainError(w, "Failed to get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// PutEntry replaces the entry of a day. An empty shift list records a day
// without work.
func (h *Handler) PutEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	day, err := generic.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	var req PutEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entry, err := buildEntry(day, req.Shifts)
	if err != nil {
		writeDomainError(w, "Invalid shift", err)
		return
	}

	if err := h.Store.UpsertEntry(r.Context(), id, entry); err != nil {
		writeDomainError(w, "Failed to save entry", err)
		return
	}

	h.Log.Debug("entry saved",
		slog.String("calendar_id", id),
		slog.String("date", day.String()),
		slog.Int("shifts", len(entry.Shifts)))
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// DeleteEntry removes the entry of a day.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	day, err := generic.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	if err := h.Store.RemoveEntry(r.Context(), chi.URLParam(r, "id"), day); err != nil {
		writeDomainError(w, "Failed to remove entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildEntry validates shift input and derives durations.
func buildEntry(day generic.Day, inputs []ShiftInput) (timesheet.DayEntry, error) {
	entry := timesheet.DayEntry{Date: day, Shifts: make([]timesheet.Shift, 0, len(inputs))}
	for i, in := range inputs {
		t, err := timesheet.ParseShiftType(in.Type)
		if err != nil {
			return timesheet.DayEntry{}, &generic.ShiftError{Date: day, Index: i, Err: err}
		}
		start, end := in.StartTime, in.EndTime
		if start == "" && end == "" {
			start, end = t.DefaultTimes()
		}
		if _, err := timesheet.ParseClock(start); err != nil {
			return timesheet.DayEntry{}, &generic.ShiftError{Date: day, Index: i, Err: err}
		}
		if _, err := timesheet.ParseClock(end); err != nil {
			return timesheet.DayEntry{}, &generic.ShiftError{Date: day, Index: i, Err: err}
		}
		entry.Shifts = append(entry.Shifts, timesheet.NewShift(t, start, end))
	}
	return entry, nil
}

// =============================================================================
// ACCOUNTING HANDLERS
// =============================================================================

// GetActiveSummary returns the month summary of the active calendar.
// GET /api/summary?year=2025&month=3
func (h *Handler) GetActiveSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	target, err := h.targetMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	cal, err := timesheet.EnsureActiveCalendar(ctx, h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve active calendar", err)
		return
	}

	summary, err := h.Engine.ComputeMonthSummary(ctx, target.Year, target.Index())
	if err != nil {
		writeDomainError(w, "Failed to compute summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(cal.ID, target, summary))
}

// GetSummary returns the month summary of a calendar.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target, err := h.targetMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	summary, err := h.Engine.ComputeForCalendar(r.Context(), id, target)
	if err != nil {
		writeDomainError(w, "Failed to compute summary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(id, target, summary))
}

// GetYearSummary returns the twelve month summaries of a year.
func (h *Handler) GetYearSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	summaries, err := h.Engine.ComputeYear(r.Context(), id, year)
	if err != nil {
		writeDomainError(w, "Failed to compute year", err)
		return
	}

	resp := YearSummaryResponse{CalendarID: id, Year: year, Months: make([]SummaryResponse, 0, len(summaries))}
	for i, s := range summaries {
		resp.Months = append(resp.Months, toSummaryResponse(id, generic.MonthFromIndex(year, i), s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBreakdown returns the diagnostics report of a calendar.
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	target, err := h.targetMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	cal, err := h.Store.GetCalendar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get calendar", err)
		return
	}

	report := diagnostics.Inspect(cal, target, h.Classifier)
	writeJSON(w, http.StatusOK, toBreakdownResponse(report))
}

// targetMonth reads year and month (1-12) from the query, defaulting to today.
func (h *Handler) targetMonth(r *http.Request) (generic.Month, error) {
	current := generic.DayOf(h.Now()).MonthOf()
	q := r.URL.Query()

	year := current.Year
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return generic.Month{}, fmt.Errorf("%w: year %q", generic.ErrInvalidMonth, v)
		}
		year = n
	}

	month := int(current.Month)
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return generic.Month{}, fmt.Errorf("%w: month %q", generic.ErrInvalidMonth, v)
		}
		month = n
	}

	return generic.Month{Year: year, Month: time.Month(month)}, nil
}

// =============================================================================
// TOOL HANDLERS
// =============================================================================

// GetDay classifies a day.
// GET /api/days/2025-12-25
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	day, err := generic.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(h.Classifier.Classify(day)))
}

// GetDuration computes a shift duration.
// GET /api/duration?start=18:45&end=07:15
func (h *Handler) GetDuration(w http.ResponseWriter, r *http.Request) {
	start, end := r.URL.Query().Get("start"), r.URL.Query().Get("end")
	if _, err := timesheet.ParseClock(start); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start", err)
		return
	}
	if _, err := timesheet.ParseClock(end); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end", err)
		return
	}

	minutes := timesheet.ComputeDuration(start, end)
	writeJSON(w, http.StatusOK, DurationResponse{
		Start:     start,
		End:       end,
		Minutes:   minutes,
		Formatted: timesheet.FormatMinutes(minutes),
	})
}

// ListHolidays returns the public holidays of a year.
// GET /api/holidays?year=2025
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = n
	}

	holidays := h.Classifier.Holidays(year)
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, HolidayDTO{Date: hol.Date.String(), Name: hol.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "holidays": dtos})
}

// Export writes every calendar as an export document.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.Store.ListCalendars(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calendars", err)
		return
	}
	calendars := make([]timesheet.Calendar, 0, len(list))
	for _, c := range list {
		full, err := h.Store.GetCalendar(ctx, c.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to read calendar", err)
			return
		}
		calendars = append(calendars, full)
	}
	active, err := h.Store.GetActiveCalendarID(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read active calendar", err)
		return
	}

	data, err := factory.EncodeCalendars(calendars, active)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode calendars", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="pontaj-export.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import stores every calendar of an export document, replacing calendars
// with the same id.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	doc, err := factory.DecodeCalendars(data)
	if err != nil {
		writeDomainError(w, "Invalid document", err)
		return
	}

	for _, cal := range doc.Calendars {
		if err := h.Store.PutCalendar(ctx, cal); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to store calendar", err)
			return
		}
	}

	if doc.Active != "" {
		if err := h.Store.SetActiveCalendar(ctx, doc.Active); err != nil {
			writeDomainError(w, "Failed to set active calendar", err)
			return
		}
	}
	active, err := timesheet.EnsureActiveCalendar(ctx, h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve active calendar", err)
		return
	}

	h.Log.Info("calendars imported", slog.Int("count", len(doc.Calendars)), slog.String("active", active.ID))
	writeJSON(w, http.StatusOK, ImportResponse{Imported: len(doc.Calendars), Active: active.ID})
}

// =============================================================================
// DEBT NOTICE HANDLERS
// =============================================================================

// ListDebtNotices returns every recorded debt notice.
func (h *Handler) ListDebtNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := h.Store.ListDebtNotices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list debt notices", err)
		return
	}

	dtos := make([]DebtNoticeDTO, 0, len(notices))
	for _, n := range notices {
		dtos = append(dtos, toDebtNoticeDTO(n))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CheckDebts records debt notices for the current month right away.
func (h *Handler) CheckDebts(w http.ResponseWriter, r *http.Request) {
	recorded, err := RecordDebtNotices(r.Context(), h.Store, h.Engine, generic.DayOf(h.Now()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check debts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"recorded": recorded})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error kind.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	code := ""
	switch {
	case generic.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case generic.IsClientError(err):
		status, code = http.StatusBadRequest, "invalid_input"
	}

	resp := ErrorResponse{Error: message, Code: code, Details: err.Error()}
	var shiftErr *generic.ShiftError
	if errors.As(err, &shiftErr) {
		resp.Details = map[string]any{
			"date":  shiftErr.Date.String(),
			"index": shiftErr.Index,
			"error": shiftErr.Err.Error(),
		}
	}
	writeJSON(w, status, resp)
}

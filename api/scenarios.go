/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	calendars for demos. Each scenario shows one feature of the accounting.

AVAILABLE SCENARIOS:

	empty:          A single empty "Personal" calendar
	night-shifts:   Night shifts every other day of the current month
	overtime-debt:  Long day shifts four months back, partly offset by CS,
	                so that debt is due in the current month

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create the calendar (it becomes active)
 3. Upsert day entries relative to today

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "overtime-debt"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, store, today)
 3. Add it to 'scenarioLoaders'

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "One empty Personal calendar",
	},
	{
		ID:          "night-shifts",
		Name:        "Night Shifts",
		Description: "Night shifts (18:45-07:15) every other day of the current month",
	},
	{
		ID:          "overtime-debt",
		Name:        "Overtime Debt",
		Description: "12.5h day shifts four months ago with two CS days, debt due this month",
	},
}

type scenarioLoader func(ctx context.Context, store timesheet.Backend, today generic.Day) error

var scenarioLoaders = map[string]scenarioLoader{
	"empty":         loadEmptyScenario,
	"night-shifts":  loadNightShiftsScenario,
	"overtime-debt": loadOvertimeDebtScenario,
}

// Scenarios lists the available demo scenarios.
func Scenarios() []ScenarioDTO {
	return append([]ScenarioDTO(nil), scenarios...)
}

// LoadScenario resets the store and loads a scenario relative to today.
func LoadScenario(ctx context.Context, store timesheet.Backend, id string, today generic.Day) error {
	load, ok := scenarioLoaders[id]
	if !ok {
		return fmt.Errorf("unknown scenario %q", id)
	}
	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return load(ctx, store, today)
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, ok := scenarioLoaders[req.ScenarioID]; !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentScenario = ""
	if err := LoadScenario(r.Context(), h.Store, req.ScenarioID, generic.DayOf(h.Now())); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func loadEmptyScenario(ctx context.Context, store timesheet.Backend, _ generic.Day) error {
	_, err := store.CreateCalendar(ctx, timesheet.DefaultCalendarName)
	return err
}

// loadNightShiftsScenario logs a night shift on every odd day of the current
// month up to today, weekends included.
func loadNightShiftsScenario(ctx context.Context, store timesheet.Backend, today generic.Day) error {
	cal, err := store.CreateCalendar(ctx, "Night rota")
	if err != nil {
		return err
	}

	start, end := timesheet.ShiftNight.DefaultTimes()
	for d := generic.StartOfMonth(today.Year(), today.Month()); d.BeforeOrEqual(today); d = d.AddDays(2) {
		entry := timesheet.DayEntry{
			Date:   d,
			Shifts: []timesheet.Shift{timesheet.NewShift(timesheet.ShiftNight, start, end)},
		}
		if err := store.UpsertEntry(ctx, cal.ID, entry); err != nil {
			return err
		}
	}
	return nil
}

// loadOvertimeDebtScenario fills the month four months back with long day
// shifts on every weekday. The first two weekdays are compensatory leave
// instead, which lowers the debt without clearing it.
func loadOvertimeDebtScenario(ctx context.Context, store timesheet.Backend, today generic.Day) error {
	cal, err := store.CreateCalendar(ctx, "Overtime")
	if err != nil {
		return err
	}

	source := timesheet.DebtMonth(today.MonthOf())
	dayStart, dayEnd := timesheet.ShiftDay.DefaultTimes()
	csStart, csEnd := timesheet.ShiftCS.DefaultTimes()

	csDays := 2
	period := source.Period()
	for d := period.Start; d.BeforeOrEqual(period.End); d = d.AddDays(1) {
		if d.IsWeekend() {
			continue
		}
		shift := timesheet.NewShift(timesheet.ShiftDay, dayStart, dayEnd)
		if csDays > 0 {
			shift = timesheet.NewShift(timesheet.ShiftCS, csStart, csEnd)
			csDays--
		}
		entry := timesheet.DayEntry{Date: d, Shifts: []timesheet.Shift{shift}}
		if err := store.UpsertEntry(ctx, cal.ID, entry); err != nil {
			return err
		}
	}

	// A regular day in the current month so the calendar looks in use.
	if today.IsWorkday() {
		entry := timesheet.DayEntry{
			Date:   today,
			Shifts: []timesheet.Shift{timesheet.NewShift(timesheet.ShiftOther, "08:00", "16:00")},
		}
		return store.UpsertEntry(ctx, cal.ID, entry)
	}
	return nil
}

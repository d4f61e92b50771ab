/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

CONVENTIONS:
  - Field names are camelCase, matching the export document
  - Dates are "YYYY-MM-DD", months are "YYYY-MM"
  - Every duration is an integer number of minutes

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/calendar.go: Export document types
*/
package api

import (
	"time"

	"github.com/warp/pontaj/diagnostics"
	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

// =============================================================================
// CALENDARS
// =============================================================================

// CalendarDTO represents a calendar in list responses.
type CalendarDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

// CalendarDetailDTO is a calendar with its entries.
type CalendarDetailDTO struct {
	CalendarDTO
	Entries []EntryDTO `json:"entries"`
}

// CreateCalendarRequest is the body of POST /api/calendars.
type CreateCalendarRequest struct {
	Name string `json:"name"`
}

// RenameCalendarRequest is the body of PATCH /api/calendars/{id}.
type RenameCalendarRequest struct {
	Name string `json:"name"`
}

// SetActiveRequest is the body of PUT /api/calendars/active.
type SetActiveRequest struct {
	ID string `json:"id"`
}

// =============================================================================
// ENTRIES
// =============================================================================

// ShiftDTO represents a shift in API responses.
type ShiftDTO struct {
	Type      string `json:"type"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  int    `json:"duration"`
}

// EntryDTO represents a day entry in API responses.
type EntryDTO struct {
	Date         string     `json:"date"`
	Shifts       []ShiftDTO `json:"shifts"`
	TotalMinutes int        `json:"totalMinutes"`
}

// ShiftInput is one shift of a PutEntryRequest. Duration is always derived.
type ShiftInput struct {
	Type      string `json:"type"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// PutEntryRequest is the body of PUT /api/calendars/{id}/entries/{date}.
type PutEntryRequest struct {
	Shifts []ShiftInput `json:"shifts"`
}

// =============================================================================
// SUMMARIES
// =============================================================================

// SummaryResponse is a month summary with its coordinates.
type SummaryResponse struct {
	CalendarID string `json:"calendarId"`
	Year       int    `json:"year"`
	Month      int    `json:"month"` // 1-12
	timesheet.MonthSummary
}

// YearSummaryResponse holds the twelve summaries of a year.
type YearSummaryResponse struct {
	CalendarID string            `json:"calendarId"`
	Year       int               `json:"year"`
	Months     []SummaryResponse `json:"months"`
}

// BreakdownEntryDTO is one entry row of a breakdown.
type BreakdownEntryDTO struct {
	Date    string   `json:"date"`
	Kind    string   `json:"kind"`
	Holiday string   `json:"holiday,omitempty"`
	Minutes int      `json:"minutes"`
	Shifts  []string `json:"shifts"`
}

// BreakdownMonthDTO is one month row of a breakdown.
type BreakdownMonthDTO struct {
	Month     string `json:"month"`
	OL        int    `json:"ol"`
	FTL       int    `json:"ftl"`
	OS        int    `json:"os"`
	CS        int    `json:"cs"`
	Counted   bool   `json:"counted"`
	DebtMonth bool   `json:"debtMonth"`
}

// BreakdownResponse is the diagnostics report of a calendar.
type BreakdownResponse struct {
	CalendarID string                 `json:"calendarId"`
	Target     string                 `json:"target"`
	Entries    []BreakdownEntryDTO    `json:"entries"`
	Months     []BreakdownMonthDTO    `json:"months"`
	Summary    timesheet.MonthSummary `json:"summary"`
}

// =============================================================================
// DAYS / HOLIDAYS / DURATION
// =============================================================================

// DayDTO is the classification of a day.
type DayDTO struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	Kind        string `json:"kind"`
	Holiday     bool   `json:"holiday"`
	HolidayName string `json:"holidayName,omitempty"`
}

// HolidayDTO is a public holiday.
type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// DurationResponse is the result of GET /api/duration.
type DurationResponse struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Minutes   int    `json:"minutes"`
	Formatted string `json:"formatted"`
}

// =============================================================================
// DEBT NOTICES / IMPORT
// =============================================================================

// DebtNoticeDTO is a recorded overtime debt.
type DebtNoticeDTO struct {
	CalendarID  string `json:"calendarId"`
	Month       string `json:"month"`
	DebtMinutes int    `json:"debtMinutes"`
	CheckedAt   string `json:"checkedAt"`
}

// ImportResponse reports an import.
type ImportResponse struct {
	Imported int    `json:"imported"`
	Active   string `json:"active"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toCalendarDTO(c timesheet.Calendar, activeID string) CalendarDTO {
	return CalendarDTO{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, Active: c.ID == activeID}
}

func toEntryDTO(e timesheet.DayEntry) EntryDTO {
	dto := EntryDTO{
		Date:         e.Date.String(),
		Shifts:       make([]ShiftDTO, 0, len(e.Shifts)),
		TotalMinutes: e.TotalMinutes().Round(),
	}
	for _, s := range e.Shifts {
		dto.Shifts = append(dto.Shifts, ShiftDTO{
			Type:      s.Type.String(),
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Duration:  s.Duration,
		})
	}
	return dto
}

func toEntryDTOs(entries []timesheet.DayEntry) []EntryDTO {
	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEntryDTO(e))
	}
	return dtos
}

func toSummaryResponse(calendarID string, m generic.Month, s timesheet.MonthSummary) SummaryResponse {
	return SummaryResponse{CalendarID: calendarID, Year: m.Year, Month: int(m.Month), MonthSummary: s}
}

func toBreakdownResponse(r diagnostics.Report) BreakdownResponse {
	resp := BreakdownResponse{
		CalendarID: r.CalendarID,
		Target:     r.Target.String(),
		Entries:    make([]BreakdownEntryDTO, 0, len(r.Entries)),
		Months:     make([]BreakdownMonthDTO, 0, len(r.Months)),
		Summary:    r.Summary,
	}
	for _, e := range r.Entries {
		resp.Entries = append(resp.Entries, BreakdownEntryDTO{
			Date:    e.Date.String(),
			Kind:    e.Kind.String(),
			Holiday: e.HolidayName,
			Minutes: e.Minutes,
			Shifts:  e.Shifts,
		})
	}
	for _, m := range r.Months {
		resp.Months = append(resp.Months, BreakdownMonthDTO{
			Month:     m.Month.String(),
			OL:        m.OL,
			FTL:       m.FTL,
			OS:        m.OS,
			CS:        m.CS,
			Counted:   m.Counted,
			DebtMonth: m.DebtMonth,
		})
	}
	return resp
}

func toDayDTO(cl timesheet.Classification) DayDTO {
	return DayDTO{
		Date:        cl.Date.String(),
		Weekday:     cl.Date.Weekday().String(),
		Kind:        cl.Kind.String(),
		Holiday:     cl.Holiday,
		HolidayName: cl.HolidayName,
	}
}

func toDebtNoticeDTO(n timesheet.DebtNotice) DebtNoticeDTO {
	return DebtNoticeDTO{
		CalendarID:  n.CalendarID,
		Month:       n.Month.String(),
		DebtMinutes: n.DebtMinutes,
		CheckedAt:   n.CheckedAt.String(),
	}
}

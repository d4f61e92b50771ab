/*
Package factory provides JSON to Go calendar conversion.

PURPOSE:
  Converts the serialized calendar format into timesheet.Calendar values and
  back. Exports written by the server or the CLI, and the bare calendar
  arrays kept by the browser version of the tracker, both read back here.

JSON SCHEMA:
  {
    "active": "calendar_5b0c...",
    "calendars": [
      {
        "id": "calendar_5b0c...",
        "name": "Personal",
        "createdAt": "2025-01-02T08:00:00Z",
        "entries": [
          {
            "date": "2025-01-06T00:00:00Z",
            "shifts": [
              {"type": "night", "startTime": "18:45", "endTime": "07:15", "duration": 750}
            ]
          }
        ]
      }
    ]
  }

  A document may also be the "calendars" array alone.

READ RULES:
  - date: RFC 3339 date-time or "YYYY-MM-DD", truncated to the calendar day
  - two entries on the same day collapse into one, the later wins
  - duration is recomputed from startTime/endTime, the stored value is ignored
  - type must be one of day, night, cs, other
  - an active id that names no calendar in the document is dropped

USAGE:
  data, err := factory.EncodeCalendars(calendars, activeID)

  doc, err := factory.DecodeCalendars(data)
  for _, cal := range doc.Calendars {
      store.PutCalendar(ctx, cal)
  }

SEE ALSO:
  - timesheet/types.go: Calendar, DayEntry, Shift
  - api/handlers.go: /api/export and /api/import
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// DocumentJSON is the JSON representation of an export.
type DocumentJSON struct {
	Active    string         `json:"active,omitempty"`
	Calendars []CalendarJSON `json:"calendars"`
}

// CalendarJSON is the JSON representation of a calendar.
type CalendarJSON struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	CreatedAt string      `json:"createdAt"`
	Entries   []EntryJSON `json:"entries"`
}

// EntryJSON is the JSON representation of a day entry.
type EntryJSON struct {
	Date   string      `json:"date"`
	Shifts []ShiftJSON `json:"shifts"`
}

// ShiftJSON is the JSON representation of a shift.
type ShiftJSON struct {
	Type      string `json:"type"` // day, night, cs, other
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  int    `json:"duration"`
}

// Document is a decoded export.
type Document struct {
	Active    string
	Calendars []timesheet.Calendar
}

// =============================================================================
// ENCODE
// =============================================================================

// EncodeCalendars writes calendars and the active id as an indented document.
func EncodeCalendars(calendars []timesheet.Calendar, active string) ([]byte, error) {
	doc := DocumentJSON{Active: active, Calendars: make([]CalendarJSON, 0, len(calendars))}
	for _, c := range calendars {
		doc.Calendars = append(doc.Calendars, ToJSON(c))
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ToJSON converts a Calendar to CalendarJSON. Entry dates are written as
// midnight UTC date-times.
func ToJSON(c timesheet.Calendar) CalendarJSON {
	cj := CalendarJSON{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
		Entries:   make([]EntryJSON, 0, len(c.Entries)),
	}
	for _, e := range c.Entries {
		ej := EntryJSON{
			Date:   e.Date.Time.Format(time.RFC3339),
			Shifts: make([]ShiftJSON, 0, len(e.Shifts)),
		}
		for _, s := range e.Shifts {
			ej.Shifts = append(ej.Shifts, ShiftJSON{
				Type:      s.Type.String(),
				StartTime: s.StartTime,
				EndTime:   s.EndTime,
				Duration:  timesheet.ComputeDuration(s.StartTime, s.EndTime),
			})
		}
		cj.Entries = append(cj.Entries, ej)
	}
	return cj
}

// =============================================================================
// DECODE
// =============================================================================

// DecodeCalendars reads a document or a bare calendar array. Every failure
// wraps generic.ErrInvalidDocument.
func DecodeCalendars(data []byte) (Document, error) {
	var doc DocumentJSON

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Calendars); err != nil {
			return Document{}, fmt.Errorf("%w: %v", generic.ErrInvalidDocument, err)
		}
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", generic.ErrInvalidDocument, err)
	}

	out := Document{Calendars: make([]timesheet.Calendar, 0, len(doc.Calendars))}
	seen := make(map[string]bool, len(doc.Calendars))
	for i, cj := range doc.Calendars {
		c, err := FromJSON(cj)
		if err != nil {
			return Document{}, fmt.Errorf("%w: calendar %d: %w", generic.ErrInvalidDocument, i, err)
		}
		if seen[c.ID] {
			return Document{}, fmt.Errorf("%w: duplicate calendar id %q", generic.ErrInvalidDocument, c.ID)
		}
		seen[c.ID] = true
		out.Calendars = append(out.Calendars, c)
	}

	if seen[doc.Active] {
		out.Active = doc.Active
	}
	return out, nil
}

// FromJSON converts CalendarJSON to a Calendar. A missing id gets a fresh
// one and a missing creation time is left zero.
func FromJSON(cj CalendarJSON) (timesheet.Calendar, error) {
	name, err := timesheet.CleanName(cj.Name)
	if err != nil {
		return timesheet.Calendar{}, err
	}

	c := timesheet.Calendar{ID: cj.ID, Name: name}
	if c.ID == "" {
		c.ID = timesheet.NewCalendarID()
	}
	if cj.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339Nano, cj.CreatedAt)
		if err != nil {
			return timesheet.Calendar{}, fmt.Errorf("createdAt %q: %w", cj.CreatedAt, generic.ErrInvalidDate)
		}
		c.CreatedAt = t.UTC()
	}

	byDay := make(map[generic.Day]timesheet.DayEntry, len(cj.Entries))
	for _, ej := range cj.Entries {
		e, err := parseEntry(ej)
		if err != nil {
			return timesheet.Calendar{}, err
		}
		byDay[e.Date] = e
	}

	c.Entries = make([]timesheet.DayEntry, 0, len(byDay))
	for _, e := range byDay {
		c.Entries = append(c.Entries, e)
	}
	sort.Slice(c.Entries, func(i, j int) bool { return c.Entries[i].Date.Before(c.Entries[j].Date) })
	return c, nil
}

func parseEntry(ej EntryJSON) (timesheet.DayEntry, error) {
	day, err := generic.ParseDay(ej.Date)
	if err != nil {
		return timesheet.DayEntry{}, fmt.Errorf("entry date %q: %w", ej.Date, err)
	}

	e := timesheet.DayEntry{Date: day, Shifts: make([]timesheet.Shift, 0, len(ej.Shifts))}
	for i, sj := range ej.Shifts {
		s, err := parseShift(sj)
		if err != nil {
			return timesheet.DayEntry{}, &generic.ShiftError{Date: day, Index: i, Err: err}
		}
		e.Shifts = append(e.Shifts, s)
	}
	return e, nil
}

func parseShift(sj ShiftJSON) (timesheet.Shift, error) {
	t, err := timesheet.ParseShiftType(sj.Type)
	if err != nil {
		return timesheet.Shift{}, err
	}
	if _, err := timesheet.ParseClock(sj.StartTime); err != nil {
		return timesheet.Shift{}, err
	}
	if _, err := timesheet.ParseClock(sj.EndTime); err != nil {
		return timesheet.Shift{}, err
	}
	return timesheet.NewShift(t, sj.StartTime, sj.EndTime), nil
}

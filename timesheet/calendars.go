package timesheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/warp/pontaj/generic"
)

// DefaultCalendarName is used when a calendar has to be created implicitly.
const DefaultCalendarName = "Personal"

// NewCalendarID returns a fresh calendar identifier.
func NewCalendarID() string {
	return "calendar_" + uuid.NewString()
}

// CleanName trims a calendar name and rejects blank ones.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", generic.ErrEmptyName
	}
	return name, nil
}

// EnsureActiveCalendar returns the active calendar. When none is active, or the
// active id no longer resolves, the first calendar is activated; with no
// calendars at all a DefaultCalendarName calendar is created.
func EnsureActiveCalendar(ctx context.Context, m CalendarManager) (Calendar, error) {
	id, err := m.GetActiveCalendarID(ctx)
	if err != nil {
		return Calendar{}, err
	}
	if id != "" {
		cal, err := m.GetCalendar(ctx, id)
		if err == nil {
			return cal, nil
		}
		if !errors.Is(err, generic.ErrCalendarNotFound) {
			return Calendar{}, err
		}
	}

	calendars, err := m.ListCalendars(ctx)
	if err != nil {
		return Calendar{}, err
	}
	if len(calendars) == 0 {
		cal, err := m.CreateCalendar(ctx, DefaultCalendarName)
		if err != nil {
			return Calendar{}, fmt.Errorf("create default calendar: %w", err)
		}
		return cal, nil
	}

	first := calendars[0]
	if err := m.SetActiveCalendar(ctx, first.ID); err != nil {
		return Calendar{}, err
	}
	return m.GetCalendar(ctx, first.ID)
}

package timesheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/warp/pontaj/generic"
)

// ComputeDuration returns the minutes from start to end, both "HH:MM". An end
// earlier than the start is read as the next day. Equal times give 0.
// Input is assumed well formed; callers validate with ParseClock.
func ComputeDuration(start, end string) int {
	s := clockMinutes(start)
	e := clockMinutes(end)
	if e < s {
		e += generic.MinutesPerDay
	}
	return generic.NewMinutes(e - s).Round()
}

func clockMinutes(s string) int {
	h, m, _ := strings.Cut(s, ":")
	hours, _ := strconv.Atoi(strings.TrimSpace(h))
	mins, _ := strconv.Atoi(strings.TrimSpace(m))
	return hours*generic.MinutesPerHour + mins
}

// ParseClock strictly parses "HH:MM" (00:00-23:59) into minutes since midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, fmt.Errorf("%w: %q", generic.ErrInvalidTime, s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", generic.ErrInvalidTime, s)
	}
	mins, err := strconv.Atoi(m)
	if err != nil || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("%w: %q", generic.ErrInvalidTime, s)
	}
	return hours*generic.MinutesPerHour + mins, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/generic.MinutesPerHour, minutes%generic.MinutesPerHour)
}

// FormatMinutes renders a signed minute count like "7h 30m" or "-1h 5m".
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%dh %dm", sign, minutes/generic.MinutesPerHour, minutes%generic.MinutesPerHour)
}

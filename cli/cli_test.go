package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

// Thursday, 15 May 2025.
func fixedClock() time.Time { return time.Date(2025, time.May, 15, 9, 0, 0, 0, time.UTC) }

func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")

	a := &app{now: fixedClock, quiet: true}
	root := newRootCmd(a)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", db}, args...))

	err := root.Execute()
	require.NoError(t, a.close())
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, db, args...)
	require.NoError(t, err, out)
	return out
}

func tempDB(t *testing.T) string {
	return filepath.Join(t.TempDir(), "pontaj.db")
}

var createdID = regexp.MustCompile(`\((calendar_[^)]+)\)`)

func TestCalendarCommands(t *testing.T) {
	db := tempDB(t)

	// GIVEN: Two calendars
	out := mustRun(t, db, "calendar", "create", "Work")
	m := createdID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	workID := m[1]
	mustRun(t, db, "calendar", "create", "Side")

	// THEN: The newest is active
	out = mustRun(t, db, "calendar", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "*"), out)
	assert.Contains(t, lines[0], workID)

	// WHEN: Switching, renaming, deleting
	mustRun(t, db, "calendar", "use", workID)
	mustRun(t, db, "calendar", "rename", workID, "Hospital")
	out = mustRun(t, db, "calendar", "list")
	assert.Contains(t, out, "* Hospital")

	mustRun(t, db, "calendar", "delete", workID)
	out = mustRun(t, db, "calendar", "list")
	assert.NotContains(t, out, "Hospital")
	assert.Contains(t, out, "* Side")

	_, err := runCLI(t, db, "calendar", "use", "calendar_missing")
	assert.ErrorIs(t, err, generic.ErrCalendarNotFound)
}

func TestEntryAndSummary(t *testing.T) {
	db := tempDB(t)

	// GIVEN: A night shift on a weekday and a split day, no calendar yet
	out := mustRun(t, db, "entry", "set", "2025-05-05", "--shift", "night")
	assert.Contains(t, out, "12h 30m")
	mustRun(t, db, "entry", "set", "2025-05-06", "--shift", "cs=08:00-12:00", "--shift", "other=13:00-15:30")

	// WHEN: Listing
	out = mustRun(t, db, "entry", "list", "--month", "2025-05")

	// THEN
	assert.Contains(t, out, "2025-05-05")
	assert.Contains(t, out, "night 18:45-07:15")
	assert.Contains(t, out, "cs 08:00-12:00, other 13:00-15:30")

	// WHEN: Summarizing May as JSON (current month by clock)
	out = mustRun(t, db, "summary", "--json")
	var s timesheet.MonthSummary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 22*480, s.TotalFTL)
	assert.Equal(t, 750+240+150, s.TotalOL)
	assert.Equal(t, 240, s.CSMonth)
	assert.Equal(t, 2, s.WorkDays)

	out = mustRun(t, db, "summary", "--year", "2025", "--month", "5")
	assert.Contains(t, out, "Personal")
	assert.Contains(t, out, "2025-05")

	// WHEN: Removing a day
	mustRun(t, db, "entry", "rm", "2025-05-06")
	out = mustRun(t, db, "entry", "list")
	assert.NotContains(t, out, "2025-05-06")
}

func TestEntrySet_Errors(t *testing.T) {
	db := tempDB(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bad type", []string{"entry", "set", "2025-05-05", "--shift", "holiday"}, generic.ErrInvalidShiftType},
		{"bad time", []string{"entry", "set", "2025-05-05", "--shift", "day=6:45-19:75"}, generic.ErrInvalidTime},
		{"missing end", []string{"entry", "set", "2025-05-05", "--shift", "day=06:45"}, generic.ErrInvalidTime},
		{"bad date", []string{"entry", "set", "5 May", "--shift", "day"}, generic.ErrInvalidDate},
		{"bad month", []string{"summary", "--month", "13"}, generic.ErrInvalidMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, db, tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBreakdownCommand(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "entry", "set", "2025-01-01", "--shift", "day")

	out := mustRun(t, db, "breakdown", "--year", "2025", "--month", "5")

	assert.Contains(t, out, "New Year's Day")
	assert.Contains(t, out, "due now")
	assert.Contains(t, out, "not counted")
}

func TestDurationCommand(t *testing.T) {
	// No database is opened for the calculator
	out := mustRun(t, filepath.Join(t.TempDir(), "missing", "never.db"), "duration", "18:45", "07:15")
	assert.Equal(t, "12h 30m (750 min)\n", out)

	out = mustRun(t, tempDB(t), "duration", "08:00", "08:00")
	assert.Equal(t, "0h 0m (0 min)\n", out)

	_, err := runCLI(t, tempDB(t), "duration", "8", "16:00")
	assert.ErrorIs(t, err, generic.ErrInvalidTime)
}

func TestHolidaysCommand(t *testing.T) {
	out := mustRun(t, tempDB(t), "holidays", "--year", "2025")
	assert.Contains(t, out, "2025-12-25")
	assert.Contains(t, out, "Christmas")
}

func TestExportImport(t *testing.T) {
	src, dst := tempDB(t), tempDB(t)
	file := filepath.Join(t.TempDir(), "export.json")

	// GIVEN: Data in the source database
	mustRun(t, src, "calendar", "create", "Work")
	mustRun(t, src, "entry", "set", "2025-05-05", "--shift", "night")
	mustRun(t, src, "export", "--out", file)

	// WHEN: Importing into an empty database
	out := mustRun(t, dst, "import", file)

	// THEN
	assert.Contains(t, out, "imported 1 calendar(s), active: Work")
	out = mustRun(t, dst, "entry", "list")
	assert.Contains(t, out, "750")

	_, err := runCLI(t, dst, "import", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestScenarioAndDebt(t *testing.T) {
	db := tempDB(t)

	out := mustRun(t, db, "scenario", "list")
	assert.Contains(t, out, "overtime-debt")

	mustRun(t, db, "scenario", "load", "overtime-debt")
	out = mustRun(t, db, "debt", "check")
	assert.Contains(t, out, "1 notice(s) recorded for 2025-05")

	out = mustRun(t, db, "debt", "list")
	assert.Contains(t, out, "2025-05")
	assert.Contains(t, out, "checked 2025-05-15")

	_, err := runCLI(t, db, "scenario", "load", "nope")
	assert.Error(t, err)
}

func TestParseShift(t *testing.T) {
	tests := []struct {
		in       string
		typ      timesheet.ShiftType
		start    string
		end      string
		duration int
	}{
		{"day", timesheet.ShiftDay, "06:45", "19:15", 750},
		{"night", timesheet.ShiftNight, "18:45", "07:15", 750},
		{"CS", timesheet.ShiftCS, "08:00", "16:00", 480},
		{"other=22:00-02:00", timesheet.ShiftOther, "22:00", "02:00", 240},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, err := parseShift(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, s.Type)
			assert.Equal(t, tt.start, s.StartTime)
			assert.Equal(t, tt.end, s.EndTime)
			assert.Equal(t, tt.duration, s.Duration)
		})
	}
}

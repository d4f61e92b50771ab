package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
	memstore "github.com/warp/pontaj/timesheet/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordDebtNotices(t *testing.T) {
	// GIVEN: One calendar with debt due in May 2025 and one without
	st := memstore.NewMemory()
	ctx := context.Background()
	today := generic.DayOf(testNow)
	require.NoError(t, LoadScenario(ctx, st, "overtime-debt", today))
	quiet, err := st.CreateCalendar(ctx, "Quiet")
	require.NoError(t, err)

	engine := timesheet.NewEngine(st, st)

	// WHEN: Checking twice
	n, err := RecordDebtNotices(ctx, st, engine, today)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = RecordDebtNotices(ctx, st, engine, today.AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// THEN: One notice for the month, overwritten by the later check
	notices, err := st.ListDebtNotices(ctx)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.NotEqual(t, quiet.ID, notices[0].CalendarID)
	assert.Equal(t, "2025-05", notices[0].Month.String())
	assert.Equal(t, 21*750+2*480-23*480-2*480, notices[0].DebtMinutes)
	assert.Equal(t, "2025-05-16", notices[0].CheckedAt.String())
}

func TestRecordDebtNotices_NoDebtOutsideDueMonth(t *testing.T) {
	st := memstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, LoadScenario(ctx, st, "overtime-debt", generic.DayOf(testNow)))

	n, err := RecordDebtNotices(ctx, st, timesheet.NewEngine(st, st), generic.NewDay(2025, time.June, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	notices, err := st.ListDebtNotices(ctx)
	require.NoError(t, err)
	assert.Empty(t, notices)
}

func TestDebtScheduler_ChecksOnStart(t *testing.T) {
	st := memstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, LoadScenario(ctx, st, "overtime-debt", generic.DayOf(testNow)))

	ds := NewDebtScheduler(st, timesheet.NewEngine(st, st), quietLogger())
	ds.Interval = time.Hour
	ds.Now = fixedClock

	ds.Start()
	ds.Start() // no second goroutine
	defer ds.Stop()

	assert.Eventually(t, func() bool {
		notices, err := st.ListDebtNotices(ctx)
		return err == nil && len(notices) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDebtScheduler_Disabled(t *testing.T) {
	st := memstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, LoadScenario(ctx, st, "overtime-debt", generic.DayOf(testNow)))

	ds := NewDebtScheduler(st, timesheet.NewEngine(st, st), quietLogger())
	ds.Enabled = false
	ds.Now = fixedClock

	ds.Start()
	ds.Stop()

	notices, err := st.ListDebtNotices(ctx)
	require.NoError(t, err)
	assert.Empty(t, notices)
}

func TestDebtHandlers(t *testing.T) {
	_, router := setupTestServer(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "overtime-debt"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/debt/check", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[map[string]int](t, rec)["recorded"])

	notices := decode[[]DebtNoticeDTO](t, do(t, router, http.MethodGet, "/api/debt/notices", nil))
	require.Len(t, notices, 1)
	assert.Equal(t, "2025-05", notices[0].Month)
	assert.Equal(t, "2025-05-15", notices[0].CheckedAt)
	assert.Positive(t, notices[0].DebtMinutes)
}

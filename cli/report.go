package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/pontaj/diagnostics"
	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		mf         monthFlags
		calendarID string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the month summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			target, err := mf.resolve(a.today())
			if err != nil {
				return err
			}
			cal, err := a.calendar(ctx, calendarID)
			if err != nil {
				return err
			}
			s, err := a.engine.ComputeForCalendar(ctx, cal.ID, target)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			return writeSummary(cmd.OutOrStdout(), cal, target, s)
		},
	}
	mf.bind(cmd)
	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar id (default: active)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func writeSummary(w io.Writer, cal timesheet.Calendar, target generic.Month, s timesheet.MonthSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", cal.Name, target)
	rows := []struct {
		label   string
		minutes int
	}{
		{"Expected (FTL)", s.TotalFTL},
		{"Logged (OL)", s.TotalOL},
		{"Weekend", s.TotalWeekend},
		{"Surplus month (OS)", s.OSMonth},
		{"Surplus total", s.OSTotal},
		{"CS month", s.CSMonth},
		{"CS total", s.CSTotal},
		{"CS balance", s.CSBalance},
		{"Debt due", s.OSDebt90d},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", r.label, timesheet.FormatMinutes(r.minutes), r.minutes)
	}
	fmt.Fprintf(tw, "Workdays logged\t%d\n", s.WorkDays)
	return tw.Flush()
}

func newBreakdownCmd(a *app) *cobra.Command {
	var (
		mf         monthFlags
		calendarID string
	)

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Show entries and cumulative months behind a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := mf.resolve(a.today())
			if err != nil {
				return err
			}
			cal, err := a.calendar(cmd.Context(), calendarID)
			if err != nil {
				return err
			}
			return diagnostics.Inspect(cal, target, nil).WriteText(cmd.OutOrStdout())
		},
	}
	mf.bind(cmd)
	cmd.Flags().StringVar(&calendarID, "calendar", "", "Calendar id (default: active)")
	return cmd
}

func newDurationCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:     "duration START END",
		Short:   "Compute a shift length; an END before START crosses midnight",
		Example: "  pontaj duration 18:45 07:15",
		Args:    cobra.ExactArgs(2),
		// No database needed.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range args {
				if _, err := timesheet.ParseClock(v); err != nil {
					return err
				}
			}
			minutes := timesheet.ComputeDuration(args[0], args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d min)\n", timesheet.FormatMinutes(minutes), minutes)
			return nil
		},
	}
}

func newHolidaysCmd(a *app) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:                "holidays",
		Short:              "List public holidays of a year",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = a.today().Year()
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, h := range timesheet.NewDayClassifier(nil).Holidays(year) {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Date, h.Date.Weekday().String()[:3], h.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year (default: current)")
	return cmd
}

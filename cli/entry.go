package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/pontaj/generic"
	"github.com/warp/pontaj/timesheet"
)

func newEntryCmd(a *app) *cobra.Command {
	var calendarID string

	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Log and inspect day entries",
	}
	cmd.PersistentFlags().StringVar(&calendarID, "calendar", "", "Calendar id (default: active)")

	var shifts []string
	set := &cobra.Command{
		Use:   "set DATE",
		Short: "Replace the entry of a day",
		Long: `Replace the entry of a day with the given shifts. Each --shift is TYPE or
TYPE=HH:MM-HH:MM, TYPE one of day, night, cs, other. Without times the
defaults of the type are used. No --shift records a day without work.`,
		Example: `  pontaj entry set 2025-05-05 --shift night
  pontaj entry set 2025-05-06 --shift cs=08:00-12:00 --shift other=13:00-15:30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			day, err := generic.ParseDay(args[0])
			if err != nil {
				return err
			}
			entry, err := parseEntry(day, shifts)
			if err != nil {
				return err
			}
			cal, err := a.calendar(ctx, calendarID)
			if err != nil {
				return err
			}
			if err := a.store.UpsertEntry(ctx, cal.ID, entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", day, timesheet.FormatMinutes(entry.TotalMinutes().Round()))
			return nil
		},
	}
	set.Flags().StringArrayVar(&shifts, "shift", nil, "Shift as TYPE or TYPE=HH:MM-HH:MM (repeatable)")

	rm := &cobra.Command{
		Use:   "rm DATE",
		Short: "Remove the entry of a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			day, err := generic.ParseDay(args[0])
			if err != nil {
				return err
			}
			cal, err := a.calendar(ctx, calendarID)
			if err != nil {
				return err
			}
			return a.store.RemoveEntry(ctx, cal.ID, day)
		},
	}

	var month string
	list := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cal, err := a.calendar(ctx, calendarID)
			if err != nil {
				return err
			}

			var only *generic.Month
			if month != "" {
				m, err := generic.ParseMonth(month)
				if err != nil {
					return err
				}
				only = &m
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range cal.Entries {
				if only != nil && !only.Contains(e.Date) {
					continue
				}
				parts := make([]string, 0, len(e.Shifts))
				for _, s := range e.Shifts {
					parts = append(parts, fmt.Sprintf("%s %s-%s", s.Type, s.StartTime, s.EndTime))
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", e.Date, e.Date.Weekday().String()[:3], e.TotalMinutes().Round(), strings.Join(parts, ", "))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&month, "month", "", "Only entries of a month (YYYY-MM)")

	cmd.AddCommand(set, rm, list)
	return cmd
}

// parseEntry builds a day entry from --shift values.
func parseEntry(day generic.Day, values []string) (timesheet.DayEntry, error) {
	entry := timesheet.DayEntry{Date: day, Shifts: make([]timesheet.Shift, 0, len(values))}
	for i, v := range values {
		shift, err := parseShift(v)
		if err != nil {
			return timesheet.DayEntry{}, &generic.ShiftError{Date: day, Index: i, Err: err}
		}
		entry.Shifts = append(entry.Shifts, shift)
	}
	return entry, nil
}

func parseShift(v string) (timesheet.Shift, error) {
	tag, span, hasTimes := strings.Cut(v, "=")
	t, err := timesheet.ParseShiftType(tag)
	if err != nil {
		return timesheet.Shift{}, err
	}

	start, end := t.DefaultTimes()
	if hasTimes {
		var ok bool
		start, end, ok = strings.Cut(span, "-")
		if !ok {
			return timesheet.Shift{}, fmt.Errorf("%w: %q", generic.ErrInvalidTime, span)
		}
	}
	if _, err := timesheet.ParseClock(start); err != nil {
		return timesheet.Shift{}, err
	}
	if _, err := timesheet.ParseClock(end); err != nil {
		return timesheet.Shift{}, err
	}
	return timesheet.NewShift(t, start, end), nil
}

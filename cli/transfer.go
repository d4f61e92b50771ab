package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/pontaj/factory"
	"github.com/warp/pontaj/timesheet"
)

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every calendar as a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := a.store.ListCalendars(ctx)
			if err != nil {
				return err
			}
			calendars := make([]timesheet.Calendar, 0, len(list))
			for _, c := range list {
				full, err := a.store.GetCalendar(ctx, c.ID)
				if err != nil {
					return err
				}
				calendars = append(calendars, full)
			}
			active, err := a.store.GetActiveCalendarID(ctx)
			if err != nil {
				return err
			}

			data, err := factory.EncodeCalendars(calendars, active)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Load calendars from a JSON document, replacing calendars with the same id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := factory.DecodeCalendars(data)
			if err != nil {
				return err
			}

			for _, cal := range doc.Calendars {
				if err := a.store.PutCalendar(ctx, cal); err != nil {
					return fmt.Errorf("store %s: %w", cal.ID, err)
				}
			}
			if doc.Active != "" {
				if err := a.store.SetActiveCalendar(ctx, doc.Active); err != nil {
					return err
				}
			}
			active, err := timesheet.EnsureActiveCalendar(ctx, a.store)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d calendar(s), active: %s\n", len(doc.Calendars), active.Name)
			return nil
		},
	}
}

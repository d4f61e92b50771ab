package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCalendarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Manage calendars",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List calendars, the active one marked with *",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				calendars, err := a.store.ListCalendars(ctx)
				if err != nil {
					return err
				}
				active, err := a.store.GetActiveCalendarID(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, c := range calendars {
					mark := " "
					if c.ID == active {
						mark = "*"
					}
					fmt.Fprintf(tw, "%s %s\t%s\n", mark, c.Name, c.ID)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a calendar and make it active",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cal, err := a.store.CreateCalendar(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", cal.Name, cal.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "use ID",
			Short: "Switch the active calendar",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.store.SetActiveCalendar(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "active calendar: %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename ID NAME",
			Short: "Rename a calendar",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.store.RenameCalendar(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a calendar and its entries",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.store.DeleteCalendar(cmd.Context(), args[0])
			},
		},
	)
	return cmd
}

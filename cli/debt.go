package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/pontaj/api"
	"github.com/warp/pontaj/timesheet"
)

func newDebtCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debt",
		Short: "Overtime debt notices",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "check",
			Short: "Record a notice for every calendar with debt due this month",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := api.RecordDebtNotices(cmd.Context(), a.store, a.engine, a.today())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d notice(s) recorded for %s\n", n, a.today().MonthOf())
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List recorded notices",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				notices, err := a.store.ListDebtNotices(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, n := range notices {
					fmt.Fprintf(tw, "%s\t%s\t%s\tchecked %s\n", n.Month, n.CalendarID, timesheet.FormatMinutes(n.DebtMinutes), n.CheckedAt)
				}
				return tw.Flush()
			},
		},
	)
	return cmd
}

func newScenarioCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Demo data",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:                "list",
			Short:              "List demo scenarios",
			Args:               cobra.NoArgs,
			PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
			PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
			RunE: func(cmd *cobra.Command, args []string) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, s := range api.Scenarios() {
					fmt.Fprintf(tw, "%s\t%s\n", s.ID, s.Description)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "load ID",
			Short: "Replace all data with a demo scenario",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := api.LoadScenario(cmd.Context(), a.store, args[0], a.today()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "loaded %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

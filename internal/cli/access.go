package cli

import (
	"github.com/spf13/cobra"
)

func newCheckInCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkin <uuid>",
		Short: "Check an attendee into a talk",
		Long: `Check an attendee into a talk. The session and site default to the
station's --session and --sede.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"uuid": args[0]}
			var result WriteResult

			if err := client.Post("/api/checkin", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	return cmd
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show event totals and check-ins per session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Dashboard

			if err := client.Get("/api/dashboard", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

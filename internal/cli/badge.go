package cli

import (
	"github.com/spf13/cobra"
)

func newPayCmd() *cobra.Command {
	var medio string

	cmd := &cobra.Command{
		Use:   "pay <uuid>",
		Short: "Mark an attendee as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"uuid": args[0], "medio": medio}
			var result WriteResult

			if err := client.Post("/api/pay", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&medio, "medio", "", "Payment method (default: efectivo)")

	return cmd
}

func newPrintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print <uuid>",
		Short: "Record that an attendee's badge was printed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"uuid": args[0]}
			var result PrintResult

			if err := client.Post("/api/print", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "registroctl",
		Short: "CLI tool for the event registration API",
		Long: `registroctl talks to the event registration JSON API.

It covers registration, bulk import, lookups, payment, badge printing,
talk check-ins and the dashboard. Station headers can be set with flags
or environment variables so a terminal can act as any kiosk.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.Station(), cfg.AdminToken)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: REGISTRO_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminToken, "admin-token", cfg.AdminToken, "Admin token for import (env: REGISTRO_ADMIN_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.Site, "sede", cfg.Site, "Station site (env: REGISTRO_SEDE)")
	rootCmd.PersistentFlags().StringVar(&cfg.Role, "rol", cfg.Role, "Station role (env: REGISTRO_ROL)")
	rootCmd.PersistentFlags().StringVar(&cfg.SessionID, "session", cfg.SessionID, "Station session id (env: REGISTRO_SESSION_ID)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newAttendeeCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newPayCmd())
	rootCmd.AddCommand(newPrintCmd())
	rootCmd.AddCommand(newCheckInCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

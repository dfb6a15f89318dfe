// Package root contains the root command for the application
package root

import (
	"fjacquet/txn-recon/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "txn-recon",
		Short: "Reconcile unexplained ledger entries against a paginated transaction history.",
		Long: `txn-recon pairs unknown ledger entries (amount + date) against the
externally rendered transaction history, page by page, and retrieves the
order document for every match.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
			Log = config.ConfigureLogging()
		},
	}

	// DryRun disables side effects for the reconcile command.
	DryRun bool
)

// Init initializes the root command flags.
func Init() {
	Cmd.PersistentFlags().BoolVar(&DryRun, "dry-run", false, "Log intended actions without performing them")
}

// Package reconcile implements the reconcile command: one full matching pass
// over the transaction listing.
package reconcile

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"fjacquet/txn-recon/cmd/root"
	"fjacquet/txn-recon/internal/config"
	"fjacquet/txn-recon/internal/dispatch"
	"fjacquet/txn-recon/internal/extract"
	"fjacquet/txn-recon/internal/ledger"
	"fjacquet/txn-recon/internal/logging"
	"fjacquet/txn-recon/internal/pagesource"
	"fjacquet/txn-recon/internal/reconciler"
	"fjacquet/txn-recon/internal/report"

	"github.com/spf13/cobra"
)

var (
	ledgerFile string
	pagesDir   string
)

// Cmd represents the reconcile command
var Cmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match unknown ledger entries against the transaction history",
	Long: `Reads unknown ledger entries from a CSV or YAML file, streams the
transaction history page by page and retrieves the order document for every
match. Unmatched entries are written to the residual report.`,
	RunE: reconcileFunc,
}

func init() {
	Cmd.Flags().StringVarP(&ledgerFile, "ledger", "l", "", "Ledger file with unknown entries (.csv, .yaml)")
	Cmd.Flags().StringVarP(&pagesDir, "pages", "p", "", "Directory of rendered listing pages")
	_ = Cmd.MarkFlagRequired("ledger")
	_ = Cmd.MarkFlagRequired("pages")
}

func reconcileFunc(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.InitializeConfig()
	if err != nil {
		return err
	}
	config.ApplyLogConfig(root.Log, cfg)
	logger := logging.NewLogrusAdapterFromLogger(root.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := Options{
		LedgerFile: ledgerFile,
		PagesDir:   pagesDir,
		DryRun:     root.DryRun,
	}
	return Execute(ctx, cfg, opts, logger, cmd.OutOrStdout())
}

// Options carries the per-invocation inputs of one reconcile run.
type Options struct {
	LedgerFile string
	PagesDir   string
	DryRun     bool
}

// Execute runs one reconciliation pass and writes the reports. On a fatal
// mid-stream error the reports still reflect everything accumulated so far,
// and the error is returned for a non-zero exit.
func Execute(ctx context.Context, cfg *config.Config, opts Options, logger logging.Logger, out io.Writer) error {
	entries, err := ledger.Load(opts.LedgerFile)
	if err != nil {
		return err
	}
	logger.WithField(logging.FieldCount, len(entries)).Info("Loaded unknown ledger entries")

	opener := &pagesource.FileListing{Dir: opts.PagesDir}
	stream, err := extract.Open(ctx, opener, extract.Config{
		MinPageSpacing: cfg.Extract.MinPageSpacing,
		ReadyTimeout:   cfg.Extract.ReadyTimeout,
	}, logger)
	if err != nil {
		return err
	}

	var dispatcher dispatch.Dispatcher
	var retriever *dispatch.Retriever
	if opts.DryRun {
		dispatcher = dispatch.NewLogDispatcher(logger)
	} else {
		var printer dispatch.Printer
		if cfg.Dispatch.PrintEnabled {
			printer = &dispatch.CommandPrinter{}
		}
		retriever = dispatch.NewRetriever(
			&dispatch.HTTPDocumentSource{},
			nil,
			printer,
			dispatch.NewWorkdir(cfg.Dispatch.OrderDir),
			dispatch.RetrieverConfig{RePrint: cfg.Dispatch.RePrint},
			logger,
		)
		dispatcher = retriever
	}

	matcher := reconciler.New(reconciler.Config{
		ProximityDays:          cfg.Recon.ProximityDays,
		HorizonDays:            cfg.Recon.HorizonDays,
		ExcludedPaymentMethods: cfg.Recon.ExcludedPaymentMethods,
	}, dispatcher, logger)

	result, runErr := matcher.Run(ctx, stream, entries)

	if retriever != nil {
		_ = retriever.Close()
	}

	generator := report.NewGenerator(logger)
	if err := generator.WriteMatchLog(cfg.Report.MatchLogFile, result.Matches); err != nil {
		logger.WithError(err).Error("Failed to write match log")
	}
	if err := generator.WriteResidual(cfg.Report.ResidualFile, result.Residual); err != nil {
		logger.WithError(err).Error("Failed to write residual report")
	}
	fmt.Fprint(out, report.Summarize(result))

	return runErr
}

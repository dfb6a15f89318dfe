// Package fetch implements the fetch command: retrieve the document for one
// order identifier without a reconciliation pass.
package fetch

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"fjacquet/txn-recon/cmd/root"
	"fjacquet/txn-recon/internal/config"
	"fjacquet/txn-recon/internal/dispatch"
	"fjacquet/txn-recon/internal/logging"
	"fjacquet/txn-recon/internal/orderid"

	"github.com/spf13/cobra"
)

// Cmd represents the fetch command
var Cmd = &cobra.Command{
	Use:   "fetch <order-id>",
	Short: "Retrieve the document for a single order",
	Args:  cobra.ExactArgs(1),
	RunE:  fetchFunc,
}

func fetchFunc(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	id := args[0]
	if !orderid.IsValid(id) {
		return fmt.Errorf("invalid order identifier: %s", id)
	}

	cfg, err := config.InitializeConfig()
	if err != nil {
		return err
	}
	config.ApplyLogConfig(root.Log, cfg)
	logger := logging.NewLogrusAdapterFromLogger(root.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var printer dispatch.Printer
	if cfg.Dispatch.PrintEnabled {
		printer = &dispatch.CommandPrinter{}
	}
	retriever := dispatch.NewRetriever(
		&dispatch.HTTPDocumentSource{},
		nil,
		printer,
		dispatch.NewWorkdir(cfg.Dispatch.OrderDir),
		dispatch.RetrieverConfig{RePrint: true},
		logger,
	)
	defer func() {
		_ = retriever.Close()
	}()

	return retriever.Dispatch(ctx, id)
}

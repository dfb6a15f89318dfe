package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"fjacquet/txn-recon/internal/logging"
	"fjacquet/txn-recon/internal/orderid"
	"fjacquet/txn-recon/internal/reconerror"
)

// DocumentSource fetches the printable artifact for one order document URL.
// The rendering surface behind it (authenticated browser session, selectors)
// is outside this package.
type DocumentSource interface {
	FetchOrderDocument(ctx context.Context, url string) ([]byte, error)
}

// Annotator lets a human annotate a document before it is finalized. The wait
// is human-controlled; implementations must not assume any timeout.
type Annotator interface {
	Annotate(ctx context.Context, document []byte) ([]byte, error)
}

// Printer sends a finished artifact to the local print spooler.
type Printer interface {
	Print(path string) error
}

// RetrieverConfig tunes the document retriever.
type RetrieverConfig struct {
	// RePrint sends an already-retrieved document to the printer again
	// instead of skipping it.
	RePrint bool
}

// Retriever is the production Dispatcher: it fetches the order document,
// passes it through the optional annotation step, stores it in the owned
// working directory and hands it to the printer. Print jobs run in the
// background and are drained by Close.
type Retriever struct {
	source    DocumentSource
	annotator Annotator // optional
	printer   Printer   // optional
	workdir   *Workdir
	cfg       RetrieverConfig
	logger    logging.Logger
	prints    sync.WaitGroup
}

// NewRetriever wires a Retriever. annotator and printer may be nil.
func NewRetriever(source DocumentSource, annotator Annotator, printer Printer, workdir *Workdir, cfg RetrieverConfig, logger logging.Logger) *Retriever {
	return &Retriever{
		source:    source,
		annotator: annotator,
		printer:   printer,
		workdir:   workdir,
		cfg:       cfg,
		logger:    logger.WithField(logging.FieldComponent, "retriever"),
	}
}

// Dispatch retrieves the document for orderID. A document already present in
// the working directory is not refetched; it is printed again only when
// RePrint is set.
func (r *Retriever) Dispatch(ctx context.Context, orderID string) error {
	url, err := orderid.DocumentURL(orderID)
	if err != nil {
		return &reconerror.ActionFailedError{OrderID: orderID, Err: err}
	}

	dir, err := r.workdir.Path()
	if err != nil {
		return &reconerror.ActionFailedError{OrderID: orderID, Err: err}
	}
	path := filepath.Join(dir, "order-"+orderID+".pdf")

	if _, err := os.Stat(path); err == nil {
		r.logger.WithField(logging.FieldOrderID, orderID).Debug("Document already retrieved")
		if r.cfg.RePrint {
			r.print(path)
		}
		return nil
	}

	document, err := r.source.FetchOrderDocument(ctx, url)
	if err != nil {
		return &reconerror.ActionFailedError{OrderID: orderID, Err: err}
	}

	if r.annotator != nil {
		// Human-in-the-loop step; blocks for as long as the human takes.
		document, err = r.annotator.Annotate(ctx, document)
		if err != nil {
			return &reconerror.ActionFailedError{OrderID: orderID, Err: err}
		}
	}

	if err := os.WriteFile(path, document, 0o644); err != nil {
		return &reconerror.ActionFailedError{OrderID: orderID, Err: err}
	}
	r.logger.WithFields(
		logging.Field{Key: logging.FieldOrderID, Value: orderID},
		logging.Field{Key: logging.FieldFile, Value: path},
	).Info("Order document retrieved")

	r.print(path)
	return nil
}

// print hands the artifact to the spooler in the background. Print errors are
// logged, never returned: the document on disk is the primary outcome.
func (r *Retriever) print(path string) {
	if r.printer == nil {
		return
	}
	r.prints.Add(1)
	go func() {
		defer r.prints.Done()
		if err := r.printer.Print(path); err != nil {
			r.logger.WithError(err).WithField(logging.FieldFile, path).Error("Printing failed")
		}
	}()
}

// Close waits for pending print jobs to drain.
func (r *Retriever) Close() error {
	r.prints.Wait()
	return nil
}

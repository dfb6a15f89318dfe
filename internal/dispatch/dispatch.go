// Package dispatch triggers the external per-order side effect: retrieving
// the printable order document and, optionally, handing it to the local print
// spooler. Failures here are reported to the matcher, which logs them and
// never aborts the pass.
package dispatch

import (
	"context"
	"sync"

	"fjacquet/txn-recon/internal/logging"
)

// Dispatcher triggers the side effect for one matched order identifier.
type Dispatcher interface {
	Dispatch(ctx context.Context, orderID string) error
}

// LogDispatcher records the order identifiers it is asked to act on without
// performing any side effect. It backs dry runs and tests; Dispatch may be
// called from multiple goroutines.
type LogDispatcher struct {
	mu     sync.Mutex
	orders []string
	logger logging.Logger
}

// NewLogDispatcher creates a LogDispatcher logging through the given logger.
func NewLogDispatcher(logger logging.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Dispatch records the order identifier and logs it.
func (d *LogDispatcher) Dispatch(ctx context.Context, orderID string) error {
	d.mu.Lock()
	d.orders = append(d.orders, orderID)
	d.mu.Unlock()
	d.logger.WithField(logging.FieldOrderID, orderID).Info("Dry run: would retrieve order document")
	return nil
}

// Orders returns a snapshot of the dispatched order identifiers.
func (d *LogDispatcher) Orders() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.orders))
	copy(out, d.orders)
	return out
}

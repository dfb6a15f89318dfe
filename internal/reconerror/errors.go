// Package reconerror defines the error taxonomy of a reconciliation run.
package reconerror

import "fmt"

// SourceUnavailableError reports that the transaction listing never became
// ready within the bounded initial wait. It is fatal to the run.
type SourceUnavailableError struct {
	Stage string
	Err   error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("transaction listing unavailable (%s): %v", e.Stage, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// MalformedSourceError reports that a page of the listing violated the
// expected structural grammar. The whole page is rejected; it is fatal to the
// extraction sequence.
type MalformedSourceError struct {
	Detail string
	Err    error
}

func (e *MalformedSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed transaction listing: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("malformed transaction listing: %s", e.Detail)
}

func (e *MalformedSourceError) Unwrap() error {
	return e.Err
}

// ActionFailedError reports that the per-order side effect failed. It is
// logged by the matcher and never aborts the pass.
type ActionFailedError struct {
	OrderID string
	Err     error
}

func (e *ActionFailedError) Error() string {
	return fmt.Sprintf("action failed for order %s: %v", e.OrderID, e.Err)
}

func (e *ActionFailedError) Unwrap() error {
	return e.Err
}

// Package orderid recognizes the two order identifier shapes the transaction
// listing produces and builds the per-shape document URLs.
package orderid

import (
	"fmt"
	"regexp"
)

var (
	merchandisePattern = regexp.MustCompile(`^\d{3}-\d{7}-\d{7}$`)
	digitalPattern     = regexp.MustCompile(`^D\d{2}-\d{7}-\d{7}$`)
)

// Document URL bases for the printable order summary, per shape.
const (
	merchandiseDocumentURL = "https://www.amazon.com/gp/css/summary/print.html?orderID="
	digitalDocumentURL     = "https://www.amazon.com/gp/digital/your-account/order-summary.html?print=1&orderID="
)

// IsMerchandise reports whether id has the merchandise order shape.
func IsMerchandise(id string) bool {
	return merchandisePattern.MatchString(id)
}

// IsDigital reports whether id has the digital order shape.
func IsDigital(id string) bool {
	return digitalPattern.MatchString(id)
}

// IsValid reports whether id matches either recognized shape.
func IsValid(id string) bool {
	return IsMerchandise(id) || IsDigital(id)
}

// DocumentURL returns the printable document URL for the given order
// identifier, or an error if the identifier matches neither shape.
func DocumentURL(id string) (string, error) {
	switch {
	case IsDigital(id):
		return digitalDocumentURL + id, nil
	case IsMerchandise(id):
		return merchandiseDocumentURL + id, nil
	default:
		return "", fmt.Errorf("invalid order identifier: %s", id)
	}
}

// Package models provides the data structures used throughout the application.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the completion state of a transaction as rendered by the source.
type Status string

// Transaction statuses recognized in the listing's status headings.
const (
	StatusCompleted  Status = "Completed"
	StatusInProgress Status = "In Progress"
)

// TransactionRecord is one parsed line item from the external paginated
// transaction history. Records are immutable once produced; ordering in the
// stream is reverse-chronological page by page.
type TransactionRecord struct {
	Date          time.Time       // calendar date, source-local, no time of day
	Amount        decimal.Decimal // signed; negative means a charge was refunded
	PaymentMethod string
	OrderID       string // one of the two recognized order identifier shapes
	Merchant      string // free text, may be empty
	Status        Status
}

// ParseAmount converts a rendered amount string ("-$1,234.56") to a decimal.
// Currency symbols, spaces and thousand separators are stripped; the sign is
// preserved.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	amount := strings.TrimSpace(amountStr)
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, "$", "")
	amount = strings.ReplaceAll(amount, "€", "")
	amount = strings.ReplaceAll(amount, ",", "")

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}
	return dec, nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownEntry is a ledger line the caller cannot yet explain, identified only
// by amount and date. The amount follows the ledger sign convention: a debit
// that corresponds to a source charge is the charge's negation.
type UnknownEntry struct {
	Amount decimal.Decimal
	Date   time.Time
}

// MatchEvent pairs one TransactionRecord with the UnknownEntry it consumed
// from the pool.
type MatchEvent struct {
	OrderID      string
	RecordDate   time.Time
	RecordAmount decimal.Decimal
	Entry        UnknownEntry
}

// ResidualEntry is an unknown entry left unmatched at the end of a pass,
// reported with the closest same-amount record seen anywhere in the stream.
// Closest is purely informational (any date) and may be nil.
type ResidualEntry struct {
	Entry     UnknownEntry
	Closest   *TransactionRecord
	DaysApart int
}

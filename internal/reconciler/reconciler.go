// Package reconciler pairs unexplained ledger entries against the record
// stream in a single online pass. It owns the mutable pool of unknown
// entries, the per-run dispatch dedup set and the early-termination policy.
package reconciler

import (
	"context"
	"sync"
	"time"

	"fjacquet/txn-recon/internal/dateutils"
	"fjacquet/txn-recon/internal/dispatch"
	"fjacquet/txn-recon/internal/logging"
	"fjacquet/txn-recon/internal/models"

	"github.com/google/uuid"
)

// Default matching windows. Both are tunable slack, not load-bearing.
const (
	DefaultProximityDays = 6
	DefaultHorizonDays   = 7
)

// Stream is the pull interface the matcher consumes. The extractor satisfies
// it; tests substitute scripted streams.
type Stream interface {
	Next(ctx context.Context) bool
	Record() models.TransactionRecord
	Err() error
	Close() error
}

// Config carries the matching policy of one pass.
type Config struct {
	// ProximityDays bounds how far apart (strictly) a record and a ledger
	// entry may be and still match.
	ProximityDays int

	// HorizonDays is the age horizon: once a record is more than this much
	// older than the oldest unknown entry, the pass stops. The listing is
	// newest-first, so nothing beyond can match.
	HorizonDays int

	// ExcludedPaymentMethods are payment methods the caller reconciles
	// through another channel; records using them are never matched.
	ExcludedPaymentMethods []string
}

func (c Config) withDefaults() Config {
	if c.ProximityDays <= 0 {
		c.ProximityDays = DefaultProximityDays
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = DefaultHorizonDays
	}
	return c
}

// Result is the outcome of one pass. On a fatal mid-stream error it still
// carries the matches accumulated so far; dispatched side effects are already
// irreversible.
type Result struct {
	RunID       string
	Matches     []models.MatchEvent
	Residual    []models.ResidualEntry
	RecordsSeen int
}

// Matcher drives one reconciliation pass.
type Matcher struct {
	cfg        Config
	dispatcher dispatch.Dispatcher
	logger     logging.Logger
}

// New creates a Matcher with the given policy and side-effect dispatcher.
func New(cfg Config, dispatcher dispatch.Dispatcher, logger logging.Logger) *Matcher {
	return &Matcher{
		cfg:        cfg.withDefaults(),
		dispatcher: dispatcher,
		logger:     logger.WithField(logging.FieldComponent, "reconciler"),
	}
}

// Run consumes the stream until the pool drains, the age horizon triggers or
// the stream ends. The stream is always closed before Run returns, and all
// in-flight dispatches are drained.
func (m *Matcher) Run(ctx context.Context, stream Stream, entries []models.UnknownEntry) (*Result, error) {
	defer func() {
		_ = stream.Close()
	}()

	result := &Result{RunID: uuid.NewString()}
	log := m.logger.WithField(logging.FieldRunID, result.RunID)

	pool := make([]models.UnknownEntry, len(entries))
	copy(pool, entries)
	if len(pool) == 0 {
		log.Info("No unknown entries, nothing to reconcile")
		result.Residual = []models.ResidualEntry{}
		return result, nil
	}

	// Fixed for the run: the oldest thing we could still be looking for.
	oldest := pool[0].Date
	for _, e := range pool[1:] {
		if e.Date.Before(oldest) {
			oldest = e.Date
		}
	}

	horizon := time.Duration(m.cfg.HorizonDays) * dateutils.Day
	dispatched := make(map[string]struct{})
	var seen []models.TransactionRecord

	var dispatches sync.WaitGroup
	defer dispatches.Wait()

	for len(pool) > 0 && stream.Next(ctx) {
		record := stream.Record()
		seen = append(seen, record)

		if record.Status != models.StatusCompleted {
			continue
		}
		if m.isExcluded(record.PaymentMethod) {
			continue
		}

		if dateutils.Delta(oldest, record.Date) > horizon {
			log.WithFields(
				logging.Field{Key: logging.FieldDate, Value: dateutils.FormatDate(record.Date, "")},
				logging.Field{Key: logging.FieldOrderID, Value: record.OrderID},
			).Debug("Record is past the age horizon, stopping the pass")
			break
		}

		ci := m.closestCandidate(pool, record)
		if ci < 0 {
			log.WithFields(
				logging.Field{Key: logging.FieldOrderID, Value: record.OrderID},
				logging.Field{Key: logging.FieldDate, Value: dateutils.FormatDate(record.Date, "")},
				logging.Field{Key: logging.FieldAmount, Value: record.Amount.String()},
			).Info("No ledger entry matches record")
			continue
		}

		entry := pool[ci]
		pool = append(pool[:ci], pool[ci+1:]...)
		result.Matches = append(result.Matches, models.MatchEvent{
			OrderID:      record.OrderID,
			RecordDate:   record.Date,
			RecordAmount: record.Amount,
			Entry:        entry,
		})
		log.WithFields(
			logging.Field{Key: logging.FieldOrderID, Value: record.OrderID},
			logging.Field{Key: logging.FieldDate, Value: dateutils.FormatDate(entry.Date, "")},
			logging.Field{Key: logging.FieldAmount, Value: entry.Amount.String()},
		).Info("Matched order against ledger entry")

		// Multi-line orders keep consuming pool entries, but the side effect
		// fires once per order identifier per run.
		if _, dup := dispatched[record.OrderID]; dup {
			log.WithField(logging.FieldOrderID, record.OrderID).Debug("Order already dispatched this run")
			continue
		}
		dispatched[record.OrderID] = struct{}{}

		dispatches.Add(1)
		go func(orderID string) {
			defer dispatches.Done()
			if err := m.dispatcher.Dispatch(ctx, orderID); err != nil {
				log.WithError(err).WithField(logging.FieldOrderID, orderID).Error("Action dispatch failed")
			}
		}(record.OrderID)
	}

	result.RecordsSeen = len(seen)
	result.Residual = buildResidual(pool, seen)

	if err := stream.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// isExcluded reports whether the payment method is reconciled elsewhere.
func (m *Matcher) isExcluded(method string) bool {
	for _, excluded := range m.cfg.ExcludedPaymentMethods {
		if method == excluded {
			return true
		}
	}
	return false
}

// closestCandidate returns the pool index of the entry whose sign-flipped
// amount equals the record's amount exactly and whose date is strictly inside
// the proximity window, preferring the smallest date distance. Ties keep the
// first remaining pool entry. Returns -1 when no entry qualifies.
func (m *Matcher) closestCandidate(pool []models.UnknownEntry, record models.TransactionRecord) int {
	best := -1
	var bestDist time.Duration
	for i, entry := range pool {
		if !entry.Amount.Neg().Equal(record.Amount) {
			continue
		}
		if !dateutils.WithinDays(entry.Date, record.Date, m.cfg.ProximityDays) {
			continue
		}
		dist := dateutils.AbsDelta(entry.Date, record.Date)
		if best < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

// buildResidual pairs each leftover entry with the closest same-amount record
// seen anywhere in the stream, date ignored. Purely informational, to help a
// human diagnose near-misses.
func buildResidual(pool []models.UnknownEntry, seen []models.TransactionRecord) []models.ResidualEntry {
	residual := make([]models.ResidualEntry, 0, len(pool))
	for _, entry := range pool {
		item := models.ResidualEntry{Entry: entry}
		var bestDist time.Duration
		for i := range seen {
			record := &seen[i]
			if !entry.Amount.Neg().Equal(record.Amount) {
				continue
			}
			dist := dateutils.AbsDelta(entry.Date, record.Date)
			if item.Closest == nil || dist < bestDist {
				closest := *record
				item.Closest = &closest
				bestDist = dist
			}
		}
		if item.Closest != nil {
			item.DaysApart = dateutils.DaysApart(entry.Date, item.Closest.Date)
		}
		residual = append(residual, item)
	}
	return residual
}

// Package extract turns the paginated transaction listing into a single
// pull-based stream of transaction records. Pagination, page-load races and
// inter-page pacing are hidden behind a scanner-shaped API.
package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fjacquet/txn-recon/internal/histparser"
	"fjacquet/txn-recon/internal/logging"
	"fjacquet/txn-recon/internal/models"
	"fjacquet/txn-recon/internal/pagesource"
	"fjacquet/txn-recon/internal/reconerror"
)

// Defaults for the extraction pacing policy. Both are configuration
// constants, not user input.
const (
	DefaultMinPageSpacing = 2 * time.Second
	DefaultReadyTimeout   = 15 * time.Second
)

// Config carries the pacing policy of one extraction pass.
type Config struct {
	// MinPageSpacing is the minimum interval between two next-page triggers.
	MinPageSpacing time.Duration

	// ReadyTimeout bounds every readiness wait. On the first page a timeout
	// is fatal (SourceUnavailable); on later pages it is treated as end of
	// data.
	ReadyTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MinPageSpacing <= 0 {
		c.MinPageSpacing = DefaultMinPageSpacing
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = DefaultReadyTimeout
	}
	return c
}

// pageEvent is the outcome of one background next-page transition.
type pageEvent struct {
	more bool
	err  error
}

// Extractor is a single-consumer pull stream of transaction records. While
// the consumer drains the current page's records, the next page transition is
// already being triggered and awaited in the background.
type Extractor struct {
	session pagesource.Session
	cfg     Config
	logger  logging.Logger

	bgCtx  context.Context
	cancel context.CancelFunc

	buf  []models.TransactionRecord
	idx  int
	cur  models.TransactionRecord
	page int

	pending     chan pageEvent
	lastTrigger time.Time
	bg          sync.WaitGroup

	done      bool
	err       error
	closeOnce sync.Once
	closeErr  error
}

// Open establishes the listing and parses its first page. It fails with
// SourceUnavailableError if the initial page never becomes ready within the
// configured bound.
func Open(ctx context.Context, opener pagesource.Opener, cfg Config, logger logging.Logger) (*Extractor, error) {
	cfg = cfg.withDefaults()

	session, err := opener.Open(ctx)
	if err != nil {
		return nil, &reconerror.SourceUnavailableError{Stage: "open", Err: err}
	}

	readyCtx, cancelReady := context.WithTimeout(ctx, cfg.ReadyTimeout)
	err = session.AwaitReady(readyCtx)
	cancelReady()
	if err != nil {
		_ = session.Close()
		return nil, &reconerror.SourceUnavailableError{Stage: "initial readiness", Err: err}
	}

	bgCtx, cancel := context.WithCancel(ctx)
	ex := &Extractor{
		session: session,
		cfg:     cfg,
		logger:  logger.WithField(logging.FieldComponent, "extractor"),
		bgCtx:   bgCtx,
		cancel:  cancel,
		page:    1,
	}

	if err := ex.loadPage(ctx); err != nil {
		_ = ex.Close()
		return nil, err
	}
	return ex, nil
}

// Next advances the stream to the next record. It returns false at the end of
// the sequence or on a terminal error; Err distinguishes the two. A page
// transition may happen inside Next, invisible to the caller.
func (ex *Extractor) Next(ctx context.Context) bool {
	if ex.done || ex.err != nil {
		return false
	}

	if ex.idx < len(ex.buf) {
		ex.cur = ex.buf[ex.idx]
		ex.idx++
		return true
	}

	if ex.pending == nil {
		ex.done = true
		return false
	}

	select {
	case ev := <-ex.pending:
		ex.pending = nil
		if ev.err != nil {
			if errors.Is(ev.err, context.Canceled) {
				ex.done = true
				return false
			}
			// A later page that never confirms readiness is treated as the
			// end of the listing rather than an error. This accepts a
			// truncation risk on transient slowness; see the residual report
			// for what was left unmatched.
			ex.logger.WithError(ev.err).WithField(logging.FieldPage, ex.page+1).
				Warn("Next page never became ready, treating as end of listing")
			ex.done = true
			return false
		}
		if !ev.more {
			ex.logger.WithField(logging.FieldPage, ex.page).Debug("No next-page control, listing exhausted")
			ex.done = true
			return false
		}
		ex.page++
		if err := ex.loadPage(ctx); err != nil {
			ex.err = err
			return false
		}
		return ex.Next(ctx)
	case <-ctx.Done():
		ex.err = ctx.Err()
		return false
	}
}

// Record returns the record produced by the last successful Next.
func (ex *Extractor) Record() models.TransactionRecord {
	return ex.cur
}

// Err returns the terminal error of the stream, nil on a natural end or after
// a consumer-initiated Close.
func (ex *Extractor) Err() error {
	return ex.err
}

// Close terminates extraction early. It is idempotent, cancels any in-flight
// page transition and waits for it to settle before releasing the session; no
// background work continues after it returns.
func (ex *Extractor) Close() error {
	ex.closeOnce.Do(func() {
		ex.cancel()
		ex.done = true
		ex.bg.Wait()
		ex.closeErr = ex.session.Close()
	})
	return ex.closeErr
}

// loadPage parses the currently loaded page into the record buffer and kicks
// off the next page transition in the background.
func (ex *Extractor) loadPage(ctx context.Context) error {
	content, err := ex.session.Content(ctx)
	if err != nil {
		return fmt.Errorf("reading page %d: %w", ex.page, err)
	}

	records, err := histparser.Parse(content)
	if err != nil {
		ex.logger.WithError(err).WithField(logging.FieldPage, ex.page).Error("Page rejected by structural grammar")
		return err
	}
	ex.logger.WithFields(
		logging.Field{Key: logging.FieldPage, Value: ex.page},
		logging.Field{Key: logging.FieldCount, Value: len(records)},
	).Debug("Parsed listing page")

	ex.buf = records
	ex.idx = 0
	ex.scheduleNext()
	return nil
}

// scheduleNext triggers the next-page control and awaits its readiness in the
// background, rate-limited against the previous trigger. The current page's
// records remain deliverable while this runs.
func (ex *Extractor) scheduleNext() {
	ch := make(chan pageEvent, 1)
	ex.pending = ch
	last := ex.lastTrigger

	// The event channel is buffered, so the goroutine always runs to
	// completion and Close can join it without a reader.
	ex.bg.Add(1)
	go func() {
		defer ex.bg.Done()
		if wait := ex.cfg.MinPageSpacing - time.Since(last); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ex.bgCtx.Done():
				ch <- pageEvent{err: ex.bgCtx.Err()}
				return
			}
		}

		// Ordered against the consumer's next read through the event channel.
		ex.lastTrigger = time.Now()
		more, err := ex.session.TriggerNextPage(ex.bgCtx)
		if err != nil {
			ch <- pageEvent{err: err}
			return
		}
		if !more {
			ch <- pageEvent{more: false}
			return
		}

		readyCtx, cancel := context.WithTimeout(ex.bgCtx, ex.cfg.ReadyTimeout)
		defer cancel()
		if err := ex.session.AwaitReady(readyCtx); err != nil {
			ch <- pageEvent{err: err}
			return
		}
		ch <- pageEvent{more: true}
	}()
}

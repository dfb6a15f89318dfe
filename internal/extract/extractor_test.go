package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fjacquet/txn-recon/internal/logging"
	"fjacquet/txn-recon/internal/models"
	"fjacquet/txn-recon/internal/pagesource"
	"fjacquet/txn-recon/internal/reconerror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingPage renders a minimal single-heading page with one completed line
// item per given order identifier, all on the same date.
func listingPage(date string, orderIDs ...string) string {
	items := ""
	for _, id := range orderIDs {
		items += fmt.Sprintf(`<div class="apx-transactions-line-item-component-container">
			<div><div><span>Visa ****1234</span></div><div><span>-$19.99</span></div></div>
			<div><div><div><a href="#">Order #%s</a></div></div></div>
			<div><div><div><span>Amazon.com</span></div></div></div>
		</div>`, id)
	}
	return fmt.Sprintf(`<html><body><div>
		<div class="apx-transactions-sleeve-header-container"><div><span>Completed</span></div></div>
		<div class="a-box"><div class="a-box-inner">
			<div class="apx-transaction-date-container"><span>%s</span></div>
			<div class="pmts-portal-component">%s</div>
		</div></div>
	</div></body></html>`, date, items)
}

func drain(t *testing.T, ex *Extractor) []models.TransactionRecord {
	t.Helper()
	var records []models.TransactionRecord
	for ex.Next(context.Background()) {
		records = append(records, ex.Record())
	}
	return records
}

func fastConfig() Config {
	return Config{MinPageSpacing: time.Millisecond, ReadyTimeout: 200 * time.Millisecond}
}

func TestExtractorStreamsAcrossPages(t *testing.T) {
	listing := &pagesource.ScriptedListing{Pages: []string{
		listingPage("March 11, 2024", "123-4567890-1234567", "234-5678901-2345678"),
		listingPage("March 8, 2024", "345-6789012-3456789"),
	}}

	ex, err := Open(context.Background(), listing, fastConfig(), logging.NewMockLogger())
	require.NoError(t, err)
	defer func() {
		_ = ex.Close()
	}()

	records := drain(t, ex)
	require.NoError(t, ex.Err())
	require.Len(t, records, 3)
	assert.Equal(t, "123-4567890-1234567", records[0].OrderID)
	assert.Equal(t, "234-5678901-2345678", records[1].OrderID)
	assert.Equal(t, "345-6789012-3456789", records[2].OrderID)
	assert.Equal(t, 8, records[2].Date.Day())
}

func TestExtractorTerminalPageEndsNormally(t *testing.T) {
	listing := &pagesource.ScriptedListing{Pages: []string{
		listingPage("March 11, 2024", "123-4567890-1234567"),
	}}

	ex, err := Open(context.Background(), listing, fastConfig(), logging.NewMockLogger())
	require.NoError(t, err)

	records := drain(t, ex)
	assert.Len(t, records, 1)
	assert.NoError(t, ex.Err())
	assert.False(t, ex.Next(context.Background()))

	require.NoError(t, ex.Close())
	assert.True(t, listing.Session.Closed())
}

func TestExtractorOpenFailure(t *testing.T) {
	listing := &pagesource.ScriptedListing{OpenErr: errors.New("listing gone")}

	_, err := Open(context.Background(), listing, fastConfig(), logging.NewMockLogger())
	require.Error(t, err)

	var unavailable *reconerror.SourceUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestExtractorInitialReadinessFailure(t *testing.T) {
	listing := &pagesource.ScriptedListing{
		Pages:           []string{listingPage("March 11, 2024", "123-4567890-1234567")},
		InitialReadyErr: errors.New("records never rendered"),
	}

	_, err := Open(context.Background(), listing, fastConfig(), logging.NewMockLogger())
	require.Error(t, err)

	var unavailable *reconerror.SourceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "initial readiness", unavailable.Stage)
	assert.True(t, listing.Session.Closed())
}

func TestExtractorMalformedPageIsFatal(t *testing.T) {
	listing := &pagesource.ScriptedListing{Pages: []string{
		listingPage("March 11, 2024", "123-4567890-1234567"),
		`<html><body><div class="apx-transactions-sleeve-header-container"><div><span>Bogus</span></div></div></body></html>`,
	}}

	ex, err := Open(context.Background(), listing, fastConfig(), logging.NewMockLogger())
	require.NoError(t, err)
	defer func() {
		_ = ex.Close()
	}()

	records := drain(t, ex)
	assert.Len(t, records, 1)

	var malformed *reconerror.MalformedSourceError
	require.ErrorAs(t, ex.Err(), &malformed)
}

func TestExtractorMalformedFirstPage(t *testing.T) {
	listing := &pagesource.ScriptedListing{Pages: []string{
		`<html><body><p>maintenance page</p></body></html>`,
	}}

	_, err := Open(context.Background(), listing, fastConfig(), logging.NewMockLogger())
	require.Error(t, err)

	var malformed *reconerror.MalformedSourceError
	assert.ErrorAs(t, err, &malformed)
	assert.True(t, listing.Session.Closed())
}

func TestExtractorReadinessTimeoutTreatedAsEnd(t *testing.T) {
	log := logging.NewMockLogger()
	listing := &pagesource.ScriptedListing{
		Pages: []string{
			listingPage("March 11, 2024", "123-4567890-1234567"),
			listingPage("March 8, 2024", "234-5678901-2345678"),
		},
		HangBeforePage: 2,
	}

	cfg := Config{MinPageSpacing: time.Millisecond, ReadyTimeout: 50 * time.Millisecond}
	ex, err := Open(context.Background(), listing, cfg, log)
	require.NoError(t, err)
	defer func() {
		_ = ex.Close()
	}()

	records := drain(t, ex)
	assert.Len(t, records, 1)
	assert.NoError(t, ex.Err(), "a hung later page ends the stream instead of failing it")
	assert.True(t, log.HasMessage("Next page never became ready, treating as end of listing"))
}

func TestExtractorCloseStopsStream(t *testing.T) {
	listing := &pagesource.ScriptedListing{Pages: []string{
		listingPage("March 11, 2024", "123-4567890-1234567", "234-5678901-2345678"),
		listingPage("March 8, 2024", "345-6789012-3456789"),
	}}

	ex, err := Open(context.Background(), listing, fastConfig(), logging.NewMockLogger())
	require.NoError(t, err)

	require.True(t, ex.Next(context.Background()))
	require.NoError(t, ex.Close())

	assert.False(t, ex.Next(context.Background()))
	assert.NoError(t, ex.Err())
	assert.True(t, listing.Session.Closed())

	// Close is idempotent.
	assert.NoError(t, ex.Close())
}

// slowTriggerListing serves one page through a session whose next-page
// trigger takes real time, the way a browser-backed session does.
type slowTriggerListing struct {
	page    string
	delay   time.Duration
	session *slowTriggerSession
}

func (l *slowTriggerListing) Open(ctx context.Context) (pagesource.Session, error) {
	l.session = &slowTriggerSession{page: l.page, delay: l.delay}
	return l.session, nil
}

type slowTriggerSession struct {
	page  string
	delay time.Duration

	mu                  sync.Mutex
	inTrigger           bool
	closedDuringTrigger bool
}

func (s *slowTriggerSession) Content(ctx context.Context) (string, error) {
	return s.page, nil
}

func (s *slowTriggerSession) TriggerNextPage(ctx context.Context) (bool, error) {
	s.mu.Lock()
	s.inTrigger = true
	s.mu.Unlock()

	time.Sleep(s.delay)

	s.mu.Lock()
	s.inTrigger = false
	s.mu.Unlock()
	return false, nil
}

func (s *slowTriggerSession) AwaitReady(ctx context.Context) error {
	return ctx.Err()
}

func (s *slowTriggerSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inTrigger {
		s.closedDuringTrigger = true
	}
	return nil
}

func (s *slowTriggerSession) triggerInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inTrigger
}

func TestExtractorCloseWaitsForInFlightTrigger(t *testing.T) {
	listing := &slowTriggerListing{
		page:  listingPage("March 11, 2024", "123-4567890-1234567"),
		delay: 150 * time.Millisecond,
	}

	ex, err := Open(context.Background(), listing, fastConfig(), logging.NewMockLogger())
	require.NoError(t, err)

	require.True(t, ex.Next(context.Background()))

	// Give the background goroutine time to enter the trigger call.
	time.Sleep(20 * time.Millisecond)
	require.True(t, listing.session.triggerInFlight())

	require.NoError(t, ex.Close())

	assert.False(t, listing.session.triggerInFlight(), "no background work after Close returns")
	assert.False(t, listing.session.closedDuringTrigger, "session released only once the trigger settled")
}

func TestExtractorPacesPageTriggers(t *testing.T) {
	spacing := 40 * time.Millisecond
	listing := &pagesource.ScriptedListing{Pages: []string{
		listingPage("March 11, 2024", "123-4567890-1234567"),
		listingPage("March 10, 2024", "234-5678901-2345678"),
		listingPage("March 9, 2024", "345-6789012-3456789"),
	}}

	cfg := Config{MinPageSpacing: spacing, ReadyTimeout: 200 * time.Millisecond}
	ex, err := Open(context.Background(), listing, cfg, logging.NewMockLogger())
	require.NoError(t, err)
	defer func() {
		_ = ex.Close()
	}()

	records := drain(t, ex)
	require.Len(t, records, 3)

	triggers := listing.Session.TriggerTimes()
	require.Len(t, triggers, 3) // two transitions plus the terminal probe
	for i := 1; i < len(triggers); i++ {
		gap := triggers[i].Sub(triggers[i-1])
		assert.GreaterOrEqual(t, gap, spacing-5*time.Millisecond, "trigger %d fired too soon", i)
	}
}

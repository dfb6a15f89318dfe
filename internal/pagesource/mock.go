package pagesource

import (
	"context"
	"sync"
	"time"
)

// ScriptedListing is a scripted Opener for tests. It serves a fixed sequence
// of page contents and can be told to fail at open, at the initial readiness
// wait, or at the transition to a given page.
type ScriptedListing struct {
	Pages []string

	OpenErr         error         // returned by Open
	InitialReadyErr error         // returned by the first AwaitReady
	ReadyDelay      time.Duration // applied to every AwaitReady
	HangBeforePage  int           // 1-based page index whose readiness wait never completes (0 = never)

	Session *ScriptedSession // populated by Open
}

// Open returns the scripted session, recording it for later inspection.
func (l *ScriptedListing) Open(ctx context.Context) (Session, error) {
	if l.OpenErr != nil {
		return nil, l.OpenErr
	}
	l.Session = &ScriptedSession{
		pages:           l.Pages,
		initialReadyErr: l.InitialReadyErr,
		readyDelay:      l.ReadyDelay,
		hangBeforePage:  l.HangBeforePage,
	}
	return l.Session, nil
}

// ScriptedSession is the Session produced by ScriptedListing. All exported
// accessors are safe to call while the extractor is running.
type ScriptedSession struct {
	mu              sync.Mutex
	pages           []string
	idx             int
	advancing       bool
	hangPending     bool
	initialReadyErr error
	readyDelay      time.Duration
	hangBeforePage  int

	triggerTimes []time.Time
	closed       bool
}

func (s *ScriptedSession) Content(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[s.idx], nil
}

func (s *ScriptedSession) TriggerNextPage(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggerTimes = append(s.triggerTimes, time.Now())
	if s.idx+1 >= len(s.pages) {
		return false, nil
	}
	s.advancing = true
	if s.hangBeforePage > 0 && s.idx+2 >= s.hangBeforePage {
		s.hangPending = true
	}
	return true, nil
}

func (s *ScriptedSession) AwaitReady(ctx context.Context) error {
	s.mu.Lock()
	delay := s.readyDelay
	hang := s.hangPending
	initialErr := s.initialReadyErr
	advancing := s.advancing
	s.initialReadyErr = nil
	s.mu.Unlock()

	if !advancing && initialErr != nil {
		return initialErr
	}
	if hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	if s.advancing {
		s.idx++
		s.advancing = false
	}
	s.mu.Unlock()
	return nil
}

func (s *ScriptedSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (s *ScriptedSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// TriggerTimes returns the instants at which next-page triggers were fired.
func (s *ScriptedSession) TriggerTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.triggerTimes))
	copy(out, s.triggerTimes)
	return out
}

// CurrentPage returns the zero-based index of the page the session is on.
func (s *ScriptedSession) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx
}

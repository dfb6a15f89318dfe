// Package pagesource defines the ports through which the extractor reaches the
// externally rendered, paginated transaction listing. The rendering surface
// itself (browser automation, selectors, login) lives entirely behind these
// interfaces.
package pagesource

import "context"

// Opener establishes the initial view of the transaction listing.
type Opener interface {
	// Open returns a session positioned on the first page of the listing.
	// The caller is responsible for bounding the initial readiness wait.
	Open(ctx context.Context) (Session, error)
}

// Session is one exclusive connection to the listing. It is owned by a single
// extractor for the duration of one pass and must not be shared.
type Session interface {
	// Content returns the markup of the currently loaded page.
	Content(ctx context.Context) (string, error)

	// TriggerNextPage activates the next-page control. It returns false when
	// no such control exists (terminal page). The page transition completes
	// only once a following AwaitReady returns.
	TriggerNextPage(ctx context.Context) (bool, error)

	// AwaitReady blocks until the current page's records are rendered.
	AwaitReady(ctx context.Context) error

	// Close releases the session. It must be safe to call after a failure.
	Close() error
}

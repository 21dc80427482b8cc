package harvest

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a storage backend that could not be reached or
// answered with a server error. Callers can distinguish it from request
// rejection with errors.Is; the engine treats both the same way per URL.
var ErrUnavailable = errors.New("storage backend unavailable")

// Store is the storage gateway port. Both backends (local SQLite, remote
// data API) expose identical semantics; the engine never sees which one it
// is talking to.
type Store interface {
	// FetchPending returns discovered URLs with status NEW in creation
	// order. limit <= 0 means no cap.
	FetchPending(ctx context.Context, limit int) ([]DiscoveredURL, error)
	// Lock transitions a URL to PROCESSING. The claim must be re-checked
	// at the store, never derived from a stale in-memory copy.
	Lock(ctx context.Context, id int64) error
	// Finalize sets a terminal status. Idempotent for a given status.
	Finalize(ctx context.Context, id int64, status URLStatus) error
	// SaveEmail persists one extracted email. Duplicate (place, email)
	// pairs are silently ignored by the backend.
	SaveEmail(ctx context.Context, placeID, email, source string) error
	Close() error
}

// Fetcher retrieves rendered page content through a browser session.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (Page, error)
	Close()
}

// FetcherFactory opens the browser session lazily, so an empty backlog or a
// failed listing never pays the browser startup cost and a failed startup
// never leaves a URL locked.
type FetcherFactory interface {
	Open(ctx context.Context) (Fetcher, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

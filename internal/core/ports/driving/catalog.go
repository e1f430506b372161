package driving

import (
	"context"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// FeedHandle is the live view of one open feed. State transitions for a
// single handle are delivered in the order they occur.
type FeedHandle interface {
	// Key returns the feed identity this handle currently tracks.
	Key() domain.FeedKey

	// Current returns the latest state.
	Current() domain.FeedState

	// States returns the state stream. The channel is owned by the handle
	// and closed when the handle is closed.
	States() <-chan domain.FeedState
}

// CatalogService is the orchestrator consumers drive. It guarantees at
// most one in-flight fetch per feed key and last-request-wins semantics
// for refresh and search.
type CatalogService interface {
	// Open returns the live handle for a feed, seeding it from the cache
	// when an unexpired page exists and triggering a background refresh.
	Open(ctx context.Context, key domain.FeedKey) (FeedHandle, error)

	// Refresh invalidates the in-memory page and fetches page one. A
	// refresh already in flight for the key is joined, not duplicated;
	// any other in-flight fetch is cancelled and replaced.
	Refresh(ctx context.Context, key domain.FeedKey) error

	// LoadMore fetches the next page when a cursor remains and nothing is
	// in flight for the key. Exhausted or busy feeds make this a no-op.
	LoadMore(ctx context.Context, key domain.FeedKey) error

	// Retry re-issues the failed fetch. Only valid from an Error state;
	// otherwise a no-op.
	Retry(ctx context.Context, key domain.FeedKey) error

	// Search drives the search feed. An empty query resets it to Idle
	// without a network call; a non-empty query refreshes under the new
	// key, cancelling any prior search fetch (last query wins).
	Search(ctx context.Context, query string) (FeedHandle, error)

	// SearchFeed returns the singleton search feed handle.
	SearchFeed() FeedHandle

	// Snapshot synchronously drives a feed to a terminal state and
	// returns its entries, loading up to pages pages.
	Snapshot(ctx context.Context, key domain.FeedKey, pages int) ([]domain.RepositoryEntry, error)

	// Close releases all feed handles.
	Close()
}

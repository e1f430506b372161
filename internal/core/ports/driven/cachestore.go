package driven

import (
	"context"
	"time"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// CacheStore persists previously fetched feed pages with freshness
// metadata. At most one record exists per feed key.
type CacheStore interface {
	// Get returns the cached page for a key, or nil when no record exists
	// or the record has passed its hard expiry. A returned page may carry
	// the soft staleness flag; callers may show it while refreshing.
	Get(ctx context.Context, key domain.FeedKey) (*domain.FeedPage, error)

	// Put overwrites the record for the page's key atomically. Writes are
	// last-write-wins by the page's FetchedAt, not by completion time.
	Put(ctx context.Context, page domain.FeedPage, ttl time.Duration) error

	// Invalidate clears the record for a key.
	Invalidate(ctx context.Context, key domain.FeedKey) error
}

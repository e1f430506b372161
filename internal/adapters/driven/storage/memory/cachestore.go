// Package memory provides in-memory implementations of the storage ports,
// used for tests and as the degradation target when persisted storage is
// unavailable.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// record is one cached feed page with its freshness metadata.
type record struct {
	page      domain.FeedPage
	staleAt   time.Time
	expiresAt time.Time
}

// CacheStore is an in-memory implementation of driven.CacheStore.
type CacheStore struct {
	mu      sync.RWMutex
	records map[string]record
	now     func() time.Time
}

// NewCacheStore creates a new in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		records: make(map[string]record),
		now:     time.Now,
	}
}

// Get returns the cached page for a key, or nil when no record exists or
// the record has expired. Pages past the soft staleness point are
// returned with the staleness flag set.
func (s *CacheStore) Get(_ context.Context, key domain.FeedKey) (*domain.FeedPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key.String()]
	if !ok {
		return nil, nil
	}
	now := s.now()
	if !now.Before(rec.expiresAt) {
		return nil, nil
	}

	page := rec.page
	page.Stale = now.After(rec.staleAt)
	return &page, nil
}

// Put overwrites the record for the page's key. Writes are last-write-wins
// by the page's FetchedAt.
func (s *CacheStore) Put(_ context.Context, page domain.FeedPage, ttl time.Duration) error {
	if ttl <= 0 {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := page.Key.String()
	if prev, ok := s.records[id]; ok && prev.page.FetchedAt.After(page.FetchedAt) {
		return nil
	}
	s.records[id] = record{
		page:      page,
		staleAt:   page.FetchedAt.Add(ttl / 2),
		expiresAt: page.FetchedAt.Add(ttl),
	}
	return nil
}

// Invalidate clears the record for a key.
func (s *CacheStore) Invalidate(_ context.Context, key domain.FeedKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key.String())
	return nil
}

// Package sqlite provides the persisted cache store backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/repostore-labs/repostore-cli/internal/adapters/driven/storage/memory"
	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driven"
	"github.com/repostore-labs/repostore-cli/internal/logger"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS feed_pages (
	key        TEXT PRIMARY KEY,
	page       TEXT NOT NULL,
	fetched_at INTEGER NOT NULL,
	stale_at   INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
)`

// CacheStore persists feed pages in SQLite. On the first storage failure
// it degrades to pure in-memory behaviour for the rest of the process
// lifetime; cache trouble is never fatal to the catalog.
type CacheStore struct {
	db   *sql.DB
	path string
	now  func() time.Time

	mu       sync.Mutex
	degraded bool
	fallback *memory.CacheStore
}

// NewCacheStore creates a SQLite cache store at the specified data
// directory. If dataDir is empty, defaults to ~/.repostore/data.
func NewCacheStore(dataDir string) (*CacheStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".repostore", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating feed_pages table: %w", err)
	}

	return &CacheStore{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}, nil
}

// Close closes the database connection.
func (s *CacheStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *CacheStore) Path() string {
	return s.path
}

// degrade switches to in-memory behaviour after a storage failure.
func (s *CacheStore) degrade(err error) *memory.CacheStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.degraded {
		s.degraded = true
		s.fallback = memory.NewCacheStore()
		logger.Warn("cache storage degraded to in-memory: %v", err)
	}
	return s.fallback
}

func (s *CacheStore) memoryFallback() *memory.CacheStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.degraded {
		return s.fallback
	}
	return nil
}

// Get returns the cached page for a key, or nil when no record exists or
// the record has expired.
func (s *CacheStore) Get(ctx context.Context, key domain.FeedKey) (*domain.FeedPage, error) {
	if mem := s.memoryFallback(); mem != nil {
		return mem.Get(ctx, key)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT page, stale_at, expires_at FROM feed_pages WHERE key = ?
	`, key.String())

	var payload string
	var staleAt, expiresAt int64
	if err := row.Scan(&payload, &staleAt, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return s.degrade(err).Get(ctx, key)
	}

	now := s.now()
	if !now.Before(time.Unix(expiresAt, 0)) {
		return nil, nil
	}

	var page domain.FeedPage
	if err := json.Unmarshal([]byte(payload), &page); err != nil {
		// A corrupt record behaves like a miss; the next fetch rewrites it.
		logger.Warn("decoding cached page for %s: %v", key, err)
		return nil, nil
	}

	page.Stale = now.After(time.Unix(staleAt, 0))
	return &page, nil
}

// Put overwrites the record for the page's key atomically. Writes are
// last-write-wins by the page's FetchedAt, not by completion time.
func (s *CacheStore) Put(ctx context.Context, page domain.FeedPage, ttl time.Duration) error {
	if ttl <= 0 {
		return domain.ErrInvalidInput
	}

	if mem := s.memoryFallback(); mem != nil {
		return mem.Put(ctx, page, ttl)
	}

	payload, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encoding page: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO feed_pages (key, page, fetched_at, stale_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			page = excluded.page,
			fetched_at = excluded.fetched_at,
			stale_at = excluded.stale_at,
			expires_at = excluded.expires_at
		WHERE excluded.fetched_at >= feed_pages.fetched_at
	`, page.Key.String(), string(payload),
		page.FetchedAt.Unix(),
		page.FetchedAt.Add(ttl/2).Unix(),
		page.FetchedAt.Add(ttl).Unix())
	if err != nil {
		return s.degrade(err).Put(ctx, page, ttl)
	}
	return nil
}

// Invalidate clears the record for a key.
func (s *CacheStore) Invalidate(ctx context.Context, key domain.FeedKey) error {
	if mem := s.memoryFallback(); mem != nil {
		return mem.Invalidate(ctx, key)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM feed_pages WHERE key = ?", key.String()); err != nil {
		return s.degrade(err).Invalidate(ctx, key)
	}
	return nil
}

package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driven"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driving"
	"github.com/repostore-labs/repostore-cli/internal/logger"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

const (
	// DefaultCacheTTL is the hard expiry applied to cached feed pages.
	DefaultCacheTTL = 30 * time.Minute

	// stateBuffer is the per-feed state channel capacity. When a consumer
	// falls this far behind, the oldest buffered state is dropped.
	stateBuffer = 64

	// cacheWriteTimeout bounds the detached write-back after a fetch.
	cacheWriteTimeout = 5 * time.Second
)

// fetchKind distinguishes the in-flight operation for join semantics.
type fetchKind int

const (
	fetchNone fetchKind = iota
	fetchRefresh
	fetchLoadMore
)

// CatalogService orchestrates feed fetching, merging, caching and state
// exposure. It owns the in-memory page per open feed key; CacheStore and
// the upstream client are reached only through their ports.
type CatalogService struct {
	client driven.CatalogClient
	cache  driven.CacheStore
	ttl    time.Duration

	mu     sync.Mutex
	feeds  map[string]*Feed
	search *Feed
	closed bool
}

// NewCatalogService creates the catalog orchestrator. A non-positive ttl
// falls back to DefaultCacheTTL.
func NewCatalogService(client driven.CatalogClient, cache driven.CacheStore, ttl time.Duration) *CatalogService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CatalogService{
		client: client,
		cache:  cache,
		ttl:    ttl,
		feeds:  make(map[string]*Feed),
	}
}

// Feed is the live handle for one open feed key.
type Feed struct {
	svc *CatalogService

	mu      sync.Mutex
	cond    *sync.Cond
	key     domain.FeedKey
	state   domain.FeedState
	entries []domain.RepositoryEntry
	cursor  string
	// fetched is set once the feed has been seeded or fetched at least once.
	fetched    bool
	generation uint64
	inFlight   fetchKind
	cancel     context.CancelFunc
	states     chan domain.FeedState
	closed     bool
}

var _ driving.FeedHandle = (*Feed)(nil)

func newFeed(svc *CatalogService, key domain.FeedKey) *Feed {
	f := &Feed{
		svc:    svc,
		key:    key,
		state:  domain.IdleState(),
		states: make(chan domain.FeedState, stateBuffer),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Key returns the feed identity this handle currently tracks.
func (f *Feed) Key() domain.FeedKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.key
}

// Current returns the latest state.
func (f *Feed) Current() domain.FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// States returns the ordered state stream for this feed.
func (f *Feed) States() <-chan domain.FeedState {
	return f.states
}

// emit records and publishes a state transition. Callers hold f.mu, which
// is what guarantees per-feed ordering on the channel.
func (f *Feed) emit(state domain.FeedState) {
	f.state = state
	f.cond.Broadcast()
	if f.closed {
		return
	}
	for {
		select {
		case f.states <- state:
			return
		default:
			// Slow consumer: drop the oldest buffered state rather than
			// block the engine. Relative order of the rest is preserved.
			select {
			case <-f.states:
			default:
			}
		}
	}
}

// handle returns (creating if needed) the feed for a key. Search keys all
// share the singleton search handle.
func (s *CatalogService) handle(key domain.FeedKey) *Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key.List == domain.ListSearch {
		return s.searchLocked()
	}
	id := key.String()
	f, ok := s.feeds[id]
	if !ok {
		f = newFeed(s, key)
		s.feeds[id] = f
	}
	return f
}

func (s *CatalogService) searchLocked() *Feed {
	if s.search == nil {
		s.search = newFeed(s, domain.SearchKey(""))
	}
	return s.search
}

// Open returns the live handle for a feed. On first open it seeds from an
// unexpired cached page as a provisional Loading->Success transition, then
// triggers a background refresh.
func (s *CatalogService) Open(ctx context.Context, key domain.FeedKey) (driving.FeedHandle, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if key.List == domain.ListSearch {
		return s.Search(ctx, key.Query)
	}

	f := s.handle(key)
	f.mu.Lock()
	first := !f.fetched && f.inFlight == fetchNone
	f.mu.Unlock()
	if !first {
		return f, nil
	}

	if page, err := s.cache.Get(ctx, key); err != nil {
		// Cache failures degrade to a miss, never fatal.
		logger.Warn("cache read for %s: %v", key, err)
	} else if page != nil {
		f.mu.Lock()
		if !f.fetched && f.inFlight == fetchNone {
			f.fetched = true
			f.entries, f.cursor = page.Entries, page.Cursor
			f.emit(domain.LoadingState())
			if len(page.Entries) == 0 {
				f.emit(domain.EmptyState())
			} else {
				f.emit(domain.SuccessState(page.Entries))
			}
		}
		f.mu.Unlock()
	}

	if err := s.Refresh(ctx, key); err != nil {
		return nil, err
	}
	return f, nil
}

// Refresh invalidates the in-memory page and fetches page one. A refresh
// already in flight for the key is joined; an in-flight loadMore is
// cancelled and replaced (last request wins).
func (s *CatalogService) Refresh(ctx context.Context, key domain.FeedKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	f := s.handle(key)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return domain.ErrFeedClosed
	}
	if f.inFlight == fetchRefresh {
		return nil // join the in-flight refresh
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.generation++
	gen := f.generation
	f.fetched = true
	f.entries, f.cursor = nil, ""
	f.inFlight = fetchRefresh
	fctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.emit(domain.LoadingState())

	go f.fetch(fctx, gen, "", false)
	return nil
}

// LoadMore fetches the next page when a cursor remains and nothing is in
// flight for the key. Exhausted or busy feeds make this a no-op.
func (s *CatalogService) LoadMore(ctx context.Context, key domain.FeedKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	f := s.handle(key)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return domain.ErrFeedClosed
	}
	if f.inFlight != fetchNone || f.cursor == "" {
		return nil
	}
	gen := f.generation
	cursor := f.cursor
	f.inFlight = fetchLoadMore
	fctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.emit(domain.LoadingMoreState(f.entries))

	go f.fetch(fctx, gen, cursor, true)
	return nil
}

// Retry re-issues the failed fetch. Only valid from an Error state;
// otherwise a no-op.
func (s *CatalogService) Retry(ctx context.Context, key domain.FeedKey) error {
	f := s.handle(key)
	f.mu.Lock()
	isError := f.state.Phase == domain.PhaseError
	f.mu.Unlock()
	if !isError {
		return nil
	}
	return s.Refresh(ctx, key)
}

// Search drives the singleton search feed. An empty query resets it to
// Idle without a network call; a non-empty query refreshes under the new
// key, cancelling any prior search fetch (last query wins).
func (s *CatalogService) Search(ctx context.Context, query string) (driving.FeedHandle, error) {
	s.mu.Lock()
	f := s.searchLocked()
	s.mu.Unlock()

	key := domain.SearchKey(query)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, domain.ErrFeedClosed
	}
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.generation++
	f.inFlight = fetchNone
	f.key = key
	f.entries, f.cursor = nil, ""

	if key.Query == "" {
		f.fetched = false
		f.emit(domain.IdleState())
		return f, nil
	}

	gen := f.generation
	f.fetched = true
	f.inFlight = fetchRefresh
	fctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.emit(domain.LoadingState())

	go f.fetch(fctx, gen, "", false)
	return f, nil
}

// SearchFeed returns the singleton search feed handle.
func (s *CatalogService) SearchFeed() driving.FeedHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchLocked()
}

// fetch performs one page fetch and applies the result, unless the feed's
// generation moved on while the request was in flight, in which case the
// response is silently discarded.
func (f *Feed) fetch(ctx context.Context, gen uint64, cursor string, appendPage bool) {
	reqID := uuid.NewString()
	f.mu.Lock()
	key := f.key
	f.mu.Unlock()

	logger.Debug("fetch %s cursor=%q [%s]", key, cursor, reqID)
	page, err := f.svc.client.ListRepositories(ctx, key, cursor)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || gen != f.generation {
		logger.Debug("discarding superseded response [%s]", reqID)
		return
	}
	f.inFlight = fetchNone
	f.cancel = nil

	if err != nil {
		kind := domain.Classify(err)
		logger.Warn("fetch %s failed: %s [%s]", key, kind, reqID)
		if kind == domain.ClassNotFound && !appendPage {
			f.emit(domain.EmptyState())
			return
		}
		var kept []domain.RepositoryEntry
		if appendPage {
			// A failed loadMore never discards previously shown results.
			kept = f.entries
		}
		f.emit(domain.ErrorState(displayMessage(kind), kind == domain.ClassRateLimited, kept))
		return
	}

	var merged []domain.RepositoryEntry
	var next string
	if appendPage {
		merged, next = MergePages(f.entries, f.cursor, page.Entries, page.Cursor)
	} else {
		merged, next = MergePages(nil, "", page.Entries, page.Cursor)
	}
	f.entries, f.cursor = merged, next

	if len(merged) == 0 && !appendPage {
		f.emit(domain.EmptyState())
	} else {
		f.emit(domain.SuccessState(merged))
	}

	snapshot := domain.FeedPage{
		Key:       key,
		Entries:   merged,
		Cursor:    next,
		FetchedAt: page.FetchedAt,
	}
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now()
	}
	go f.svc.writeBack(snapshot)
}

// writeBack persists a merged page, detached from the fetch so a slow
// cache never delays state delivery. Failures degrade to a warning.
func (s *CatalogService) writeBack(page domain.FeedPage) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()
	if err := s.cache.Put(ctx, page, s.ttl); err != nil {
		logger.Warn("cache write for %s: %v", page.Key, err)
	}
}

// displayMessage renders the human-readable message for a classification.
// The message is a display artifact; classification stays authoritative.
func displayMessage(kind domain.Classification) string {
	switch kind {
	case domain.ClassRateLimited:
		// Credential-neutral: whether signing in would help depends on the
		// stored credential, which only the presentation layer consults.
		return "API rate limit reached. Try again after the limit resets."
	case domain.ClassAuthError:
		return "Authentication failed. Check your GitHub token."
	case domain.ClassNotFound:
		return "Not found."
	default:
		return "Network error. Check your connection and retry."
	}
}

// Snapshot synchronously drives a feed to a terminal state and returns
// its entries, loading up to pages pages.
func (s *CatalogService) Snapshot(ctx context.Context, key domain.FeedKey, pages int) ([]domain.RepositoryEntry, error) {
	handle, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	f := handle.(*Feed)

	state, err := f.awaitSettled(ctx)
	if err != nil {
		return nil, err
	}
	if state.Phase == domain.PhaseError {
		return nil, stateError(state)
	}

	for p := 1; p < pages; p++ {
		f.mu.Lock()
		cursor := f.cursor
		f.mu.Unlock()
		if cursor == "" {
			break
		}
		if err := s.LoadMore(ctx, f.Key()); err != nil {
			return nil, err
		}
		state, err = f.awaitSettled(ctx)
		if err != nil {
			return nil, err
		}
		if state.Phase == domain.PhaseError {
			// Keep what already loaded; the error interrupted loadMore.
			break
		}
	}

	return f.Current().Entries, nil
}

// awaitSettled blocks until no fetch is in flight and the feed sits in a
// terminal state.
func (f *Feed) awaitSettled(ctx context.Context) (domain.FeedState, error) {
	stop := context.AfterFunc(ctx, func() {
		f.mu.Lock()
		f.cond.Broadcast()
		f.mu.Unlock()
	})
	defer stop()

	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		if ctx.Err() != nil {
			return domain.FeedState{}, ctx.Err()
		}
		if f.closed {
			return domain.FeedState{}, domain.ErrFeedClosed
		}
		if f.inFlight == fetchNone && f.state.Terminal() {
			return f.state, nil
		}
		f.cond.Wait()
	}
}

// stateError converts an Error feed state back into a classified error.
func stateError(state domain.FeedState) error {
	kind := domain.ClassTransient
	if state.IsRateLimit {
		kind = domain.ClassRateLimited
	}
	return &domain.CatalogError{Kind: kind, Message: state.Message}
}

// Close releases all feed handles: in-flight fetches are cancelled and
// state channels closed.
func (s *CatalogService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	closeFeed := func(f *Feed) {
		f.mu.Lock()
		if !f.closed {
			f.closed = true
			if f.cancel != nil {
				f.cancel()
				f.cancel = nil
			}
			close(f.states)
			f.cond.Broadcast()
		}
		f.mu.Unlock()
	}
	for _, f := range s.feeds {
		closeFeed(f)
	}
	if s.search != nil {
		closeFeed(s.search)
	}
}

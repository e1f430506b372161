package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// fakeClient scripts ListRepositories per test and counts calls.
type fakeClient struct {
	mu     sync.Mutex
	listFn func(ctx context.Context, key domain.FeedKey, cursor string) (*domain.FeedPage, error)
	calls  int
}

func (c *fakeClient) ListRepositories(ctx context.Context, key domain.FeedKey, cursor string) (*domain.FeedPage, error) {
	c.mu.Lock()
	c.calls++
	fn := c.listFn
	c.mu.Unlock()
	return fn(ctx, key, cursor)
}

func (c *fakeClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *fakeClient) GetRepository(context.Context, string, string) (*domain.RepositoryEntry, error) {
	return nil, domain.ErrNotFound
}

func (c *fakeClient) GetUser(context.Context, string) (*domain.Developer, error) {
	return nil, domain.ErrNotFound
}

func (c *fakeClient) GetReleases(context.Context, string, string) ([]domain.ReleaseInfo, error) {
	return nil, nil
}

func (c *fakeClient) GetReadme(context.Context, string, string) (string, error) {
	return "", nil
}

func (c *fakeClient) ValidateToken(context.Context, string) (*domain.Developer, error) {
	return nil, domain.ErrNotFound
}

func (c *fakeClient) RateState() domain.RateState { return domain.RateState{} }

// cacheStub is an in-memory CacheStore that records writes.
type cacheStub struct {
	mu    sync.Mutex
	pages map[string]domain.FeedPage
	puts  int
}

func newCacheStub() *cacheStub {
	return &cacheStub{pages: make(map[string]domain.FeedPage)}
}

func (c *cacheStub) Get(_ context.Context, key domain.FeedKey) (*domain.FeedPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, ok := c.pages[key.String()]
	if !ok {
		return nil, nil
	}
	return &page, nil
}

func (c *cacheStub) Put(_ context.Context, page domain.FeedPage, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[page.Key.String()] = page
	c.puts++
	return nil
}

func (c *cacheStub) Invalidate(_ context.Context, key domain.FeedKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, key.String())
	return nil
}

func (c *cacheStub) putCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts
}

func pageOf(key domain.FeedKey, cursor string, ids ...int64) *domain.FeedPage {
	return &domain.FeedPage{
		Key:       key,
		Entries:   entriesWithIDs(ids...),
		Cursor:    cursor,
		FetchedAt: time.Now(),
	}
}

func nextState(t *testing.T, ch <-chan domain.FeedState) domain.FeedState {
	t.Helper()
	select {
	case state, ok := <-ch:
		require.True(t, ok, "state channel closed")
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state")
		return domain.FeedState{}
	}
}

func TestCatalogService_Open_ColdFetch(t *testing.T) {
	key := domain.FeedKey{List: domain.ListTrending}
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, _ string) (*domain.FeedPage, error) {
		return pageOf(k, "", 1, 2, 3), nil
	}}
	cache := newCacheStub()
	svc := NewCatalogService(client, cache, time.Minute)
	defer svc.Close()

	handle, err := svc.Open(context.Background(), key)
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	state := nextState(t, handle.States())
	assert.Equal(t, domain.PhaseSuccess, state.Phase)
	assert.Equal(t, []int64{1, 2, 3}, idsOf(state.Entries))

	// The merged page lands in the cache, detached from state delivery.
	require.Eventually(t, func() bool { return cache.putCount() == 1 },
		2*time.Second, 10*time.Millisecond)
}

func TestCatalogService_Open_SeedsFromCacheThenRefreshes(t *testing.T) {
	key := domain.FeedKey{List: domain.ListTrending}
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, _ string) (*domain.FeedPage, error) {
		return pageOf(k, "", 4, 5), nil
	}}
	cache := newCacheStub()
	require.NoError(t, cache.Put(context.Background(), *pageOf(key, "", 1, 2), time.Minute))

	svc := NewCatalogService(client, cache, time.Minute)
	defer svc.Close()

	handle, err := svc.Open(context.Background(), key)
	require.NoError(t, err)

	// Cached page shows first, then the background refresh replaces it.
	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	seeded := nextState(t, handle.States())
	assert.Equal(t, domain.PhaseSuccess, seeded.Phase)
	assert.Equal(t, []int64{1, 2}, idsOf(seeded.Entries))

	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	fresh := nextState(t, handle.States())
	assert.Equal(t, domain.PhaseSuccess, fresh.Phase)
	assert.Equal(t, []int64{4, 5}, idsOf(fresh.Entries))
}

func TestCatalogService_Open_EmptyFeed(t *testing.T) {
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, _ string) (*domain.FeedPage, error) {
		return pageOf(k, ""), nil
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	entries, err := svc.Snapshot(context.Background(), domain.FeedKey{List: domain.ListFeatured}, 1)

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCatalogService_Open_NotFoundReadsAsEmpty(t *testing.T) {
	client := &fakeClient{listFn: func(context.Context, domain.FeedKey, string) (*domain.FeedPage, error) {
		return nil, &domain.CatalogError{Kind: domain.ClassNotFound, Message: "no such topic"}
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	handle, err := svc.Open(context.Background(), domain.FeedKey{List: domain.ListTrending, Category: "nope"})
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	assert.Equal(t, domain.PhaseEmpty, nextState(t, handle.States()).Phase)
}

func TestCatalogService_Refresh_JoinsInFlight(t *testing.T) {
	key := domain.FeedKey{List: domain.ListTrending}
	release := make(chan struct{})
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, _ string) (*domain.FeedPage, error) {
		<-release
		return pageOf(k, "", 1), nil
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	require.NoError(t, svc.Refresh(context.Background(), key))
	require.NoError(t, svc.Refresh(context.Background(), key))
	require.NoError(t, svc.Refresh(context.Background(), key))
	close(release)

	_, err := svc.Snapshot(context.Background(), key, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, client.callCount())
}

func TestCatalogService_Refresh_RateLimitError(t *testing.T) {
	client := &fakeClient{listFn: func(context.Context, domain.FeedKey, string) (*domain.FeedPage, error) {
		return nil, &domain.CatalogError{Kind: domain.ClassRateLimited, Message: "slow down"}
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	handle, err := svc.Open(context.Background(), domain.FeedKey{List: domain.ListTrending})
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	state := nextState(t, handle.States())
	assert.Equal(t, domain.PhaseError, state.Phase)
	assert.True(t, state.IsRateLimit)
	assert.NotEmpty(t, state.Message)
}

func TestCatalogService_RateLimitMessageIsCredentialNeutral(t *testing.T) {
	client := &fakeClient{listFn: func(context.Context, domain.FeedKey, string) (*domain.FeedPage, error) {
		return nil, &domain.CatalogError{Kind: domain.ClassRateLimited, Message: "slow down"}
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	handle, err := svc.Open(context.Background(), domain.FeedKey{List: domain.ListTrending})
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	state := nextState(t, handle.States())
	require.Equal(t, domain.PhaseError, state.Phase)

	// Whether signing in would help depends on the stored credential,
	// which the core never consults; the hint belongs to the frontends.
	assert.Contains(t, state.Message, "rate limit")
	assert.NotContains(t, strings.ToLower(state.Message), "sign in")
}

func TestCatalogService_LoadMore_MergesNextPage(t *testing.T) {
	key := domain.FeedKey{List: domain.ListTrending}
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, cursor string) (*domain.FeedPage, error) {
		if cursor == "" {
			return pageOf(k, "p2", 1, 2), nil
		}
		return pageOf(k, "", 2, 3), nil
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	handle, err := svc.Open(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	assert.Equal(t, domain.PhaseSuccess, nextState(t, handle.States()).Phase)

	require.NoError(t, svc.LoadMore(context.Background(), key))

	more := nextState(t, handle.States())
	assert.Equal(t, domain.PhaseLoadingMore, more.Phase)
	assert.Equal(t, []int64{1, 2}, idsOf(more.Entries))

	state := nextState(t, handle.States())
	assert.Equal(t, domain.PhaseSuccess, state.Phase)
	// Entry 2 appears once; the first occurrence wins.
	assert.Equal(t, []int64{1, 2, 3}, idsOf(state.Entries))
}

func TestCatalogService_LoadMore_ExhaustedIsNoOp(t *testing.T) {
	key := domain.FeedKey{List: domain.ListTrending}
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, _ string) (*domain.FeedPage, error) {
		return pageOf(k, "", 1), nil
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	_, err := svc.Snapshot(context.Background(), key, 1)
	require.NoError(t, err)
	calls := client.callCount()

	require.NoError(t, svc.LoadMore(context.Background(), key))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, calls, client.callCount())
}

func TestCatalogService_LoadMore_ConcurrentCallsFetchOnce(t *testing.T) {
	key := domain.FeedKey{List: domain.ListTrending}
	release := make(chan struct{})
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, cursor string) (*domain.FeedPage, error) {
		if cursor == "" {
			return pageOf(k, "p2", 1, 2), nil
		}
		<-release
		return pageOf(k, "", 3), nil
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	handle, err := svc.Open(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	assert.Equal(t, domain.PhaseSuccess, nextState(t, handle.States()).Phase)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.LoadMore(context.Background(), key))
		}()
	}
	wg.Wait()
	close(release)

	assert.Equal(t, domain.PhaseLoadingMore, nextState(t, handle.States()).Phase)
	state := nextState(t, handle.States())
	assert.Equal(t, domain.PhaseSuccess, state.Phase)
	assert.Equal(t, []int64{1, 2, 3}, idsOf(state.Entries))
	// One call for the open, exactly one for both load-more requests.
	assert.Equal(t, 2, client.callCount())
}

func TestCatalogService_LoadMore_FailureKeepsEntries(t *testing.T) {
	key := domain.FeedKey{List: domain.ListTrending}
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, cursor string) (*domain.FeedPage, error) {
		if cursor == "" {
			return pageOf(k, "p2", 1, 2), nil
		}
		return nil, &domain.CatalogError{Kind: domain.ClassTransient, Message: "boom"}
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	handle, err := svc.Open(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	assert.Equal(t, domain.PhaseSuccess, nextState(t, handle.States()).Phase)

	require.NoError(t, svc.LoadMore(context.Background(), key))
	assert.Equal(t, domain.PhaseLoadingMore, nextState(t, handle.States()).Phase)

	state := nextState(t, handle.States())
	assert.Equal(t, domain.PhaseError, state.Phase)
	assert.Equal(t, []int64{1, 2}, idsOf(state.Entries))
}

func TestCatalogService_Search_EmptyQueryResetsToIdle(t *testing.T) {
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, _ string) (*domain.FeedPage, error) {
		return pageOf(k, "", 1), nil
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	handle, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)

	assert.Equal(t, domain.PhaseIdle, nextState(t, handle.States()).Phase)
	assert.Equal(t, 0, client.callCount())
}

func TestCatalogService_Search_LastQueryWins(t *testing.T) {
	slowStarted := make(chan struct{})
	release := make(chan struct{})
	client := &fakeClient{listFn: func(_ context.Context, key domain.FeedKey, _ string) (*domain.FeedPage, error) {
		if key.Query == "slow" {
			close(slowStarted)
			<-release
			return pageOf(key, "", 99), nil
		}
		return pageOf(key, "", 1), nil
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	_, err := svc.Search(context.Background(), "slow")
	require.NoError(t, err)
	<-slowStarted

	handle, err := svc.Search(context.Background(), "fast")
	require.NoError(t, err)

	entries, err := svc.Snapshot(context.Background(), domain.SearchKey("fast"), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, idsOf(entries))

	// The superseded response arrives late and must be discarded.
	close(release)
	time.Sleep(50 * time.Millisecond)
	state := handle.Current()
	assert.Equal(t, domain.PhaseSuccess, state.Phase)
	assert.Equal(t, []int64{1}, idsOf(state.Entries))
}

func TestCatalogService_Search_SharesSingletonHandle(t *testing.T) {
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, _ string) (*domain.FeedPage, error) {
		return pageOf(k, "", 1), nil
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	a, err := svc.Search(context.Background(), "one")
	require.NoError(t, err)
	b, err := svc.Search(context.Background(), "two")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, "two", b.Key().Query)
}

func TestCatalogService_Retry_OnlyFromError(t *testing.T) {
	key := domain.FeedKey{List: domain.ListTrending}
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, _ string) (*domain.FeedPage, error) {
		return pageOf(k, "", 1), nil
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	_, err := svc.Snapshot(context.Background(), key, 1)
	require.NoError(t, err)
	calls := client.callCount()

	// Success state: retry is a no-op.
	require.NoError(t, svc.Retry(context.Background(), key))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, calls, client.callCount())
}

func TestCatalogService_Retry_ReissuesAfterError(t *testing.T) {
	key := domain.FeedKey{List: domain.ListTrending}
	var fail bool
	var mu sync.Mutex
	client := &fakeClient{}
	client.listFn = func(_ context.Context, k domain.FeedKey, _ string) (*domain.FeedPage, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, &domain.CatalogError{Kind: domain.ClassTransient, Message: "boom"}
		}
		return pageOf(k, "", 7), nil
	}

	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	mu.Lock()
	fail = true
	mu.Unlock()
	handle, err := svc.Open(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	assert.Equal(t, domain.PhaseError, nextState(t, handle.States()).Phase)

	mu.Lock()
	fail = false
	mu.Unlock()
	require.NoError(t, svc.Retry(context.Background(), key))

	assert.Equal(t, domain.PhaseLoading, nextState(t, handle.States()).Phase)
	state := nextState(t, handle.States())
	assert.Equal(t, domain.PhaseSuccess, state.Phase)
	assert.Equal(t, []int64{7}, idsOf(state.Entries))
}

func TestCatalogService_Snapshot_LoadsRequestedPages(t *testing.T) {
	key := domain.FeedKey{List: domain.ListUpdated}
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, cursor string) (*domain.FeedPage, error) {
		switch cursor {
		case "":
			return pageOf(k, "p2", 1, 2), nil
		case "p2":
			return pageOf(k, "p3", 3, 4), nil
		default:
			return pageOf(k, "", 5), nil
		}
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)
	defer svc.Close()

	entries, err := svc.Snapshot(context.Background(), key, 2)

	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, idsOf(entries))
}

func TestCatalogService_Close_ClosesStateChannels(t *testing.T) {
	client := &fakeClient{listFn: func(_ context.Context, k domain.FeedKey, _ string) (*domain.FeedPage, error) {
		return pageOf(k, "", 1), nil
	}}
	svc := NewCatalogService(client, newCacheStub(), time.Minute)

	key := domain.FeedKey{List: domain.ListTrending}
	_, err := svc.Snapshot(context.Background(), key, 1)
	require.NoError(t, err)
	handle, err := svc.Open(context.Background(), key)
	require.NoError(t, err)

	svc.Close()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-handle.States():
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, svc.Refresh(context.Background(), key), domain.ErrFeedClosed)
}

package cli

import (
	"context"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driving"
)

// stubCatalogService implements driving.CatalogService for command tests.
type stubCatalogService struct {
	entries []domain.RepositoryEntry
	lastKey domain.FeedKey
	pages   int
	err     error
}

func (s *stubCatalogService) Open(_ context.Context, _ domain.FeedKey) (driving.FeedHandle, error) {
	return nil, s.err
}

func (s *stubCatalogService) Refresh(_ context.Context, _ domain.FeedKey) error { return s.err }

func (s *stubCatalogService) LoadMore(_ context.Context, _ domain.FeedKey) error { return s.err }

func (s *stubCatalogService) Retry(_ context.Context, _ domain.FeedKey) error { return s.err }

func (s *stubCatalogService) Search(_ context.Context, _ string) (driving.FeedHandle, error) {
	return nil, s.err
}

func (s *stubCatalogService) SearchFeed() driving.FeedHandle { return nil }

func (s *stubCatalogService) Snapshot(
	_ context.Context,
	key domain.FeedKey,
	pages int,
) ([]domain.RepositoryEntry, error) {
	s.lastKey = key
	s.pages = pages
	return s.entries, s.err
}

func (s *stubCatalogService) Close() {}

// stubCatalogClient implements driven.CatalogClient for command tests.
type stubCatalogClient struct {
	entry     *domain.RepositoryEntry
	developer *domain.Developer
	releases  []domain.ReleaseInfo
	readme    string
	rate      domain.RateState
	err       error
	resets    int
}

func (c *stubCatalogClient) Reset() { c.resets++ }

func (c *stubCatalogClient) ListRepositories(
	_ context.Context,
	_ domain.FeedKey,
	_ string,
) (*domain.FeedPage, error) {
	return nil, c.err
}

func (c *stubCatalogClient) GetRepository(_ context.Context, _, _ string) (*domain.RepositoryEntry, error) {
	return c.entry, c.err
}

func (c *stubCatalogClient) GetUser(_ context.Context, _ string) (*domain.Developer, error) {
	return c.developer, c.err
}

func (c *stubCatalogClient) GetReleases(_ context.Context, _, _ string) ([]domain.ReleaseInfo, error) {
	return c.releases, c.err
}

func (c *stubCatalogClient) GetReadme(_ context.Context, _, _ string) (string, error) {
	return c.readme, c.err
}

func (c *stubCatalogClient) ValidateToken(_ context.Context, _ string) (*domain.Developer, error) {
	return c.developer, c.err
}

func (c *stubCatalogClient) RateState() domain.RateState { return c.rate }

// stubAuthService implements driving.AuthService for command tests.
type stubAuthService struct {
	cred *domain.Credential
	err  error
}

func (s *stubAuthService) SignIn(_ context.Context, _ string) (*domain.Credential, error) {
	return s.cred, s.err
}

func (s *stubAuthService) SignOut(_ context.Context) error { s.cred = nil; return s.err }

func (s *stubAuthService) Current(_ context.Context) (*domain.Credential, error) {
	return s.cred, s.err
}

// setupTestServices wires stub services into the command package vars so
// commands run without touching the network or the data directory. The
// auth stub starts signed out; tests mutate it for a stored credential.
// The returned cleanup restores the previous wiring.
func setupTestServices(catalog *stubCatalogService, client *stubCatalogClient) func() {
	if catalog == nil {
		catalog = &stubCatalogService{}
	}
	if client == nil {
		client = &stubCatalogClient{}
	}

	prevService := catalogService
	prevClient := catalogClient
	prevAuth := authService
	catalogService = catalog
	catalogClient = client
	authService = &stubAuthService{}

	return func() {
		catalogService = prevService
		catalogClient = prevClient
		authService = prevAuth
	}
}

package mcp

import (
	"context"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driving"
)

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	entries []domain.RepositoryEntry
	lastKey domain.FeedKey
	pages   int
	err     error
}

func (m *mockCatalogService) Open(_ context.Context, _ domain.FeedKey) (driving.FeedHandle, error) {
	return nil, m.err
}

func (m *mockCatalogService) Refresh(_ context.Context, _ domain.FeedKey) error {
	return m.err
}

func (m *mockCatalogService) LoadMore(_ context.Context, _ domain.FeedKey) error {
	return m.err
}

func (m *mockCatalogService) Retry(_ context.Context, _ domain.FeedKey) error {
	return m.err
}

func (m *mockCatalogService) Search(_ context.Context, _ string) (driving.FeedHandle, error) {
	return nil, m.err
}

func (m *mockCatalogService) SearchFeed() driving.FeedHandle {
	return nil
}

func (m *mockCatalogService) Snapshot(
	_ context.Context,
	key domain.FeedKey,
	pages int,
) ([]domain.RepositoryEntry, error) {
	m.lastKey = key
	m.pages = pages
	return m.entries, m.err
}

func (m *mockCatalogService) Close() {}

// mockCatalogClient is a mock implementation of driven.CatalogClient.
type mockCatalogClient struct {
	entry     *domain.RepositoryEntry
	developer *domain.Developer
	releases  []domain.ReleaseInfo
	readme    string
	rate      domain.RateState
	err       error
}

func (m *mockCatalogClient) ListRepositories(
	_ context.Context,
	_ domain.FeedKey,
	_ string,
) (*domain.FeedPage, error) {
	return nil, m.err
}

func (m *mockCatalogClient) GetRepository(
	_ context.Context,
	_, _ string,
) (*domain.RepositoryEntry, error) {
	return m.entry, m.err
}

func (m *mockCatalogClient) GetUser(_ context.Context, _ string) (*domain.Developer, error) {
	return m.developer, m.err
}

func (m *mockCatalogClient) GetReleases(_ context.Context, _, _ string) ([]domain.ReleaseInfo, error) {
	return m.releases, m.err
}

func (m *mockCatalogClient) GetReadme(_ context.Context, _, _ string) (string, error) {
	return m.readme, m.err
}

func (m *mockCatalogClient) ValidateToken(_ context.Context, _ string) (*domain.Developer, error) {
	return m.developer, m.err
}

func (m *mockCatalogClient) RateState() domain.RateState {
	return m.rate
}

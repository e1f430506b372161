package driven

import (
	"context"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// CatalogClient is the typed boundary to the upstream repository catalog.
// Implementations attach the stored credential (when present) to outgoing
// requests and translate transport failures into *domain.CatalogError at
// this boundary, so callers never inspect status codes or message text.
type CatalogClient interface {
	// ListRepositories fetches one page of the feed identified by key.
	// An empty cursor requests page one. The returned page's cursor is
	// empty when the feed is exhausted.
	ListRepositories(ctx context.Context, key domain.FeedKey, cursor string) (*domain.FeedPage, error)

	// GetRepository fetches a single repository snapshot.
	GetRepository(ctx context.Context, owner, repo string) (*domain.RepositoryEntry, error)

	// GetUser fetches a developer profile.
	GetUser(ctx context.Context, login string) (*domain.Developer, error)

	// GetReleases lists published releases, newest first. A release whose
	// optional fields fail to decode is degraded, not dropped.
	GetReleases(ctx context.Context, owner, repo string) ([]domain.ReleaseInfo, error)

	// GetReadme returns the repository readme as markdown text.
	GetReadme(ctx context.Context, owner, repo string) (string, error)

	// ValidateToken checks a candidate token against the upstream API and
	// returns the profile it authenticates as.
	ValidateToken(ctx context.Context, token string) (*domain.Developer, error)

	// RateState returns the last observed upstream quota state.
	RateState() domain.RateState
}

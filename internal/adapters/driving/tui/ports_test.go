package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driving"
)

// stubCatalog satisfies driving.CatalogService for wiring tests.
type stubCatalog struct{}

func (stubCatalog) Open(_ context.Context, _ domain.FeedKey) (driving.FeedHandle, error) {
	return nil, nil
}
func (stubCatalog) Refresh(_ context.Context, _ domain.FeedKey) error  { return nil }
func (stubCatalog) LoadMore(_ context.Context, _ domain.FeedKey) error { return nil }
func (stubCatalog) Retry(_ context.Context, _ domain.FeedKey) error    { return nil }
func (stubCatalog) Search(_ context.Context, _ string) (driving.FeedHandle, error) {
	return nil, nil
}
func (stubCatalog) SearchFeed() driving.FeedHandle { return nil }
func (stubCatalog) Snapshot(_ context.Context, _ domain.FeedKey, _ int) ([]domain.RepositoryEntry, error) {
	return nil, nil
}
func (stubCatalog) Close() {}

func TestPorts_Validate(t *testing.T) {
	t.Run("missing catalog service returns error", func(t *testing.T) {
		ports := &Ports{}
		assert.ErrorIs(t, ports.Validate(), ErrMissingCatalogService)
	})

	t.Run("catalog only is valid", func(t *testing.T) {
		ports := &Ports{Catalog: stubCatalog{}}
		assert.NoError(t, ports.Validate())
	})
}

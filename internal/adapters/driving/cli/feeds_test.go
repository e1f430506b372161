package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

func sampleEntries() []domain.RepositoryEntry {
	return []domain.RepositoryEntry{
		{
			ID:          1,
			Owner:       domain.Owner{Login: "acme"},
			Name:        "widgets",
			Description: "Widget factory",
			Stars:       1234,
			Language:    "Go",
			Tag:         domain.TagNew,
		},
		{ID: 2, Owner: domain.Owner{Login: "acme"}, Name: "gadgets", Stars: 99},
	}
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestTrendingCmd_ListsEntries(t *testing.T) {
	catalog := &stubCatalogService{entries: sampleEntries()}
	cleanup := setupTestServices(catalog, nil)
	defer cleanup()

	out, err := runCommand(t, "trending")

	require.NoError(t, err)
	assert.Contains(t, out, "acme/widgets ★1.2K")
	assert.Contains(t, out, "Widget factory")
	assert.Contains(t, out, "[NEW]")
	assert.Equal(t, domain.ListTrending, catalog.lastKey.List)
}

func TestTrendingCmd_CategoryFlag(t *testing.T) {
	catalog := &stubCatalogService{}
	cleanup := setupTestServices(catalog, nil)
	defer cleanup()

	_, err := runCommand(t, "trending", "--category", "Games")

	require.NoError(t, err)
	assert.Equal(t, "Games", catalog.lastKey.Category)
	feedCategory = ""
}

func TestTrendingCmd_PagesFlag(t *testing.T) {
	catalog := &stubCatalogService{}
	cleanup := setupTestServices(catalog, nil)
	defer cleanup()

	_, err := runCommand(t, "trending", "--pages", "3")

	require.NoError(t, err)
	assert.Equal(t, 3, catalog.pages)
	feedPages = 1
}

func TestUpdatedCmd_EmptyFeed(t *testing.T) {
	cleanup := setupTestServices(&stubCatalogService{}, nil)
	defer cleanup()

	out, err := runCommand(t, "updated")

	require.NoError(t, err)
	assert.Contains(t, out, "No repositories found.")
}

func TestFeaturedCmd_RailsFlag(t *testing.T) {
	entries := make([]domain.RepositoryEntry, 8)
	for i := range entries {
		entries[i] = domain.RepositoryEntry{
			ID:    int64(i + 1),
			Owner: domain.Owner{Login: "acme"},
			Name:  string(rune('a' + i)),
			Stars: (8 - i) * 100,
		}
	}
	cleanup := setupTestServices(&stubCatalogService{entries: entries}, nil)
	defer cleanup()

	out, err := runCommand(t, "featured", "--rails")

	require.NoError(t, err)
	assert.Contains(t, out, "Featured:")
	assert.Contains(t, out, "Popular:")
	assert.Contains(t, out, "Newest:")
	featuredRail = false
}

func TestDeveloperCmd_PrintsProfileThenRepos(t *testing.T) {
	catalog := &stubCatalogService{entries: sampleEntries()}
	client := &stubCatalogClient{
		developer: &domain.Developer{Login: "octo", Name: "Octo Cat", PublicRepos: 12},
	}
	cleanup := setupTestServices(catalog, client)
	defer cleanup()

	out, err := runCommand(t, "developer", "octo")

	require.NoError(t, err)
	assert.Contains(t, out, "Octo Cat (octo), 12 public repositories")
	assert.Contains(t, out, "acme/widgets")
	assert.Equal(t, domain.DeveloperKey("octo"), catalog.lastKey)
}

func TestDeveloperCmd_RequiresLogin(t *testing.T) {
	cleanup := setupTestServices(nil, nil)
	defer cleanup()

	_, err := runCommand(t, "developer")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestFeedError_DecoratesRateLimitWithReset(t *testing.T) {
	reset := time.Now().Add(30 * time.Minute)
	cleanup := setupTestServices(
		&stubCatalogService{err: &domain.CatalogError{Kind: domain.ClassRateLimited, Message: "quota spent"}},
		&stubCatalogClient{rate: domain.RateState{ResetAt: reset}},
	)
	defer cleanup()

	_, err := runCommand(t, "trending")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resets")
}

func TestFeedError_SignInHintOnlyWhenSignedOut(t *testing.T) {
	rateLimited := func() *stubCatalogService {
		return &stubCatalogService{
			err: &domain.CatalogError{Kind: domain.ClassRateLimited, Message: "quota spent"},
		}
	}

	t.Run("signed out gets the hint", func(t *testing.T) {
		cleanup := setupTestServices(rateLimited(), nil)
		defer cleanup()

		_, err := runCommand(t, "trending")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth login")
	})

	t.Run("stored credential suppresses the hint", func(t *testing.T) {
		cleanup := setupTestServices(rateLimited(), nil)
		defer cleanup()
		authService.(*stubAuthService).cred = &domain.Credential{Token: "ghp_x", Login: "octo"}

		_, err := runCommand(t, "trending")

		require.Error(t, err)
		assert.NotContains(t, err.Error(), "auth login")
		assert.NotContains(t, err.Error(), "sign in")
	})
}

func TestFeedError_PassesThroughOtherErrors(t *testing.T) {
	cause := &domain.CatalogError{Kind: domain.ClassTransient, Message: "flaky upstream"}
	cleanup := setupTestServices(&stubCatalogService{err: cause}, nil)
	defer cleanup()

	_, err := runCommand(t, "trending")

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "resets")
}

package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/services"
)

// yesProber reports every candidate URL as present.
type yesProber struct{ probes []string }

func (p *yesProber) Probe(_ context.Context, url string) bool {
	p.probes = append(p.probes, url)
	return true
}

func successTab(app *App, entries []domain.RepositoryEntry) *feedTab {
	t := app.tabs[0]
	t.state = domain.SuccessState(entries)
	t.list.SetEntries(entries)
	return t
}

func TestApp_RenderError_SignInHintOnlyWhenSignedOut(t *testing.T) {
	app, err := NewApp(&Ports{Catalog: stubCatalog{}})
	require.NoError(t, err)

	tab := app.tabs[0]
	tab.state = domain.ErrorState("API rate limit reached.", true, nil)

	out := app.renderError(tab)
	assert.Contains(t, out, "auth login")

	app.login = "octo"
	out = app.renderError(tab)
	assert.NotContains(t, out, "auth login")
	assert.NotContains(t, out, "Sign in")
}

func TestApp_RenderError_NoHintForOtherErrors(t *testing.T) {
	app, err := NewApp(&Ports{Catalog: stubCatalog{}})
	require.NoError(t, err)

	tab := app.tabs[0]
	tab.state = domain.ErrorState("Network error.", false, nil)

	assert.NotContains(t, app.renderError(tab), "auth login")
}

func TestApp_ResolveBanner_ShowsSelectedEntryBanner(t *testing.T) {
	prober := &yesProber{}
	app, err := NewApp(&Ports{
		Catalog: stubCatalog{},
		Banner:  services.NewBannerService(prober, ""),
	})
	require.NoError(t, err)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	entries := []domain.RepositoryEntry{
		{ID: 7, Owner: domain.Owner{Login: "acme"}, Name: "widgets", DefaultBranch: "main"},
	}
	tab := successTab(app, entries)

	cmd := app.resolveBanner(tab.list.Selected())
	require.NotNil(t, cmd)

	msg, ok := cmd().(bannerMsg)
	require.True(t, ok)
	assert.Equal(t, int64(7), msg.id)
	assert.Contains(t, msg.url, "acme/widgets")

	app.Update(msg)
	assert.Contains(t, app.renderBody(), "Banner: "+msg.url)
}

func TestApp_ResolveBanner_SkipsAlreadyRequestedEntry(t *testing.T) {
	prober := &yesProber{}
	app, err := NewApp(&Ports{
		Catalog: stubCatalog{},
		Banner:  services.NewBannerService(prober, ""),
	})
	require.NoError(t, err)

	entries := []domain.RepositoryEntry{
		{ID: 7, Owner: domain.Owner{Login: "acme"}, Name: "widgets"},
	}
	tab := successTab(app, entries)

	require.NotNil(t, app.resolveBanner(tab.list.Selected()))
	assert.Nil(t, app.resolveBanner(tab.list.Selected()))
}

func TestApp_ResolveBanner_NilWithoutBannerPort(t *testing.T) {
	app, err := NewApp(&Ports{Catalog: stubCatalog{}})
	require.NoError(t, err)

	entries := []domain.RepositoryEntry{
		{ID: 7, Owner: domain.Owner{Login: "acme"}, Name: "widgets"},
	}
	tab := successTab(app, entries)

	assert.Nil(t, app.resolveBanner(tab.list.Selected()))
}

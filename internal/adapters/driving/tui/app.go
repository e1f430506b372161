// Package tui is the interactive terminal frontend, following the Elm
// architecture on top of Bubbletea.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/repostore-labs/repostore-cli/internal/adapters/driving/tui/components/feedlist"
	"github.com/repostore-labs/repostore-cli/internal/adapters/driving/tui/styles"
	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driving"
)

// tabSearch is the position of the search tab.
const tabSearch = 3

// feedTab is one feed surface: a key, its live handle and its list.
type feedTab struct {
	name   string
	key    domain.FeedKey
	handle driving.FeedHandle
	list   *feedlist.FeedList
	state  domain.FeedState
}

// openedMsg reports a feed handle becoming available.
type openedMsg struct {
	tab    int
	handle driving.FeedHandle
	err    error
}

// stateMsg carries one feed state transition into the update loop.
type stateMsg struct {
	tab   int
	state domain.FeedState
	ok    bool
}

// authMsg carries the signed-in identity for the status bar.
type authMsg struct {
	cred *domain.Credential
}

// bannerMsg reports the resolved banner for one entry. An empty url means
// no candidate loaded within the probe bound.
type bannerMsg struct {
	id  int64
	url string
}

// App is the main TUI application. It implements tea.Model.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	tabs      []*feedTab
	activeTab int

	searchInput textinput.Model
	searching   bool
	spinner     spinner.Model

	login string

	bannerURL string
	bannerFor int64

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()

	input := textinput.New()
	input.Placeholder = "search repositories"
	input.CharLimit = 120

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = s.Muted

	tabs := []*feedTab{
		{name: "Trending", key: domain.FeedKey{List: domain.ListTrending}, list: feedlist.NewFeedList(s)},
		{name: "Featured", key: domain.FeedKey{List: domain.ListFeatured}, list: feedlist.NewFeedList(s)},
		{name: "Updated", key: domain.FeedKey{List: domain.ListUpdated}, list: feedlist.NewFeedList(s)},
		{name: "Search", key: domain.SearchKey(""), list: feedlist.NewFeedList(s)},
	}
	for _, t := range tabs {
		t.state = domain.IdleState()
	}

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		tabs:        tabs,
		searchInput: input,
		spinner:     spin,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("repostore"),
		a.openTab(0),
		a.loadAuth(),
		a.spinner.Tick,
	}

	// The search feed is a singleton; arm its listener once up front.
	search := a.ports.Catalog.SearchFeed()
	a.tabs[tabSearch].handle = search
	cmds = append(cmds, a.waitForState(tabSearch, search.States()))

	return tea.Batch(cmds...)
}

// openTab opens the feed behind a tab and hands its handle to the loop.
func (a *App) openTab(tab int) tea.Cmd {
	key := a.tabs[tab].key
	return func() tea.Msg {
		handle, err := a.ports.Catalog.Open(a.ctx, key)
		return openedMsg{tab: tab, handle: handle, err: err}
	}
}

// waitForState blocks on one feed state transition.
func (a *App) waitForState(tab int, ch <-chan domain.FeedState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-ch
		return stateMsg{tab: tab, state: state, ok: ok}
	}
}

// resolveBanner probes for the selected entry's banner off the update
// loop. Probing is skipped when the banner port is absent or the entry's
// banner was already requested.
func (a *App) resolveBanner(e *domain.RepositoryEntry) tea.Cmd {
	if a.ports.Banner == nil || e == nil || e.ID == a.bannerFor {
		return nil
	}
	a.bannerFor = e.ID
	a.bannerURL = ""
	id, owner, repo, branch := e.ID, e.Owner.Login, e.Name, e.Branch()
	return func() tea.Msg {
		url, found := a.ports.Banner.Resolve(a.ctx, owner, repo, branch)
		if !found {
			return bannerMsg{id: id}
		}
		return bannerMsg{id: id, url: url}
	}
}

// loadAuth fetches the stored identity for the status bar.
func (a *App) loadAuth() tea.Cmd {
	if a.ports.Auth == nil {
		return nil
	}
	return func() tea.Msg {
		cred, err := a.ports.Auth.Current(a.ctx)
		if err != nil {
			return authMsg{}
		}
		return authMsg{cred: cred}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		for _, t := range a.tabs {
			t.list.SetDimensions(msg.Width, msg.Height-5)
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case openedMsg:
		if msg.err != nil {
			a.tabs[msg.tab].state = domain.ErrorState(msg.err.Error(), domain.IsRateLimited(msg.err), nil)
			return a, nil
		}
		t := a.tabs[msg.tab]
		t.handle = msg.handle
		t.state = msg.handle.Current()
		t.list.SetEntries(t.state.Entries)
		return a, tea.Batch(
			a.waitForState(msg.tab, msg.handle.States()),
			a.resolveBanner(t.list.Selected()),
		)

	case stateMsg:
		if !msg.ok {
			return a, nil
		}
		t := a.tabs[msg.tab]
		t.state = msg.state
		if len(msg.state.Entries) > 0 || msg.state.Phase == domain.PhaseSuccess || msg.state.Phase == domain.PhaseEmpty {
			t.list.SetEntries(msg.state.Entries)
		}
		return a, tea.Batch(
			a.waitForState(msg.tab, t.handle.States()),
			a.resolveBanner(t.list.Selected()),
		)

	case bannerMsg:
		if msg.id == a.bannerFor {
			a.bannerURL = msg.url
		}
		return a, nil

	case authMsg:
		if msg.cred != nil {
			a.login = msg.cred.Login
		}
		return a, nil
	}

	return a, nil
}

// updateKeys routes key presses: the search input swallows most keys while
// focused, everything else drives the active tab.
func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.searching {
		switch msg.String() {
		case "enter":
			a.searching = false
			a.searchInput.Blur()
			query := a.searchInput.Value()
			return a, func() tea.Msg {
				// Last query wins; empty resets the feed to Idle.
				a.ports.Catalog.Search(a.ctx, query) //nolint:errcheck
				return nil
			}
		case "esc":
			a.searching = false
			a.searchInput.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		return a, cmd
	}

	t := a.tabs[a.activeTab]
	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "tab", "right":
		return a.switchTab((a.activeTab + 1) % len(a.tabs))

	case "shift+tab", "left":
		return a.switchTab((a.activeTab + len(a.tabs) - 1) % len(a.tabs))

	case "1", "2", "3", "4":
		return a.switchTab(int(msg.String()[0] - '1'))

	case "/":
		a.activeTab = tabSearch
		a.searching = true
		a.searchInput.Focus()
		return a, textinput.Blink

	case "r":
		if t.handle == nil {
			return a, a.openTab(a.activeTab)
		}
		key := t.handle.Key()
		if t.state.Phase == domain.PhaseError {
			return a, func() tea.Msg {
				a.ports.Catalog.Retry(a.ctx, key) //nolint:errcheck
				return nil
			}
		}
		return a, func() tea.Msg {
			a.ports.Catalog.Refresh(a.ctx, key) //nolint:errcheck
			return nil
		}

	case "down", "j":
		atBottom := t.list.AtBottom()
		t.list.Update(msg)
		banner := a.resolveBanner(t.list.Selected())
		if atBottom && t.handle != nil {
			// Scrolling past the end loads the next page.
			key := t.handle.Key()
			return a, tea.Batch(banner, func() tea.Msg {
				a.ports.Catalog.LoadMore(a.ctx, key) //nolint:errcheck
				return nil
			})
		}
		return a, banner

	default:
		t.list.Update(msg)
		return a, a.resolveBanner(t.list.Selected())
	}
}

// switchTab activates a tab, opening its feed on first visit.
func (a *App) switchTab(tab int) (tea.Model, tea.Cmd) {
	a.activeTab = tab
	t := a.tabs[tab]
	if t.handle == nil && tab != tabSearch {
		return a, a.openTab(tab)
	}
	return a, a.resolveBanner(t.list.Selected())
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := a.renderTabs()
	body := a.renderBody()
	status := a.renderStatusBar()
	help := a.styles.Help.Render("tab: switch  /: search  r: refresh  j/k: move  q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, help)
}

func (a *App) renderTabs() string {
	parts := make([]string, len(a.tabs))
	for i, t := range a.tabs {
		if i == a.activeTab {
			parts[i] = a.styles.ActiveTab.Render(t.name)
		} else {
			parts[i] = a.styles.Tab.Render(t.name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) renderBody() string {
	t := a.tabs[a.activeTab]

	var top string
	if a.activeTab == tabSearch {
		top = a.styles.InputField.Render(a.searchInput.View())
	}

	var body string
	switch t.state.Phase {
	case domain.PhaseIdle:
		if a.activeTab == tabSearch {
			body = a.styles.Muted.Render("Type / to search.")
		} else {
			body = a.spinner.View() + a.styles.Muted.Render("Loading...")
		}
	case domain.PhaseLoading:
		body = a.spinner.View() + a.styles.Muted.Render("Loading...")
	case domain.PhaseEmpty:
		body = a.styles.Muted.Render("Nothing here.")
	case domain.PhaseError:
		body = a.renderError(t)
	default:
		body = t.list.View()
		if sel := t.list.Selected(); sel != nil && sel.ID == a.bannerFor && a.bannerURL != "" {
			body += "\n" + a.styles.Muted.Render("Banner: "+a.bannerURL)
		}
		if t.state.Phase == domain.PhaseLoadingMore {
			body += "\n" + a.spinner.View() + a.styles.Muted.Render("Loading more...")
		}
	}

	if top != "" {
		return lipgloss.JoinVertical(lipgloss.Left, top, body)
	}
	return body
}

// renderError keeps already-loaded entries visible under the error line.
// The sign-in hint appears only while no credential is stored; a signed-in
// user already holds the higher quota.
func (a *App) renderError(t *feedTab) string {
	style := a.styles.Error
	if t.state.IsRateLimit {
		style = a.styles.Warning
	}
	line := style.Render(t.state.Message)
	if t.state.IsRateLimit && a.login == "" {
		line += "  " + a.styles.Muted.Render("Sign in with `repostore auth login` to raise the limit.")
	}
	line += "  " + a.styles.Help.Render("(r to retry)")
	if len(t.state.Entries) > 0 {
		return lipgloss.JoinVertical(lipgloss.Left, line, t.list.View())
	}
	return line
}

func (a *App) renderStatusBar() string {
	identity := "anonymous"
	if a.login != "" {
		identity = "@" + a.login
	}
	return a.styles.StatusBar.Width(a.width).Render(identity)
}

package github

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driven"
	"github.com/repostore-labs/repostore-cli/internal/logger"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultPerPage is the default upstream page size.
const DefaultPerPage = 30

// timeNow is swappable for tests.
var timeNow = time.Now

// Ensure Client implements the port.
var _ driven.CatalogClient = (*Client)(nil)

// Options configures the catalog client.
type Options struct {
	// Org scopes the catalog to one organization. Optional.
	Org string

	// Topic scopes the catalog to repositories carrying this topic.
	// Optional.
	Topic string

	// PerPage is the upstream page size. Defaults to DefaultPerPage.
	PerPage int
}

// Client implements driven.CatalogClient over the GitHub REST API.
// The underlying client is built lazily so the stored credential is read
// when first needed; a missing credential degrades to the anonymous,
// lower-quota identity.
type Client struct {
	vault   driven.CredentialVault
	monitor *Monitor
	opts    Options

	mu sync.Mutex
	gh *gh.Client
}

// NewClient creates a catalog client. vault may be nil for a client that
// is always anonymous.
func NewClient(vault driven.CredentialVault, opts Options) *Client {
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	return &Client{
		vault:   vault,
		monitor: NewMonitor(),
		opts:    opts,
	}
}

// Monitor returns the rate-limit monitor for external observation.
func (c *Client) Monitor() *Monitor {
	return c.monitor
}

// RateState returns the last observed upstream quota state.
func (c *Client) RateState() domain.RateState {
	return c.monitor.State()
}

// ensureClient initializes the underlying client if not already done,
// attaching the stored credential when one exists.
func (c *Client) ensureClient(ctx context.Context) (*gh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gh != nil {
		return c.gh, nil
	}

	var token string
	if c.vault != nil {
		cred, err := c.vault.Get(ctx)
		if err != nil {
			// Vault trouble never blocks the catalog; degrade to anonymous.
			logger.Warn("reading credential: %v", err)
		} else if cred != nil {
			token = cred.Token
		}
	}

	c.gh = newGitHubClient(ctx, token)
	if token == "" {
		logger.Debug("catalog client is anonymous (%d req/hour)", AnonymousQuota)
	}
	return c.gh, nil
}

func newGitHubClient(ctx context.Context, token string) *gh.Client {
	if token == "" {
		return gh.NewClient(&http.Client{Timeout: DefaultTimeout})
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout
	return gh.NewClient(tc)
}

// Reset drops the lazily built client so the next call re-reads the
// credential. Called after sign-in/sign-out.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gh = nil
}

// ListRepositories fetches one page of the feed identified by key.
func (c *Client) ListRepositories(ctx context.Context, key domain.FeedKey, cursor string) (*domain.FeedPage, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	page, err := DecodeCursor(key, cursor)
	if err != nil {
		return nil, &domain.CatalogError{Kind: domain.ClassTransient, Message: err.Error()}
	}

	if err := c.monitor.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	query := buildQuery(key, c.opts.Org, c.opts.Topic)
	sortBy, order := sortFor(key.List)
	searchOpts := &gh.SearchOptions{
		Sort:        sortBy,
		Order:       order,
		ListOptions: gh.ListOptions{Page: page, PerPage: c.opts.PerPage},
	}

	logger.Debug("search %q sort=%s page=%d", query, sortBy, page)
	result, resp, err := client.Search.Repositories(ctx, query, searchOpts)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "list repositories")
	}

	now := timeNow()
	entries := make([]domain.RepositoryEntry, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		entries = append(entries, mapRepository(r, now))
	}

	next := ""
	if resp != nil && resp.NextPage > 0 {
		next = EncodeCursor(key, resp.NextPage)
	}

	return &domain.FeedPage{
		Key:       key,
		Entries:   entries,
		Cursor:    next,
		FetchedAt: now,
	}, nil
}

// GetRepository fetches a single repository snapshot.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*domain.RepositoryEntry, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.monitor.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	r, resp, err := client.Repositories.Get(ctx, owner, repo)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "get repository")
	}

	entry := mapRepository(r, timeNow())
	return &entry, nil
}

// GetUser fetches a developer profile.
func (c *Client) GetUser(ctx context.Context, login string) (*domain.Developer, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.monitor.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	user, resp, err := client.Users.Get(ctx, login)
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "get user")
	}

	return mapUser(user), nil
}

// GetReleases lists published releases, newest first. An asset missing
// its download URL is degraded to absent rather than failing the release.
func (c *Client) GetReleases(ctx context.Context, owner, repo string) ([]domain.ReleaseInfo, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.monitor.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	releases, resp, err := client.Repositories.ListReleases(ctx, owner, repo, &gh.ListOptions{PerPage: c.opts.PerPage})
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "list releases")
	}

	infos := make([]domain.ReleaseInfo, 0, len(releases))
	for _, r := range releases {
		if r.GetDraft() {
			continue
		}
		info := domain.ReleaseInfo{
			TagName:      r.GetTagName(),
			DisplayName:  r.GetName(),
			BodyMarkdown: r.GetBody(),
			PublishedAt:  r.GetPublishedAt().Time,
			HTMLURL:      r.GetHTMLURL(),
		}
		for _, a := range r.Assets {
			if a.GetBrowserDownloadURL() == "" {
				continue
			}
			info.Assets = append(info.Assets, domain.ReleaseAsset{
				Name:        a.GetName(),
				DownloadURL: a.GetBrowserDownloadURL(),
			})
		}
		infos = append(infos, info)
	}

	return infos, nil
}

// GetReadme returns the repository readme as markdown text. A readme that
// exists but fails to decode degrades to empty rather than failing the
// whole detail view.
func (c *Client) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return "", err
	}
	if err := c.monitor.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	content, resp, err := client.Repositories.GetReadme(ctx, owner, repo, nil)
	c.observe(resp)
	if err != nil {
		return "", c.wrapError(err, "get readme")
	}

	text, err := content.GetContent()
	if err != nil {
		logger.Warn("decoding readme for %s/%s: %v", owner, repo, err)
		return "", nil
	}
	return text, nil
}

// ValidateToken checks a candidate token against the upstream API and
// returns the profile it authenticates as. The stored credential is not
// consulted; the candidate token alone is exercised.
func (c *Client) ValidateToken(ctx context.Context, token string) (*domain.Developer, error) {
	if token == "" {
		return nil, domain.ErrInvalidInput
	}

	if err := c.monitor.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	candidate := newGitHubClient(ctx, token)
	user, resp, err := candidate.Users.Get(ctx, "")
	c.observe(resp)
	if err != nil {
		return nil, c.wrapError(err, "validate token")
	}

	return mapUser(user), nil
}

// observe feeds response metadata into the monitor.
func (c *Client) observe(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.monitor.Observe(resp.Response)
}

// mapRepository converts an upstream repository to the domain snapshot,
// deriving the display tag at map time.
func mapRepository(r *gh.Repository, now time.Time) domain.RepositoryEntry {
	return domain.RepositoryEntry{
		ID: r.GetID(),
		Owner: domain.Owner{
			Login:     r.GetOwner().GetLogin(),
			AvatarURL: r.GetOwner().GetAvatarURL(),
		},
		Name:          r.GetName(),
		Description:   r.GetDescription(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		Language:      r.GetLanguage(),
		Topics:        r.Topics,
		CreatedAt:     r.GetCreatedAt().Time,
		UpdatedAt:     r.GetPushedAt().Time,
		DefaultBranch: r.GetDefaultBranch(),
		Archived:      r.GetArchived(),
		HTMLURL:       r.GetHTMLURL(),
		Tag:           domain.DeriveTag(r.GetCreatedAt().Time, r.GetPushedAt().Time, r.GetArchived(), now),
	}
}

func mapUser(u *gh.User) *domain.Developer {
	return &domain.Developer{
		Login:       u.GetLogin(),
		Name:        u.GetName(),
		AvatarURL:   u.GetAvatarURL(),
		Bio:         u.GetBio(),
		PublicRepos: u.GetPublicRepos(),
		HTMLURL:     u.GetHTMLURL(),
	}
}

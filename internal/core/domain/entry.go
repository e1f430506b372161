package domain

import (
	"fmt"
	"sort"
	"time"
)

const (
	// NewTagWindow is how recently a repository must have been created
	// to carry the NEW tag.
	NewTagWindow = 30 * 24 * time.Hour

	// UpdatedTagWindow is how recently a repository must have been pushed
	// to carry the UPDATED tag.
	UpdatedTagWindow = 14 * 24 * time.Hour
)

// Tag is a derived badge describing a repository's recency or state.
type Tag string

// Repository tags.
const (
	TagNone     Tag = ""
	TagNew      Tag = "NEW"
	TagUpdated  Tag = "UPDATED"
	TagArchived Tag = "ARCHIVED"
)

// Owner identifies the account that owns a repository.
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RepositoryEntry is an immutable snapshot of a catalog repository.
// Entries are value objects: freely shared, never mutated after construction.
type RepositoryEntry struct {
	ID            int64     `json:"id"`
	Owner         Owner     `json:"owner"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	Language      string    `json:"language,omitempty"`
	Topics        []string  `json:"topics,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	DefaultBranch string    `json:"default_branch"`
	Archived      bool      `json:"archived"`
	HTMLURL       string    `json:"html_url"`
	Tag           Tag       `json:"tag,omitempty"`
}

// FullName returns the owner-qualified repository name.
func (e RepositoryEntry) FullName() string {
	return e.Owner.Login + "/" + e.Name
}

// Branch returns the default branch, falling back to "main" when the
// upstream response omitted it.
func (e RepositoryEntry) Branch() string {
	if e.DefaultBranch == "" {
		return "main"
	}
	return e.DefaultBranch
}

// DeriveTag computes the display tag for a repository. Archived wins over
// recency; NEW wins over UPDATED.
func DeriveTag(createdAt, updatedAt time.Time, archived bool, now time.Time) Tag {
	switch {
	case archived:
		return TagArchived
	case now.Sub(createdAt) <= NewTagWindow:
		return TagNew
	case now.Sub(updatedAt) <= UpdatedTagWindow:
		return TagUpdated
	default:
		return TagNone
	}
}

// Developer is a catalog developer profile.
type Developer struct {
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Bio         string `json:"bio,omitempty"`
	PublicRepos int    `json:"public_repos"`
	HTMLURL     string `json:"html_url"`
}

// ReleaseAsset is a downloadable artifact attached to a release.
type ReleaseAsset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}

// ReleaseInfo is an immutable snapshot of a published release.
type ReleaseInfo struct {
	TagName      string         `json:"tag_name"`
	DisplayName  string         `json:"display_name,omitempty"`
	BodyMarkdown string         `json:"body_markdown,omitempty"`
	PublishedAt  time.Time      `json:"published_at"`
	HTMLURL      string         `json:"html_url"`
	Assets       []ReleaseAsset `json:"assets,omitempty"`
}

// FormatCount renders a count the way store listings do: 999, 1.2K, 3.4M.
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// Feed composition rails. These are read-only views over an already fetched
// feed; they copy before sorting so the feed's merge order is untouched.

// FeaturedRail returns the top five entries by star count.
func FeaturedRail(entries []RepositoryEntry) []RepositoryEntry {
	byStars := sortedByStars(entries)
	return takeEntries(byStars, 0, 5)
}

// PopularRail returns the ten entries ranked after the featured rail.
func PopularRail(entries []RepositoryEntry) []RepositoryEntry {
	byStars := sortedByStars(entries)
	rail := takeEntries(byStars, 5, 10)
	if len(rail) == 0 {
		return takeEntries(byStars, 0, 10)
	}
	return rail
}

// NewestRail returns the ten most recently created entries.
func NewestRail(entries []RepositoryEntry) []RepositoryEntry {
	sorted := make([]RepositoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return takeEntries(sorted, 0, 10)
}

func sortedByStars(entries []RepositoryEntry) []RepositoryEntry {
	sorted := make([]RepositoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Stars > sorted[j].Stars
	})
	return sorted
}

func takeEntries(entries []RepositoryEntry, offset, count int) []RepositoryEntry {
	if offset >= len(entries) {
		return nil
	}
	end := offset + count
	if end > len(entries) {
		end = len(entries)
	}
	out := make([]RepositoryEntry, end-offset)
	copy(out, entries[offset:end])
	return out
}

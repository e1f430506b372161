package domain

import (
	"strings"
	"time"
)

// ListType identifies a ranked feed over the catalog.
type ListType string

// Feed list types.
const (
	ListTrending ListType = "TRENDING"
	ListFeatured ListType = "FEATURED"
	ListUpdated  ListType = "UPDATED"
	ListSearch   ListType = "SEARCH"
)

// ParseListType converts a string to a ListType.
func ParseListType(s string) (ListType, error) {
	switch ListType(strings.ToUpper(strings.TrimSpace(s))) {
	case ListTrending:
		return ListTrending, nil
	case ListFeatured:
		return ListFeatured, nil
	case ListUpdated:
		return ListUpdated, nil
	case ListSearch:
		return ListSearch, nil
	default:
		return "", ErrInvalidInput
	}
}

// DeveloperCategoryPrefix marks a category that scopes a feed to a single
// developer's repositories instead of a topic.
const DeveloperCategoryPrefix = "developer:"

// FeedKey is the identity of a feed for pagination and caching.
type FeedKey struct {
	List     ListType `json:"list"`
	Category string   `json:"category,omitempty"`
	Query    string   `json:"query,omitempty"`
}

// DeveloperKey builds the feed key for a single developer's repositories.
func DeveloperKey(login string) FeedKey {
	return FeedKey{List: ListUpdated, Category: DeveloperCategoryPrefix + login}
}

// SearchKey builds the feed key for a free-text search.
func SearchKey(query string) FeedKey {
	return FeedKey{List: ListSearch, Query: strings.TrimSpace(query)}
}

// Developer returns the developer login a category-scoped key targets,
// or "" when the key is topic-scoped.
func (k FeedKey) Developer() string {
	if strings.HasPrefix(k.Category, DeveloperCategoryPrefix) {
		return strings.TrimPrefix(k.Category, DeveloperCategoryPrefix)
	}
	return ""
}

// Validate checks the key is well formed.
func (k FeedKey) Validate() error {
	switch k.List {
	case ListTrending, ListFeatured, ListUpdated:
		if k.Query != "" {
			return ErrInvalidInput
		}
	case ListSearch:
		if k.Category != "" {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}
	return nil
}

// String returns the canonical identity used for cache records and
// in-memory feed handles.
func (k FeedKey) String() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(string(k.List)))
	if k.Category != "" {
		b.WriteString("/")
		b.WriteString(strings.ToLower(k.Category))
	}
	if k.Query != "" {
		b.WriteString("?q=")
		b.WriteString(strings.ToLower(k.Query))
	}
	return b.String()
}

// FeedPage is one merged, ordered slice of a feed. Cursor is opaque; an
// empty cursor means the feed is exhausted.
type FeedPage struct {
	Key       FeedKey           `json:"key"`
	Entries   []RepositoryEntry `json:"entries"`
	Cursor    string            `json:"cursor,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
	Stale     bool              `json:"stale,omitempty"`
}

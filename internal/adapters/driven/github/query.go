package github

import (
	"strings"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// buildQuery renders the upstream search expression for a feed key.
// The catalog universe (org and/or topic) scopes every feed except
// developer feeds, which scope to the developer's account instead.
func buildQuery(key domain.FeedKey, org, topic string) string {
	var parts []string

	if dev := key.Developer(); dev != "" {
		parts = append(parts, "user:"+dev)
	} else {
		if org != "" {
			parts = append(parts, "org:"+org)
		}
		if topic != "" {
			parts = append(parts, "topic:"+topic)
		}
		if key.Category != "" {
			parts = append(parts, "topic:"+strings.ToLower(key.Category))
		}
	}

	if key.List == domain.ListSearch && key.Query != "" {
		parts = append([]string{key.Query}, parts...)
	}

	// The search endpoint rejects an empty expression; an unscoped
	// catalog falls back to any-starred repositories.
	if len(parts) == 0 {
		parts = append(parts, "stars:>0")
	}

	return strings.Join(parts, " ")
}

// sortFor maps a list type to the upstream sort parameters. Search uses
// upstream best-match ranking.
func sortFor(list domain.ListType) (sortBy, order string) {
	switch list {
	case domain.ListTrending, domain.ListFeatured:
		return "stars", "desc"
	case domain.ListUpdated:
		return "updated", "desc"
	default:
		return "", ""
	}
}

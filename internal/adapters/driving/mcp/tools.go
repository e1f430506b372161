package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// SearchInput is the input schema for the search_catalog tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"free text to search repositories for"`
	Pages int    `json:"pages,omitempty" jsonschema:"number of result pages to load (default 1)"`
}

// ListFeedInput is the input schema for the list_feed tool.
type ListFeedInput struct {
	Feed  string `json:"feed" jsonschema:"feed to list: trending, featured or updated"`
	Pages int    `json:"pages,omitempty" jsonschema:"number of result pages to load (default 1)"`
}

// GetRepositoryInput is the input schema for the get_repository tool.
type GetRepositoryInput struct {
	Owner string `json:"owner" jsonschema:"repository owner login"`
	Repo  string `json:"repo" jsonschema:"repository name"`
}

// EntriesOutput is the output schema for feed and search tools.
type EntriesOutput struct {
	Entries []EntryOutput `json:"entries"`
	Count   int           `json:"count"`
}

// EntryOutput represents a single catalog entry.
type EntryOutput struct {
	FullName    string `json:"full_name"`
	Description string `json:"description,omitempty"`
	Stars       int    `json:"stars"`
	Language    string `json:"language,omitempty"`
	Tag         string `json:"tag,omitempty"`
	URL         string `json:"url"`
}

// RepositoryOutput is the output schema for the get_repository tool.
type RepositoryOutput struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description,omitempty"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	Language      string   `json:"language,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	Tag           string   `json:"tag,omitempty"`
	DefaultBranch string   `json:"default_branch"`
	Archived      bool     `json:"archived"`
	URL           string   `json:"url"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_catalog",
		Description: "Search the repository catalog by free text",
	}, s.handleSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_feed",
		Description: "List a catalog feed (trending, featured or updated)",
	}, s.handleListFeed)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_repository",
		Description: "Get details for a single repository",
	}, s.handleGetRepository)
}

// handleSearch handles the search_catalog tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, EntriesOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, EntriesOutput{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	entries, err := s.ports.Catalog.Snapshot(ctx, domain.SearchKey(query), pagesOrDefault(input.Pages))
	if err != nil {
		return nil, EntriesOutput{}, err
	}
	return nil, entriesOutput(entries), nil
}

// handleListFeed handles the list_feed tool invocation.
func (s *Server) handleListFeed(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListFeedInput,
) (*mcp.CallToolResult, EntriesOutput, error) {
	list, err := domain.ParseListType(input.Feed)
	if err != nil || list == domain.ListSearch {
		return nil, EntriesOutput{}, fmt.Errorf("%w: unknown feed %q", domain.ErrInvalidInput, input.Feed)
	}

	entries, err := s.ports.Catalog.Snapshot(ctx, domain.FeedKey{List: list}, pagesOrDefault(input.Pages))
	if err != nil {
		return nil, EntriesOutput{}, err
	}
	return nil, entriesOutput(entries), nil
}

// handleGetRepository handles the get_repository tool invocation.
func (s *Server) handleGetRepository(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetRepositoryInput,
) (*mcp.CallToolResult, RepositoryOutput, error) {
	if input.Owner == "" || input.Repo == "" {
		return nil, RepositoryOutput{}, fmt.Errorf("%w: owner and repo are required", domain.ErrInvalidInput)
	}

	entry, err := s.ports.Client.GetRepository(ctx, input.Owner, input.Repo)
	if err != nil {
		return nil, RepositoryOutput{}, err
	}

	return nil, RepositoryOutput{
		FullName:      entry.FullName(),
		Description:   entry.Description,
		Stars:         entry.Stars,
		Forks:         entry.Forks,
		Language:      entry.Language,
		Topics:        entry.Topics,
		Tag:           string(entry.Tag),
		DefaultBranch: entry.Branch(),
		Archived:      entry.Archived,
		URL:           entry.HTMLURL,
	}, nil
}

func pagesOrDefault(pages int) int {
	if pages <= 0 {
		return 1
	}
	return pages
}

func entriesOutput(entries []domain.RepositoryEntry) EntriesOutput {
	out := EntriesOutput{
		Entries: make([]EntryOutput, len(entries)),
		Count:   len(entries),
	}
	for i := range entries {
		out.Entries[i] = EntryOutput{
			FullName:    entries[i].FullName(),
			Description: entries[i].Description,
			Stars:       entries[i].Stars,
			Language:    entries[i].Language,
			Tag:         string(entries[i].Tag),
			URL:         entries[i].HTMLURL,
		}
	}
	return out
}

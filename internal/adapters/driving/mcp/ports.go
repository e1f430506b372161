package mcp

import (
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driven"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driving"
)

// Ports aggregates the interfaces the MCP server is driven against.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog serves feeds and search.
	Catalog driving.CatalogService

	// Client serves single-repository lookups.
	Client driven.CatalogClient
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	if p.Client == nil {
		return ErrMissingCatalogClient
	}
	return nil
}

package tui

import (
	"errors"

	"github.com/repostore-labs/repostore-cli/internal/core/ports/driving"
	"github.com/repostore-labs/repostore-cli/internal/core/services"
)

// ErrMissingCatalogService is returned when the catalog service is not provided.
var ErrMissingCatalogService = errors.New("tui: catalog service is required")

// Ports aggregates the interfaces the TUI is driven against.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog serves feeds and search.
	Catalog driving.CatalogService

	// Auth reports the signed-in identity for the status bar.
	Auth driving.AuthService

	// Banner resolves the selected entry's banner. Optional; entries fall
	// back to a deterministic colour block without it.
	Banner *services.BannerService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	// Auth and Banner are optional
	return nil
}

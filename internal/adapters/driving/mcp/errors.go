// Package mcp provides an MCP (Model Context Protocol) server adapter for
// the catalog. It enables AI assistants to browse and search the catalog.
package mcp

import "errors"

// ErrMissingCatalogService is returned when the catalog service is not provided.
var ErrMissingCatalogService = errors.New("mcp: catalog service is required")

// ErrMissingCatalogClient is returned when the catalog client is not provided.
var ErrMissingCatalogClient = errors.New("mcp: catalog client is required")

// Package github implements the catalog client port over the GitHub REST
// API.
//
// Feeds are served by the repository search endpoint, scoped to the
// configured catalog universe (organization and/or topic). Continuation
// tokens are opaque base64 cursors so the upstream paging scheme stays
// encapsulated. All transport failures are translated into classified
// catalog errors at this boundary; classification derives from HTTP
// status and the X-RateLimit-* headers, never from message text.
package github

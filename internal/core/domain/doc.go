// Package domain defines the core business entities for the repostore
// catalog engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RepositoryEntry: An immutable catalog repository snapshot
//   - ReleaseInfo: A published release with its assets
//   - FeedKey / FeedPage: Feed identity and one merged slice of a feed
//   - FeedState: The tagged state exposed to feed consumers
//   - Credential: The stored authenticated identity
//   - RateState / Classification: Upstream quota state and failure taxonomy
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

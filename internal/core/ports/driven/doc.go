// Package driven defines the interfaces that core calls OUT to
// infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them:
//
//   - CatalogClient: Typed access to the upstream repository catalog
//   - CacheStore: Feed page persistence with freshness metadata
//   - CredentialVault: Encrypted-at-rest credential storage
//   - BannerProber: Best-effort single-URL banner probe
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

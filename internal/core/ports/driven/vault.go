package driven

import (
	"context"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// CredentialVault stores the user's credential encrypted at rest.
// Implementations create their backing store lazily on first use, run the
// one-time migration from the legacy plaintext store, and fall back to an
// unencrypted backing transparently when encryption is unavailable;
// callers never observe which backing was used.
type CredentialVault interface {
	// Get returns the stored credential, or nil when none exists.
	Get(ctx context.Context) (*domain.Credential, error)

	// Save stores the credential, replacing any previous one.
	Save(ctx context.Context, cred domain.Credential) error

	// Clear removes the stored credential.
	Clear(ctx context.Context) error
}

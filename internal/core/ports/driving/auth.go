package driving

import (
	"context"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// AuthService manages the stored upstream identity.
type AuthService interface {
	// SignIn validates the token upstream and stores the resulting
	// credential in the vault.
	SignIn(ctx context.Context, token string) (*domain.Credential, error)

	// SignOut clears the stored credential.
	SignOut(ctx context.Context) error

	// Current returns the stored credential, or nil when signed out.
	Current(ctx context.Context) (*domain.Credential, error)
}

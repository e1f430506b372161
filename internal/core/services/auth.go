package services

import (
	"context"
	"fmt"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driven"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driving"
	"github.com/repostore-labs/repostore-cli/internal/logger"
)

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthService manages the stored upstream identity.
type AuthService struct {
	vault  driven.CredentialVault
	client driven.CatalogClient
}

// NewAuthService creates a new auth service.
func NewAuthService(vault driven.CredentialVault, client driven.CatalogClient) *AuthService {
	return &AuthService{vault: vault, client: client}
}

// SignIn validates the token upstream and stores the resulting credential.
func (s *AuthService) SignIn(ctx context.Context, token string) (*domain.Credential, error) {
	if token == "" {
		return nil, domain.ErrInvalidInput
	}

	dev, err := s.client.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("validating token: %w", err)
	}

	cred := domain.Credential{
		Token:       token,
		Login:       dev.Login,
		AvatarURL:   dev.AvatarURL,
		DisplayName: dev.Name,
	}
	if err := s.vault.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("saving credential: %w", err)
	}

	logger.Info("signed in as %s", cred.Login)
	return &cred, nil
}

// SignOut clears the stored credential.
func (s *AuthService) SignOut(ctx context.Context) error {
	if err := s.vault.Clear(ctx); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}

// Current returns the stored credential, or nil when signed out.
func (s *AuthService) Current(ctx context.Context) (*domain.Credential, error) {
	return s.vault.Get(ctx)
}

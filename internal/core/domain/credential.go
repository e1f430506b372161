package domain

// Credential is the stored identity used to present an authenticated,
// higher-quota caller to the upstream API. At most one credential exists
// at a time.
type Credential struct {
	// Token is the opaque OAuth/PAT secret.
	Token string `json:"token"`
	// Login is the account login the token belongs to.
	Login string `json:"login"`
	// AvatarURL is the account avatar, when known.
	AvatarURL string `json:"avatar_url,omitempty"`
	// DisplayName is the account's display name, when known.
	DisplayName string `json:"display_name,omitempty"`
	// Migrated records that this credential was carried over from the
	// legacy plaintext store.
	Migrated bool `json:"migrated,omitempty"`
}

// IsAuthenticated returns true if the credential carries a usable token.
func (c Credential) IsAuthenticated() bool {
	return c.Token != ""
}

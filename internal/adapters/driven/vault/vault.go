// Package vault implements the credential vault as an AES-GCM encrypted
// TOML file, with a one-time migration from the legacy plaintext store
// and a transparent plaintext fallback when key provisioning fails.
package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driven"
	"github.com/repostore-labs/repostore-cli/internal/logger"
)

const (
	vaultDirName      = "vault"
	encryptedFileName = "credentials.enc"
	keyFileName       = "vault.key"
	plainFileName     = "credentials.toml"
)

// record is the on-disk credential shape, shared by the encrypted store,
// the plaintext fallback, and the legacy file.
type record struct {
	AccessToken        string `toml:"access_token"`
	UserLogin          string `toml:"user_login"`
	UserAvatar         string `toml:"user_avatar"`
	UserName           string `toml:"user_name"`
	MigratedFromLegacy bool   `toml:"migrated_from_legacy"`
}

func (r record) empty() bool {
	return r.AccessToken == "" && r.UserLogin == ""
}

// backing is a credential file the vault reads and writes as a whole.
type backing interface {
	load() (record, bool, error)
	store(record) error
}

// Vault is the CredentialVault adapter. The backing store is constructed
// lazily on first use so that simply building the adapter never touches
// the filesystem.
type Vault struct {
	dir string

	mu      sync.Mutex
	backing atomic.Pointer[backingBox]
}

// backingBox wraps the interface so it can live in an atomic.Pointer.
type backingBox struct {
	b backing
}

var _ driven.CredentialVault = (*Vault)(nil)

// NewVault returns a vault rooted at dir, defaulting to ~/.repostore.
func NewVault(dir string) (*Vault, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".repostore")
	}
	return &Vault{dir: dir}, nil
}

// Get implements driven.CredentialVault.
func (v *Vault) Get(_ context.Context) (*domain.Credential, error) {
	b, err := v.ensureBacking()
	if err != nil {
		return nil, err
	}
	rec, ok, err := b.load()
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	if !ok || rec.empty() {
		return nil, nil
	}
	return &domain.Credential{
		Token:       rec.AccessToken,
		Login:       rec.UserLogin,
		AvatarURL:   rec.UserAvatar,
		DisplayName: rec.UserName,
		Migrated:    rec.MigratedFromLegacy,
	}, nil
}

// Save implements driven.CredentialVault. The migration marker survives
// saves so the legacy import never runs twice.
func (v *Vault) Save(_ context.Context, cred domain.Credential) error {
	b, err := v.ensureBacking()
	if err != nil {
		return err
	}
	migrated := cred.Migrated
	if prev, ok, err := b.load(); err == nil && ok {
		migrated = migrated || prev.MigratedFromLegacy
	}
	rec := record{
		AccessToken:        cred.Token,
		UserLogin:          cred.Login,
		UserAvatar:         cred.AvatarURL,
		UserName:           cred.DisplayName,
		MigratedFromLegacy: migrated,
	}
	if err := b.store(rec); err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	return nil
}

// Clear implements driven.CredentialVault. Only the credential fields are
// erased; the migration marker is kept.
func (v *Vault) Clear(_ context.Context) error {
	b, err := v.ensureBacking()
	if err != nil {
		return err
	}
	var migrated bool
	if prev, ok, err := b.load(); err == nil && ok {
		migrated = prev.MigratedFromLegacy
	}
	if err := b.store(record{MigratedFromLegacy: migrated}); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}

// ensureBacking constructs the backing store on first use. The fast path
// is a single atomic load; construction itself is serialized and
// re-checked under the lock.
func (v *Vault) ensureBacking() (backing, error) {
	if box := v.backing.Load(); box != nil {
		return box.b, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if box := v.backing.Load(); box != nil {
		return box.b, nil
	}

	vaultDir := filepath.Join(v.dir, vaultDirName)
	if err := os.MkdirAll(vaultDir, 0700); err != nil {
		return nil, fmt.Errorf("creating vault directory: %w", err)
	}

	var b backing
	key, err := loadOrCreateKey(filepath.Join(vaultDir, keyFileName))
	if err != nil {
		logger.Warn("encrypted vault unavailable, storing credentials in plaintext: %v", err)
		b = &plainBacking{path: filepath.Join(vaultDir, plainFileName)}
	} else {
		b = &encryptedBacking{path: filepath.Join(vaultDir, encryptedFileName), key: key}
	}

	if err := v.migrateLegacy(b); err != nil {
		// The marker is only written after a successful copy, so the
		// migration reruns on the next construction attempt.
		return nil, err
	}

	v.backing.Store(&backingBox{b: b})
	return b, nil
}

// migrateLegacy imports the legacy plaintext credential exactly once:
// copy the fields, mark the migration complete, then erase the legacy
// file, in that order. A crash between any two steps leaves a state the
// next run can safely retry.
func (v *Vault) migrateLegacy(b backing) error {
	rec, _, err := b.load()
	if err != nil {
		return fmt.Errorf("reading vault before migration: %w", err)
	}
	if rec.MigratedFromLegacy {
		return nil
	}

	legacyPath := filepath.Join(v.dir, legacyFileName)
	leg, ok, err := readLegacy(legacyPath)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	logger.Debug("migrating legacy credential store from %s", legacyPath)
	rec.AccessToken = leg.AccessToken
	rec.UserLogin = leg.UserLogin
	rec.UserAvatar = leg.UserAvatar
	rec.UserName = leg.UserName
	if err := b.store(rec); err != nil {
		return fmt.Errorf("copying legacy credential: %w", err)
	}

	rec.MigratedFromLegacy = true
	if err := b.store(rec); err != nil {
		return fmt.Errorf("marking migration complete: %w", err)
	}

	if err := eraseLegacy(legacyPath); err != nil {
		// Copy and marker are durable; a stale legacy file is harmless.
		logger.Warn("could not erase legacy credential file: %v", err)
	}
	return nil
}

// encryptedBacking stores the TOML record sealed with AES-GCM.
type encryptedBacking struct {
	path string
	key  []byte
}

func (e *encryptedBacking) load() (record, bool, error) {
	ciphertext, err := os.ReadFile(e.path)
	if os.IsNotExist(err) {
		return record{}, false, nil
	}
	if err != nil {
		return record{}, false, err
	}
	plaintext, err := open(e.key, ciphertext)
	if err != nil {
		return record{}, false, fmt.Errorf("decrypting credential store: %w", err)
	}
	var rec record
	if err := toml.Unmarshal(plaintext, &rec); err != nil {
		return record{}, false, fmt.Errorf("decoding credential store: %w", err)
	}
	return rec, true, nil
}

func (e *encryptedBacking) store(rec record) error {
	plaintext, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding credential store: %w", err)
	}
	ciphertext, err := seal(e.key, plaintext)
	if err != nil {
		return fmt.Errorf("encrypting credential store: %w", err)
	}
	return os.WriteFile(e.path, ciphertext, 0600)
}

// plainBacking stores the TOML record unencrypted. It is only used when
// key provisioning fails, so credentials remain usable on filesystems
// where the key cannot be persisted.
type plainBacking struct {
	path string
}

func (p *plainBacking) load() (record, bool, error) {
	raw, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return record{}, false, nil
	}
	if err != nil {
		return record{}, false, err
	}
	var rec record
	if err := toml.Unmarshal(raw, &rec); err != nil {
		return record{}, false, fmt.Errorf("decoding credential store: %w", err)
	}
	return rec, true, nil
}

func (p *plainBacking) store(rec record) error {
	raw, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding credential store: %w", err)
	}
	return os.WriteFile(p.path, raw, 0600)
}

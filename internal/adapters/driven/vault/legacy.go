package vault

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// legacyFileName is the plaintext credential file written by releases
// that predate the encrypted vault. It lives in the data directory root
// while the vault keeps its files under its own subdirectory.
const legacyFileName = "auth.toml"

// readLegacy loads the legacy plaintext credential file if one exists.
// An absent file is reported as ok=false, not an error.
func readLegacy(path string) (record, bool, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return record{}, false, nil
	}
	if err != nil {
		return record{}, false, fmt.Errorf("reading legacy credentials: %w", err)
	}

	var rec record
	if err := toml.Unmarshal(raw, &rec); err != nil {
		return record{}, false, fmt.Errorf("decoding legacy credentials: %w", err)
	}
	return rec, true, nil
}

// eraseLegacy removes the legacy credential file. Missing files are fine.
func eraseLegacy(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("erasing legacy credentials: %w", err)
	}
	return nil
}

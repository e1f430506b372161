package github

import (
	"encoding/base64"
	"encoding/json"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// CursorVersion is the current cursor schema version.
const CursorVersion = 1

// pageCursor is the decoded continuation token for a feed. The token is
// opaque to callers so the upstream paging scheme can change without
// breaking stored cursors.
type pageCursor struct {
	// Version is the schema version for future migrations.
	Version int `json:"v"`

	// Page is the next upstream page to request.
	Page int `json:"page"`

	// Feed fingerprints the key the cursor belongs to, so a cursor can
	// never continue a different feed.
	Feed string `json:"feed,omitempty"`
}

// EncodeCursor serializes a continuation token for the given feed key.
func EncodeCursor(key domain.FeedKey, page int) string {
	c := pageCursor{Version: CursorVersion, Page: page, Feed: key.String()}
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeCursor returns the upstream page a cursor continues from.
// An empty cursor means page one. A cursor for a different feed or with
// a malformed payload is rejected.
func DecodeCursor(key domain.FeedKey, s string) (int, error) {
	if s == "" {
		return 1, nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return 0, ErrInvalidCursor
	}

	var c pageCursor
	if err := json.Unmarshal(data, &c); err != nil {
		return 0, ErrInvalidCursor
	}
	if c.Page < 1 || c.Feed != key.String() {
		return 0, ErrInvalidCursor
	}

	return c.Page, nil
}

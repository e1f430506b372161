package github

import (
	"errors"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// GitHub-specific errors.
var (
	// ErrInvalidCursor indicates the cursor format is invalid or belongs
	// to a different feed.
	ErrInvalidCursor = errors.New("github: invalid cursor format")
)

// wrapError translates go-github failures into classified catalog errors
// at the fetch boundary. Classification is authoritative here: it derives
// from status and quota headers, never from message text.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return &domain.CatalogError{
			Kind:    domain.ClassRateLimited,
			Message: "rate limit exceeded",
			ResetAt: rateErr.Rate.Reset.Time,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		catErr := &domain.CatalogError{
			Kind:    domain.ClassRateLimited,
			Message: "secondary rate limit exceeded",
		}
		if abuseErr.RetryAfter != nil {
			catErr.ResetAt = timeNow().Add(*abuseErr.RetryAfter)
		}
		return catErr
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		kind := c.monitor.Classify(ghErr.Response.StatusCode)
		catErr := &domain.CatalogError{
			Kind:    kind,
			Message: fmt.Sprintf("%s: upstream returned %d", operation, ghErr.Response.StatusCode),
		}
		if kind == domain.ClassRateLimited {
			catErr.ResetAt = c.monitor.State().ResetAt
		}
		return catErr
	}

	// I/O, DNS, timeout: transient, retryable by user action.
	c.monitor.markTransient()
	return &domain.CatalogError{
		Kind:    domain.ClassTransient,
		Message: fmt.Sprintf("%s: %v", operation, err),
	}
}

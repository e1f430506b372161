package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFeedClosed indicates an operation on a closed feed handle.
	ErrFeedClosed = errors.New("feed closed")

	// ErrAuthRequired indicates the operation needs a stored credential.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNoBanner indicates no banner candidate loaded within the probe bound.
	ErrNoBanner = errors.New("no banner found")
)

// CatalogError is a classified upstream failure. Adapters translate raw
// transport errors into this type at the fetch boundary so the core never
// inspects status codes or message strings.
type CatalogError struct {
	Kind    Classification
	Message string
	// ResetAt is set for rate-limited failures.
	ResetAt time.Time
}

func (e *CatalogError) Error() string {
	if e.Kind == ClassRateLimited && !e.ResetAt.IsZero() {
		return fmt.Sprintf("catalog: %s (resets at %s)", e.Message, e.ResetAt.Format(time.RFC3339))
	}
	return "catalog: " + e.Message
}

// Classify extracts the classification from an error. Unclassified errors
// (I/O, DNS, timeouts) are Transient.
func Classify(err error) Classification {
	if err == nil {
		return ClassOK
	}
	var catErr *CatalogError
	if errors.As(err, &catErr) {
		return catErr.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return ClassNotFound
	}
	return ClassTransient
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return Classify(err) == ClassRateLimited
}

// IsNotFound checks if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return Classify(err) == ClassNotFound
}

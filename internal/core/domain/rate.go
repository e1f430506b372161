package domain

import "time"

// Classification is the authoritative category of an upstream failure,
// derived from HTTP status and rate-limit headers, never from message text.
type Classification string

// Failure classifications.
const (
	ClassOK          Classification = "OK"
	ClassRateLimited Classification = "RATE_LIMITED"
	ClassAuthError   Classification = "AUTH_ERROR"
	ClassNotFound    Classification = "NOT_FOUND"
	ClassTransient   Classification = "TRANSIENT"
)

// RateState is the last observed upstream quota state. It is updated only
// from authoritative response metadata, never guessed.
type RateState struct {
	Remaining     int
	Limit         int
	ResetAt       time.Time
	LastErrorKind Classification
}

// Exhausted reports whether the quota is spent and has not yet reset.
func (s RateState) Exhausted(now time.Time) bool {
	return s.Remaining == 0 && now.Before(s.ResetAt)
}

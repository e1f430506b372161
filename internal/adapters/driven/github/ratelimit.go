package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

const (
	// AuthenticatedQuota is the authenticated hourly request quota.
	AuthenticatedQuota = 5000

	// AnonymousQuota is the unauthenticated hourly request quota.
	AnonymousQuota = 60

	// ProactiveRate is the proactive throttle rate (~1.2 req/sec).
	ProactiveRate = 1.2

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// Monitor tracks upstream quota from authoritative response metadata and
// classifies failures. Quota state is never guessed: it only moves when a
// response carries the rate-limit headers.
type Monitor struct {
	mu     sync.Mutex
	state  domain.RateState
	bucket *rate.Limiter
}

// NewMonitor creates a monitor with proactive throttling. The quota is
// assumed full until the first observed response says otherwise.
func NewMonitor() *Monitor {
	return &Monitor{
		state: domain.RateState{
			Remaining:     AuthenticatedQuota,
			Limit:         AuthenticatedQuota,
			LastErrorKind: domain.ClassOK,
		},
		bucket: rate.NewLimiter(rate.Limit(ProactiveRate), 1),
	}
}

// Wait blocks until it is safe to send the next request. Proactive
// throttling applies even before any quota header has been seen.
func (m *Monitor) Wait(ctx context.Context) error {
	return m.bucket.Wait(ctx)
}

// Observe updates quota state from a response's rate-limit headers,
// whenever present.
func (m *Monitor) Observe(resp *http.Response) {
	if resp == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			m.state.Remaining = val
		}
	}
	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			m.state.Limit = val
		}
	}
	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			m.state.ResetAt = time.Unix(val, 0)
		}
	}
	if retryAfter := resp.Header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			m.state.ResetAt = time.Now().Add(time.Duration(seconds) * time.Second)
		}
	}
}

// Classify maps an HTTP status to the failure taxonomy using the last
// observed quota state. A 403/429 with zero remaining quota is rate
// limiting; other 4xx split into auth and not-found; everything else that
// reaches this point is transient.
func (m *Monitor) Classify(status int) domain.Classification {
	m.mu.Lock()
	remaining := m.state.Remaining
	m.mu.Unlock()

	var kind domain.Classification
	switch {
	case status >= 200 && status < 300:
		kind = domain.ClassOK
	case status == http.StatusTooManyRequests,
		status == http.StatusForbidden && remaining == 0:
		kind = domain.ClassRateLimited
	case status == http.StatusNotFound:
		kind = domain.ClassNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = domain.ClassAuthError
	default:
		kind = domain.ClassTransient
	}

	if kind != domain.ClassOK {
		m.mu.Lock()
		m.state.LastErrorKind = kind
		m.mu.Unlock()
	}
	return kind
}

// State returns the last observed quota state.
func (m *Monitor) State() domain.RateState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// markTransient records a failure that never produced a response.
func (m *Monitor) markTransient() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastErrorKind = domain.ClassTransient
}

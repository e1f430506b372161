package driven

import "context"

// BannerProber checks whether a single candidate banner URL loads.
// Probes are best-effort; a false result never carries an error because
// the caller treats any failure as "try the next candidate".
type BannerProber interface {
	Probe(ctx context.Context, url string) bool
}

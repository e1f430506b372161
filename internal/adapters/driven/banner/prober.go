// Package banner probes candidate banner URLs over HTTP.
package banner

import (
	"context"
	"net/http"
	"time"

	"github.com/repostore-labs/repostore-cli/internal/core/ports/driven"
	"github.com/repostore-labs/repostore-cli/internal/logger"
)

// DefaultProbeTimeout bounds a single candidate probe.
const DefaultProbeTimeout = 3 * time.Second

// Prober checks candidate URLs with HEAD requests. Raw-content hosts
// answer HEAD cheaply, so a probe never downloads image bytes.
type Prober struct {
	client  *http.Client
	timeout time.Duration
}

var _ driven.BannerProber = (*Prober)(nil)

// NewProber returns a prober with the given per-probe timeout.
// A non-positive timeout selects the default.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Probe implements driven.BannerProber. Only a 200 counts as a hit;
// redirects are followed by the client, everything else is a miss.
func (p *Prober) Probe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		logger.Debug("banner probe %s: %v", url, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

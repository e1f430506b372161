package services

import (
	"context"
	"fmt"

	"github.com/repostore-labs/repostore-cli/internal/core/ports/driven"
	"github.com/repostore-labs/repostore-cli/internal/logger"
)

// DefaultRawContentHost serves raw repository files.
const DefaultRawContentHost = "https://raw.githubusercontent.com"

// MaxProbeAttempts caps how many candidate URLs a single resolve may
// probe, regardless of candidate list length.
const MaxProbeAttempts = 10

// bannerFolders are the conventional asset folders checked for a banner,
// in probe order.
var bannerFolders = []string{
	"screenshots", "screenshot", "images", "image", "assets",
	"art", "media", "pics", "pictures", "img",
	"fastlane/metadata/android/en-US/images",
}

// bannerBasenames are the conventional banner file names, in probe order.
var bannerBasenames = []string{
	"banner.png", "banner.jpg", "banner.jpeg", "banner.webp",
	"feature.png", "feature.jpg", "feature_graphic.png", "feature_graphic.jpg",
	"header.png", "header.jpg", "cover.png", "cover.jpg",
	"1.png", "1.jpg", "01.png", "01.jpg",
	"screenshot1.png", "screenshot1.jpg", "screenshot_1.png", "screenshot_1.jpg",
}

// BannerCandidates builds the ordered candidate URL list for a repository:
// every conventional folder crossed with every conventional basename, then
// the basenames at the repository root.
func BannerCandidates(host, owner, repo, branch string) []string {
	if branch == "" {
		branch = "main"
	}
	urls := make([]string, 0, len(bannerFolders)*len(bannerBasenames)+len(bannerBasenames))
	for _, folder := range bannerFolders {
		for _, name := range bannerBasenames {
			urls = append(urls, fmt.Sprintf("%s/%s/%s/%s/%s/%s", host, owner, repo, branch, folder, name))
		}
	}
	for _, name := range bannerBasenames {
		urls = append(urls, fmt.Sprintf("%s/%s/%s/%s/%s", host, owner, repo, branch, name))
	}
	return urls
}

// FallbackPaletteIndex picks the deterministic fallback visual for an item
// without a banner, keyed off its position so the same item renders the
// same fallback across sessions.
func FallbackPaletteIndex(ordinal, paletteSize int) int {
	if paletteSize <= 0 {
		return 0
	}
	if ordinal < 0 {
		ordinal = -ordinal
	}
	return ordinal % paletteSize
}

// BannerService resolves a repository's cosmetic banner image with a
// bounded sequential probe. It runs off the critical path and never blocks
// primary content.
type BannerService struct {
	prober driven.BannerProber
	host   string
}

// NewBannerService creates a banner resolver over the given prober.
// An empty host defaults to the public raw content host.
func NewBannerService(prober driven.BannerProber, host string) *BannerService {
	if host == "" {
		host = DefaultRawContentHost
	}
	return &BannerService{prober: prober, host: host}
}

// Resolve probes candidates in list order and returns the first URL that
// loads. At most MaxProbeAttempts candidates are probed; when none
// succeeds within the bound, found is false.
func (s *BannerService) Resolve(ctx context.Context, owner, repo, branch string) (url string, found bool) {
	if s.prober == nil || owner == "" || repo == "" {
		return "", false
	}

	candidates := BannerCandidates(s.host, owner, repo, branch)
	for i, candidate := range candidates {
		if i >= MaxProbeAttempts {
			break
		}
		if ctx.Err() != nil {
			return "", false
		}
		if s.prober.Probe(ctx, candidate) {
			logger.Debug("banner for %s/%s: %s (attempt %d)", owner, repo, candidate, i+1)
			return candidate, true
		}
	}

	logger.Debug("no banner for %s/%s after %d probes", owner, repo, MaxProbeAttempts)
	return "", false
}

// Package cli wires the cobra command tree to the core services.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/repostore-labs/repostore-cli/internal/adapters/driven/banner"
	configfile "github.com/repostore-labs/repostore-cli/internal/adapters/driven/config/file"
	"github.com/repostore-labs/repostore-cli/internal/adapters/driven/github"
	"github.com/repostore-labs/repostore-cli/internal/adapters/driven/storage/memory"
	"github.com/repostore-labs/repostore-cli/internal/adapters/driven/storage/sqlite"
	"github.com/repostore-labs/repostore-cli/internal/adapters/driven/vault"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driven"
	"github.com/repostore-labs/repostore-cli/internal/core/ports/driving"
	"github.com/repostore-labs/repostore-cli/internal/core/services"
	"github.com/repostore-labs/repostore-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagDataDir string
	flagOrg     string
	flagTopic   string
	flagVerbose bool
)

// Services the subcommands run against. Populated by initServices before
// any RunE executes; tests may substitute fakes directly.
var (
	catalogService driving.CatalogService
	authService    driving.AuthService
	catalogClient  driven.CatalogClient
	bannerService  *services.BannerService
	configStore    driven.ConfigStore
)

var rootCmd = &cobra.Command{
	Use:   "repostore",
	Short: "Browse a GitHub-backed app catalog from the terminal",
	Long: `Repostore is a catalog browser for GitHub-hosted open source apps.

It serves trending, featured and recently updated feeds, full-text search,
per-developer listings and repository detail views, caching pages locally
so browsing stays fast and within the upstream rate limit.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		if cmd.Name() == "version" {
			return nil
		}
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if catalogService != nil {
			catalogService.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.repostore)")
	rootCmd.PersistentFlags().StringVar(&flagOrg, "org", "", "scope feeds to one GitHub organization")
	rootCmd.PersistentFlags().StringVar(&flagTopic, "topic", "", "scope feeds to repositories carrying this topic")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initServices builds the adapter stack. Flags win over config file values.
func initServices() error {
	if catalogService != nil {
		return nil
	}

	cfg, err := configfile.NewConfigStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	credVault, err := vault.NewVault(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening credential vault: %w", err)
	}

	org := flagOrg
	if org == "" {
		org = cfg.GetString(configfile.KeyOrg)
	}
	topic := flagTopic
	if topic == "" {
		topic = cfg.GetString(configfile.KeyTopic)
	}

	catalogClient = github.NewClient(credVault, github.Options{
		Org:     org,
		Topic:   topic,
		PerPage: cfg.GetInt(configfile.KeyPerPage),
	})

	var cache driven.CacheStore
	if store, err := sqlite.NewCacheStore(flagDataDir); err != nil {
		logger.Warn("sqlite cache unavailable, using in-memory cache: %v", err)
		cache = memory.NewCacheStore()
	} else {
		cache = store
	}

	ttl := time.Duration(cfg.GetInt(configfile.KeyCacheTTLMinutes)) * time.Minute
	catalogService = services.NewCatalogService(catalogClient, cache, ttl)
	authService = services.NewAuthService(credVault, catalogClient)

	probeTimeout := time.Duration(cfg.GetInt(configfile.KeyProbeTimeoutSeconds)) * time.Second
	bannerService = services.NewBannerService(banner.NewProber(probeTimeout), services.DefaultRawContentHost)

	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

var (
	feedPages    int
	feedJSON     bool
	feedCategory string
	featuredRail bool
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending repositories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFeed(cmd, domain.FeedKey{List: domain.ListTrending, Category: feedCategory})
	},
}

var featuredCmd = &cobra.Command{
	Use:   "featured",
	Short: "List featured repositories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key := domain.FeedKey{List: domain.ListFeatured, Category: feedCategory}
		if featuredRail {
			return runRails(cmd, key)
		}
		return runFeed(cmd, key)
	},
}

var updatedCmd = &cobra.Command{
	Use:   "updated",
	Short: "List recently updated repositories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFeed(cmd, domain.FeedKey{List: domain.ListUpdated, Category: feedCategory})
	},
}

var developerCmd = &cobra.Command{
	Use:   "developer [login]",
	Short: "List a developer's repositories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		login := strings.TrimSpace(args[0])
		if login == "" {
			return errors.New("developer login must not be empty")
		}

		dev, err := catalogClient.GetUser(cmd.Context(), login)
		if err != nil {
			return fmt.Errorf("loading developer %s: %w", login, err)
		}
		if !feedJSON {
			printDeveloper(cmd, dev)
		}

		return runFeed(cmd, domain.DeveloperKey(login))
	},
}

func init() {
	for _, c := range []*cobra.Command{trendingCmd, featuredCmd, updatedCmd, developerCmd} {
		c.Flags().IntVarP(&feedPages, "pages", "p", 1, "number of pages to load")
		c.Flags().BoolVar(&feedJSON, "json", false, "output as JSON")
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{trendingCmd, featuredCmd, updatedCmd} {
		c.Flags().StringVar(&feedCategory, "category", "", "narrow the feed to one category topic")
	}
	featuredCmd.Flags().BoolVar(&featuredRail, "rails", false, "group output into featured, popular and newest rails")
}

func runFeed(cmd *cobra.Command, key domain.FeedKey) error {
	entries, err := catalogService.Snapshot(cmd.Context(), key, feedPages)
	if err != nil {
		return feedError(cmd.Context(), err)
	}

	if feedJSON {
		return outputEntriesJSON(cmd, entries)
	}
	outputEntriesTable(cmd, entries)
	return nil
}

func runRails(cmd *cobra.Command, key domain.FeedKey) error {
	entries, err := catalogService.Snapshot(cmd.Context(), key, feedPages)
	if err != nil {
		return feedError(cmd.Context(), err)
	}

	if feedJSON {
		return outputEntriesJSON(cmd, entries)
	}

	sections := []struct {
		title   string
		entries []domain.RepositoryEntry
	}{
		{"Featured", domain.FeaturedRail(entries)},
		{"Popular", domain.PopularRail(entries)},
		{"Newest", domain.NewestRail(entries)},
	}
	for _, sec := range sections {
		if len(sec.entries) == 0 {
			continue
		}
		cmd.Printf("%s:\n", sec.title)
		outputEntriesTable(cmd, sec.entries)
		cmd.Println()
	}
	return nil
}

// feedError decorates rate-limit failures with the observed reset time,
// and with the sign-in hint only when no credential is stored: a signed-in
// user already has the higher quota, so the hint would be noise.
func feedError(ctx context.Context, err error) error {
	if !domain.IsRateLimited(err) {
		return err
	}
	if catalogClient != nil {
		if reset := catalogClient.RateState().ResetAt; !reset.IsZero() {
			err = fmt.Errorf("%w (resets %s)", err, reset.Local().Format(time.Kitchen))
		}
	}
	if authService != nil {
		if cred, credErr := authService.Current(ctx); credErr == nil && cred == nil {
			err = fmt.Errorf("%w; sign in with `repostore auth login` to raise the limit", err)
		}
	}
	return err
}

func outputEntriesJSON(cmd *cobra.Command, entries []domain.RepositoryEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputEntriesTable(cmd *cobra.Command, entries []domain.RepositoryEntry) {
	if len(entries) == 0 {
		cmd.Println("No repositories found.")
		return
	}

	for i, e := range entries {
		line := fmt.Sprintf("  [%d] %s ★%s", i+1, e.FullName(), domain.FormatCount(e.Stars))
		if e.Language != "" {
			line += "  " + e.Language
		}
		if e.Tag != domain.TagNone {
			line += "  [" + string(e.Tag) + "]"
		}
		cmd.Println(line)
		if e.Description != "" {
			cmd.Printf("      %s\n", e.Description)
		}
	}
}

func printDeveloper(cmd *cobra.Command, dev *domain.Developer) {
	name := dev.Name
	if name == "" {
		name = dev.Login
	}
	cmd.Printf("%s (%s), %d public repositories\n", name, dev.Login, dev.PublicRepos)
	if dev.Bio != "" {
		cmd.Printf("%s\n", dev.Bio)
	}
	cmd.Println()
}

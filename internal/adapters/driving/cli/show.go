package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

var (
	showJSON     bool
	showReadme   bool
	showReleases bool
)

var showCmd = &cobra.Command{
	Use:   "show [owner/repo]",
	Short: "Show repository details",
	Long: `Shows a repository detail view: metadata, derived tag, resolved banner
and, on request, its releases and readme.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
	showCmd.Flags().BoolVar(&showReadme, "readme", false, "include the readme")
	showCmd.Flags().BoolVar(&showReleases, "releases", false, "include published releases")
	rootCmd.AddCommand(showCmd)
}

// showOutput is the JSON shape of the detail view.
type showOutput struct {
	Repository *domain.RepositoryEntry `json:"repository"`
	BannerURL  string                  `json:"banner_url,omitempty"`
	Releases   []domain.ReleaseInfo    `json:"releases,omitempty"`
	Readme     string                  `json:"readme,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	owner, repo, ok := strings.Cut(args[0], "/")
	if !ok || owner == "" || repo == "" {
		return fmt.Errorf("%w: expected owner/repo, got %q", domain.ErrInvalidInput, args[0])
	}

	ctx := cmd.Context()
	entry, err := catalogClient.GetRepository(ctx, owner, repo)
	if err != nil {
		return feedError(ctx, err)
	}

	out := showOutput{Repository: entry}
	if url, found := bannerService.Resolve(ctx, entry.Owner.Login, entry.Name, entry.Branch()); found {
		out.BannerURL = url
	}

	if showReleases {
		releases, err := catalogClient.GetReleases(ctx, owner, repo)
		if err != nil {
			return feedError(ctx, err)
		}
		out.Releases = releases
	}

	if showReadme {
		readme, err := catalogClient.GetReadme(ctx, owner, repo)
		if err != nil && !domain.IsNotFound(err) {
			return feedError(ctx, err)
		}
		out.Readme = readme
	}

	if showJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal repository: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printShow(cmd, out)
	return nil
}

func printShow(cmd *cobra.Command, out showOutput) {
	e := out.Repository

	cmd.Printf("%s\n", e.FullName())
	if e.Description != "" {
		cmd.Printf("%s\n", e.Description)
	}
	cmd.Println()

	cmd.Printf("  Stars:    %s\n", domain.FormatCount(e.Stars))
	cmd.Printf("  Forks:    %s\n", domain.FormatCount(e.Forks))
	if e.Language != "" {
		cmd.Printf("  Language: %s\n", e.Language)
	}
	if len(e.Topics) > 0 {
		cmd.Printf("  Topics:   %s\n", strings.Join(e.Topics, ", "))
	}
	if e.Tag != domain.TagNone {
		cmd.Printf("  Tag:      %s\n", e.Tag)
	}
	cmd.Printf("  Branch:   %s\n", e.Branch())
	cmd.Printf("  URL:      %s\n", e.HTMLURL)
	if out.BannerURL != "" {
		cmd.Printf("  Banner:   %s\n", out.BannerURL)
	}

	if len(out.Releases) > 0 {
		cmd.Println()
		cmd.Println("Releases:")
		for _, r := range out.Releases {
			name := r.DisplayName
			if name == "" {
				name = r.TagName
			}
			cmd.Printf("  %s (%s)\n", name, r.PublishedAt.Format("2006-01-02"))
			for _, a := range r.Assets {
				cmd.Printf("    %s  %s\n", a.Name, a.DownloadURL)
			}
		}
	}

	if out.Readme != "" {
		cmd.Println()
		cmd.Println(out.Readme)
	}
}

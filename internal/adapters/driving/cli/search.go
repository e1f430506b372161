package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

var (
	searchPages int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog",
	Long: `Searches repositories by free text, ranked by upstream relevance.
Whitespace-only queries are rejected before any network call.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchPages, "pages", "p", 1, "number of pages to load")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return domain.ErrInvalidInput
	}

	entries, err := catalogService.Snapshot(cmd.Context(), domain.SearchKey(query), searchPages)
	if err != nil {
		return feedError(cmd.Context(), err)
	}

	if searchJSON {
		return outputEntriesJSON(cmd, entries)
	}
	outputEntriesTable(cmd, entries)
	return nil
}

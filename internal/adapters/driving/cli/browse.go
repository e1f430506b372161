package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	configfile "github.com/repostore-labs/repostore-cli/internal/adapters/driven/config/file"
	"github.com/repostore-labs/repostore-cli/internal/adapters/driving/tui"
	"github.com/repostore-labs/repostore-cli/internal/logger"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Launch the interactive catalog browser",
	Long: `Launch the interactive terminal user interface.

The browser shows the trending, featured and updated feeds as tabs, with
incremental search and endless scrolling.

Controls:
  tab, 1-4  - Switch feeds
  ↑/k, ↓/j  - Navigate; scrolling past the end loads the next page
  /         - Search
  r         - Refresh (or retry after an error)
  q         - Quit`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	// Panic recovery keeps a stack trace visible after the alt screen closes.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	// Live config reload: changed values apply to feeds opened afterwards.
	if cs, ok := configStore.(*configfile.ConfigStore); ok {
		if err := cs.Watch(cmd.Context(), nil); err != nil {
			logger.Warn("config watch unavailable: %v", err)
		}
	}

	app, err := tui.NewApp(&tui.Ports{
		Catalog: catalogService,
		Auth:    authService,
		Banner:  bannerService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

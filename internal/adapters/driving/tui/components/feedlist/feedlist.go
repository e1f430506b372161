// Package feedlist provides the repository list component for the TUI.
package feedlist

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/repostore-labs/repostore-cli/internal/adapters/driving/tui/styles"
	"github.com/repostore-labs/repostore-cli/internal/core/domain"
)

// FeedList displays catalog entries in a navigable list.
type FeedList struct {
	entries  []domain.RepositoryEntry
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewFeedList creates a new feed list component.
func NewFeedList(s *styles.Styles) *FeedList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &FeedList{
		styles: s,
		width:  80,
		height: 20,
	}
}

// SetEntries replaces the displayed entries, clamping the selection.
func (l *FeedList) SetEntries(entries []domain.RepositoryEntry) {
	l.entries = entries
	if l.selected >= len(entries) {
		l.selected = len(entries) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Entries returns the displayed entries.
func (l *FeedList) Entries() []domain.RepositoryEntry {
	return l.entries
}

// Selected returns the currently selected entry, or nil when empty.
func (l *FeedList) Selected() *domain.RepositoryEntry {
	if l.selected < 0 || l.selected >= len(l.entries) {
		return nil
	}
	return &l.entries[l.selected]
}

// SelectedIndex returns the selected position.
func (l *FeedList) SelectedIndex() int {
	return l.selected
}

// AtBottom reports whether the selection sits on the last entry.
func (l *FeedList) AtBottom() bool {
	return len(l.entries) > 0 && l.selected == len(l.entries)-1
}

// SetDimensions updates the render size.
func (l *FeedList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// MoveUp moves the selection up one entry.
func (l *FeedList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the selection down one entry.
func (l *FeedList) MoveDown() {
	if l.selected < len(l.entries)-1 {
		l.selected++
	}
}

// Update handles list navigation messages.
func (l *FeedList) Update(msg tea.Msg) (*FeedList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the feed list.
func (l *FeedList) View() string {
	if len(l.entries) == 0 {
		return l.styles.Muted.Render("No repositories")
	}

	// Each entry takes two lines.
	visibleCount := (l.height - 1) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if l.selected >= visibleCount {
		start = l.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(l.entries) {
		end = len(l.entries)
	}

	lines := make([]string, 0, (end-start)*2)
	for i := start; i < end; i++ {
		lines = append(lines, l.renderEntry(i, &l.entries[i])...)
	}

	return strings.Join(lines, "\n")
}

// renderEntry formats a single entry as a name line and a detail line.
func (l *FeedList) renderEntry(index int, e *domain.RepositoryEntry) []string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	name := e.FullName()
	maxNameLen := l.width - 20
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	head := fmt.Sprintf("%s%s  ★%s", indicator, name, domain.FormatCount(e.Stars))
	if e.Tag != domain.TagNone {
		head += "  [" + string(e.Tag) + "]"
	}

	// The accent block stands in for the banner image.
	accent := l.styles.Normal.
		Foreground(l.styles.BannerColor(index)).
		Render("▌")

	var nameLine string
	if index == l.selected {
		nameLine = accent + l.styles.Selected.Render(head)
	} else {
		nameLine = accent + l.styles.Normal.Render(head)
	}

	detail := e.Description
	if detail == "" {
		detail = e.Language
	}
	if len(detail) > l.width-6 && l.width > 9 {
		detail = detail[:l.width-9] + "..."
	}
	detailLine := " " + indicator + l.styles.Muted.Render(detail)

	return []string{nameLine, detailLine}
}

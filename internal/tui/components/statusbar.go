package components

import (
	"strings"

	"github.com/pablasso/lexa/internal/tui/styles"
)

const statusSeparator = "  |  "

// StatusBar renders a bottom help bar showing key hints and run facts.
type StatusBar struct{}

// NewStatusBar creates a new StatusBar instance.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// Render returns the status bar string for the given width and items.
func (s StatusBar) Render(width int, items []string) string {
	return styles.StatusBarStyle.Width(width).Render(strings.Join(items, statusSeparator))
}

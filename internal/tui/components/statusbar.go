package components

import (
	"strings"

	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusLevel colors the status bar message.
type StatusLevel int

// Status levels.
const (
	StatusInfo StatusLevel = iota
	StatusOK
	StatusError
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// the latest message on the right.
func RenderStatusBar(width int, hints, message string, level StatusLevel) string {
	t := theme.Active

	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgColor := t.TextMuted
	switch level {
	case StatusOK:
		msgColor = t.Paid
	case StatusError:
		msgColor = t.Debt
	}
	msgStyle := lipgloss.NewStyle().Foreground(msgColor).Background(t.Surface)

	left := hintStyle.Render(" " + hints)
	right := ""
	if message != "" {
		right = msgStyle.Render(message + " ")
	}

	gap := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	filler := lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", gap))
	return left + filler + right
}

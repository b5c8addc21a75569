package components

import (
	"strings"

	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // index of the shortcut letter in Name
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Plan", Key: 'p', KeyPos: 0},
	{Name: "Debts", Key: 'b', KeyPos: 2},
	{Name: "Ledger", Key: 'l', KeyPos: 0},
}

// renderTab draws one tab with one column of padding either side.
func renderTab(tab Tab, active bool) string {
	t := theme.Active

	if active {
		return lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true).
			Padding(0, 1).
			Render(tab.Name)
	}

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	key := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Underline(true)

	before := tab.Name[:tab.KeyPos]
	letter := string(tab.Name[tab.KeyPos])
	after := tab.Name[tab.KeyPos+1:]
	return base.Render(" "+before) + key.Render(letter) + base.Render(after+" ")
}

// TabVisualWidth is the rendered width of a tab, used for mouse hit-testing.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}

	title := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true).Render(" ◈ snowball ")
	bar := strings.Join(parts, sep)
	gap := max(0, width-lipgloss.Width(bar)-lipgloss.Width(title))
	filler := lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", gap))
	return bar + filler + title
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

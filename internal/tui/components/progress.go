package components

import (
	"fmt"

	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForProgress moves from debt red to paid green as a debt is retired.
func ColorForProgress(frac float64) lipgloss.Color {
	t := theme.Active
	switch {
	case frac >= 1:
		return t.Paid
	case frac >= 0.5:
		return t.Income
	case frac >= 0.2:
		return t.Warn
	default:
		return t.Debt
	}
}

// ProgressBar renders a bar with a trailing percentage.
func ProgressBar(frac float64, width int) string {
	t := theme.Active
	frac = clamp01(frac)

	bar := progress.New(
		progress.WithSolidFill(string(ColorForProgress(frac))),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(ColorForProgress(frac)).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")
	return bar.ViewAs(frac) + space + pctStyle.Render(fmt.Sprintf("%3.0f%%", frac*100))
}

// PayoffBar renders "label [bar] pct  note" for one debt.
func PayoffBar(label string, frac float64, note string, labelW, barW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		space.Render(" ") +
		ProgressBar(frac, barW) +
		space.Render("  ") +
		noteStyle.Render(note)
}

func clamp01(f float64) float64 {
	return max(0, min(f, 1))
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

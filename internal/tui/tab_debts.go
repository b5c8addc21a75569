package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/pipeline"
	"github.com/theirongolddev/snowball/internal/tui/components"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

type debtsState struct {
	cursor int
	month  int // progress is shown as of the end of this month
}

func (a App) updateDebtsKeys(key string) (App, bool) {
	months := len(a.res.Projection.Months)
	switch key {
	case "j", "down":
		a.debts.cursor = clampIndex(a.debts.cursor+1, len(a.res.Ledger.Debts))
	case "k", "up":
		a.debts.cursor = clampIndex(a.debts.cursor-1, len(a.res.Ledger.Debts))
	case "+", "=":
		a.debts.month = min(a.debts.month+1, max(1, months))
	case "-", "_":
		a.debts.month = max(1, a.debts.month-1)
	case "g":
		a.debts.month = 1
	case "G":
		a.debts.month = max(1, months)
	default:
		return a, false
	}
	return a, true
}

func (a App) renderDebtsTab(cw int) string {
	t := theme.Active
	debts := a.res.Ledger.Debts
	p := a.res.Projection
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(debts) == 0 {
		return components.ContentCard("Debts", dim.Render("No debts recorded. Press [a] to add one."), cw)
	}

	inner := components.CardInnerWidth(cw)
	labelW := min(20, inner/4)
	noteW := 26
	barW := max(10, inner-labelW-noteW-8)

	var b strings.Builder
	for i, d := range debts {
		frac := pipeline.DebtProgress(p, d, a.debts.month)
		note := "not paid off"
		if pm, ok := p.PayoffMonth[d.Name]; ok {
			note = fmt.Sprintf("paid off month %d", pm)
		}
		line := components.PayoffBar(d.Name, frac, note, labelW, barW)
		if i == a.debts.cursor {
			line = lipgloss.NewStyle().Background(t.SurfaceHover).Render("▸") + line
		} else {
			line = lipgloss.NewStyle().Background(t.Surface).Render(" ") + line
		}
		b.WriteString(line)
		if i < len(debts)-1 {
			b.WriteString("\n")
		}
	}

	title := fmt.Sprintf("Progress at month %d of %d", a.debts.month, max(1, len(p.Months)))
	bars := components.ContentCard(title, b.String(), cw)

	rows := pipeline.DebtTimeline(p, debts)
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	format := "%-20s %14s %8s %10s %14s %14s"

	var tb strings.Builder
	tb.WriteString(head.Render(padRight(fmt.Sprintf(format, "Debt", "Principal", "Rate", "Paid off", "Total paid", "Interest"), inner)))
	for _, r := range rows {
		when := "—"
		if r.Paid() {
			when = fmt.Sprintf("month %d", r.PayoffMonth)
		}
		tb.WriteString("\n")
		tb.WriteString(row.Render(padRight(fmt.Sprintf(format,
			truncStr(r.Name, 20),
			cli.FormatMoney(r.Principal),
			cli.FormatRate(r.RatePercent),
			when,
			cli.FormatMoney(r.TotalPaid),
			cli.FormatMoney(r.InterestPaid),
		), inner)))
	}
	table := components.ContentCard("Timeline", tb.String(), cw)

	return bars + "\n" + table
}

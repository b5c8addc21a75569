package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/tui/components"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

type planState struct {
	cursor int
	detail bool
}

func (a App) updatePlanKeys(key string) (App, bool) {
	n := len(a.res.Projection.Months)
	switch key {
	case "j", "down":
		a.plan.cursor = clampIndex(a.plan.cursor+1, n)
	case "k", "up":
		a.plan.cursor = clampIndex(a.plan.cursor-1, n)
	case "g":
		a.plan.cursor = 0
	case "G":
		a.plan.cursor = clampIndex(n-1, n)
	case "ctrl+d":
		a.plan.cursor = clampIndex(a.plan.cursor+max(1, a.height/4), n)
	case "ctrl+u":
		a.plan.cursor = clampIndex(a.plan.cursor-max(1, a.height/4), n)
	case "enter":
		a.plan.detail = !a.plan.detail
	default:
		return a, false
	}
	return a, true
}

func (a App) renderPlanTab(cw, h int) string {
	t := theme.Active
	months := a.res.Projection.Months
	if len(months) == 0 {
		dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		msg := "No projection yet. Add an income and a debt with [a]."
		if warn := projectionWarning(a.res); warn != "" {
			msg = warn
		}
		return components.ContentCard("Month by month", dim.Render(msg), cw)
	}

	listW := cw
	var detail string
	if a.plan.detail && !a.isCompactLayout() {
		halves := components.LayoutRow(cw, 2)
		listW = halves[0]
		detail = a.renderMonthDetail(months[a.plan.cursor], halves[1])
	}

	visible := max(1, h-5)
	offset := scrollOffset(a.plan.cursor, visible, len(months))

	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	paid := lipgloss.NewStyle().Foreground(t.Paid).Background(t.Surface)

	inner := components.CardInnerWidth(listW)
	line := func(cols ...string) string {
		return fmt.Sprintf("%-7s %14s %12s %16s  %s", cols[0], cols[1], cols[2], cols[3], cols[4])
	}

	var b strings.Builder
	b.WriteString(head.Render(padRight(line("Month", "Paid", "Interest", "Remaining", "Paid off"), inner)))
	for i := offset; i < min(len(months), offset+visible); i++ {
		m := months[i]
		text := padRight(line(
			fmt.Sprintf("%d", m.Month),
			cli.FormatMoney(m.TotalPaid),
			cli.FormatMoney(m.TotalInterest),
			cli.FormatMoney(m.RemainingBalance()),
			paidOffIn(a.res.Projection, m.Month),
		), inner)
		b.WriteString("\n")
		switch {
		case i == a.plan.cursor:
			b.WriteString(sel.Render(truncStr(text, inner)))
		case paidOffIn(a.res.Projection, m.Month) != "":
			b.WriteString(paid.Render(truncStr(text, inner)))
		default:
			b.WriteString(row.Render(truncStr(text, inner)))
		}
	}

	title := fmt.Sprintf("Month by month · %d of %d", a.plan.cursor+1, len(months))
	list := components.ContentCard(title, b.String(), listW)
	if detail == "" {
		return list
	}
	return components.CardRow([]string{list, detail})
}

func (a App) renderMonthDetail(m model.MonthRecord, w int) string {
	t := theme.Active
	inner := components.CardInnerWidth(w)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(dim.Render(padRight(fmt.Sprintf("%-16s %12s %10s %12s %4s", "Debt", "Paid", "Interest", "Balance", "Left"), inner)))
	for _, p := range m.Payments {
		b.WriteString("\n")
		b.WriteString(row.Render(padRight(fmt.Sprintf("%-16s %12s %10s %12s %4d",
			truncStr(p.Name, 16),
			cli.FormatMoney(p.Paid),
			cli.FormatMoney(p.Interest),
			cli.FormatMoney(p.Balance),
			p.RemainingInstallments,
		), inner)))
	}
	return components.ContentCard(fmt.Sprintf("Month %d", m.Month), b.String(), w)
}

// paidOffIn lists the debts paid off in the given month.
func paidOffIn(p model.PayoffProjection, month int) string {
	var names []string
	for _, po := range p.PayoffOrder() {
		if po.Month == month {
			names = append(names, po.Name)
		}
	}
	return strings.Join(names, ", ")
}

// scrollOffset returns the first row to draw so the cursor stays inside a
// window of size visible.
func scrollOffset(cursor, visible, total int) int {
	offset := 0
	if cursor >= visible {
		offset = cursor - visible + 1
	}
	return max(0, min(offset, max(0, total-visible)))
}

func padRight(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/pipeline"
	"github.com/theirongolddev/snowball/internal/tui/components"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabPlan
	tabDebts
	tabLedger
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	s := a.res.Summary
	p := a.res.Projection

	budgetColor := t.Income
	if !s.MonthlyBudget.IsPositive() {
		budgetColor = t.Debt
	}

	metrics := []components.Metric{
		{Label: "Income", Value: cli.FormatMoney(s.TotalIncome), Note: plural(s.IncomeCount, "source"), Color: t.Income},
		{Label: "Expenses", Value: cli.FormatMoney(s.TotalExpenses), Note: plural(s.ExpenseCount, "expense"), Color: t.Expense},
		{Label: "Monthly budget", Value: cli.FormatMoney(s.MonthlyBudget), Note: "for debt payments", Color: budgetColor},
		{Label: "Total debt", Value: cli.FormatMoney(s.TotalDebt), Note: plural(s.DebtCount, "debt"), Color: t.Debt},
		{Label: "Debt-free in", Value: debtFreeValue(p), Note: interestNote(p)},
	}

	var b strings.Builder
	if a.isCompactLayout() {
		b.WriteString(components.MetricCardRow(metrics[:3], cw))
		b.WriteString("\n")
		b.WriteString(components.MetricCardRow(metrics[3:], cw))
	} else {
		b.WriteString(components.MetricCardRow(metrics, cw))
	}
	b.WriteString("\n")

	if warn := projectionWarning(a.res); warn != "" {
		warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)
		b.WriteString(components.ContentCard("Heads up", warnStyle.Render(warn), cw))
		b.WriteString("\n")
	}

	if len(p.Months) > 0 {
		inner := components.CardInnerWidth(cw)
		values := pipeline.BalanceSeriesFloat(p)
		labels := monthLabels(len(values))
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Remaining balance (%s)", cli.FormatMonths(len(values))),
			components.BarChart(values, labels, t.Debt, inner, 10),
			cw,
		))
		b.WriteString("\n")
	}

	halves := components.LayoutRow(cw, 2)
	expenses := categoryBars(pipeline.AggregateExpenses(a.res.Ledger.Expenses), components.CardInnerWidth(halves[0]), t.Expense)
	order := payoffList(p, components.CardInnerWidth(halves[1]))
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Expenses by category", expenses, halves[0]),
		components.ContentCard("Payoff order", order, halves[1]),
	}))

	return b.String()
}

func debtFreeValue(p model.PayoffProjection) string {
	switch p.Status {
	case model.StatusComplete:
		return cli.FormatMonths(p.MonthsToPayoff())
	case model.StatusEmpty:
		return "—"
	default:
		return "not reached"
	}
}

func interestNote(p model.PayoffProjection) string {
	if p.Status == model.StatusEmpty {
		return ""
	}
	return cli.FormatMoney(p.TotalInterest) + " interest"
}

// projectionWarning explains projections that did not finish.
func projectionWarning(res pipeline.Result) string {
	s := res.Summary
	switch {
	case s.DebtCount == 0:
		return ""
	case !s.MonthlyBudget.IsPositive():
		return "Expenses take the whole income, so nothing is left for debt payments."
	case res.Projection.Status == model.StatusTruncated:
		return fmt.Sprintf("Debts are not paid off within %s. Interest may be growing faster than the budget.",
			cli.FormatMonths(len(res.Projection.Months)))
	case res.Projection.Status == model.StatusStalled:
		return "The budget stopped reducing the remaining debts."
	}
	return ""
}

func categoryBars(cats []model.CategoryStats, width int, color lipgloss.Color) string {
	t := theme.Active
	if len(cats) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No expenses yet")
	}

	labelW := 14
	amountW := 12
	barW := max(4, width-labelW-amountW-2)
	peak := cats[0].Amount.InexactFloat64()

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	amount := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var lines []string
	for _, c := range cats[:min(len(cats), 8)] {
		n := 0
		if peak > 0 {
			n = int(c.Amount.InexactFloat64() / peak * float64(barW))
		}
		lines = append(lines,
			label.Render(fmt.Sprintf("%-*s", labelW, truncStr(c.Label, labelW)))+space.Render(" ")+
				bar.Render(strings.Repeat("█", n))+space.Render(strings.Repeat(" ", barW-n+1))+
				amount.Render(fmt.Sprintf("%*s", amountW, cli.FormatMoneyShort(c.Amount))))
	}
	return strings.Join(lines, "\n")
}

func payoffList(p model.PayoffProjection, width int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	order := p.PayoffOrder()
	if len(order) == 0 {
		return dim.Render("No debts paid off in this projection")
	}

	name := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	when := lipgloss.NewStyle().Foreground(t.Paid).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	nameW := max(8, width-12)
	var lines []string
	for i, po := range order[:min(len(order), 8)] {
		lines = append(lines, dim.Render(fmt.Sprintf("%d. ", i+1))+
			name.Render(fmt.Sprintf("%-*s", nameW, truncStr(po.Name, nameW)))+space.Render(" ")+
			when.Render(fmt.Sprintf("month %d", po.Month)))
	}
	if len(order) > 8 {
		lines = append(lines, dim.Render(fmt.Sprintf("… and %d more", len(order)-8)))
	}
	return strings.Join(lines, "\n")
}

// monthLabels numbers chart columns "1", "2", ... with years marked "1y".
func monthLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		m := i + 1
		if m%12 == 0 {
			out[i] = fmt.Sprintf("%dy", m/12)
		} else {
			out[i] = fmt.Sprintf("%d", m)
		}
	}
	return out
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

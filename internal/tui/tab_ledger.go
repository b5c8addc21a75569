package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/tui/components"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ledgerRow is one record flattened for the Ledger tab.
type ledgerRow struct {
	Kind   model.Kind
	ID     string
	Label  string
	Amount string
	Detail string
}

func buildLedgerRows(l model.Ledger) []ledgerRow {
	rows := make([]ledgerRow, 0, len(l.Incomes)+len(l.Expenses)+len(l.Debts))
	for _, in := range l.Incomes {
		rows = append(rows, ledgerRow{Kind: model.KindIncome, ID: in.ID, Label: in.Source, Amount: cli.FormatMoney(in.Amount)})
	}
	for _, ex := range l.Expenses {
		rows = append(rows, ledgerRow{Kind: model.KindExpense, ID: ex.ID, Label: ex.Category, Amount: cli.FormatMoney(ex.Amount)})
	}
	for _, d := range l.Debts {
		rows = append(rows, ledgerRow{
			Kind:   model.KindDebt,
			ID:     d.ID,
			Label:  d.Name,
			Amount: cli.FormatMoney(d.Principal),
			Detail: fmt.Sprintf("%s · %d installments", cli.FormatRate(d.AnnualRatePercent), d.Installments),
		})
	}
	return rows
}

func (a App) updateLedgerKeys(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.ledgerC = clampIndex(a.ledgerC+1, len(a.rows))
	case "k", "up":
		a.ledgerC = clampIndex(a.ledgerC-1, len(a.rows))
	case "g":
		a.ledgerC = 0
	case "G":
		a.ledgerC = clampIndex(len(a.rows)-1, len(a.rows))
	case "d", "delete":
		if len(a.rows) == 0 {
			return a, nil, true
		}
		m, cmd := a.openDeleteForm(a.rows[a.ledgerC])
		return m.(App), cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderLedgerTab(cw, h int) string {
	t := theme.Active
	if len(a.rows) == 0 {
		dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		return components.ContentCard("Ledger", dim.Render("Nothing recorded yet. Press [a] to add income, expenses and debts."), cw)
	}

	inner := components.CardInnerWidth(cw)
	visible := max(1, h-4)
	offset := scrollOffset(a.ledgerC, visible, len(a.rows))

	kindColor := map[model.Kind]lipgloss.Color{
		model.KindIncome:  t.Income,
		model.KindExpense: t.Expense,
		model.KindDebt:    t.Debt,
	}
	head := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	format := "%-8s %-8s %-24s %14s  %s"

	var b strings.Builder
	b.WriteString(head.Render(padRight(fmt.Sprintf(format, "ID", "Kind", "Name", "Amount", ""), inner)))
	for i := offset; i < min(len(a.rows), offset+visible); i++ {
		r := a.rows[i]
		bg := t.Surface
		if i == a.ledgerC {
			bg = t.SurfaceHover
		}
		text := padRight(fmt.Sprintf(format, cli.ShortID(r.ID), r.Kind, truncStr(r.Label, 24), r.Amount, r.Detail), inner)
		style := lipgloss.NewStyle().Foreground(kindColor[r.Kind]).Background(bg)
		if i == a.ledgerC {
			style = style.Bold(true)
		}
		b.WriteString("\n")
		b.WriteString(style.Render(truncStr(text, inner)))
	}

	title := fmt.Sprintf("Ledger · %d entries", len(a.rows))
	return components.ContentCard(title, b.String(), cw)
}

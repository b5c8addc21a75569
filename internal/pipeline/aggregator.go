// Package pipeline turns a stored ledger into budget totals, groupings and
// payoff projections.
package pipeline

import (
	"sort"
	"strings"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/shopspring/decimal"
)

// Summarize totals the ledger. MonthlyBudget is income minus expenses and
// may be negative.
func Summarize(l model.Ledger) model.BudgetSummary {
	s := model.BudgetSummary{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		TotalDebt:     decimal.Zero,
		IncomeCount:   len(l.Incomes),
		ExpenseCount:  len(l.Expenses),
		DebtCount:     len(l.Debts),
	}
	for _, in := range l.Incomes {
		s.TotalIncome = s.TotalIncome.Add(in.Amount)
	}
	for _, ex := range l.Expenses {
		s.TotalExpenses = s.TotalExpenses.Add(ex.Amount)
	}
	for _, d := range l.Debts {
		s.TotalDebt = s.TotalDebt.Add(d.Principal)
	}
	s.MonthlyBudget = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}

// AggregateExpenses groups expenses by category, largest first.
func AggregateExpenses(expenses []model.Expense) []model.CategoryStats {
	labels := make([]string, len(expenses))
	amounts := make([]decimal.Decimal, len(expenses))
	for i, ex := range expenses {
		labels[i] = ex.Category
		amounts[i] = ex.Amount
	}
	return group(labels, amounts)
}

// AggregateIncomes groups incomes by source, largest first.
func AggregateIncomes(incomes []model.Income) []model.CategoryStats {
	labels := make([]string, len(incomes))
	amounts := make([]decimal.Decimal, len(incomes))
	for i, in := range incomes {
		labels[i] = in.Source
		amounts[i] = in.Amount
	}
	return group(labels, amounts)
}

// group merges labels case-insensitively; the first spelling seen is kept.
func group(labels []string, amounts []decimal.Decimal) []model.CategoryStats {
	byKey := make(map[string]*model.CategoryStats)
	var order []string
	total := decimal.Zero

	for i, label := range labels {
		key := strings.ToLower(strings.TrimSpace(label))
		cs, ok := byKey[key]
		if !ok {
			cs = &model.CategoryStats{Label: label, Amount: decimal.Zero}
			byKey[key] = cs
			order = append(order, key)
		}
		cs.Amount = cs.Amount.Add(amounts[i])
		cs.Count++
		total = total.Add(amounts[i])
	}

	out := make([]model.CategoryStats, 0, len(order))
	for _, key := range order {
		cs := byKey[key]
		if total.IsPositive() {
			cs.SharePercent = cs.Amount.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		out = append(out, *cs)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// FilterDebts returns debts whose name contains the substring, ignoring case.
func FilterDebts(debts []model.Debt, name string) []model.Debt {
	if name == "" {
		return debts
	}
	var result []model.Debt
	for _, d := range debts {
		if containsIgnoreCase(d.Name, name) {
			result = append(result, d)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

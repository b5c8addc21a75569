package model

import "github.com/shopspring/decimal"

// BudgetSummary holds ledger totals and the derived monthly budget.
type BudgetSummary struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"` // TotalIncome - TotalExpenses, may be negative
	TotalDebt     decimal.Decimal `json:"total_debt"`

	IncomeCount  int `json:"income_count"`
	ExpenseCount int `json:"expense_count"`
	DebtCount    int `json:"debt_count"`
}

// CategoryStats groups ledger amounts under one label: an expense category
// or an income source.
type CategoryStats struct {
	Label        string
	Amount       decimal.Decimal
	Count        int
	SharePercent float64
}

// DebtRow summarizes one debt across a whole projection.
type DebtRow struct {
	Name         string
	Principal    decimal.Decimal
	RatePercent  decimal.Decimal
	PayoffMonth  int // 0 when the projection never paid it off
	TotalPaid    decimal.Decimal
	InterestPaid decimal.Decimal
}

// Paid reports whether the projection paid this debt off.
func (r DebtRow) Paid() bool { return r.PayoffMonth > 0 }

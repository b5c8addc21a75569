// Package model defines domain types for snowball ledgers and projections.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies one of the three record lists.
type Kind string

// Record kinds.
const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
	KindDebt    Kind = "debt"
)

// Income is one recurring monthly income source.
type Income struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// Expense is one recurring monthly expense.
type Expense struct {
	ID        string          `json:"id"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// Debt is an outstanding balance repaid in monthly installments.
// AnnualRatePercent is a plain percentage: 18 means 18% per year.
type Debt struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	Installments      int             `json:"installments"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Active reports whether the debt takes part in a simulation.
func (d Debt) Active() bool {
	return d.Principal.IsPositive() && d.Installments > 0
}

// Ledger holds the three record lists in insertion order.
type Ledger struct {
	Incomes  []Income  `json:"incomes"`
	Expenses []Expense `json:"expenses"`
	Debts    []Debt    `json:"debts"`
}

// Empty reports whether the ledger has no records at all.
func (l Ledger) Empty() bool {
	return len(l.Incomes) == 0 && len(l.Expenses) == 0 && len(l.Debts) == 0
}

package pipeline

import (
	"math"
	"testing"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func TestSummarize(t *testing.T) {
	l := model.Ledger{
		Incomes: []model.Income{
			{Source: "Salary", Amount: dec(t, "3000")},
			{Source: "Freelance", Amount: dec(t, "500")},
		},
		Expenses: []model.Expense{
			{Category: "Rent", Amount: dec(t, "1200.50")},
		},
		Debts: []model.Debt{
			{Name: "Card", Principal: dec(t, "1500"), Installments: 10},
			{Name: "Car", Principal: dec(t, "8000"), Installments: 48},
		},
	}

	s := Summarize(l)
	checks := []struct {
		name      string
		got, want decimal.Decimal
	}{
		{"income", s.TotalIncome, dec(t, "3500")},
		{"expenses", s.TotalExpenses, dec(t, "1200.50")},
		{"budget", s.MonthlyBudget, dec(t, "2299.50")},
		{"debt", s.TotalDebt, dec(t, "9500")},
	}
	for _, c := range checks {
		if !c.got.Equal(c.want) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
	if s.IncomeCount != 2 || s.ExpenseCount != 1 || s.DebtCount != 2 {
		t.Errorf("counts = %d/%d/%d, want 2/1/2", s.IncomeCount, s.ExpenseCount, s.DebtCount)
	}
}

func TestSummarizeNegativeBudget(t *testing.T) {
	l := model.Ledger{
		Incomes:  []model.Income{{Source: "Salary", Amount: dec(t, "100")}},
		Expenses: []model.Expense{{Category: "Rent", Amount: dec(t, "250")}},
	}
	if got := Summarize(l).MonthlyBudget; !got.Equal(dec(t, "-150")) {
		t.Errorf("budget = %s, want -150", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(model.Ledger{})
	if !s.MonthlyBudget.IsZero() || !s.TotalDebt.IsZero() {
		t.Errorf("empty ledger summary = %+v", s)
	}
}

func TestAggregateExpenses(t *testing.T) {
	expenses := []model.Expense{
		{Category: "Food", Amount: dec(t, "100")},
		{Category: "Rent", Amount: dec(t, "600")},
		{Category: "food", Amount: dec(t, "200")},
		{Category: "Fun", Amount: dec(t, "100")},
	}

	got := AggregateExpenses(expenses)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Label != "Rent" || !got[0].Amount.Equal(dec(t, "600")) {
		t.Errorf("first = %+v, want Rent 600", got[0])
	}
	if got[1].Label != "Food" || got[1].Count != 2 || !got[1].Amount.Equal(dec(t, "300")) {
		t.Errorf("second = %+v, want Food x2 300", got[1])
	}
	if math.Abs(got[0].SharePercent-60) > 1e-9 {
		t.Errorf("Rent share = %f, want 60", got[0].SharePercent)
	}
}

func TestAggregateIncomesEmpty(t *testing.T) {
	if got := AggregateIncomes(nil); len(got) != 0 {
		t.Errorf("got %d groups, want 0", len(got))
	}
}

func TestFilterDebts(t *testing.T) {
	debts := []model.Debt{{Name: "Visa Card"}, {Name: "Car loan"}, {Name: "Store card"}}
	if got := FilterDebts(debts, "CARD"); len(got) != 2 {
		t.Errorf("got %d, want 2", len(got))
	}
	if got := FilterDebts(debts, ""); len(got) != 3 {
		t.Errorf("empty filter got %d, want 3", len(got))
	}
}

package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/snowball"
)

type staticSource struct {
	ledger model.Ledger
	err    error
}

func (s staticSource) LoadLedger() (model.Ledger, error) { return s.ledger, s.err }

func TestProjectSingleDebt(t *testing.T) {
	l := model.Ledger{
		Incomes:  []model.Income{{Source: "Salary", Amount: dec(t, "250")}},
		Expenses: []model.Expense{{Category: "Phone", Amount: dec(t, "100")}},
		Debts:    []model.Debt{{Name: "Card", Principal: dec(t, "1200"), Installments: 12}},
	}

	res := Project(l, snowball.Options{})
	if !res.Summary.MonthlyBudget.Equal(dec(t, "150")) {
		t.Fatalf("budget = %s, want 150", res.Summary.MonthlyBudget)
	}
	if res.Projection.Status != model.StatusComplete {
		t.Fatalf("status = %s, want complete", res.Projection.Status)
	}
	if got := res.Projection.MonthsToPayoff(); got != 8 {
		t.Errorf("months = %d, want 8", got)
	}

	series := BalanceSeries(res.Projection)
	if len(series) != 8 {
		t.Fatalf("series len = %d, want 8", len(series))
	}
	if !series[0].Equal(dec(t, "1050")) {
		t.Errorf("month 1 balance = %s, want 1050", series[0])
	}
	if !series[7].IsZero() {
		t.Errorf("final balance = %s, want 0", series[7])
	}
	floats := BalanceSeriesFloat(res.Projection)
	if floats[0] != 1050 {
		t.Errorf("float month 1 = %f, want 1050", floats[0])
	}
}

func TestProjectNegativeBudgetIsEmpty(t *testing.T) {
	l := model.Ledger{
		Expenses: []model.Expense{{Category: "Rent", Amount: dec(t, "10")}},
		Debts:    []model.Debt{{Name: "Card", Principal: dec(t, "100"), Installments: 2}},
	}
	res := Project(l, snowball.Options{})
	if res.Projection.Status != model.StatusEmpty || len(res.Projection.Months) != 0 {
		t.Errorf("projection = %+v, want empty", res.Projection)
	}
}

func TestDebtTimeline(t *testing.T) {
	// B listed first but paid off second; budget 300.
	debts := []model.Debt{
		{Name: "B", Principal: dec(t, "500"), Installments: 5},
		{Name: "A", Principal: dec(t, "100"), Installments: 1},
	}
	p := snowball.Simulate(debts, dec(t, "300"))

	rows := DebtTimeline(p, debts)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Name != "A" || rows[0].PayoffMonth != 1 {
		t.Errorf("row 0 = %+v, want A paid month 1", rows[0])
	}
	if rows[1].Name != "B" || rows[1].PayoffMonth != 2 {
		t.Errorf("row 1 = %+v, want B paid month 2", rows[1])
	}
	if !rows[1].TotalPaid.Equal(dec(t, "500")) {
		t.Errorf("B total paid = %s, want 500", rows[1].TotalPaid)
	}
	if !rows[0].InterestPaid.IsZero() {
		t.Errorf("A interest = %s, want 0", rows[0].InterestPaid)
	}
}

func TestDebtTimelineUnpaidLast(t *testing.T) {
	debts := []model.Debt{
		{Name: "B", Principal: dec(t, "500"), Installments: 5},
		{Name: "A", Principal: dec(t, "100"), Installments: 1},
	}
	p := snowball.SimulateWithOptions(debts, dec(t, "300"), snowball.Options{MaxMonths: 1})
	if p.Status != model.StatusTruncated {
		t.Fatalf("status = %s, want truncated", p.Status)
	}

	rows := DebtTimeline(p, debts)
	if rows[0].Name != "A" || !rows[0].Paid() {
		t.Errorf("row 0 = %+v, want A paid", rows[0])
	}
	if rows[1].Name != "B" || rows[1].Paid() {
		t.Errorf("row 1 = %+v, want B unpaid", rows[1])
	}
}

func TestDebtProgress(t *testing.T) {
	debts := []model.Debt{
		{Name: "B", Principal: dec(t, "500"), Installments: 5},
		{Name: "A", Principal: dec(t, "100"), Installments: 1},
	}
	p := snowball.Simulate(debts, dec(t, "300"))

	// Month 1: A takes 100, B takes the other 200.
	if got := DebtProgress(p, debts[0], 1); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("B progress month 1 = %f, want 0.4", got)
	}
	if got := DebtProgress(p, debts[0], 2); got != 1 {
		t.Errorf("B progress month 2 = %f, want 1", got)
	}
	if got := DebtProgress(p, debts[1], 0); got != 0 {
		t.Errorf("A progress month 0 = %f, want 0", got)
	}
}

func TestLoadWrapsError(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := Load(staticSource{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestLoadAndProject(t *testing.T) {
	src := staticSource{ledger: model.Ledger{
		Incomes: []model.Income{{Source: "Salary", Amount: dec(t, "100")}},
		Debts:   []model.Debt{{Name: "Card", Principal: dec(t, "100"), Installments: 1}},
	}}
	res, err := LoadAndProject(src, snowball.Options{})
	if err != nil {
		t.Fatalf("LoadAndProject: %v", err)
	}
	if res.Projection.PayoffMonth["Card"] != 1 {
		t.Errorf("payoff = %v, want Card in month 1", res.Projection.PayoffMonth)
	}
}

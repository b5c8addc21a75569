package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/shopspring/decimal"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sub", "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustDec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestAddAndList_PreservesOrderAndPrecision(t *testing.T) {
	s := openTemp(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := s.AddDebt(model.Debt{
			Name:              name,
			Principal:         mustDec(t, "1234.5678"),
			AnnualRatePercent: mustDec(t, "19.99"),
			Installments:      24,
		})
		if err != nil {
			t.Fatalf("AddDebt: %v", err)
		}
	}

	debts, err := s.ListDebts()
	if err != nil {
		t.Fatalf("ListDebts: %v", err)
	}
	if len(debts) != 3 {
		t.Fatalf("len = %d, want 3", len(debts))
	}
	for i, want := range []string{"zeta", "alpha", "mid"} {
		if debts[i].Name != want {
			t.Errorf("debts[%d] = %q, want %q (insertion order)", i, debts[i].Name, want)
		}
	}
	d := debts[0]
	if d.ID == "" || d.CreatedAt.IsZero() {
		t.Errorf("identity not assigned: %+v", d)
	}
	if !d.Principal.Equal(mustDec(t, "1234.5678")) || !d.AnnualRatePercent.Equal(mustDec(t, "19.99")) {
		t.Errorf("decimals changed: principal=%s rate=%s", d.Principal, d.AnnualRatePercent)
	}
	if d.Installments != 24 {
		t.Errorf("Installments = %d, want 24", d.Installments)
	}
}

func TestLoadLedger(t *testing.T) {
	s := openTemp(t)

	if _, err := s.AddIncome(model.Income{Source: "salary", Amount: mustDec(t, "3000")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddExpense(model.Expense{Category: "rent", Amount: mustDec(t, "1200.50")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddDebt(model.Debt{Name: "card", Principal: mustDec(t, "900"), AnnualRatePercent: decimal.Zero, Installments: 9}); err != nil {
		t.Fatal(err)
	}

	l, err := s.LoadLedger()
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if len(l.Incomes) != 1 || l.Incomes[0].Source != "salary" {
		t.Errorf("Incomes = %+v", l.Incomes)
	}
	if len(l.Expenses) != 1 || !l.Expenses[0].Amount.Equal(mustDec(t, "1200.5")) {
		t.Errorf("Expenses = %+v", l.Expenses)
	}
	if len(l.Debts) != 1 || l.Debts[0].Name != "card" {
		t.Errorf("Debts = %+v", l.Debts)
	}
}

func TestRevision_IncreasesOnWrite(t *testing.T) {
	s := openTemp(t)

	r0, err := s.Revision()
	if err != nil {
		t.Fatalf("Revision: %v", err)
	}
	in, err := s.AddIncome(model.Income{Source: "side gig", Amount: mustDec(t, "200")})
	if err != nil {
		t.Fatal(err)
	}
	r1, _ := s.Revision()
	if r1 <= r0 {
		t.Fatalf("revision after add = %d, want > %d", r1, r0)
	}

	if _, err := s.ListIncomes(); err != nil {
		t.Fatal(err)
	}
	if r, _ := s.Revision(); r != r1 {
		t.Fatalf("revision changed on read: %d -> %d", r1, r)
	}

	if _, err := s.Delete(model.KindIncome, in.ID); err != nil {
		t.Fatal(err)
	}
	if r2, _ := s.Revision(); r2 <= r1 {
		t.Fatalf("revision after delete = %d, want > %d", r2, r1)
	}
}

func TestDelete_ByPrefix(t *testing.T) {
	s := openTemp(t)

	ex, err := s.AddExpense(model.Expense{Category: "food", Amount: mustDec(t, "400")})
	if err != nil {
		t.Fatal(err)
	}

	id, err := s.Delete(model.KindExpense, ex.ID[:8])
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if id != ex.ID {
		t.Fatalf("deleted %q, want %q", id, ex.ID)
	}

	_, err = s.Delete(model.KindExpense, ex.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDelete_Ambiguous(t *testing.T) {
	s := openTemp(t)

	err := s.ReplaceLedger(model.Ledger{
		Incomes: []model.Income{
			{ID: "abc-1", Source: "a", Amount: mustDec(t, "1")},
			{ID: "abc-2", Source: "b", Amount: mustDec(t, "2")},
		},
	})
	if err != nil {
		t.Fatalf("ReplaceLedger: %v", err)
	}

	if _, err := s.Delete(model.KindIncome, "abc"); !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("err = %v, want ErrAmbiguous", err)
	}
	if _, err := s.Delete(model.KindIncome, "abc-2"); err != nil {
		t.Fatalf("exact id delete: %v", err)
	}
	incomes, _ := s.ListIncomes()
	if len(incomes) != 1 || incomes[0].ID != "abc-1" {
		t.Fatalf("remaining incomes = %+v", incomes)
	}
}

func TestDelete_WrongKindAndLikeEscaping(t *testing.T) {
	s := openTemp(t)

	if _, err := s.AddDebt(model.Debt{Name: "x", Principal: mustDec(t, "1"), AnnualRatePercent: decimal.Zero, Installments: 1}); err != nil {
		t.Fatal(err)
	}
	// "%" would match everything if it reached LIKE unescaped.
	if _, err := s.Delete(model.KindDebt, "%"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := s.Delete(model.Kind("savings"), "x"); err == nil || !strings.Contains(err.Error(), "unknown record kind") {
		t.Fatalf("err = %v, want unknown kind", err)
	}
}

func TestReplaceLedger_FillsIdentity(t *testing.T) {
	s := openTemp(t)

	if _, err := s.AddIncome(model.Income{Source: "old", Amount: mustDec(t, "1")}); err != nil {
		t.Fatal(err)
	}
	err := s.ReplaceLedger(model.Ledger{
		Debts: []model.Debt{{Name: "imported", Principal: mustDec(t, "50"), AnnualRatePercent: mustDec(t, "3"), Installments: 5}},
	})
	if err != nil {
		t.Fatalf("ReplaceLedger: %v", err)
	}

	l, err := s.LoadLedger()
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Incomes) != 0 {
		t.Errorf("old incomes survived: %+v", l.Incomes)
	}
	if len(l.Debts) != 1 || l.Debts[0].ID == "" || l.Debts[0].CreatedAt.IsZero() {
		t.Errorf("Debts = %+v, want one with identity filled", l.Debts)
	}
}

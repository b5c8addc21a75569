package tui

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/theirongolddev/snowball/internal/config"
	"github.com/theirongolddev/snowball/internal/entry"
	"github.com/theirongolddev/snowball/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

type memLedger struct {
	mu       sync.Mutex
	ledger   model.Ledger
	revision int64
	deleted  []string
}

func (m *memLedger) LoadLedger() (model.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger, nil
}

func (m *memLedger) Revision() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision, nil
}

func (m *memLedger) AddIncome(in model.Income) (model.Income, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in.ID = "inc-new"
	m.ledger.Incomes = append(m.ledger.Incomes, in)
	m.revision++
	return in, nil
}

func (m *memLedger) AddExpense(ex model.Expense) (model.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex.ID = "exp-new"
	m.ledger.Expenses = append(m.ledger.Expenses, ex)
	m.revision++
	return ex, nil
}

func (m *memLedger) AddDebt(d model.Debt) (model.Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = "debt-new"
	m.ledger.Debts = append(m.ledger.Debts, d)
	m.revision++
	return d, nil
}

func (m *memLedger) Delete(kind model.Kind, idPrefix string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, string(kind)+":"+idPrefix)
	m.revision++
	return idPrefix, nil
}

func seededLedger() *memLedger {
	return &memLedger{
		revision: 1,
		ledger: model.Ledger{
			Incomes:  []model.Income{{ID: "inc-1", Source: "Salary", Amount: decimal.NewFromInt(250)}},
			Expenses: []model.Expense{{ID: "exp-1", Category: "Phone", Amount: decimal.NewFromInt(100)}},
			Debts:    []model.Debt{{ID: "debt-1", Name: "Card", Principal: decimal.NewFromInt(1200), Installments: 12}},
		},
	}
}

func loadedApp(t *testing.T, l Ledger) App {
	t.Helper()
	a := NewApp(l, config.DefaultConfig(), false)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 130, Height: 40})
	a = m.(App)
	m, _ = a.Update(refreshCmd(a.projector)())
	a = m.(App)
	if !a.loaded {
		t.Fatal("app not loaded after ResultMsg")
	}
	return a
}

func press(a App, key string) App {
	var msg tea.KeyMsg
	switch key {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, _ := a.Update(msg)
	return m.(App)
}

func TestAppLoadsProjection(t *testing.T) {
	a := loadedApp(t, seededLedger())

	if got := a.res.Projection.MonthsToPayoff(); got != 8 {
		t.Errorf("months = %d, want 8", got)
	}
	if len(a.rows) != 3 {
		t.Errorf("ledger rows = %d, want 3", len(a.rows))
	}
}

func TestAppTabNavigation(t *testing.T) {
	a := loadedApp(t, seededLedger())

	a = press(a, "p")
	if a.activeTab != tabPlan {
		t.Fatalf("after p: tab %d, want %d", a.activeTab, tabPlan)
	}
	a = press(a, "3")
	if a.activeTab != tabDebts {
		t.Fatalf("after 3: tab %d, want %d", a.activeTab, tabDebts)
	}
	a = press(a, "right")
	if a.activeTab != tabLedger {
		t.Fatalf("after right: tab %d, want %d", a.activeTab, tabLedger)
	}
	a = press(a, "right")
	if a.activeTab != tabOverview {
		t.Fatalf("right should wrap to overview, got %d", a.activeTab)
	}
}

func TestPlanCursorStaysInRange(t *testing.T) {
	a := loadedApp(t, seededLedger())
	a = press(a, "p")
	for i := 0; i < 20; i++ {
		a = press(a, "j")
	}
	if a.plan.cursor != 7 {
		t.Errorf("cursor = %d, want 7", a.plan.cursor)
	}
	a = press(a, "g")
	if a.plan.cursor != 0 {
		t.Errorf("cursor after g = %d, want 0", a.plan.cursor)
	}
}

func TestLedgerDeleteOpensConfirm(t *testing.T) {
	a := loadedApp(t, seededLedger())
	a = press(a, "l")
	a = press(a, "j")
	a = press(a, "d")

	if a.form == nil || a.formFor != formDelete {
		t.Fatal("d on the ledger tab should open the delete confirmation")
	}
	if a.deleteRow.ID != "exp-1" {
		t.Errorf("delete target = %q, want exp-1", a.deleteRow.ID)
	}
}

func TestAddKeyOpensEntryForm(t *testing.T) {
	a := loadedApp(t, seededLedger())
	a = press(a, "a")
	if a.form == nil || a.formFor != formAdd {
		t.Fatal("a should open the add form")
	}
	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = m.(App)
	if a.form != nil {
		t.Error("esc should close the form")
	}
}

func TestSaveEntryCmd(t *testing.T) {
	l := seededLedger()

	msg := saveEntryCmd(l, entryValues{
		kind: "debt", label: "Car", principal: "5000", rate: "6.5", installments: "48",
	})().(SavedMsg)
	if msg.Err != nil {
		t.Fatalf("save debt: %v", msg.Err)
	}
	if len(l.ledger.Debts) != 2 || l.ledger.Debts[1].Name != "Car" {
		t.Errorf("debts = %+v", l.ledger.Debts)
	}

	msg = saveEntryCmd(l, entryValues{kind: "income", label: "", amount: "10"})().(SavedMsg)
	if !errors.Is(msg.Err, entry.ErrInvalid) {
		t.Errorf("empty source: err = %v, want ErrInvalid", msg.Err)
	}
}

func TestSavedMsgRefreshes(t *testing.T) {
	l := seededLedger()
	a := loadedApp(t, l)

	if _, err := l.AddIncome(model.Income{Source: "Bonus", Amount: decimal.NewFromInt(150)}); err != nil {
		t.Fatal(err)
	}
	m, cmd := a.Update(SavedMsg{Text: "added income Bonus"})
	a = m.(App)
	if cmd == nil {
		t.Fatal("SavedMsg should trigger a refresh")
	}
	m, _ = a.Update(cmd())
	a = m.(App)

	if got := a.res.Projection.MonthsToPayoff(); got != 4 {
		t.Errorf("months after bonus = %d, want 4", got)
	}
	if !strings.Contains(a.status, "Bonus") {
		t.Errorf("status = %q", a.status)
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := loadedApp(t, seededLedger())
	for tab := 0; tab < 4; tab++ {
		a.activeTab = tab
		if out := a.View(); !strings.Contains(out, "snowball") {
			t.Errorf("tab %d view missing title", tab)
		}
	}
}

package pipeline

import (
	"fmt"

	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/snowball"
)

// LedgerSource is anything that can hand back the full ledger.
// *store.Store satisfies it.
type LedgerSource interface {
	LoadLedger() (model.Ledger, error)
}

// Result bundles the budget totals with the projection they produced.
type Result struct {
	Ledger     model.Ledger
	Summary    model.BudgetSummary
	Projection model.PayoffProjection
}

// Load reads the whole ledger from src.
func Load(src LedgerSource) (model.Ledger, error) {
	l, err := src.LoadLedger()
	if err != nil {
		return model.Ledger{}, fmt.Errorf("loading ledger: %w", err)
	}
	return l, nil
}

// Project summarizes the ledger and runs the snowball simulation against
// its monthly budget. Call it again whenever the ledger changes.
func Project(l model.Ledger, opts snowball.Options) Result {
	summary := Summarize(l)
	return Result{
		Ledger:     l,
		Summary:    summary,
		Projection: snowball.SimulateWithOptions(l.Debts, summary.MonthlyBudget, opts),
	}
}

// LoadAndProject is Load followed by Project.
func LoadAndProject(src LedgerSource, opts snowball.Options) (Result, error) {
	l, err := Load(src)
	if err != nil {
		return Result{}, err
	}
	return Project(l, opts), nil
}

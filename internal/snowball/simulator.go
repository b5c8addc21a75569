// Package snowball projects debt payoff under the snowball strategy: every
// debt receives its minimum, and whatever budget is left in a month goes to
// the debt with the smallest balance before the next one is considered.
package snowball

import (
	"sort"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultMaxMonths bounds a run when Options.MaxMonths is unset (50 years).
const DefaultMaxMonths = 600

// accrualPrecision bounds the decimal places kept on accrued interest to the
// library's division precision, the same bound the monthly rate already has.
// Without it every month widens the balance by the rate's digits.
func accrualPrecision() int32 {
	return int32(decimal.DivisionPrecision)
}

// PaidOffThreshold is the balance at or below which a debt counts as paid.
var PaidOffThreshold = decimal.New(1, -2)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Options tunes a simulation run.
type Options struct {
	// MaxMonths caps the number of simulated months. Zero means DefaultMaxMonths.
	MaxMonths int
}

type workingDebt struct {
	name           string
	index          int // position in the caller's slice, breaks balance ties
	balance        decimal.Decimal
	monthlyRate    decimal.Decimal
	minimumPayment decimal.Decimal
	remaining      int
}

// Simulate runs the snowball projection with default options.
func Simulate(debts []model.Debt, monthlyBudget decimal.Decimal) model.PayoffProjection {
	return SimulateWithOptions(debts, monthlyBudget, Options{})
}

// SimulateWithOptions runs the snowball projection. It never fails: an empty
// debt list or a non-positive budget yields an empty projection, and debts
// without a positive principal and installment count are skipped.
func SimulateWithOptions(debts []model.Debt, monthlyBudget decimal.Decimal, opts Options) model.PayoffProjection {
	proj := model.PayoffProjection{
		PayoffMonth:   make(map[string]int),
		Status:        model.StatusEmpty,
		TotalPaid:     decimal.Zero,
		TotalInterest: decimal.Zero,
	}
	if !monthlyBudget.IsPositive() {
		return proj
	}

	active := newWorkingSet(debts)
	if len(active) == 0 {
		return proj
	}

	maxMonths := opts.MaxMonths
	if maxMonths <= 0 {
		maxMonths = DefaultMaxMonths
	}

	sortByBalance(active)

	for month := 1; len(active) > 0; month++ {
		if month > maxMonths {
			proj.Status = model.StatusTruncated
			return proj
		}

		rec, remaining := payMonth(active, month, monthlyBudget)
		proj.Months = append(proj.Months, rec)
		proj.TotalPaid = proj.TotalPaid.Add(rec.TotalPaid)
		proj.TotalInterest = proj.TotalInterest.Add(rec.TotalInterest)

		survivors := active[:0]
		for _, w := range active {
			if w.balance.LessThanOrEqual(PaidOffThreshold) {
				if _, seen := proj.PayoffMonth[w.name]; !seen {
					proj.PayoffMonth[w.name] = month
				}
				continue
			}
			survivors = append(survivors, w)
		}
		active = survivors

		// Every active debt holds more than PaidOffThreshold, so a positive
		// budget always buys something. This only fires if that changes.
		if len(active) > 0 && remaining.Equal(monthlyBudget) {
			proj.Status = model.StatusStalled
			return proj
		}

		sortByBalance(active)
	}

	proj.Status = model.StatusComplete
	return proj
}

func newWorkingSet(debts []model.Debt) []workingDebt {
	out := make([]workingDebt, 0, len(debts))
	for i, d := range debts {
		if !d.Active() {
			continue
		}
		installments := decimal.NewFromInt(int64(d.Installments))
		out = append(out, workingDebt{
			name:           d.Name,
			index:          i,
			balance:        d.Principal,
			monthlyRate:    d.AnnualRatePercent.Div(hundred).Div(twelve),
			minimumPayment: d.Principal.Div(installments),
			remaining:      d.Installments,
		})
	}
	return out
}

// payMonth accrues interest on every debt, then walks them smallest first:
// minimum due, then all leftover budget into the same debt. It mutates the
// working set and returns the month's record and the unspent budget.
func payMonth(active []workingDebt, month int, budget decimal.Decimal) (model.MonthRecord, decimal.Decimal) {
	rec := model.MonthRecord{
		Month:         month,
		Payments:      make([]model.PaymentEntry, 0, len(active)),
		TotalInterest: decimal.Zero,
	}

	interest := make([]decimal.Decimal, len(active))
	for i := range active {
		w := &active[i]
		accrued := w.balance.Mul(w.monthlyRate).Round(accrualPrecision())
		w.balance = w.balance.Add(accrued)
		interest[i] = accrued
		rec.TotalInterest = rec.TotalInterest.Add(accrued)
	}

	remaining := budget
	for i := range active {
		w := &active[i]

		minimumDue := decimal.Min(w.balance, w.minimumPayment)
		paid := decimal.Min(remaining, minimumDue)
		w.balance = w.balance.Sub(paid)
		remaining = remaining.Sub(paid)
		if w.remaining > 0 {
			w.remaining--
		}

		if remaining.IsPositive() && w.balance.IsPositive() {
			surplus := decimal.Min(remaining, w.balance)
			w.balance = w.balance.Sub(surplus)
			remaining = remaining.Sub(surplus)
			paid = paid.Add(surplus)
		}

		rec.Payments = append(rec.Payments, model.PaymentEntry{
			Name:                  w.name,
			Paid:                  paid,
			Interest:              interest[i],
			Balance:               w.balance,
			RemainingInstallments: w.remaining,
		})
	}

	rec.TotalPaid = budget.Sub(remaining)
	return rec, remaining
}

func sortByBalance(ws []workingDebt) {
	sort.SliceStable(ws, func(i, j int) bool {
		if c := ws[i].balance.Cmp(ws[j].balance); c != 0 {
			return c < 0
		}
		return ws[i].index < ws[j].index
	})
}

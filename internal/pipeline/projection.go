package pipeline

import (
	"sort"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/shopspring/decimal"
)

// BalanceSeries returns the total remaining balance at the end of every
// simulated month. Debts already paid off contribute zero.
func BalanceSeries(p model.PayoffProjection) []decimal.Decimal {
	out := make([]decimal.Decimal, len(p.Months))
	for i, m := range p.Months {
		out[i] = m.RemainingBalance()
	}
	return out
}

// BalanceSeriesFloat is BalanceSeries converted for charting.
func BalanceSeriesFloat(p model.PayoffProjection) []float64 {
	series := BalanceSeries(p)
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = v.InexactFloat64()
	}
	return out
}

// DebtTimeline builds one row per debt: when it was paid off and how much
// went into it. Paid debts come first in payoff order, unpaid ones follow
// in input order. Debts that share a name share one row.
func DebtTimeline(p model.PayoffProjection, debts []model.Debt) []model.DebtRow {
	rows := make([]model.DebtRow, 0, len(debts))
	index := make(map[string]int)

	for _, d := range debts {
		if _, ok := index[d.Name]; ok {
			continue
		}
		index[d.Name] = len(rows)
		rows = append(rows, model.DebtRow{
			Name:         d.Name,
			Principal:    d.Principal,
			RatePercent:  d.AnnualRatePercent,
			PayoffMonth:  p.PayoffMonth[d.Name],
			TotalPaid:    decimal.Zero,
			InterestPaid: decimal.Zero,
		})
	}

	for _, m := range p.Months {
		for _, pay := range m.Payments {
			i, ok := index[pay.Name]
			if !ok {
				continue
			}
			rows[i].TotalPaid = rows[i].TotalPaid.Add(pay.Paid)
			rows[i].InterestPaid = rows[i].InterestPaid.Add(pay.Interest)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Paid() != b.Paid() {
			return a.Paid()
		}
		return a.PayoffMonth < b.PayoffMonth
	})
	return rows
}

// DebtProgress returns how much of a debt's principal the projection has
// retired by the given month, as a fraction in [0, 1].
func DebtProgress(p model.PayoffProjection, d model.Debt, month int) float64 {
	if !d.Principal.IsPositive() {
		return 0
	}
	if pm, ok := p.PayoffMonth[d.Name]; ok && pm <= month {
		return 1
	}
	balance := d.Principal
	for _, m := range p.Months {
		if m.Month > month {
			break
		}
		for _, pay := range m.Payments {
			if pay.Name == d.Name {
				balance = pay.Balance
				break
			}
		}
	}
	frac := 1 - balance.Div(d.Principal).InexactFloat64()
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ProjectionStatus tells how a simulation run ended.
type ProjectionStatus string

// Projection statuses.
const (
	StatusEmpty     ProjectionStatus = "empty"     // nothing to simulate
	StatusComplete  ProjectionStatus = "complete"  // every debt paid off
	StatusStalled   ProjectionStatus = "stalled"   // a month consumed no budget
	StatusTruncated ProjectionStatus = "truncated" // month cap reached
)

// PaymentEntry is what one debt received in one simulated month.
type PaymentEntry struct {
	Name                  string          `json:"name"`
	Paid                  decimal.Decimal `json:"paid"`
	Interest              decimal.Decimal `json:"interest"`
	Balance               decimal.Decimal `json:"balance"`
	RemainingInstallments int             `json:"remaining_installments"`
}

// MonthRecord holds every payment made in one simulated month.
type MonthRecord struct {
	Month         int             `json:"month"`
	Payments      []PaymentEntry  `json:"payments"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

// RemainingBalance sums the end-of-month balances of the debts paid this month.
func (m MonthRecord) RemainingBalance() decimal.Decimal {
	total := decimal.Zero
	for _, p := range m.Payments {
		total = total.Add(p.Balance)
	}
	return total
}

// PayoffProjection is the full result of one snowball simulation.
type PayoffProjection struct {
	Months        []MonthRecord    `json:"months"`
	PayoffMonth   map[string]int   `json:"payoff_month"`
	Status        ProjectionStatus `json:"status"`
	TotalPaid     decimal.Decimal  `json:"total_paid"`
	TotalInterest decimal.Decimal  `json:"total_interest"`
}

// MonthsToPayoff returns the number of simulated months, or 0 when the
// projection never reached a debt-free state.
func (p PayoffProjection) MonthsToPayoff() int {
	if p.Status != StatusComplete {
		return 0
	}
	return len(p.Months)
}

// Payoff pairs a debt name with the month it was paid off.
type Payoff struct {
	Name  string `json:"name"`
	Month int    `json:"month"`
}

// PayoffOrder returns the payoff map sorted by month, then name.
func (p PayoffProjection) PayoffOrder() []Payoff {
	out := make([]Payoff, 0, len(p.PayoffMonth))
	for name, m := range p.PayoffMonth {
		out = append(out, Payoff{Name: name, Month: m})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Name < out[j].Name
	})
	return out
}

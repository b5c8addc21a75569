package pipeline

import (
	"fmt"
	"testing"

	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/snowball"

	"github.com/shopspring/decimal"
)

func benchLedger(nDebts int) model.Ledger {
	l := model.Ledger{
		Incomes:  []model.Income{{Source: "Salary", Amount: decimal.NewFromInt(5200)}},
		Expenses: []model.Expense{{Category: "Rent", Amount: decimal.NewFromInt(1800)}},
	}
	for i := 0; i < nDebts; i++ {
		l.Debts = append(l.Debts, model.Debt{
			Name:              fmt.Sprintf("debt-%d", i),
			Principal:         decimal.NewFromInt(int64(1000 + 750*i)),
			AnnualRatePercent: decimal.NewFromFloat(4.5 + float64(i)),
			Installments:      12 + 6*i,
		})
	}
	return l
}

func BenchmarkProject(b *testing.B) {
	for _, n := range []int{1, 5, 20} {
		l := benchLedger(n)
		b.Run(fmt.Sprintf("debts=%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = Project(l, snowball.Options{})
			}
		})
	}
}

func BenchmarkDebtTimeline(b *testing.B) {
	l := benchLedger(20)
	res := Project(l, snowball.Options{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = DebtTimeline(res.Projection, l.Debts)
	}
}

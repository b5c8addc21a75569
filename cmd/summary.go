package cmd

import (
	"fmt"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Budget and debt-free summary",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	res, err := loadProjection()
	if err != nil {
		return err
	}

	if res.Ledger.Empty() {
		fmt.Println("\n  No records yet.")
		fmt.Println("  Start with `snowball income add`, `snowball expense add` and `snowball debt add`.")
		return nil
	}

	s := res.Summary
	p := res.Projection

	fmt.Println()
	fmt.Println(cli.RenderTitle("SNOWBALL SUMMARY"))
	fmt.Println()

	budget := cli.FormatMoney(s.MonthlyBudget)
	if !s.MonthlyBudget.IsPositive() {
		budget = cli.RenderBad(budget)
	}

	rows := [][]string{
		{"Income", cli.FormatMoney(s.TotalIncome), plural(s.IncomeCount, "source")},
		{"Expenses", cli.FormatMoney(s.TotalExpenses), plural(s.ExpenseCount, "expense")},
		{"Monthly budget", budget, "income minus expenses"},
		{"---"},
		{"Total debt", cli.FormatMoney(s.TotalDebt), plural(s.DebtCount, "debt")},
		{"Debt-free in", debtFreeIn(p), string(p.Status)},
	}
	if p.Status != model.StatusEmpty {
		rows = append(rows,
			[]string{"Total paid", cli.FormatMoney(p.TotalPaid), ""},
			[]string{"Interest", cli.FormatMoney(p.TotalInterest), ""},
		)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"Metric", "Value", "Note"},
		Rows:      rows,
		LeftAlign: []bool{true, false, true},
	}))

	if series := pipeline.BalanceSeriesFloat(p); len(series) > 1 {
		fmt.Println()
		fmt.Println(cli.RenderMetric("Balance", cli.RenderSparkline(cli.Downsample(series, 48))))
	}

	if warn := statusWarning(res); warn != "" {
		fmt.Println()
		fmt.Println("  " + cli.RenderWarn(warn))
	}
	fmt.Println()
	return nil
}

func debtFreeIn(p model.PayoffProjection) string {
	switch p.Status {
	case model.StatusComplete:
		return cli.FormatMonths(p.MonthsToPayoff())
	case model.StatusEmpty:
		return "-"
	default:
		return "not reached"
	}
}

// statusWarning explains a projection that did not pay everything off.
func statusWarning(res pipeline.Result) string {
	switch {
	case res.Summary.DebtCount == 0:
		return ""
	case !res.Summary.MonthlyBudget.IsPositive():
		return "Expenses take the whole income; there is nothing left for debt payments."
	case res.Projection.Status == model.StatusTruncated:
		return fmt.Sprintf("Debts are not paid off within %s (simulation.max_months).",
			cli.FormatMonths(len(res.Projection.Months)))
	case res.Projection.Status == model.StatusStalled:
		return "The budget stopped reducing the remaining debts."
	}
	return ""
}

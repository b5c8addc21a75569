package cmd

import (
	"fmt"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/entry"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/pipeline"
	"github.com/theirongolddev/snowball/internal/snowball"

	"github.com/spf13/cobra"
)

var flagPayoffExtra string

var payoffCmd = &cobra.Command{
	Use:   "payoff",
	Short: "When each debt gets paid off",
	Args:  cobra.NoArgs,
	RunE:  runPayoff,
}

func init() {
	payoffCmd.Flags().StringVar(&flagPayoffExtra, "extra", "", "Compare against this much more budget per month")
	rootCmd.AddCommand(payoffCmd)
}

func runPayoff(_ *cobra.Command, _ []string) error {
	res, err := loadProjection()
	if err != nil {
		return err
	}
	if len(res.Ledger.Debts) == 0 {
		fmt.Println("\n  No debts recorded.")
		return nil
	}

	p := res.Projection
	timeline := pipeline.DebtTimeline(p, res.Ledger.Debts)

	rows := make([][]string, 0, len(timeline))
	for i, r := range timeline {
		when := cli.RenderBad("not paid")
		if r.Paid() {
			when = fmt.Sprintf("month %d (%s)", r.PayoffMonth, cli.FormatMonths(r.PayoffMonth))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			r.Name,
			cli.FormatMoney(r.Principal),
			cli.FormatRate(r.RatePercent),
			when,
			cli.FormatMoney(r.TotalPaid),
			cli.FormatMoney(r.InterestPaid),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PAYOFF ORDER"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"#", "Debt", "Principal", "Rate", "Paid off", "Total paid", "Interest"},
		Rows:      rows,
		LeftAlign: []bool{false, true},
	}))
	fmt.Println(cli.RenderMetric("Debt-free in", debtFreeIn(p)))
	fmt.Println(cli.RenderMetric("Total interest", cli.FormatMoney(p.TotalInterest)))

	if flagPayoffExtra != "" {
		if err := printWhatIf(res, flagPayoffExtra); err != nil {
			return err
		}
	}
	if warn := statusWarning(res); warn != "" {
		fmt.Println()
		fmt.Println("  " + cli.RenderWarn(warn))
	}
	fmt.Println()
	return nil
}

// printWhatIf reruns the projection with a larger budget and shows the difference.
func printWhatIf(res pipeline.Result, extra string) error {
	amount, err := entry.ParseAmount(extra)
	if err != nil {
		return fmt.Errorf("--extra: %w", err)
	}

	budget := res.Summary.MonthlyBudget.Add(amount)
	alt := snowball.SimulateWithOptions(res.Ledger.Debts, budget, simOptions())
	base := res.Projection

	fmt.Println()
	fmt.Println(cli.RenderMetric("With extra", "+"+cli.FormatMoney(amount)+"/month"))
	fmt.Println(cli.RenderMetric("Debt-free in", debtFreeIn(alt)))
	if base.Status == model.StatusComplete && alt.Status == model.StatusComplete {
		saved := base.MonthsToPayoff() - alt.MonthsToPayoff()
		fmt.Println(cli.RenderMetric("Months saved", cli.RenderGood(cli.FormatMonths(saved))))
	}
	fmt.Println(cli.RenderMetric("Interest change", cli.FormatDelta(alt.TotalInterest, base.TotalInterest)))
	return nil
}

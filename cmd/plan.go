package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagPlanLimit  int
	flagPlanDetail bool
	flagPlanJSON   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Month-by-month payoff plan",
	Args:  cobra.NoArgs,
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().IntVarP(&flagPlanLimit, "limit", "l", 24, "Months to show (0 for all)")
	planCmd.Flags().BoolVar(&flagPlanDetail, "detail", false, "Show every debt payment within each month")
	planCmd.Flags().BoolVar(&flagPlanJSON, "json", false, "Print the full projection as JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, _ []string) error {
	res, err := loadProjection()
	if err != nil {
		return err
	}
	p := res.Projection

	if flagPlanJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	if len(p.Months) == 0 {
		fmt.Println("\n  Nothing to plan.")
		if warn := statusWarning(res); warn != "" {
			fmt.Println("  " + cli.RenderWarn(warn))
		} else if res.Summary.DebtCount == 0 {
			fmt.Println("  Add a debt with `snowball debt add`.")
		}
		return nil
	}

	months := p.Months
	if flagPlanLimit > 0 && len(months) > flagPlanLimit {
		months = months[:flagPlanLimit]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PAYOFF PLAN  %s budget", cli.FormatMoney(res.Summary.MonthlyBudget))))
	fmt.Println()

	if flagPlanDetail {
		fmt.Print(renderPlanDetail(months, p))
	} else {
		fmt.Print(renderPlanMonths(months, p))
	}

	if hidden := len(p.Months) - len(months); hidden > 0 {
		fmt.Printf("  ... %s more (use --limit 0 to show all)\n", plural(hidden, "month"))
	}
	fmt.Printf("  %s after %s, %s interest\n",
		planOutcome(p), cli.FormatMonths(len(p.Months)), cli.FormatMoney(p.TotalInterest))
	if warn := statusWarning(res); warn != "" {
		fmt.Println("  " + cli.RenderWarn(warn))
	}
	fmt.Println()
	return nil
}

func renderPlanMonths(months []model.MonthRecord, p model.PayoffProjection) string {
	paidIn := paidOffByMonth(p)
	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{
			strconv.Itoa(m.Month),
			cli.FormatMoney(m.TotalPaid),
			cli.FormatMoney(m.TotalInterest),
			cli.FormatMoney(m.RemainingBalance()),
			strings.Join(paidIn[m.Month], ", "),
		})
	}
	return cli.RenderTable(cli.Table{
		Headers:   []string{"Month", "Paid", "Interest", "Remaining", "Paid off"},
		Rows:      rows,
		LeftAlign: []bool{false, false, false, false, true},
	})
}

func renderPlanDetail(months []model.MonthRecord, p model.PayoffProjection) string {
	var rows [][]string
	for i, m := range months {
		if i > 0 {
			rows = append(rows, []string{"---"})
		}
		for j, pay := range m.Payments {
			month := ""
			if j == 0 {
				month = strconv.Itoa(m.Month)
			}
			note := strconv.Itoa(pay.RemainingInstallments)
			if p.PayoffMonth[pay.Name] == m.Month {
				note = cli.RenderGood("paid off")
			}
			rows = append(rows, []string{
				month,
				pay.Name,
				cli.FormatMoney(pay.Paid),
				cli.FormatMoney(pay.Interest),
				cli.FormatMoney(pay.Balance),
				note,
			})
		}
	}
	return cli.RenderTable(cli.Table{
		Headers:   []string{"Month", "Debt", "Paid", "Interest", "Balance", "Left"},
		Rows:      rows,
		LeftAlign: []bool{false, true},
	})
}

// paidOffByMonth inverts the payoff map: month -> debt names, sorted.
func paidOffByMonth(p model.PayoffProjection) map[int][]string {
	out := make(map[int][]string)
	for name, m := range p.PayoffMonth {
		out[m] = append(out[m], name)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out
}

func planOutcome(p model.PayoffProjection) string {
	switch p.Status {
	case model.StatusComplete:
		return cli.RenderGood("Debt-free")
	case model.StatusTruncated:
		return cli.RenderWarn("Stopped at the month limit")
	case model.StatusStalled:
		return cli.RenderBad("Stalled")
	}
	return string(p.Status)
}

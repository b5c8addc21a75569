package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/entry"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/pipeline"
	"github.com/theirongolddev/snowball/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var flagDebtFilter string

var debtCmd = &cobra.Command{
	Use:     "debt",
	Aliases: []string{"debts"},
	Short:   "Manage debts",
}

var debtAddCmd = &cobra.Command{
	Use:     "add <name> <principal> <annual-rate> <installments>",
	Short:   "Add a debt",
	Example: "  snowball debt add \"Credit card\" 1200 18.5 12",
	Args:    cobra.ExactArgs(4),
	RunE:    runDebtAdd,
}

var debtListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List debts",
	Args:    cobra.NoArgs,
	RunE:    runDebtList,
}

var debtRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove a debt by ID or ID prefix",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return removeRecord(model.KindDebt, args[0])
	},
}

func init() {
	debtListCmd.Flags().StringVarP(&flagDebtFilter, "name", "n", "", "Filter to debts whose name contains this text")
	debtCmd.AddCommand(debtAddCmd, debtListCmd, debtRmCmd)
	rootCmd.AddCommand(debtCmd)
}

func runDebtAdd(_ *cobra.Command, args []string) error {
	d, err := entry.ParseDebt(args[0], args[1], args[2], args[3])
	if err != nil {
		return err
	}
	return withStore(func(st *store.Store) error {
		saved, err := st.AddDebt(d)
		if err != nil {
			return err
		}
		fmt.Printf("  Added debt %s  %s  %s at %s over %d months\n",
			cli.ShortID(saved.ID), saved.Name, cli.FormatMoney(saved.Principal),
			cli.FormatRate(saved.AnnualRatePercent), saved.Installments)
		return nil
	})
}

func runDebtList(_ *cobra.Command, _ []string) error {
	return withStore(func(st *store.Store) error {
		debts, err := st.ListDebts()
		if err != nil {
			return err
		}
		if flagDebtFilter != "" {
			debts = pipeline.FilterDebts(debts, flagDebtFilter)
		}
		if len(debts) == 0 {
			fmt.Println("\n  No debts found.")
			return nil
		}

		total := decimal.Zero
		rows := make([][]string, 0, len(debts)+2)
		for _, d := range debts {
			total = total.Add(d.Principal)
			rows = append(rows, []string{
				cli.ShortID(d.ID),
				d.Name,
				cli.FormatMoney(d.Principal),
				cli.FormatRate(d.AnnualRatePercent),
				strconv.Itoa(d.Installments),
				cli.FormatMoney(minimumPayment(d)),
			})
		}
		rows = append(rows, []string{"---"}, []string{"", "Total", cli.FormatMoney(total)})

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:     "Debts",
			Headers:   []string{"ID", "Name", "Principal", "Rate", "Installments", "Minimum"},
			Rows:      rows,
			LeftAlign: []bool{true, true},
		}))
		return nil
	})
}

// minimumPayment is the fixed monthly minimum the simulator charges a debt.
func minimumPayment(d model.Debt) decimal.Decimal {
	if !d.Active() {
		return decimal.Zero
	}
	return d.Principal.Div(decimal.NewFromInt(int64(d.Installments)))
}

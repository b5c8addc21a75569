package cmd

import (
	"fmt"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/entry"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/store"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var incomeCmd = &cobra.Command{
	Use:     "income",
	Aliases: []string{"incomes"},
	Short:   "Manage monthly income sources",
}

var incomeAddCmd = &cobra.Command{
	Use:     "add <source> <amount>",
	Short:   "Add a monthly income source",
	Example: "  snowball income add Salary 2500",
	Args:    cobra.ExactArgs(2),
	RunE:    runIncomeAdd,
}

var incomeListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List income sources",
	Args:    cobra.NoArgs,
	RunE:    runIncomeList,
}

var incomeRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove an income source by ID or ID prefix",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return removeRecord(model.KindIncome, args[0])
	},
}

func init() {
	incomeCmd.AddCommand(incomeAddCmd, incomeListCmd, incomeRmCmd)
	rootCmd.AddCommand(incomeCmd)
}

func runIncomeAdd(_ *cobra.Command, args []string) error {
	in, err := entry.ParseIncome(args[0], args[1])
	if err != nil {
		return err
	}
	return withStore(func(st *store.Store) error {
		saved, err := st.AddIncome(in)
		if err != nil {
			return err
		}
		fmt.Printf("  Added income %s  %s  %s\n", cli.ShortID(saved.ID), saved.Source, cli.FormatMoney(saved.Amount))
		return nil
	})
}

func runIncomeList(_ *cobra.Command, _ []string) error {
	return withStore(func(st *store.Store) error {
		incomes, err := st.ListIncomes()
		if err != nil {
			return err
		}
		if len(incomes) == 0 {
			fmt.Println("\n  No income sources yet. Add one with `snowball income add`.")
			return nil
		}

		total := decimal.Zero
		rows := make([][]string, 0, len(incomes)+2)
		for _, in := range incomes {
			total = total.Add(in.Amount)
			rows = append(rows, []string{cli.ShortID(in.ID), in.Source, cli.FormatMoney(in.Amount)})
		}
		rows = append(rows, []string{"---"}, []string{"", "Total", cli.FormatMoney(total)})

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:     "Income",
			Headers:   []string{"ID", "Source", "Monthly"},
			Rows:      rows,
			LeftAlign: []bool{true, true, false},
		}))
		return nil
	})
}

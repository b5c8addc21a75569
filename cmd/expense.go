package cmd

import (
	"fmt"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/entry"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/pipeline"
	"github.com/theirongolddev/snowball/internal/store"

	"github.com/spf13/cobra"
)

var flagExpenseByCategory bool

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"expenses"},
	Short:   "Manage monthly expenses",
}

var expenseAddCmd = &cobra.Command{
	Use:     "add <category> <amount>",
	Short:   "Add a monthly expense",
	Example: "  snowball expense add Rent 900",
	Args:    cobra.ExactArgs(2),
	RunE:    runExpenseAdd,
}

var expenseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List expenses",
	Args:    cobra.NoArgs,
	RunE:    runExpenseList,
}

var expenseRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Remove an expense by ID or ID prefix",
	Args:    cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return removeRecord(model.KindExpense, args[0])
	},
}

func init() {
	expenseListCmd.Flags().BoolVar(&flagExpenseByCategory, "by-category", false, "Group expenses by category")
	expenseCmd.AddCommand(expenseAddCmd, expenseListCmd, expenseRmCmd)
	rootCmd.AddCommand(expenseCmd)
}

func runExpenseAdd(_ *cobra.Command, args []string) error {
	ex, err := entry.ParseExpense(args[0], args[1])
	if err != nil {
		return err
	}
	return withStore(func(st *store.Store) error {
		saved, err := st.AddExpense(ex)
		if err != nil {
			return err
		}
		fmt.Printf("  Added expense %s  %s  %s\n", cli.ShortID(saved.ID), saved.Category, cli.FormatMoney(saved.Amount))
		return nil
	})
}

func runExpenseList(_ *cobra.Command, _ []string) error {
	return withStore(func(st *store.Store) error {
		expenses, err := st.ListExpenses()
		if err != nil {
			return err
		}
		if len(expenses) == 0 {
			fmt.Println("\n  No expenses yet. Add one with `snowball expense add`.")
			return nil
		}

		fmt.Println()
		if flagExpenseByCategory {
			fmt.Print(renderCategories(pipeline.AggregateExpenses(expenses)))
			return nil
		}

		summary := pipeline.Summarize(model.Ledger{Expenses: expenses})
		rows := make([][]string, 0, len(expenses)+2)
		for _, ex := range expenses {
			rows = append(rows, []string{cli.ShortID(ex.ID), ex.Category, cli.FormatMoney(ex.Amount)})
		}
		rows = append(rows, []string{"---"}, []string{"", "Total", cli.FormatMoney(summary.TotalExpenses)})

		fmt.Print(cli.RenderTable(cli.Table{
			Title:     "Expenses",
			Headers:   []string{"ID", "Category", "Monthly"},
			Rows:      rows,
			LeftAlign: []bool{true, true, false},
		}))
		return nil
	})
}

func renderCategories(cats []model.CategoryStats) string {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{
			c.Label,
			cli.FormatNumber(int64(c.Count)),
			cli.FormatMoney(c.Amount),
			cli.FormatPercent(c.SharePercent / 100),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   "Expenses by category",
		Headers: []string{"Category", "Entries", "Monthly", "Share"},
		Rows:    rows,
	})
}

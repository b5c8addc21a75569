package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/snowball/internal/entry"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/store"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagImportForce bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace every record with the contents of an export file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&flagImportForce, "force", "f", false, "Replace existing records without asking")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	//nolint:gosec // import path is chosen by the local user
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	l, err := readLedger(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	if err := entry.CheckLedger(l); err != nil {
		return err
	}

	return withStore(func(st *store.Store) error {
		current, err := st.LoadLedger()
		if err != nil {
			return err
		}
		if !current.Empty() && !flagImportForce {
			ok, err := confirmReplace(current)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("  Import cancelled.")
				return nil
			}
		}

		if err := st.ReplaceLedger(l); err != nil {
			return err
		}
		fmt.Printf("  Imported %s, %s, %s\n",
			plural(len(l.Incomes), "income"), plural(len(l.Expenses), "expense"), plural(len(l.Debts), "debt"))
		return nil
	})
}

func confirmReplace(current model.Ledger) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title("Replace the current ledger?").
		Description(fmt.Sprintf("It holds %s, %s and %s.",
			plural(len(current.Incomes), "income"),
			plural(len(current.Expenses), "expense"),
			plural(len(current.Debts), "debt"))).
		Affirmative("Replace").
		Negative("Keep").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/store"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write every record as JSON (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	var l model.Ledger
	err := withStore(func(st *store.Store) error {
		var err error
		l, err = st.LoadLedger()
		return err
	})
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return writeLedger(os.Stdout, l)
	}

	//nolint:gosec // export path is chosen by the local user
	f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := writeLedger(f, l); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Exported %s, %s, %s to %s\n",
			plural(len(l.Incomes), "income"), plural(len(l.Expenses), "expense"),
			plural(len(l.Debts), "debt"), args[0])
	}
	return nil
}

func writeLedger(w io.Writer, l model.Ledger) error {
	if l.Incomes == nil {
		l.Incomes = []model.Income{}
	}
	if l.Expenses == nil {
		l.Expenses = []model.Expense{}
	}
	if l.Debts == nil {
		l.Debts = []model.Debt{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}
	return nil
}

// readLedger decodes an export file. Unknown fields are rejected so a
// mistyped key does not silently drop data.
func readLedger(r io.Reader) (model.Ledger, error) {
	var l model.Ledger
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return l, fmt.Errorf("decoding ledger: %w", err)
	}
	return l, nil
}

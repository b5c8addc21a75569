// Package store provides the SQLite-backed ledger of income, expense and debt records.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when no record matches an ID.
	ErrNotFound = errors.New("record not found")
	// ErrAmbiguous is returned when an ID prefix matches more than one record.
	ErrAmbiguous = errors.New("id prefix matches more than one record")
)

// Store is the persisted record store. It is the only component that holds
// state across projections.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the ledger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddIncome appends an income record, assigning its ID and creation time.
func (s *Store) AddIncome(in model.Income) (model.Income, error) {
	in.ID = uuid.NewString()
	in.CreatedAt = s.now().UTC()
	err := s.inTx(func(tx *sql.Tx) error {
		return insertIncome(tx, in)
	})
	if err != nil {
		return model.Income{}, fmt.Errorf("adding income: %w", err)
	}
	return in, nil
}

// AddExpense appends an expense record, assigning its ID and creation time.
func (s *Store) AddExpense(ex model.Expense) (model.Expense, error) {
	ex.ID = uuid.NewString()
	ex.CreatedAt = s.now().UTC()
	err := s.inTx(func(tx *sql.Tx) error {
		return insertExpense(tx, ex)
	})
	if err != nil {
		return model.Expense{}, fmt.Errorf("adding expense: %w", err)
	}
	return ex, nil
}

// AddDebt appends a debt record, assigning its ID and creation time.
func (s *Store) AddDebt(d model.Debt) (model.Debt, error) {
	d.ID = uuid.NewString()
	d.CreatedAt = s.now().UTC()
	err := s.inTx(func(tx *sql.Tx) error {
		return insertDebt(tx, d)
	})
	if err != nil {
		return model.Debt{}, fmt.Errorf("adding debt: %w", err)
	}
	return d, nil
}

// ListIncomes returns all incomes in insertion order.
func (s *Store) ListIncomes() ([]model.Income, error) {
	rows, err := s.db.Query("SELECT id, source, amount, created_at FROM incomes ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Income
	for rows.Next() {
		var in model.Income
		var amount, created string
		if err := rows.Scan(&in.ID, &in.Source, &amount, &created); err != nil {
			return nil, err
		}
		if in.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("income %s amount: %w", in.ID, err)
		}
		in.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, in)
	}
	return out, rows.Err()
}

// ListExpenses returns all expenses in insertion order.
func (s *Store) ListExpenses() ([]model.Expense, error) {
	rows, err := s.db.Query("SELECT id, category, amount, created_at FROM expenses ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Expense
	for rows.Next() {
		var ex model.Expense
		var amount, created string
		if err := rows.Scan(&ex.ID, &ex.Category, &amount, &created); err != nil {
			return nil, err
		}
		if ex.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("expense %s amount: %w", ex.ID, err)
		}
		ex.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, ex)
	}
	return out, rows.Err()
}

// ListDebts returns all debts in insertion order.
func (s *Store) ListDebts() ([]model.Debt, error) {
	rows, err := s.db.Query(`SELECT id, name, principal, annual_rate, installments, created_at
		FROM debts ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Debt
	for rows.Next() {
		var d model.Debt
		var principal, rate, created string
		if err := rows.Scan(&d.ID, &d.Name, &principal, &rate, &d.Installments, &created); err != nil {
			return nil, err
		}
		if d.Principal, err = decimal.NewFromString(principal); err != nil {
			return nil, fmt.Errorf("debt %s principal: %w", d.ID, err)
		}
		if d.AnnualRatePercent, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("debt %s rate: %w", d.ID, err)
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, d)
	}
	return out, rows.Err()
}

// LoadLedger reads all three record lists.
func (s *Store) LoadLedger() (model.Ledger, error) {
	var l model.Ledger
	var err error
	if l.Incomes, err = s.ListIncomes(); err != nil {
		return l, fmt.Errorf("listing incomes: %w", err)
	}
	if l.Expenses, err = s.ListExpenses(); err != nil {
		return l, fmt.Errorf("listing expenses: %w", err)
	}
	if l.Debts, err = s.ListDebts(); err != nil {
		return l, fmt.Errorf("listing debts: %w", err)
	}
	return l, nil
}

// ReplaceLedger swaps every record for the given ledger in one transaction.
// Records without an ID or creation time get fresh ones.
func (s *Store) ReplaceLedger(l model.Ledger) error {
	now := s.now().UTC()
	err := s.inTx(func(tx *sql.Tx) error {
		for _, table := range []string{"incomes", "expenses", "debts"} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil { //nolint:gosec // fixed table names
				return err
			}
		}
		for _, in := range l.Incomes {
			fillIdentity(&in.ID, &in.CreatedAt, now)
			if err := insertIncome(tx, in); err != nil {
				return err
			}
		}
		for _, ex := range l.Expenses {
			fillIdentity(&ex.ID, &ex.CreatedAt, now)
			if err := insertExpense(tx, ex); err != nil {
				return err
			}
		}
		for _, d := range l.Debts {
			fillIdentity(&d.ID, &d.CreatedAt, now)
			if err := insertDebt(tx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

// Delete removes the record of the given kind whose ID equals or starts with idPrefix.
func (s *Store) Delete(kind model.Kind, idPrefix string) (string, error) {
	table, err := tableFor(kind)
	if err != nil {
		return "", err
	}
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return "", ErrNotFound
	}

	var deleted string
	err = s.inTx(func(tx *sql.Tx) error {
		//nolint:gosec // table comes from tableFor
		rows, err := tx.Query("SELECT id FROM "+table+" WHERE id = ? OR id LIKE ? ESCAPE '\\'",
			idPrefix, escapeLike(idPrefix)+"%")
		if err != nil {
			return err
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		_ = rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		switch {
		case len(ids) == 0:
			return ErrNotFound
		case len(ids) > 1 && !contains(ids, idPrefix):
			return ErrAmbiguous
		case len(ids) > 1:
			ids = []string{idPrefix}
		}

		if _, err := tx.Exec("DELETE FROM "+table+" WHERE id = ?", ids[0]); err != nil { //nolint:gosec // see above
			return err
		}
		deleted = ids[0]
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("deleting %s %q: %w", kind, idPrefix, err)
	}
	return deleted, nil
}

// Revision returns a counter that increases on every write.
func (s *Store) Revision() (int64, error) {
	var rev int64
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'revision'").Scan(&rev)
	return rev, err
}

// inTx runs fn in a transaction and bumps the revision before committing.
func (s *Store) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE meta SET value = value + 1 WHERE key = 'revision'"); err != nil {
		return err
	}
	return tx.Commit()
}

func insertIncome(x execer, in model.Income) error {
	_, err := x.Exec(`INSERT INTO incomes (id, source, amount, created_at) VALUES (?, ?, ?, ?)`,
		in.ID, in.Source, in.Amount.String(), in.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func insertExpense(x execer, ex model.Expense) error {
	_, err := x.Exec(`INSERT INTO expenses (id, category, amount, created_at) VALUES (?, ?, ?, ?)`,
		ex.ID, ex.Category, ex.Amount.String(), ex.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func insertDebt(x execer, d model.Debt) error {
	_, err := x.Exec(`INSERT INTO debts
		(id, name, principal, annual_rate, installments, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Principal.String(), d.AnnualRatePercent.String(), d.Installments,
		d.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func fillIdentity(id *string, created *time.Time, now time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if created.IsZero() {
		*created = now
	}
}

func tableFor(kind model.Kind) (string, error) {
	switch kind {
	case model.KindIncome:
		return "incomes", nil
	case model.KindExpense:
		return "expenses", nil
	case model.KindDebt:
		return "debts", nil
	}
	return "", fmt.Errorf("unknown record kind %q", kind)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Package entry turns raw text fields from forms and command arguments into
// validated ledger records.
package entry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/snowball/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid entry")

var validate = validator.New(validator.WithRequiredStructEnabled())

// incomeForm and friends mirror the raw fields a user types in.
type incomeForm struct {
	Source string `validate:"required,max=80"`
	Amount string `validate:"required,numeric"`
}

type expenseForm struct {
	Category string `validate:"required,max=80"`
	Amount   string `validate:"required,numeric"`
}

type debtForm struct {
	Name         string `validate:"required,max=80"`
	Principal    string `validate:"required,numeric"`
	Rate         string `validate:"required,numeric"`
	Installments string `validate:"required,number"`
}

// ParseIncome validates an income's source label and amount.
func ParseIncome(source, amount string) (model.Income, error) {
	f := incomeForm{Source: strings.TrimSpace(source), Amount: normalizeNumber(amount)}
	if err := check(f); err != nil {
		return model.Income{}, err
	}
	amt, err := positive("amount", f.Amount)
	if err != nil {
		return model.Income{}, err
	}
	return model.Income{Source: f.Source, Amount: amt}, nil
}

// ParseExpense validates an expense's category label and amount.
func ParseExpense(category, amount string) (model.Expense, error) {
	f := expenseForm{Category: strings.TrimSpace(category), Amount: normalizeNumber(amount)}
	if err := check(f); err != nil {
		return model.Expense{}, err
	}
	amt, err := positive("amount", f.Amount)
	if err != nil {
		return model.Expense{}, err
	}
	return model.Expense{Category: f.Category, Amount: amt}, nil
}

// ParseDebt validates a debt's name, principal, annual rate percent and
// installment count.
func ParseDebt(name, principal, rate, installments string) (model.Debt, error) {
	f := debtForm{
		Name:         strings.TrimSpace(name),
		Principal:    normalizeNumber(principal),
		Rate:         strings.TrimSuffix(normalizeNumber(rate), "%"),
		Installments: strings.TrimSpace(installments),
	}
	if err := check(f); err != nil {
		return model.Debt{}, err
	}

	p, err := positive("principal", f.Principal)
	if err != nil {
		return model.Debt{}, err
	}
	r, err := decimal.NewFromString(f.Rate)
	if err != nil || r.IsNegative() {
		return model.Debt{}, fmt.Errorf("%w: rate must be zero or more, got %q", ErrInvalid, f.Rate)
	}
	n, err := strconv.Atoi(f.Installments)
	if err != nil || n <= 0 {
		return model.Debt{}, fmt.Errorf("%w: installments must be a whole number above zero, got %q", ErrInvalid, f.Installments)
	}

	return model.Debt{
		Name:              f.Name,
		Principal:         p,
		AnnualRatePercent: r,
		Installments:      n,
	}, nil
}

// Single-field rules, matching the struct tags on the forms above.
const (
	labelRule  = "required,max=80"
	amountRule = "required,numeric"
	countRule  = "required,number"
)

// ParseAmount parses a positive money amount such as "1,250" or "$80.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = normalizeNumber(s)
	if err := checkVar("amount", s, amountRule); err != nil {
		return decimal.Zero, err
	}
	return positive("amount", s)
}

// ValidateAmount reports whether s parses as a positive amount. It suits
// form field validators and accepts exactly what the Parse functions accept.
func ValidateAmount(s string) error {
	_, err := ParseAmount(s)
	return err
}

// ValidateLabel returns a validator for a source, category or debt name.
func ValidateLabel(field string) func(string) error {
	return func(s string) error {
		return checkVar(field, strings.TrimSpace(s), labelRule)
	}
}

// ValidateRate reports whether s parses as a non-negative percentage.
func ValidateRate(s string) error {
	s = strings.TrimSuffix(normalizeNumber(s), "%")
	if err := checkVar("rate", s, amountRule); err != nil {
		return err
	}
	r, err := decimal.NewFromString(s)
	if err != nil || r.IsNegative() {
		return fmt.Errorf("%w: rate must be zero or more", ErrInvalid)
	}
	return nil
}

// ValidateInstallments reports whether s parses as a positive whole number.
func ValidateInstallments(s string) error {
	s = strings.TrimSpace(s)
	if err := checkVar("installments", s, countRule); err != nil {
		return err
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("%w: installments must be a whole number above zero", ErrInvalid)
	}
	return nil
}

// normalizeNumber drops surrounding space, a leading currency sign and
// thousands separators: " $1,250.00 " -> "1250.00".
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	return strings.ReplaceAll(s, ",", "")
}

func positive(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", ErrInvalid, field, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be above zero, got %s", ErrInvalid, field, d)
	}
	return d, nil
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return describe(strings.ToLower(verrs[0].Field()), verrs[0])
}

// checkVar runs one struct-tag rule against a lone value.
func checkVar(field, value, rule string) error {
	err := validate.Var(value, rule)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, field, err)
	}
	return describe(field, verrs[0])
}

func describe(field string, fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	case "number", "numeric":
		return fmt.Errorf("%w: %s %q is not a number", ErrInvalid, field, fe.Value())
	case "max":
		return fmt.Errorf("%w: %s is longer than %s characters", ErrInvalid, field, fe.Param())
	}
	return fmt.Errorf("%w: %s failed %s", ErrInvalid, field, fe.Tag())
}

// CheckLedger applies the entry rules to records decoded from an export
// file. The error names the list and 1-based position of the first bad record.
func CheckLedger(l model.Ledger) error {
	for i, in := range l.Incomes {
		if strings.TrimSpace(in.Source) == "" {
			return fmt.Errorf("%w: income %d: source is required", ErrInvalid, i+1)
		}
		if !in.Amount.IsPositive() {
			return fmt.Errorf("%w: income %d: amount must be above zero", ErrInvalid, i+1)
		}
	}
	for i, ex := range l.Expenses {
		if strings.TrimSpace(ex.Category) == "" {
			return fmt.Errorf("%w: expense %d: category is required", ErrInvalid, i+1)
		}
		if !ex.Amount.IsPositive() {
			return fmt.Errorf("%w: expense %d: amount must be above zero", ErrInvalid, i+1)
		}
	}
	for i, d := range l.Debts {
		switch {
		case strings.TrimSpace(d.Name) == "":
			return fmt.Errorf("%w: debt %d: name is required", ErrInvalid, i+1)
		case !d.Principal.IsPositive():
			return fmt.Errorf("%w: debt %d: principal must be above zero", ErrInvalid, i+1)
		case d.AnnualRatePercent.IsNegative():
			return fmt.Errorf("%w: debt %d: rate must be zero or more", ErrInvalid, i+1)
		case d.Installments <= 0:
			return fmt.Errorf("%w: debt %d: installments must be above zero", ErrInvalid, i+1)
		}
	}
	return nil
}

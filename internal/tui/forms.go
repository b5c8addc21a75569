package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/config"
	"github.com/theirongolddev/snowball/internal/entry"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/pipeline"
	"github.com/theirongolddev/snowball/internal/snowball"
	"github.com/theirongolddev/snowball/internal/tui/components"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// entryValues backs the add form. It lives on the heap so the form keeps
// writing to the same values as App is copied through Update.
type entryValues struct {
	kind         string
	label        string
	amount       string
	principal    string
	rate         string
	installments string
}

type setupValues struct {
	currency  string
	theme     string
	maxMonths string
}

// NewEntryForm builds the add-entry form: a kind picker followed by the
// fields for that kind.
func NewEntryForm(v *entryValues) *huh.Form {
	notKind := func(k model.Kind) func() bool {
		return func() bool { return v.kind != string(k) }
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What are you adding?").
				Options(
					huh.NewOption("Income", string(model.KindIncome)),
					huh.NewOption("Expense", string(model.KindExpense)),
					huh.NewOption("Debt", string(model.KindDebt)),
				).
				Value(&v.kind),
		),
		huh.NewGroup(
			huh.NewInput().Title("Source").Placeholder("Salary").Value(&v.label).Validate(entry.ValidateLabel("source")),
			huh.NewInput().Title("Monthly amount").Placeholder("2500").Value(&v.amount).Validate(entry.ValidateAmount),
		).WithHideFunc(notKind(model.KindIncome)),
		huh.NewGroup(
			huh.NewInput().Title("Category").Placeholder("Rent").Value(&v.label).Validate(entry.ValidateLabel("category")),
			huh.NewInput().Title("Monthly amount").Placeholder("900").Value(&v.amount).Validate(entry.ValidateAmount),
		).WithHideFunc(notKind(model.KindExpense)),
		huh.NewGroup(
			huh.NewInput().Title("Name").Placeholder("Credit card").Value(&v.label).Validate(entry.ValidateLabel("name")),
			huh.NewInput().Title("Principal").Placeholder("1200").Value(&v.principal).Validate(entry.ValidateAmount),
			huh.NewInput().Title("Annual interest rate (%)").Placeholder("18").Value(&v.rate).Validate(entry.ValidateRate),
			huh.NewInput().Title("Installments").Placeholder("12").Value(&v.installments).Validate(entry.ValidateInstallments),
		).WithHideFunc(notKind(model.KindDebt)),
	).WithShowHelp(true)
}

// NewSetupForm builds the settings form shared by first run and `snowball setup`.
func NewSetupForm(v *setupValues) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themes = append(themes, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Currency symbol").
				Description("Shown in front of every amount.").
				CharLimit(4).
				Value(&v.currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.theme),
			huh.NewInput().
				Title("Simulation month limit").
				Description("Projections stop here when debts outgrow the budget.").
				Value(&v.maxMonths).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 1 || n > 1200 {
						return errors.New("enter a whole number between 1 and 1200")
					}
					return nil
				}),
		),
	).WithShowHelp(true)
}

// RunSetup runs the settings form outside the dashboard and copies the
// answers onto cfg. The caller saves it.
func RunSetup(cfg *config.Config) error {
	v := newSetupValues(*cfg)
	if err := NewSetupForm(v).Run(); err != nil {
		return err
	}
	v.apply(cfg)
	return nil
}

func newSetupValues(cfg config.Config) *setupValues {
	return &setupValues{
		currency:  cfg.General.Currency,
		theme:     cfg.Appearance.Theme,
		maxMonths: strconv.Itoa(cfg.Simulation.MaxMonths),
	}
}

// apply copies form values onto cfg.
func (v *setupValues) apply(cfg *config.Config) {
	if c := strings.TrimSpace(v.currency); c != "" {
		cfg.General.Currency = c
	}
	cfg.Appearance.Theme = v.theme
	if n, err := strconv.Atoi(strings.TrimSpace(v.maxMonths)); err == nil && n > 0 {
		cfg.Simulation.MaxMonths = n
	}
}

func (a App) openAddForm() (tea.Model, tea.Cmd) {
	a.entryVals = &entryValues{kind: string(model.KindIncome)}
	a.form = NewEntryForm(a.entryVals)
	a.formFor = formAdd
	return a.startForm()
}

func (a App) openSetupForm() (tea.Model, tea.Cmd) {
	a.setupVals = newSetupValues(a.cfg)
	a.form = NewSetupForm(a.setupVals)
	a.formFor = formSetup
	return a.startForm()
}

func (a App) openDeleteForm(row ledgerRow) (tea.Model, tea.Cmd) {
	a.deleteRow = row
	a.confirmed = new(bool)
	a.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s %q?", row.Kind, row.Label)).
				Description(row.Amount).
				Affirmative("Delete").
				Negative("Keep").
				Value(a.confirmed),
		),
	)
	a.formFor = formDelete
	return a.startForm()
}

func (a App) startForm() (tea.Model, tea.Cmd) {
	if a.width > 0 {
		a.form = a.form.WithWidth(min(a.width, 72)).WithHeight(a.height)
	}
	return a, a.form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		a.closeForm()
		a.setStatus("cancelled", components.StatusInfo)
		return a, nil
	}

	f, cmd := a.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		a.form = form
	}

	switch a.form.State {
	case huh.StateCompleted:
		purpose := a.formFor
		a.closeForm()
		switch purpose {
		case formAdd:
			return a, saveEntryCmd(a.ledger, *a.entryVals)
		case formDelete:
			if *a.confirmed {
				return a, deleteCmd(a.ledger, a.deleteRow)
			}
			a.setStatus("kept", components.StatusInfo)
		case formSetup:
			return a.finishSetup()
		}
		return a, nil
	case huh.StateAborted:
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

func (a *App) closeForm() {
	a.form = nil
	if a.formFor == formSetup {
		a.needSetup = false
	}
	a.formFor = formNone
}

func (a App) finishSetup() (tea.Model, tea.Cmd) {
	a.setupVals.apply(&a.cfg)
	theme.SetActive(a.cfg.Appearance.Theme)
	cli.CurrencySymbol = a.cfg.General.Currency
	a.projector = pipeline.NewProjector(a.ledger, snowball.Options{MaxMonths: a.cfg.Simulation.MaxMonths})

	if err := config.Save(a.cfg); err != nil {
		a.setStatus("settings apply to this session only: "+err.Error(), components.StatusError)
	} else {
		a.setStatus("saved "+config.Path(), components.StatusOK)
	}
	a.refreshing = true
	return a, refreshCmd(a.projector)
}

// saveEntryCmd validates the form values and writes the record.
func saveEntryCmd(l Ledger, v entryValues) tea.Cmd {
	return func() tea.Msg {
		switch model.Kind(v.kind) {
		case model.KindIncome:
			in, err := entry.ParseIncome(v.label, v.amount)
			if err != nil {
				return SavedMsg{Err: err}
			}
			if in, err = l.AddIncome(in); err != nil {
				return SavedMsg{Err: err}
			}
			return SavedMsg{Text: "added income " + in.Source}
		case model.KindExpense:
			ex, err := entry.ParseExpense(v.label, v.amount)
			if err != nil {
				return SavedMsg{Err: err}
			}
			if ex, err = l.AddExpense(ex); err != nil {
				return SavedMsg{Err: err}
			}
			return SavedMsg{Text: "added expense " + ex.Category}
		case model.KindDebt:
			d, err := entry.ParseDebt(v.label, v.principal, v.rate, v.installments)
			if err != nil {
				return SavedMsg{Err: err}
			}
			if d, err = l.AddDebt(d); err != nil {
				return SavedMsg{Err: err}
			}
			return SavedMsg{Text: "added debt " + d.Name}
		}
		return SavedMsg{Err: fmt.Errorf("unknown kind %q", v.kind)}
	}
}

func deleteCmd(l Ledger, row ledgerRow) tea.Cmd {
	return func() tea.Msg {
		id, err := l.Delete(row.Kind, row.ID)
		if err != nil {
			return SavedMsg{Err: err}
		}
		return SavedMsg{Text: fmt.Sprintf("deleted %s %s", row.Kind, cli.ShortID(id))}
	}
}

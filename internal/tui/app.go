// Package tui provides the interactive Bubble Tea dashboard for snowball.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/config"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/pipeline"
	"github.com/theirongolddev/snowball/internal/snowball"
	"github.com/theirongolddev/snowball/internal/tui/components"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Ledger is the store surface the dashboard needs. *store.Store satisfies it.
type Ledger interface {
	pipeline.RevisionedSource
	AddIncome(model.Income) (model.Income, error)
	AddExpense(model.Expense) (model.Expense, error)
	AddDebt(model.Debt) (model.Debt, error)
	Delete(kind model.Kind, idPrefix string) (string, error)
}

// ResultMsg carries a fresh projection, or the error that prevented one.
type ResultMsg struct {
	Result   pipeline.Result
	Changed  bool
	Err      error
	LoadTime time.Duration
}

// SavedMsg reports the outcome of an add or delete.
type SavedMsg struct {
	Text string
	Err  error
}

type tickMsg struct{}

type formPurpose int

const (
	formNone formPurpose = iota
	formSetup
	formAdd
	formDelete
)

// App is the root Bubble Tea model.
type App struct {
	ledger    Ledger
	cfg       config.Config
	projector *pipeline.Projector

	// Data
	res      pipeline.Result
	loaded   bool
	loadTime time.Duration
	rows     []ledgerRow

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    string
	statusLvl components.StatusLevel

	// Per-tab state
	plan    planState
	debts   debtsState
	ledgerC int // ledger cursor

	// Active huh form, if any
	form        *huh.Form
	formFor     formPurpose
	entryVals   *entryValues
	setupVals   *setupValues
	deleteRow   ledgerRow
	confirmed   *bool
	needSetup   bool
	pollEvery   time.Duration
	refreshing  bool
	spinner     spinner.Model
	lastRefresh time.Time
}

const (
	minTerminalWidth = 80
	compactWidth     = 110
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates a new TUI app model over an open ledger.
func NewApp(ledger Ledger, cfg config.Config, needSetup bool) App {
	theme.SetActive(cfg.Appearance.Theme)
	cli.CurrencySymbol = cfg.General.Currency

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		ledger:    ledger,
		cfg:       cfg,
		projector: pipeline.NewProjector(ledger, snowball.Options{MaxMonths: cfg.Simulation.MaxMonths}),
		needSetup: needSetup,
		pollEvery: 2 * time.Second,
		spinner:   sp,
		debts:     debtsState{month: 1},
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		refreshCmd(a.projector),
		a.spinner.Tick,
		tickCmd(a.pollEvery),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, 72)).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.updateKeys(msg)

	case ResultMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		if msg.Err != nil {
			a.setStatus("load failed: "+msg.Err.Error(), components.StatusError)
			if !a.loaded {
				a.loaded = true
			}
			return a, nil
		}
		first := !a.loaded
		a.loaded = true
		if msg.Changed || first {
			a.res = msg.Result
			a.loadTime = msg.LoadTime
			a.recompute()
		}
		if first && a.needSetup {
			return a.openSetupForm()
		}
		return a, nil

	case SavedMsg:
		if msg.Err != nil {
			a.setStatus(msg.Err.Error(), components.StatusError)
			return a, nil
		}
		a.setStatus(msg.Text, components.StatusOK)
		a.refreshing = true
		return a, refreshCmd(a.projector)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(a.pollEvery)}
		if a.loaded && !a.refreshing && a.form == nil {
			a.refreshing = true
			cmds = append(cmds, refreshCmd(a.projector))
		}
		return a, tea.Batch(cmds...)
	}

	// Cursor blinks and other internal messages go to the open form.
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "a":
		return a.openAddForm()
	case "r":
		a.projector.Invalidate()
		a.refreshing = true
		return a, refreshCmd(a.projector)
	case "S":
		return a.openSetupForm()
	}

	// Tab-specific keys win over tab switching.
	var handled bool
	switch a.activeTab {
	case tabPlan:
		a, handled = a.updatePlanKeys(key)
	case tabDebts:
		a, handled = a.updateDebtsKeys(key)
	case tabLedger:
		var cmd tea.Cmd
		a, cmd, handled = a.updateLedgerKeys(key)
		if handled {
			return a, cmd
		}
	}
	if handled {
		return a, nil
	}

	switch key {
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	case "1", "2", "3", "4":
		a.activeTab = int(key[0] - '1')
	default:
		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		switch a.activeTab {
		case tabPlan:
			a, _ = a.updatePlanKeys("up")
		case tabLedger:
			a, _, _ = a.updateLedgerKeys("up")
		}
	case tea.MouseButtonWheelDown:
		switch a.activeTab {
		case tabPlan:
			a, _ = a.updatePlanKeys("down")
		case tabLedger:
			a, _, _ = a.updateLedgerKeys("down")
		}
	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// recompute derives per-tab state from the latest result.
func (a *App) recompute() {
	a.rows = buildLedgerRows(a.res.Ledger)
	a.ledgerC = clampIndex(a.ledgerC, len(a.rows))
	a.plan.cursor = clampIndex(a.plan.cursor, len(a.res.Projection.Months))
	a.debts.month = max(1, min(a.debts.month, max(1, len(a.res.Projection.Months))))
	a.debts.cursor = clampIndex(a.debts.cursor, len(a.res.Ledger.Debts))
}

func (a *App) setStatus(text string, lvl components.StatusLevel) {
	a.status = text
	a.statusLvl = lvl
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  snowball needs at least %d columns.\n", a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	body := logo.Render("◈ snowball") + sub.Render(" · debt payoff planner") + "\n\n" +
		a.spinner.View() + sub.Render(" Loading ledger...")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active
	title := map[formPurpose]string{
		formSetup:  "◈ Setup",
		formAdd:    "◈ Add entry",
		formDelete: "◈ Delete entry",
	}[a.formFor]

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)
	head := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		card.Render(head.Render(title)+"\n\n"+a.form.View()))
}

func (a App) viewHelp() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	sections := []struct {
		name     string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o p b l", "Jump to tab"},
			{"1-4", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move cursor"},
			{"g G", "First / Last row"},
		}},
		{"Actions", [][2]string{
			{"a", "Add income, expense or debt"},
			{"d", "Delete selected entry (Ledger)"},
			{"Enter", "Toggle month detail (Plan)"},
			{"+ -", "Step month (Debts)"},
			{"r", "Reload ledger"},
			{"S", "Setup"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.name))
		b.WriteString("\n")
		for _, kb := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", kb[0])), descStyle.Render(kb[1]))
		}
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.hints(), a.statusText(), a.statusLvl)

	contentH := max(minContentHeight, a.height-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabPlan:
		content = a.renderPlanTab(cw, contentH)
	case tabDebts:
		content = a.renderDebtsTab(cw)
	case tabLedger:
		content = a.renderLedgerTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) hints() string {
	base := "[?]help  [a]dd  [q]uit"
	switch a.activeTab {
	case tabPlan:
		return base + "  [enter]detail"
	case tabDebts:
		return base + "  [+/-]month"
	case tabLedger:
		return base + "  [d]elete"
	}
	return base
}

func (a App) statusText() string {
	if a.status != "" {
		return a.status
	}
	return fmt.Sprintf("rev %d · %s", a.projector.Revision(), a.loadTime.Round(time.Millisecond))
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// refreshCmd asks the projector for a result. It recomputes only when the
// store revision moved.
func refreshCmd(p *pipeline.Projector) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		res, changed, err := p.Refresh()
		return ResultMsg{Result: res, Changed: changed, Err: err, LoadTime: time.Since(start)}
	}
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow RenderTabBar: tabs separated by one column.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

// ─── Helpers ────────────────────────────────────────────────────

func clampIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	return max(0, min(i, n-1))
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

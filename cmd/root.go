package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/config"
	"github.com/theirongolddev/snowball/internal/logging"
	"github.com/theirongolddev/snowball/internal/pipeline"
	"github.com/theirongolddev/snowball/internal/snowball"
	"github.com/theirongolddev/snowball/internal/store"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagDB       string
	flagQuiet    bool
	flagLogLevel string
)

var (
	cfg = config.DefaultConfig()
	log = logrus.StandardLogger()
)

var rootCmd = &cobra.Command{
	Use:               "snowball",
	Short:             "Debt snowball planner",
	Long:              "Track monthly income, expenses and debts, and project when the snowball pays them off.",
	PersistentPreRunE: loadSettings,
	RunE:              runSummary,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Ledger database path (default from config or $SNOWBALL_DB)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadSettings reads the config file and applies it to the shared
// formatters before any command runs.
func loadSettings(_ *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	cfg = c

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	log = logging.New(level, cfg.Log.Format)

	if cfg.General.Currency != "" {
		cli.CurrencySymbol = cfg.General.Currency
	}
	theme.SetActive(cfg.Appearance.Theme)
	return nil
}

func dbPath() string {
	if flagDB != "" {
		return flagDB
	}
	return config.GetDBPath(cfg)
}

func simOptions() snowball.Options {
	return snowball.Options{MaxMonths: cfg.Simulation.MaxMonths}
}

func openStore() (*store.Store, error) {
	path := dbPath()
	log.WithField("path", path).Debug("opening ledger")
	return store.Open(path)
}

// withStore opens the ledger for the duration of fn.
func withStore(fn func(st *store.Store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return fn(st)
}

// loadProjection is the shared data path for the report commands.
func loadProjection() (pipeline.Result, error) {
	var res pipeline.Result
	err := withStore(func(st *store.Store) error {
		start := time.Now()
		r, err := pipeline.LoadAndProject(st, simOptions())
		if err != nil {
			return err
		}
		res = r
		log.WithFields(logrus.Fields{
			"months":  len(r.Projection.Months),
			"status":  r.Projection.Status,
			"elapsed": time.Since(start).String(),
		}).Debug("projection ready")
		return nil
	})
	if err != nil {
		return res, err
	}

	if !flagQuiet {
		s := res.Summary
		fmt.Fprintf(os.Stderr, "  Loaded %d incomes, %d expenses, %d debts\n",
			s.IncomeCount, s.ExpenseCount, s.DebtCount)
	}
	return res, nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/config"
	"github.com/theirongolddev/snowball/internal/daemon"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonRunFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background projection daemon with HTTP/SSE endpoints",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	pf.DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	pf.StringVar(&flagDaemonRunFile, "run-file", filepath.Join(config.DataDir(), "snowballd.json"), "File recording the running daemon")
	pf.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(config.DataDir(), "snowballd.log"), "Log file for --detach")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Events kept in memory (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run the daemon in the background")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: set on the detached process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runFile() daemon.RunFile {
	return daemon.RunFile{Path: flagDaemonRunFile}
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("--detach and --child cannot be combined")
	}
	applyDaemonDefaults()

	if info, err := runFile().Live(); err == nil {
		return fmt.Errorf("%w (pid %d at http://%s)", daemon.ErrRunning, info.PID, info.Addr)
	} else if !errors.Is(err, daemon.ErrNotRunning) {
		return err
	}

	if flagDaemonDetach {
		return startDetached()
	}
	return serveDaemon()
}

// startDetached re-runs this command as a background child whose output
// goes to the log file. The child claims the run file itself.
func startDetached() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("finding executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	//nolint:gosec // log path is chosen by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, childArgs(os.Args[1:])...) //nolint:gosec // re-runs our own binary
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("starting daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  API: http://%s/v1/status\n", flagDaemonAddr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

// childArgs turns the parent's arguments into the detached child's.
func childArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return append(out, "--child")
}

func serveDaemon() error {
	rf := runFile()
	info := daemon.RunInfo{
		PID:       os.Getpid(),
		Addr:      flagDaemonAddr,
		DBPath:    dbPath(),
		StartedAt: time.Now(),
	}
	if err := rf.Claim(info); err != nil {
		return err
	}
	defer func() { _ = rf.Release() }()

	svc := daemon.New(daemon.Config{
		DBPath:       info.DBPath,
		MaxMonths:    cfg.Simulation.MaxMonths,
		Interval:     flagDaemonInterval,
		Addr:         flagDaemonAddr,
		EventsBuffer: flagDaemonEventsBuffer,
		Logger:       log,
	})

	fmt.Printf("  snowball daemon listening on http://%s\n", flagDaemonAddr)
	fmt.Printf("  Polling %s every %s\n", info.DBPath, flagDaemonInterval)
	fmt.Println("  Stop with: snowball daemon stop")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	applyDaemonDefaults()
	info, err := runFile().Live()
	if errors.Is(err, daemon.ErrNotRunning) {
		fmt.Println("  Daemon: not running")
		return nil
	}
	if err != nil {
		return err
	}

	addr := info.Addr
	if addr == "" {
		addr = flagDaemonAddr
	}
	fmt.Printf("  Daemon PID: %d (up %s)\n", info.PID, time.Since(info.StartedAt).Round(time.Second))
	fmt.Printf("  Address: http://%s\n", addr)

	st, err := daemon.NewClient(addr).Status(context.Background())
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}

	if st.LastPollAt.IsZero() {
		fmt.Printf("  Last poll: pending\n")
	} else {
		fmt.Printf("  Last poll: %s\n", st.LastPollAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Poll count: %d\n", st.PollCount)
	fmt.Printf("  Ledger: %s (revision %d)\n", st.DBPath, st.Summary.Revision)
	fmt.Printf("  Records: %d incomes, %d expenses, %d debts\n",
		st.Summary.Incomes, st.Summary.Expenses, st.Summary.Debts)
	fmt.Printf("  Budget: %s/month\n", cli.FormatMoney(st.Summary.MonthlyBudget))
	fmt.Printf("  Debt: %s\n", cli.FormatMoney(st.Summary.TotalDebt))
	if st.Summary.DebtFreeBy != "" {
		fmt.Printf("  Debt-free by: %s (%s)\n", st.Summary.DebtFreeBy, cli.FormatMonths(st.Summary.MonthsToPayoff))
	} else if st.Summary.Status != "" {
		fmt.Printf("  Projection: %s\n", st.Summary.Status)
	}
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	info, err := runFile().Stop(ctx)
	if errors.Is(err, daemon.ErrNotRunning) {
		return errors.New("daemon is not running")
	}
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped daemon (pid %d)\n", info.PID)
	return nil
}

// applyDaemonDefaults fills unset flags from the [daemon] config section.
func applyDaemonDefaults() {
	if flagDaemonAddr == "" {
		flagDaemonAddr = cfg.Daemon.Addr
	}
	if flagDaemonInterval <= 0 {
		flagDaemonInterval = time.Duration(cfg.Daemon.IntervalSec) * time.Second
	}
	if flagDaemonEventsBuffer <= 0 {
		flagDaemonEventsBuffer = cfg.Daemon.EventsBuffer
	}
}

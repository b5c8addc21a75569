// Package cmd implements the snowball CLI commands.
package cmd

import (
	"fmt"

	"github.com/theirongolddev/snowball/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Ledger:       %s\n", dbPath())
	fmt.Printf("    Currency:     %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Simulation]")
	fmt.Printf("    Month limit:  %d\n", cfg.Simulation.MaxMonths)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:        %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:      %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:     %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Event buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:        %s\n", cfg.Log.Level)
	fmt.Printf("    Format:       %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  Run `snowball setup` to reconfigure.")
	return nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/snowball/internal/config"
	"github.com/theirongolddev/snowball/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	fmt.Println()
	fmt.Println("  Welcome to snowball!")
	fmt.Printf("  Records are kept in %s\n", dbPath())
	fmt.Println()

	if err := tui.RunSetup(&cfg); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `snowball setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

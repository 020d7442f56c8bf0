package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/kpsec/cmd/kpsec/commands"
	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile     string
		noColor        bool
		debug          bool
		nonInteractive bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "kpsec",
		Short: "Manage secrets in password-database vaults",
		Long: `kpsec reads and writes secrets in KDBX password databases, with
master keys resolved from the OS keychain, AWS Secrets Manager, another
vault, or an interactive prompt.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)

			// Update config with parsed values
			cfg.Path = configFile
			cfg.Logger = logger
			cfg.NonInteractive = nonInteractive
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "vaults.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt for master keys")

	// Add commands
	rootCmd.AddCommand(
		commands.NewInitCommand(cfg),
		commands.NewGetCommand(cfg),
		commands.NewSetCommand(cfg),
		commands.NewRmCommand(cfg),
		commands.NewListCommand(cfg),
		commands.NewValidateCommand(cfg),
		commands.NewVaultsCommand(cfg),
	)

	return rootCmd.Execute()
}

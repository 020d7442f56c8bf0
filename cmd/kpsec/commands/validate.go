package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/systmms/kpsec/internal/config"
)

func NewValidateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <vault>",
		Short: "Check that a vault is usable",
		Long: `Validate a vault's configuration, resolve its master key, and
confirm the key unlocks the database.

On the first run for a vault the database profile is registered and
validation reports success without opening the file; the first data
operation performs the real unlock.

Examples:
  kpsec validate personal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaultName := args[0]

			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}
			bag, err := rt.vaultParams(vaultName)
			if err != nil {
				return err
			}

			ok, err := rt.adapter.Validate(context.Background(), vaultName, bag)
			if err != nil {
				return err
			}
			if ok {
				cfg.Logger.Info("Vault %s is ready", vaultName)
			}
			return nil
		},
	}

	return cmd
}

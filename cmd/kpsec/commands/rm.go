package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/systmms/kpsec/internal/config"
)

func NewRmCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <vault> <name>",
		Short: "Delete a secret from a vault",
		Long: `Delete every entry stored under a title, copies in the recycle
bin included. Deletion is a purge, not a move to the bin.

Examples:
  kpsec rm personal old-api-token`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaultName, name := args[0], args[1]

			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}
			bag, err := rt.vaultParams(vaultName)
			if err != nil {
				return err
			}

			if err := rt.adapter.Delete(context.Background(), name, vaultName, bag); err != nil {
				return err
			}

			cfg.Logger.Info("Deleted %s from vault %s", name, vaultName)
			return nil
		},
	}

	return cmd
}

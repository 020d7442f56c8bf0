package commands

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/internal/engine/kdbx"
	kperrors "github.com/systmms/kpsec/internal/errors"
	"github.com/systmms/kpsec/internal/secure"
	"github.com/systmms/kpsec/pkg/engine"
)

func NewInitCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <vault>",
		Short: "Create a new database for a configured vault",
		Long: `Create the KDBX database file for a vault declared in the
configuration, prompting twice for a new master key. The database starts
with a General group and a Recycle Bin group. An existing file is never
overwritten.

Examples:
  kpsec init personal`,
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
			vaultCfg, err := config.FromParams(vaultName, bag)
			if err != nil {
				return err
			}
			if vaultCfg.DatabasePath == "" {
				return kperrors.UserError{
					Message:    fmt.Sprintf("Vault '%s' has no database path", vaultName),
					Suggestion: "Add a 'path' to the vault in your configuration file",
				}
			}

			key, err := promptNewKey(rt, vaultName)
			if err != nil {
				return err
			}

			if err := kdbx.CreateDatabase(vaultCfg.DatabasePath, vaultName, key); err != nil {
				return err
			}
			if err := rt.engine.RegisterProfile(context.Background(), engine.ProfileConfig{
				Name:              vaultName,
				Path:              vaultCfg.DatabasePath,
				MasterKeyRequired: true,
			}); err != nil {
				return err
			}

			cfg.Logger.Info("Created vault %s at %s", vaultName, vaultCfg.DatabasePath)
			return nil
		},
	}

	return cmd
}

// promptNewKey asks for the new master key twice and requires both
// entries to match.
func promptNewKey(rt *runtime, vaultName string) (*secure.Key, error) {
	if rt.prompter == nil || !rt.prompter.Available() {
		return nil, kperrors.UserError{
			Message:    "Creating a vault needs an interactive terminal",
			Suggestion: "Run kpsec init from a terminal, without --non-interactive",
		}
	}

	first, err := rt.prompter.PromptKey(context.Background(), vaultName, "new master key")
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, kperrors.UserError{Message: "Master key must not be empty"}
	}
	second, err := rt.prompter.PromptKey(context.Background(), vaultName, "new master key (again)")
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(first, second) {
		return nil, kperrors.UserError{Message: "Master keys don't match"}
	}

	for i := range second {
		second[i] = 0
	}
	return secure.NewKey(first), nil
}

package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/systmms/kpsec/internal/config"
	kperrors "github.com/systmms/kpsec/internal/errors"
	"github.com/systmms/kpsec/pkg/vault"
)

func NewSetCommand(cfg *config.Config) *cobra.Command {
	var (
		username string
		value    string
	)

	cmd := &cobra.Command{
		Use:   "set <vault> <name>",
		Short: "Store a secret in a vault",
		Long: `Store a secret, updating the existing entry when the title is
already in use and creating one otherwise.

The value is read from an interactive prompt unless --value is given.
With --username the entry is stored as a credential pair.

Examples:
  # Store a secret, prompting for the value
  kpsec set personal db-password

  # Store a credential
  kpsec set personal db-password --username svc-db --value s3cret`,
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

			if value == "" {
				if rt.prompter == nil || !rt.prompter.Available() {
					return kperrors.UserError{
						Message:    "No value given and no terminal to prompt on",
						Suggestion: "Pass --value or run from an interactive terminal",
					}
				}
				data, err := rt.prompter.PromptKey(context.Background(), vaultName, "value for "+name)
				if err != nil {
					return err
				}
				value = string(data)
			}
			if value == "" {
				return kperrors.UserError{
					Message: "Refusing to store an empty value",
				}
			}

			secret := vault.StringSecret(value)
			if username != "" {
				secret = vault.CredentialSecret(username, value)
			}

			if err := rt.adapter.Write(context.Background(), name, secret, vaultName, bag); err != nil {
				return err
			}

			cfg.Logger.Info("Stored %s in vault %s", name, vaultName)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Store as a credential with this username")
	cmd.Flags().StringVar(&value, "value", "", "Secret value (prompted for when omitted)")

	return cmd
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/kpsec/internal/config"
	"github.com/systmms/kpsec/pkg/vault"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get <vault> <name>",
		Short: "Read a secret from a vault",
		Long: `Read one secret and print its value to stdout.

The raw value is printed by default, making the command suitable for
scripting. Entries in the recycle bin are invisible to reads.

Examples:
  # Read a value
  kpsec get personal db-password

  # Read with username metadata as JSON
  kpsec get personal db-password --json

  # Use in scripts
  export DB_PASSWORD=$(kpsec get personal db-password)`,
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

			secret, err := rt.adapter.Read(context.Background(), name, vaultName, bag)
			if err != nil {
				return err
			}

			if jsonOutput {
				output := map[string]interface{}{
					"vault": vaultName,
					"name":  name,
					"value": secret.Value(),
				}
				if secret.Kind() == vault.KindCredential {
					output["username"] = secret.Username()
				}
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(output)
			}

			fmt.Print(secret.Value())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format with metadata")

	return cmd
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/kpsec/internal/config"
)

func NewListCommand(cfg *config.Config) *cobra.Command {
	var (
		filter     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list <vault>",
		Short: "List the secrets in a vault",
		Long: `List the titles of live entries in a vault. Entries in the
recycle bin are excluded, and duplicate titles are listed once with a
warning.

Examples:
  # List everything
  kpsec list personal

  # List entries matching a glob
  kpsec list personal --filter 'db-*'`,
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

			infos, err := rt.adapter.Enumerate(context.Background(), filter, vaultName, bag)
			if err != nil {
				return err
			}

			if jsonOutput {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(infos)
			}

			for _, info := range infos {
				fmt.Println(info.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Glob pattern to match titles against (default '*')")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

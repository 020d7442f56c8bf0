package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/kpsec/internal/config"
)

func NewVaultsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vaults",
		Short: "List configured vaults",
		Long: `List every vault declared in the configuration file, with its
type and, for kdbx vaults, the database path and delegation target.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cfg)
			if err != nil {
				return err
			}

			names := rt.registry.VaultNames()
			sort.Strings(names)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tDETAILS")
			for _, name := range names {
				def, _ := rt.registry.Definition(name)
				details := ""
				if path, ok := def.Config[config.ParamPath].(string); ok {
					details = path
				}
				if delegate, ok := def.Config[config.ParamMasterKeyVault].(string); ok && delegate != "" {
					details += fmt.Sprintf(" (key from %s)", delegate)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, def.Type, details)
			}
			return w.Flush()
		},
	}

	return cmd
}

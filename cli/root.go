package cli

import (
	"context"

	"github.com/gear6io/mtgapi/server/config"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mtgapi",
		Short: "Card data API backed by a self-describing SQLite cache",
		Long: `mtgapi serves Magic: The Gathering card data fetched from the
magicthegathering.io API. Cards are cached in SQLite tables synthesized
from their record definitions.`,
		Version:       config.DEFAULT_API_VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "path to the YAML configuration file")
	cmd.AddCommand(newServeCmd(), newSchemaCmd(), newVersionCmd())
	return cmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteWithContext runs the root command with ctx available to subcommands
func ExecuteWithContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads --config when given, otherwise the defaults. Environment
// overrides apply either way.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.LoadConfig(path)
}

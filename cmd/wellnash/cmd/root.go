package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wellnash",
	Short: "Wellnash sign-in service",
	Long: `Wellnash serves the sign-in and sign-up pages and the pages behind them.

Configuration is read from the environment, and from a .env file in the
working directory when one exists. See .env.example.

Use "wellnash [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

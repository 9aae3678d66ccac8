package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sharai",
	Short: "Review contracts for Shariah compliance",
	Long: `Shar'AI uploads a contract to the analysis backend, lists each clause
with its Shariah compliance status, and lets you question, edit and
confirm clauses before generating a compliant or marked-up contract.
It also serves a local web dashboard and an MCP server for AI agents.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

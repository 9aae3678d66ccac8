package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize sharai configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that asks for the analysis backend URL, language and dashboard port, and writes a .sharai.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

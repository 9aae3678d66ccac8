package cmd

import (
	"github.com/spf13/cobra"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm <term-id>",
	Short: "Confirm the final wording of a term",
	Long: `Commits the current wording of a clause: your edit, else the reviewed
suggestion, else the AI suggestion, else the original text. Use --text to
confirm different wording.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := openApp(ctx, appOptions{restore: true})
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.requireSession(); err != nil {
			return err
		}
		if cmd.Flags().Changed("text") {
			text, _ := cmd.Flags().GetString("text")
			return a.sessions.Confirm(ctx, args[0], text)
		}
		return a.sessions.ConfirmCurrent(ctx, args[0])
	},
}

func init() {
	confirmCmd.Flags().String("text", "", "wording to confirm instead of the current suggestion")
	rootCmd.AddCommand(confirmCmd)
}

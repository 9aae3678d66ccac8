package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or manage the active review session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := openApp(ctx, appOptions{restore: true})
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.requireSession()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Session:  %s\n", st.SessionID)
		if d := st.Details; d != nil {
			fmt.Fprintf(out, "Contract: %s\n", d.OriginalFilename)
			if d.DetectedContractLanguage != "" {
				fmt.Fprintf(out, "Language: %s\n", d.DetectedContractLanguage)
			}
			if d.AnalysisTimestamp != "" {
				fmt.Fprintf(out, "Analyzed: %s\n", d.AnalysisTimestamp)
			}
			fmt.Fprintf(out, "Confirmed terms: %d\n", len(d.ConfirmedTerms))
			if d.ModifiedContractInfo != nil {
				fmt.Fprintln(out, "Modified contract: generated")
			}
			if d.MarkedContractInfo != nil {
				fmt.Fprintln(out, "Marked contract: generated")
			}
		}
		fmt.Fprintf(out, "Mode:     %s\n", roleLabel(a, st.Role))
		fmt.Fprintln(out)
		printStats(out, a.t, st.Stats())
		return nil
	},
}

var sessionLoadCmd = &cobra.Command{
	Use:   "load <session-id>",
	Short: "Switch to an existing session by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := openApp(ctx, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.sessions.Load(ctx, args[0]); err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), a.t, a.sessions.Stats())
		return nil
	},
}

var sessionRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload the active session from the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := openApp(ctx, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		sid, err := a.prefs.SessionID(ctx)
		if err != nil {
			return err
		}
		if sid == "" {
			_, err := a.requireSession()
			return err
		}
		if err := a.sessions.Load(ctx, sid); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.t.Tf("term.refreshed"))
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the active session and start over",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		a, err := openApp(ctx, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		a.sessions.Clear(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd, sessionLoadCmd, sessionRefreshCmd, sessionClearCmd)
	rootCmd.AddCommand(sessionCmd)
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/session"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant about the contract or one of its terms",
	Long: `Sends a question to the analysis backend. With --term the question is
scoped to that clause; otherwise it is about the whole contract.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("term", "", "term id to ask about")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	question := strings.Join(args, " ")
	termID, _ := cmd.Flags().GetString("term")

	a, err := openApp(ctx, appOptions{restore: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireSession(); err != nil {
		return err
	}

	var answer string
	err = rotate(ctx, os.Stderr, a.t, func() error {
		var err error
		if termID != "" {
			answer, err = a.sessions.AskAboutTerm(ctx, termID, question)
		} else {
			answer, err = a.sessions.AskGeneral(ctx, question)
		}
		return err
	})
	if errors.Is(err, session.ErrEmptyText) {
		return errors.New("the question is empty")
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	if termID == "" {
		return nil
	}
	if term, ok := a.sessions.Snapshot().Term(termID); ok && term.QAMeta != nil {
		out := cmd.OutOrStdout()
		if term.QAMeta.SuggestedClause != "" {
			fmt.Fprintf(out, "\n%s\n  %s\n", a.t.Tf("term.suggestion"), term.QAMeta.SuggestedClause)
		}
		if term.QAMeta.ReferenceStandard != "" {
			fmt.Fprintf(out, "%s\n  %s\n", a.t.Tf("term.reference"), term.QAMeta.ReferenceStandard)
		}
	}
	return nil
}

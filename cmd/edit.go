package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/session"
)

var editCmd = &cobra.Command{
	Use:   "edit <term-id> [text]",
	Short: "Propose new wording for a term and have the AI review it",
	Long: `Sends your wording of a clause to the backend for Shariah review and
shows the reviewed suggestion. Without a text argument the wording is read
from stdin. Use --confirm to commit the reviewed wording in the same step.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().Bool("confirm", false, "confirm the reviewed suggestion")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	termID := args[0]
	var text string
	if len(args) == 2 {
		text = args[1]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading wording from stdin: %w", err)
		}
		text = string(data)
	}

	a, err := openApp(ctx, appOptions{restore: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireSession(); err != nil {
		return err
	}

	err = rotate(ctx, os.Stderr, a.t, func() error {
		return a.sessions.EditSuggestion(ctx, termID, strings.TrimSpace(text))
	})
	if errors.Is(err, session.ErrEmptyText) {
		return errors.New("the new wording is empty")
	}
	if err != nil {
		return err
	}

	term, _ := a.sessions.Snapshot().Term(termID)
	printReview(cmd.OutOrStdout(), a, term)

	if confirm, _ := cmd.Flags().GetBool("confirm"); confirm {
		return a.sessions.ConfirmCurrent(ctx, termID)
	}
	return nil
}

func printReview(w io.Writer, a *app, term session.Term) {
	verdict := a.t.Tf("review.looksGood")
	if term.IsReviewedSuggestionValid != nil && !*term.IsReviewedSuggestionValid {
		verdict = a.t.Tf("review.concern")
	}
	fmt.Fprintf(w, "%s (%s)\n", verdict, statusLabel(a.t, term.EffectiveStatus()))
	fmt.Fprintf(w, "%s\n  %s\n", a.t.Tf("term.reviewedSuggestion"), term.ReviewedSuggestion)
	if term.ReviewedSuggestionIssue != "" {
		fmt.Fprintf(w, "%s\n  %s\n", a.t.Tf("review.complianceIssue"), term.ReviewedSuggestionIssue)
	}
	if term.ReviewedSuggestionReference != "" {
		fmt.Fprintf(w, "%s\n  %s\n", a.t.Tf("term.reference"), term.ReviewedSuggestionReference)
	}
}

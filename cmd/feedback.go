package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/compliance"
	"github.com/ziadkadry99/sharai/internal/session"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <term-id>",
	Short: "Submit a Shariah expert's judgment on a term",
	Long: `Records whether the AI analysis of a clause is correct. Rejecting the
analysis requires the corrected status. Corrections not given on the
command line default to the current analysis. Requires the shariah_expert
role (see "sharai role").`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedback,
}

func init() {
	addFeedbackFlags(feedbackCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func addFeedbackFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("approve", false, "the AI analysis is correct")
	f.Bool("reject", false, "the AI analysis is wrong")
	f.String("status", "", "corrected status: compliant or non-compliant")
	f.String("comment", "", "expert comment")
	f.String("issue", "", "corrected Shariah issue")
	f.String("reference", "", "corrected AAOIFI reference")
	f.String("suggestion", "", "corrected replacement wording")
	cmd.MarkFlagsMutuallyExclusive("approve", "reject")
}

func runFeedback(cmd *cobra.Command, args []string) error {
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
	term, ok := st.Term(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", session.ErrTermNotFound, args[0])
	}

	in, err := feedbackFromFlags(cmd, session.FeedbackDraft(term))
	if err != nil {
		return err
	}
	if _, err := a.sessions.SubmitExpertFeedback(ctx, term.TermID, in); err != nil {
		if errors.Is(err, session.ErrExpertOnly) {
			return fmt.Errorf("%w\nRun `sharai role expert` to switch modes", err)
		}
		return err
	}
	return nil
}

// feedbackFromFlags overlays the command line on the pre-filled draft. A
// rejection without --status leaves the corrected status unset.
func feedbackFromFlags(cmd *cobra.Command, in session.FeedbackInput) (session.FeedbackInput, error) {
	flags := cmd.Flags()
	approve, _ := flags.GetBool("approve")
	reject, _ := flags.GetBool("reject")
	switch {
	case approve:
		in.Approved = boolPtr(true)
	case reject:
		in.Approved = boolPtr(false)
		in.ExpertIsValidSharia = nil
	}

	if flags.Changed("status") {
		raw, _ := flags.GetString("status")
		status, ok := compliance.ParseStatus(raw)
		if !ok || status == compliance.Warning {
			return in, fmt.Errorf("invalid --status %q: must be compliant or non-compliant", raw)
		}
		in.ExpertIsValidSharia = boolPtr(status == compliance.Compliant)
	}

	for flag, dst := range map[string]*string{
		"comment":    &in.Comment,
		"issue":      &in.CorrectedIssue,
		"reference":  &in.CorrectedReference,
		"suggestion": &in.CorrectedSuggestion,
	} {
		if flags.Changed(flag) {
			*dst, _ = flags.GetString(flag)
		}
	}
	return in, nil
}

func boolPtr(b bool) *bool { return &b }

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/progress"
	"github.com/ziadkadry99/sharai/internal/session"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Walk through the contract terms interactively",
	Long: `Opens an interactive review of the current session. Pick a term to ask
about it, edit and review its wording, confirm it or, in expert mode,
submit feedback. Answers and reviews stay available for the whole
review, and the decision history is shown on exit.`,
	Args: cobra.NoArgs,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

const (
	menuGeneral  = "Ask a general question"
	menuModified = "Generate modified contract"
	menuMarked   = "Generate marked contract"
	menuHistory  = "Show decision history"
	menuQuit     = "Quit"

	actionAsk       = "Ask a question"
	actionUseAnswer = "Use the answer as the suggestion"
	actionEdit      = "Edit the suggestion"
	actionConfirm   = "Confirm the current wording"
	actionFeedback  = "Submit expert feedback"
	actionBack      = "Back"
)

func runReview(cmd *cobra.Command, args []string) error {
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
	out := cmd.OutOrStdout()

	for {
		st := a.sessions.Snapshot()
		fmt.Fprintln(out)
		printStats(out, a.t, st.Stats())

		items := make([]string, 0, len(st.Terms)+5)
		for _, t := range st.Terms {
			items = append(items, termItem(a, t))
		}
		items = append(items, menuGeneral, menuModified, menuMarked, menuHistory, menuQuit)

		sel := promptui.Select{Label: a.t.Tf("contract.reviewContract"), Items: items, Size: 12}
		idx, choice, err := sel.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			break
		}
		if err != nil {
			return err
		}

		switch {
		case idx < len(st.Terms):
			err = reviewTerm(ctx, out, a, st.Terms[idx].TermID)
		case choice == menuGeneral:
			err = askGeneral(ctx, out, a)
		case choice == menuModified:
			err = generateInteractive(ctx, out, a, api.PreviewModified)
		case choice == menuMarked:
			err = generateInteractive(ctx, out, a, api.PreviewMarked)
		case choice == menuHistory:
			printHistory(out, a.t, a.sessions.Snapshot().History)
		case choice == menuQuit:
			printHistory(out, a.t, a.sessions.Snapshot().History)
			return nil
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	printHistory(out, a.t, a.sessions.Snapshot().History)
	return nil
}

func termItem(a *app, t session.Term) string {
	text := strings.Join(strings.Fields(t.TermText), " ")
	if r := []rune(text); len(r) > 60 {
		text = string(r[:57]) + "..."
	}
	mark := " "
	if t.IsUserConfirmed {
		mark = "✓"
	}
	return fmt.Sprintf("%s [%s] %s: %s", mark, t.TermID, statusLabel(a.t, t.EffectiveStatus()), text)
}

func reviewTerm(ctx context.Context, out io.Writer, a *app, termID string) error {
	for {
		term, ok := a.sessions.Snapshot().Term(termID)
		if !ok {
			return fmt.Errorf("%w: %s", session.ErrTermNotFound, termID)
		}
		fmt.Fprintln(out)
		printTerm(out, a.t, term, true)

		actions := []string{actionAsk}
		if term.CurrentQAAnswer != "" {
			actions = append(actions, actionUseAnswer)
		}
		actions = append(actions, actionEdit, actionConfirm)
		if a.sessions.Role() == session.RoleExpert {
			actions = append(actions, actionFeedback)
		}
		actions = append(actions, actionBack)

		sel := promptui.Select{Label: termID, Items: actions}
		_, choice, err := sel.Run()
		if err != nil || choice == actionBack {
			return nil
		}

		switch choice {
		case actionAsk:
			question, err := promptText(a.t.Tf("term.questionPlaceholder"), "")
			if err != nil {
				return nil
			}
			err = rotate(ctx, os.Stderr, a.t, func() error {
				_, err := a.sessions.AskAboutTerm(ctx, termID, question)
				return err
			})
			if err != nil && !errors.Is(err, session.ErrEmptyText) {
				return err
			}
		case actionUseAnswer:
			err = rotate(ctx, os.Stderr, a.t, func() error {
				return a.sessions.UseAnswerAsSuggestion(ctx, termID)
			})
			if err != nil {
				return err
			}
			term, _ = a.sessions.Snapshot().Term(termID)
			printReview(out, a, term)
		case actionEdit:
			text, err := promptText(a.t.Tf("term.editSuggestion"), session.EditStartText(term))
			if err != nil {
				return nil
			}
			err = rotate(ctx, os.Stderr, a.t, func() error {
				return a.sessions.EditSuggestion(ctx, termID, text)
			})
			if err != nil && !errors.Is(err, session.ErrEmptyText) {
				return err
			}
			term, _ = a.sessions.Snapshot().Term(termID)
			printReview(out, a, term)
		case actionConfirm:
			if err := a.sessions.ConfirmCurrent(ctx, termID); err != nil {
				return err
			}
		case actionFeedback:
			if err := feedbackInteractive(ctx, a, term); err != nil {
				return err
			}
		}
	}
}

func askGeneral(ctx context.Context, out io.Writer, a *app) error {
	question, err := promptText(a.t.Tf("term.generalQuestionPlaceholder"), "")
	if err != nil {
		return nil
	}
	var answer string
	err = rotate(ctx, os.Stderr, a.t, func() error {
		var err error
		answer, err = a.sessions.AskGeneral(ctx, question)
		return err
	})
	if errors.Is(err, session.ErrEmptyText) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", answer)
	return nil
}

func generateInteractive(ctx context.Context, out io.Writer, a *app, kind api.PreviewKind) error {
	title := a.t.Tf("term.generatingContract")
	if kind == api.PreviewMarked {
		title = a.t.Tf("term.generatingMarkedContract")
	}
	var info *api.GeneratedContractInfo
	err := animate(ctx, os.Stderr, title, progress.GenerationPlan, generationLabel(a.t), func() error {
		var err error
		info, err = a.sessions.Generate(ctx, kind)
		return err
	})
	if err != nil {
		return err
	}
	if info.DocxCloudinaryInfo != nil {
		fmt.Fprintf(out, "DOCX: %s\n", info.DocxCloudinaryInfo.URL)
	}
	return nil
}

func feedbackInteractive(ctx context.Context, a *app, term session.Term) error {
	in := session.FeedbackDraft(term)

	approved, err := promptYesNo(a.t.Tf("expert.aiAssessmentCorrect"))
	if err != nil {
		return nil
	}
	in.Approved = &approved
	if !approved {
		valid, err := promptYesNo(a.t.Tf("expert.correctedCompliance"))
		if err != nil {
			return nil
		}
		in.ExpertIsValidSharia = &valid
		if in.CorrectedSuggestion, err = promptText(a.t.Tf("expert.correctedSuggestion"), in.CorrectedSuggestion); err != nil {
			return nil
		}
	}
	if in.Comment, err = promptText(a.t.Tf("expert.comments"), ""); err != nil {
		return nil
	}
	_, err = a.sessions.SubmitExpertFeedback(ctx, term.TermID, in)
	return err
}

func promptText(label, initial string) (string, error) {
	p := promptui.Prompt{Label: label, Default: initial, AllowEdit: initial != ""}
	return p.Run()
}

func promptYesNo(label string) (bool, error) {
	sel := promptui.Select{Label: label, Items: []string{"Yes", "No"}}
	idx, _, err := sel.Run()
	return idx == 0, err
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/compliance"
	"github.com/ziadkadry99/sharai/internal/i18n"
	"github.com/ziadkadry99/sharai/internal/progress"
	"github.com/ziadkadry99/sharai/internal/session"
)

func statusLabel(t *i18n.Translator, s compliance.Status) string {
	if s == compliance.NonCompliant {
		return t.Tf("term.non-compliant")
	}
	return t.Tf("term." + string(s))
}

func printStats(w io.Writer, t *i18n.Translator, stats *compliance.Stats) {
	if stats == nil {
		fmt.Fprintln(w, t.Tf("term.noSession"))
		return
	}
	fmt.Fprintf(w, "%s: %s\n",
		t.Tf("compliance."+string(compliance.HeadlineFor(stats.Percentage))),
		t.Tf("stats.percentage", "percentage", stats.RoundedPercentage()))
	fmt.Fprintln(w, t.Tf("stats.summary",
		"compliant", stats.Compliant,
		"warning", stats.Warning,
		"nonCompliant", stats.NonCompliant,
		"total", stats.Total))
}

// printTerm writes one clause block. full adds the answer and review
// details kept in memory for the current process.
func printTerm(w io.Writer, t *i18n.Translator, term session.Term, full bool) {
	fmt.Fprintf(w, "[%s] %s", term.TermID, statusLabel(t, term.EffectiveStatus()))
	if term.IsUserConfirmed {
		fmt.Fprintf(w, " · %s", t.Tf("term.confirmed"))
	}
	if term.ExpertOverrideIsValidSharia != nil {
		fmt.Fprintf(w, " · %s", t.Tf("history.expert"))
	}
	fmt.Fprintln(w)

	section := func(key, body string) {
		if body == "" {
			return
		}
		fmt.Fprintf(w, "  %s\n", t.Tf(key))
		for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	section("term.fullText", term.TermText)
	section("term.why", term.ShariaIssue)
	section("term.reference", term.ReferenceNumber)
	if current := term.CurrentText(); current != term.TermText {
		section("term.suggestion", current)
	}
	if full {
		section("term.answer", term.CurrentQAAnswer)
		if term.ReviewedSuggestionIssue != "" {
			section("review.complianceIssue", term.ReviewedSuggestionIssue)
		}
	}
	fmt.Fprintln(w)
}

func printHistory(w io.Writer, t *i18n.Translator, history []session.HistoryEntry) {
	if len(history) == 0 {
		fmt.Fprintln(w, t.Tf("history.noHistory"))
		return
	}
	for _, e := range history {
		line := t.Tf("history.at",
			"actor", t.Tf(actorKeys[e.Actor]),
			"action", t.Tf(actionKeys[e.Action]),
			"time", e.Timestamp.Local().Format("2006-01-02 15:04"),
		)
		if e.TermID != "" {
			line += " [" + e.TermID + "]"
		}
		if e.Details != "" {
			line += ": " + e.Details
		}
		fmt.Fprintln(w, line)
	}
}

var (
	actionKeys = map[session.HistoryAction]string{
		session.ActionUserEdit:       "history.userEdit",
		session.ActionAIReview:       "history.aiReview",
		session.ActionExpertFeedback: "history.expertFeedback",
		session.ActionConfirmation:   "history.confirmation",
	}
	actorKeys = map[session.Actor]string{
		session.ActorUser:   "history.user",
		session.ActorAI:     "history.ai",
		session.ActorExpert: "history.expert",
	}
)

// animate renders plan on a reporter while work runs. The bar is
// finished without a completion message when work fails.
func animate(ctx context.Context, w io.Writer, title string, plan progress.Plan, label func(progress.Frame) string, work func() error) error {
	reporter := progress.NewReporter(w)
	reporter.Start(title)

	animCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		progress.NewAnimator(plan, 0).Run(animCtx, done, func(f progress.Frame) {
			reporter.Update(f, label(f))
		})
	}()

	err := work()
	if err != nil {
		cancel()
	} else {
		close(done)
	}
	<-stopped
	if err != nil {
		reporter.Finish("")
		return err
	}
	reporter.Finish(label(plan.Done()))
	return nil
}

func analysisLabel(t *i18n.Translator) func(progress.Frame) string {
	return func(f progress.Frame) string {
		if f.Complete {
			return t.Tf("analyze.complete")
		}
		return t.Tf(f.Key)
	}
}

func generationLabel(t *i18n.Translator) func(progress.Frame) string {
	return func(f progress.Frame) string {
		return t.Tf("generate.progress", "stage", t.Tf(f.Key), "percent", f.Rounded())
	}
}

// rotate prints the rotating question messages while work runs.
func rotate(ctx context.Context, w io.Writer, t *i18n.Translator, work func() error) error {
	rotCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		r := progress.NewQuestionRotator()
		r.Run(rotCtx, func(key string) {
			fmt.Fprintf(w, "… %s\n", t.Tf(key))
		})
	}()
	err := work()
	cancel()
	<-stopped
	return err
}

// commandContext is cancelled on interrupt so a waiting backend call
// stops cleanly.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/compliance"
	"github.com/ziadkadry99/sharai/internal/session"
)

var termsCmd = &cobra.Command{
	Use:   "terms [term-id]",
	Short: "List the analyzed terms of the current contract",
	Long: `Lists every clause of the current session with its compliance status,
the reason it is not compliant and the suggested replacement. Pass a term
id to show a single clause.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTerms,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the compliance summary of the current contract",
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
		printStats(cmd.OutOrStdout(), a.t, st.Stats())
		return nil
	},
}

func init() {
	termsCmd.Flags().String("filter", string(compliance.FilterAll),
		"show only terms with this status: "+filterNames())
	rootCmd.AddCommand(termsCmd)
	rootCmd.AddCommand(statsCmd)
}

func filterNames() string {
	names := make([]string, len(compliance.Filters))
	for i, f := range compliance.Filters {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func runTerms(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	raw, _ := cmd.Flags().GetString("filter")
	filter := compliance.ParseFilter(raw)
	if filter == compliance.FilterAll && !strings.EqualFold(strings.TrimSpace(raw), string(compliance.FilterAll)) {
		return fmt.Errorf("unknown filter %q: must be one of %s", raw, filterNames())
	}

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

	if len(args) == 1 {
		term, ok := st.Term(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", session.ErrTermNotFound, args[0])
		}
		printTerm(out, a.t, term, true)
		return nil
	}

	terms := st.Filtered(filter)
	if len(terms) == 0 {
		fmt.Fprintln(out, a.t.Tf("term.noTermsForFilter"))
		return nil
	}
	for _, term := range terms {
		printTerm(out, a.t, term, false)
	}
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/progress"
	"github.com/ziadkadry99/sharai/internal/upload"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Upload a contract and analyze it for Shariah compliance",
	Long: `Uploads a .docx, .pdf or .txt contract to the analysis backend and
replaces the current session with the result. The argument may be a glob
pattern as long as it matches exactly one file.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("terms", false, "list the analyzed terms after the summary")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	paths, err := upload.Expand(args)
	if err != nil {
		return err
	}
	switch len(paths) {
	case 0:
		return fmt.Errorf("no file matches %q", args[0])
	case 1:
	default:
		return fmt.Errorf("%q matches %d files; analyze one contract at a time", args[0], len(paths))
	}

	f, err := upload.Open(paths[0])
	if err != nil {
		return err
	}

	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(os.Stderr, "%s: %s\n", f.Name, a.t.Tf("upload.fileSelected"))
	err = animate(ctx, os.Stderr, a.t.Tf("upload.analyzing"), progress.AnalysisPlan, analysisLabel(a.t), func() error {
		_, err := a.sessions.UploadAndAnalyze(ctx, f)
		return err
	})
	if err != nil {
		return err
	}

	st := a.sessions.Snapshot()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session: %s\n", st.SessionID)
	printStats(out, a.t, st.Stats())

	if listTerms, _ := cmd.Flags().GetBool("terms"); listTerms {
		fmt.Fprintln(out)
		for _, term := range st.Terms {
			printTerm(out, a.t, term, false)
		}
	}
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/preview"
	"github.com/ziadkadry99/sharai/internal/progress"
)

var generateCmd = &cobra.Command{
	Use:   "generate <modified|marked>",
	Short: "Generate the compliant or the marked-up contract",
	Long: `Asks the backend to build a contract document for the current session.
"modified" applies every confirmed wording; "marked" highlights the
clauses by compliance status. Use --download to save the DOCX locally.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(api.PreviewModified), string(api.PreviewMarked)},
	RunE:      runGenerate,
}

func init() {
	generateCmd.Flags().String("download", "", "directory to save the generated DOCX into")
	rootCmd.AddCommand(generateCmd)
}

func parseKind(s string) (api.PreviewKind, error) {
	kind := api.PreviewKind(s)
	if !kind.Valid() {
		return "", fmt.Errorf("unknown contract kind %q: must be modified or marked", s)
	}
	return kind, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(ctx, appOptions{restore: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireSession(); err != nil {
		return err
	}

	title := a.t.Tf("term.generatingContract")
	if kind == api.PreviewMarked {
		title = a.t.Tf("term.generatingMarkedContract")
	}
	var info *api.GeneratedContractInfo
	err = animate(ctx, os.Stderr, title, progress.GenerationPlan, generationLabel(a.t), func() error {
		var err error
		info, err = a.sessions.Generate(ctx, kind)
		return err
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	docx := info.DocxCloudinaryInfo
	if docx == nil {
		fmt.Fprintln(out, a.t.Tf("contract.preview.noFileDesc"))
		return nil
	}
	fmt.Fprintf(out, "DOCX: %s\n", docx.URL)

	dir, _ := cmd.Flags().GetString("download")
	if dir == "" {
		return nil
	}
	path, err := a.previews.Save(ctx, &preview.Preview{
		Kind:         kind,
		DocxURL:      docx.URL,
		DocxFilename: docx.UserFacingFilename,
	}, preview.FormatDocx, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s\n", path)
	return nil
}

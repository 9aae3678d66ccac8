package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/sharai/internal/api"
	"github.com/ziadkadry99/sharai/internal/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview <modified|marked>",
	Short: "Show preview links for a generated contract",
	Long: `Prints the PDF preview link and DOCX download link of a generated
contract, converting it to PDF on the backend the first time. Use
--download to save one of the files locally.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(api.PreviewModified), string(api.PreviewMarked)},
	RunE:      runPreview,
}

func init() {
	previewCmd.Flags().String("download", "", "directory to save the file into")
	previewCmd.Flags().String("format", string(preview.FormatPDF), "file to save with --download: pdf or docx")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	format := preview.Format(cmd.Flag("format").Value.String())
	if format != preview.FormatPDF && format != preview.FormatDocx {
		return fmt.Errorf("invalid --format %q: must be pdf or docx", format)
	}

	a, err := openApp(ctx, appOptions{restore: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireSession(); err != nil {
		return err
	}

	p, err := a.previews.Resolve(ctx, kind)
	if errors.Is(err, preview.ErrNoFileURL) {
		return fmt.Errorf("%s: %s", a.t.Tf("contract.preview.noFileUrlTitle"), a.t.Tf("contract.preview.noFileUrlDesc"))
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "PDF:  %s\n", p.PDFURL)
	if p.DocxURL != "" {
		fmt.Fprintf(out, "DOCX: %s\n", p.DocxURL)
	}

	dir, _ := cmd.Flags().GetString("download")
	if dir == "" {
		return nil
	}
	path, err := a.previews.Save(ctx, p, format, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s\n", path)
	return nil
}

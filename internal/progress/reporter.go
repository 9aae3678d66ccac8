package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter renders animation frames for the CLI.
type Reporter interface {
	Start(title string)
	Update(frame Frame, label string)
	Finish(message string)
}

// NewReporter returns a TerminalReporter, or a CIReporter when the CI
// environment variable is set.
func NewReporter(w io.Writer) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{w: w}
	}
	return &TerminalReporter{w: w}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(title string) {
	r.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(title),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(frame Frame, label string) {
	if r.bar != nil && !frame.Hidden {
		r.bar.Describe(label)
		_ = r.bar.Set(frame.Rounded())
	}
}

func (r *TerminalReporter) Finish(message string) {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	if message != "" {
		fmt.Fprintln(r.w, message)
	}
}

// CIReporter prints one line per phase, suitable for CI logs.
type CIReporter struct {
	w    io.Writer
	last string
}

func (r *CIReporter) Start(title string) {
	r.last = ""
	fmt.Fprintln(r.w, title)
}

func (r *CIReporter) Update(frame Frame, label string) {
	if frame.Hidden || label == r.last {
		return
	}
	r.last = label
	fmt.Fprintf(r.w, "[%3d%%] %s\n", frame.Rounded(), label)
}

func (r *CIReporter) Finish(message string) {
	if message != "" {
		fmt.Fprintln(r.w, message)
	}
}

// Package presenter provides consistent user-facing CLI output: success,
// error, warning and informational messages with color support and a quiet
// mode for scripting. Logging stays on the logger package; presenter output
// is what a human running the CLI reads.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Presenter writes user-facing messages.
type Presenter struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
}

// New creates a Presenter on stdout/stderr.
func New() *Presenter {
	return &Presenter{out: os.Stdout, errOut: os.Stderr}
}

// NewWithWriters creates a Presenter with custom writers.
func NewWithWriters(out, errOut io.Writer) *Presenter {
	return &Presenter{out: out, errOut: errOut}
}

var defaultPresenter = New()

// SetQuiet toggles quiet mode on the default presenter. Errors still print.
func SetQuiet(quiet bool) {
	defaultPresenter.quiet = quiet
}

// Success prints a green success message.
func Success(message string) { defaultPresenter.Success(message) }

// Info prints an informational message.
func Info(message string) { defaultPresenter.Info(message) }

// Warning prints a yellow warning message.
func Warning(message string) { defaultPresenter.Warning(message) }

// Error prints a red error with context.
func Error(err error, context string) { defaultPresenter.Error(err, context) }

// Section prints an underlined section title.
func Section(title string) { defaultPresenter.Section(title) }

// Success prints a green success message.
func (p *Presenter) Success(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, color.GreenString(message))
}

// Info prints an informational message.
func (p *Presenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, message)
}

// Warning prints a yellow warning message.
func (p *Presenter) Warning(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.errOut, color.YellowString(message))
}

// Error prints a red error with context. Errors print even in quiet mode.
func (p *Presenter) Error(err error, context string) {
	if err == nil {
		fmt.Fprintln(p.errOut, color.RedString("Error: %s", context))
		return
	}
	fmt.Fprintln(p.errOut, color.RedString("Error: %s: %v", context, err))
}

// Section prints an underlined section title.
func (p *Presenter) Section(title string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

package runner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/doctest/internal/backend"
	"github.com/harrison/doctest/internal/checker"
	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/models"
)

// Divider separates failure reports and summary sections.
var Divider = strings.Repeat("*", 70)

// Reporter receives the progress of a run. A non-nil error aborts the run of
// the current DocTest and is returned by Runner.Run.
type Reporter interface {
	ReportStart(optionflags flags.Flag, test *models.DocTest, example *models.Example) error
	ReportSuccess(optionflags flags.Flag, test *models.DocTest, example *models.Example, result backend.Result) error
	ReportFailure(optionflags flags.Flag, test *models.DocTest, example *models.Example, result backend.Result) error
	ReportUnexpectedFault(optionflags flags.Flag, test *models.DocTest, example *models.Example, result backend.Result) error
}

// TextReporter writes human-readable reports and keeps going after
// failures. Successes are only reported when verbose.
type TextReporter struct {
	w       io.Writer
	verbose bool
	mu      sync.Mutex
	failure *color.Color
	ok      *color.Color
}

// NewTextReporter creates a TextReporter. Output is colorized when w is a
// terminal.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	r := &TextReporter{
		w:       w,
		verbose: verbose,
		failure: color.New(color.FgRed),
		ok:      color.New(color.FgGreen),
	}
	if isTerminal(w) {
		r.failure.EnableColor()
		r.ok.EnableColor()
	} else {
		r.failure.DisableColor()
		r.ok.DisableColor()
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *TextReporter) write(s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.w, s)
	return err
}

// ReportStart prints the example about to run when verbose.
func (r *TextReporter) ReportStart(_ flags.Flag, _ *models.DocTest, example *models.Example) error {
	if !r.verbose {
		return nil
	}
	msg := "Trying:\n" + checker.Indent(example.Source, 4)
	if example.Want != "" {
		msg += "Expecting:\n" + checker.Indent(example.Want, 4)
	} else {
		msg += "Expecting nothing\n"
	}
	return r.write(msg)
}

// ReportSuccess prints "ok" when verbose.
func (r *TextReporter) ReportSuccess(flags.Flag, *models.DocTest, *models.Example, backend.Result) error {
	if !r.verbose {
		return nil
	}
	return r.write(r.ok.Sprint("ok") + "\n")
}

// ReportFailure prints the example with the difference between expected
// and actual output.
func (r *TextReporter) ReportFailure(optionflags flags.Flag, test *models.DocTest, example *models.Example, result backend.Result) error {
	return r.write(r.failureHeader(test, example) + checker.OutputDifference(example, result.String(), optionflags))
}

// ReportUnexpectedFault prints the example with the fault it raised.
func (r *TextReporter) ReportUnexpectedFault(_ flags.Flag, test *models.DocTest, example *models.Example, result backend.Result) error {
	return r.write(r.failureHeader(test, example) + "Exception raised:\n" + checker.Indent(result.Fault(), 4))
}

func (r *TextReporter) failureHeader(test *models.DocTest, example *models.Example) string {
	var b strings.Builder
	b.WriteString(r.failure.Sprint(Divider))
	b.WriteString("\n")
	if test.Filename != "" {
		lineno := "?"
		if test.Lineno != models.NoLineno {
			lineno = fmt.Sprint(test.Lineno + example.Lineno + 1)
		}
		fmt.Fprintf(&b, "File \"%s\", line %s, in %s\n", test.Filename, lineno, test.Name)
	} else {
		fmt.Fprintf(&b, "Line %d, in %s\n", example.Lineno+1, test.Name)
	}
	b.WriteString("Failed example:\n")
	b.WriteString(checker.Indent(example.Source, 4))
	return b.String()
}

// FailFastReporter stops the run at the first failure or unexpected fault
// by returning it as an error. Progress is reported like TextReporter.
type FailFastReporter struct {
	*TextReporter
}

// NewFailFastReporter creates a FailFastReporter writing progress to w.
func NewFailFastReporter(w io.Writer, verbose bool) *FailFastReporter {
	return &FailFastReporter{TextReporter: NewTextReporter(w, verbose)}
}

// ReportFailure returns a *FailureError.
func (r *FailFastReporter) ReportFailure(_ flags.Flag, test *models.DocTest, example *models.Example, result backend.Result) error {
	return &FailureError{Test: test, Example: example, Got: result.String()}
}

// ReportUnexpectedFault returns an *UnexpectedFaultError.
func (r *FailFastReporter) ReportUnexpectedFault(_ flags.Flag, test *models.DocTest, example *models.Example, result backend.Result) error {
	return &UnexpectedFaultError{Test: test, Example: example, Fault: result.Fault()}
}

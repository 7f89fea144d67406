package checker

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/models"
)

// blankGotLine matches a space-only line that is followed by a newline.
var blankGotLine = regexp2.MustCompile(`(?m)^[ ]*(?=\n)`, regexp2.None)

// OutputDifference describes how got differs from the example's expected
// output, for use in failure reports.
func OutputDifference(example *models.Example, got string, optionflags flags.Flag) string {
	want := example.Want

	if !optionflags.Has(flags.DontAcceptBlankline) {
		if replaced, err := blankGotLine.Replace(got, BlanklineMarker, -1, -1); err == nil {
			got = replaced
		}
	}

	if fancyDiff(want, got, optionflags) {
		wantLines := splitLines(want)
		gotLines := splitLines(got)

		var diff []string
		var kind string
		switch {
		case optionflags.Has(flags.ReportUdiff):
			text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{A: wantLines, B: gotLines, Context: 2})
			diff = splitLines(text)
			kind = "unified diff with -expected +actual"
		case optionflags.Has(flags.ReportCdiff):
			text, _ := difflib.GetContextDiffString(difflib.ContextDiff{A: wantLines, B: gotLines, Context: 2})
			diff = splitLines(text)
			kind = "context diff with expected followed by actual"
		default:
			diff = ndiff(wantLines, gotLines)
			kind = "ndiff with -expected +actual"
		}

		var b strings.Builder
		for _, line := range diff {
			b.WriteString(strings.TrimRight(line, " \t\r\n\v\f"))
			b.WriteString("\n")
		}
		return "Differences (" + kind + "):\n" + Indent(b.String(), 4)
	}

	switch {
	case want != "" && got != "":
		return "Expected:\n" + Indent(want, 4) + "Got:\n" + Indent(got, 4)
	case want != "":
		return "Expected:\n" + Indent(want, 4) + "Got nothing\n"
	case got != "":
		return "Expected nothing\nGot:\n" + Indent(got, 4)
	default:
		return "Expected nothing\nGot nothing\n"
	}
}

func fancyDiff(want, got string, optionflags flags.Flag) bool {
	if optionflags&(flags.ReportUdiff|flags.ReportCdiff|flags.ReportNdiff) == 0 {
		return false
	}
	if optionflags.Has(flags.ReportNdiff) {
		return true
	}
	return strings.Count(want, "\n") > 2 && strings.Count(got, "\n") > 2
}

// ndiff renders a line diff with "- ", "+ " and "  " prefixes.
func ndiff(a, b []string) []string {
	var out []string
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		switch op.Tag {
		case 'e':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "  "+line)
			}
		case 'd':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "- "+line)
			}
		case 'i':
			for _, line := range b[op.J1:op.J2] {
				out = append(out, "+ "+line)
			}
		case 'r':
			for _, line := range a[op.I1:op.I2] {
				out = append(out, "- "+line)
			}
			for _, line := range b[op.J1:op.J2] {
				out = append(out, "+ "+line)
			}
		}
	}
	return out
}

// splitLines splits s after every newline, so each element keeps its line
// ending. A final line without a newline gets one.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, "\n") {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}

// Indent prefixes every non-empty line of s with n spaces.
func Indent(s string, n int) string {
	if s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line != "" && line != "\n" {
			b.WriteString(pad)
		}
		b.WriteString(line)
	}
	return b.String()
}

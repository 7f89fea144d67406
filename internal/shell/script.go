package shell

import (
	"strings"
)

// dialect describes how one shell is invoked and how its script is laid out.
type dialect struct {
	shell []string // command line; the script path is appended
	ext   string   // script file extension
	quote func(string) string
	// block guards source with wait and captures its output to out
	block func(wait, source, out string) string
}

var shDialect = dialect{
	shell: []string{"sh"},
	ext:   ".sh",
	quote: shQuote,
	block: func(wait, source, out string) string {
		return "{ " + wait + " || {\n" + source + "} ; } >" + out + " 2>&1\n"
	},
}

var cmdDialect = dialect{
	shell: []string{"cmd", "/Q", "/C"},
	ext:   ".cmd",
	quote: cmdQuote,
	block: func(wait, source, out string) string {
		return "(" + wait + " || (\n" + source + ")) >" + out + " 2>&1\n"
	},
}

// shQuote single-quotes s for a POSIX shell.
func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// cmdQuote double-quotes s for cmd.exe.
func cmdQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// buildScript lays out one wait-guarded block per source, in index order.
// Every source must end with a newline.
func buildScript(d dialect, helper []string, signal Signaler, sources []string, outPath string) string {
	var b strings.Builder
	out := d.quote(outPath)
	format := joinQuoted(append(append([]string{}, helper...), "format", outPath), d.quote)

	for i, source := range sources {
		wait := joinQuoted(append(append([]string{}, helper...), signal.WaitArgs(i)...), d.quote)
		b.WriteString(d.block(wait, source, out))
		b.WriteString(format)
		b.WriteString("\n")
	}
	return b.String()
}

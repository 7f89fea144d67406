package checker

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/becheran/wildmatch-go"
	"github.com/dlclark/regexp2"

	"github.com/harrison/doctest/internal/flags"
)

// BlanklineMarker stands for an empty line in expected output.
const BlanklineMarker = "<BLANKLINE>"

// MatchFunc compares got against want. It may return rewritten versions of
// both strings, which are passed on to the next matcher in the pipeline.
type MatchFunc func(got, want string) (string, string, bool)

// Matcher is one stage of the comparison pipeline.
type Matcher struct {
	Name    string     // Flag name, used in diagnostics
	Flag    flags.Flag // Bit that gates this matcher
	WhenSet bool       // Run when Flag is set (true) or when it is clear (false)
	Match   MatchFunc
}

// active reports whether the matcher runs under the given flags.
func (m Matcher) active(optionflags flags.Flag) bool {
	return optionflags.Has(m.Flag) == m.WhenSet
}

// OutputChecker runs the ordered matcher pipeline.
type OutputChecker struct {
	mu       sync.RWMutex
	matchers []Matcher
}

// New returns a checker with the standard matchers in their fixed order.
func New() *OutputChecker {
	return &OutputChecker{matchers: StandardMatchers()}
}

// StandardMatchers returns the built-in pipeline.
func StandardMatchers() []Matcher {
	return []Matcher{
		{Name: "DONT_ACCEPT_TRUE_FOR_1", Flag: flags.DontAcceptTrueFor1, WhenSet: false, Match: matchTrueFor1},
		{Name: "DONT_ACCEPT_BLANKLINE", Flag: flags.DontAcceptBlankline, WhenSet: false, Match: matchBlankline},
		{Name: "NORMALIZE_WHITESPACE", Flag: flags.NormalizeWhitespace, WhenSet: true, Match: matchNormalizedWhitespace},
		{Name: "COMPARE_LITERAL_EVAL", Flag: flags.CompareLiteralEval, WhenSet: true, Match: pure(CompareLiteral)},
		{Name: "ELLIPSIS", Flag: flags.Ellipsis, WhenSet: true, Match: pure(func(got, want string) bool {
			return EllipsisMatch(want, got)
		})},
		{Name: "GLOB", Flag: flags.Glob, WhenSet: true, Match: pure(globMatch)},
		{Name: "CRAM_GLOB", Flag: flags.CramGlob, WhenSet: true, Match: cramSuffix(" (glob)", pure(globMatch))},
		{Name: "REGEX", Flag: flags.Regex, WhenSet: true, Match: pure(regexMatch)},
		{Name: "CRAM_RE", Flag: flags.CramRe, WhenSet: true, Match: cramSuffix(" (re)", pure(regexMatch))},
	}
}

// Register appends a matcher to the end of the pipeline.
func (c *OutputChecker) Register(m Matcher) error {
	if m.Match == nil {
		return fmt.Errorf("matcher %q has no match function", m.Name)
	}
	if m.Flag == 0 {
		return fmt.Errorf("matcher %q has no flag", m.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matchers = append(c.matchers, m)
	return nil
}

// Matchers returns a copy of the pipeline in execution order.
func (c *OutputChecker) Matchers() []Matcher {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Matcher, len(c.matchers))
	copy(out, c.matchers)
	return out
}

// Check reports whether got is an acceptable rendering of want under the
// given option flags.
func (c *OutputChecker) Check(want, got string, optionflags flags.Flag) bool {
	got = ToASCII(got)
	want = ToASCII(want)

	if got == want {
		return true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, m := range c.matchers {
		if !m.active(optionflags) {
			continue
		}
		var ok bool
		got, want, ok = m.Match(got, want)
		if ok {
			return true
		}
	}
	return false
}

// ToASCII escapes every non-ASCII character the way a backslash-replace
// encoder does: \xNN up to U+00FF, \uNNNN up to U+FFFF, \UNNNNNNNN above.
// Bytes that are not valid UTF-8 become \xNN.
func ToASCII(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r < utf8.RuneSelf:
			b.WriteByte(byte(r))
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&b, `\x%02x`, s[i])
		case r <= 0xff:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
		i += size
	}
	return b.String()
}

// pure adapts a predicate that never rewrites its inputs.
func pure(f func(got, want string) bool) MatchFunc {
	return func(got, want string) (string, string, bool) {
		return got, want, f(got, want)
	}
}

// cramSuffix only runs f when want ends with suffix followed by a newline,
// and passes want on with the suffix removed.
func cramSuffix(suffix string, f MatchFunc) MatchFunc {
	suffix += "\n"
	return func(got, want string) (string, string, bool) {
		if !strings.HasSuffix(want, suffix) {
			return got, want, false
		}
		return f(got, strings.TrimSuffix(want, suffix)+"\n")
	}
}

func matchTrueFor1(got, want string) (string, string, bool) {
	ok := (got == "True\n" && want == "1\n") || (got == "False\n" && want == "0\n")
	return got, want, ok
}

var (
	blanklineWant = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(BlanklineMarker) + `\s*?$`)
	blanklineGot  = regexp.MustCompile(`(?m)^\s*?$`)
)

func matchBlankline(got, want string) (string, string, bool) {
	want = blanklineWant.ReplaceAllString(want, "")
	got = blanklineGot.ReplaceAllString(got, "")
	return got, want, got == want
}

func matchNormalizedWhitespace(got, want string) (string, string, bool) {
	got = strings.Join(strings.Fields(got), " ")
	want = strings.Join(strings.Fields(want), " ")
	return got, want, got == want
}

func globMatch(got, want string) bool {
	return wildmatch.NewWildMatch(want).IsMatch(got)
}

// regexMatch treats want as a pattern that must match at the start of got.
// A pattern that does not compile never matches.
func regexMatch(got, want string) bool {
	re, err := regexp2.Compile(`\A(?:`+want+`)`, regexp2.None)
	if err != nil {
		return false
	}
	ok, err := re.MatchString(got)
	return err == nil && ok
}

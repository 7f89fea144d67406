package parser

import (
	"strings"

	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/models"
)

// Syntax is the part of a language backend the parser depends on.
type Syntax interface {
	// Name identifies the language, e.g. "sh"
	Name() string
	// Prompts returns the primary and continuation prompts
	Prompts() (ps1, ps2 string)
	// CommentPrefix starts a line comment, e.g. "#"
	CommentPrefix() string
	// FindComments returns the text of every comment in source that starts
	// with CommentPrefix, with the prefix removed
	FindComments(source string) []string
}

// Parser splits doctest text into literal text and examples for one
// language.
type Parser struct {
	syntax   Syntax
	ps1      string
	ps2      string
	registry *flags.Registry
}

// Option configures a Parser.
type Option func(*Parser)

// WithRegistry resolves directive flag names against r instead of the
// default registry.
func WithRegistry(r *flags.Registry) Option {
	return func(p *Parser) {
		p.registry = r
	}
}

// New creates a parser for the given language syntax.
func New(syntax Syntax, opts ...Option) *Parser {
	ps1, ps2 := syntax.Prompts()
	p := &Parser{
		syntax:   syntax,
		ps1:      ps1,
		ps2:      ps2,
		registry: flags.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse divides text into alternating literal text and Example chunks. The
// first and last chunks are always text, possibly empty. Line numbers of the
// examples are zero-based and refer to the dedented text.
//
// A prompt whose source is blank or only comments does not produce an
// Example; its lines stay part of the surrounding text. Global directives on
// such a prompt are carried to the next Example.
func (p *Parser) Parse(text, name string) ([]models.Chunk, error) {
	lines := splitLines(Dedent(NormalizeNewlines(text)))

	var chunks []models.Chunk
	var pending map[flags.Flag]bool
	textStart := 0

	for i := 0; i < len(lines); {
		if !hasPrompt(lines[i], p.ps1) {
			i++
			continue
		}

		j := i + 1
		for j < len(lines) && hasPrompt(lines[j], p.ps2) {
			j++
		}
		k := j
		for k < len(lines) && !isBlank(lines[k]) && !hasPrompt(lines[k], p.ps1) {
			k++
		}

		ex, globals, err := p.parseExample(lines[i:j], lines[j:k], i, name)
		if err != nil {
			return nil, err
		}

		if ex == nil {
			if len(globals) > 0 && pending == nil {
				pending = make(map[flags.Flag]bool, len(globals))
			}
			for f, v := range globals {
				pending[f] = v
			}
			i = k
			continue
		}

		for f, v := range pending {
			if _, ok := ex.GlobalOptions[f]; !ok {
				ex.GlobalOptions[f] = v
			}
		}
		pending = nil

		chunks = append(chunks,
			models.Chunk{Text: strings.Join(lines[textStart:i], "")},
			models.Chunk{Example: ex})
		textStart = k
		i = k
	}

	chunks = append(chunks, models.Chunk{Text: strings.Join(lines[textStart:], "")})
	return chunks, nil
}

// GetExamples returns only the examples found in text.
func (p *Parser) GetExamples(text, name string) ([]*models.Example, error) {
	chunks, err := p.Parse(text, name)
	if err != nil {
		return nil, err
	}
	var examples []*models.Example
	for _, c := range chunks {
		if c.IsExample() {
			examples = append(examples, c.Example)
		}
	}
	return examples, nil
}

// GetDocTest collects the examples of text into a DocTest.
func (p *Parser) GetDocTest(text string, globs map[string]any, name, filename string, lineno int) (*models.DocTest, error) {
	text = NormalizeNewlines(text)
	examples, err := p.GetExamples(text, name)
	if err != nil {
		return nil, err
	}
	test := models.NewDocTest(examples, globs, name, filename, lineno, text)
	test.Language = p.syntax.Name()
	return test, nil
}

// parseExample turns the raw lines of one prompt block into an Example. It
// returns a nil Example when the source is blank or only comments.
func (p *Parser) parseExample(sourceLines, wantLines []string, lineno int, name string) (*models.Example, map[flags.Flag]bool, error) {
	src := make([]string, len(sourceLines))
	for i, l := range sourceLines {
		src[i] = strings.TrimSuffix(l, "\n")
	}
	indent := leadingSpaces(src[0])

	if err := checkPrefix(src[1:], strings.Repeat(" ", indent)+p.ps2, name, lineno+1); err != nil {
		return nil, nil, err
	}
	if err := p.checkPromptBlank(src, indent, name, lineno); err != nil {
		return nil, nil, err
	}

	rest := make([]string, 0, len(src)-1)
	for _, l := range src[1:] {
		rest = append(rest, tail(l, indent+len(p.ps2)+1))
	}
	source := tail(src[0], indent+len(p.ps1)+1) + "\n" + strings.Join(rest, "\n")

	want := strings.Split(strings.Join(wantLines, ""), "\n")
	if len(want) > 1 && strings.Trim(want[len(want)-1], " ") == "" {
		want = want[:len(want)-1]
	}
	if err := checkPrefix(want, strings.Repeat(" ", indent), name, lineno+len(src)); err != nil {
		return nil, nil, err
	}
	for i, l := range want {
		want[i] = tail(l, indent)
	}

	options, globals, err := p.findOptions(source, name, lineno)
	if err != nil {
		return nil, nil, err
	}

	if p.isBlankOrComment(source) {
		if len(options) > 0 {
			return nil, nil, &ParseError{
				Name:   name,
				Lineno: lineno + 1,
				Msg:    "has a local option directive on a line with no example",
				Line:   source,
				Err:    ErrInvalidOption,
			}
		}
		return nil, globals, nil
	}

	return models.NewExample(source, strings.Join(want, "\n"), lineno, indent, options, globals), nil, nil
}

// checkPromptBlank requires every prompt to be followed by a space unless
// the line ends at the prompt.
func (p *Parser) checkPromptBlank(lines []string, indent int, name string, lineno int) error {
	for i, line := range lines {
		dedented := tail(line, indent)
		if dedented == "" {
			continue
		}

		var prefix string
		switch {
		case strings.HasPrefix(dedented, p.ps1):
			prefix = p.ps1
		case strings.HasPrefix(dedented, p.ps2):
			prefix = p.ps2
		default:
			return &ParseError{Name: name, Lineno: lineno + i + 1, Msg: "has no prompt prefix", Line: line}
		}

		if len(dedented) > len(prefix) && dedented[len(prefix)] != ' ' {
			return &ParseError{Name: name, Lineno: lineno + i + 1, Msg: "lacks blank after " + prefix, Line: line}
		}
	}
	return nil
}

func checkPrefix(lines []string, prefix, name string, lineno int) error {
	for i, line := range lines {
		if line != "" && !strings.HasPrefix(line, prefix) {
			return &ParseError{Name: name, Lineno: lineno + i + 1, Msg: "has inconsistent leading whitespace", Line: line}
		}
	}
	return nil
}

func (p *Parser) isBlankOrComment(source string) bool {
	prefix := p.syntax.CommentPrefix()
	for _, line := range strings.Split(strings.TrimSuffix(source, "\n"), "\n") {
		t := strings.TrimLeft(line, " ")
		if t == "" {
			continue
		}
		if prefix != "" && strings.HasPrefix(t, prefix) {
			continue
		}
		return false
	}
	return true
}

// NormalizeNewlines converts "\r\n" and lone "\r" line endings to "\n".
func NormalizeNewlines(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// Dedent expands tabs to 8-column stops and removes the indentation common
// to every non-blank line.
func Dedent(text string) string {
	text = expandTabs(text)

	minIndent := -1
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n := leadingSpaces(line); minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	if minIndent <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = tail(line, minIndent)
	}
	return strings.Join(lines, "\n")
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := 8 - col%8
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n', '\r':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// splitLines splits after each newline and drops the empty tail.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func hasPrompt(line, prompt string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " "), prompt)
}

func isBlank(line string) bool {
	return strings.Trim(strings.TrimSuffix(line, "\n"), " ") == ""
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}

// tail returns s[n:], or "" when s is shorter than n.
func tail(s string, n int) string {
	if n >= len(s) {
		return ""
	}
	return s[n:]
}

package models

import (
	"strings"

	"github.com/harrison/doctest/internal/flags"
)

// Example is a single source/expected-output pair parsed from a doctest.
type Example struct {
	Source        string              // Code to execute, always ends with a single "\n"
	Want          string              // Expected output, empty or ends with "\n"
	Lineno        int                 // Zero-based line offset within the DocTest text
	Indent        int                 // Columns of indentation before the prompt
	Options       map[flags.Flag]bool // Overrides for this example only
	GlobalOptions map[flags.Flag]bool // Overrides that persist to later examples of the same DocTest
}

// NewExample builds an Example with normalized source and want.
func NewExample(source, want string, lineno, indent int, options, globalOptions map[flags.Flag]bool) *Example {
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	if want != "" && !strings.HasSuffix(want, "\n") {
		want += "\n"
	}
	if options == nil {
		options = map[flags.Flag]bool{}
	}
	if globalOptions == nil {
		globalOptions = map[flags.Flag]bool{}
	}
	return &Example{
		Source:        source,
		Want:          want,
		Lineno:        lineno,
		Indent:        indent,
		Options:       options,
		GlobalOptions: globalOptions,
	}
}

// Equal reports whether two examples hold the same content and options.
func (e *Example) Equal(other *Example) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Source == other.Source &&
		e.Want == other.Want &&
		e.Lineno == other.Lineno &&
		e.Indent == other.Indent &&
		sameOptions(e.Options, other.Options) &&
		sameOptions(e.GlobalOptions, other.GlobalOptions)
}

func sameOptions(a, b map[flags.Flag]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// Chunk is one element of a parsed doctest: either literal text or an Example.
type Chunk struct {
	Text    string
	Example *Example
}

// IsExample reports whether the chunk holds an Example.
func (c Chunk) IsExample() bool {
	return c.Example != nil
}

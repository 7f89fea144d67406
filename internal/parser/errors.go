package parser

import (
	"errors"
	"fmt"
)

// ErrInvalidOption is wrapped by ParseErrors caused by a bad directive.
var ErrInvalidOption = errors.New("invalid option directive")

// ParseError reports malformed doctest text. It is always fatal for the
// text being parsed.
type ParseError struct {
	Name   string // Name of the doctest being parsed
	Lineno int    // One-based line number within the doctest
	Msg    string // What is wrong with the line
	Line   string // The offending line or source
	Err    error  // Underlying cause, if any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d of the doctest for %s %s: %q", e.Lineno, e.Name, e.Msg, e.Line)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

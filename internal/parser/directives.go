package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/harrison/doctest/internal/flags"
)

// directiveRe matches the body of a comment such as
// "doctest: +ELLIPSIS, -!SKIP".
var directiveRe = regexp.MustCompile(`^\s*doctest:\s*([^'"]*)$`)

// findOptions extracts local and global flag overrides from the directive
// comments in source.
func (p *Parser) findOptions(source, name string, lineno int) (map[flags.Flag]bool, map[flags.Flag]bool, error) {
	local := map[flags.Flag]bool{}
	global := map[flags.Flag]bool{}

	for _, comment := range p.syntax.FindComments(source) {
		m := directiveRe.FindStringSubmatch(comment)
		if m == nil {
			continue
		}
		for _, option := range strings.Fields(strings.ReplaceAll(m[1], ",", " ")) {
			flag, enable, isGlobal, err := p.parseOption(option)
			if err != nil {
				return nil, nil, &ParseError{
					Name:   name,
					Lineno: lineno + 1,
					Msg:    fmt.Sprintf("has an invalid option %q", option),
					Line:   strings.TrimSuffix(source, "\n"),
					Err:    err,
				}
			}
			if isGlobal {
				global[flag] = enable
			} else {
				local[flag] = enable
			}
		}
	}
	return local, global, nil
}

// parseOption decodes one "(+|-)[!]NAME" token.
func (p *Parser) parseOption(option string) (flags.Flag, bool, bool, error) {
	if len(option) < 2 {
		return 0, false, false, fmt.Errorf("%w: %q is too short", ErrInvalidOption, option)
	}

	var enable bool
	switch option[0] {
	case '+':
		enable = true
	case '-':
		enable = false
	default:
		return 0, false, false, fmt.Errorf("%w: %q must start with + or -", ErrInvalidOption, option)
	}

	flagName := option[1:]
	isGlobal := strings.HasPrefix(flagName, "!")
	if isGlobal {
		flagName = flagName[1:]
	}

	flag, ok := p.registry.Lookup(flagName)
	if !ok {
		return 0, false, false, fmt.Errorf("%w: unknown flag %q", ErrInvalidOption, flagName)
	}
	return flag, enable, isGlobal, nil
}

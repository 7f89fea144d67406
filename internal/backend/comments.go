package backend

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// CommentFinder returns a function that lexes source with the named chroma
// lexer and yields every comment starting with prefix, with the prefix
// removed. Trailing line breaks are not part of the comment.
func CommentFinder(lexerName, prefix string) func(source string) []string {
	lexer := lexers.Get(lexerName)
	return func(source string) []string {
		if lexer == nil {
			return nil
		}
		it, err := lexer.Tokenise(nil, source)
		if err != nil {
			return nil
		}

		var comments []string
		for _, tok := range it.Tokens() {
			if !tok.Type.InCategory(chroma.Comment) {
				continue
			}
			value := strings.TrimRight(tok.Value, "\r\n")
			if strings.HasPrefix(value, prefix) {
				comments = append(comments, value[len(prefix):])
			}
		}
		return comments
	}
}

// StripComments removes every comment token from source, as lexed by the
// named chroma lexer. Source is returned unchanged if it cannot be lexed.
func StripComments(lexerName, source string) string {
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		return source
	}
	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var b strings.Builder
	for _, tok := range it.Tokens() {
		if tok.Type.InCategory(chroma.Comment) {
			continue
		}
		b.WriteString(tok.Value)
	}
	return b.String()
}

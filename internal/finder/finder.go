// Package finder turns doctest files into DocTests, one per language whose
// prompts appear in the file.
package finder

import (
	"fmt"
	"os"

	"github.com/harrison/doctest/internal/backend"
	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/models"
	"github.com/harrison/doctest/internal/parser"
)

// Options configure Find.
type Options struct {
	Languages    []string        // Backend names to parse with (empty = every available backend)
	Markdown     bool            // Parse only the code blocks of Markdown files
	ExcludeEmpty bool            // Drop DocTests without examples
	Globs        map[string]any  // Initial namespace of every DocTest
	Flags        *flags.Registry // Resolves directive names (nil = flags.Default())
}

// Find parses the file at path once per selected backend. The returned
// backends run the DocTest at the same index.
func Find(path string, registry *backend.Registry, opts Options) ([]*models.DocTest, []backend.Backend, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read doctest file: %w", err)
	}
	text := parser.NormalizeNewlines(string(content))
	if opts.Markdown && IsMarkdown(path) {
		text = MarkdownText([]byte(text))
	}

	backends, err := registry.Select(opts.Languages)
	if err != nil {
		return nil, nil, err
	}

	var parserOpts []parser.Option
	if opts.Flags != nil {
		parserOpts = append(parserOpts, parser.WithRegistry(opts.Flags))
	}

	var tests []*models.DocTest
	var used []backend.Backend
	for _, b := range backends {
		test, err := parser.New(b, parserOpts...).GetDocTest(text, opts.Globs, path, path, 0)
		if err != nil {
			return nil, nil, err
		}
		if opts.ExcludeEmpty && len(test.Examples) == 0 {
			continue
		}
		tests = append(tests, test)
		used = append(used, b)
	}
	return tests, used, nil
}

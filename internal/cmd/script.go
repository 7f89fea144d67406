package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/doctest/internal/finder"
	"github.com/harrison/doctest/internal/parser"
)

// NewScriptCommand creates the script command
func NewScriptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script <file>",
		Short: "Convert a doctest file into a runnable script",
		Long: `Convert the examples of a doctest file into a script for one language.

Example sources are copied verbatim. Expected output and the surrounding
text are turned into comments. Use "-" to read from standard input.

Examples:
  doctest script --language sh README.md > readme.sh
  doctest script -l go guide.md`,
		Args: cobra.ExactArgs(1),
		RunE: scriptCommand,
	}

	cmd.Flags().StringP("language", "l", "go", "Language whose prompts introduce examples")

	return cmd
}

func scriptCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	language, _ := cmd.Flags().GetString("language")

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	b, ok := registry.Get(language)
	if !ok {
		return fmt.Errorf("unknown language %q (known: %v)", language, registry.Names())
	}

	path := args[0]
	var content []byte
	if path == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := parser.NormalizeNewlines(string(content))
	if cfg.Markdown && finder.IsMarkdown(path) {
		text = finder.MarkdownText([]byte(text))
	}

	script, err := parser.New(b).ScriptFromExamples(text, path)
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), script)
	return err
}

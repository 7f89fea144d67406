package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for doctest
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctest",
		Short: "Run the examples embedded in documentation",
		Long: `Doctest finds interactive examples in text files, runs them with a
language backend and compares what they print with the expected output
written below them.

Examples are introduced by the prompts of their language: ">>>" and "..."
for Go, "$" and ">" for sh, "cmd>" and "?" for cmd. A file is parsed once
per available language.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: nearest .doctest/config.yaml)")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewScriptCommand())
	cmd.AddCommand(NewFlagsCommand())
	cmd.AddCommand(NewLanguagesCommand())
	cmd.AddCommand(NewShellHelperCommand())

	return cmd
}

// Execute runs the root command and returns the process exit status. Test
// failures are already described by the summary, so only other errors are
// printed.
func Execute() int {
	err := NewRootCommand().Execute()
	if err == nil {
		return 0
	}
	if !errors.Is(err, ErrTestsFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return 1
}

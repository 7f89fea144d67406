package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/doctest/internal/shell"
)

// exit ends the process with the helper's status.
var exit = os.Exit

// NewShellHelperCommand creates the hidden command that generated shell
// scripts call back into: wait steps, output formatting and syntax error
// replacement.
func NewShellHelperCommand() *cobra.Command {
	return &cobra.Command{
		Use:                shell.HelperCommand + " <command> [args]...",
		Short:              "Internal helper invoked by generated shell scripts",
		Hidden:             true,
		DisableFlagParsing: true,
		Run: func(cmd *cobra.Command, args []string) {
			exit(shell.RunHelper(args, cmd.OutOrStdout(), cmd.ErrOrStderr()))
		},
	}
}

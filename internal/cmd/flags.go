package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/doctest/internal/flags"
)

// NewFlagsCommand creates the flags command
func NewFlagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "flags",
		Short: "List the option flags usable in directives",
		Long: `List the option flags that may be named in "doctest:" directives, in
--option and in the option_flags setting. Flags enabled by the
configuration are marked with "*".

GLOB and CRAM_GLOB patterns support "*" and "?" only; bracket classes
such as [a-z] are matched literally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			registry := flags.Default()
			enabled, err := registry.Parse(cfg.OptionFlags)
			if err != nil {
				return fmt.Errorf("invalid option_flags: %w", err)
			}

			for _, name := range registry.Names() {
				f, _ := registry.Lookup(name)
				mark := " "
				if enabled.Has(f) {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "\nGLOB patterns support * and ? only; [seq] classes match literally.")
			return nil
		},
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/doctest/internal/backend"
	"github.com/harrison/doctest/internal/config"
	"github.com/harrison/doctest/internal/languages"
)

// newRegistry builds the language backends for cfg.
func newRegistry(cfg *config.Config) (*backend.Registry, error) {
	return languages.Default(cfg.ShellOptions())
}

// NewLanguagesCommand creates the languages command
func NewLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the language backends and their prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			registry, err := newRegistry(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-6s %-6s %-6s %-8s %s\n", "NAME", "PS1", "PS2", "COMMENT", "AVAILABLE")
			for _, b := range registry.All() {
				ps1, ps2 := b.Prompts()
				available := "no"
				if b.Available() {
					available = "yes"
				}
				fmt.Fprintf(out, "%-6s %-6s %-6s %-8s %s\n", b.Name(), ps1, ps2, b.CommentPrefix(), available)
			}
			return nil
		},
	}
}

// Package languages assembles the built-in language backends.
package languages

import (
	"github.com/harrison/doctest/internal/backend"
	"github.com/harrison/doctest/internal/backend/golang"
	"github.com/harrison/doctest/internal/shell"
)

// Default returns a registry holding the go, sh and cmd backends, in that
// order. The shell options apply to both shell backends.
func Default(opts shell.Options) (*backend.Registry, error) {
	return backend.NewRegistry(
		golang.New(),
		shell.NewSh(opts),
		shell.NewCmd(opts),
	)
}

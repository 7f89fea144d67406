// Package backend defines the language backend contract: prompt syntax,
// comment scanning, and the Executor that runs the examples of one DocTest.
package backend

import (
	"context"

	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/models"
)

// CheckFunc compares expected and actual output under the given flags.
type CheckFunc func(want, got string, optionflags flags.Flag) bool

// Result is the outcome of executing one example.
type Result interface {
	// Check classifies the result against the example's expected output.
	Check(example *models.Example, check CheckFunc, optionflags flags.Flag) models.Outcome
	// String returns the actual output, as shown in failure reports.
	String() string
	// Fault returns the description of an unexpected fault, or "".
	Fault() string
}

// Executor runs the examples of exactly one DocTest.
//
// Enter acquires resources, Execute is called with strictly increasing
// indexes (some may be skipped), and Exit releases everything. Exit must be
// called once Enter has been called, even when Enter or Execute failed.
type Executor interface {
	Enter(ctx context.Context) error
	Execute(ctx context.Context, index int) (Result, error)
	Exit() error
}

// Backend is the capability set of one language.
type Backend interface {
	// Name identifies the backend, e.g. "go" or "sh"
	Name() string
	// Prompts returns the primary and continuation prompts
	Prompts() (ps1, ps2 string)
	// CommentPrefix starts a line comment
	CommentPrefix() string
	// FindComments returns every comment in source starting with
	// CommentPrefix, with the prefix removed
	FindComments(source string) []string
	// Available reports whether the backend can run on this machine
	Available() bool
	// NewExecutor creates an executor scoped to test
	NewExecutor(test *models.DocTest) (Executor, error)
}

// Output is a Result holding captured output only.
type Output struct {
	Stdout string
}

// Check compares the captured output with the expected output.
func (o Output) Check(example *models.Example, check CheckFunc, optionflags flags.Flag) models.Outcome {
	if check(example.Want, o.Stdout, optionflags) {
		return models.Success
	}
	return models.Failure
}

func (o Output) String() string { return o.Stdout }

// Fault always returns "" because plain output never faults.
func (o Output) Fault() string { return "" }

package runner

import (
	"errors"
	"fmt"

	"github.com/harrison/doctest/internal/models"
)

// NoExample marks a RunError that is not tied to a single example.
const NoExample = -1

// RunError is a fatal error that aborted the run of one DocTest.
type RunError struct {
	Test    string // Name of the DocTest
	Example int    // Index of the example being executed, or NoExample
	Err     error  // Underlying error
}

func (e *RunError) Error() string {
	if e.Example == NoExample {
		return fmt.Sprintf("doctest %s: %v", e.Test, e.Err)
	}
	return fmt.Sprintf("doctest %s, example %d: %v", e.Test, e.Example, e.Err)
}

// Unwrap returns the underlying error.
func (e *RunError) Unwrap() error {
	return e.Err
}

// FailureError is returned by the fail-fast reporter when an example's
// output does not match.
type FailureError struct {
	Test    *models.DocTest
	Example *models.Example
	Got     string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s: example at line %d failed", e.Test.Name, e.Example.Lineno+1)
}

// UnexpectedFaultError is returned by the fail-fast reporter when an example
// faults without expecting to.
type UnexpectedFaultError struct {
	Test    *models.DocTest
	Example *models.Example
	Fault   string
}

func (e *UnexpectedFaultError) Error() string {
	return fmt.Sprintf("%s: example at line %d raised %q", e.Test.Name, e.Example.Lineno+1, e.Fault)
}

// IsFailure reports whether err carries a FailureError or an
// UnexpectedFaultError.
func IsFailure(err error) bool {
	var failure *FailureError
	var fault *UnexpectedFaultError
	return errors.As(err, &failure) || errors.As(err, &fault)
}

package models

import "fmt"

// Outcome classifies a single attempted example.
type Outcome int

// Example outcome constants
const (
	Success Outcome = iota // Output matched the expected output
	Failure                // Output did not match
	Boom                   // Execution faulted unexpectedly
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case Boom:
		return "BOOM"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// TestResults is the (failed, attempted) pair produced by a run.
type TestResults struct {
	Failed    int `json:"failed" yaml:"failed"`       // Examples that failed or faulted
	Attempted int `json:"attempted" yaml:"attempted"` // Examples that were executed
}

// Passed returns the number of attempted examples that succeeded.
func (r TestResults) Passed() int {
	return r.Attempted - r.Failed
}

// Add returns the element-wise sum of r and other.
func (r TestResults) Add(other TestResults) TestResults {
	return TestResults{Failed: r.Failed + other.Failed, Attempted: r.Attempted + other.Attempted}
}

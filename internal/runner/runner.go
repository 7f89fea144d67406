// Package runner executes DocTests example by example and accumulates
// their results.
//
// For every example the effective option flags are computed as
//
//	effective = base | globals   then the example's local options on top
//
// where globals accumulates the global directives of every example seen so
// far, skipped ones included. Examples whose effective flags include SKIP
// are neither executed nor counted.
package runner

import (
	"context"
	"errors"
	"maps"
	"os"
	"sync"

	"github.com/harrison/doctest/internal/backend"
	"github.com/harrison/doctest/internal/checker"
	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/models"
)

// Options configure a Runner.
type Options struct {
	Checker   *checker.OutputChecker // Output checker (nil = checker.New())
	Flags     flags.Flag             // Base option flags
	Reporter  Reporter               // Progress reporter (nil = non-verbose TextReporter on stdout)
	KeepGlobs bool                   // Leave DocTest globs intact after a successful run
}

// Runner runs DocTests and records (failed, attempted) per DocTest name.
type Runner struct {
	checker  *checker.OutputChecker
	flags    flags.Flag
	reporter Reporter
	keep     bool

	mu      sync.Mutex
	totals  models.TestResults
	records map[string]models.TestResults
}

// New creates a Runner.
func New(opts Options) *Runner {
	r := &Runner{
		checker:  opts.Checker,
		flags:    opts.Flags,
		reporter: opts.Reporter,
		keep:     opts.KeepGlobs,
		records:  make(map[string]models.TestResults),
	}
	if r.checker == nil {
		r.checker = checker.New()
	}
	if r.reporter == nil {
		r.reporter = NewTextReporter(os.Stdout, false)
	}
	return r
}

// Run executes the examples of test with b. The executor is always released
// and the counts are always recorded, even when the run is aborted. Globs
// are cleared after a run that returned no error, unless KeepGlobs is set.
func (r *Runner) Run(ctx context.Context, test *models.DocTest, b backend.Backend) (results models.TestResults, err error) {
	executor, err := b.NewExecutor(test)
	if err != nil {
		return results, &RunError{Test: test.Name, Example: NoExample, Err: err}
	}

	defer func() {
		if exitErr := executor.Exit(); exitErr != nil {
			err = errors.Join(err, &RunError{Test: test.Name, Example: NoExample, Err: exitErr})
		}
		if err == nil && !r.keep {
			test.ClearGlobs()
		}
		r.record(test.Name, results)
	}()

	if err := executor.Enter(ctx); err != nil {
		return results, &RunError{Test: test.Name, Example: NoExample, Err: err}
	}
	return r.run(ctx, test, executor)
}

func (r *Runner) run(ctx context.Context, test *models.DocTest, executor backend.Executor) (models.TestResults, error) {
	var results models.TestResults
	var globals flags.Flag

	for i, example := range test.Examples {
		if err := ctx.Err(); err != nil {
			return results, &RunError{Test: test.Name, Example: i, Err: err}
		}

		for f, enable := range example.GlobalOptions {
			globals = globals.Apply(f, enable)
		}
		optionflags := r.flags.With(globals)
		for f, enable := range example.Options {
			optionflags = optionflags.Apply(f, enable)
		}
		if optionflags.Has(flags.Skip) {
			continue
		}

		quiet := optionflags.Has(flags.ReportOnlyFirstFailure) && results.Failed > 0

		results.Attempted++
		if !quiet {
			if err := r.reporter.ReportStart(optionflags, test, example); err != nil {
				return results, err
			}
		}

		res, err := executor.Execute(ctx, i)
		if err != nil {
			results.Failed++
			return results, &RunError{Test: test.Name, Example: i, Err: err}
		}

		var reportErr error
		switch res.Check(example, r.checker.Check, optionflags) {
		case models.Success:
			if !quiet {
				reportErr = r.reporter.ReportSuccess(optionflags, test, example, res)
			}
		case models.Failure:
			results.Failed++
			if !quiet {
				reportErr = r.reporter.ReportFailure(optionflags, test, example, res)
			}
		case models.Boom:
			results.Failed++
			if !quiet {
				reportErr = r.reporter.ReportUnexpectedFault(optionflags, test, example, res)
			}
		}
		if reportErr != nil {
			return results, reportErr
		}
	}
	return results, nil
}

func (r *Runner) record(name string, results models.TestResults) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[name] = r.records[name].Add(results)
	r.totals = r.totals.Add(results)
}

// Totals returns the aggregate of every run so far.
func (r *Runner) Totals() models.TestResults {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals
}

// Records returns a copy of the per-name results.
func (r *Runner) Records() map[string]models.TestResults {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.records)
}

// Merge adds the records and totals of other, summing results recorded
// under the same name.
func (r *Runner) Merge(other *Runner) {
	records := other.Records()
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, results := range records {
		r.records[name] = r.records[name].Add(results)
		r.totals = r.totals.Add(results)
	}
}

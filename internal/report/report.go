// Package report records doctest runs in a JSON file shared by concurrent
// doctest processes.
//
// The report file holds a list of runs. Append reads it, adds one run and
// writes it back while holding an exclusive lock on "<path>.lock"; the write
// goes through a temporary file and a rename, so readers never see a partial
// report.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/harrison/doctest/internal/models"
)

// Run is the outcome of one doctest invocation.
type Run struct {
	ID       string             `json:"id"`
	Started  time.Time          `json:"started"`
	Duration string             `json:"duration"`
	Flags    string             `json:"flags,omitempty"`
	Tests    []Test             `json:"tests"`
	Totals   models.TestResults `json:"totals"`
}

// Test is the outcome of one DocTest name.
type Test struct {
	Name    string             `json:"name"`
	Results models.TestResults `json:"results"`
}

// Report is the content of a report file.
type Report struct {
	Runs []Run `json:"runs"`
}

// NewRun builds a run with a fresh id from per-name results. Tests are
// sorted by name.
func NewRun(started time.Time, elapsed time.Duration, optionflags string, records map[string]models.TestResults) Run {
	run := Run{
		ID:       uuid.NewString(),
		Started:  started.UTC(),
		Duration: elapsed.Round(time.Millisecond).String(),
		Flags:    optionflags,
		Tests:    make([]Test, 0, len(records)),
	}
	for name, res := range records {
		run.Tests = append(run.Tests, Test{Name: name, Results: res})
		run.Totals = run.Totals.Add(res)
	}
	sort.Slice(run.Tests, func(i, j int) bool { return run.Tests[i].Name < run.Tests[j].Name })
	return run
}

// Read loads the report at path. A missing file is an empty report.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Report{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &r, nil
}

// Append adds run to the report at path under the report lock.
func Append(path string, run Run) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock report %s: %w", path, err)
	}
	// The lock file is never removed.
	defer lock.Unlock()

	r, err := Read(path)
	if err != nil {
		return err
	}
	r.Runs = append(r.Runs, run)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return atomicWrite(path, append(data, '\n'))
}

// atomicWrite replaces path with data through a temporary file in the same
// directory.
func atomicWrite(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync report: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

package runner

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Summarize writes a summary of every DocTest run so far. Without verbose,
// only failures are listed. It returns an error if the per-name records do
// not add up to the runner totals.
func (r *Runner) Summarize(w io.Writer, verbose bool) error {
	records := r.Records()
	totals := r.Totals()

	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)

	var notests, passed, failed []string
	var totalAttempted, totalFailed int
	for _, name := range names {
		res := records[name]
		if res.Failed > res.Attempted {
			return fmt.Errorf("%s: %d failures out of %d attempts", name, res.Failed, res.Attempted)
		}
		totalAttempted += res.Attempted
		totalFailed += res.Failed
		switch {
		case res.Attempted == 0:
			notests = append(notests, name)
		case res.Failed == 0:
			passed = append(passed, name)
		default:
			failed = append(failed, name)
		}
	}

	var b strings.Builder
	if verbose {
		if len(notests) > 0 {
			fmt.Fprintf(&b, "%d items had no tests:\n", len(notests))
			for _, name := range notests {
				fmt.Fprintf(&b, "    %s\n", name)
			}
		}
		if len(passed) > 0 {
			fmt.Fprintf(&b, "%d items passed all tests:\n", len(passed))
			for _, name := range passed {
				fmt.Fprintf(&b, " %3d tests in %s\n", records[name].Attempted, name)
			}
		}
	}
	if len(failed) > 0 {
		b.WriteString(Divider + "\n")
		fmt.Fprintf(&b, "%d items had failures:\n", len(failed))
		for _, name := range failed {
			fmt.Fprintf(&b, " %3d of %3d in %s\n", records[name].Failed, records[name].Attempted, name)
		}
	}
	if verbose {
		fmt.Fprintf(&b, "%d tests in %d items.\n", totalAttempted, len(records))
		fmt.Fprintf(&b, "%d passed and %d failed.\n", totalAttempted-totalFailed, totalFailed)
	}
	if totalFailed > 0 {
		fmt.Fprintf(&b, "***Test Failed*** %d failures.\n", totalFailed)
	} else if verbose {
		b.WriteString("Test passed.\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if totalAttempted != totals.Attempted || totalFailed != totals.Failed {
		return fmt.Errorf("summary of %d/%d (failed/attempted) does not match runner totals %d/%d",
			totalFailed, totalAttempted, totals.Failed, totals.Attempted)
	}
	return nil
}

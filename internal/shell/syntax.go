package shell

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// SyntaxChecker validates one shell fragment without running it.
type SyntaxChecker interface {
	Check(ctx context.Context, source string) (output string, exitCode int, err error)
}

// NoExecChecker runs "<Shell> -n" with the fragment on stdin.
type NoExecChecker struct {
	Shell string // Shell binary (empty = "sh")
}

// Check returns the checker's combined output and exit status. err is only
// set when the checker itself could not be run.
func (c NoExecChecker) Check(ctx context.Context, source string) (string, int, error) {
	shell := c.Shell
	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-n")
	cmd.Stdin = strings.NewReader(source)

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(output), exitErr.ExitCode(), nil
		}
		return "", 0, fmt.Errorf("failed to run %s -n: %w", shell, err)
	}
	return string(output), 0, nil
}

// preflight returns source, or a print-helper invocation replaying the
// checker's complaint when source does not parse.
func preflight(ctx context.Context, checker SyntaxChecker, source string, helper []string, quote func(string) string) (string, bool, error) {
	if checker == nil {
		return source, false, nil
	}
	output, code, err := checker.Check(ctx, source)
	if err != nil {
		return "", false, err
	}
	if code == 0 {
		return source, false, nil
	}

	args := append(append([]string{}, helper...), "print", hex.EncodeToString([]byte(output)), strconv.Itoa(code))
	return joinQuoted(args, quote) + "\n", true, nil
}

func joinQuoted(args []string, quote func(string) string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quote(a)
	}
	return strings.Join(quoted, " ")
}

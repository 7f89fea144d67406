package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/harrison/doctest/internal/backend"
	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/logger"
	"github.com/harrison/doctest/internal/models"
)

// Logger receives protocol events.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
}

// Options configure a shell backend.
type Options struct {
	HelperPath    string        // Program invoked as "<HelperPath> shell-helper" (empty = this executable)
	Signal        string        // SignalFile (default) or SignalPipe
	NoSyntaxCheck bool          // Skip the "sh -n" preflight
	Checker       SyntaxChecker // Overrides the default preflight checker
	WorkDir       string        // Parent of the per-DocTest temp directories (empty = os.TempDir())
	Stderr        io.Writer     // Receives the shell's own stderr (nil = discarded)
	Logger        Logger
}

// Backend runs examples through a shell script.
type Backend struct {
	name          string
	ps1, ps2      string
	comment       string
	dialect       dialect
	stripComments bool
	checker       SyntaxChecker
	findComments  func(string) []string
	opts          Options
}

// NewSh creates the POSIX shell backend with "$" and ">" prompts.
func NewSh(opts Options) *Backend {
	b := &Backend{
		name:         "sh",
		ps1:          "$",
		ps2:          ">",
		comment:      "#",
		dialect:      shDialect,
		findComments: backend.CommentFinder("bash", "#"),
		opts:         normalize(opts),
	}
	if !opts.NoSyntaxCheck {
		b.checker = opts.Checker
		if b.checker == nil {
			b.checker = NoExecChecker{Shell: "sh"}
		}
	}
	return b
}

// NewCmd creates the cmd.exe backend with "cmd>" and "?" prompts. cmd has
// no inline comments, so comments are stripped from sources.
func NewCmd(opts Options) *Backend {
	return &Backend{
		name:          "cmd",
		ps1:           "cmd>",
		ps2:           "?",
		comment:       "#",
		dialect:       cmdDialect,
		stripComments: true,
		findComments:  backend.CommentFinder("bash", "#"),
		opts:          normalize(opts),
	}
}

func normalize(opts Options) Options {
	if opts.Signal == "" {
		opts.Signal = SignalFile
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	return opts
}

func (b *Backend) Name() string { return b.name }

func (b *Backend) Prompts() (string, string) { return b.ps1, b.ps2 }

func (b *Backend) CommentPrefix() string { return b.comment }

func (b *Backend) FindComments(source string) []string { return b.findComments(source) }

// Available reports whether the shell is on PATH.
func (b *Backend) Available() bool {
	_, err := exec.LookPath(b.dialect.shell[0])
	return err == nil
}

// NewExecutor creates an executor for test. Nothing is started until Enter.
func (b *Backend) NewExecutor(test *models.DocTest) (backend.Executor, error) {
	if b.opts.Signal != SignalFile && b.opts.Signal != SignalPipe {
		return nil, fmt.Errorf("unknown signal strategy %q", b.opts.Signal)
	}
	if b.opts.Signal == SignalPipe && b.name == "cmd" {
		return nil, fmt.Errorf("signal strategy %q is not supported by %s", SignalPipe, b.name)
	}
	return &Executor{backend: b, test: test, log: b.opts.Logger}, nil
}

// Executor drives one shell process through the examples of one DocTest.
type Executor struct {
	backend *Backend
	test    *models.DocTest
	log     Logger

	dir    string
	signal Signaler
	cmd    *exec.Cmd
	driver *driver
}

// Enter writes the script and starts the shell. DocTests without examples
// start nothing.
func (e *Executor) Enter(ctx context.Context) error {
	if len(e.test.Examples) == 0 {
		return nil
	}

	script, err := e.Script(ctx)
	if err != nil {
		return err
	}

	scriptPath := filepath.Join(e.dir, "script"+e.backend.dialect.ext)
	if err := os.WriteFile(scriptPath, []byte(script), 0o600); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}
	e.log.LogTrace(fmt.Sprintf("%s script for %s written to %s", e.backend.name, e.test.Name, scriptPath))

	args := append(append([]string{}, e.backend.dialect.shell[1:]...), scriptPath)
	cmd := exec.Command(e.backend.dialect.shell[0], args...)
	cmd.Dir = filepath.Join(e.dir, "work")
	cmd.Stderr = e.backend.opts.Stderr
	e.signal.Attach(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", e.backend.name, err)
	}
	e.cmd = cmd
	e.driver = newDriver(e.signal, stdout, e.log)
	e.log.LogDebug(fmt.Sprintf("started %s for %s (pid %d, %d examples)", e.backend.name, e.test.Name, cmd.Process.Pid, len(e.test.Examples)))
	return nil
}

// Script creates the temporary directory and signaler and returns the
// script text. Enter calls it; it is exported for inspection.
func (e *Executor) Script(ctx context.Context) (string, error) {
	if len(e.test.Examples) == 0 {
		return "", ErrNoExamples
	}
	if e.dir == "" {
		if err := e.makeDir(); err != nil {
			return "", err
		}
	}
	if e.signal == nil {
		signal, err := e.newSignaler()
		if err != nil {
			return "", err
		}
		e.signal = signal
	}

	helper, err := e.helper()
	if err != nil {
		return "", err
	}

	sources := make([]string, len(e.test.Examples))
	for i, ex := range e.test.Examples {
		source := ex.Source
		if e.backend.stripComments {
			source = backend.StripComments("bash", source)
		}
		source, replaced, err := preflight(ctx, e.backend.checker, source, helper, e.backend.dialect.quote)
		if err != nil {
			return "", fmt.Errorf("syntax check of example %d failed: %w", i, err)
		}
		if replaced {
			e.log.LogDebug(fmt.Sprintf("example %d of %s does not parse, replaying the checker's output instead", i, e.test.Name))
		}
		sources[i] = source
	}

	return buildScript(e.backend.dialect, helper, e.signal, sources, filepath.Join(e.dir, "out")), nil
}

func (e *Executor) makeDir() error {
	parent := e.backend.opts.WorkDir
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, "doctest-"+uuid.NewString())
	if err := os.MkdirAll(filepath.Join(dir, "work"), 0o700); err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	e.dir = dir
	return nil
}

func (e *Executor) newSignaler() (Signaler, error) {
	if e.backend.opts.Signal == SignalPipe {
		return NewPipeSignaler()
	}
	return NewFileSignaler(filepath.Join(e.dir, "ipc"))
}

func (e *Executor) helper() ([]string, error) {
	path := e.backend.opts.HelperPath
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate helper program: %w", err)
		}
		path = exe
	}
	return []string{path, HelperCommand}, nil
}

// Execute releases example index and returns its combined stdout and
// stderr. Cancelling ctx kills the shell.
//
// Examples share one shell, so an example that ends it (exit, set -e) still
// reports the output it captured, and every later example returns a fault
// result instead of running.
func (e *Executor) Execute(ctx context.Context, index int) (backend.Result, error) {
	if e.driver == nil {
		return nil, errors.New("executor not entered")
	}
	if index < 0 || index >= len(e.test.Examples) {
		return nil, fmt.Errorf("example index %d out of range [0, %d)", index, len(e.test.Examples))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.driver.exited {
		return exitedResult{}, nil
	}

	stop := context.AfterFunc(ctx, func() {
		_ = e.cmd.Process.Kill()
	})
	out, err := e.driver.execute(index)
	stop()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrShellExited) {
			return e.exitedDuring(index), nil
		}
		return nil, fmt.Errorf("example %d of %s: %w", index, e.test.Name, err)
	}
	return backend.Output{Stdout: out}, nil
}

// exitedDuring returns the result of example index after the shell
// stopped. The capture file holds the output of the example it was running.
func (e *Executor) exitedDuring(index int) backend.Result {
	if e.driver.next != index+1 {
		return exitedResult{}
	}
	e.log.LogDebug(fmt.Sprintf("%s for %s exited during example %d", e.backend.name, e.test.Name, index))
	out, err := os.ReadFile(filepath.Join(e.dir, "out"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.log.LogDebug(fmt.Sprintf("failed to read output of example %d: %v", index, err))
	}
	return backend.Output{Stdout: string(out)}
}

// exitedResult stands in for an example the shell did not live to run.
type exitedResult struct{}

func (exitedResult) Check(*models.Example, backend.CheckFunc, flags.Flag) models.Outcome {
	return models.Boom
}

func (exitedResult) String() string { return "" }

func (exitedResult) Fault() string { return "shell exited before this example ran\n" }

// Exit drains the remaining wait steps, waits for the shell and removes the
// temporary directory. Every step runs even if an earlier one failed.
func (e *Executor) Exit() error {
	var errs []error

	if e.driver != nil && !e.driver.exited {
		if err := e.driver.skipUntil(len(e.test.Examples)); err != nil && !errors.Is(err, ErrShellExited) {
			errs = append(errs, err)
			_ = e.cmd.Process.Kill()
		}
	}
	// Closing a pipe signaler turns any wait step still blocked into a skip.
	if e.signal != nil {
		if err := e.signal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close signaler: %w", err))
		}
	}
	if e.cmd != nil {
		if err := e.cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				errs = append(errs, fmt.Errorf("failed to wait for %s: %w", e.backend.name, err))
			} else {
				e.log.LogDebug(fmt.Sprintf("%s for %s exited with status %d", e.backend.name, e.test.Name, exitErr.ExitCode()))
			}
		}
	}
	if e.dir != "" {
		if err := os.RemoveAll(e.dir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", e.dir, err))
		}
		e.log.LogTrace(fmt.Sprintf("removed %s", e.dir))
	}

	e.cmd, e.driver, e.signal, e.dir = nil, nil, nil, ""
	return errors.Join(errs...)
}

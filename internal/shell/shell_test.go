package shell

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harrison/doctest/internal/checker"
	"github.com/harrison/doctest/internal/logger"
	"github.com/harrison/doctest/internal/models"
	"github.com/harrison/doctest/internal/parser"
)

// TestMain lets the test binary act as the helper program.
func TestMain(m *testing.M) {
	if len(os.Args) > 1 && os.Args[1] == HelperCommand {
		os.Exit(RunHelper(os.Args[2:], os.Stdout, os.Stderr))
	}
	// The bash lexer's regexp2 timeout clock idles for a second after use.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/dlclark/regexp2.runClock"))
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func newShTest(t *testing.T, b *Backend, text string) *models.DocTest {
	t.Helper()
	test, err := parser.New(b).GetDocTest(text, nil, "shell", "", models.NoLineno)
	require.NoError(t, err)
	return test
}

func TestBackendSyntax(t *testing.T) {
	sh := NewSh(Options{})
	assert.Equal(t, "sh", sh.Name())
	ps1, ps2 := sh.Prompts()
	assert.Equal(t, "$", ps1)
	assert.Equal(t, ">", ps2)
	assert.Equal(t, []string{" doctest: +SKIP"}, sh.FindComments("echo hi # doctest: +SKIP\n"))

	cmd := NewCmd(Options{})
	assert.Equal(t, "cmd", cmd.Name())
	ps1, ps2 = cmd.Prompts()
	assert.Equal(t, "cmd>", ps1)
	assert.Equal(t, "?", ps2)
}

func TestBackendDefaultsToNoOpLogger(t *testing.T) {
	assert.IsType(t, &logger.NoOpLogger{}, NewSh(Options{}).opts.Logger)
	assert.IsType(t, &logger.NoOpLogger{}, NewCmd(Options{}).opts.Logger)

	console := logger.NewConsoleLogger(nil, "trace")
	assert.Same(t, console, NewSh(Options{Logger: console}).opts.Logger)
}

func TestNewExecutorValidatesSignal(t *testing.T) {
	test := models.NewDocTest(nil, nil, "t", "", 0, "")

	_, err := NewSh(Options{Signal: "carrier-pigeon"}).NewExecutor(test)
	assert.Error(t, err)

	_, err = NewCmd(Options{Signal: SignalPipe}).NewExecutor(test)
	assert.Error(t, err)
}

func TestEnterWithoutExamplesStartsNothing(t *testing.T) {
	dir := t.TempDir()
	b := NewSh(Options{WorkDir: dir})
	executor, err := b.NewExecutor(models.NewDocTest(nil, nil, "empty", "", 0, ""))
	require.NoError(t, err)

	require.NoError(t, executor.Enter(context.Background()))
	require.NoError(t, executor.Exit())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = executor.(*Executor).Script(context.Background())
	assert.ErrorIs(t, err, ErrNoExamples)
}

func TestCmdScriptStripsComments(t *testing.T) {
	dir := t.TempDir()
	b := NewCmd(Options{WorkDir: dir, HelperPath: "helper"})
	test := newShTest(t, b, "cmd> echo hi # greet\nhi\n")

	executor, err := b.NewExecutor(test)
	require.NoError(t, err)
	script, err := executor.(*Executor).Script(context.Background())
	require.NoError(t, err)
	defer func() { require.NoError(t, executor.Exit()) }()

	assert.Contains(t, script, "\necho hi \n))")
	assert.NotContains(t, script, "greet")
}

func TestShellSharesStateAcrossExamples(t *testing.T) {
	requireSh(t)
	for _, signal := range []string{SignalFile, SignalPipe} {
		t.Run(signal, func(t *testing.T) {
			dir := t.TempDir()
			b := NewSh(Options{WorkDir: dir, Signal: signal})
			test := newShTest(t, b, `$ echo hello
hello
$ x=42
$ echo "$x"
42
$ for i in 1 2; do
>   echo $i
> done
1
2
$ echo oops >&2
oops
`)
			require.Len(t, test.Examples, 5)

			executor, err := b.NewExecutor(test)
			require.NoError(t, err)
			ctx := context.Background()
			require.NoError(t, executor.Enter(ctx))

			c := checker.New()
			for i, ex := range test.Examples {
				res, err := executor.Execute(ctx, i)
				require.NoError(t, err)
				assert.Equal(t, models.Success, res.Check(ex, c.Check, 0), "example %d: got %q", i, res.String())
			}
			require.NoError(t, executor.Exit())

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "temporary directory is removed")
		})
	}
}

func TestShellSkippedExamplesDoNotRun(t *testing.T) {
	requireSh(t)
	b := NewSh(Options{WorkDir: t.TempDir()})
	test := newShTest(t, b, `$ echo a > f
$ rm f
$ cat f
a
$ touch never
`)
	executor, err := b.NewExecutor(test)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, executor.Enter(ctx))

	res, err := executor.Execute(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, res.String())

	res, err = executor.Execute(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "a\n", res.String())

	_, err = executor.Execute(ctx, 1)
	assert.Error(t, err, "released indexes cannot be revisited")

	require.NoError(t, executor.Exit())
}

func TestShellSyntaxErrorIsContained(t *testing.T) {
	requireSh(t)
	b := NewSh(Options{WorkDir: t.TempDir()})
	test := newShTest(t, b, `$ if then fi
$ echo after
after
`)
	executor, err := b.NewExecutor(test)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, executor.Enter(ctx))
	defer func() { require.NoError(t, executor.Exit()) }()

	res, err := executor.Execute(ctx, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(res.String()), "checker message is replayed")

	res, err = executor.Execute(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "after\n", res.String())
}

func TestShellExitKeepsOutputAndFaultsLaterExamples(t *testing.T) {
	requireSh(t)
	b := NewSh(Options{WorkDir: t.TempDir()})
	test := newShTest(t, b, `$ echo bye; exit 3
bye
$ echo never
never
`)
	executor, err := b.NewExecutor(test)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, executor.Enter(ctx))

	res, err := executor.Execute(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "bye\n", res.String())
	assert.Equal(t, models.Success, res.Check(test.Examples[0], checker.New().Check, 0))

	res, err = executor.Execute(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Boom, res.Check(test.Examples[1], checker.New().Check, 0))
	assert.Contains(t, res.Fault(), "shell exited")
	assert.NoError(t, executor.Exit())
}

func TestExecuteRequiresEnter(t *testing.T) {
	b := NewSh(Options{})
	executor, err := b.NewExecutor(newShTest(t, b, "$ echo hi\n"))
	require.NoError(t, err)
	_, err = executor.Execute(context.Background(), 0)
	assert.Error(t, err)
	assert.NoError(t, executor.Exit())
}

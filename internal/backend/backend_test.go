package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/models"
)

type stubBackend struct {
	name      string
	available bool
}

func (s stubBackend) Name() string { return s.name }
func (s stubBackend) Prompts() (string, string) { return "$", ">" }
func (s stubBackend) CommentPrefix() string { return "#" }
func (s stubBackend) FindComments(source string) []string { return nil }
func (s stubBackend) Available() bool { return s.available }
func (s stubBackend) NewExecutor(*models.DocTest) (Executor, error) {
	return nil, nil
}

func TestCommentFinderBash(t *testing.T) {
	find := CommentFinder("bash", "#")
	comments := find("echo '# not a comment' # doctest: +SKIP\n# second\n")
	assert.Equal(t, []string{" doctest: +SKIP", " second"}, comments)
}

func TestCommentFinderGo(t *testing.T) {
	find := CommentFinder("go", "//")
	comments := find("x := \"// nope\" // doctest: +ELLIPSIS\n/* block */\n")
	assert.Equal(t, []string{" doctest: +ELLIPSIS"}, comments)
}

func TestCommentFinderUnknownLexer(t *testing.T) {
	assert.Nil(t, CommentFinder("no-such-language", "#")("# x\n"))
}

func TestStripComments(t *testing.T) {
	assert.Equal(t, "echo hi \necho there\n", StripComments("bash", "echo hi # greet\necho there\n"))
	assert.Equal(t, "x\n", StripComments("no-such-language", "x\n"))
}

func TestOutputCheck(t *testing.T) {
	ex := models.NewExample("echo hi", "hi", 0, 0, nil, nil)
	exact := func(want, got string, _ flags.Flag) bool { return want == got }

	assert.Equal(t, models.Success, Output{Stdout: "hi\n"}.Check(ex, exact, 0))
	assert.Equal(t, models.Failure, Output{Stdout: "ho\n"}.Check(ex, exact, 0))
	assert.Equal(t, "ho\n", Output{Stdout: "ho\n"}.String())
	assert.Empty(t, Output{Stdout: "ho\n"}.Fault())
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(
		stubBackend{name: "go", available: true},
		stubBackend{name: "sh", available: true},
		stubBackend{name: "cmd", available: false},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"go", "sh", "cmd"}, r.Names())
	assert.Len(t, r.Available(), 2)

	b, ok := r.Get("sh")
	require.True(t, ok)
	assert.Equal(t, "sh", b.Name())

	_, ok = r.Get("python")
	assert.False(t, ok)

	assert.Error(t, r.Register(stubBackend{name: "go"}))

	selected, err := r.Select([]string{"cmd", "sh"})
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, "sh", selected[0].Name())

	selected, err = r.Select(nil)
	require.NoError(t, err)
	assert.Len(t, selected, 2)

	_, err = r.Select([]string{"python"})
	assert.Error(t, err)
}

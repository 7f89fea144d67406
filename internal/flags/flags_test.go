package flags

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinBitsMatchRegistry(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		want Flag
	}{
		{"DONT_ACCEPT_TRUE_FOR_1", DontAcceptTrueFor1},
		{"DONT_ACCEPT_BLANKLINE", DontAcceptBlankline},
		{"NORMALIZE_WHITESPACE", NormalizeWhitespace},
		{"COMPARE_LITERAL_EVAL", CompareLiteralEval},
		{"ELLIPSIS", Ellipsis},
		{"GLOB", Glob},
		{"CRAM_GLOB", CramGlob},
		{"REGEX", Regex},
		{"CRAM_RE", CramRe},
		{"SKIP", Skip},
		{"IGNORE_EXCEPTION_DETAIL", IgnoreExceptionDetail},
		{"REPORT_UDIFF", ReportUdiff},
		{"REPORT_CDIFF", ReportCdiff},
		{"REPORT_NDIFF", ReportNdiff},
		{"REPORT_ONLY_FIRST_FAILURE", ReportOnlyFirstFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, r.Name(tt.want))
		})
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()

	first, err := r.Register("ELLIPSIS")
	require.NoError(t, err)
	second, err := r.Register("ELLIPSIS")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, Ellipsis, first)

	custom, err := r.Register("MY_FLAG")
	require.NoError(t, err)
	again, err := r.Register("MY_FLAG")
	require.NoError(t, err)
	assert.Equal(t, custom, again)

	other, err := r.Register("OTHER_FLAG")
	require.NoError(t, err)
	assert.NotEqual(t, custom, other)
	assert.Zero(t, custom&(ComparisonFlags|ReportingFlags), "new flag must use an unused bit")
	assert.Zero(t, custom&other)

	names := r.Names()
	assert.Equal(t, "MY_FLAG", names[len(names)-2])
	assert.Equal(t, "OTHER_FLAG", names[len(names)-1])
}

func TestRegisterRejectsEmptyAndOverflow(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("  ")
	assert.Error(t, err)

	for i := len(r.Names()); i < 64; i++ {
		_, err := r.Register(fmt.Sprintf("EXTRA_%d", i))
		require.NoError(t, err)
	}
	_, err = r.Register("ONE_TOO_MANY")
	assert.Error(t, err)

	// Existing names still resolve once the registry is full.
	f, err := r.Register("SKIP")
	require.NoError(t, err)
	assert.Equal(t, Skip, f)
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestFlagSetOperations(t *testing.T) {
	set := Ellipsis.With(Skip)
	assert.True(t, set.Has(Ellipsis))
	assert.True(t, set.Has(Skip))
	assert.False(t, set.Has(Glob))
	assert.False(t, set.Has(0))

	set = set.Without(Skip)
	assert.False(t, set.Has(Skip))

	assert.Equal(t, Glob, Flag(0).Apply(Glob, true))
	assert.Equal(t, Flag(0), Glob.Apply(Glob, false))
}

func TestParseAndFormat(t *testing.T) {
	r := NewRegistry()

	set, err := r.Parse([]string{"ELLIPSIS", " SKIP "})
	require.NoError(t, err)
	assert.Equal(t, Ellipsis|Skip, set)
	assert.Equal(t, "ELLIPSIS|SKIP", r.Format(set))
	assert.Equal(t, "0", r.Format(0))

	_, err = r.Parse([]string{"ELLIPSIS", "NOPE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOPE")
}

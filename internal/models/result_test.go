package models

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/doctest/internal/flags"
)

func TestNewExampleNormalizes(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		want       string
		wantSource string
		wantWant   string
	}{
		{"empty source becomes newline", "", "", "\n", ""},
		{"adds trailing newline", "x = 1", "1", "x = 1\n", "1\n"},
		{"keeps existing newline", "x\n", "y\n", "x\n", "y\n"},
		{"empty want stays empty", "x", "", "x\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExample(tt.source, tt.want, 0, 0, nil, nil)
			assert.Equal(t, tt.wantSource, ex.Source)
			assert.Equal(t, tt.wantWant, ex.Want)
			assert.NotNil(t, ex.Options)
			assert.NotNil(t, ex.GlobalOptions)
		})
	}
}

func TestExampleEqual(t *testing.T) {
	a := NewExample("x", "1", 2, 4, map[flags.Flag]bool{flags.Ellipsis: true}, nil)
	b := NewExample("x\n", "1\n", 2, 4, map[flags.Flag]bool{flags.Ellipsis: true}, nil)
	c := NewExample("x\n", "1\n", 2, 4, map[flags.Flag]bool{flags.Ellipsis: false}, nil)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestNewDocTestCopiesGlobs(t *testing.T) {
	globs := map[string]any{"answer": 42}
	test := NewDocTest(nil, globs, "t", "f.md", 3, "")

	globs["answer"] = 0
	assert.Equal(t, 42, test.Globs["answer"])

	test.ClearGlobs()
	assert.Empty(t, test.Globs)
	assert.Equal(t, 0, globs["answer"], "clearing must not touch the caller's map")
}

func TestDocTestString(t *testing.T) {
	test := NewDocTest([]*Example{NewExample("x", "", 0, 0, nil, nil)}, nil, "name", "", NoLineno, "")
	assert.Equal(t, "<DocTest name from <unknown>:<unknown> (1 example)>", test.String())

	test.Filename = "a.txt"
	test.Lineno = 7
	test.Examples = nil
	assert.Equal(t, "<DocTest name from a.txt:7 (no examples)>", test.String())
}

func TestDocTestOrdering(t *testing.T) {
	tests := []*DocTest{
		NewDocTest(nil, nil, "b", "x", 0, ""),
		NewDocTest(nil, nil, "a", "y", 5, ""),
		NewDocTest(nil, nil, "a", "y", 1, ""),
		NewDocTest(nil, nil, "a", "x", 9, ""),
	}
	sort.Slice(tests, func(i, j int) bool { return Less(tests[i], tests[j]) })

	require.Len(t, tests, 4)
	assert.Equal(t, "x", tests[0].Filename)
	assert.Equal(t, 1, tests[1].Lineno)
	assert.Equal(t, 5, tests[2].Lineno)
	assert.Equal(t, "b", tests[3].Name)
}

func TestOutcomeAndResults(t *testing.T) {
	assert.Equal(t, "SUCCESS", Success.String())
	assert.Equal(t, "FAILURE", Failure.String())
	assert.Equal(t, "BOOM", Boom.String())
	assert.Equal(t, "Outcome(7)", Outcome(7).String())

	r := TestResults{Failed: 1, Attempted: 3}.Add(TestResults{Failed: 2, Attempted: 4})
	assert.Equal(t, TestResults{Failed: 3, Attempted: 7}, r)
	assert.Equal(t, 4, r.Passed())
}

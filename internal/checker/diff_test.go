package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/models"
)

func TestOutputDifferencePlain(t *testing.T) {
	tests := []struct {
		name     string
		want     string
		got      string
		expected string
	}{
		{"both", "1\n", "2\n", "Expected:\n    1\nGot:\n    2\n"},
		{"got nothing", "1\n", "", "Expected:\n    1\nGot nothing\n"},
		{"expected nothing", "", "2\n", "Expected nothing\nGot:\n    2\n"},
		{"neither", "", "", "Expected nothing\nGot nothing\n"},
		{"blank got line marked", "a\nb\n", "a\n\nb\n", "Expected:\n    a\n    b\nGot:\n    a\n    <BLANKLINE>\n    b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := models.NewExample("x", tt.want, 0, 0, nil, nil)
			assert.Equal(t, tt.expected, OutputDifference(ex, tt.got, 0))
		})
	}
}

func TestOutputDifferenceKeepsBlankLinesWhenMarkerDisabled(t *testing.T) {
	ex := models.NewExample("x", "a\n", 0, 0, nil, nil)
	assert.Equal(t, "Expected:\n    a\nGot:\n    a\n\n", OutputDifference(ex, "a\n\n", flags.DontAcceptBlankline))
}

func TestOutputDifferenceUnified(t *testing.T) {
	ex := models.NewExample("x", "a\nb\nc\nd\n", 0, 0, nil, nil)
	got := "a\nB\nc\nd\n"

	diff := OutputDifference(ex, got, flags.ReportUdiff)
	assert.Equal(t, "Differences (unified diff with -expected +actual):\n"+
		"    @@ -1,4 +1,4 @@\n"+
		"     a\n"+
		"    -b\n"+
		"    +B\n"+
		"     c\n"+
		"     d\n", diff)
}

func TestOutputDifferenceContext(t *testing.T) {
	ex := models.NewExample("x", "a\nb\nc\nd\n", 0, 0, nil, nil)
	diff := OutputDifference(ex, "a\nB\nc\nd\n", flags.ReportCdiff)
	assert.Contains(t, diff, "Differences (context diff with expected followed by actual):\n")
	assert.Contains(t, diff, "    ***************\n")
	assert.Contains(t, diff, "    ! b\n")
	assert.Contains(t, diff, "    ! B\n")
}

func TestOutputDifferenceShortOutputSkipsUnified(t *testing.T) {
	ex := models.NewExample("x", "a\n", 0, 0, nil, nil)
	assert.Equal(t, "Expected:\n    a\nGot:\n    b\n", OutputDifference(ex, "b\n", flags.ReportUdiff))
}

func TestOutputDifferenceNdiffAlwaysApplies(t *testing.T) {
	ex := models.NewExample("x", "a\nb\n", 0, 0, nil, nil)
	diff := OutputDifference(ex, "a\nc\n", flags.ReportNdiff)
	assert.Equal(t, "Differences (ndiff with -expected +actual):\n"+
		"      a\n"+
		"    - b\n"+
		"    + c\n", diff)
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n\n  b\n", Indent("a\n\nb\n", 2))
	assert.Equal(t, "  a", Indent("a", 2))
	assert.Equal(t, "", Indent("", 2))
}

// Package checker decides whether the output of a doctest example matches
// its expected output, and renders the difference when it does not.
//
// # Matching
//
// OutputChecker.Check first folds both strings to an escaped-ASCII form so
// that an escape such as \xe9 written in expected output compares equal to
// the character it names. Identical strings always match, whatever flags are
// set.
// Otherwise the matchers run in registration order:
//
//	DONT_ACCEPT_TRUE_FOR_1   runs when clear  "True"/"1" and "False"/"0" are equivalent
//	DONT_ACCEPT_BLANKLINE    runs when clear  <BLANKLINE> marks a blank line
//	NORMALIZE_WHITESPACE     runs when set    whitespace runs collapse to one space
//	COMPARE_LITERAL_EVAL     runs when set    both sides are compared as literal values
//	ELLIPSIS                 runs when set    "..." matches any substring
//	GLOB, CRAM_GLOB          run when set     shell-style wildcards
//	REGEX, CRAM_RE           run when set     want is a regular expression anchored at the start
//
// A matcher may rewrite got and want before handing them to the next one,
// so NORMALIZE_WHITESPACE composes with ELLIPSIS. The first matcher that
// reports a match ends the pipeline.
//
// GLOB patterns know "*" (any run of characters) and "?"
// (one character). Bracket classes such as [a-z] are not special and match
// literally.
//
// The CRAM variants only apply when the expected output ends with
// " (glob)" or " (re)" respectively; the suffix is stripped before matching.
//
// # Differences
//
// OutputDifference renders expected versus actual output for failure
// reports. REPORT_UDIFF, REPORT_CDIFF and REPORT_NDIFF select a diff
// format; the unified and context formats are only used when both sides
// have more than two lines.
package checker

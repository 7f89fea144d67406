package checker

import "strings"

// EllipsisMarker matches any substring when ELLIPSIS is enabled.
const EllipsisMarker = "..."

// EllipsisMatch reports whether got matches want, where each "..." in want
// stands for any (possibly empty) substring.
//
// The leading and trailing pieces of want must match the ends of got
// exactly; the pieces in between are found by a leftmost, non-overlapping
// scan. The end matches are claimed first, so EllipsisMatch("aa...aa", "aaa")
// is false even though a backtracking matcher would accept it.
func EllipsisMatch(want, got string) bool {
	if !strings.Contains(want, EllipsisMarker) {
		return want == got
	}

	pieces := strings.Split(want, EllipsisMarker)
	start, end := 0, len(got)

	if w := pieces[0]; w != "" {
		if !strings.HasPrefix(got, w) {
			return false
		}
		start = len(w)
		pieces = pieces[1:]
	}
	if w := pieces[len(pieces)-1]; w != "" {
		if !strings.HasSuffix(got, w) {
			return false
		}
		end -= len(w)
		pieces = pieces[:len(pieces)-1]
	}

	if start > end {
		return false
	}

	for _, w := range pieces {
		idx := strings.Index(got[start:end], w)
		if idx < 0 {
			return false
		}
		start += idx + len(w)
	}
	return true
}

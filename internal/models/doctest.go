package models

import (
	"fmt"
	"maps"
)

// NoLineno marks a DocTest whose starting line is unknown.
const NoLineno = -1

// DocTest is an ordered collection of examples sharing one namespace.
type DocTest struct {
	Examples  []*Example     // Examples in source order
	Globs     map[string]any // Execution namespace, owned by this DocTest
	Name      string         // Name used in reports
	Filename  string         // File the DocTest came from, empty if unknown
	Lineno    int            // Zero-based line of the DocTest in Filename, NoLineno if unknown
	Docstring string         // Text the examples were parsed from
	Language  string         // Name of the backend the examples are written for
}

// NewDocTest builds a DocTest. The globs map is copied so that the DocTest
// owns its namespace exclusively.
func NewDocTest(examples []*Example, globs map[string]any, name, filename string, lineno int, docstring string) *DocTest {
	owned := make(map[string]any, len(globs))
	maps.Copy(owned, globs)
	return &DocTest{
		Examples:  examples,
		Globs:     owned,
		Name:      name,
		Filename:  filename,
		Lineno:    lineno,
		Docstring: docstring,
	}
}

// ClearGlobs empties the namespace after a run.
func (t *DocTest) ClearGlobs() {
	clear(t.Globs)
}

// String returns a short description such as "<DocTest name from f:3 (2 examples)>".
func (t *DocTest) String() string {
	var count string
	switch len(t.Examples) {
	case 0:
		count = "no examples"
	case 1:
		count = "1 example"
	default:
		count = fmt.Sprintf("%d examples", len(t.Examples))
	}
	filename := t.Filename
	if filename == "" {
		filename = "<unknown>"
	}
	lineno := "<unknown>"
	if t.Lineno != NoLineno {
		lineno = fmt.Sprint(t.Lineno)
	}
	return fmt.Sprintf("<DocTest %s from %s:%s (%s)>", t.Name, filename, lineno, count)
}

// Less orders DocTests by (name, filename, lineno) for deterministic reports.
func Less(a, b *DocTest) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Filename != b.Filename {
		return a.Filename < b.Filename
	}
	return a.Lineno < b.Lineno
}

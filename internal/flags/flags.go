// Package flags defines the option flags that control how doctest output is
// compared and how failures are reported.
//
// Every flag is a single bit. The built-in flags have fixed bits assigned at
// build time, in the order below. Additional flags can be added at process
// start with Registry.Register, which hands out the next unused bit.
package flags

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
	"sync"
)

// Flag is one option bit, or a set of option bits OR-ed together.
type Flag uint64

// Comparison flags, consumed by the output checker.
const (
	DontAcceptTrueFor1 Flag = 1 << iota
	DontAcceptBlankline
	NormalizeWhitespace
	CompareLiteralEval
	Ellipsis
	Glob
	CramGlob
	Regex
	CramRe
	Skip
	IgnoreExceptionDetail

	// Reporting flags, consumed by the reporter.
	ReportUdiff
	ReportCdiff
	ReportNdiff
	ReportOnlyFirstFailure
)

// ComparisonFlags is the mask of all built-in comparison flags.
const ComparisonFlags = DontAcceptTrueFor1 | DontAcceptBlankline | NormalizeWhitespace |
	CompareLiteralEval | Ellipsis | Glob | CramGlob | Regex | CramRe | Skip | IgnoreExceptionDetail

// ReportingFlags is the mask of all built-in reporting flags.
const ReportingFlags = ReportUdiff | ReportCdiff | ReportNdiff | ReportOnlyFirstFailure

// builtinNames lists the built-in flags in bit order.
var builtinNames = []string{
	"DONT_ACCEPT_TRUE_FOR_1",
	"DONT_ACCEPT_BLANKLINE",
	"NORMALIZE_WHITESPACE",
	"COMPARE_LITERAL_EVAL",
	"ELLIPSIS",
	"GLOB",
	"CRAM_GLOB",
	"REGEX",
	"CRAM_RE",
	"SKIP",
	"IGNORE_EXCEPTION_DETAIL",
	"REPORT_UDIFF",
	"REPORT_CDIFF",
	"REPORT_NDIFF",
	"REPORT_ONLY_FIRST_FAILURE",
}

// Has reports whether every bit of other is set in f.
func (f Flag) Has(other Flag) bool {
	return other != 0 && f&other == other
}

// With returns f with the bits of other set.
func (f Flag) With(other Flag) Flag {
	return f | other
}

// Without returns f with the bits of other cleared.
func (f Flag) Without(other Flag) Flag {
	return f &^ other
}

// Apply sets or clears the bits of other depending on enable.
func (f Flag) Apply(other Flag, enable bool) Flag {
	if enable {
		return f.With(other)
	}
	return f.Without(other)
}

// Registry maps flag names to bits. Entries are only ever appended, so a
// name keeps its bit for the lifetime of the registry.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Flag
	names  []string
}

// NewRegistry returns a registry holding the built-in flags.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]Flag, len(builtinNames)),
		names:  make([]string, 0, len(builtinNames)),
	}
	for _, name := range builtinNames {
		r.byName[name] = Flag(1) << len(r.names)
		r.names = append(r.names, name)
	}
	return r
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	return defaultRegistry()
}

// Register returns the bit for name, allocating the next unused bit when the
// name is new. Registering the same name twice yields the same bit.
func (r *Registry) Register(name string) (Flag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("flag name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.byName[name]; ok {
		return f, nil
	}
	if len(r.names) >= 64 {
		return 0, fmt.Errorf("cannot register flag %q: all 64 flag bits are in use", name)
	}
	f := Flag(1) << len(r.names)
	r.byName[name] = f
	r.names = append(r.names, name)
	return f, nil
}

// Lookup returns the bit registered for name.
func (r *Registry) Lookup(name string) (Flag, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.byName[name]
	return f, ok
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Name returns the name of a single-bit flag, or "" if it is unknown.
func (r *Registry) Name(f Flag) string {
	if bits.OnesCount64(uint64(f)) != 1 {
		return ""
	}
	idx := bits.TrailingZeros64(uint64(f))

	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx >= len(r.names) {
		return ""
	}
	return r.names[idx]
}

// Parse combines the named flags into one set.
func (r *Registry) Parse(names []string) (Flag, error) {
	var set Flag
	var unknown []string
	for _, name := range names {
		f, ok := r.Lookup(strings.TrimSpace(name))
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		set |= f
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return 0, fmt.Errorf("unknown option flag(s): %s", strings.Join(unknown, ", "))
	}
	return set, nil
}

// Format renders a flag set as NAME|NAME in bit order.
func (r *Registry) Format(set Flag) string {
	if set == 0 {
		return "0"
	}
	var parts []string
	for i := 0; i < 64; i++ {
		bit := Flag(1) << i
		if set&bit == 0 {
			continue
		}
		if name := r.Name(bit); name != "" {
			parts = append(parts, name)
		} else {
			parts = append(parts, fmt.Sprintf("0x%x", uint64(bit)))
		}
	}
	return strings.Join(parts, "|")
}

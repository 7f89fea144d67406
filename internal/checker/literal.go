package checker

import (
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// CompareLiteral parses got and want as literal values and compares them by
// value. Literals are numbers, booleans, null, quoted strings, and flow
// collections of those ([1, 2], {"a": 1}). Integers and floats compare
// numerically, so 1 equals 1.0.
//
// Text that is not a literal never matches; parse failures of any kind are
// treated the same way.
func CompareLiteral(got, want string) bool {
	wantValue, ok := literalValue(want)
	if !ok {
		return false
	}
	gotValue, ok := literalValue(got)
	if !ok {
		return false
	}
	return cmp.Equal(wantValue, gotValue)
}

func literalValue(s string) (any, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, false
	}
	root := doc.Content[0]
	if root.Kind != yaml.ScalarNode && root.Style&yaml.FlowStyle == 0 {
		return nil, false
	}
	if !isLiteral(root) {
		return nil, false
	}

	var value any
	if err := root.Decode(&value); err != nil {
		return nil, false
	}
	return normalizeLiteral(value), true
}

func isLiteral(n *yaml.Node) bool {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
			return true
		}
		switch n.ShortTag() {
		case "!!int", "!!float", "!!bool", "!!null":
			return true
		}
		return false
	case yaml.SequenceNode, yaml.MappingNode:
		for _, child := range n.Content {
			if !isLiteral(child) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// normalizeLiteral maps every number to float64 and every map to
// map[any]any so that equal values compare equal regardless of spelling.
func normalizeLiteral(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float64:
		return t
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeLiteral(e)
		}
		return out
	case map[string]any:
		out := make(map[any]any, len(t))
		for k, e := range t {
			out[k] = normalizeLiteral(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, e := range t {
			out[normalizeLiteral(k)] = normalizeLiteral(e)
		}
		return out
	default:
		return v
	}
}

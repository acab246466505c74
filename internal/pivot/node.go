package pivot

import (
	"bytes"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// RootKey is the key of the sentinel node at the top of every tree.
const RootKey = "root"

// Node is one group of the hierarchy.
type Node struct {
	// Key is the grouping value shared by every record under this node.
	Key string
	// Column names the grouping column whose value is Key; empty on the root.
	Column string
	// Children holds the next grouping level; nil on leaf nodes.
	Children []*Node
	// Records holds member rows of terminal nodes when rollups are disabled.
	Records []Record
	// Measures holds the accumulated total of each measure column.
	Measures map[string]float64
	// Fields holds values reconstructed by postprocessors, keyed by column name.
	Fields map[string]any

	rollup map[string]decimal.Decimal
}

// IsLeaf reports whether the node has no child groups.
func (n *Node) IsLeaf() bool { return n.Children == nil }

// Value returns the sortable value of a key on this node: a measure total,
// then a postprocessed field, then the node key when key is the column this
// level is grouped by. Other keys yield nil, so siblings keep their order.
func (n *Node) Value(key string) any {
	if v, ok := n.Measures[key]; ok {
		return v
	}
	if v, ok := n.Fields[key]; ok {
		return v
	}
	if n.Column == key {
		return n.Key
	}
	return nil
}

// Measure returns the accumulated total of a measure column.
func (n *Node) Measure(name string) float64 { return n.Measures[name] }

// Child returns the direct child with the given key.
func (n *Node) Child(key string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Key == key {
			return c, true
		}
	}
	return nil, false
}

// Walk visits the node and its descendants in pre-order with their depth.
// Returning false from fn skips the node's subtree.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Pluck collects the value of key across nodes, skipping nodes without it.
func Pluck(nodes []*Node, key string) []any {
	var out []any
	for _, n := range nodes {
		if v, ok := n.Measures[key]; ok {
			out = append(out, v)
			continue
		}
		if v, ok := n.Fields[key]; ok && v != nil {
			out = append(out, v)
			continue
		}
		if key == "key" {
			out = append(out, n.Key)
		}
	}
	return out
}

// Map flattens the node into the shape consumed by chart code: key, one
// entry per measure and field, and "values" for child groups.
func (n *Node) Map() map[string]any {
	out := make(map[string]any, len(n.Measures)+len(n.Fields)+2)
	for k, v := range n.Fields {
		out[k] = v
	}
	for k, v := range n.Measures {
		out[k] = v
	}
	out["key"] = n.Key
	if n.Children != nil {
		vals := make([]any, len(n.Children))
		for i, c := range n.Children {
			vals[i] = c.Map()
		}
		out["values"] = vals
	}
	if n.Records != nil {
		out["records"] = n.Records
	}
	return out
}

// MarshalJSON writes "key" first, then measures and fields in name order,
// then "values" or "records".
func (n *Node) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	if err := writeMember(&b, "key", n.Key, true); err != nil {
		return nil, err
	}
	for _, k := range sortedKeys(n.Measures) {
		if err := writeMember(&b, k, n.Measures[k], false); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedKeys(n.Fields) {
		if _, dup := n.Measures[k]; dup {
			continue
		}
		if err := writeMember(&b, k, n.Fields[k], false); err != nil {
			return nil, err
		}
	}
	if n.Children != nil {
		if err := writeMember(&b, "values", n.Children, false); err != nil {
			return nil, err
		}
	}
	if n.Records != nil {
		if err := writeMember(&b, "records", n.Records, false); err != nil {
			return nil, err
		}
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (n *Node) MarshalYAML() (any, error) { return n.Map(), nil }

func writeMember(b *bytes.Buffer, k string, v any, first bool) error {
	if !first {
		b.WriteByte(',')
	}
	kb, err := json.Marshal(k)
	if err != nil {
		return err
	}
	vb, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.Write(kb)
	b.WriteByte(':')
	b.Write(vb)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/pivotree/internal/format"
	"github.com/KaramelBytes/pivotree/internal/pivot"
)

// Markdown renders the tree as an indented outline with formatted totals.
// A nil formatter prints raw values.
func (r *Report) Markdown(f format.Formatter) string {
	if f == nil {
		f = format.Raw()
	}
	var b strings.Builder
	b.WriteString("[PIVOT SUMMARY]\n")
	if r.Dataset != "" {
		b.WriteString(fmt.Sprintf("Dataset: %s\n", r.Dataset))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	if len(r.Levels) > 0 {
		b.WriteString(fmt.Sprintf("Levels: %s\n", strings.Join(r.labels(r.Levels), " > ")))
	}
	if len(r.Measures) > 0 {
		b.WriteString(fmt.Sprintf("Measures: %s\n", strings.Join(r.labels(r.Measures), ", ")))
	}
	if r.Options.SortBy != "" {
		b.WriteString(fmt.Sprintf("Sorted by: %s (%s)\n", r.label(r.Options.SortBy), pivot.ParseSortOrder(r.Options.Order)))
	}

	b.WriteString("\n[TREE]\n")
	pivot.Walk(r.Tree, func(n *pivot.Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("- ")
		b.WriteString(nodeTitle(n, depth, r.Levels))
		if len(r.Measures) > 0 {
			b.WriteString(":")
			for i, m := range r.Measures {
				if i > 0 {
					b.WriteString(",")
				}
				b.WriteString(fmt.Sprintf(" %s %s", r.label(m), f(n.Measure(m))))
			}
		}
		if n.Records != nil {
			b.WriteString(fmt.Sprintf(" (%d records)", len(n.Records)))
		}
		b.WriteString("\n")
		return true
	})
	return b.String()
}

// nodeTitle prefers a reconstructed date over the raw bucket key.
func nodeTitle(n *pivot.Node, depth int, levels []string) string {
	if depth == 0 {
		return "Total"
	}
	if depth <= len(levels) {
		if t, ok := n.Fields[levels[depth-1]].(time.Time); ok {
			return fmt.Sprintf("%s (%s)", safeKey(n.Key), t.Format("2006-01-02"))
		}
	}
	return safeKey(n.Key)
}

func safeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(empty)"
	}
	return strings.ReplaceAll(s, "\n", " ")
}

func (r *Report) label(name string) string {
	if c, ok := r.md.Lookup(name); ok && c.Label != "" {
		return c.Label
	}
	return format.Capitalize(name)
}

func (r *Report) labels(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = r.label(n)
	}
	return out
}

package pivot

import (
	"strconv"
	"time"
)

// Postprocessor derives display values for the nodes of one grouping level.
type Postprocessor interface {
	Process(n *Node, index, count int, col *Column)
}

type datePostprocessor struct{}

var postprocessors = map[DataType]Postprocessor{
	DataTypeDate: datePostprocessor{},
}

// postprocess walks the tree pairing each depth with its grouping column,
// runs the column's postprocessor on every sibling and drops rollups.
func postprocess(n *Node, levels []*Column) {
	n.rollup = nil
	if n.Children == nil {
		return
	}
	var (
		col  *Column
		rest []*Column
		pp   Postprocessor
	)
	if len(levels) > 0 {
		col, rest = levels[0], levels[1:]
		pp = postprocessors[col.DataType]
	}
	count := len(n.Children)
	for i, c := range n.Children {
		if pp != nil {
			pp.Process(c, i, count, col)
		}
		postprocess(c, rest)
	}
}

// Process rebuilds a calendar date from a bucket key. Year buckets map to
// January 1st. Month-of-year buckets map to the 1st, except the last sibling
// which maps to day 31 of its month so chart ranges cover the whole period.
func (datePostprocessor) Process(n *Node, index, count int, col *Column) {
	var t time.Time
	switch col.Aggregate {
	case Year:
		y, err := strconv.Atoi(n.Key)
		if err != nil {
			return
		}
		t = time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	case YearMonth:
		if len(n.Key) < 5 {
			return
		}
		y, err := strconv.Atoi(n.Key[:4])
		if err != nil {
			return
		}
		m, err := strconv.Atoi(n.Key[4:])
		if err != nil {
			return
		}
		day := 1
		if index == count-1 {
			day = 31
		}
		t = time.Date(y, time.Month(m+1), day, 0, 0, 0, 0, time.UTC)
	default:
		return
	}
	if n.Fields == nil {
		n.Fields = make(map[string]any, 1)
	}
	n.Fields[col.Name] = t
}

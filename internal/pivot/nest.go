package pivot

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Config is the full input of a tree build besides the data itself.
type Config struct {
	// ColumnOrder lists the grouping columns, outermost first.
	ColumnOrder []string
	// Aggregate enables rollups at the deepest level. When false, terminal
	// nodes keep their member records.
	Aggregate bool
	// DateGroupBy enables date bucketing for date columns when non-empty.
	DateGroupBy Granularity
	// SortBy names the column whose values order siblings; empty disables sorting.
	SortBy string
	// Order selects the built-in comparator direction.
	Order SortOrder
	// Locale drives string collation of the built-in comparators.
	Locale language.Tag
	// Comparator overrides Order and Locale when set.
	Comparator Comparator
	// NumberFormat is used to read measure values given as text.
	NumberFormat NumberFormat
}

// DefaultConfig returns a configuration with rollups on and descending sort.
func DefaultConfig() Config {
	return Config{
		Aggregate: true,
		Order:     Descending,
		Locale:    language.English,
	}
}

func (cfg Config) comparator() Comparator {
	if cfg.Comparator != nil {
		return cfg.Comparator
	}
	if cfg.Order == Ascending {
		return CompareAscending(cfg.Locale)
	}
	return CompareDescending(cfg.Locale)
}

// ResolveColumnOrder validates a requested grouping order against metadata.
// Measure columns are dropped. With nestExtras, dimensions not named are
// appended in metadata order.
func ResolveColumnOrder(md *Metadata, columns []string, nestExtras bool) ([]string, error) {
	if md == nil {
		return nil, ErrNoMetadata
	}
	if len(columns) == 0 {
		return nil, ErrEmptyColumnOrder
	}
	seen := make(map[string]bool, len(md.Names))
	var order []string
	for _, name := range columns {
		c, ok := md.Lookup(name)
		if !ok {
			return nil, &ColumnError{Column: name, Err: ErrUnknownColumn}
		}
		if c.IsMeasure() || seen[name] {
			continue
		}
		seen[name] = true
		order = append(order, name)
	}
	if nestExtras {
		for _, name := range md.Dimensions() {
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}
	if len(order) == 0 {
		return nil, ErrEmptyColumnOrder
	}
	return order, nil
}

// Build groups, accumulates, postprocesses and sorts records into a new tree.
// It reads only its arguments and may be called concurrently.
func Build(records []Record, md *Metadata, cfg Config) (*Node, error) {
	if md == nil {
		return nil, ErrNoMetadata
	}
	levels, err := levelColumns(md, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.SortBy != "" {
		if _, ok := md.Lookup(cfg.SortBy); !ok {
			return nil, &ColumnError{Column: cfg.SortBy, Err: ErrUnknownColumn}
		}
	}

	root := &Node{Key: RootKey}
	switch {
	case len(levels) > 0:
		root.Children = nest(records, levels, resolversFor(cfg), md.Measures, cfg)
	case cfg.Aggregate:
		root.rollup = rollup(records, md.Measures, cfg.NumberFormat)
	default:
		root.Records = append([]Record{}, records...)
	}

	accumulate(root, md.Measures, cfg.NumberFormat)
	postprocess(root, levels)
	if cfg.SortBy != "" {
		Sort(root.Children, cfg.SortBy, cfg.comparator())
		if root.Children == nil {
			sortRecords(root.Records, cfg.SortBy, cfg.comparator())
		}
	}
	return root, nil
}

// levelColumns copies the descriptors of the grouping columns with the
// effective date granularity applied. An order naming only measures is
// rejected rather than read as no grouping.
func levelColumns(md *Metadata, cfg Config) ([]*Column, error) {
	levels := make([]*Column, 0, len(cfg.ColumnOrder))
	for _, name := range cfg.ColumnOrder {
		c, ok := md.Lookup(name)
		if !ok {
			return nil, &ColumnError{Column: name, Err: ErrUnknownColumn}
		}
		if c.IsMeasure() {
			continue
		}
		lc := *c
		if cfg.DateGroupBy != "" && lc.DataType == DataTypeDate {
			lc.Aggregate = ParseGranularity(string(cfg.DateGroupBy))
		}
		levels = append(levels, &lc)
	}
	if len(cfg.ColumnOrder) > 0 && len(levels) == 0 {
		return nil, ErrEmptyColumnOrder
	}
	return levels, nil
}

// nest partitions records by the first level's key in discovery order and
// recurses with the remaining levels.
func nest(records []Record, levels []*Column, res Resolvers, measures []string, cfg Config) []*Node {
	col := levels[0]
	var keys []string
	groups := make(map[string][]Record)
	for _, r := range records {
		k := res.keyOf(r, col)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}

	nodes := make([]*Node, 0, len(keys))
	for _, k := range keys {
		n := &Node{Key: k, Column: col.Name}
		members := groups[k]
		switch {
		case len(levels) > 1:
			n.Children = nest(members, levels[1:], res, measures, cfg)
		case cfg.Aggregate:
			n.rollup = rollup(members, measures, cfg.NumberFormat)
		default:
			n.Records = members
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// rollup sums each measure over the records. Values that are not numbers
// are skipped.
func rollup(records []Record, measures []string, nf NumberFormat) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(measures))
	for _, m := range measures {
		out[m] = sumRecords(records, m, nf)
	}
	return out
}

func sumRecords(records []Record, measure string, nf NumberFormat) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		f, ok := nf.ParseNumber(r.Raw(measure))
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(f))
	}
	return sum
}

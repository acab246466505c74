package pivot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/text/language"
)

// Model collects data, column metadata and pivot settings behind chainable
// setters. A Model is not safe for concurrent use; give each consumer its own.
type Model struct {
	rows    [][]any
	md      *Metadata
	records []Record
	indexed bool
	cfg     Config
	err     error
	log     logr.Logger
}

// Option configures a Model at construction.
type Option func(*Model)

// WithLogger routes build diagnostics to l.
func WithLogger(l logr.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(m *Model) { m.cfg = cfg }
}

// NewModel creates a model. Nil rows or columns may be supplied later with
// SetData and SetColumnMetadata.
func NewModel(rows [][]any, columns []Column, opts ...Option) *Model {
	m := &Model{cfg: DefaultConfig(), log: logr.Discard()}
	for _, o := range opts {
		o(m)
	}
	if rows != nil {
		m.SetData(rows)
	}
	if columns != nil {
		m.SetColumnMetadata(columns)
	}
	return m
}

func (m *Model) fail(err error) *Model {
	m.err = errors.Join(m.err, err)
	return m
}

// Err returns the accumulated configuration errors.
func (m *Model) Err() error { return m.err }

// SetData replaces the raw rows.
func (m *Model) SetData(rows [][]any) *Model {
	m.rows = rows
	m.records, m.indexed = nil, false
	return m
}

// SetColumnMetadata normalizes and installs column descriptors. Rollups are
// re-enabled and an active date bucketing is reapplied to the new columns.
func (m *Model) SetColumnMetadata(columns []Column) *Model {
	m.md = NormalizeColumns(columns)
	m.records, m.indexed = nil, false
	m.cfg.Aggregate = true
	if m.cfg.DateGroupBy != "" {
		m.applyGranularity(m.cfg.DateGroupBy)
	}
	return m
}

// Metadata returns the normalized metadata, nil before SetColumnMetadata.
func (m *Model) Metadata() *Metadata { return m.md }

// Index returns the indexed records, computing them on first use.
func (m *Model) Index() ([]Record, error) {
	if m.indexed {
		return m.records, nil
	}
	recs, err := IndexRows(m.rows, m.md)
	if err != nil {
		return nil, fmt.Errorf("index rows: %w", err)
	}
	m.records, m.indexed = recs, true
	m.log.V(2).Info("indexed rows", "rows", len(recs), "columns", len(m.md.Names))
	return recs, nil
}

// SetColumnOrder sets the grouping hierarchy. nestExtras defaults to true,
// appending every dimension not listed.
func (m *Model) SetColumnOrder(columns []string, nestExtras ...bool) *Model {
	extras := true
	if len(nestExtras) > 0 {
		extras = nestExtras[0]
	}
	order, err := ResolveColumnOrder(m.md, columns, extras)
	if err != nil {
		return m.fail(fmt.Errorf("set column order: %w", err))
	}
	m.cfg.ColumnOrder = order
	return m
}

// SetAggregate toggles rollups at the deepest level.
func (m *Model) SetAggregate(on bool) *Model {
	m.cfg.Aggregate = on
	return m
}

// Aggregating reports whether rollups are enabled.
func (m *Model) Aggregating() bool { return m.cfg.Aggregate }

// DateGroupBy buckets date dimensions by g; unknown values mean Year.
func (m *Model) DateGroupBy(g Granularity) *Model {
	parsed := ParseGranularity(string(g))
	if parsed != Granularity(strings.ToLower(strings.TrimSpace(string(g)))) {
		m.log.V(1).Info("unknown date granularity, using year", "granularity", string(g))
	}
	g = parsed
	m.cfg.DateGroupBy = g
	m.applyGranularity(g)
	return m
}

func (m *Model) applyGranularity(g Granularity) {
	if m.md == nil {
		return
	}
	for _, c := range m.md.Columns {
		if c.DataType == DataTypeDate && !c.IsMeasure() {
			c.Aggregate = g
		}
	}
}

// SortBy orders siblings by the values of a known column.
func (m *Model) SortBy(key string) *Model {
	if m.md == nil {
		return m.fail(fmt.Errorf("sort by %q: %w", key, ErrNoMetadata))
	}
	if _, ok := m.md.Lookup(key); !ok {
		return m.fail(fmt.Errorf("sort by: %w", &ColumnError{Column: key, Err: ErrUnknownColumn}))
	}
	m.cfg.SortBy = key
	return m
}

// Asc switches the built-in comparator to ascending.
func (m *Model) Asc() *Model {
	m.cfg.Order, m.cfg.Comparator = Ascending, nil
	return m
}

// Desc switches the built-in comparator to descending.
func (m *Model) Desc() *Model {
	m.cfg.Order, m.cfg.Comparator = Descending, nil
	return m
}

// SetComparator installs a custom comparator in place of Asc/Desc.
func (m *Model) SetComparator(cmp Comparator) *Model {
	m.cfg.Comparator = cmp
	return m
}

// Locale sets the collation language of the built-in comparators.
func (m *Model) Locale(tag language.Tag) *Model {
	m.cfg.Locale = tag
	return m
}

// SetNumberFormat sets the separators used to read textual measures.
func (m *Model) SetNumberFormat(nf NumberFormat) *Model {
	m.cfg.NumberFormat = nf
	return m
}

// Config returns a snapshot of the current settings.
func (m *Model) Config() Config {
	cfg := m.cfg
	cfg.ColumnOrder = append([]string(nil), m.cfg.ColumnOrder...)
	return cfg
}

// Nest builds a fresh tree from the current data and a snapshot of the
// settings.
func (m *Model) Nest() (*Node, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.md == nil {
		return nil, ErrNoMetadata
	}
	recs, err := m.Index()
	if err != nil {
		return nil, err
	}
	cfg := m.Config()
	start := time.Now()
	root, err := Build(recs, m.md, cfg)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	m.log.V(1).Info("built tree", "rows", len(recs), "levels", len(cfg.ColumnOrder),
		"groups", len(root.Children), "aggregate", cfg.Aggregate, "sortBy", cfg.SortBy,
		"elapsed", time.Since(start))
	return root, nil
}

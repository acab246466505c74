package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/pivotree/internal/dataset"
	"github.com/KaramelBytes/pivotree/internal/pivot"
)

// Options controls how a dataset is pivoted.
type Options struct {
	// GroupBy lists the grouping columns, outermost first. Empty means a
	// single rollup at the root.
	GroupBy []string `json:"groupBy,omitempty" yaml:"group_by,omitempty"`
	// NestExtras appends the dimensions not named in GroupBy.
	NestExtras bool `json:"nestExtras" yaml:"nest_extras"`
	// DateBucket groups date columns by year, month or yearmonth.
	DateBucket string `json:"dateBucket,omitempty" yaml:"date_bucket,omitempty"`
	// SortBy orders siblings by a column's values.
	SortBy string `json:"sortBy,omitempty" yaml:"sort_by,omitempty"`
	// Order is asc or desc.
	Order string `json:"order,omitempty" yaml:"order,omitempty"`
	// Aggregate enables rollups; when false, leaves keep their records.
	Aggregate bool `json:"aggregate" yaml:"aggregate"`
	// Locale is a BCP 47 tag used for string collation.
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
	// Numeric parsing separators for measures given as text.
	DecimalSeparator   string `json:"decimalSeparator,omitempty" yaml:"decimal_separator,omitempty"`
	ThousandsSeparator string `json:"thousandsSeparator,omitempty" yaml:"thousands_separator,omitempty"`
}

// DefaultOptions returns reasonable defaults for a pivot run.
func DefaultOptions() Options {
	return Options{
		NestExtras: true,
		Order:      string(pivot.Descending),
		Aggregate:  true,
		Locale:     "en",
	}
}

// NumberFormat resolves the configured separators.
func (o Options) NumberFormat() (pivot.NumberFormat, error) {
	dec, err := ParseSeparator(o.DecimalSeparator, false)
	if err != nil {
		return pivot.NumberFormat{}, err
	}
	thou, err := ParseSeparator(o.ThousandsSeparator, true)
	if err != nil {
		return pivot.NumberFormat{}, err
	}
	return pivot.NumberFormat{Decimal: dec, Thousands: thou}, nil
}

// ParseSeparator maps a user-facing separator name to a rune; "" means unset.
func ParseSeparator(s string, thousands bool) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ".", "dot":
		return '.', nil
	case ",", "comma":
		return ',', nil
	}
	if thousands {
		switch strings.ToLower(s) {
		case " ", "space":
			return ' ', nil
		case "'", "apostrophe":
			return '\'', nil
		}
		return 0, fmt.Errorf("unsupported thousands separator: %q (use ','|'.'|'space'|'apostrophe')", s)
	}
	return 0, fmt.Errorf("unsupported decimal separator: %q (use '.'|'comma')", s)
}

// Configure applies the options to a model.
func (o Options) Configure(m *pivot.Model) (*pivot.Model, error) {
	tag := language.English
	if o.Locale != "" {
		t, err := language.Parse(o.Locale)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", o.Locale, err)
		}
		tag = t
	}
	nf, err := o.NumberFormat()
	if err != nil {
		return nil, err
	}
	m.Locale(tag).SetNumberFormat(nf).SetAggregate(o.Aggregate)

	// Unknown buckets fall back to year inside the model.
	if o.DateBucket != "" {
		m.DateGroupBy(pivot.Granularity(o.DateBucket))
	}
	if len(o.GroupBy) > 0 {
		m.SetColumnOrder(o.GroupBy, o.NestExtras)
	}
	switch strings.ToLower(o.Order) {
	case "", "desc", "descending":
		m.Desc()
	case "asc", "ascending":
		m.Asc()
	default:
		return nil, fmt.Errorf("invalid order %q (use asc|desc)", o.Order)
	}
	if o.SortBy != "" {
		m.SortBy(o.SortBy)
	}
	return m, m.Err()
}

// Report is the result of one pivot run.
type Report struct {
	ID          string      `json:"id" yaml:"id"`
	Dataset     string      `json:"dataset" yaml:"dataset"`
	GeneratedAt time.Time   `json:"generated_at" yaml:"generated_at"`
	Rows        int         `json:"rows" yaml:"rows"`
	Levels      []string    `json:"levels" yaml:"levels"`
	Measures    []string    `json:"measures" yaml:"measures"`
	Options     Options     `json:"options" yaml:"options"`
	Tree        *pivot.Node `json:"tree" yaml:"tree"`

	md *pivot.Metadata
}

// Run pivots a dataset. The context is checked before the build starts.
func Run(ctx context.Context, ds *dataset.Dataset, opt Options, log logr.Logger) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := opt.Configure(ds.Model(pivot.WithLogger(log.WithValues("dataset", ds.Name))))
	if err != nil {
		return nil, fmt.Errorf("configure %s: %w", ds.Name, err)
	}
	root, err := m.Nest()
	if err != nil {
		return nil, fmt.Errorf("pivot %s: %w", ds.Name, err)
	}
	cfg := m.Config()
	return &Report{
		ID:          uuid.NewString(),
		Dataset:     ds.Name,
		GeneratedAt: time.Now().UTC(),
		Rows:        len(ds.Rows),
		Levels:      cfg.ColumnOrder,
		Measures:    m.Metadata().Measures,
		Options:     opt,
		Tree:        root,
		md:          m.Metadata(),
	}, nil
}

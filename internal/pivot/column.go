package pivot

import "strings"

// FieldType classifies a column as a grouping source or an aggregated value.
type FieldType string

const (
	Dimension FieldType = "dimension"
	Measure   FieldType = "measure"
)

// Column describes one column of the flat input.
type Column struct {
	Name      string      `json:"name" yaml:"name"`
	Field     string      `json:"field,omitempty" yaml:"field,omitempty"`
	FieldType FieldType   `json:"fieldType,omitempty" yaml:"fieldType,omitempty"`
	DataType  DataType    `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	Label     string      `json:"label,omitempty" yaml:"label,omitempty"`
	Aggregate Granularity `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
	// Parser is the identifier of the value parser, assigned by NormalizeColumns.
	Parser string `json:"parser,omitempty" yaml:"parser,omitempty"`

	parser ValueParser
}

// IsMeasure reports whether the column is aggregated rather than grouped.
func (c *Column) IsMeasure() bool { return c.FieldType == Measure }

// Metadata is the normalized, indexed view of a column list.
type Metadata struct {
	// Columns in input order.
	Columns []*Column
	// Index maps column name to descriptor.
	Index map[string]*Column
	// Measures lists measure column names in input order.
	Measures []string
	// Names lists every column name in input order.
	Names []string
}

// NormalizeColumns indexes the descriptors, filling in labels and parsers.
// The descriptors are copied; the caller's slice is left untouched.
func NormalizeColumns(cols []Column) *Metadata {
	md := &Metadata{
		Columns: make([]*Column, 0, len(cols)),
		Index:   make(map[string]*Column, len(cols)),
	}
	for i := range cols {
		c := cols[i]
		if c.Label == "" {
			c.Label = LabelFromField(c.Field)
		}
		c.Parser, c.parser = parserFor(c.DataType)
		md.Columns = append(md.Columns, &c)
		md.Index[c.Name] = &c
		md.Names = append(md.Names, c.Name)
		if c.IsMeasure() {
			md.Measures = append(md.Measures, c.Name)
		}
	}
	return md
}

// LabelFromField derives a display label from a structured field path such as
// "/catalog/sales:Revenue": the segment after the last '/', cut after the first
// ':' when one follows at least one character.
func LabelFromField(field string) string {
	field = field[strings.LastIndex(field, "/")+1:]
	if i := strings.Index(field, ":"); i > 0 {
		return field[:i+1]
	}
	return field
}

// Lookup returns the descriptor for name.
func (md *Metadata) Lookup(name string) (*Column, bool) {
	if md == nil {
		return nil, false
	}
	c, ok := md.Index[name]
	return c, ok
}

// IsMeasure reports whether name is a known measure column.
func (md *Metadata) IsMeasure(name string) bool {
	c, ok := md.Lookup(name)
	return ok && c.IsMeasure()
}

// Dimensions returns the non-measure column names in input order.
func (md *Metadata) Dimensions() []string {
	var out []string
	for _, c := range md.Columns {
		if !c.IsMeasure() {
			out = append(out, c.Name)
		}
	}
	return out
}

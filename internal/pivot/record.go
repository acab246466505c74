package pivot

import (
	"strings"

	json "github.com/goccy/go-json"
)

// ParsedSuffix is appended to a column name to address its parsed value.
const ParsedSuffix = "_parsed"

// Record is one indexed input row: raw and parsed values by column name.
type Record struct {
	raw    map[string]any
	parsed map[string]any
}

// Raw returns the unmodified input value of a column.
func (r Record) Raw(name string) any { return r.raw[name] }

// Parsed returns the parser output of a column.
func (r Record) Parsed(name string) any { return r.parsed[name] }

// Get resolves either "<name>" or "<name>_parsed".
func (r Record) Get(key string) (any, bool) {
	if v, ok := r.raw[key]; ok {
		return v, true
	}
	if name, ok := strings.CutSuffix(key, ParsedSuffix); ok {
		v, ok := r.parsed[name]
		return v, ok
	}
	return nil, false
}

// Map flattens the record into a single map with "_parsed" sibling keys.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.raw)*2)
	for k, v := range r.raw {
		out[k] = v
	}
	for k, v := range r.parsed {
		out[k+ParsedSuffix] = v
	}
	return out
}

func (r Record) MarshalJSON() ([]byte, error) { return json.Marshal(r.Map()) }

func (r Record) MarshalYAML() (any, error) { return r.Map(), nil }

// IndexRows turns positional rows into records using normalized metadata.
// Every row must carry exactly one value per column.
func IndexRows(rows [][]any, md *Metadata) ([]Record, error) {
	if md == nil {
		return nil, ErrNoMetadata
	}
	ncol := len(md.Names)
	out := make([]Record, 0, len(rows))
	for i, row := range rows {
		if len(row) != ncol {
			return nil, &RowShapeError{Row: i, Expected: ncol, Actual: len(row)}
		}
		rec := Record{raw: make(map[string]any, ncol), parsed: make(map[string]any, ncol)}
		for j, v := range row {
			name := md.Names[j]
			rec.raw[name] = v
			rec.parsed[name] = md.Index[name].parse(v)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Column) parse(v any) any {
	if c.parser == nil {
		c.Parser, c.parser = parserFor(c.DataType)
	}
	return c.parser.Parse(v)
}

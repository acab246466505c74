package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/pivotree/internal/pivot"
)

// Dataset is a flat table with its column descriptors, the input of a pivot.
type Dataset struct {
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Columns []pivot.Column `json:"columns" yaml:"columns"`
	Rows    [][]any        `json:"rows" yaml:"rows"`
}

// Model wraps the dataset in a pivot model.
func (d *Dataset) Model(opts ...pivot.Option) *pivot.Model {
	return pivot.NewModel(d.Rows, d.Columns, opts...)
}

// Validate checks that columns are named uniquely and rows are aligned.
func (d *Dataset) Validate() error {
	if len(d.Columns) == 0 {
		return ErrNoColumns
	}
	seen := make(map[string]bool, len(d.Columns))
	for i, c := range d.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("column %d: empty name", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("column %q: duplicate name", c.Name)
		}
		seen[c.Name] = true
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return &pivot.RowShapeError{Row: i, Expected: len(d.Columns), Actual: len(row)}
		}
	}
	return nil
}

// Options tunes decoders that have to infer column metadata.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// Number holds the separators used to recognize numeric text.
	Number pivot.NumberFormat
	// Dimensions forces the named columns to be grouped even when numeric.
	Dimensions []string
}

// Decoder reads one dataset file format.
type Decoder interface {
	CanDecode(filename string) bool
	Decode(filename string, content []byte, opt Options) (*Dataset, error)
}

var registry []Decoder

// Register adds a decoder implementation to the registry.
func Register(d Decoder) {
	registry = append(registry, d)
}

// Load reads path with the first decoder that accepts its name. The dataset
// name defaults to the file name without extension.
func Load(path string, opt Options) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Decode(filepath.Base(path), data, opt)
}

// Decode parses content, picking the decoder by filename.
func Decode(filename string, content []byte, opt Options) (*Dataset, error) {
	for _, d := range registry {
		if !d.CanDecode(filename) {
			continue
		}
		ds, err := d.Decode(filename, content, opt)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", filename, err)
		}
		if ds.Name == "" {
			ds.Name = strings.TrimSuffix(filename, filepath.Ext(filename))
		}
		if err := ds.Validate(); err != nil {
			return nil, fmt.Errorf("decode %s: %w", filename, err)
		}
		return ds, nil
	}
	return nil, fmt.Errorf("%s: %w", filename, ErrUnsupported)
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func init() {
	Register(jsonDecoder{})
	Register(yamlDecoder{})
	Register(csvDecoder{})
}

var (
	// ErrUnsupported indicates a file format without a decoder.
	ErrUnsupported = errors.New("unsupported dataset format")
	// ErrNoColumns indicates a dataset without column descriptors.
	ErrNoColumns = errors.New("dataset has no columns")
)

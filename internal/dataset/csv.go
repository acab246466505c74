package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/pivotree/internal/pivot"
)

type csvDecoder struct{}

func (csvDecoder) CanDecode(filename string) bool { return hasExt(filename, ".csv", ".tsv") }

// Decode reads a header row and infers column metadata: columns where every
// non-empty cell is numeric become number measures, columns where every
// non-empty cell is a date become date dimensions, the rest string dimensions.
// Measure cells are stored as float64, empty measure cells as nil.
func (csvDecoder) Decode(filename string, content []byte, opt Options) (*Dataset, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = opt.Delimiter
	if r.Comma == 0 {
		r.Comma = sniffDelimiter(filename, content)
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoColumns
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	var cells [][]string
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) != ncol {
			return nil, fmt.Errorf("line %d: %w", line, &pivot.RowShapeError{Row: len(cells), Expected: ncol, Actual: len(rec)})
		}
		cells = append(cells, append([]string(nil), rec...))
	}

	forced := make(map[string]bool, len(opt.Dimensions))
	for _, d := range opt.Dimensions {
		forced[strings.ToLower(strings.TrimSpace(d))] = true
	}
	isNumber := func(s string) bool {
		_, ok := opt.Number.ParseNumber(s)
		return ok
	}
	cols := make([]pivot.Column, ncol)
	for j, h := range header {
		h = strings.TrimSpace(h)
		cols[j] = pivot.Column{Name: h, FieldType: pivot.Dimension, DataType: pivot.DataTypeString}
		switch {
		case forced[strings.ToLower(h)]:
		case allCells(cells, j, isNumber):
			cols[j].FieldType, cols[j].DataType = pivot.Measure, pivot.DataTypeNumber
		case allCells(cells, j, isDate):
			cols[j].DataType = pivot.DataTypeDate
		}
	}

	rows := make([][]any, len(cells))
	for i, rec := range cells {
		row := make([]any, ncol)
		for j, s := range rec {
			s = strings.TrimSpace(s)
			if cols[j].FieldType != pivot.Measure {
				row[j] = s
				continue
			}
			if f, ok := opt.Number.ParseNumber(s); ok {
				row[j] = f
			}
		}
		rows[i] = row
	}
	return &Dataset{Columns: cols, Rows: rows}, nil
}

// allCells reports whether fn accepts every non-empty cell of column j and at
// least one cell is non-empty.
func allCells(cells [][]string, j int, fn func(string) bool) bool {
	seen := false
	for _, rec := range cells {
		s := strings.TrimSpace(rec[j])
		if s == "" {
			continue
		}
		if !fn(s) {
			return false
		}
		seen = true
	}
	return seen
}

func isDate(s string) bool {
	dp := pivot.ParseDate(s)
	return dp.Year != ""
}

// sniffDelimiter uses the extension first, then counts separators on the
// header line.
func sniffDelimiter(filename string, content []byte) rune {
	if strings.HasSuffix(strings.ToLower(filename), ".tsv") {
		return '\t'
	}
	line, _, _ := bytes.Cut(content, []byte("\n"))
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

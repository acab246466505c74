package pivot

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DataType tags the kind of values a column holds.
type DataType string

const (
	DataTypeDate   DataType = "date"
	DataTypeString DataType = "string"
	DataTypeNumber DataType = "number"
)

// PassThrough is the parser identifier of columns without a registered parser.
const PassThrough = "parse"

// ValueParser maps a raw column value to its parsed form.
type ValueParser interface {
	Parse(raw any) any
}

type passThroughParser struct{}

func (passThroughParser) Parse(raw any) any { return raw }

type dateParser struct{}

func (dateParser) Parse(raw any) any { return ParseDate(raw) }

var parsers = map[DataType]ValueParser{
	DataTypeDate: dateParser{},
}

// parserFor resolves the parser identifier and implementation for a data type.
func parserFor(dt DataType) (string, ValueParser) {
	if p, ok := parsers[dt]; ok {
		return string(dt), p
	}
	return PassThrough, passThroughParser{}
}

// DateParts is the parsed form of a date value with its bucket keys.
type DateParts struct {
	Date      time.Time `json:"date"`
	Year      string    `json:"year"`
	Month     string    `json:"month"`
	YearMonth string    `json:"yearmonth"`
}

// Bucket returns the grouping key for the given granularity.
func (d DateParts) Bucket(g Granularity) string {
	switch g {
	case Month:
		return d.Month
	case YearMonth:
		return d.YearMonth
	default:
		return d.Year
	}
}

// ParseDate converts a raw value to DateParts. Month is the zero-based month
// index, so YearMonth for March 2021 is "20212". Values that cannot be read as
// a date produce zero DateParts.
func ParseDate(raw any) DateParts {
	t, ok := toTime(raw)
	if !ok {
		return DateParts{}
	}
	t = t.UTC()
	year := strconv.Itoa(t.Year())
	month := strconv.Itoa(int(t.Month()) - 1)
	return DateParts{Date: t, Year: year, Month: month, YearMonth: year + month}
}

func toTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		return parseTimeMaybe(strings.TrimSpace(v))
	case nil:
		return time.Time{}, false
	}
	if ms, ok := toNumber(raw); ok && !math.IsNaN(ms) && !math.IsInf(ms, 0) {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano, time.RFC3339, "2006-01-02", "2006/01/02", "01/02/2006", "02.01.2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toNumber coerces a primitive to float64. Strings must be plain decimal
// literals; thousands separators are not stripped here.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// NumberFormat describes locale separators used when measures arrive as text.
type NumberFormat struct {
	Decimal   rune
	Thousands rune
}

// ParseNumber reads a measure value honoring the configured separators.
// A zero NumberFormat falls back to plain decimal literals.
func (nf NumberFormat) ParseNumber(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok || (nf.Decimal == 0 && nf.Thousands == 0) {
		return toNumber(v)
	}
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	dec := nf.Decimal
	if dec == 0 {
		dec = '.'
	}
	if nf.Thousands != 0 && nf.Thousands != dec {
		raw = strings.ReplaceAll(raw, string(nf.Thousands), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	return toNumber(raw)
}

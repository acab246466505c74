package pivot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Granularity selects the date bucket used as grouping key.
type Granularity string

const (
	Year      Granularity = "year"
	Month     Granularity = "month"
	YearMonth Granularity = "yearmonth"
)

// ParseGranularity maps user input to a Granularity, defaulting to Year.
func ParseGranularity(s string) Granularity {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Year, Month, YearMonth:
		return g
	default:
		return Year
	}
}

// KeyFunc computes the grouping key of a record for one column.
type KeyFunc func(r Record, column string) any

// Resolvers maps a data type to the key function used for its columns.
type Resolvers map[DataType]KeyFunc

// DateBucketing groups date columns by the parsed bucket key.
func DateBucketing(g Granularity) KeyFunc {
	return func(r Record, column string) any {
		dp, ok := r.Parsed(column).(DateParts)
		if !ok {
			return r.Raw(column)
		}
		return dp.Bucket(g)
	}
}

// resolversFor builds the key functions implied by a configuration.
func resolversFor(cfg Config) Resolvers {
	res := Resolvers{}
	if cfg.DateGroupBy != "" {
		res[DataTypeDate] = DateBucketing(ParseGranularity(string(cfg.DateGroupBy)))
	}
	return res
}

// keyOf resolves the grouping key for a column, falling back to the raw value.
func (res Resolvers) keyOf(r Record, col *Column) string {
	if fn, ok := res[col.DataType]; ok {
		return keyString(fn(r, col.Name))
	}
	return keyString(r.Raw(col.Name))
}

// keyString renders a grouping value the way it appears as a node key.
func keyString(v any) string {
	switch k := v.(type) {
	case nil:
		return ""
	case string:
		return k
	case float64:
		return formatFloat(k)
	case float32:
		return formatFloat(float64(k))
	case time.Time:
		return k.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return k.String()
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

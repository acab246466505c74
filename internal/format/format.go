// Package format renders measure totals for display.
package format

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders one value.
type Formatter func(v float64) string

// Options configures the grouped formatters.
type Options struct {
	// Decimals renders two fraction digits instead of none.
	Decimals bool `json:"decimals,omitempty" yaml:"decimals,omitempty"`
	// SI scales the value and appends a metric prefix (k, M, G, ...).
	SI bool `json:"si,omitempty" yaml:"si,omitempty"`
	// Symbol prefixes currency values; "$" when empty.
	Symbol string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	// Locale selects digit grouping and decimal marks; English when unset.
	Locale language.Tag `json:"-" yaml:"-"`
}

// Names lists the formatters known to Get.
var Names = []string{"raw", "thousands", "currency", "axis"}

// Get returns the named formatter, falling back to Raw for unknown names.
func Get(name string, opts Options) Formatter {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "thousands":
		return Thousands(opts)
	case "currency":
		return Currency(opts)
	case "axis":
		return Axis(nil)
	default:
		return Raw()
	}
}

// Raw prints integers as-is and anything with a fraction with two decimals.
func Raw() Formatter {
	return func(v float64) string {
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

// Thousands groups digits by locale.
func Thousands(opts Options) Formatter {
	p := message.NewPrinter(locale(opts.Locale))
	scale := 0
	if opts.Decimals {
		scale = 2
	}
	return func(v float64) string {
		prefix := ""
		if opts.SI {
			v, prefix = siScale(v)
		}
		return p.Sprint(number.Decimal(v, number.Scale(scale))) + prefix
	}
}

// Currency is Thousands preceded by the currency symbol.
func Currency(opts Options) Formatter {
	sym := opts.Symbol
	if sym == "" {
		sym = "$"
	}
	f := Thousands(opts)
	return func(v float64) string { return sym + " " + f(v) }
}

// Axis renders compact tick labels: the value is truncated to an integer,
// scaled to an SI prefix and the integer part passed through fn.
func Axis(fn func(string) string) Formatter {
	if fn == nil {
		fn = func(s string) string { return s }
	}
	return func(v float64) string {
		scaled, prefix := siScale(math.Trunc(v))
		return fn(strconv.FormatFloat(math.Trunc(scaled), 'f', 0, 64)) + prefix
	}
}

var siPrefixes = []string{"", "k", "M", "G", "T", "P", "E"}

func siScale(v float64) (float64, string) {
	i := 0
	for math.Abs(v) >= 1000 && i < len(siPrefixes)-1 {
		v /= 1000
		i++
	}
	return v, siPrefixes[i]
}

// Capitalize turns a column name into a heading: lowercase with underscores
// as spaces.
func Capitalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", " ")
}

func locale(tag language.Tag) language.Tag {
	if tag == language.Und {
		return language.English
	}
	return tag
}

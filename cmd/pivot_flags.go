package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/pivotree/internal/analysis"
	cfgpkg "github.com/KaramelBytes/pivotree/internal/config"
	"github.com/KaramelBytes/pivotree/internal/dataset"
	"github.com/KaramelBytes/pivotree/internal/format"
	"github.com/KaramelBytes/pivotree/internal/utils"
)

// pivotFlags holds the flags shared by pivot and pivot-batch.
type pivotFlags struct {
	groupBy     []string
	noExtras    bool
	dateBucket  string
	sortBy      string
	asc         bool
	noAggregate bool
	locale      string
	decimal     string
	thousands   string
	delimiter   string
	dimensions  []string
	format      string
	numbers     string
}

func (f *pivotFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVarP(&f.groupBy, "group-by", "g", nil, "comma-separated grouping columns, outermost first (repeatable)")
	fs.BoolVar(&f.noExtras, "no-extras", false, "do not append dimensions missing from --group-by")
	fs.StringVar(&f.dateBucket, "date-bucket", "", "group date columns by: year|month|yearmonth")
	fs.StringVar(&f.sortBy, "sort-by", "", "order siblings by this column")
	fs.BoolVar(&f.asc, "asc", false, "sort ascending (default descending)")
	fs.BoolVar(&f.noAggregate, "no-aggregate", false, "keep member rows on leaves instead of rolling them up")
	fs.StringVar(&f.locale, "locale", "", "BCP 47 locale for collation and number formats (e.g. en, de, sv)")
	fs.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	fs.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'|'apostrophe'")
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (detected if omitted)")
	fs.StringSliceVar(&f.dimensions, "dimension", nil, "CSV: treat these numeric columns as dimensions (repeatable)")
	fs.StringVarP(&f.format, "format", "f", "", "output format: json|yaml|markdown (default from config)")
	fs.StringVar(&f.numbers, "numbers", "", "Markdown number format: raw|thousands|currency|axis (default from config)")
}

// configOptions layers the config file over built-in defaults.
func configOptions(c *cfgpkg.Global) analysis.Options {
	opt := analysis.DefaultOptions()
	opt.DateBucket = c.DateGroupBy
	opt.Order = c.SortOrder
	opt.Aggregate = c.Aggregate
	opt.NestExtras = c.NestExtras
	opt.Locale = c.Locale
	opt.DecimalSeparator = c.DecimalSeparator
	opt.ThousandsSeparator = c.ThousandsSeparator
	return opt
}

// options layers flags over configOptions.
func (f *pivotFlags) options(cmd *cobra.Command, c *cfgpkg.Global) analysis.Options {
	opt := configOptions(c)
	fs := cmd.Flags()
	opt.GroupBy = f.groupBy
	if fs.Changed("no-extras") {
		opt.NestExtras = !f.noExtras
	}
	if fs.Changed("date-bucket") {
		opt.DateBucket = f.dateBucket
	}
	if f.sortBy != "" {
		opt.SortBy = f.sortBy
	}
	if fs.Changed("asc") {
		opt.Order = "desc"
		if f.asc {
			opt.Order = "asc"
		}
	}
	if fs.Changed("no-aggregate") {
		opt.Aggregate = !f.noAggregate
	}
	if f.locale != "" {
		opt.Locale = f.locale
	}
	if f.decimal != "" {
		opt.DecimalSeparator = f.decimal
	}
	if f.thousands != "" {
		opt.ThousandsSeparator = f.thousands
	}
	return opt
}

func (f *pivotFlags) datasetOptions(opt analysis.Options) (dataset.Options, error) {
	nf, err := opt.NumberFormat()
	if err != nil {
		return dataset.Options{}, err
	}
	dopt := dataset.Options{Number: nf, Dimensions: f.dimensions}
	switch f.delimiter {
	case "":
	case ",":
		dopt.Delimiter = ','
	case "\t", "tab":
		dopt.Delimiter = '\t'
	case ";":
		dopt.Delimiter = ';'
	default:
		return dataset.Options{}, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return dopt, nil
}

// renderer resolves the output format and number formatter.
func (f *pivotFlags) renderer(c *cfgpkg.Global, opt analysis.Options) (string, format.Formatter, error) {
	out := strings.ToLower(f.format)
	if out == "" {
		out = strings.ToLower(c.OutputFormat)
	}
	switch out {
	case "", "json":
		out = "json"
	case "yaml", "yml":
		out = "yaml"
	case "markdown", "md":
		out = "markdown"
	default:
		return "", nil, fmt.Errorf("unsupported --format: %s (use json|yaml|markdown)", out)
	}
	numbers := f.numbers
	if numbers == "" {
		numbers = c.NumberFormat
	}
	nopt := numberOptions(c)
	if tag, err := language.Parse(opt.Locale); err == nil {
		nopt.Locale = tag
	}
	return out, format.Get(numbers, nopt), nil
}

func render(rep *analysis.Report, out string, numbers format.Formatter) ([]byte, error) {
	switch out {
	case "yaml":
		b, err := yaml.Marshal(rep)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	case "markdown":
		return []byte(rep.Markdown(numbers)), nil
	default:
		return utils.PrettyJSON(rep)
	}
}

func extension(out string) string {
	switch out {
	case "yaml":
		return ".yaml"
	case "markdown":
		return ".md"
	default:
		return ".json"
	}
}

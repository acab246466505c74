package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/pivotree/internal/analysis"
	cfgpkg "github.com/KaramelBytes/pivotree/internal/config"
	"github.com/KaramelBytes/pivotree/internal/format"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Pivotree configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		w := cmd.OutOrStdout()
		if cfg.DateGroupBy != "" {
			fmt.Fprintf(w, "date_group_by: %s\n", cfg.DateGroupBy)
		}
		fmt.Fprintf(w, "sort_order: %s\n", cfg.SortOrder)
		fmt.Fprintf(w, "aggregate: %t\n", cfg.Aggregate)
		fmt.Fprintf(w, "nest_extras: %t\n", cfg.NestExtras)
		fmt.Fprintf(w, "locale: %s\n", cfg.Locale)
		if cfg.DecimalSeparator != "" {
			fmt.Fprintf(w, "decimal_separator: %q\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(w, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		fmt.Fprintf(w, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(w, "number_format: %s\n", cfg.NumberFormat)
		fmt.Fprintf(w, "currency_symbol: %s\n", cfg.CurrencySymbol)
		fmt.Fprintf(w, "serve_addr: %s\n", cfg.ServeAddr)
		fmt.Fprintf(w, "batch_concurrency: %d\n", cfg.BatchConcurrency)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "date_group_by":
		switch v := strings.ToLower(val); v {
		case "", "none":
			c.DateGroupBy = ""
		case "year", "month", "yearmonth":
			c.DateGroupBy = v
		default:
			return fmt.Errorf("invalid date_group_by: %s (use year, month, yearmonth or none)", val)
		}
	case "sort_order":
		switch strings.ToLower(val) {
		case "asc", "ascending":
			c.SortOrder = "asc"
		case "desc", "descending":
			c.SortOrder = "desc"
		default:
			return fmt.Errorf("invalid sort_order: %s (use asc or desc)", val)
		}
	case "aggregate", "nest_extras":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		if key == "aggregate" {
			c.Aggregate = b
		} else {
			c.NestExtras = b
		}
	case "locale":
		if _, err := language.Parse(val); err != nil {
			return fmt.Errorf("invalid locale: %w", err)
		}
		c.Locale = val
	case "decimal_separator":
		if _, err := analysis.ParseSeparator(val, false); err != nil {
			return err
		}
		c.DecimalSeparator = val
	case "thousands_separator":
		if _, err := analysis.ParseSeparator(val, true); err != nil {
			return err
		}
		c.ThousandsSeparator = val
	case "output_format":
		switch v := strings.ToLower(val); v {
		case "json", "yaml", "markdown":
			c.OutputFormat = v
		default:
			return fmt.Errorf("invalid output_format: %s (use json, yaml or markdown)", val)
		}
	case "number_format":
		v := strings.ToLower(val)
		if !slices.Contains(format.Names, v) {
			return fmt.Errorf("invalid number_format: %s (use %s)", val, strings.Join(format.Names, ", "))
		}
		c.NumberFormat = v
	case "currency_symbol":
		c.CurrencySymbol = val
	case "serve_addr":
		c.ServeAddr = val
	case "batch_concurrency":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for batch_concurrency: %v", val)
		}
		c.BatchConcurrency = i
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

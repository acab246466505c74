package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Pivot defaults
	DateGroupBy string `mapstructure:"date_group_by" yaml:"date_group_by"`
	SortOrder   string `mapstructure:"sort_order" yaml:"sort_order"`
	Aggregate   bool   `mapstructure:"aggregate" yaml:"aggregate"`
	NestExtras  bool   `mapstructure:"nest_extras" yaml:"nest_extras"`
	Locale      string `mapstructure:"locale" yaml:"locale"`

	// Input parsing
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Output
	OutputFormat   string `mapstructure:"output_format" yaml:"output_format"`
	NumberFormat   string `mapstructure:"number_format" yaml:"number_format"`
	CurrencySymbol string `mapstructure:"currency_symbol" yaml:"currency_symbol"`

	// Server and batch runs
	ServeAddr        string `mapstructure:"serve_addr" yaml:"serve_addr"`
	BatchConcurrency int    `mapstructure:"batch_concurrency" yaml:"batch_concurrency"`
}

// Dir returns ~/.pivotree.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".pivotree"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.pivotree/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("PIVOTREE")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("date_group_by", "")
	v.SetDefault("sort_order", "desc")
	v.SetDefault("aggregate", true)
	v.SetDefault("nest_extras", true)
	v.SetDefault("locale", "en")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("output_format", "json")
	v.SetDefault("number_format", "raw")
	v.SetDefault("currency_symbol", "$")
	v.SetDefault("serve_addr", "127.0.0.1:8080")
	v.SetDefault("batch_concurrency", 4)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = 1
	}
	return &c, nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/pivotree/internal/config"
	"github.com/KaramelBytes/pivotree/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	log      = logr.Discard()
	flushLog = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "pivotree",
	Short: "Pivotree CLI: nest flat tables into rolled-up trees",
	Long: `Pivotree groups the rows of a flat dataset by an ordered list of dimension
columns, sums every measure at each level of the resulting tree, and writes the
tree as JSON, YAML or a Markdown outline.`,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { flushLog() },
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize logging and configuration before every command
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.pivotree/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	l, flush, err := logging.New(logging.Options{Debug: debug})
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to set up logging: %v\n", err)
	} else {
		log, flushLog = l, flush
	}

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	log.V(1).Info("loaded config", "file", cfgFile, "outputFormat", cfg.OutputFormat)
}

// currentConfig returns the loaded configuration or the defaults.
func currentConfig() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return &cfgpkg.Global{SortOrder: "desc", Aggregate: true, NestExtras: true, Locale: "en",
			OutputFormat: "json", NumberFormat: "raw", CurrencySymbol: "$", BatchConcurrency: 1}
	}
	cfg = c
	return cfg
}

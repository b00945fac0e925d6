package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/ibesdash/internal/config"
	"github.com/KaramelBytes/ibesdash/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Diagnostics go to stderr; reports go to the command's output.
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "ibesdash",
	Short: "ibesdash: clean and explore IBES analyst estimate tables",
	Long: `ibesdash loads an IBES earnings-estimate table (CSV/TSV/XLSX), classifies its columns,
imputes or drops missing values, removes Tukey IQR outliers and derives the absolute
forecast error per year, then reports or exports the results.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ibesdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = nil
	}
	cfg = c

	level := zerolog.InfoLevel
	if cfg != nil {
		if lvl, err := logging.ParseLevel(cfg.LogLevel); err == nil {
			level = lvl
		} else {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		}
	}
	if debug {
		level = zerolog.DebugLevel
	}
	logger = logging.New(os.Stderr, level)
}

// settings returns the loaded config or built-in defaults.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		TickerColumn:   "TICKER",
		EstimateColumn: "VALUE",
		ActualColumn:   "ACTUAL",
		DateColumn:     "ACTDATS",
		ZeroActual:     "flag",
		HistogramBins:  30,
		SampleRows:     5,
	}
}

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
	// Required IBES columns
	TickerColumn   string `mapstructure:"ticker_column" yaml:"ticker_column"`
	EstimateColumn string `mapstructure:"estimate_column" yaml:"estimate_column"`
	ActualColumn   string `mapstructure:"actual_column" yaml:"actual_column"`
	DateColumn     string `mapstructure:"date_column" yaml:"date_column"`

	// Input parsing
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows"`

	// Pipeline and report
	ZeroActual    string `mapstructure:"zero_actual" yaml:"zero_actual"`
	StableOutlier bool   `mapstructure:"stable_outliers" yaml:"stable_outliers"`
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	SampleRows    int    `mapstructure:"sample_rows" yaml:"sample_rows"`

	WorkspaceDir string `mapstructure:"workspace_dir" yaml:"workspace_dir"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ibesdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".ibesdash")
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
// Precedence: env > config file (cfgFile or ~/.ibesdash/config.yaml) > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("IBESDASH")
	v.AutomaticEnv()

	v.SetDefault("ticker_column", "TICKER")
	v.SetDefault("estimate_column", "VALUE")
	v.SetDefault("actual_column", "ACTUAL")
	v.SetDefault("date_column", "ACTDATS")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("zero_actual", "flag")
	v.SetDefault("stable_outliers", false)
	v.SetDefault("histogram_bins", 30)
	v.SetDefault("sample_rows", 5)
	v.SetDefault("workspace_dir", "")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".ibesdash"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve workspace_dir default: ~/.ibesdash/workspace
	if c.WorkspaceDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		c.WorkspaceDir = filepath.Join(home, ".ibesdash", "workspace")
	}
	return &c, nil
}

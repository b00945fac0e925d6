package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/ibesdash/internal/analysis"
	cfgpkg "github.com/KaramelBytes/ibesdash/internal/config"
	"github.com/KaramelBytes/ibesdash/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ibesdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "ticker_column: %s\n", cfg.TickerColumn)
		fmt.Fprintf(out, "estimate_column: %s\n", cfg.EstimateColumn)
		fmt.Fprintf(out, "actual_column: %s\n", cfg.ActualColumn)
		fmt.Fprintf(out, "date_column: %s\n", cfg.DateColumn)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %q\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		if cfg.MaxRows > 0 {
			fmt.Fprintf(out, "max_rows: %d\n", cfg.MaxRows)
		}
		fmt.Fprintf(out, "zero_actual: %s\n", cfg.ZeroActual)
		fmt.Fprintf(out, "stable_outliers: %t\n", cfg.StableOutlier)
		fmt.Fprintf(out, "histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Fprintf(out, "sample_rows: %d\n", cfg.SampleRows)
		fmt.Fprintf(out, "workspace_dir: %s\n", cfg.WorkspaceDir)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
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
		switch key {
		case "ticker_column":
			cfg.TickerColumn = val
		case "estimate_column":
			cfg.EstimateColumn = val
		case "actual_column":
			cfg.ActualColumn = val
		case "date_column":
			cfg.DateColumn = val
		case "delimiter":
			switch val {
			case ",", ";", "|", "tab", "":
				cfg.Delimiter = val
			default:
				return fmt.Errorf("invalid delimiter: %s (use ',' ';' '|' or tab)", val)
			}
		case "decimal_separator":
			cfg.DecimalSeparator = val
		case "thousands_separator":
			cfg.ThousandsSeparator = val
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_rows: %v", val)
			}
			cfg.MaxRows = i
		case "zero_actual":
			p, err := analysis.ParseZeroActualPolicy(val)
			if err != nil {
				return err
			}
			cfg.ZeroActual = string(p)
		case "stable_outliers":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for stable_outliers: %w", err)
			}
			cfg.StableOutlier = b
		case "histogram_bins":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for histogram_bins: %v", val)
			}
			cfg.HistogramBins = i
		case "sample_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for sample_rows: %v", val)
			}
			cfg.SampleRows = i
		case "workspace_dir":
			cfg.WorkspaceDir = val
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return err
			}
			cfg.LogLevel = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

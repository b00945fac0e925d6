package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/ibesdash/internal/analysis"
	"github.com/KaramelBytes/ibesdash/internal/table"
	"github.com/spf13/cobra"
)

var (
	exInput   inputFlags
	exTickers []string
	exFormat  string

	exHistColumn string
	exHistBins   int
	exZColumns   []string
	exZLimit     int
	exCorrCols   []string
	exBoxColumn  string
	exRegX       string
	exRegY       string
	exScatCols   []string
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Compute exploratory views of the cleaned table",
	Long: `Each subcommand runs the pipeline on <file>.
  hist, zscore, corr, box, scatter  imputed table, outliers kept
  regress                           table after the outlier filter, with YEAR and ERROR`,
}

var exploreHistCmd = &cobra.Command{
	Use:   "hist <file>",
	Short: "Equal-width histogram of a numeric column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := exploreTable(cmd, args[0], false)
		if err != nil {
			return err
		}
		name := firstNonEmpty(exHistColumn, settings().ActualColumn)
		c, ok := t.Column(name)
		if !ok {
			return fmt.Errorf("column %q not found", name)
		}
		bins := settings().HistogramBins
		if cmd.Flags().Changed("bins") {
			bins = exHistBins
		}
		if bins < 1 {
			return fmt.Errorf("--bins must be at least 1")
		}
		hist, err := analysis.Histogram(c, bins)
		if err != nil {
			return err
		}
		g := grid{header: []string{"lo", "hi", "count"}}
		for _, b := range hist {
			g.add(num(b.Lo), num(b.Hi), strconv.Itoa(b.Count))
		}
		return renderGrid(cmd.OutOrStdout(), g, exFormat)
	},
}

var exploreZScoreCmd = &cobra.Command{
	Use:   "zscore <file>",
	Short: "Standardize numeric columns to z-scores",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := exploreTable(cmd, args[0], false)
		if err != nil {
			return err
		}
		cols := exZColumns
		if len(cols) == 0 {
			cols = analysis.Classify(t).Numeric
		}
		z, err := analysis.Standardize(t, cols)
		if err != nil {
			return err
		}
		return renderGrid(cmd.OutOrStdout(), tableGrid(z, exZLimit), exFormat)
	},
}

var exploreCorrCmd = &cobra.Command{
	Use:   "corr <file>",
	Short: "Pearson correlation matrix of numeric columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := exploreTable(cmd, args[0], false)
		if err != nil {
			return err
		}
		cols := exCorrCols
		if len(cols) == 0 {
			cols = analysis.Classify(t).Numeric
		}
		m, err := analysis.Correlations(t, cols)
		if err != nil {
			return err
		}
		g := grid{header: append([]string{""}, m.Columns...)}
		for i, name := range m.Columns {
			row := []string{name}
			for _, v := range m.Values[i] {
				row = append(row, num(v))
			}
			g.add(row...)
		}
		return renderGrid(cmd.OutOrStdout(), g, exFormat)
	},
}

var exploreBoxCmd = &cobra.Command{
	Use:   "box <file>",
	Short: "Per-ticker box plot summary of a numeric column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := exploreTable(cmd, args[0], false)
		if err != nil {
			return err
		}
		boxes, err := analysis.BoxByGroup(t, settings().TickerColumn, firstNonEmpty(exBoxColumn, settings().ActualColumn), exTickers)
		if err != nil {
			return err
		}
		g := grid{header: []string{"ticker", "n", "q1", "median", "q3", "whisker_lo", "whisker_hi", "outliers"}}
		for _, b := range boxes {
			g.add(b.Group, strconv.Itoa(b.Count), num(b.Q1), num(b.Median), num(b.Q3),
				num(b.WhiskerLo), num(b.WhiskerHi), strconv.Itoa(b.OutlierCount))
		}
		return renderGrid(cmd.OutOrStdout(), g, exFormat)
	},
}

var exploreRegressCmd = &cobra.Command{
	Use:   "regress <file>",
	Short: "Least-squares fit of one numeric column on another",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := exploreTable(cmd, args[0], true)
		if err != nil {
			return err
		}
		x := firstNonEmpty(exRegX, settings().EstimateColumn)
		y := firstNonEmpty(exRegY, settings().ActualColumn)
		fit, err := analysis.Regress(t, x, y)
		if err != nil {
			return err
		}
		g := grid{header: []string{"x", "y", "n", "intercept", "slope", "r2"}}
		g.add(fit.X, fit.Y, strconv.Itoa(fit.N), num(fit.Intercept), num(fit.Slope), num(fit.RSquared))
		return renderGrid(cmd.OutOrStdout(), g, exFormat)
	},
}

var exploreScatterCmd = &cobra.Command{
	Use:   "scatter <file>",
	Short: "Point pairs for every combination of the selected numeric columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := exploreTable(cmd, args[0], false)
		if err != nil {
			return err
		}
		cols := exScatCols
		if len(cols) == 0 {
			cols = analysis.Classify(t).Numeric
			if len(cols) > 3 {
				cols = cols[:3]
			}
		}
		panels, err := analysis.Scatter(t, cols)
		if err != nil {
			return err
		}
		g := grid{header: []string{"x", "y", "x_value", "y_value"}}
		for _, p := range panels {
			for i := range p.Xs {
				g.add(p.X, p.Y, num(p.Xs[i]), num(p.Ys[i]))
			}
		}
		return renderGrid(cmd.OutOrStdout(), g, exFormat)
	},
}

// exploreTable runs the pipeline and narrows one of its tables to --tickers.
// filtered selects the outlier-filtered table with YEAR and ERROR; otherwise
// the imputed table with outliers kept is used.
func exploreTable(cmd *cobra.Command, path string, filtered bool) (*table.Table, error) {
	res, err := exInput.run(cmd.Context(), cmd, path, nil)
	if err != nil {
		return nil, err
	}
	t := res.Resolved
	if filtered {
		t = res.Augmented
	}
	if len(exTickers) == 0 {
		return t, nil
	}
	return analysis.FilterGroups(t, settings().TickerColumn, exTickers)
}

// tableGrid renders the first limit rows of t; limit <= 0 renders all.
func tableGrid(t *table.Table, limit int) grid {
	n := t.Rows()
	if limit > 0 && limit < n {
		n = limit
	}
	g := grid{header: t.Names()}
	for i := 0; i < n; i++ {
		g.add(t.Record(i)...)
	}
	return g
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exInput.register(exploreCmd, true)
	exploreCmd.PersistentFlags().StringSliceVar(&exTickers, "tickers", nil, "restrict to these tickers (comma-separated)")
	exploreCmd.PersistentFlags().StringVar(&exFormat, "format", "table", "output format: table|csv|json")

	exploreCmd.AddCommand(exploreHistCmd, exploreZScoreCmd, exploreCorrCmd, exploreBoxCmd, exploreScatterCmd, exploreRegressCmd)
	exploreHistCmd.Flags().StringVar(&exHistColumn, "column", "", "numeric column to bin (default: actual column)")
	exploreHistCmd.Flags().IntVar(&exHistBins, "bins", analysis.DefaultBins, "number of bins")
	exploreZScoreCmd.Flags().StringSliceVar(&exZColumns, "columns", nil, "columns to standardize (default: all numeric)")
	exploreZScoreCmd.Flags().IntVar(&exZLimit, "limit", 0, "maximum rows to print (0 = all)")
	exploreCorrCmd.Flags().StringSliceVar(&exCorrCols, "columns", nil, "columns to correlate (default: all numeric)")
	exploreBoxCmd.Flags().StringVar(&exBoxColumn, "column", "", "numeric column to summarize (default: actual column)")
	exploreScatterCmd.Flags().StringSliceVar(&exScatCols, "columns", nil, "columns to pair (default: first three numeric)")
	exploreRegressCmd.Flags().StringVar(&exRegX, "x", "", "predictor column (default: estimate column)")
	exploreRegressCmd.Flags().StringVar(&exRegY, "y", "", "response column (default: actual column)")
}

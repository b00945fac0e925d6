package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/ibesdash/internal/analysis"
	"github.com/KaramelBytes/ibesdash/internal/parser"
	"github.com/KaramelBytes/ibesdash/internal/table"
	"github.com/KaramelBytes/ibesdash/internal/workspace"
	"github.com/spf13/cobra"
)

// inputFlags are the loader and pipeline flags shared by every command that
// reads an IBES file. Unset flags fall back to the config.
type inputFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
	zeroActual string
	stable     bool
}

// register adds the flags to cmd; persistent flags are inherited by subcommands.
func (f *inputFlags) register(cmd *cobra.Command, persistent bool) {
	fl := cmd.Flags()
	if persistent {
		fl = cmd.PersistentFlags()
	}
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	fl.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	fl.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	fl.IntVar(&f.maxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to read")
	fl.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fl.StringVar(&f.zeroActual, "zero-actual", "", "rows with a zero actual: 'flag' keeps them without an error, 'skip' removes them")
	fl.BoolVar(&f.stable, "stable", false, "repeat the outlier filter until no row is removed")
}

func (f *inputFlags) parserOptions() (parser.Options, error) {
	c := settings()
	opt := parser.DefaultOptions()
	opt.MaxRows = c.MaxRows
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	opt.SheetName = f.sheetName
	opt.SheetIndex = f.sheetIndex

	delim := firstNonEmpty(f.delimiter, c.Delimiter)
	switch delim {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", delim)
	}
	dec := firstNonEmpty(f.decimal, c.DecimalSeparator)
	switch strings.ToLower(strings.TrimSpace(dec)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", dec)
	}
	thou := firstNonEmpty(f.thousands, c.ThousandsSeparator)
	switch strings.ToLower(thou) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thou)
	}
	return opt, nil
}

// pipelineOptions resolves flags over workspace settings over config.
func (f *inputFlags) pipelineOptions(cmd *cobra.Command, ws *workspace.Settings) (analysis.Options, error) {
	c := settings()
	if ws == nil {
		ws = &workspace.Settings{}
	}
	opt := analysis.DefaultOptions()
	opt.Schema = analysis.Schema{
		Ticker:   c.TickerColumn,
		Estimate: c.EstimateColumn,
		Actual:   c.ActualColumn,
		Date:     c.DateColumn,
	}
	policy, err := analysis.ParseZeroActualPolicy(firstNonEmpty(f.zeroActual, ws.ZeroActual, c.ZeroActual))
	if err != nil {
		return opt, err
	}
	opt.ZeroActual = policy
	opt.Stable = c.StableOutlier
	if ws.StableOutlier != nil {
		opt.Stable = *ws.StableOutlier
	}
	if cmd.Flags().Changed("stable") {
		opt.Stable = f.stable
	}
	opt.Logger = logger
	return opt, nil
}

// load reads path into a table.
func (f *inputFlags) load(path string) (*table.Table, error) {
	popt, err := f.parserOptions()
	if err != nil {
		return nil, err
	}
	t, err := parser.LoadFile(path, popt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	logger.Debug().Str("file", path).Int("rows", t.Rows()).Int("columns", t.NumCols()).Msg("loaded table")
	return t, nil
}

// run loads path and executes the cleaning pipeline on it. ws may be nil.
func (f *inputFlags) run(ctx context.Context, cmd *cobra.Command, path string, ws *workspace.Workspace) (*analysis.Result, error) {
	t, err := f.load(path)
	if err != nil {
		return nil, err
	}
	var over *workspace.Settings
	if ws != nil {
		over = ws.Config
	}
	opt, err := f.pipelineOptions(cmd, over)
	if err != nil {
		return nil, err
	}
	res, err := analysis.Run(ctx, t, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	res.Name = filepath.Base(path)
	return res, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Package parser loads delimited text and spreadsheet files into typed tables.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/ibesdash/internal/table"
)

// Options controls how a file is read and typed.
type Options struct {
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, picked from the file extension (',' or '\t').
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// XLSX sheet selection: name wins over the 1-based index.
	SheetName  string
	SheetIndex int
}

// DefaultOptions reads every row of the first sheet with auto-detected separators.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Loader reads one file format into a table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt Options) (*table.Table, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported file format")

// LoadFile picks a loader by file extension and reads path into a table.
func LoadFile(path string, opt Options) (*table.Table, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

// missingTokens are cell values read as missing, after trimming.
var missingTokens = map[string]bool{
	"": true, "NA": true, "N/A": true, "NaN": true, "nan": true,
	"NULL": true, "null": true, "None": true, "-": true,
}

// IsMissing reports whether a raw cell denotes a missing value.
func IsMissing(raw string) bool {
	return missingTokens[strings.TrimSpace(raw)]
}

// buildTable types each column from its raw cells: numeric when every
// non-missing cell parses as a number, categorical otherwise.
func buildTable(header []string, rows [][]string, opt Options) (*table.Table, error) {
	cols := make([]*table.Column, len(header))
	for j, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", j+1)
		}
		nums := make([]float64, len(rows))
		strs := make([]string, len(rows))
		null := make([]bool, len(rows))
		numeric := true
		for i, rec := range rows {
			var raw string
			if j < len(rec) {
				raw = strings.TrimSpace(rec[j])
			}
			if IsMissing(raw) {
				null[i] = true
				continue
			}
			strs[i] = raw
			if !numeric {
				continue
			}
			if x, ok := parseNumeric(raw, opt); ok {
				nums[i] = x
			} else {
				numeric = false
			}
		}
		if numeric {
			for i := range nums {
				if null[i] {
					nums[i] = nan()
				}
			}
			cols[j] = table.NewNumeric(name, nums)
		} else {
			cols[j] = table.NewCategorical(name, strs, null)
		}
	}
	t, err := table.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	return t, nil
}

package analysis

import (
	"github.com/KaramelBytes/ibesdash/internal/table"
	"gonum.org/v1/gonum/stat"
)

// MaxImputePercent is the largest missing share, in percent, that is still imputed.
// Columns above it are dropped.
const MaxImputePercent = 30

// Action is what the resolver did to a column.
type Action string

const (
	ActionKeep   Action = "keep"
	ActionImpute Action = "impute"
	ActionDrop   Action = "drop"
)

// Resolution records the resolver's decision for one column.
type Resolution struct {
	ColumnDescriptor
	Action Action
	// Fill is the imputed value rendered as text (mean or mode); empty unless imputed.
	Fill string
}

// ResolveMissing applies the cleaning policy column by column and returns a new
// table in the original column order plus one Resolution per input column.
// The input table is not modified. Dropping every column yields a valid table
// with zero columns.
func ResolveMissing(t *table.Table) (*table.Table, []Resolution) {
	descs := Describe(t)
	res := make([]Resolution, 0, len(descs))
	var kept []*table.Column
	for i, c := range t.Columns() {
		r := Resolution{ColumnDescriptor: descs[i]}
		switch {
		case r.MissingCount == 0:
			r.Action = ActionKeep
			kept = append(kept, c.Clone())
		case r.MissingCount*100 <= t.Rows()*MaxImputePercent:
			r.Action = ActionImpute
			col, fill := impute(c)
			r.Fill = fill
			kept = append(kept, col)
		default:
			r.Action = ActionDrop
		}
		res = append(res, r)
	}
	return table.MustNew(kept...), res
}

// impute fills missing cells with the column mean (numeric) or mode (categorical).
func impute(c *table.Column) (*table.Column, string) {
	if c.Kind() == table.Numeric {
		m := stat.Mean(c.Present(), nil)
		return c.FillNumeric(m), formatFloat(m)
	}
	m := mode(c)
	return c.FillCategorical(m), m
}

// mode returns the most frequent non-missing value of a categorical column.
// Ties go to the value whose first occurrence comes earliest in row order.
func mode(c *table.Column) string {
	counts := map[string]int{}
	var order []string
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		v := c.String(i)
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestN := "", 0
	for _, v := range order {
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best
}

package analysis

import (
	"fmt"

	"github.com/KaramelBytes/ibesdash/internal/table"
)

// TukeyK is the IQR multiplier for the fences.
const TukeyK = 1.5

// Bounds are the Tukey fences computed for one column on the rows that
// survived every earlier column.
type Bounds struct {
	Column  string
	Q1, Q3  float64
	IQR     float64
	Lower   float64
	Upper   float64
	RowsIn  int
	RowsOut int
}

// Removed returns how many rows this column's fences dropped.
func (b Bounds) Removed() int { return b.RowsIn - b.RowsOut }

// TukeyBounds computes Q1, Q3 and the 1.5*IQR fences of vals. Missing (NaN)
// values must be filtered out by the caller. ok is false for an empty slice.
func TukeyBounds(vals []float64) (b Bounds, ok bool) {
	if len(vals) == 0 {
		return Bounds{}, false
	}
	s := sortedCopy(vals)
	b.Q1 = quantile(s, 0.25)
	b.Q3 = quantile(s, 0.75)
	b.IQR = b.Q3 - b.Q1
	b.Lower = b.Q1 - TukeyK*b.IQR
	b.Upper = b.Q3 + TukeyK*b.IQR
	return b, true
}

// FilterOutliers removes rows outside the Tukey fences of each listed numeric
// column, one column at a time: every column's fences are computed on the rows
// that survived the previous columns (sequential shrinking). Rows with a
// missing value in a listed column are dropped by that column's filter.
//
// It returns the filtered table and the per-column bounds in processing order.
// An empty table yields an empty table and no error.
func FilterOutliers(t *table.Table, columns []string) (*table.Table, []Bounds, error) {
	cols := make([]*table.Column, len(columns))
	for i, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			return nil, nil, fmt.Errorf("%w: outlier column %q not found", ErrSchema, name)
		}
		if c.Kind() != table.Numeric {
			return nil, nil, fmt.Errorf("%w: outlier column %q is %s", ErrSchema, name, c.Kind())
		}
		cols[i] = c
	}

	rows := make([]int, t.Rows())
	for i := range rows {
		rows[i] = i
	}
	trace := make([]Bounds, 0, len(cols))
	for _, c := range cols {
		vals := make([]float64, 0, len(rows))
		for _, r := range rows {
			if !c.IsMissing(r) {
				vals = append(vals, c.Float(r))
			}
		}
		b, ok := TukeyBounds(vals)
		b.Column = c.Name()
		b.RowsIn = len(rows)
		if !ok {
			rows = rows[:0]
			trace = append(trace, b)
			continue
		}
		kept := rows[:0:0]
		for _, r := range rows {
			if c.IsMissing(r) {
				continue
			}
			v := c.Float(r)
			if v >= b.Lower && v <= b.Upper {
				kept = append(kept, r)
			}
		}
		rows = kept
		b.RowsOut = len(rows)
		trace = append(trace, b)
	}
	return t.Take(rows), trace, nil
}

// FilterOutliersStable repeats FilterOutliers until a pass removes no rows.
// The result is a fixed point: filtering it again returns the same rows.
// passes counts the filtering passes run, including the final no-op pass.
func FilterOutliersStable(t *table.Table, columns []string) (out *table.Table, passes int, err error) {
	out = t
	for {
		next, _, err := FilterOutliers(out, columns)
		if err != nil {
			return nil, passes, err
		}
		passes++
		if next.Rows() == out.Rows() {
			return next, passes, nil
		}
		out = next
	}
}

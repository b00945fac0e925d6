package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/ibesdash/internal/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the histogram bin count used when none is given.
const DefaultBins = 30

// Bin is one equal-width histogram bucket. The last bin includes Hi.
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Histogram buckets the non-missing values of a numeric column into bins
// equal-width bins spanning [min, max]. bins <= 0 selects DefaultBins. A column
// with a single distinct value yields one bin holding every value.
func Histogram(c *table.Column, bins int) ([]Bin, error) {
	if c.Kind() != table.Numeric {
		return nil, fmt.Errorf("%w: histogram column %q is %s", ErrSchema, c.Name(), c.Kind())
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	vals := c.Present()
	if len(vals) == 0 {
		return []Bin{}, nil
	}
	lo, hi := floats.Min(vals), floats.Max(vals)
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(vals)}}, nil
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out, nil
}

// Standardize returns a table of z-scores (x-mean)/std for the listed numeric
// columns, using the sample standard deviation. A constant column becomes all
// zeros; missing cells stay missing.
func Standardize(t *table.Table, columns []string) (*table.Table, error) {
	cols := make([]*table.Column, 0, len(columns))
	for _, name := range columns {
		c, err := numericColumn(t, name)
		if err != nil {
			return nil, err
		}
		present := c.Present()
		var mean, std float64
		if len(present) > 0 {
			mean, std = stat.MeanStdDev(present, nil)
		}
		z := c.Floats()
		for i, v := range z {
			switch {
			case math.IsNaN(v):
			case std == 0 || math.IsNaN(std):
				z[i] = 0
			default:
				z[i] = (v - mean) / std
			}
		}
		cols = append(cols, table.NewNumeric(name, z))
	}
	return table.New(cols...)
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Correlations computes pairwise Pearson correlations over rows where both
// columns are present. Pairs with fewer than two rows or zero variance get 0.
func Correlations(t *table.Table, columns []string) (*CorrMatrix, error) {
	cols := make([]*table.Column, len(columns))
	for i, name := range columns {
		c, err := numericColumn(t, name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	n := len(cols)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			x, y := pairwise(cols[a], cols[b])
			r := 0.0
			if len(x) >= 2 {
				r = stat.Correlation(x, y, nil)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), columns...), Values: mat}, nil
}

// BoxSummary is the five-number summary behind one box of a box plot.
type BoxSummary struct {
	Group        string
	Count        int
	Q1, Median   float64
	Q3           float64
	WhiskerLo    float64
	WhiskerHi    float64
	OutlierCount int
}

// BoxByGroup summarizes the value column per distinct group value, restricted
// to keep when it is non-empty. Groups are sorted by key. Whiskers extend to the
// most extreme values inside the 1.5*IQR fences.
func BoxByGroup(t *table.Table, group, value string, keep []string) ([]BoxSummary, error) {
	g, ok := t.Column(group)
	if !ok {
		return nil, fmt.Errorf("%w: group column %q not found", ErrSchema, group)
	}
	v, err := numericColumn(t, value)
	if err != nil {
		return nil, err
	}
	allowed := stringSet(keep)
	byKey := map[string][]float64{}
	for i := 0; i < t.Rows(); i++ {
		if g.IsMissing(i) || v.IsMissing(i) {
			continue
		}
		k := g.String(i)
		if len(allowed) > 0 && !allowed[k] {
			continue
		}
		byKey[k] = append(byKey[k], v.Float(i))
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]BoxSummary, 0, len(keys))
	for _, k := range keys {
		s := sortedCopy(byKey[k])
		b, _ := TukeyBounds(s)
		box := BoxSummary{Group: k, Count: len(s), Q1: b.Q1, Median: quantile(s, 0.5), Q3: b.Q3,
			WhiskerLo: math.Inf(1), WhiskerHi: math.Inf(-1)}
		for _, x := range s {
			if x < b.Lower || x > b.Upper {
				box.OutlierCount++
				continue
			}
			box.WhiskerLo = math.Min(box.WhiskerLo, x)
			box.WhiskerHi = math.Max(box.WhiskerHi, x)
		}
		out = append(out, box)
	}
	return out, nil
}

// Fit is a least-squares line y = Intercept + Slope*x.
type Fit struct {
	X, Y      string
	N         int
	Intercept float64
	Slope     float64
	RSquared  float64
}

// Regress fits y on x over rows where both are present.
func Regress(t *table.Table, x, y string) (*Fit, error) {
	xc, err := numericColumn(t, x)
	if err != nil {
		return nil, err
	}
	yc, err := numericColumn(t, y)
	if err != nil {
		return nil, err
	}
	xs, ys := pairwise(xc, yc)
	f := &Fit{X: x, Y: y, N: len(xs)}
	if len(xs) < 2 {
		return f, nil
	}
	f.Intercept, f.Slope = stat.LinearRegression(xs, ys, nil, false)
	f.RSquared = stat.RSquared(xs, ys, nil, f.Intercept, f.Slope)
	if math.IsNaN(f.Intercept) || math.IsNaN(f.Slope) {
		f.Intercept, f.Slope, f.RSquared = 0, 0, 0
	}
	return f, nil
}

// ScatterPanel holds the points of one column pair of a scatter matrix.
type ScatterPanel struct {
	X, Y   string
	Xs, Ys []float64
}

// Scatter returns one panel per unordered column pair (lower triangle, in
// column order), each holding the rows where both columns are present.
func Scatter(t *table.Table, columns []string) ([]ScatterPanel, error) {
	if len(columns) < 2 {
		return nil, fmt.Errorf("scatter needs at least two columns, got %d", len(columns))
	}
	cols := make([]*table.Column, len(columns))
	for i, name := range columns {
		c, err := numericColumn(t, name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	var out []ScatterPanel
	for b := 1; b < len(cols); b++ {
		for a := 0; a < b; a++ {
			xs, ys := pairwise(cols[a], cols[b])
			out = append(out, ScatterPanel{X: columns[a], Y: columns[b], Xs: xs, Ys: ys})
		}
	}
	return out, nil
}

// FilterGroups returns the rows whose value in column is one of keep. An
// empty keep returns every row.
func FilterGroups(t *table.Table, column string, keep []string) (*table.Table, error) {
	c, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: filter column %q not found", ErrSchema, column)
	}
	allowed := stringSet(keep)
	rows := make([]int, 0, t.Rows())
	for i := 0; i < t.Rows(); i++ {
		if len(allowed) == 0 || (!c.IsMissing(i) && allowed[c.String(i)]) {
			rows = append(rows, i)
		}
	}
	return t.Take(rows), nil
}

// DistinctValues returns the distinct non-missing values of a column in
// first-occurrence order.
func DistinctValues(c *table.Column) []string {
	seen := map[string]bool{}
	var out []string
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		v := c.String(i)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func numericColumn(t *table.Table, name string) (*table.Column, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: column %q not found", ErrSchema, name)
	}
	if c.Kind() != table.Numeric {
		return nil, fmt.Errorf("%w: column %q is %s", ErrSchema, name, c.Kind())
	}
	return c, nil
}

func pairwise(a, b *table.Column) (x, y []float64) {
	for i := 0; i < a.Len(); i++ {
		if a.IsMissing(i) || b.IsMissing(i) {
			continue
		}
		x = append(x, a.Float(i))
		y = append(y, b.Float(i))
	}
	return x, y
}

func stringSet(vals []string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

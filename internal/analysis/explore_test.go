package analysis

import (
	"testing"

	"github.com/KaramelBytes/ibesdash/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram(t *testing.T) {
	c := table.NewNumeric("x", []float64{0, 1, 2, 3, 4, nan})
	bins, err := Histogram(c, 2)
	require.NoError(t, err)
	require.Len(t, bins, 2)
	assert.Equal(t, 2, bins[0].Count)
	assert.Equal(t, 3, bins[1].Count)
	assert.Equal(t, 4.0, bins[1].Hi)

	bins, err = Histogram(table.NewNumeric("k", []float64{7, 7}), 0)
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, 2, bins[0].Count)

	bins, err = Histogram(table.NewNumeric("e", nil), 10)
	require.NoError(t, err)
	assert.Empty(t, bins)

	_, err = Histogram(table.NewCategorical("c", []string{"a"}, nil), 3)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestHistogramDefaultBins(t *testing.T) {
	bins, err := Histogram(table.NewNumeric("x", seq(1, 100)), 0)
	require.NoError(t, err)
	assert.Len(t, bins, DefaultBins)
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 100, total)
}

func TestStandardize(t *testing.T) {
	in := table.MustNew(
		table.NewNumeric("x", []float64{1, 2, 3}),
		table.NewNumeric("k", []float64{4, 4, 4}),
	)
	z, err := Standardize(in, []string{"x", "k"})
	require.NoError(t, err)
	x, _ := z.Column("x")
	assert.InDeltaSlice(t, []float64{-1, 0, 1}, x.Floats(), 1e-12)
	k, _ := z.Column("k")
	assert.Equal(t, []float64{0, 0, 0}, k.Floats())
}

func TestCorrelations(t *testing.T) {
	in := table.MustNew(
		table.NewNumeric("x", []float64{1, 2, 3, 4}),
		table.NewNumeric("y", []float64{2, 4, 6, 8}),
		table.NewNumeric("z", []float64{4, 3, 2, 1}),
		table.NewNumeric("k", []float64{1, 1, 1, 1}),
	)
	m, err := Correlations(in, []string{"x", "y", "z", "k"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-12)
	assert.InDelta(t, -1.0, m.Values[0][2], 1e-12)
	assert.Equal(t, 0.0, m.Values[0][3])
	assert.Equal(t, m.Values[1][2], m.Values[2][1])
	assert.Equal(t, 1.0, m.Values[3][3])
}

func TestBoxByGroup(t *testing.T) {
	in := table.MustNew(
		table.NewCategorical("TICKER", []string{"B", "A", "A", "A", "A", "A"}, nil),
		table.NewNumeric("ACTUAL", []float64{5, 1, 2, 3, 4, 100}),
	)
	boxes, err := BoxByGroup(in, "TICKER", "ACTUAL", nil)
	require.NoError(t, err)
	require.Len(t, boxes, 2)
	a := boxes[0]
	assert.Equal(t, "A", a.Group)
	assert.Equal(t, 5, a.Count)
	assert.Equal(t, 3.0, a.Median)
	assert.Equal(t, 1, a.OutlierCount)
	assert.Equal(t, 1.0, a.WhiskerLo)
	assert.Equal(t, 4.0, a.WhiskerHi)
	assert.Equal(t, 5.0, boxes[1].WhiskerHi)

	boxes, err = BoxByGroup(in, "TICKER", "ACTUAL", []string{"B"})
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.Equal(t, "B", boxes[0].Group)
}

func TestRegress(t *testing.T) {
	in := table.MustNew(
		table.NewNumeric("VALUE", []float64{1, 2, 3, 4}),
		table.NewNumeric("ACTUAL", []float64{3, 5, 7, 9}),
	)
	fit, err := Regress(in, "VALUE", "ACTUAL")
	require.NoError(t, err)
	assert.Equal(t, 4, fit.N)
	assert.InDelta(t, 1.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-9)
}

func TestFilterGroups(t *testing.T) {
	in := table.MustNew(
		table.NewCategorical("TICKER", []string{"A", "B", "A", ""}, []bool{false, false, false, true}),
		table.NewNumeric("x", []float64{1, 2, 3, 4}),
	)
	out, err := FilterGroups(in, "TICKER", []string{"A"})
	require.NoError(t, err)
	x, _ := out.Column("x")
	assert.Equal(t, []float64{1, 3}, x.Floats())

	all, err := FilterGroups(in, "TICKER", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Rows())

	tick, _ := in.Column("TICKER")
	assert.Equal(t, []string{"A", "B"}, DistinctValues(tick))
}

func TestScatterLowerTriangle(t *testing.T) {
	in := table.MustNew(
		table.NewNumeric("a", []float64{1, 2, nan}),
		table.NewNumeric("b", []float64{3, 4, 5}),
		table.NewNumeric("c", []float64{6, nan, 8}),
		table.NewCategorical("t", []string{"x", "y", "z"}, nil),
	)
	panels, err := Scatter(in, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, panels, 3)
	assert.Equal(t, [2]string{"a", "b"}, [2]string{panels[0].X, panels[0].Y})
	assert.Equal(t, []float64{1, 2}, panels[0].Xs)
	assert.Equal(t, [2]string{"a", "c"}, [2]string{panels[1].X, panels[1].Y})
	assert.Equal(t, []float64{1}, panels[1].Xs)
	assert.Equal(t, [2]string{"b", "c"}, [2]string{panels[2].X, panels[2].Y})
	assert.Equal(t, []float64{3, 5}, panels[2].Xs)
	assert.Equal(t, []float64{6, 8}, panels[2].Ys)

	_, err = Scatter(in, []string{"a"})
	assert.Error(t, err)
	_, err = Scatter(in, []string{"a", "t"})
	assert.ErrorIs(t, err, ErrSchema)
}

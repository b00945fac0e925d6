package analysis

import (
	"math"

	"github.com/KaramelBytes/ibesdash/internal/table"
)

var nan = math.NaN()

// ibesFixture is a four-row IBES extract: VALUE has one missing cell (25%),
// NOTE is 75% missing, and no row falls outside the Tukey fences after
// imputation.
func ibesFixture() *table.Table {
	return table.MustNew(
		table.NewCategorical("TICKER", []string{"A", "A", "B", "B"}, nil),
		table.NewNumeric("VALUE", []float64{1, nan, 1, 1}),
		table.NewNumeric("ACTUAL", []float64{2, 3, 4, 5}),
		table.NewNumeric("ACTDATS", []float64{20200315, 20210102, 20210505, 20220101}),
		table.NewCategorical("NOTE", []string{"x", "", "", ""}, []bool{false, true, true, true}),
	)
}

func seq(from, to float64) []float64 {
	var out []float64
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/ibesdash/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunEndToEnd(t *testing.T) {
	in := ibesFixture()
	res, err := Run(context.Background(), in, DefaultOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"NOTE"}, res.Dropped())
	assert.Equal(t, []string{"VALUE", "ACTUAL", "ACTDATS"}, res.ResolvedPartition.Numeric)
	assert.Equal(t, 4, res.Filtered.Rows())
	require.Len(t, res.Bounds, 3)
	assert.Empty(t, res.Anomalies)

	require.Len(t, res.YearErrors, 3)
	assert.Equal(t, 2020, res.YearErrors[0].Year)
	assert.InDelta(t, 0.5, res.YearErrors[0].MeanError, 1e-12)
	assert.Equal(t, 2021, res.YearErrors[1].Year)
	assert.InDelta(t, (2.0/3.0+0.75)/2, res.YearErrors[1].MeanError, 1e-12)
	assert.Equal(t, 2022, res.YearErrors[2].Year)
	assert.InDelta(t, 0.8, res.YearErrors[2].MeanError, 1e-12)

	// stages never touch the input
	v, _ := in.Column("VALUE")
	assert.True(t, v.IsMissing(1))
	assert.Equal(t, 5, in.NumCols())
}

func TestRunSchemaErrorReturnsNoResult(t *testing.T) {
	in := table.MustNew(table.NewCategorical("TICKER", []string{"A"}, nil))
	res, err := Run(context.Background(), in, DefaultOptions())
	assert.Nil(t, res)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "VALUE", se.Column)
}

func TestRunRequiredColumnDroppedByResolver(t *testing.T) {
	in := table.MustNew(
		table.NewCategorical("TICKER", []string{"A", "B"}, nil),
		table.NewNumeric("VALUE", []float64{nan, nan}),
		table.NewNumeric("ACTUAL", []float64{1, 2}),
		table.NewNumeric("ACTDATS", []float64{20200101, 20200102}),
	)
	_, err := Run(context.Background(), in, DefaultOptions())
	assert.ErrorIs(t, err, ErrSchema)
}

func TestRunEmptyInput(t *testing.T) {
	in := table.MustNew(
		table.NewCategorical("TICKER", nil, nil),
		table.NewNumeric("VALUE", nil),
		table.NewNumeric("ACTUAL", nil),
		table.NewNumeric("ACTDATS", nil),
	)
	res, err := Run(context.Background(), in, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.YearErrors)
	assert.Equal(t, 0, res.Filtered.Rows())
	assert.Contains(t, res.Warnings, ErrEmptyInput.Error())
}

func TestRunStableOption(t *testing.T) {
	n := 14
	tickers := make([]string, n)
	dates := make([]float64, n)
	ones := make([]float64, n)
	for i := range tickers {
		tickers[i] = "A"
		dates[i] = 20200101
		ones[i] = 1
	}
	in := table.MustNew(
		table.NewCategorical("TICKER", tickers, nil),
		table.NewNumeric("VALUE", ones),
		table.NewNumeric("ACTUAL", append(seq(1, 12), 20, 100)),
		table.NewNumeric("ACTDATS", dates),
	)
	opt := DefaultOptions()
	res, err := Run(context.Background(), in, opt)
	require.NoError(t, err)
	assert.Equal(t, 13, res.Filtered.Rows())

	opt.Stable = true
	res, err = Run(context.Background(), in, opt)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Filtered.Rows())
	assert.Equal(t, 3, res.OutlierPasses)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, ibesFixture(), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultMarkdown(t *testing.T) {
	res, err := Run(context.Background(), ibesFixture(), DefaultOptions())
	require.NoError(t, err)
	res.Name = "ibes.csv"
	md := res.Markdown(2)
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: ibes.csv",
		"- numeric: VALUE, ACTUAL, ACTDATS",
		"NOTE: categorical (missing 3, 75.0%) → dropped",
		"VALUE: numeric (missing 1, 25.0%) → imputed with 1",
		"[OUTLIER FILTER]",
		"- 2021: mean |error| 0.7083 (n=2)",
		"[HEAD OF CLEANED DATA]",
		"| TICKER | VALUE | ACTUAL | ACTDATS |",
	} {
		assert.True(t, strings.Contains(md, want), "markdown missing %q:\n%s", want, md)
	}
	assert.NotContains(t, res.Markdown(0), "[HEAD OF CLEANED DATA]")
}

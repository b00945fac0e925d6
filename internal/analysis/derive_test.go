package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/ibesdash/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveMetricsYearAndError(t *testing.T) {
	resolved, _ := ResolveMissing(ibesFixture())
	d, err := DeriveMetrics(resolved, DefaultSchema(), FlagZeroActual)
	require.NoError(t, err)
	assert.Empty(t, d.Anomalies)

	value, _ := d.Table.Column("VALUE")
	assert.InDelta(t, 1.0, value.Float(1), 1e-12, "missing estimate imputed with the mean")

	year, _ := d.Table.Column(YearColumn)
	assert.Equal(t, []float64{2020, 2021, 2021, 2022}, year.Floats())
	errc, _ := d.Table.Column(ErrorColumn)
	assert.InDelta(t, 0.5, errc.Float(0), 1e-12)
	assert.InDelta(t, 2.0/3.0, errc.Float(1), 1e-12)
	assert.InDelta(t, 0.667, errc.Float(1), 5e-4)
}

func TestDeriveMetricsStringDates(t *testing.T) {
	in := table.MustNew(
		table.NewCategorical("TICKER", []string{"A"}, nil),
		table.NewNumeric("VALUE", []float64{1}),
		table.NewNumeric("ACTUAL", []float64{3}),
		table.NewCategorical("ACTDATS", []string{"2021-01-02"}, nil),
	)
	d, err := DeriveMetrics(in, DefaultSchema(), FlagZeroActual)
	require.NoError(t, err)
	year, _ := d.Table.Column(YearColumn)
	assert.Equal(t, 2021.0, year.Float(0))
}

func zeroActualFixture() *table.Table {
	return table.MustNew(
		table.NewCategorical("TICKER", []string{"A", "B", "C"}, nil),
		table.NewNumeric("VALUE", []float64{1, 1, 2}),
		table.NewNumeric("ACTUAL", []float64{2, 0, 4}),
		table.NewNumeric("ACTDATS", []float64{20190101, 20190202, 20200101}),
	)
}

func TestDeriveMetricsFlagsZeroActual(t *testing.T) {
	d, err := DeriveMetrics(zeroActualFixture(), DefaultSchema(), FlagZeroActual)
	require.NoError(t, err)
	require.Len(t, d.Anomalies, 1)
	assert.Equal(t, 1, d.Anomalies[0].Row)
	assert.ErrorIs(t, d.Anomalies[0].Reason, ErrDivision)
	assert.Equal(t, 3, d.Table.Rows())

	errc, _ := d.Table.Column(ErrorColumn)
	assert.True(t, errc.IsMissing(1))

	ye, err := MeanErrorByYear(d.Table)
	require.NoError(t, err)
	require.Len(t, ye, 2)
	assert.Equal(t, 2019, ye[0].Year)
	assert.Equal(t, 1, ye[0].Count)
	assert.InDelta(t, 0.5, ye[0].MeanError, 1e-12)
	for _, e := range ye {
		assert.False(t, math.IsInf(e.MeanError, 0) || math.IsNaN(e.MeanError))
	}
}

func TestDeriveMetricsSkipsZeroActual(t *testing.T) {
	d, err := DeriveMetrics(zeroActualFixture(), DefaultSchema(), SkipZeroActual)
	require.NoError(t, err)
	assert.Len(t, d.Anomalies, 1)
	assert.Equal(t, 2, d.Table.Rows())
	tick, _ := d.Table.Column("TICKER")
	assert.Equal(t, []string{"A", "C"}, tick.Strings())
}

func TestDeriveMetricsMalformedDate(t *testing.T) {
	in := table.MustNew(
		table.NewCategorical("TICKER", []string{"A"}, nil),
		table.NewNumeric("VALUE", []float64{1}),
		table.NewNumeric("ACTUAL", []float64{3}),
		table.NewCategorical("ACTDATS", []string{"Q1"}, nil),
	)
	_, err := DeriveMetrics(in, DefaultSchema(), FlagZeroActual)
	assert.ErrorIs(t, err, ErrMalformedDate)
}

func TestDeriveMetricsSchemaErrors(t *testing.T) {
	in := table.MustNew(
		table.NewCategorical("TICKER", []string{"A"}, nil),
		table.NewNumeric("VALUE", []float64{1}),
		table.NewNumeric("ACTDATS", []float64{20200101}),
	)
	_, err := DeriveMetrics(in, DefaultSchema(), FlagZeroActual)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "actual", se.Role)
	assert.ErrorIs(t, err, ErrSchema)

	in = table.MustNew(
		table.NewCategorical("TICKER", []string{"A"}, nil),
		table.NewCategorical("VALUE", []string{"high"}, nil),
		table.NewNumeric("ACTUAL", []float64{1}),
		table.NewNumeric("ACTDATS", []float64{20200101}),
	)
	_, err = DeriveMetrics(in, DefaultSchema(), FlagZeroActual)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "estimate", se.Role)
}

func TestMeanErrorByYearSortsAscending(t *testing.T) {
	in := table.MustNew(
		table.NewNumeric(YearColumn, []float64{2020, 2019, 2019}),
		table.NewNumeric(ErrorColumn, []float64{0.2, 0.1, 0.3}),
	)
	ye, err := MeanErrorByYear(in)
	require.NoError(t, err)
	require.Len(t, ye, 2)
	assert.Equal(t, 2019, ye[0].Year)
	assert.InDelta(t, 0.2, ye[0].MeanError, 1e-12)
	assert.Equal(t, 2020, ye[1].Year)
	assert.InDelta(t, 0.2, ye[1].MeanError, 1e-12)
}

func TestMeanErrorByYearEmpty(t *testing.T) {
	in := table.MustNew(table.NewNumeric(YearColumn, nil), table.NewNumeric(ErrorColumn, nil))
	ye, err := MeanErrorByYear(in)
	require.NoError(t, err)
	assert.Empty(t, ye)

	_, err = MeanErrorByYear(table.MustNew())
	assert.ErrorIs(t, err, ErrSchema)
}

func TestFilterYears(t *testing.T) {
	series := []YearError{{Year: 2018}, {Year: 2019}, {Year: 2020}, {Year: 2021}}
	assert.Len(t, FilterYears(series, 2019, 2020), 2)
	assert.Len(t, FilterYears(series, 0, 2019), 2)
	assert.Len(t, FilterYears(series, 2021, 0), 1)
	assert.Len(t, FilterYears(series, 0, 0), 4)
}

func TestParseZeroActualPolicy(t *testing.T) {
	p, err := ParseZeroActualPolicy("SKIP")
	require.NoError(t, err)
	assert.Equal(t, SkipZeroActual, p)
	p, err = ParseZeroActualPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FlagZeroActual, p)
	_, err = ParseZeroActualPolicy("inf")
	assert.Error(t, err)
}

package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/ibesdash/internal/table"
)

// Derived column names appended by DeriveMetrics.
const (
	YearColumn  = "YEAR"
	ErrorColumn = "ERROR"
)

// Schema names the columns the pipeline requires.
type Schema struct {
	Ticker   string
	Estimate string
	Actual   string
	Date     string
}

// DefaultSchema matches the IBES export headers.
func DefaultSchema() Schema {
	return Schema{Ticker: "TICKER", Estimate: "VALUE", Actual: "ACTUAL", Date: "ACTDATS"}
}

// Validate checks that every required column exists and that estimate and
// actual are numeric. The first problem found is returned as a *SchemaError.
func (s Schema) Validate(t *table.Table) error {
	for _, req := range []struct{ role, name string }{
		{"ticker", s.Ticker}, {"estimate", s.Estimate}, {"actual", s.Actual}, {"date", s.Date},
	} {
		c, ok := t.Column(req.name)
		if !ok {
			return &SchemaError{Role: req.role, Column: req.name, Reason: "is missing"}
		}
		if (req.role == "estimate" || req.role == "actual") && c.Kind() != table.Numeric {
			return &SchemaError{Role: req.role, Column: req.name, Reason: "is not numeric"}
		}
	}
	return nil
}

// ZeroActualPolicy decides what happens to rows whose actual value is zero.
type ZeroActualPolicy string

const (
	// FlagZeroActual keeps the row with a missing ERROR cell.
	FlagZeroActual ZeroActualPolicy = "flag"
	// SkipZeroActual removes the row from the augmented table.
	SkipZeroActual ZeroActualPolicy = "skip"
)

// ParseZeroActualPolicy accepts "flag" or "skip" (case-insensitive).
func ParseZeroActualPolicy(s string) (ZeroActualPolicy, error) {
	switch ZeroActualPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case FlagZeroActual, "":
		return FlagZeroActual, nil
	case SkipZeroActual:
		return SkipZeroActual, nil
	default:
		return "", fmt.Errorf("invalid zero-actual policy %q (use flag or skip)", s)
	}
}

// Derived is the augmented table plus the rows that could not be scored.
type Derived struct {
	Table *table.Table
	// Anomalies index rows of the input table.
	Anomalies []Anomaly
}

// DeriveMetrics appends YEAR (first four characters of the date field) and
// ERROR = |(estimate-actual)/actual| to t. Rows with a zero or missing actual
// or estimate get no ERROR; policy decides whether they stay with a missing
// ERROR cell or are removed. Either way they are reported as anomalies and never
// contribute an infinite or NaN value to aggregates. A malformed date is a
// hard error.
func DeriveMetrics(t *table.Table, s Schema, policy ZeroActualPolicy) (*Derived, error) {
	if err := s.Validate(t); err != nil {
		return nil, err
	}
	est, _ := t.Column(s.Estimate)
	act, _ := t.Column(s.Actual)
	date, _ := t.Column(s.Date)

	n := t.Rows()
	years := make([]float64, n)
	errs := make([]float64, n)
	var anomalies []Anomaly
	for i := 0; i < n; i++ {
		y, err := yearOf(date, i)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		years[i] = float64(y)

		e, a := est.Float(i), act.Float(i)
		switch {
		case math.IsNaN(e) || math.IsNaN(a):
			errs[i] = math.NaN()
			anomalies = append(anomalies, Anomaly{Row: i, Reason: ErrMissingValue})
		case a == 0:
			errs[i] = math.NaN()
			anomalies = append(anomalies, Anomaly{Row: i, Reason: ErrDivision})
		default:
			errs[i] = math.Abs((e - a) / a)
		}
	}

	out, err := t.With(table.NewNumeric(YearColumn, years))
	if err != nil {
		return nil, err
	}
	out, err = out.With(table.NewNumeric(ErrorColumn, errs))
	if err != nil {
		return nil, err
	}
	if policy == SkipZeroActual && len(anomalies) > 0 {
		skip := make(map[int]bool, len(anomalies))
		for _, a := range anomalies {
			skip[a.Row] = true
		}
		keep := make([]int, 0, n-len(skip))
		for i := 0; i < n; i++ {
			if !skip[i] {
				keep = append(keep, i)
			}
		}
		out = out.Take(keep)
	}
	return &Derived{Table: out, Anomalies: anomalies}, nil
}

// yearOf parses the leading four digits of the date cell. Numeric dates such
// as 20200315 are rendered without a decimal part first.
func yearOf(c *table.Column, i int) (int, error) {
	if c.IsMissing(i) {
		return 0, fmt.Errorf("%w: missing", ErrMalformedDate)
	}
	var raw string
	if c.Kind() == table.Numeric {
		raw = strconv.FormatFloat(c.Float(i), 'f', -1, 64)
	} else {
		raw = strings.TrimSpace(c.String(i))
	}
	if len(raw) < 4 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDate, raw)
	}
	y, err := strconv.Atoi(raw[:4])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDate, raw)
	}
	return y, nil
}

// YearError is the mean forecast error for one year.
type YearError struct {
	Year      int
	MeanError float64
	Count     int
}

// MeanErrorByYear groups the ERROR column of an augmented table by YEAR and
// returns the means in ascending year order. Missing ERROR cells are skipped;
// a year with no scorable rows is omitted. An empty table yields an empty slice.
func MeanErrorByYear(t *table.Table) ([]YearError, error) {
	yc, ok := t.Column(YearColumn)
	if !ok {
		return nil, &SchemaError{Role: "year", Column: YearColumn, Reason: "is missing"}
	}
	ec, ok := t.Column(ErrorColumn)
	if !ok {
		return nil, &SchemaError{Role: "error", Column: ErrorColumn, Reason: "is missing"}
	}
	type acc struct {
		sum float64
		n   int
	}
	groups := map[int]*acc{}
	for i := 0; i < t.Rows(); i++ {
		if yc.IsMissing(i) || ec.IsMissing(i) {
			continue
		}
		y := int(yc.Float(i))
		g := groups[y]
		if g == nil {
			g = &acc{}
			groups[y] = g
		}
		g.sum += ec.Float(i)
		g.n++
	}
	out := make([]YearError, 0, len(groups))
	for y, g := range groups {
		out = append(out, YearError{Year: y, MeanError: g.sum / float64(g.n), Count: g.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

// FilterYears keeps entries with from <= Year <= to. A zero bound is open.
func FilterYears(series []YearError, from, to int) []YearError {
	out := make([]YearError, 0, len(series))
	for _, ye := range series {
		if from != 0 && ye.Year < from {
			continue
		}
		if to != 0 && ye.Year > to {
			continue
		}
		out = append(out, ye)
	}
	return out
}

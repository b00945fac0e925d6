package analysis

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/ibesdash/internal/table"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options controls a pipeline run.
type Options struct {
	Schema     Schema
	ZeroActual ZeroActualPolicy
	// Stable repeats the outlier filter until it reaches a fixed point instead
	// of a single sequential pass.
	Stable bool
	Logger zerolog.Logger
}

// DefaultOptions returns the IBES schema, the flag policy for zero actuals and
// a no-op logger.
func DefaultOptions() Options {
	return Options{
		Schema:     DefaultSchema(),
		ZeroActual: FlagZeroActual,
		Logger:     zerolog.Nop(),
	}
}

// Result carries every stage output of one run.
type Result struct {
	RunID string
	Name  string

	Raw       *table.Table
	Resolved  *table.Table
	Filtered  *table.Table
	Augmented *table.Table

	// Partition classifies the raw table; ResolvedPartition the resolved one.
	Partition         Partition
	ResolvedPartition Partition
	Resolutions       []Resolution
	Bounds            []Bounds
	OutlierPasses     int
	YearErrors        []YearError
	Anomalies         []Anomaly
	Warnings          []string
}

// Dropped returns the names of columns the resolver removed.
func (r *Result) Dropped() []string {
	var out []string
	for _, res := range r.Resolutions {
		if res.Action == ActionDrop {
			out = append(out, res.Name)
		}
	}
	return out
}

// Run executes classify, resolve, outlier filter, derive and aggregate on t.
// The schema is validated before any stage runs; a SchemaError aborts the run
// with no partial result. Each stage returns a new table; t is not modified.
func Run(ctx context.Context, t *table.Table, opt Options) (*Result, error) {
	log := opt.Logger
	if err := opt.Schema.Validate(t); err != nil {
		return nil, err
	}
	res := &Result{RunID: uuid.NewString(), Raw: t}
	log = log.With().Str("run_id", res.RunID).Logger()
	if t.Rows() == 0 {
		res.Warnings = append(res.Warnings, ErrEmptyInput.Error())
		log.Warn().Msg("input table has no rows")
	}

	res.Partition = Classify(t)
	log.Debug().Strs("numeric", res.Partition.Numeric).Strs("categorical", res.Partition.Categorical).Msg("classified columns")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Resolved, res.Resolutions = ResolveMissing(t)
	res.ResolvedPartition = Classify(res.Resolved)
	for _, r := range res.Resolutions {
		if r.Action != ActionKeep {
			log.Info().Str("column", r.Name).Str("action", string(r.Action)).
				Int("missing", r.MissingCount).Float64("fraction", r.MissingFraction).Msg("resolved missing values")
		}
	}
	if err := opt.Schema.Validate(res.Resolved); err != nil {
		return nil, fmt.Errorf("after missing-value resolution: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var err error
	if opt.Stable {
		res.Filtered, res.OutlierPasses, err = FilterOutliersStable(res.Resolved, res.ResolvedPartition.Numeric)
		if err == nil {
			_, res.Bounds, err = FilterOutliers(res.Filtered, res.ResolvedPartition.Numeric)
		}
	} else {
		res.Filtered, res.Bounds, err = FilterOutliers(res.Resolved, res.ResolvedPartition.Numeric)
		res.OutlierPasses = 1
	}
	if err != nil {
		return nil, fmt.Errorf("filter outliers: %w", err)
	}
	log.Info().Int("rows_in", res.Resolved.Rows()).Int("rows_out", res.Filtered.Rows()).
		Int("passes", res.OutlierPasses).Msg("filtered outliers")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := DeriveMetrics(res.Filtered, opt.Schema, opt.ZeroActual)
	if err != nil {
		return nil, fmt.Errorf("derive metrics: %w", err)
	}
	res.Augmented = d.Table
	res.Anomalies = d.Anomalies
	for _, a := range d.Anomalies {
		log.Warn().Int("row", a.Row).Err(a.Reason).Msg("row excluded from error metric")
	}
	if len(d.Anomalies) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d row(s) without a defined forecast error (policy: %s)", len(d.Anomalies), opt.ZeroActual))
	}

	res.YearErrors, err = MeanErrorByYear(res.Augmented)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	return res, nil
}

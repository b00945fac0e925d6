package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema marks a missing or wrongly typed required column.
	ErrSchema = errors.New("schema error")
	// ErrEmptyInput marks a table with zero rows. Stages never return it; the
	// pipeline records it as a warning.
	ErrEmptyInput = errors.New("empty input")
	// ErrDivision marks a zero actual value in the error metric.
	ErrDivision = errors.New("division by zero actual")
	// ErrMissingValue marks a row whose estimate or actual is missing.
	ErrMissingValue = errors.New("missing estimate or actual")
	// ErrMalformedDate marks a date cell without a 4-digit year prefix.
	ErrMalformedDate = errors.New("malformed date")
)

// SchemaError reports which required column is absent or has the wrong kind.
type SchemaError struct {
	Role   string // ticker|estimate|actual|date
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: %s column %q %s", e.Role, e.Column, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// Anomaly records a row the derived-metric builder could not score.
type Anomaly struct {
	Row    int
	Reason error
}

func (a Anomaly) String() string {
	return fmt.Sprintf("row %d: %v", a.Row, a.Reason)
}

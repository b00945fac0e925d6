// Package table holds the immutable typed columnar table the cleaning
// pipeline passes between stages.
package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind is the declared type of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// ErrLength is returned when columns of a table disagree on row count.
var ErrLength = errors.New("column length mismatch")

// Column is a named sequence of cells of a single kind. Numeric cells use NaN
// for missing; categorical cells carry an explicit missing mask.
type Column struct {
	name string
	kind Kind
	nums []float64
	strs []string
	null []bool
}

// NewNumeric builds a numeric column. NaN entries are missing. The slice is copied.
func NewNumeric(name string, vals []float64) *Column {
	return &Column{name: name, kind: Numeric, nums: append([]float64(nil), vals...)}
}

// NewCategorical builds a categorical column. null may be nil (no missing cells);
// otherwise it must have the same length as vals. Both slices are copied.
func NewCategorical(name string, vals []string, null []bool) *Column {
	c := &Column{name: name, kind: Categorical, strs: append([]string(nil), vals...)}
	c.null = make([]bool, len(vals))
	copy(c.null, null)
	return c
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int {
	if c.kind == Numeric {
		return len(c.nums)
	}
	return len(c.strs)
}

// IsMissing reports whether cell i is missing.
func (c *Column) IsMissing(i int) bool {
	if c.kind == Numeric {
		return math.IsNaN(c.nums[i])
	}
	return c.null[i]
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Float returns numeric cell i. It panics on categorical columns.
func (c *Column) Float(i int) float64 {
	if c.kind != Numeric {
		panic(fmt.Sprintf("table: Float on %s column %q", c.kind, c.name))
	}
	return c.nums[i]
}

// String returns cell i rendered as text; missing cells render as "".
func (c *Column) String(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	if c.kind == Numeric {
		return strconv.FormatFloat(c.nums[i], 'f', -1, 64)
	}
	return c.strs[i]
}

// Floats returns a copy of the numeric cells (NaN for missing).
func (c *Column) Floats() []float64 {
	return append([]float64(nil), c.nums...)
}

// Present returns the non-missing numeric cells in row order.
func (c *Column) Present() []float64 {
	out := make([]float64, 0, len(c.nums))
	for _, v := range c.nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Strings returns a copy of the categorical cells. Missing cells are "".
func (c *Column) Strings() []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.String(i)
	}
	return out
}

// Clone returns a deep copy of c.
func (c *Column) Clone() *Column {
	if c.kind == Numeric {
		return NewNumeric(c.name, c.nums)
	}
	return NewCategorical(c.name, c.strs, c.null)
}

// Take returns a new column holding the cells at the given row indexes.
func (c *Column) Take(rows []int) *Column {
	if c.kind == Numeric {
		vals := make([]float64, len(rows))
		for i, r := range rows {
			vals[i] = c.nums[r]
		}
		return &Column{name: c.name, kind: Numeric, nums: vals}
	}
	vals := make([]string, len(rows))
	null := make([]bool, len(rows))
	for i, r := range rows {
		vals[i] = c.strs[r]
		null[i] = c.null[r]
	}
	return &Column{name: c.name, kind: Categorical, strs: vals, null: null}
}

// FillNumeric returns a copy with every missing cell replaced by v.
func (c *Column) FillNumeric(v float64) *Column {
	out := c.Clone()
	for i, x := range out.nums {
		if math.IsNaN(x) {
			out.nums[i] = v
		}
	}
	return out
}

// FillCategorical returns a copy with every missing cell replaced by v.
func (c *Column) FillCategorical(v string) *Column {
	out := c.Clone()
	for i := range out.strs {
		if out.null[i] {
			out.strs[i] = v
			out.null[i] = false
		}
	}
	return out
}

// Table is an ordered set of equal-length columns. A Table is never mutated
// after construction; transformations return new tables.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a table from columns. Columns are owned by the table afterwards.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrLength, c.name, c.Len(), t.rows)
		}
		if _, dup := t.index[c.name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.name)
		}
		t.index[c.name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is New that panics on error. Intended for fixtures.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Rows returns the row count. A table with no columns has zero rows.
func (t *Table) Rows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the columns in order. Callers must not modify them.
func (t *Table) Columns() []*Column { return append([]*Column(nil), t.cols...) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.name
	}
	return out
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Take returns a new table restricted to the given row indexes, in order.
func (t *Table) Take(rows []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Take(rows)
	}
	return MustNew(cols...)
}

// With returns a new table with c appended, or replacing the column of the same name.
func (t *Table) With(c *Column) (*Table, error) {
	cols := t.Columns()
	if i, ok := t.index[c.name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// Record returns row i rendered as strings, in column order.
func (t *Table) Record(i int) []string {
	rec := make([]string, len(t.cols))
	for j, c := range t.cols {
		rec[j] = c.String(i)
	}
	return rec
}

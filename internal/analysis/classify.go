package analysis

import (
	"github.com/KaramelBytes/ibesdash/internal/table"
)

// Partition splits column names by declared kind, preserving table order.
type Partition struct {
	Numeric     []string
	Categorical []string
}

// Classify partitions the table's columns into numeric and categorical names.
func Classify(t *table.Table) Partition {
	p := Partition{Numeric: []string{}, Categorical: []string{}}
	for _, c := range t.Columns() {
		switch c.Kind() {
		case table.Numeric:
			p.Numeric = append(p.Numeric, c.Name())
		default:
			p.Categorical = append(p.Categorical, c.Name())
		}
	}
	return p
}

// ColumnDescriptor summarizes missingness for one column.
type ColumnDescriptor struct {
	Name            string
	Kind            table.Kind
	MissingCount    int
	MissingFraction float64
}

// Describe returns a descriptor per column in table order. For an empty
// table every fraction is zero.
func Describe(t *table.Table) []ColumnDescriptor {
	out := make([]ColumnDescriptor, 0, t.NumCols())
	for _, c := range t.Columns() {
		d := ColumnDescriptor{Name: c.Name(), Kind: c.Kind(), MissingCount: c.MissingCount()}
		if t.Rows() > 0 {
			d.MissingFraction = float64(d.MissingCount) / float64(t.Rows())
		}
		out = append(out, d)
	}
	return out
}

package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/ibesdash/internal/table"
)

// Markdown renders the run as a compact report. sampleRows caps the rows
// printed from the cleaned table; 0 disables the sample section.
func (r *Result) Markdown(sampleRows int) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("Rows: %d (after outliers %d)\n", r.Raw.Rows(), r.Filtered.Rows()))
	b.WriteString(fmt.Sprintf("Columns: %d (after cleaning %d)\n\n", r.Raw.NumCols(), r.Resolved.NumCols()))

	b.WriteString("[VARIABLES]\n")
	b.WriteString(fmt.Sprintf("- numeric: %s\n", joinOrNone(r.Partition.Numeric)))
	b.WriteString(fmt.Sprintf("- categorical: %s\n", joinOrNone(r.Partition.Categorical)))

	b.WriteString("\n[MISSING VALUES]\n")
	for _, res := range r.Resolutions {
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d, %.1f%%)", safeName(res.Name), res.Kind, res.MissingCount, res.MissingFraction*100))
		switch res.Action {
		case ActionImpute:
			b.WriteString(fmt.Sprintf(" → imputed with %s", safeVal(res.Fill)))
		case ActionDrop:
			b.WriteString(" → dropped")
		}
		b.WriteString("\n")
	}

	if len(r.Bounds) > 0 {
		b.WriteString("\n[OUTLIER FILTER]\n")
		if r.OutlierPasses > 1 {
			b.WriteString(fmt.Sprintf("Passes to fixed point: %d\n", r.OutlierPasses))
		}
		for _, bd := range r.Bounds {
			b.WriteString(fmt.Sprintf("- %s: Q1 %.4g, Q3 %.4g, IQR %.4g, bounds [%.4g, %.4g], removed %d of %d\n",
				safeName(bd.Column), bd.Q1, bd.Q3, bd.IQR, bd.Lower, bd.Upper, bd.Removed(), bd.RowsIn))
		}
	}

	if len(r.YearErrors) > 0 {
		b.WriteString("\n[FORECAST ERROR BY YEAR]\n")
		for _, ye := range r.YearErrors {
			b.WriteString(fmt.Sprintf("- %d: mean |error| %.4f (n=%d)\n", ye.Year, ye.MeanError, ye.Count))
		}
	}

	if sampleRows > 0 && r.Filtered.Rows() > 0 {
		b.WriteString("\n[HEAD OF CLEANED DATA]\n")
		writeSample(&b, r.Filtered, sampleRows)
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeSample(b *strings.Builder, t *table.Table, n int) {
	names := t.Names()
	b.WriteString("| ")
	for i, name := range names {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(name))
	}
	b.WriteString(" |\n| ")
	for i := range names {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	if n > t.Rows() {
		n = t.Rows()
	}
	for row := 0; row < n; row++ {
		b.WriteString("| ")
		for i, val := range t.Record(row) {
			if i > 0 {
				b.WriteString(" | ")
			}
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

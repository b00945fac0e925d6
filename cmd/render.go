package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	pretty "github.com/jedib0t/go-pretty/v6/table"
)

// grid is a rectangular text result printed by the inspection commands.
type grid struct {
	header []string
	rows   [][]string
}

func (g *grid) add(cells ...string) { g.rows = append(g.rows, cells) }

// renderGrid writes g as a boxed table, CSV or JSON records.
func renderGrid(w io.Writer, g grid, format string) error {
	switch format {
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write(g.header); err != nil {
			return err
		}
		if err := cw.WriteAll(g.rows); err != nil {
			return err
		}
		return cw.Error()
	case "json":
		records := make([]map[string]string, 0, len(g.rows))
		for _, r := range g.rows {
			rec := make(map[string]string, len(g.header))
			for i, h := range g.header {
				if i < len(r) {
					rec[h] = r[i]
				}
			}
			records = append(records, rec)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "", "table":
		if len(g.rows) == 0 {
			_, _ = fmt.Fprintln(w, "(0 rows)")
			return nil
		}
		t := pretty.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(pretty.StyleLight)
		header := make(pretty.Row, len(g.header))
		for i, h := range g.header {
			header[i] = h
		}
		t.AppendHeader(header)
		for _, r := range g.rows {
			row := make(pretty.Row, len(r))
			for i, c := range r {
				row[i] = c
			}
			t.AppendRow(row)
		}
		t.Render()
		return nil
	default:
		return fmt.Errorf("unsupported --format: %s (use table|csv|json)", format)
	}
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

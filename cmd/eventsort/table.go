package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// countRow is one labelled tally in a summary table.
type countRow struct {
	label string
	count int
}

func newTableWriter(title string, header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(title)
	tw.AppendHeader(header)
	return tw
}

// countTable renders label/count pairs with the counts right-aligned.
func countTable(title, labelHeader string, rows []countRow) string {
	tw := newTableWriter(title, table.Row{labelHeader, "Count"})
	for _, r := range rows {
		tw.AppendRow(table.Row{r.label, strconv.Itoa(r.count)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft}})
	return tw.Render()
}

// listTable renders free-text rows, padding short rows to the header width.
func listTable(title string, headers []string, rows [][]string) string {
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw := newTableWriter(title, header)
	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

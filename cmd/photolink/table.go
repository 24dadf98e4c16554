package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes one rendered table. Rows shorter than Headers are
// padded; Aligns defaults to left for missing columns.
type tableSpec struct {
	Title   string
	Headers []string
	Rows    [][]string
	Aligns  []columnAlignment
	// Footer is rendered under the rows, e.g. totals.
	Footer []string
}

func (s tableSpec) render() string {
	columns := len(s.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if s.Title != "" {
		tw.SetTitle(s.Title)
	}
	tw.AppendHeader(toRow(s.Headers, columns))
	for _, row := range s.Rows {
		tw.AppendRow(toRow(row, columns))
	}
	if len(s.Footer) > 0 {
		tw.AppendFooter(toRow(s.Footer, columns))
	}

	configs := make([]table.ColumnConfig, columns)
	for i := range configs {
		align := text.AlignLeft
		if i < len(s.Aligns) && s.Aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignHeader:      text.AlignLeft,
			AlignFooter:      align,
			WidthMax:         72,
			WidthMaxEnforcer: text.Trim,
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, columns int) table.Row {
	row := make(table.Row, columns)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

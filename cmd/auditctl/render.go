package main

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/auditkit/revision-service/internal/api/dto"
	"github.com/auditkit/revision-service/internal/audit"
)

func newWriter() table.Writer {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	return tw
}

// renderTimeline lays timeline entries out newest first.
func renderTimeline(entries []dto.TimelineEntryResponse) string {
	tw := newWriter()
	tw.AppendHeader(table.Row{"REVISION", "WHEN", "TITLE", "DESCRIPTION", "REVERTABLE"})
	for _, e := range entries {
		tw.AppendRow(table.Row{
			e.Revision.ID,
			time.UnixMilli(e.Timestamp).UTC().Format(time.RFC3339),
			e.Title,
			e.Description,
			e.IsRevertable,
		})
	}
	return tw.Render()
}

// renderView prints an audit table with its already formatted cells.
func renderView(view audit.View) string {
	if len(view.Rows) == 0 {
		return view.Placeholder
	}
	tw := newWriter()
	header := make(table.Row, 0, len(view.Columns))
	for _, col := range view.Columns {
		header = append(header, col)
	}
	tw.AppendHeader(header)
	for _, row := range view.Rows {
		cells := make(table.Row, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, cell)
		}
		tw.AppendRow(cells)
	}
	return tw.Render()
}

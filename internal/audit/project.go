package audit

import (
	"fmt"
	"strings"
	"time"
)

// IDColumn is the result column used to link a row back to its record.
const IDColumn = "id"

// Result is the raw output of a backing query.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Row is one projected row. ID is the source record id when the query
// returned an id column.
type Row struct {
	ID    any      `json:"id,omitempty"`
	Cells []string `json:"cells"`
}

// View is a result laid out per a table's columns.
type View struct {
	Name        string   `json:"name"`
	Placeholder string   `json:"placeholder"`
	Columns     []string `json:"columns"`
	Rows        []Row    `json:"rows"`
}

// Project applies the column policy of t to result. Only enabled columns are
// emitted, in declared order; result columns not declared are never shown,
// and a declared column missing from the result renders empty.
func Project(t Table, result Result) View {
	index := make(map[string]int, len(result.Columns))
	for i, name := range result.Columns {
		index[name] = i
	}

	visible := make([]Column, 0, len(t.Card.Columns))
	names := make([]string, 0, len(t.Card.Columns))
	for _, col := range t.Card.Columns {
		if !col.Enabled {
			continue
		}
		visible = append(visible, col)
		names = append(names, col.Name)
	}

	view := View{
		Name:        t.Card.Name,
		Placeholder: t.Placeholder,
		Columns:     names,
		Rows:        make([]Row, 0, len(result.Rows)),
	}
	idIdx, hasID := index[IDColumn]
	for _, raw := range result.Rows {
		row := Row{Cells: make([]string, len(visible))}
		if hasID && idIdx < len(raw) {
			row.ID = raw[idIdx]
		}
		for i, col := range visible {
			src, ok := index[col.Name]
			if !ok || src >= len(raw) {
				continue
			}
			row.Cells[i] = FormatCell(col, raw[src])
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// FormatCell renders one value. Date columns use their DateFormat.
func FormatCell(col Column, v any) string {
	if v == nil {
		return ""
	}
	if col.DateFormat != "" {
		if ts, ok := asTime(v); ok {
			return FormatDate(ts, col.DateFormat)
		}
	}
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}

func asTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return *val, true
	case string:
		ts, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	default:
		return time.Time{}, false
	}
}

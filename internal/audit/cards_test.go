package audit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/revision-service/internal/audit"
)

func columnNames(cols []audit.Column) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names
}

func TestSubscriptions(t *testing.T) {
	t.Run("declares the internal query scoped by dashboard", func(t *testing.T) {
		table := audit.Subscriptions("Sales")
		assert.Equal(t, "Subscriptions", table.Card.Name)
		assert.Equal(t, "table", table.Card.Display)
		assert.Equal(t, audit.QuerySpec{
			Type: audit.QueryTypeInternal,
			Fn:   audit.SubscriptionsTableFn,
			Args: []any{"Sales"},
		}, table.Card.Query)
		assert.Equal(t, []string{
			"dashboard_id", "recipients", "type", "collection", "frequency",
			"last_sent", "created_by", "created_at", "filters",
		}, columnNames(table.Card.Columns))
	})

	t.Run("date columns carry a format", func(t *testing.T) {
		for _, col := range audit.Subscriptions("").Card.Columns {
			switch col.Name {
			case "last_sent", "created_at":
				assert.Equal(t, audit.DateFormatShort, col.DateFormat, col.Name)
			default:
				assert.Empty(t, col.DateFormat, col.Name)
			}
			assert.True(t, col.Enabled, col.Name)
		}
	})

	t.Run("factories are idempotent and return fresh values", func(t *testing.T) {
		a := audit.Subscriptions("Sales")
		b := audit.Subscriptions("Sales")
		assert.Equal(t, a, b)

		a.Card.Columns[0].Enabled = false
		a.Card.Query.Args[0] = "Other"
		assert.True(t, b.Card.Columns[0].Enabled)
		assert.Equal(t, "Sales", b.Card.Query.Args[0])
		assert.Equal(t, audit.Subscriptions("Sales"), b)
	})
}

func TestAlerts(t *testing.T) {
	table := audit.Alerts()
	assert.Equal(t, audit.AlertsTableFn, table.Card.Query.Fn)
	assert.Empty(t, table.Card.Query.Args)
	assert.Equal(t, "Filter by question name", table.Placeholder)
	assert.Equal(t, audit.Alerts(), table)

	require.NotEmpty(t, table.Card.Columns)
	assert.Equal(t, "card_id", table.Card.Columns[0].Name)
	assert.False(t, table.Card.Columns[0].Enabled)
}

func TestProject(t *testing.T) {
	created := time.Date(2021, 3, 7, 15, 4, 0, 0, time.UTC)
	table := audit.Table{
		Card: audit.Card{
			Name: "Things",
			Columns: []audit.Column{
				{Name: "name", Enabled: true},
				{Name: "secret", Enabled: false},
				{Name: "created_at", Enabled: true, DateFormat: audit.DateFormatShort},
				{Name: "missing", Enabled: true},
			},
		},
		Placeholder: "Filter",
	}
	result := audit.Result{
		Columns: []string{"id", "created_at", "secret", "name", "undeclared"},
		Rows: [][]any{
			{int64(7), created, "s3cr3t", "First", "x"},
			{int64(8), nil, "s", "Second", "y"},
		},
	}

	view := audit.Project(table, result)
	assert.Equal(t, "Things", view.Name)
	assert.Equal(t, "Filter", view.Placeholder)
	assert.Equal(t, []string{"name", "created_at", "missing"}, view.Columns)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, audit.Row{ID: int64(7), Cells: []string{"First", "3/7/2021", ""}}, view.Rows[0])
	assert.Equal(t, audit.Row{ID: int64(8), Cells: []string{"Second", "", ""}}, view.Rows[1])

	empty := audit.Project(table, audit.Result{})
	assert.Empty(t, empty.Rows)
	assert.NotNil(t, empty.Rows)
}

func TestFormatCell(t *testing.T) {
	ts := time.Date(2020, 11, 25, 9, 5, 0, 0, time.UTC)
	dated := audit.Column{Name: "d", DateFormat: "M/D/YYYY"}
	plain := audit.Column{Name: "p"}

	assert.Equal(t, "11/25/2020", audit.FormatCell(dated, ts))
	assert.Equal(t, "11/25/2020", audit.FormatCell(dated, &ts))
	assert.Equal(t, "11/25/2020", audit.FormatCell(dated, "2020-11-25T09:05:00Z"))
	assert.Equal(t, "not a date", audit.FormatCell(dated, "not a date"))
	assert.Equal(t, "2020-11-25T09:05:00Z", audit.FormatCell(plain, ts))
	assert.Equal(t, "3", audit.FormatCell(plain, float64(3)))
	assert.Equal(t, "1.5", audit.FormatCell(plain, 1.5))
	assert.Equal(t, "a, b", audit.FormatCell(plain, []string{"a", "b"}))
	assert.Equal(t, "a, b", audit.FormatCell(plain, []any{"a", "b"}))
	assert.Equal(t, "42", audit.FormatCell(plain, int64(42)))
	assert.Equal(t, "", audit.FormatCell(plain, nil))
}

func TestGoLayout(t *testing.T) {
	cases := map[string]string{
		"M/D/YYYY":         "1/2/2006",
		"MM/DD/YY":         "01/02/06",
		"MMMM D, YYYY":     "January 2, 2006",
		"YYYY-MM-DD HH:mm": "2006-01-02 15:04",
		"h:mm A":           "3:04 PM",
	}
	for in, want := range cases {
		assert.Equal(t, want, audit.GoLayout(in), in)
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2021, time.March, 7, 14, 5, 0, 0, time.UTC)

	t.Run("matches the go layout for separator formats", func(t *testing.T) {
		assert.Equal(t, ts.Format(audit.GoLayout("M/D/YYYY")), audit.FormatDate(ts, "M/D/YYYY"))
		assert.Equal(t, "3/7/2021", audit.FormatDate(ts, "M/D/YYYY"))
	})

	t.Run("literal digits are not layout elements", func(t *testing.T) {
		assert.Equal(t, "Q1 2021", audit.FormatDate(ts, "Q1 YYYY"))
		assert.Equal(t, "2021 week 15", audit.FormatDate(ts, "YYYY week 15"))
	})

	t.Run("bracketed text is copied verbatim", func(t *testing.T) {
		assert.Equal(t, "7 Mon at 2:05 PM", audit.FormatDate(ts, "D [Mon at] h:mm A"))
	})
}

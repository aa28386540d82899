// Package audit declares the virtual tables of the admin audit app. A table
// is plain data: the internal query to run and how to lay out its columns.
package audit

const (
	// QueryTypeInternal marks a query answered by a registered internal function.
	QueryTypeInternal = "internal"

	SubscriptionsTableFn = "audit.pages.subscriptions/subscriptions-table"
	AlertsTableFn        = "audit.pages.alerts/table"

	// DateFormatShort renders a date as month/day/year without padding.
	DateFormatShort = "M/D/YYYY"
)

// QuerySpec references an internally executed dataset query.
type QuerySpec struct {
	Type string `json:"type"`
	Fn   string `json:"fn"`
	Args []any  `json:"args"`
}

// Column declares one displayed column. An empty DateFormat means default
// formatting.
type Column struct {
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	DateFormat string `json:"date_format,omitempty"`
}

// Card is the saved-question shaped definition behind a table.
type Card struct {
	Name    string    `json:"name"`
	Display string    `json:"display"`
	Query   QuerySpec `json:"dataset_query"`
	Columns []Column  `json:"table.columns"`
}

// Table is a virtual table descriptor.
type Table struct {
	Card        Card   `json:"card"`
	Placeholder string `json:"placeholder"`
}

// Subscriptions lists dashboard subscriptions, scoped by dashboard name.
func Subscriptions(dashboardName string) Table {
	return Table{
		Card: Card{
			Name:    "Subscriptions",
			Display: "table",
			Query: QuerySpec{
				Type: QueryTypeInternal,
				Fn:   SubscriptionsTableFn,
				Args: []any{dashboardName},
			},
			Columns: []Column{
				{Name: "dashboard_id", Enabled: true},
				{Name: "recipients", Enabled: true},
				{Name: "type", Enabled: true},
				{Name: "collection", Enabled: true},
				{Name: "frequency", Enabled: true},
				{Name: "last_sent", Enabled: true, DateFormat: DateFormatShort},
				{Name: "created_by", Enabled: true},
				{Name: "created_at", Enabled: true, DateFormat: DateFormatShort},
				{Name: "filters", Enabled: true},
			},
		},
		Placeholder: "Filter by dashboard name",
	}
}

// Alerts lists question alerts.
func Alerts() Table {
	return Table{
		Card: Card{
			Name:    "Alerts",
			Display: "table",
			Query: QuerySpec{
				Type: QueryTypeInternal,
				Fn:   AlertsTableFn,
				Args: []any{},
			},
			Columns: []Column{
				{Name: "card_id", Enabled: false},
				{Name: "card_name", Enabled: true},
				{Name: "recipients", Enabled: true},
				{Name: "subscription_type", Enabled: true},
				{Name: "collection", Enabled: true},
				{Name: "frequency", Enabled: true},
				{Name: "created_by", Enabled: true},
				{Name: "created_at", Enabled: true, DateFormat: DateFormatShort},
				{Name: "comparison", Enabled: true},
			},
		},
		Placeholder: "Filter by question name",
	}
}

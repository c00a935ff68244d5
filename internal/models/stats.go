package models

// ClientDistribution is one client's slice of the tracked time.
type ClientDistribution struct {
	ClientID   string  `json:"client_id"`
	ClientName string  `json:"client_name"`
	Hours      float64 `json:"hours"`
	Amount     float64 `json:"amount"`
}

// DashboardStats is the derived summary shown on the dashboard.
// It is computed on demand and never persisted.
type DashboardStats struct {
	// TotalHours is the sum of all tracked time.
	TotalHours float64 `json:"total_hours"`

	// BillableHours is the sum of time assigned to a client.
	BillableHours float64 `json:"billable_hours"`

	// UnbilledAmount estimates the value of unassigned time using the
	// mean hourly rate across the client roster. An estimate, not an
	// exact figure.
	UnbilledAmount float64 `json:"unbilled_amount"`

	// Distribution breaks hours and revenue down per client.
	Distribution []ClientDistribution `json:"distribution"`
}

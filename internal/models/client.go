package models

// Client represents a billable client of the practice.
type Client struct {
	// ID is the unique identifier for the client (UUID format).
	ID string `json:"id"`

	// UserID is the owning account.
	UserID string `json:"-"`

	// Name is the display name. Required; uniqueness per user is a UI
	// convention, not enforced at this layer.
	Name string `json:"name"`

	// HourlyRate is the billing rate in the configured currency. Never
	// negative.
	HourlyRate float64 `json:"hourly_rate"`

	// Color is a display hex color (e.g. "#2563eb").
	Color string `json:"color"`

	// Optional contact details.
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`

	// CreatedAt is the Unix timestamp when the client was added.
	CreatedAt int64 `json:"created_at"`
}

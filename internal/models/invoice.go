package models

import "time"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoiceViewed  InvoiceStatus = "viewed"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// Valid reports whether s is a known invoice status.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoiceViewed, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Forward flow is draft → sent → viewed → paid. Any unpaid invoice may be
// marked overdue, and an overdue invoice can still be paid.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	switch s {
	case InvoiceDraft:
		return next == InvoiceSent
	case InvoiceSent:
		return next == InvoiceViewed || next == InvoicePaid || next == InvoiceOverdue
	case InvoiceViewed:
		return next == InvoicePaid || next == InvoiceOverdue
	case InvoiceOverdue:
		return next == InvoicePaid
	case InvoicePaid:
		return false
	}
	return false
}

// Invoice represents a billing document generated from time entries.
type Invoice struct {
	// ID is the unique identifier for the invoice (UUID format).
	ID string `json:"id"`

	// UserID is the owning account.
	UserID string `json:"-"`

	// ClientID is the billed client.
	ClientID string `json:"client_id"`

	// Number is the invoice number, unique per user (e.g. "INV-0007").
	Number string `json:"number"`

	// IssueDate is when the invoice was issued.
	IssueDate time.Time `json:"issue_date"`

	// DueDate is the optional payment deadline.
	DueDate *time.Time `json:"due_date,omitempty"`

	// TotalHours and TotalAmount summarize the items.
	TotalHours  float64 `json:"total_hours"`
	TotalAmount float64 `json:"total_amount"`

	// Status is the lifecycle state.
	Status InvoiceStatus `json:"status"`

	// Notes is optional free text shown on the invoice.
	Notes string `json:"notes,omitempty"`

	// Items are the ordered line items.
	Items []InvoiceItem `json:"items"`

	// CreatedAt is the Unix timestamp when the invoice was generated.
	CreatedAt int64 `json:"created_at"`
}

// InvoiceItem is a single line on an invoice.
type InvoiceItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// InvoiceID is the owning invoice.
	InvoiceID string `json:"-"`

	// Date is the day the work was performed.
	Date time.Time `json:"date"`

	// Description is the line text, derived from application and window
	// title of the originating entry.
	Description string `json:"description"`

	// Hours, Rate and Amount; Amount = Hours × Rate at generation time.
	Hours  float64 `json:"hours"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`

	// TimeEntryID references the originating (first constituent) time
	// entry.
	TimeEntryID string `json:"time_entry_id,omitempty"`

	// EntryIDs lists every raw entry this line covers. For a line built
	// from a merged entry that is all constituents; otherwise it defaults
	// to just TimeEntryID. Covered entries are excluded from future
	// invoice generation.
	EntryIDs []string `json:"entry_ids,omitempty"`
}

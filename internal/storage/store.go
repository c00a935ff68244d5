// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/lexhour/lexhour/internal/models"
)

// Store defines the persistence operations the service layer depends on.
// Every read and write below the user methods is scoped to a single owning
// user; a row belonging to another user behaves exactly like a missing row.
// The abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// Users.

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Clients.

	// CreateClient persists a new client, populating ID and CreatedAt.
	CreateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, userID, clientID string) (*models.Client, error)
	ListClients(ctx context.Context, userID string) ([]models.Client, error)
	UpdateClient(ctx context.Context, client *models.Client) error
	// DeleteClient removes a client. Dependent time entries are
	// unassigned, never deleted.
	DeleteClient(ctx context.Context, userID, clientID string) error

	// Time entries.

	// CreateEntry persists a new entry, populating ID and a default
	// timestamp when absent.
	CreateEntry(ctx context.Context, entry *models.TimeEntry) error
	GetEntry(ctx context.Context, userID, entryID string) (*models.TimeEntry, error)
	// ListEntries returns the user's entries newest first. Zero from/to
	// bounds mean unbounded.
	ListEntries(ctx context.Context, userID string, from, to time.Time) ([]models.TimeEntry, error)
	UpdateEntry(ctx context.Context, entry *models.TimeEntry) error
	DeleteEntry(ctx context.Context, userID, entryID string) error
	// AssignClient sets or clears (empty clientID) an entry's client.
	AssignClient(ctx context.Context, userID, entryID, clientID string) error
	// ListUnbilledEntries returns the client's entries in the window that
	// no invoice item references yet, oldest first.
	ListUnbilledEntries(ctx context.Context, userID, clientID string, from, to time.Time) ([]models.TimeEntry, error)

	// Invoices.

	// CreateInvoice persists an invoice and its items in one transaction,
	// assigning the per-user sequential invoice number.
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	GetInvoice(ctx context.Context, userID, invoiceID string) (*models.Invoice, error)
	ListInvoices(ctx context.Context, userID string) ([]models.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, userID, invoiceID string, status models.InvoiceStatus) error
	DeleteInvoice(ctx context.Context, userID, invoiceID string) error

	// Close releases any resources held by the store.
	Close() error
}

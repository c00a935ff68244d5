package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexhour/lexhour/internal/models"
)

// CreateInvoice persists an invoice and its items in one transaction. The
// invoice number is assigned inside the transaction from the user's current
// maximum, so concurrent generations cannot collide (the UNIQUE constraint
// backs this up).
func (s *SQLiteStore) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if invoice.CreatedAt == 0 {
		invoice.CreatedAt = time.Now().Unix()
	}
	if invoice.Status == "" {
		invoice.Status = models.InvoiceDraft
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if invoice.Number == "" {
		number, err := nextInvoiceNumber(ctx, tx, invoice.UserID)
		if err != nil {
			return err
		}
		invoice.Number = number
	}

	var dueDate any
	if invoice.DueDate != nil {
		dueDate = invoice.DueDate.Unix()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (id, user_id, client_id, number, issue_date, due_date, total_hours, total_amount, status, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.UserID,
		invoice.ClientID,
		invoice.Number,
		invoice.IssueDate.Unix(),
		dueDate,
		invoice.TotalHours,
		invoice.TotalAmount,
		string(invoice.Status),
		invoice.Notes,
		invoice.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	for i := range invoice.Items {
		item := &invoice.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.InvoiceID = invoice.ID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO invoice_items (id, invoice_id, date, description, hours, rate, amount, time_entry_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			item.InvoiceID,
			item.Date.Unix(),
			item.Description,
			item.Hours,
			item.Rate,
			item.Amount,
			nullableID(item.TimeEntryID),
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice item: %w", err)
		}

		// Coverage rows mark raw entries as billed. Default to the
		// originating entry when the caller supplied no explicit list.
		covered := item.EntryIDs
		if len(covered) == 0 && item.TimeEntryID != "" {
			covered = []string{item.TimeEntryID}
		}
		for _, entryID := range covered {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO invoice_item_entries (item_id, time_entry_id) VALUES (?, ?)",
				item.ID, entryID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert invoice item coverage: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// nextInvoiceNumber computes the user's next sequential "INV-NNNN" number.
// Max-based rather than count-based so deleted invoices never free a number
// for reuse.
func nextInvoiceNumber(ctx context.Context, tx *sql.Tx, userID string) (string, error) {
	var maxSeq int64
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(CAST(SUBSTR(number, 5) AS INTEGER)), 0)
		FROM invoices
		WHERE user_id = ? AND number LIKE 'INV-%'`,
		userID,
	).Scan(&maxSeq)
	if err != nil {
		return "", fmt.Errorf("failed to compute invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%04d", maxSeq+1), nil
}

// GetInvoice retrieves an invoice with its items.
func (s *SQLiteStore) GetInvoice(ctx context.Context, userID, invoiceID string) (*models.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, number, issue_date, due_date, total_hours, total_amount, status, notes, created_at
		FROM invoices
		WHERE id = ? AND user_id = ?`,
		invoiceID, userID,
	)

	invoice, err := scanInvoice(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	items, err := s.invoiceItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	return invoice, nil
}

// ListInvoices returns the user's invoices newest first, items included.
func (s *SQLiteStore) ListInvoices(ctx context.Context, userID string) ([]models.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, client_id, number, issue_date, due_date, total_hours, total_amount, status, notes, created_at
		FROM invoices
		WHERE user_id = ?
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		invoice, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	for i := range invoices {
		items, err := s.invoiceItems(ctx, invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].Items = items
	}
	return invoices, nil
}

// UpdateInvoiceStatus sets an invoice's lifecycle status. Transition
// validation belongs to the service layer; the store just writes.
func (s *SQLiteStore) UpdateInvoiceStatus(ctx context.Context, userID, invoiceID string, status models.InvoiceStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE invoices SET status = ? WHERE id = ? AND user_id = ?",
		string(status), invoiceID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	return requireRow(res)
}

// DeleteInvoice removes an invoice; items cascade.
func (s *SQLiteStore) DeleteInvoice(ctx context.Context, userID, invoiceID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM invoices WHERE id = ? AND user_id = ?",
		invoiceID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) invoiceItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_id, date, description, hours, rate, amount, time_entry_id
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY date ASC`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice items: %w", err)
	}
	defer rows.Close()

	items := []models.InvoiceItem{}
	for rows.Next() {
		var (
			item    models.InvoiceItem
			date    int64
			entryID sql.NullString
		)
		if err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&date,
			&item.Description,
			&item.Hours,
			&item.Rate,
			&item.Amount,
			&entryID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		item.Date = time.Unix(date, 0).UTC()
		item.TimeEntryID = entryID.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice items: %w", err)
	}

	for i := range items {
		covered, err := s.itemCoverage(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].EntryIDs = covered
	}
	return items, nil
}

func (s *SQLiteStore) itemCoverage(ctx context.Context, itemID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT time_entry_id FROM invoice_item_entries WHERE item_id = ? ORDER BY time_entry_id",
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item coverage: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item coverage: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item coverage: %w", err)
	}
	return ids, nil
}

func scanInvoice(scan func(dest ...any) error) (*models.Invoice, error) {
	var (
		invoice   models.Invoice
		issueDate int64
		dueDate   sql.NullInt64
		status    string
	)
	err := scan(
		&invoice.ID,
		&invoice.UserID,
		&invoice.ClientID,
		&invoice.Number,
		&issueDate,
		&dueDate,
		&invoice.TotalHours,
		&invoice.TotalAmount,
		&status,
		&invoice.Notes,
		&invoice.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	invoice.IssueDate = time.Unix(issueDate, 0).UTC()
	if dueDate.Valid {
		due := time.Unix(dueDate.Int64, 0).UTC()
		invoice.DueDate = &due
	}
	invoice.Status = models.InvoiceStatus(status)
	return &invoice, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexhour/lexhour/internal/models"
)

const entryColumns = "id, user_id, timestamp, application, window_title, duration_sec, client_id, notes, billable"

// CreateEntry persists a new time entry, generating its ID and defaulting
// the timestamp to now.
func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *models.TimeEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO time_entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Timestamp.Unix(),
		entry.Application,
		entry.WindowTitle,
		entry.DurationSec,
		nullableID(entry.ClientID),
		entry.Notes,
		entry.Billable,
	)
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// GetEntry retrieves one of the user's entries by ID.
func (s *SQLiteStore) GetEntry(ctx context.Context, userID, entryID string) (*models.TimeEntry, error) {
	query := "SELECT " + entryColumns + " FROM time_entries WHERE id = ? AND user_id = ?"

	row := s.db.QueryRowContext(ctx, query, entryID, userID)
	entry, err := scanEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns the user's entries newest first, optionally bounded by
// an inclusive-from, exclusive-to window. Zero bounds are open.
func (s *SQLiteStore) ListEntries(ctx context.Context, userID string, from, to time.Time) ([]models.TimeEntry, error) {
	query := "SELECT " + entryColumns + " FROM time_entries WHERE user_id = ?"
	args := []any{userID}

	if !from.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, from.Unix())
	}
	if !to.IsZero() {
		query += " AND timestamp < ?"
		args = append(args, to.Unix())
	}
	query += " ORDER BY timestamp DESC"

	return s.queryEntries(ctx, query, args...)
}

// UpdateEntry updates an entry's mutable fields.
func (s *SQLiteStore) UpdateEntry(ctx context.Context, entry *models.TimeEntry) error {
	query := `
		UPDATE time_entries
		SET timestamp = ?, application = ?, window_title = ?, duration_sec = ?, client_id = ?, notes = ?, billable = ?
		WHERE id = ? AND user_id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		entry.Timestamp.Unix(),
		entry.Application,
		entry.WindowTitle,
		entry.DurationSec,
		nullableID(entry.ClientID),
		entry.Notes,
		entry.Billable,
		entry.ID,
		entry.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	return requireRow(res)
}

// DeleteEntry removes an entry.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, userID, entryID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM time_entries WHERE id = ? AND user_id = ?",
		entryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return requireRow(res)
}

// AssignClient sets or clears (empty clientID) an entry's client
// assignment.
func (s *SQLiteStore) AssignClient(ctx context.Context, userID, entryID, clientID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE time_entries SET client_id = ? WHERE id = ? AND user_id = ?",
		nullableID(clientID), entryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign client: %w", err)
	}
	return requireRow(res)
}

// ListUnbilledEntries returns the client's entries in the window that no
// invoice item references yet, oldest first so invoice lines read
// chronologically.
func (s *SQLiteStore) ListUnbilledEntries(ctx context.Context, userID, clientID string, from, to time.Time) ([]models.TimeEntry, error) {
	query := "SELECT " + entryColumns + ` FROM time_entries
		WHERE user_id = ? AND client_id = ?
		AND id NOT IN (SELECT time_entry_id FROM invoice_item_entries)`
	args := []any{userID, clientID}

	if !from.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, from.Unix())
	}
	if !to.IsZero() {
		query += " AND timestamp < ?"
		args = append(args, to.Unix())
	}
	query += " ORDER BY timestamp ASC"

	return s.queryEntries(ctx, query, args...)
}

func (s *SQLiteStore) queryEntries(ctx context.Context, query string, args ...any) ([]models.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := []models.TimeEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

// scanEntry reads one row in entryColumns order.
func scanEntry(scan func(dest ...any) error) (*models.TimeEntry, error) {
	var (
		entry    models.TimeEntry
		ts       int64
		clientID sql.NullString
	)
	err := scan(
		&entry.ID,
		&entry.UserID,
		&ts,
		&entry.Application,
		&entry.WindowTitle,
		&entry.DurationSec,
		&clientID,
		&entry.Notes,
		&entry.Billable,
	)
	if err != nil {
		return nil, err
	}
	entry.Timestamp = time.Unix(ts, 0).UTC()
	entry.ClientID = clientID.String
	return &entry, nil
}

// nullableID maps an empty ID to NULL so foreign keys stay honest.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

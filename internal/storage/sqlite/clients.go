package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexhour/lexhour/internal/models"
)

// CreateClient persists a new client, generating its ID and CreatedAt.
func (s *SQLiteStore) CreateClient(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	if client.CreatedAt == 0 {
		client.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO clients (id, user_id, name, hourly_rate, color, email, phone, contact_person, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		client.ID,
		client.UserID,
		client.Name,
		client.HourlyRate,
		client.Color,
		client.Email,
		client.Phone,
		client.ContactPerson,
		client.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetClient retrieves one of the user's clients by ID.
func (s *SQLiteStore) GetClient(ctx context.Context, userID, clientID string) (*models.Client, error) {
	query := `
		SELECT id, user_id, name, hourly_rate, color, email, phone, contact_person, created_at
		FROM clients
		WHERE id = ? AND user_id = ?
	`

	client := &models.Client{}
	err := s.db.QueryRowContext(ctx, query, clientID, userID).Scan(
		&client.ID,
		&client.UserID,
		&client.Name,
		&client.HourlyRate,
		&client.Color,
		&client.Email,
		&client.Phone,
		&client.ContactPerson,
		&client.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// ListClients returns the user's clients ordered by name.
func (s *SQLiteStore) ListClients(ctx context.Context, userID string) ([]models.Client, error) {
	query := `
		SELECT id, user_id, name, hourly_rate, color, email, phone, contact_person, created_at
		FROM clients
		WHERE user_id = ?
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Name,
			&c.HourlyRate,
			&c.Color,
			&c.Email,
			&c.Phone,
			&c.ContactPerson,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}

// UpdateClient updates an existing client in place.
func (s *SQLiteStore) UpdateClient(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = ?, hourly_rate = ?, color = ?, email = ?, phone = ?, contact_person = ?
		WHERE id = ? AND user_id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		client.Name,
		client.HourlyRate,
		client.Color,
		client.Email,
		client.Phone,
		client.ContactPerson,
		client.ID,
		client.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return requireRow(res)
}

// DeleteClient removes a client. The ON DELETE SET NULL rule on
// time_entries.client_id unassigns dependent entries instead of deleting
// them.
func (s *SQLiteStore) DeleteClient(ctx context.Context, userID, clientID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM clients WHERE id = ? AND user_id = ?",
		clientID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return requireRow(res)
}

// requireRow converts a zero-row write into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

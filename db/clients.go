// ABOUTME: Client database operations
// ABOUTME: Handles client CRUD, search, and the client list joined with stored priority
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pagen-priority/models"
)

// ClientRepository provides CRUD operations for clients.
type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client == nil || strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidClient)
	}

	client.ID = uuid.New()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, company, email, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, client.ID.String(), client.Name, client.Company, client.Email, client.Phone, client.CreatedAt, client.UpdatedAt)

	return err
}

// Get returns ErrClientNotFound when no client has the id.
func (r *ClientRepository) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client := &models.Client{}
	var company, email, phone sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, company, email, phone, created_at, updated_at
		FROM clients WHERE id = ?
	`, id.String()).Scan(
		&client.ID,
		&client.Name,
		&company,
		&email,
		&phone,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}

	client.Company = company.String
	client.Email = email.String
	client.Phone = phone.String

	return client, nil
}

func (r *ClientRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n)
	return n, err
}

// Find searches name, email, and company case-insensitively. An empty query lists everyone.
func (r *ClientRepository) Find(ctx context.Context, query string, limit int) ([]models.Client, error) {
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, company, email, phone, created_at, updated_at
		FROM clients
		WHERE LOWER(name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ? OR LOWER(COALESCE(company, '')) LIKE ?
		ORDER BY name ASC
		LIMIT ?
	`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		var company, email, phone sql.NullString

		if err := rows.Scan(&c.ID, &c.Name, &company, &email, &phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Company = company.String
		c.Email = email.String
		c.Phone = phone.String

		clients = append(clients, c)
	}

	return clients, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	if client == nil || strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidClient)
	}

	client.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, company = ?, email = ?, phone = ?, updated_at = ?
		WHERE id = ?
	`, client.Name, client.Company, client.Email, client.Phone, client.UpdatedAt, client.ID.String())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrClientNotFound
	}
	return nil
}

// Delete removes a client together with its deals, reminders, and prioritizations.
func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM prioritizations WHERE client_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete prioritizations: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM deals WHERE client_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete deals: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE client_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete reminders: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrClientNotFound
	}

	return tx.Commit()
}

// ListWithPriority returns clients matching query along with the priority
// stored for userID, if any.
func (r *ClientRepository) ListWithPriority(ctx context.Context, userID, query string, limit int) ([]models.ClientPriority, error) {
	if limit <= 0 {
		limit = 100
	}

	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.company, c.email, c.phone, c.created_at, c.updated_at, p.calculated_priority
		FROM clients c
		LEFT JOIN prioritizations p ON p.client_id = c.id AND p.user_id = ?
		WHERE LOWER(c.name) LIKE ? OR LOWER(COALESCE(c.email, '')) LIKE ? OR LOWER(COALESCE(c.company, '')) LIKE ?
		ORDER BY c.name ASC
		LIMIT ?
	`, userID, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.ClientPriority
	for rows.Next() {
		var cp models.ClientPriority
		var company, email, phone, priority sql.NullString

		if err := rows.Scan(&cp.ID, &cp.Name, &company, &email, &phone, &cp.CreatedAt, &cp.UpdatedAt, &priority); err != nil {
			return nil, err
		}
		cp.Company = company.String
		cp.Email = email.String
		cp.Phone = phone.String
		if priority.Valid {
			level := models.PriorityLevel(priority.String)
			cp.Priority = &level
		}

		out = append(out, cp)
	}

	return out, rows.Err()
}

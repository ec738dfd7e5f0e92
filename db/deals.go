// ABOUTME: Deal database operations
// ABOUTME: Handles deal lifecycle, stage moves, and per-client deal listing
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

// DealRepository provides CRUD operations for pipeline deals.
type DealRepository struct {
	db *sql.DB
}

func NewDealRepository(db *sql.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Create(ctx context.Context, deal *models.Deal) error {
	if deal == nil || strings.TrimSpace(deal.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidDeal)
	}
	if deal.ClientID == uuid.Nil {
		return fmt.Errorf("%w: client is required", ErrInvalidDeal)
	}
	if deal.Stage == "" {
		deal.Stage = models.StageNew
	}
	if !models.IsValidStage(deal.Stage) {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidDeal, deal.Stage)
	}
	if deal.Currency == "" {
		deal.Currency = "USD"
	}

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM clients WHERE id = ?`, deal.ClientID.String()).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrClientNotFound
	}
	if err != nil {
		return err
	}

	deal.ID = uuid.New()
	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO deals (id, client_id, title, amount, currency, stage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, deal.ID.String(), deal.ClientID.String(), deal.Title, deal.Amount, deal.Currency, deal.Stage, deal.CreatedAt, deal.UpdatedAt)

	return err
}

func (r *DealRepository) Get(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	deal := &models.Deal{}
	var amount sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, client_id, title, amount, currency, stage, created_at, updated_at
		FROM deals WHERE id = ?
	`, id.String()).Scan(
		&deal.ID,
		&deal.ClientID,
		&deal.Title,
		&amount,
		&deal.Currency,
		&deal.Stage,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}

	deal.Amount = amount.Int64
	return deal, nil
}

// ListByClient returns every deal owned by the client, newest first.
func (r *DealRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Deal, error) {
	return r.list(ctx, `WHERE client_id = ?`, -1, clientID.String())
}

// Find lists deals, optionally narrowed to one stage.
func (r *DealRepository) Find(ctx context.Context, stage string, limit int) ([]models.Deal, error) {
	if limit <= 0 {
		limit = 50
	}
	if stage == "" {
		return r.list(ctx, "", limit)
	}
	if !models.IsValidStage(stage) {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidDeal, stage)
	}
	return r.list(ctx, `WHERE stage = ?`, limit, stage)
}

// list runs the deal query with an optional WHERE clause. SQLite treats a
// negative LIMIT as unbounded.
func (r *DealRepository) list(ctx context.Context, where string, limit int, args ...any) ([]models.Deal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_id, title, amount, currency, stage, created_at, updated_at
		FROM deals `+where+`
		ORDER BY updated_at DESC
		LIMIT ?`, append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var deals []models.Deal
	for rows.Next() {
		var d models.Deal
		var amount sql.NullInt64

		if err := rows.Scan(&d.ID, &d.ClientID, &d.Title, &amount, &d.Currency, &d.Stage, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.Amount = amount.Int64
		deals = append(deals, d)
	}

	return deals, rows.Err()
}

// MoveStage moves a deal to another pipeline stage.
func (r *DealRepository) MoveStage(ctx context.Context, id uuid.UUID, stage string) (*models.Deal, error) {
	if !models.IsValidStage(stage) {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidDeal, stage)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE deals SET stage = ?, updated_at = ? WHERE id = ?
	`, stage, time.Now().UTC(), id.String())
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrDealNotFound
	}

	return r.Get(ctx, id)
}

func (r *DealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM deals WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDealNotFound
	}
	return nil
}

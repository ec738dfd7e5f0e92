// ABOUTME: Prioritization repository with (client, user) scoped upserts
// ABOUTME: Refuses records whose stored priority disagrees with their own answers
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pagen-priority/models"
	"github.com/harperreed/pagen-priority/scoring"
)

var (
	ErrInvalidPrioritization = errors.New("invalid prioritization")
	ErrInconsistentPriority  = errors.New("calculated priority does not match answers")
)

// PrioritizationRepository is the only writer of the prioritizations table.
type PrioritizationRepository struct {
	db *sql.DB
}

func NewPrioritizationRepository(db *sql.DB) *PrioritizationRepository {
	return &PrioritizationRepository{db: db}
}

const prioritizationColumns = `id, client_id, user_id, active_deals, interaction_frequency,
	who_initiated, pending_proposal, image_priority, image_keywords_count, image_sentiment,
	calculated_priority, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrioritization(row rowScanner) (*models.Prioritization, error) {
	p := &models.Prioritization{}
	var (
		activeDeals, frequency, priority string
		initiated, proposal              sql.NullString
		imagePriority, imageSentiment    sql.NullString
		keywords                         sql.NullInt64
	)

	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.UserID,
		&activeDeals,
		&frequency,
		&initiated,
		&proposal,
		&imagePriority,
		&keywords,
		&imageSentiment,
		&priority,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Answers.ActiveDeals = models.ActiveDeals(activeDeals)
	p.Answers.InteractionFrequency = models.InteractionFrequency(frequency)
	p.CalculatedPriority = models.PriorityLevel(priority)

	if initiated.Valid {
		v := models.Initiator(initiated.String)
		p.Answers.WhoInitiated = &v
	}
	if proposal.Valid {
		v := models.ProposalState(proposal.String)
		p.Answers.PendingProposal = &v
	}
	if imagePriority.Valid && keywords.Valid && imageSentiment.Valid {
		p.Enrichment = &models.EnrichmentHint{
			Priority:      models.PriorityLevel(imagePriority.String),
			KeywordsCount: int(keywords.Int64),
			Sentiment:     models.Sentiment(imageSentiment.String),
		}
	}

	return p, nil
}

// FindByClientAndUser returns the stored record for the pair, or nil when none exists.
func (r *PrioritizationRepository) FindByClientAndUser(ctx context.Context, clientID uuid.UUID, userID string) (*models.Prioritization, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+prioritizationColumns+`
		FROM prioritizations
		WHERE client_id = ? AND user_id = ?
	`, clientID.String(), userID)

	p, err := scanPrioritization(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Exists reports whether the pair already has a stored record.
func (r *PrioritizationRepository) Exists(ctx context.Context, clientID uuid.UUID, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM prioritizations WHERE client_id = ? AND user_id = ?
	`, clientID.String(), userID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func validatePrioritization(p *models.Prioritization) error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: record is nil", ErrInvalidPrioritization)
	case p.ClientID == uuid.Nil:
		return fmt.Errorf("%w: client id is required", ErrInvalidPrioritization)
	case p.UserID == "":
		return fmt.Errorf("%w: user id is required", ErrInvalidPrioritization)
	case !p.Answers.ActiveDeals.Valid():
		return fmt.Errorf("%w: active deals %q", ErrInvalidPrioritization, p.Answers.ActiveDeals)
	case !p.Answers.InteractionFrequency.Valid():
		return fmt.Errorf("%w: interaction frequency %q", ErrInvalidPrioritization, p.Answers.InteractionFrequency)
	case p.Answers.WhoInitiated != nil && !p.Answers.WhoInitiated.Valid():
		return fmt.Errorf("%w: who initiated %q", ErrInvalidPrioritization, *p.Answers.WhoInitiated)
	case p.Answers.PendingProposal != nil && !p.Answers.PendingProposal.Valid():
		return fmt.Errorf("%w: pending proposal %q", ErrInvalidPrioritization, *p.Answers.PendingProposal)
	case !p.CalculatedPriority.Valid():
		return fmt.Errorf("%w: calculated priority %q", ErrInvalidPrioritization, p.CalculatedPriority)
	}

	if h := p.Enrichment; h != nil {
		if !h.Priority.Valid() || !h.Sentiment.Valid() || h.KeywordsCount < 0 {
			return fmt.Errorf("%w: enrichment hint %+v", ErrInvalidPrioritization, *h)
		}
	}
	return nil
}

func nullableString[T ~string](v *T) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*v), Valid: true}
}

// Save inserts or fully replaces the record for (ClientID, UserID). Optional
// fields absent from rec are cleared on the stored row. The returned record
// carries the new id and timestamp; rec itself is not modified.
func (r *PrioritizationRepository) Save(ctx context.Context, rec *models.Prioritization) (*models.Prioritization, error) {
	if err := validatePrioritization(rec); err != nil {
		return nil, err
	}
	if expected := scoring.Score(rec.Answers, rec.Enrichment); expected != rec.CalculatedPriority {
		return nil, fmt.Errorf("%w: stored %s, answers score %s", ErrInconsistentPriority, rec.CalculatedPriority, expected)
	}

	saved := *rec
	saved.ID = uuid.New()
	saved.CreatedAt = time.Now().UTC()

	var imagePriority, imageSentiment sql.NullString
	var keywords sql.NullInt64
	if h := saved.Enrichment; h != nil {
		imagePriority = sql.NullString{String: string(h.Priority), Valid: true}
		imageSentiment = sql.NullString{String: string(h.Sentiment), Valid: true}
		keywords = sql.NullInt64{Int64: int64(h.KeywordsCount), Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO prioritizations (`+prioritizationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id, user_id) DO UPDATE SET
			id = excluded.id,
			active_deals = excluded.active_deals,
			interaction_frequency = excluded.interaction_frequency,
			who_initiated = excluded.who_initiated,
			pending_proposal = excluded.pending_proposal,
			image_priority = excluded.image_priority,
			image_keywords_count = excluded.image_keywords_count,
			image_sentiment = excluded.image_sentiment,
			calculated_priority = excluded.calculated_priority,
			created_at = excluded.created_at
	`,
		saved.ID.String(),
		saved.ClientID.String(),
		saved.UserID,
		string(saved.Answers.ActiveDeals),
		string(saved.Answers.InteractionFrequency),
		nullableString(saved.Answers.WhoInitiated),
		nullableString(saved.Answers.PendingProposal),
		imagePriority,
		keywords,
		imageSentiment,
		string(saved.CalculatedPriority),
		saved.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert prioritization: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit prioritization: %w", err)
	}

	return &saved, nil
}

// CountByPriority tallies the stored priorities for a user. Every level is
// present in the result, zero when unused.
func (r *PrioritizationRepository) CountByPriority(ctx context.Context, userID string) (map[models.PriorityLevel]int, error) {
	counts := map[models.PriorityLevel]int{
		models.PriorityLow:    0,
		models.PriorityMedium: 0,
		models.PriorityHigh:   0,
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT calculated_priority, COUNT(*)
		FROM prioritizations
		WHERE user_id = ?
		GROUP BY calculated_priority
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		counts[models.PriorityLevel(level)] = n
	}

	return counts, rows.Err()
}

// ListByUser returns the user's records, most recent first, optionally only
// those at one priority level.
func (r *PrioritizationRepository) ListByUser(ctx context.Context, userID string, level models.PriorityLevel, limit int) ([]models.Prioritization, error) {
	if limit <= 0 {
		limit = 50
	}
	if level != "" && !level.Valid() {
		return nil, fmt.Errorf("%w: priority %q", ErrInvalidPrioritization, level)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+prioritizationColumns+`
		FROM prioritizations
		WHERE user_id = ? AND (? = '' OR calculated_priority = ?)
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, string(level), string(level), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Prioritization
	for rows.Next() {
		p, err := scanPrioritization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	return out, rows.Err()
}

// Delete removes the record for the pair. Missing records are not an error.
func (r *PrioritizationRepository) Delete(ctx context.Context, clientID uuid.UUID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM prioritizations WHERE client_id = ? AND user_id = ?
	`, clientID.String(), userID)
	return err
}

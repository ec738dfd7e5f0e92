// ABOUTME: Database operations for client reminders
// ABOUTME: Handles dated follow-ups, completion toggling, and due/overdue queries
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

// ReminderView narrows a reminder listing.
type ReminderView string

const (
	ViewAll     ReminderView = "all"
	ViewOpen    ReminderView = "open"
	ViewToday   ReminderView = "today"
	ViewOverdue ReminderView = "overdue"
)

func (v ReminderView) Valid() bool {
	switch v {
	case ViewAll, ViewOpen, ViewToday, ViewOverdue:
		return true
	}
	return false
}

// ReminderFilter selects reminders. Now anchors the today and overdue views
// and defaults to the current time.
type ReminderFilter struct {
	ClientID uuid.UUID
	View     ReminderView
	Now      time.Time
	Limit    int
}

// ReminderSummary counts reminders the way the reminders page headline does.
type ReminderSummary struct {
	Total    int
	DueToday int
	Overdue  int
}

type ReminderRepository struct {
	db *sql.DB
}

func NewReminderRepository(db *sql.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const reminderColumns = `id, client_id, title, type, priority, due_at, completed, completed_at, created_at`

func scanReminder(row rowScanner) (*models.Reminder, error) {
	r := &models.Reminder{}
	var completedAt sql.NullTime

	err := row.Scan(&r.ID, &r.ClientID, &r.Title, &r.Type, &r.Priority, &r.DueAt, &r.Completed, &completedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	return r, nil
}

// Create stores a new open reminder. Type defaults to follow-up and priority to medium.
func (r *ReminderRepository) Create(ctx context.Context, rem *models.Reminder) error {
	if rem == nil || strings.TrimSpace(rem.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidReminder)
	}
	if rem.ClientID == uuid.Nil {
		return fmt.Errorf("%w: client is required", ErrInvalidReminder)
	}
	if rem.DueAt.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalidReminder)
	}
	if rem.Type == "" {
		rem.Type = models.ReminderFollowUp
	}
	if !rem.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidReminder, rem.Type)
	}
	if rem.Priority == "" {
		rem.Priority = models.PriorityMedium
	}
	if !rem.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidReminder, rem.Priority)
	}

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM clients WHERE id = ?`, rem.ClientID.String()).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrClientNotFound
	}
	if err != nil {
		return err
	}

	rem.ID = uuid.New()
	// Stored in UTC at second precision so due_at compares correctly as text.
	rem.DueAt = rem.DueAt.UTC().Truncate(time.Second)
	rem.CreatedAt = time.Now().UTC()
	rem.Completed = false
	rem.CompletedAt = nil

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, 0, NULL, ?)
	`, rem.ID.String(), rem.ClientID.String(), rem.Title, string(rem.Type), string(rem.Priority), rem.DueAt, rem.CreatedAt)

	return err
}

func (r *ReminderRepository) Get(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id.String())

	rem, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, ErrReminderNotFound
	}
	if err != nil {
		return nil, err
	}
	return rem, nil
}

// dayBounds returns the UTC bounds of now's calendar day in now's location.
func dayBounds(now time.Time) (time.Time, time.Time) {
	start := models.StartOfDay(now)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// List returns reminders ordered by due date, soonest first.
func (r *ReminderRepository) List(ctx context.Context, f ReminderFilter) ([]models.Reminder, error) {
	if f.View == "" {
		f.View = ViewAll
	}
	if !f.View.Valid() {
		return nil, fmt.Errorf("%w: unknown view %q", ErrInvalidReminder, f.View)
	}
	if f.Now.IsZero() {
		f.Now = time.Now()
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}

	var where []string
	var args []any
	if f.ClientID != uuid.Nil {
		where = append(where, "client_id = ?")
		args = append(args, f.ClientID.String())
	}

	start, end := dayBounds(f.Now)
	switch f.View {
	case ViewOpen:
		where = append(where, "completed = 0")
	case ViewToday:
		where = append(where, "due_at >= ? AND due_at < ?")
		args = append(args, start, end)
	case ViewOverdue:
		where = append(where, "completed = 0 AND due_at < ?")
		args = append(args, start)
	}

	query := `SELECT ` + reminderColumns + ` FROM reminders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY completed ASC, due_at ASC LIMIT ?`
	args = append(args, f.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var reminders []models.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *rem)
	}

	return reminders, rows.Err()
}

// SetCompleted marks a reminder done or reopens it.
func (r *ReminderRepository) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) (*models.Reminder, error) {
	var completedAt sql.NullTime
	if completed {
		completedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE reminders SET completed = ?, completed_at = ? WHERE id = ?
	`, completed, completedAt, id.String())
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrReminderNotFound
	}

	return r.Get(ctx, id)
}

// Summary counts all reminders plus the open ones due today or overdue.
func (r *ReminderRepository) Summary(ctx context.Context, now time.Time) (ReminderSummary, error) {
	start, end := dayBounds(now)

	var s ReminderSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN completed = 0 AND due_at >= ? AND due_at < ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN completed = 0 AND due_at < ? THEN 1 ELSE 0 END), 0)
		FROM reminders
	`, start, end, start).Scan(&s.Total, &s.DueToday, &s.Overdue)

	return s, err
}

func (r *ReminderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id.String())
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrReminderNotFound
	}
	return nil
}

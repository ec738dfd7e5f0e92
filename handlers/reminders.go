// ABOUTME: Reminder MCP tool handlers
// ABOUTME: Implements add_reminder, list_reminders, and complete_reminder tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ReminderHandlers struct {
	reminders *db.ReminderRepository
	now       func() time.Time
}

func NewReminderHandlers(database *sql.DB) *ReminderHandlers {
	return &ReminderHandlers{reminders: db.NewReminderRepository(database), now: time.Now}
}

type AddReminderInput struct {
	ClientID string `json:"client_id" jsonschema:"ID of the client the reminder is about (required)"`
	Title    string `json:"title" jsonschema:"What to do (required)"`
	DueAt    string `json:"due_at" jsonschema:"Due date as RFC3339 or YYYY-MM-DD (required)"`
	Type     string `json:"type,omitempty" jsonschema:"call, email, meeting, follow-up (default follow-up)"`
	Priority string `json:"priority,omitempty" jsonschema:"low, medium, high (default medium)"`
}

type ReminderOutput struct {
	ID          string `json:"id"`
	ClientID    string `json:"client_id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	DueAt       string `json:"due_at"`
	Completed   bool   `json:"completed"`
	CompletedAt string `json:"completed_at,omitempty"`
	Overdue     bool   `json:"overdue"`
	DueToday    bool   `json:"due_today"`
}

func reminderToOutput(r *models.Reminder, now time.Time) ReminderOutput {
	out := ReminderOutput{
		ID:        r.ID.String(),
		ClientID:  r.ClientID.String(),
		Title:     r.Title,
		Type:      string(r.Type),
		Priority:  string(r.Priority),
		DueAt:     r.DueAt.Format(time.RFC3339),
		Completed: r.Completed,
		Overdue:   r.Overdue(now),
		DueToday:  r.DueToday(now),
	}
	if r.CompletedAt != nil {
		out.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}
	return out
}

func parseDueAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid due_at %q: use RFC3339 or YYYY-MM-DD", s)
}

func (h *ReminderHandlers) AddReminder(ctx context.Context, request *mcp.CallToolRequest, input AddReminderInput) (*mcp.CallToolResult, ReminderOutput, error) {
	clientID, err := uuid.Parse(input.ClientID)
	if err != nil {
		return nil, ReminderOutput{}, fmt.Errorf("invalid client_id: %w", err)
	}
	dueAt, err := parseDueAt(input.DueAt)
	if err != nil {
		return nil, ReminderOutput{}, err
	}

	rem := &models.Reminder{
		ClientID: clientID,
		Title:    input.Title,
		Type:     models.ReminderType(input.Type),
		Priority: models.PriorityLevel(input.Priority),
		DueAt:    dueAt,
	}
	if err := h.reminders.Create(ctx, rem); err != nil {
		return nil, ReminderOutput{}, fmt.Errorf("failed to create reminder: %w", err)
	}

	return nil, reminderToOutput(rem, h.now()), nil
}

type ListRemindersInput struct {
	ClientID string `json:"client_id,omitempty" jsonschema:"Only reminders for this client"`
	View     string `json:"view,omitempty" jsonschema:"all, open, today, overdue (default open)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum results (default 50)"`
}

type ListRemindersOutput struct {
	Reminders []ReminderOutput `json:"reminders"`
	Overdue   int              `json:"overdue"`
	DueToday  int              `json:"due_today"`
}

func (h *ReminderHandlers) ListReminders(ctx context.Context, request *mcp.CallToolRequest, input ListRemindersInput) (*mcp.CallToolResult, ListRemindersOutput, error) {
	now := h.now()
	filter := db.ReminderFilter{View: db.ReminderView(input.View), Now: now, Limit: input.Limit}
	if filter.View == "" {
		filter.View = db.ViewOpen
	}
	if input.ClientID != "" {
		id, err := uuid.Parse(input.ClientID)
		if err != nil {
			return nil, ListRemindersOutput{}, fmt.Errorf("invalid client_id: %w", err)
		}
		filter.ClientID = id
	}

	list, err := h.reminders.List(ctx, filter)
	if err != nil {
		return nil, ListRemindersOutput{}, fmt.Errorf("failed to list reminders: %w", err)
	}

	out := ListRemindersOutput{Reminders: make([]ReminderOutput, 0, len(list))}
	for i := range list {
		r := reminderToOutput(&list[i], now)
		if r.Overdue {
			out.Overdue++
		}
		if r.DueToday && !r.Completed {
			out.DueToday++
		}
		out.Reminders = append(out.Reminders, r)
	}
	return nil, out, nil
}

type CompleteReminderInput struct {
	ID        string `json:"id" jsonschema:"Reminder ID (required)"`
	Completed *bool  `json:"completed,omitempty" jsonschema:"Set false to reopen (default true)"`
}

func (h *ReminderHandlers) CompleteReminder(ctx context.Context, request *mcp.CallToolRequest, input CompleteReminderInput) (*mcp.CallToolResult, ReminderOutput, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, ReminderOutput{}, fmt.Errorf("invalid reminder ID: %w", err)
	}
	completed := true
	if input.Completed != nil {
		completed = *input.Completed
	}

	rem, err := h.reminders.SetCompleted(ctx, id, completed)
	if err != nil {
		return nil, ReminderOutput{}, fmt.Errorf("failed to update reminder: %w", err)
	}
	return nil, reminderToOutput(rem, h.now()), nil
}

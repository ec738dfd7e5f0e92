package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderTools(t *testing.T) {
	database := setupTestDB(t)
	clients := NewClientHandlers(database, testUser)
	h := NewReminderHandlers(database)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	ctx := context.Background()

	_, client, err := clients.AddClient(ctx, nil, AddClientInput{Name: "Oscorp"})
	require.NoError(t, err)

	_, late, err := h.AddReminder(ctx, nil, AddReminderInput{
		ClientID: client.ID, Title: "Call Norman", DueAt: "2026-03-08T09:00:00Z", Type: "call", Priority: "high",
	})
	require.NoError(t, err)
	assert.True(t, late.Overdue)
	assert.Equal(t, "call", late.Type)

	_, today, err := h.AddReminder(ctx, nil, AddReminderInput{ClientID: client.ID, Title: "Send recap", DueAt: "2026-03-10T18:00:00Z"})
	require.NoError(t, err)
	assert.True(t, today.DueToday)
	assert.False(t, today.Overdue)
	assert.Equal(t, "follow-up", today.Type)
	assert.Equal(t, "medium", today.Priority)

	_, listed, err := h.ListReminders(ctx, nil, ListRemindersInput{})
	require.NoError(t, err)
	assert.Len(t, listed.Reminders, 2)
	assert.Equal(t, 1, listed.Overdue)
	assert.Equal(t, 1, listed.DueToday)

	_, overdue, err := h.ListReminders(ctx, nil, ListRemindersInput{View: "overdue", ClientID: client.ID})
	require.NoError(t, err)
	require.Len(t, overdue.Reminders, 1)
	assert.Equal(t, late.ID, overdue.Reminders[0].ID)

	_, done, err := h.CompleteReminder(ctx, nil, CompleteReminderInput{ID: late.ID})
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.False(t, done.Overdue)
	assert.NotEmpty(t, done.CompletedAt)

	reopen := false
	_, reopened, err := h.CompleteReminder(ctx, nil, CompleteReminderInput{ID: late.ID, Completed: &reopen})
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.True(t, reopened.Overdue)
}

func TestReminderToolErrors(t *testing.T) {
	database := setupTestDB(t)
	h := NewReminderHandlers(database)
	ctx := context.Background()

	_, _, err := h.AddReminder(ctx, nil, AddReminderInput{ClientID: "nope", Title: "x", DueAt: "2026-01-01"})
	assert.ErrorContains(t, err, "invalid client_id")

	_, _, err = h.AddReminder(ctx, nil, AddReminderInput{ClientID: uuid.NewString(), Title: "x", DueAt: "soon"})
	assert.ErrorContains(t, err, "invalid due_at")

	_, _, err = h.AddReminder(ctx, nil, AddReminderInput{ClientID: uuid.NewString(), Title: "x", DueAt: "2026-01-01"})
	assert.ErrorContains(t, err, "client not found")

	_, _, err = h.ListReminders(ctx, nil, ListRemindersInput{View: "later"})
	assert.ErrorContains(t, err, "unknown view")

	_, _, err = h.CompleteReminder(ctx, nil, CompleteReminderInput{ID: uuid.NewString()})
	assert.ErrorContains(t, err, "reminder not found")
}

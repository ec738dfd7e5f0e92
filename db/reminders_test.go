// ABOUTME: Tests for client reminder database operations
// ABOUTME: Covers creation defaults, due/overdue views, completion, and summaries
package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/pagen-priority/models"
)

func TestCreateReminderDefaults(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "reminder corp")
	repo := NewReminderRepository(database)
	ctx := context.Background()

	due := time.Date(2026, 5, 1, 9, 30, 15, 500, time.UTC)
	rem := &models.Reminder{ClientID: client.ID, Title: "Send proposal", DueAt: due}
	require.NoError(t, repo.Create(ctx, rem))

	assert.NotEqual(t, uuid.Nil, rem.ID)
	assert.Equal(t, models.ReminderFollowUp, rem.Type)
	assert.Equal(t, models.PriorityMedium, rem.Priority)

	got, err := repo.Get(ctx, rem.ID)
	require.NoError(t, err)
	assert.Equal(t, "Send proposal", got.Title)
	assert.True(t, got.DueAt.Equal(due.Truncate(time.Second)))
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrReminderNotFound)
}

func TestCreateReminderValidation(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "acme")
	repo := NewReminderRepository(database)
	ctx := context.Background()
	due := time.Now()

	assert.ErrorIs(t, repo.Create(ctx, &models.Reminder{ClientID: client.ID, DueAt: due}), ErrInvalidReminder)
	assert.ErrorIs(t, repo.Create(ctx, &models.Reminder{ClientID: client.ID, Title: "x"}), ErrInvalidReminder)
	assert.ErrorIs(t, repo.Create(ctx, &models.Reminder{Title: "x", DueAt: due}), ErrInvalidReminder)
	assert.ErrorIs(t, repo.Create(ctx, &models.Reminder{ClientID: client.ID, Title: "x", DueAt: due, Type: "sms"}), ErrInvalidReminder)
	assert.ErrorIs(t, repo.Create(ctx, &models.Reminder{ClientID: client.ID, Title: "x", DueAt: due, Priority: "urgent"}), ErrInvalidReminder)
	assert.ErrorIs(t, repo.Create(ctx, &models.Reminder{ClientID: uuid.New(), Title: "x", DueAt: due}), ErrClientNotFound)
}

func TestListRemindersByView(t *testing.T) {
	database := setupTestDB(t)
	clients := NewClientRepository(database)
	alice := createTestClient(t, clients, "alice")
	bob := createTestClient(t, clients, "bob")
	repo := NewReminderRepository(database)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	add := func(client *models.Client, title string, due time.Time) *models.Reminder {
		rem := &models.Reminder{ClientID: client.ID, Title: title, DueAt: due}
		require.NoError(t, repo.Create(ctx, rem))
		return rem
	}

	overdue := add(alice, "overdue call", now.AddDate(0, 0, -2))
	add(alice, "this morning", now.Add(-5*time.Hour))
	add(bob, "tonight", now.Add(5*time.Hour))
	add(bob, "next week", now.AddDate(0, 0, 7))
	done := add(alice, "done last week", now.AddDate(0, 0, -7))
	_, err := repo.SetCompleted(ctx, done.ID, true)
	require.NoError(t, err)

	titles := func(f ReminderFilter) []string {
		f.Now = now
		list, err := repo.List(ctx, f)
		require.NoError(t, err)
		var out []string
		for _, r := range list {
			out = append(out, r.Title)
		}
		return out
	}

	assert.Len(t, titles(ReminderFilter{}), 5)
	assert.Equal(t, []string{"overdue call", "this morning", "tonight", "next week"}, titles(ReminderFilter{View: ViewOpen}))
	assert.Equal(t, []string{"this morning", "tonight"}, titles(ReminderFilter{View: ViewToday}))
	assert.Equal(t, []string{"overdue call"}, titles(ReminderFilter{View: ViewOverdue}))
	assert.Equal(t, []string{"tonight", "next week"}, titles(ReminderFilter{ClientID: bob.ID}))

	_, err = repo.List(ctx, ReminderFilter{View: "soon"})
	assert.ErrorIs(t, err, ErrInvalidReminder)

	summary, err := repo.Summary(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, ReminderSummary{Total: 5, DueToday: 2, Overdue: 1}, summary)

	// Completing the overdue reminder takes it off the overdue view.
	_, err = repo.SetCompleted(ctx, overdue.ID, true)
	require.NoError(t, err)
	assert.Empty(t, titles(ReminderFilter{View: ViewOverdue}))
}

func TestSetReminderCompletedToggles(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "carol")
	repo := NewReminderRepository(database)
	ctx := context.Background()

	rem := &models.Reminder{ClientID: client.ID, Title: "Follow up", DueAt: time.Now().AddDate(0, 0, -3)}
	require.NoError(t, repo.Create(ctx, rem))

	done, err := repo.SetCompleted(ctx, rem.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.False(t, done.Overdue(time.Now()))

	reopened, err := repo.SetCompleted(ctx, rem.ID, false)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Nil(t, reopened.CompletedAt)
	assert.True(t, reopened.Overdue(time.Now()))

	_, err = repo.SetCompleted(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, ErrReminderNotFound)

	require.NoError(t, repo.Delete(ctx, rem.ID))
	assert.ErrorIs(t, repo.Delete(ctx, rem.ID), ErrReminderNotFound)
}

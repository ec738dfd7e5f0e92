// ABOUTME: Tests for deal database operations
// ABOUTME: Covers creation, stage validation, moves, and per-client listing
package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/pagen-priority/models"
)

func TestCreateDeal(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "deal corp")
	repo := NewDealRepository(database)
	ctx := context.Background()

	deal := &models.Deal{ClientID: client.ID, Title: "Big Deal", Amount: 100000}
	require.NoError(t, repo.Create(ctx, deal))

	assert.NotEqual(t, uuid.Nil, deal.ID)
	assert.Equal(t, models.StageNew, deal.Stage)
	assert.Equal(t, "USD", deal.Currency)

	got, err := repo.Get(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, got.ClientID)
	assert.Equal(t, int64(100000), got.Amount)
}

func TestCreateDealValidation(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "acme")
	repo := NewDealRepository(database)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Create(ctx, &models.Deal{ClientID: client.ID}), ErrInvalidDeal)
	assert.ErrorIs(t, repo.Create(ctx, &models.Deal{Title: "orphan"}), ErrInvalidDeal)
	assert.ErrorIs(t, repo.Create(ctx, &models.Deal{ClientID: client.ID, Title: "x", Stage: "won"}), ErrInvalidDeal)
	assert.ErrorIs(t, repo.Create(ctx, &models.Deal{ClientID: uuid.New(), Title: "x"}), ErrClientNotFound)
}

func TestMoveDealStage(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "globex")
	repo := NewDealRepository(database)
	ctx := context.Background()

	deal := &models.Deal{ClientID: client.ID, Title: "Expansion"}
	require.NoError(t, repo.Create(ctx, deal))

	moved, err := repo.MoveStage(ctx, deal.ID, models.StageNegotiating)
	require.NoError(t, err)
	assert.Equal(t, models.StageNegotiating, moved.Stage)

	_, err = repo.MoveStage(ctx, deal.ID, "lost")
	assert.ErrorIs(t, err, ErrInvalidDeal)

	_, err = repo.MoveStage(ctx, uuid.New(), models.StageClosed)
	assert.ErrorIs(t, err, ErrDealNotFound)
}

func TestListDealsByClientAndStage(t *testing.T) {
	database := setupTestDB(t)
	clients := NewClientRepository(database)
	repo := NewDealRepository(database)
	ctx := context.Background()

	a := createTestClient(t, clients, "a")
	b := createTestClient(t, clients, "b")

	for _, stage := range []string{models.StageNew, models.StageFollowUp, models.StageClosed} {
		require.NoError(t, repo.Create(ctx, &models.Deal{ClientID: a.ID, Title: "a-" + stage, Stage: stage}))
	}
	require.NoError(t, repo.Create(ctx, &models.Deal{ClientID: b.ID, Title: "b-new"}))

	aDeals, err := repo.ListByClient(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, aDeals, 3)
	assert.Equal(t, 2, models.ActiveDealCount(aDeals))

	newDeals, err := repo.Find(ctx, models.StageNew, 0)
	require.NoError(t, err)
	assert.Len(t, newDeals, 2)

	_, err = repo.Find(ctx, "bogus", 0)
	assert.ErrorIs(t, err, ErrInvalidDeal)
}

func TestDeleteDeal(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "initech")
	repo := NewDealRepository(database)
	ctx := context.Background()

	deal := &models.Deal{ClientID: client.ID, Title: "TPS"}
	require.NoError(t, repo.Create(ctx, deal))
	require.NoError(t, repo.Delete(ctx, deal.ID))

	_, err := repo.Get(ctx, deal.ID)
	assert.ErrorIs(t, err, ErrDealNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, deal.ID), ErrDealNotFound)
}

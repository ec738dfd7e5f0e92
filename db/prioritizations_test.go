// ABOUTME: Tests for the prioritization repository
// ABOUTME: Covers upsert replacement, consistency checks, and storage failures via sqlmock
package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/pagen-priority/models"
	"github.com/harperreed/pagen-priority/scoring"
)

func lowRecord(clientID uuid.UUID, userID string) *models.Prioritization {
	answers := models.QuestionnaireAnswers{
		ActiveDeals:          models.ActiveDealsOne,
		InteractionFrequency: models.Frequency1to2,
	}
	return &models.Prioritization{
		ClientID:           clientID,
		UserID:             userID,
		Answers:            answers,
		CalculatedPriority: scoring.Score(answers, nil),
	}
}

func richRecord(clientID uuid.UUID, userID string) *models.Prioritization {
	initiated := models.InitiatorClient
	proposal := models.ProposalYes
	answers := models.QuestionnaireAnswers{
		ActiveDeals:          models.ActiveDealsThreePlus,
		InteractionFrequency: models.Frequency6to9,
		WhoInitiated:         &initiated,
		PendingProposal:      &proposal,
	}
	hint := &models.EnrichmentHint{Priority: models.PriorityHigh, KeywordsCount: 5, Sentiment: models.SentimentHigh}
	return &models.Prioritization{
		ClientID:           clientID,
		UserID:             userID,
		Answers:            answers,
		Enrichment:         hint,
		CalculatedPriority: scoring.Score(answers, hint),
	}
}

func TestPrioritizationFirstSave(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "hooli")
	repo := NewPrioritizationRepository(database)
	ctx := context.Background()

	existing, err := repo.FindByClientAndUser(ctx, client.ID, "u1")
	require.NoError(t, err)
	assert.Nil(t, existing)

	exists, err := repo.Exists(ctx, client.ID, "u1")
	require.NoError(t, err)
	assert.False(t, exists)

	rec := richRecord(client.ID, "u1")
	saved, err := repo.Save(ctx, rec)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, uuid.Nil, rec.ID, "input record must not be modified")

	got, err := repo.FindByClientAndUser(ctx, client.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, rec.Answers, got.Answers)
	assert.Equal(t, rec.Enrichment, got.Enrichment)
	assert.Equal(t, rec.CalculatedPriority, got.CalculatedPriority)
	assert.WithinDuration(t, saved.CreatedAt, got.CreatedAt, 0)

	exists, err = repo.Exists(ctx, client.ID, "u1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPrioritizationOverwriteClearsOptionalFields(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "pied piper")
	repo := NewPrioritizationRepository(database)
	ctx := context.Background()

	first, err := repo.Save(ctx, richRecord(client.ID, "u1"))
	require.NoError(t, err)

	second, err := repo.Save(ctx, lowRecord(client.ID, "u1"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := repo.FindByClientAndUser(ctx, client.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
	assert.Nil(t, got.Answers.WhoInitiated)
	assert.Nil(t, got.Answers.PendingProposal)
	assert.Nil(t, got.Enrichment)
	assert.Equal(t, models.PriorityLow, got.CalculatedPriority)

	var rows int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM prioritizations`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestPrioritizationScopedPerUser(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "umbrella")
	repo := NewPrioritizationRepository(database)
	ctx := context.Background()

	_, err := repo.Save(ctx, lowRecord(client.ID, "u1"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, richRecord(client.ID, "u2"))
	require.NoError(t, err)

	u1, err := repo.FindByClientAndUser(ctx, client.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityLow, u1.CalculatedPriority)

	u2, err := repo.FindByClientAndUser(ctx, client.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, u2.CalculatedPriority)
}

func TestPrioritizationRejectsInconsistentPriority(t *testing.T) {
	database := setupTestDB(t)
	client := createTestClient(t, NewClientRepository(database), "wayne")
	repo := NewPrioritizationRepository(database)
	ctx := context.Background()

	_, err := repo.Save(ctx, lowRecord(client.ID, "u1"))
	require.NoError(t, err)

	tampered := lowRecord(client.ID, "u1")
	tampered.CalculatedPriority = models.PriorityHigh
	_, err = repo.Save(ctx, tampered)
	assert.ErrorIs(t, err, ErrInconsistentPriority)

	got, err := repo.FindByClientAndUser(ctx, client.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityLow, got.CalculatedPriority)
}

func TestPrioritizationRejectsInvalidRecords(t *testing.T) {
	repo := NewPrioritizationRepository(setupTestDB(t))
	ctx := context.Background()
	clientID := uuid.New()

	noUser := lowRecord(clientID, "")
	badFreq := lowRecord(clientID, "u1")
	badFreq.Answers.InteractionFrequency = "daily"
	badHint := richRecord(clientID, "u1")
	badHint.Enrichment.KeywordsCount = -1

	for _, rec := range []*models.Prioritization{nil, lowRecord(uuid.Nil, "u1"), noUser, badFreq, badHint} {
		_, err := repo.Save(ctx, rec)
		assert.ErrorIs(t, err, ErrInvalidPrioritization)
	}
}

func TestPrioritizationRequiresExistingClient(t *testing.T) {
	repo := NewPrioritizationRepository(setupTestDB(t))
	_, err := repo.Save(context.Background(), lowRecord(uuid.New(), "u1"))
	assert.Error(t, err)
}

func TestPrioritizationCountByPriority(t *testing.T) {
	database := setupTestDB(t)
	clients := NewClientRepository(database)
	repo := NewPrioritizationRepository(database)
	ctx := context.Background()

	for _, name := range []string{"a", "b"} {
		c := createTestClient(t, clients, name)
		_, err := repo.Save(ctx, lowRecord(c.ID, "u1"))
		require.NoError(t, err)
	}
	c := createTestClient(t, clients, "c")
	_, err := repo.Save(ctx, richRecord(c.ID, "u1"))
	require.NoError(t, err)

	counts, err := repo.CountByPriority(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[models.PriorityLevel]int{
		models.PriorityLow:    2,
		models.PriorityMedium: 0,
		models.PriorityHigh:   1,
	}, counts)

	require.NoError(t, repo.Delete(ctx, c.ID, "u1"))
	counts, err = repo.CountByPriority(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, counts[models.PriorityHigh])
}

func TestPrioritizationListByUser(t *testing.T) {
	database := setupTestDB(t)
	clients := NewClientRepository(database)
	repo := NewPrioritizationRepository(database)
	ctx := context.Background()

	a := createTestClient(t, clients, "a")
	b := createTestClient(t, clients, "b")
	_, err := repo.Save(ctx, lowRecord(a.ID, "u1"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, richRecord(b.ID, "u1"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, richRecord(a.ID, "u2"))
	require.NoError(t, err)

	all, err := repo.ListByUser(ctx, "u1", "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	high, err := repo.ListByUser(ctx, "u1", models.PriorityHigh, 10)
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, b.ID, high[0].ClientID)
	require.NotNil(t, high[0].Enrichment)

	_, err = repo.ListByUser(ctx, "u1", "urgent", 10)
	assert.ErrorIs(t, err, ErrInvalidPrioritization)
}

func TestPrioritizationSaveSurfacesStorageErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	storageErr := errors.New("disk I/O error")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO prioritizations").WillReturnError(storageErr)
	mock.ExpectRollback()

	repo := NewPrioritizationRepository(mockDB)
	_, err = repo.Save(context.Background(), lowRecord(uuid.New(), "u1"))
	assert.ErrorIs(t, err, storageErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrioritizationSaveSurfacesCommitErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	commitErr := errors.New("database is locked")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO prioritizations").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit().WillReturnError(commitErr)

	repo := NewPrioritizationRepository(mockDB)
	saved, err := repo.Save(context.Background(), lowRecord(uuid.New(), "u1"))
	assert.Nil(t, saved)
	assert.ErrorIs(t, err, commitErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrioritizationInconsistentIssuesNoStatements(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	rec := lowRecord(uuid.New(), "u1")
	rec.CalculatedPriority = models.PriorityMedium

	repo := NewPrioritizationRepository(mockDB)
	_, err = repo.Save(context.Background(), rec)
	assert.ErrorIs(t, err, ErrInconsistentPriority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrioritizationFindSurfacesQueryErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	queryErr := errors.New("no such table: prioritizations")
	mock.ExpectQuery("SELECT .+ FROM prioritizations").WillReturnError(queryErr)

	repo := NewPrioritizationRepository(mockDB)
	got, err := repo.FindByClientAndUser(context.Background(), uuid.New(), "u1")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, queryErr)
}

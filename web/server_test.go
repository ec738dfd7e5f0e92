// ABOUTME: Tests for the web server
// ABOUTME: Exercises every route through httptest against an in-memory database
package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
	"github.com/harperreed/pagen-priority/scoring"
)

const testUser = "web-user"

func setupTestServer(t *testing.T) (*Server, *sql.DB) {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	require.NoError(t, db.InitSchema(database))
	t.Cleanup(func() { _ = database.Close() })

	server, err := NewServer(database, testUser, zap.NewNop())
	require.NoError(t, err)
	return server, database
}

func seedPrioritized(t *testing.T, database *sql.DB, name string, userID string, answers models.QuestionnaireAnswers) *models.Client {
	t.Helper()
	ctx := context.Background()
	client := &models.Client{Name: name, Company: name + " Corp"}
	require.NoError(t, db.NewClientRepository(database).Create(ctx, client))

	if answers.ActiveDeals != "" {
		_, err := db.NewPrioritizationRepository(database).Save(ctx, &models.Prioritization{
			ClientID:           client.ID,
			UserID:             userID,
			Answers:            answers,
			CalculatedPriority: scoring.Score(answers, nil),
		})
		require.NoError(t, err)
	}
	return client
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

var (
	highAnswers = models.QuestionnaireAnswers{ActiveDeals: models.ActiveDealsThreePlus, InteractionFrequency: models.Frequency10Plus}
	lowAnswers  = models.QuestionnaireAnswers{ActiveDeals: models.ActiveDealsOne, InteractionFrequency: models.Frequency1to2}
)

func TestDashboardCounts(t *testing.T) {
	s, database := setupTestServer(t)
	seedPrioritized(t, database, "Acme", testUser, highAnswers)
	seedPrioritized(t, database, "Globex", testUser, lowAnswers)
	seedPrioritized(t, database, "Initech", "someone-else", highAnswers)
	hooli := seedPrioritized(t, database, "Hooli", testUser, models.QuestionnaireAnswers{})

	reminders := db.NewReminderRepository(database)
	require.NoError(t, reminders.Create(context.Background(),
		&models.Reminder{ClientID: hooli.ID, Title: "Chase", DueAt: time.Now().AddDate(0, 0, -3)}))
	require.NoError(t, reminders.Create(context.Background(),
		&models.Reminder{ClientID: hooli.ID, Title: "Demo", DueAt: time.Now().AddDate(0, 0, 7)}))

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `data-level="high">1<`)
	assert.Contains(t, body, `data-level="medium">0<`)
	assert.Contains(t, body, `data-level="low">1<`)
	assert.Contains(t, body, `data-level="none">2<`)
	assert.Contains(t, body, "4 client(s) in total")
	assert.Contains(t, body, `data-reminders="total">2<`)
	assert.Contains(t, body, `data-reminders="today">0<`)
	assert.Contains(t, body, `data-reminders="overdue">1<`)
}

func TestClientsTable(t *testing.T) {
	s, database := setupTestServer(t)
	seedPrioritized(t, database, "Acme", testUser, highAnswers)
	seedPrioritized(t, database, "Globex", testUser, models.QuestionnaireAnswers{})

	rec := get(t, s, "/clients")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme")
	assert.Contains(t, rec.Body.String(), `class="priority-high">high<`)
	assert.Contains(t, rec.Body.String(), `class="priority--">-<`)

	rec = get(t, s, "/clients?q=glob")
	assert.NotContains(t, rec.Body.String(), "Acme")
	assert.Contains(t, rec.Body.String(), "Globex")
}

func TestClientPriorityJSON(t *testing.T) {
	s, database := setupTestServer(t)
	client := seedPrioritized(t, database, "Acme", testUser, highAnswers)
	require.NoError(t, db.NewDealRepository(database).Create(context.Background(),
		&models.Deal{ClientID: client.ID, Title: "Renewal"}))
	require.NoError(t, db.NewDealRepository(database).Create(context.Background(),
		&models.Deal{ClientID: client.ID, Title: "Old", Stage: models.StageClosed}))

	rec := get(t, s, "/api/clients/"+client.ID.String()+"/priority")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp clientPriorityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Acme", resp.ClientName)
	assert.Equal(t, 1, resp.ActiveDealCount)
	require.NotNil(t, resp.Prioritization)
	assert.Equal(t, models.PriorityHigh, resp.Prioritization.CalculatedPriority)
}

func TestClientPriorityJSONErrors(t *testing.T) {
	s, database := setupTestServer(t)
	unscored := seedPrioritized(t, database, "Globex", testUser, models.QuestionnaireAnswers{})

	rec := get(t, s, "/api/clients/not-a-uuid/priority")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, s, "/api/clients/"+uuid.NewString()+"/priority")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, s, "/api/clients/"+unscored.ID.String()+"/priority")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"prioritization":null`)
}

func TestMetricsAndUnknownRoutes(t *testing.T) {
	s, _ := setupTestServer(t)

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	assert.Equal(t, http.StatusNotFound, get(t, s, "/nope").Code)
}

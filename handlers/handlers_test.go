// ABOUTME: Shared setup for MCP handler tests
// ABOUTME: Provides an in-memory database and an engine with a stub analyzer
package handlers

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/enrichment"
	"github.com/harperreed/pagen-priority/models"
	"github.com/harperreed/pagen-priority/prioritize"
)

const testUser = "mcp-user"

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	database.SetMaxOpenConns(1)
	if err := db.InitSchema(database); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

type fixedAnalyzer struct {
	hint *models.EnrichmentHint
	err  error
}

func (a fixedAnalyzer) Analyze(context.Context, *enrichment.Image) (*models.EnrichmentHint, error) {
	return a.hint, a.err
}

func newTestEngine(database *sql.DB, analyzer enrichment.Analyzer) *prioritize.Engine {
	return prioritize.New(
		db.NewClientRepository(database),
		db.NewDealRepository(database),
		db.NewPrioritizationRepository(database),
		prioritize.Options{UserID: testUser, Analyzer: analyzer, Logger: zap.NewNop()},
	)
}

// ABOUTME: Tests for database schema creation
// ABOUTME: Uses in-memory SQLite to check indexes and column constraints
package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestInitSchemaIndexes(t *testing.T) {
	db := setupTestDB(t)

	indexes := []string{
		"idx_clients_name",
		"idx_clients_email",
		"idx_deals_stage",
		"idx_deals_client_id",
		"idx_prioritizations_user",
		"idx_reminders_due",
		"idx_reminders_client_id",
	}
	for _, idx := range indexes {
		var indexName string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&indexName)
		if err != nil {
			t.Errorf("Index %s not found: %v", idx, err)
		}
	}
}

func TestInitSchemaIdempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := InitSchema(db); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}
}

func TestSchemaRejectsOutOfRangeAnswers(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()
	clientID := uuid.NewString()

	if _, err := db.Exec(`INSERT INTO clients (id, name, created_at, updated_at) VALUES (?, 'Acme', ?, ?)`, clientID, now, now); err != nil {
		t.Fatalf("insert client: %v", err)
	}

	insert := func(activeDeals, frequency, priority string, keywords any) error {
		_, err := db.Exec(`
			INSERT INTO prioritizations (id, client_id, user_id, active_deals, interaction_frequency,
				image_keywords_count, calculated_priority, created_at)
			VALUES (?, ?, 'u1', ?, ?, ?, ?, ?)
		`, uuid.NewString(), clientID, activeDeals, frequency, keywords, priority, now)
		return err
	}

	cases := []struct {
		name                           string
		activeDeals, frequency, result string
		keywords                       any
	}{
		{"active deals bucket", "4", "1-2times", "low", nil},
		{"frequency bucket", "1", "daily", "low", nil},
		{"priority level", "1", "1-2times", "urgent", nil},
		{"negative keywords", "1", "1-2times", "low", -1},
	}
	for _, tc := range cases {
		if err := insert(tc.activeDeals, tc.frequency, tc.result, tc.keywords); err == nil {
			t.Errorf("%s: expected CHECK constraint failure", tc.name)
		}
	}

	if err := insert("1", "1-2times", "low", nil); err != nil {
		t.Fatalf("valid row rejected: %v", err)
	}
	if err := insert("2", "3-5times", "medium", nil); err == nil {
		t.Error("second row for the same client and user should violate UNIQUE")
	}
}

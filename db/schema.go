// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation for clients, deals, prioritizations, and reminders
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	company TEXT,
	email TEXT,
	phone TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(name);
CREATE INDEX IF NOT EXISTS idx_clients_email ON clients(email);

CREATE TABLE IF NOT EXISTS deals (
	id TEXT PRIMARY KEY,
	client_id TEXT NOT NULL,
	title TEXT NOT NULL,
	amount INTEGER,
	currency TEXT NOT NULL DEFAULT 'USD',
	stage TEXT NOT NULL CHECK(stage IN ('new', 'contacted', 'follow_up', 'negotiating', 'closed')),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);
CREATE INDEX IF NOT EXISTS idx_deals_client_id ON deals(client_id);

CREATE TABLE IF NOT EXISTS prioritizations (
	id TEXT PRIMARY KEY,
	client_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	active_deals TEXT NOT NULL CHECK(active_deals IN ('1', '2', '3+')),
	interaction_frequency TEXT NOT NULL CHECK(interaction_frequency IN ('1-2times', '3-5times', '6-9times', '10+times')),
	who_initiated TEXT CHECK(who_initiated IN ('client', 'you')),
	pending_proposal TEXT CHECK(pending_proposal IN ('yes', 'no')),
	image_priority TEXT CHECK(image_priority IN ('low', 'medium', 'high')),
	image_keywords_count INTEGER CHECK(image_keywords_count >= 0),
	image_sentiment TEXT CHECK(image_sentiment IN ('low', 'mid', 'high')),
	calculated_priority TEXT NOT NULL CHECK(calculated_priority IN ('low', 'medium', 'high')),
	created_at DATETIME NOT NULL,
	UNIQUE(client_id, user_id),
	FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_prioritizations_user ON prioritizations(user_id, calculated_priority);

CREATE TABLE IF NOT EXISTS reminders (
	id TEXT PRIMARY KEY,
	client_id TEXT NOT NULL,
	title TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('call', 'email', 'meeting', 'follow-up')),
	priority TEXT NOT NULL CHECK(priority IN ('low', 'medium', 'high')),
	due_at DATETIME NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	completed_at DATETIME,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(completed, due_at);
CREATE INDEX IF NOT EXISTS idx_reminders_client_id ON reminders(client_id);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

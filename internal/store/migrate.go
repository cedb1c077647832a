package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	tableLLMEvents = "llm_request_events"
	tableHistory   = "generation_history"
	tableDrafts    = "drafts"
	tableSettings  = "settings"
)

// migrations are applied in order on every Open. Each statement must be
// idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     INTEGER NOT NULL,
		provider      TEXT    NOT NULL DEFAULT '',
		model         TEXT    NOT NULL DEFAULT '',
		purpose       TEXT    NOT NULL DEFAULT '',
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL DEFAULT 0,
		error_message TEXT    NOT NULL DEFAULT '',
		request_body  TEXT    NOT NULL DEFAULT '',
		response_body TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_events_timestamp ON llm_request_events (timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_events_purpose ON llm_request_events (purpose)`,
	`CREATE TABLE IF NOT EXISTS generation_history (
		id                 TEXT    PRIMARY KEY,
		created_at         INTEGER NOT NULL,
		subject            TEXT    NOT NULL DEFAULT '',
		grade              TEXT    NOT NULL DEFAULT '',
		topic              TEXT    NOT NULL DEFAULT '',
		feat_rpp           INTEGER NOT NULL DEFAULT 0,
		feat_materials     INTEGER NOT NULL DEFAULT 0,
		feat_lkpd          INTEGER NOT NULL DEFAULT 0,
		feat_assessment    INTEGER NOT NULL DEFAULT 0,
		feat_question_bank INTEGER NOT NULL DEFAULT 0,
		full_data          TEXT    NOT NULL DEFAULT '',
		input_data         TEXT    NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_created ON generation_history (created_at)`,
	`CREATE TABLE IF NOT EXISTS drafts (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		updated_at INTEGER NOT NULL,
		data       TEXT    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS counters (
		name  TEXT    PRIMARY KEY,
		value INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return tx.Commit()
}

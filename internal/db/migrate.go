package db

import (
	"context"
	"fmt"
)

// schema is valid for both PostgreSQL and SQLite. Timestamps are stored as
// UTC text in TimeLayout so ordering by them is lexical on both engines.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id       TEXT PRIMARY KEY,
		first_name    TEXT,
		last_name     TEXT,
		avatar_url    TEXT,
		bio           TEXT,
		constraints   TEXT,
		university    TEXT,
		major         TEXT,
		year_of_study TEXT,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id                TEXT PRIMARY KEY,
		work_start_hour        INTEGER NOT NULL DEFAULT 8,
		work_end_hour          INTEGER NOT NULL DEFAULT 22,
		lunch_start_hour       INTEGER NOT NULL DEFAULT 12,
		lunch_duration_minutes INTEGER NOT NULL DEFAULT 60
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		title             TEXT NOT NULL,
		category          TEXT NOT NULL,
		estimated_minutes INTEGER NOT NULL,
		actual_minutes    INTEGER,
		deadline          TEXT NOT NULL,
		energy_level      TEXT NOT NULL,
		status            TEXT NOT NULL,
		created_at        TEXT NOT NULL,
		completed_at      TEXT,
		postpone_count    INTEGER NOT NULL DEFAULT 0,
		postpone_reasons  TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS learning_data (
		user_id           TEXT NOT NULL,
		category          TEXT NOT NULL,
		total_estimated   INTEGER NOT NULL DEFAULT 0,
		total_actual      INTEGER NOT NULL DEFAULT 0,
		completed_count   INTEGER NOT NULL DEFAULT 0,
		accuracy          DOUBLE PRECISION NOT NULL DEFAULT 0,
		adjustment_factor DOUBLE PRECISION NOT NULL DEFAULT 1,
		updated_at        TEXT NOT NULL,
		PRIMARY KEY (user_id, category)
	)`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
		id               TEXT PRIMARY KEY,
		event_name       TEXT NOT NULL,
		event_time       TEXT NOT NULL,
		user_id          TEXT NOT NULL,
		session_id       TEXT,
		platform         TEXT NOT NULL,
		app_version      TEXT NOT NULL,
		device_locale    TEXT,
		source_event_key TEXT UNIQUE,
		properties       TEXT NOT NULL
	)`,
}

// TimeLayout is fixed-width so stored timestamps sort lexically.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Migrate creates any missing tables. It is safe to run on every start.
func Migrate(ctx context.Context, d *DB) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

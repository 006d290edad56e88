package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY
		);`,
		`CREATE TABLE IF NOT EXISTS pet_state (
			user_id INTEGER PRIMARY KEY,
			level INTEGER NOT NULL DEFAULT 1,
			xp INTEGER NOT NULL DEFAULT 0,
			next_level_threshold INTEGER NOT NULL DEFAULT 100,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS routines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL DEFAULT 1,
			title TEXT NOT NULL,
			time TEXT NOT NULL,
			days TEXT NOT NULL,
			difficulty TEXT NOT NULL DEFAULT 'mid',
			active INTEGER NOT NULL DEFAULT 1
		);`,
		// Timestamps stay as caller-supplied text; readers parse and skip bad rows.
		`CREATE TABLE IF NOT EXISTS routine_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			routine_id INTEGER NOT NULL,
			status TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			note TEXT,
			FOREIGN KEY(user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS stats_cache (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			week_start TEXT NOT NULL,
			completion_rate REAL NOT NULL DEFAULT 0,
			streak INTEGER NOT NULL DEFAULT 0,
			best_slots_json TEXT NOT NULL DEFAULT '[]',
			insights_json TEXT NOT NULL DEFAULT '[]',
			tips_json TEXT NOT NULL DEFAULT '[]',
			UNIQUE(user_id, week_start)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_routine_logs_user_ended ON routine_logs(user_id, ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_routines_user ON routines(user_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release (ignore if already present).
	alterStmts := []string{
		`ALTER TABLE routines ADD COLUMN icon_key TEXT DEFAULT 'yoga';`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}

	return nil
}

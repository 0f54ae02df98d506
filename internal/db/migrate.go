package db

import (
	"database/sql"
	"fmt"
)

// Migrate applies the schema. Every statement is idempotent, so it runs on
// each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS agenda_items (
		id               TEXT PRIMARY KEY,
		primary_id       TEXT NOT NULL,
		parent_id        TEXT,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		hierarchy_type   TEXT NOT NULL
		                 CHECK(hierarchy_type IN ('primary','milestone','step')),
		child_ids        TEXT NOT NULL DEFAULT '[]',
		is_scheduled     INTEGER NOT NULL DEFAULT 0,
		start_time       TEXT NOT NULL,
		end_time         TEXT NOT NULL,
		scheduling_order INTEGER NOT NULL DEFAULT 0,
		completed        INTEGER NOT NULL DEFAULT 0,
		completed_by     TEXT NOT NULL DEFAULT '',
		completed_at     TEXT,
		team_id          TEXT NOT NULL DEFAULT '',
		is_team_event    INTEGER NOT NULL DEFAULT 0,
		can_edit         INTEGER NOT NULL DEFAULT 1,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_agenda_items_primary ON agenda_items(primary_id)`,
	`CREATE INDEX IF NOT EXISTS idx_agenda_items_parent ON agenda_items(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_agenda_items_start ON agenda_items(start_time)`,

	`CREATE TABLE IF NOT EXISTS agenda_history (
		primary_id TEXT NOT NULL REFERENCES agenda_items(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL CHECK(position >= 0),
		command_id TEXT NOT NULL,
		cmd_action TEXT NOT NULL
		           CHECK(cmd_action IN ('create','update','delete','reorder')),
		item_type  TEXT NOT NULL DEFAULT '',
		item_id    TEXT NOT NULL DEFAULT '',
		payload    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (primary_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS agenda_history_cursor (
		primary_id TEXT PRIMARY KEY REFERENCES agenda_items(id) ON DELETE CASCADE,
		cursor     INTEGER NOT NULL CHECK(cursor >= -1)
	)`,
}

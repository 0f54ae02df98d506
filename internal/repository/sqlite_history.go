package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/agenda/internal/db"
	"github.com/alexanderramin/agenda/internal/domain"
)

// SQLiteHistoryRepo implements HistoryRepo using a SQLite database.
// Commands are stored whole as JSON; the other columns index them.
type SQLiteHistoryRepo struct {
	db db.DBTX
}

// NewSQLiteHistoryRepo creates a new SQLiteHistoryRepo.
func NewSQLiteHistoryRepo(conn db.DBTX) *SQLiteHistoryRepo {
	return &SQLiteHistoryRepo{db: conn}
}

// Load returns the stored commands of primaryID oldest first and the undo
// cursor. Without a cursor row the cursor points at the newest entry.
func (r *SQLiteHistoryRepo) Load(ctx context.Context, primaryID string) ([]domain.Command, int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payload FROM agenda_history WHERE primary_id = ? ORDER BY position`, primaryID)
	if err != nil {
		return nil, -1, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var entries []domain.Command
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, -1, fmt.Errorf("scanning history row: %w", err)
		}
		var cmd domain.Command
		if err := json.Unmarshal([]byte(payload), &cmd); err != nil {
			return nil, -1, fmt.Errorf("decoding command: %w", err)
		}
		entries = append(entries, cmd)
	}
	if err := rows.Err(); err != nil {
		return nil, -1, fmt.Errorf("iterating history: %w", err)
	}

	cursor := len(entries) - 1
	err = r.db.QueryRowContext(ctx,
		`SELECT cursor FROM agenda_history_cursor WHERE primary_id = ?`, primaryID).Scan(&cursor)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, -1, fmt.Errorf("loading history cursor: %w", err)
	}
	return entries, cursor, nil
}

// Save replaces the stored history of primaryID. Callers run it in the same
// transaction as the item write so both stay consistent.
func (r *SQLiteHistoryRepo) Save(ctx context.Context, primaryID string, entries []domain.Command, cursor int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM agenda_history WHERE primary_id = ?`, primaryID); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}

	created := nowUTC()
	for i, cmd := range entries {
		payload, err := json.Marshal(cmd)
		if err != nil {
			return fmt.Errorf("encoding command %s: %w", cmd.ID, err)
		}
		_, err = r.db.ExecContext(ctx, `INSERT INTO agenda_history
			(primary_id, position, command_id, cmd_action, item_type, item_id, payload, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			primaryID, i, cmd.ID, string(cmd.Action), string(cmd.ItemType), cmd.ItemID, string(payload), created)
		if err != nil {
			return fmt.Errorf("inserting history entry %d: %w", i, err)
		}
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO agenda_history_cursor (primary_id, cursor) VALUES (?, ?)
		ON CONFLICT(primary_id) DO UPDATE SET cursor = excluded.cursor`, primaryID, cursor)
	if err != nil {
		return fmt.Errorf("saving history cursor: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/agenda/internal/db"
	"github.com/alexanderramin/agenda/internal/domain"
)

// itemColumns is the canonical SELECT column list for agenda_items.
const itemColumns = `id, primary_id, parent_id, title, description, hierarchy_type,
		child_ids, is_scheduled, start_time, end_time, scheduling_order,
		completed, completed_by, completed_at, team_id, is_team_event, can_edit,
		created_at, updated_at`

// SQLiteItemRepo implements ItemRepo using a SQLite database.
type SQLiteItemRepo struct {
	db db.DBTX
}

// NewSQLiteItemRepo creates a new SQLiteItemRepo.
func NewSQLiteItemRepo(conn db.DBTX) *SQLiteItemRepo {
	return &SQLiteItemRepo{db: conn}
}

// ReplaceScope makes the stored items of primaryID equal to items: rows are
// upserted and any stored item of the scope missing from items is deleted.
// The primary row is updated in place so history rows referencing it survive.
func (r *SQLiteItemRepo) ReplaceScope(ctx context.Context, primaryID string, items []domain.TimeBoxedItem) error {
	keep := make([]any, 0, len(items)+1)
	keep = append(keep, primaryID)
	hasPrimary := false
	for i := range items {
		it := &items[i]
		if it.ID == primaryID {
			hasPrimary = true
		} else if it.PrimaryID != primaryID {
			return fmt.Errorf("item %s belongs to %s, not %s: %w", it.ID, it.PrimaryID, primaryID, domain.ErrValidation)
		}
		if err := r.upsert(ctx, it); err != nil {
			return err
		}
		if it.ID != primaryID {
			keep = append(keep, it.ID)
		}
	}
	if !hasPrimary {
		return fmt.Errorf("replacing scope %s without its primary event: %w", primaryID, domain.ErrValidation)
	}

	query := `DELETE FROM agenda_items WHERE primary_id = ? AND id NOT IN (` +
		strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",") + `)`
	args := append([]any{primaryID}, keep...)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("pruning agenda items: %w", err)
	}
	return nil
}

func (r *SQLiteItemRepo) upsert(ctx context.Context, it *domain.TimeBoxedItem) error {
	childIDs, err := encodeIDs(it.ChildIDs)
	if err != nil {
		return err
	}
	query := `INSERT INTO agenda_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			primary_id = excluded.primary_id,
			parent_id = excluded.parent_id,
			title = excluded.title,
			description = excluded.description,
			hierarchy_type = excluded.hierarchy_type,
			child_ids = excluded.child_ids,
			is_scheduled = excluded.is_scheduled,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			scheduling_order = excluded.scheduling_order,
			completed = excluded.completed,
			completed_by = excluded.completed_by,
			completed_at = excluded.completed_at,
			team_id = excluded.team_id,
			is_team_event = excluded.is_team_event,
			can_edit = excluded.can_edit,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		it.ID,
		it.PrimaryID,
		nullableString(it.ParentID),
		it.Title,
		it.Description,
		string(it.HierarchyType),
		childIDs,
		boolToInt(it.IsScheduled),
		it.StartTime.UTC().Format(time.RFC3339),
		it.EndTime.UTC().Format(time.RFC3339),
		it.SchedulingOrder,
		boolToInt(it.Completed),
		it.CompletedBy,
		nullableTimeToString(it.CompletedAt, time.RFC3339),
		it.TeamID,
		boolToInt(it.IsTeamEvent),
		boolToInt(it.CanEdit),
		it.CreatedAt.UTC().Format(time.RFC3339),
		it.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting agenda item %s: %w", it.ID, err)
	}
	return nil
}

// ListScope returns the primary event and every item rooted at it.
func (r *SQLiteItemRepo) ListScope(ctx context.Context, primaryID string) ([]domain.TimeBoxedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM agenda_items
		WHERE primary_id = ? OR id = ?
		ORDER BY CASE hierarchy_type WHEN 'primary' THEN 0 WHEN 'milestone' THEN 1 ELSE 2 END,
			scheduling_order, id`
	rows, err := r.db.QueryContext(ctx, query, primaryID, primaryID)
	if err != nil {
		return nil, fmt.Errorf("listing agenda scope: %w", err)
	}
	defer rows.Close()

	items, err := r.scanItems(rows)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TimeBoxedItem, len(items))
	for i, it := range items {
		out[i] = *it
	}
	return out, nil
}

func (r *SQLiteItemRepo) GetByID(ctx context.Context, id string) (*domain.TimeBoxedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM agenda_items WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanItem(row)
}

// ResolveID expands a unique id prefix to the full id.
func (r *SQLiteItemRepo) ResolveID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("empty item id: %w", domain.ErrValidation)
	}
	query := `SELECT id FROM agenda_items WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := r.db.QueryContext(ctx, query, prefix, escaped+"%", prefix)
	if err != nil {
		return "", fmt.Errorf("resolving item id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scanning item id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterating item ids: %w", err)
	}

	switch {
	case len(ids) == 0:
		return "", fmt.Errorf("agenda item %q: %w", prefix, ErrNotFound)
	case ids[0] == prefix, len(ids) == 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("item id %q is ambiguous: %w", prefix, domain.ErrValidation)
	}
}

func (r *SQLiteItemRepo) ListPrimaries(ctx context.Context) ([]*domain.TimeBoxedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM agenda_items
		WHERE hierarchy_type = 'primary' ORDER BY start_time, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing primary events: %w", err)
	}
	defer rows.Close()
	return r.scanItems(rows)
}

// DeleteScope removes an event with all its items. History rows cascade
// with the primary row.
func (r *SQLiteItemRepo) DeleteScope(ctx context.Context, primaryID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM agenda_items WHERE primary_id = ? AND id != ?`, primaryID, primaryID)
	if err != nil {
		return fmt.Errorf("deleting agenda items: %w", err)
	}
	children, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting deleted agenda items: %w", err)
	}

	res, err = r.db.ExecContext(ctx,
		`DELETE FROM agenda_items WHERE id = ? AND hierarchy_type = 'primary'`, primaryID)
	if err != nil {
		return fmt.Errorf("deleting primary event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting deleted primary event: %w", err)
	}
	if n == 0 && children == 0 {
		return fmt.Errorf("primary event %s: %w", primaryID, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteItemRepo) scanItem(row *sql.Row) (*domain.TimeBoxedItem, error) {
	it, err := scanItemRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("agenda item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning agenda item: %w", err)
	}
	return it, nil
}

func (r *SQLiteItemRepo) scanItems(rows *sql.Rows) ([]*domain.TimeBoxedItem, error) {
	var items []*domain.TimeBoxedItem
	for rows.Next() {
		it, err := scanItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning agenda item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating agenda items: %w", err)
	}
	return items, nil
}

func scanItemRow(s rowScanner) (*domain.TimeBoxedItem, error) {
	var it domain.TimeBoxedItem
	var parentID, completedAt sql.NullString
	var kind, childIDs, startStr, endStr, createdStr, updatedStr string
	var scheduled, completed, teamEvent, canEdit int

	err := s.Scan(
		&it.ID, &it.PrimaryID, &parentID, &it.Title, &it.Description, &kind,
		&childIDs, &scheduled, &startStr, &endStr, &it.SchedulingOrder,
		&completed, &it.CompletedBy, &completedAt, &it.TeamID, &teamEvent, &canEdit,
		&createdStr, &updatedStr,
	)
	if err != nil {
		return nil, err
	}

	it.HierarchyType = domain.HierarchyType(kind)
	if parentID.Valid {
		it.ParentID = parentID.String
	}
	if it.ChildIDs, err = decodeIDs(childIDs); err != nil {
		return nil, err
	}
	it.IsScheduled = intToBool(scheduled)
	it.Completed = intToBool(completed)
	it.IsTeamEvent = intToBool(teamEvent)
	it.CanEdit = intToBool(canEdit)
	it.CompletedAt = parseNullableTime(completedAt, time.RFC3339)

	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&it.StartTime, startStr},
		{&it.EndTime, endStr},
		{&it.CreatedAt, createdStr},
		{&it.UpdatedAt, updatedStr},
	} {
		t, err := time.Parse(time.RFC3339, f.src)
		if err != nil {
			return nil, fmt.Errorf("parsing time %q: %w", f.src, err)
		}
		*f.dst = t
	}
	return &it, nil
}

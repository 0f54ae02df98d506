package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alexanderramin/agenda/internal/db"
)

// FailingWriteUoW runs the callback in a real transaction but fails one
// write: the Nth ExecContext whose SQL contains Match. An empty Match counts
// every write; Nth below 1 means the first match. Reads pass through.
//
// It lets tests break a session save part way, e.g. after the items are
// written but before the history is, and assert nothing was committed.
type FailingWriteUoW struct {
	DB    *sql.DB
	Match string
	Nth   int
	Err   error
}

func (u *FailingWriteUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	nth := u.Nth
	if nth < 1 {
		nth = 1
	}
	wrapped := &failingWrites{DBTX: tx, match: u.Match, nth: nth, err: u.Err}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type failingWrites struct {
	db.DBTX
	match string
	nth   int
	seen  int
	err   error
}

func (f *failingWrites) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.Contains(query, f.match) {
		f.seen++
		if f.seen == f.nth {
			return nil, f.err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// BusyTimeoutMillis is how long a connection waits for another agenda
// process holding the write lock before failing with SQLITE_BUSY.
const BusyTimeoutMillis = 5000

// connPragmas are applied by the driver on every new pooled connection.
var connPragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
	fmt.Sprintf("busy_timeout(%d)", BusyTimeoutMillis),
}

// dsn builds the driver DSN for path. Transactions begin IMMEDIATE so a
// session that reads and then saves takes the write lock up front and
// queues behind a concurrent invocation instead of failing on upgrade.
func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

// OpenDB opens the agenda database at path, creating its directory, and
// applies the schema. MemoryPath yields a single-connection in-memory
// database, since every new connection to it would start empty.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", path, err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

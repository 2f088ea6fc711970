package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database and configures pragmas.
// WAL mode plus the busy timeout means concurrent writers queue briefly
// instead of failing immediately; contention past the timeout surfaces
// as SQLITE_BUSY and is reported to clients as a conflict.
//
// busy_timeout and foreign_keys are per-connection settings, so they go
// in the DSN where the driver applies them to every pooled connection.
func Open(path string) (*sql.DB, error) {
	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return db, nil
}

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// SQLite wraps an embedded SQLite database backing the save store.
type SQLite struct {
	DB *sqlx.DB
}

// OpenSQLite opens or creates the SQLite database at path and creates the
// save slot table.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	conn, err := sqlx.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows one writer; an in-memory database also exists only on
	// the connection that created it.
	conn.SetMaxOpenConns(1)

	db := &SQLite{DB: conn}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}

	return db, nil
}

func sqliteDSN(path string) string {
	if path == MemoryPath || strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (db *SQLite) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS city_saves (
		id TEXT PRIMARY KEY,
		city_name TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		low_wealth_population INTEGER NOT NULL,
		med_wealth_population INTEGER NOT NULL,
		high_wealth_population INTEGER NOT NULL,
		residential_population INTEGER NOT NULL,
		funds INTEGER NOT NULL,
		ordinance_id INTEGER NOT NULL,
		ordinance_data BLOB NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_city_saves_created_at ON city_saves(created_at);
	`
	_, err := db.DB.ExecContext(ctx, schema)
	return err
}

// Ping checks if the database is reachable.
func (db *SQLite) Ping(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

// Close closes the database.
func (db *SQLite) Close() error {
	return db.DB.Close()
}

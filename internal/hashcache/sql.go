package hashcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS hash_cache (
		path          TEXT PRIMARY KEY,
		last_modified BIGINT NOT NULL,
		hash          TEXT NOT NULL
	)
`

// SQLStore keeps the cache in a hash_cache table. It works with both the
// PostgreSQL and the SQLite driver.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQL connects, verifies the connection and creates the table if needed.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is required")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create hash_cache table: %w", err)
	}

	return &SQLStore{db: db, driver: driver}, nil
}

// placeholder returns the n-th (1-based) bind parameter for the driver.
func (s *SQLStore) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLStore) Load(ctx context.Context) (map[string]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path, last_modified, hash FROM hash_cache")
	if err != nil {
		return nil, fmt.Errorf("query hash cache: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]Entry)
	for rows.Next() {
		var path string
		var e Entry
		if err := rows.Scan(&path, &e.LastModified, &e.Hash); err != nil {
			return nil, fmt.Errorf("scan hash cache row: %w", err)
		}
		entries[path] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hash cache: %w", err)
	}
	return entries, nil
}

// Save upserts every entry in one transaction.
func (s *SQLStore) Save(ctx context.Context, entries map[string]Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := fmt.Sprintf(`
		INSERT INTO hash_cache (path, last_modified, hash) VALUES (%s, %s, %s)
		ON CONFLICT (path) DO UPDATE SET last_modified = excluded.last_modified, hash = excluded.hash`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for path, e := range entries {
		if _, err := stmt.ExecContext(ctx, path, e.LastModified, e.Hash); err != nil {
			return fmt.Errorf("upsert %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit hash cache: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM hash_cache"); err != nil {
		return fmt.Errorf("clear hash cache: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}

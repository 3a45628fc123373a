// Package history keeps a log of reconciliation runs and store writes.
//
// The default backend is a local SQLite file. A postgres:// DSN opens the
// same schema on Postgres so a team can share one history.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

type dialect int

const (
	sqlite dialect = iota
	postgres
)

// DB wraps the history database connection.
type DB struct {
	conn    *sql.DB
	dsn     string
	dialect dialect
}

// DefaultPath returns ~/.deliverynote/history.db, creating the directory if needed.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	dir := filepath.Join(home, ".deliverynote")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open opens or creates the database. dsn is a SQLite path (or ":memory:")
// or a postgres:// URL.
func Open(dsn string) (*DB, error) {
	d := &DB{dsn: dsn}
	driver := "sqlite3"
	if isPostgres(dsn) {
		d.dialect = postgres
		driver = "pgx"
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if d.dialect == sqlite {
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if d.dialect == sqlite {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set journal mode: %w", err)
		}
		if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	d.conn = conn
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// rebind rewrites ? placeholders as $1, $2... for Postgres.
func (d *DB) rebind(query string) string {
	if d.dialect != postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Both dialects accept this schema. Timestamps are written by the caller as
// fixed-width UTC text so they sort lexically.
var schemaV1 = []string{
	`CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    manifest   TEXT NOT NULL DEFAULT '',
    total      INTEGER NOT NULL,
    passed     INTEGER NOT NULL,
    failed     INTEGER NOT NULL,
    not_found  INTEGER NOT NULL,
    manual     INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
	`CREATE TABLE IF NOT EXISTS run_rows (
    run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    test_case_id TEXT NOT NULL,
    kind         TEXT NOT NULL,
    category     TEXT NOT NULL CHECK(category IN ('passed','failed','notFound','manual')),
    status       TEXT NOT NULL,
    PRIMARY KEY (run_id, position)
)`,
	`CREATE TABLE IF NOT EXISTS store_writes (
    id         TEXT PRIMARY KEY,
    kind       TEXT NOT NULL,
    mode       TEXT NOT NULL CHECK(mode IN ('merge','replace')),
    records    INTEGER NOT NULL,
    source     TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_store_writes_created ON store_writes(created_at)`,
}

// Migrate applies the database schema.
func (d *DB) Migrate() error {
	var count int
	err := d.conn.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = 1").Scan(&count)
	if err == nil && count > 0 {
		return nil
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schemaV1 {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema v1: %w", err)
		}
	}
	if _, err := tx.Exec(d.rebind("INSERT INTO schema_version (version, applied_at) VALUES (1, ?)"), timestamp(now())); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Reset drops all tables and re-applies the schema.
func (d *DB) Reset() error {
	tables := []string{"run_rows", "runs", "store_writes", "schema_version"}
	for _, t := range tables {
		if _, err := d.conn.Exec("DROP TABLE IF EXISTS " + t); err != nil {
			return fmt.Errorf("drop table %s: %w", t, err)
		}
	}
	return d.Migrate()
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteKV keeps slots as rows of a single kv table.
type SQLiteKV struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath in WAL mode.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteKV, error) {
	const op = "OpenSQLite"

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, WrapStoreError(op, err, "creating db directory")
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, WrapStoreError(op, err, "opening database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, WrapStoreError(op, err, "pinging database")
	}
	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		db.Close()
		return nil, WrapStoreError(op, err, "creating kv table")
	}
	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "SQLiteKV.Get"

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, WrapStoreError(op, err, fmt.Sprintf("key %s", key))
	}
	return value, nil
}

func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	const op = "SQLiteKV.Put"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return WrapStoreError(op, err, fmt.Sprintf("key %s", key))
	}
	return nil
}

func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

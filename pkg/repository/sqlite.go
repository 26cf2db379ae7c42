package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
  key        TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at INTEGER NOT NULL DEFAULT (unixepoch())
);
`

// SQLite is a KV backed by a local SQLite database file
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, goerr.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to initialize schema", goerr.V("path", path))
	}
	_ = os.Chmod(path, 0o600)

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "sqlite", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to query value", goerr.V("key", key))
	}
	return value, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, unixepoch())
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert value", goerr.V("key", key))
	}
	return nil
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return goerr.Wrap(err, "failed to delete value", goerr.V("key", key))
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteKV keeps every item in one key/value table of a local database file.
type SQLiteKV struct {
	conn *sqlx.DB
}

func OpenSQLite(path string) (*SQLiteKV, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(`
	CREATE TABLE IF NOT EXISTS kv_items (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	)`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create kv_items: %w", err)
	}
	return &SQLiteKV{conn: conn}, nil
}

func (s *SQLiteKV) Close() error {
	return s.conn.Close()
}

func (s *SQLiteKV) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.conn.GetContext(ctx, &value, "SELECT value FROM kv_items WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query kv item %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteKV) SetItem(ctx context.Context, key string, value []byte) error {
	_, err := s.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO kv_items (key, value, updated_at) VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert kv item %s: %w", key, err)
	}
	return nil
}

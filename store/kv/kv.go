// Package kv implements a Store backed by a single-table SQLite key-value
// database. It is the simple fallback backend, kept as a mirror of the
// latest in-memory state so the collection survives a damaged or missing
// primary file.
package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
	"todobreeze/store"
	"todobreeze/task"
)

// TasksKey is the key the task snapshot lives under. The value is carried
// over from the original storage format so existing mirrors keep working.
const TasksKey = "tb.tasks.v1"

// Backend implements store.Store using SQLite.
type Backend struct {
	db *sql.DB
}

// New opens (or creates) the key-value database at path and initializes the
// schema.
func New(path string) (*Backend, error) {
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	b := &Backend{db: db}
	if err := b.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);
	`
	_, err := b.db.Exec(schema)
	return err
}

// Load reads the task snapshot. A missing key is an empty collection.
func (b *Backend) Load(ctx context.Context) ([]any, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", TasksKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	var entries []any
	if err := json.Unmarshal(value, &entries); err != nil {
		return nil, fmt.Errorf("stored tasks are not a JSON array: %w", err)
	}
	return entries, nil
}

// Save replaces the task snapshot with compact JSON.
func (b *Backend) Save(ctx context.Context, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}

	_, err = b.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		TasksKey, data,
	)
	if err != nil {
		return fmt.Errorf("failed to write tasks: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Verify interface compliance at compile time
var _ store.Store = (*Backend)(nil)

// Package file implements a Store backed by a pretty-printed JSON file, the
// durable primary backend.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"todobreeze/store"
	"todobreeze/task"
)

// Config holds file backend configuration.
type Config struct {
	FilePath string // Path to the JSON task file
}

// Backend implements store.Store for file-based storage.
type Backend struct {
	filePath string // Resolved absolute path
}

// New creates a file backend, resolving relative paths against the working
// directory.
func New(cfg Config) (*Backend, error) {
	filePath := cfg.FilePath
	if filePath == "" {
		filePath = "tasks.json"
	}

	if !filepath.IsAbs(filePath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		filePath = filepath.Join(wd, filePath)
	}

	return &Backend{filePath: filePath}, nil
}

// Path returns the resolved file path.
func (b *Backend) Path() string {
	return b.filePath
}

// Load reads the persisted snapshot. A missing or empty file is an empty
// collection, not an error; a file whose top-level value is not an array is
// a load failure so callers can fall back to the mirror.
func (b *Backend) Load(ctx context.Context) ([]any, error) {
	data, err := os.ReadFile(b.filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}
	if len(data) == 0 {
		return []any{}, nil
	}

	var entries []any
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("task file is not a JSON array: %w", err)
	}
	return entries, nil
}

// Save writes the snapshot as pretty-printed UTF-8 JSON.
func (b *Backend) Save(ctx context.Context, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}

	dir := filepath.Dir(b.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(b.filePath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write task file: %w", err)
	}
	return nil
}

// Close closes the backend.
func (b *Backend) Close() error {
	return nil
}

// Verify interface compliance at compile time
var _ store.Store = (*Backend)(nil)

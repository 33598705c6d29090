// Package store defines the persistence boundary for the task collection.
// The core depends only on the Store interface; which backend variant is
// active is decided at open time.
package store

import (
	"context"

	"todobreeze/task"
)

// Store persists a task collection snapshot. Load returns the decoded but
// still untrusted entries; callers normalize them. Save replaces the
// persisted snapshot wholesale.
type Store interface {
	Load(ctx context.Context) ([]any, error)
	Save(ctx context.Context, tasks []task.Task) error
	Close() error
}

package store

import (
	"context"
	"sync"
	"time"

	"todobreeze/task"
)

// Dual combines a durable primary backend with a simpler mirror. Loads
// prefer the primary and fall back to the mirror; every successful load
// back-fills whichever side was missing. Saves are serialized (one writer at
// a time, so overlapping saves cannot interleave and corrupt a snapshot)
// and the mirror is always updated with the latest in-memory state, whether
// or not the primary write succeeded.
type Dual struct {
	primary Store
	mirror  Store

	mu sync.Mutex // serializes saves
}

// NewDual builds a dual store. Either side may be nil, in which case the
// other carries the full load alone.
func NewDual(primary, mirror Store) *Dual {
	return &Dual{primary: primary, mirror: mirror}
}

// Load reads the snapshot, primary first. A primary failure or empty
// primary degrades to the mirror; mirror contents recovered that way are
// written back to the primary so the two converge.
func (d *Dual) Load(ctx context.Context) ([]any, error) {
	if d.primary != nil {
		entries, err := d.primary.Load(ctx)
		if err == nil && entries != nil {
			if d.mirror != nil {
				d.mirrorEntries(ctx, entries)
			}
			return entries, nil
		}
	}

	if d.mirror == nil {
		return nil, nil
	}
	entries, err := d.mirror.Load(ctx)
	if err != nil {
		return nil, err
	}
	if entries != nil && d.primary != nil {
		d.primaryEntries(ctx, entries)
	}
	return entries, nil
}

// Save persists the snapshot. The mirror is written unconditionally; the
// primary's error, if any, is what the caller sees.
func (d *Dual) Save(ctx context.Context, tasks []task.Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var primaryErr error
	if d.primary != nil {
		primaryErr = d.primary.Save(ctx, tasks)
	}
	if d.mirror != nil {
		_ = d.mirror.Save(ctx, tasks)
	}
	return primaryErr
}

// Close closes both backends, returning the first error encountered.
func (d *Dual) Close() error {
	var first error
	if d.primary != nil {
		if err := d.primary.Close(); err != nil {
			first = err
		}
	}
	if d.mirror != nil {
		if err := d.mirror.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// mirrorEntries copies raw entries into the mirror on load. Entries are
// normalized first since Save takes typed tasks; malformed entries drop out
// here exactly as they would on the next in-memory pass.
func (d *Dual) mirrorEntries(ctx context.Context, entries []any) {
	_ = d.mirror.Save(ctx, normalizeEntries(entries))
}

func (d *Dual) primaryEntries(ctx context.Context, entries []any) {
	_ = d.primary.Save(ctx, normalizeEntries(entries))
}

func normalizeEntries(entries []any) []task.Task {
	return task.NormalizeAll(entries, time.Now().UnixMilli())
}

// Verify interface compliance at compile time
var _ Store = (*Dual)(nil)

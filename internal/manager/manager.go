// Package manager owns the in-memory task collection. It is the only writer:
// every mutation flows through the normalizer and replaces the collection
// wholesale, then persists through the configured store. The core engines in
// package task stay pure; this is where their results meet storage.
package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"todobreeze/internal/utils"
	"todobreeze/store"
	"todobreeze/task"
)

// Manager holds the current task collection and its persistence handle.
type Manager struct {
	store store.Store
	tasks []task.Task

	// now is the clock used for timestamps, injectable in tests.
	now func() int64
}

// New creates a manager over a store. Call Load before reading tasks.
func New(s store.Store) *Manager {
	return &Manager{
		store: s,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

// SetClock overrides the timestamp source. Intended for tests.
func (m *Manager) SetClock(now func() int64) {
	m.now = now
}

// Load reads the persisted collection, normalizes every entry (malformed
// entries are silently dropped), restores manual order, and compacts
// positions. A store failure degrades to an empty collection with a warning
// rather than refusing to start.
func (m *Manager) Load(ctx context.Context) error {
	entries, err := m.store.Load(ctx)
	if err != nil {
		utils.Warnf("failed to load tasks, starting empty: %v", err)
		m.tasks = nil
		return nil
	}
	tasks := task.NormalizeAll(entries, m.now())
	task.SortByPosition(tasks)
	task.CompactPositions(tasks)
	m.tasks = tasks
	return nil
}

// Tasks returns a copy of the current collection in manual order.
func (m *Manager) Tasks() []task.Task {
	out := make([]task.Task, len(m.tasks))
	for i := range m.tasks {
		out[i] = m.tasks[i].Clone()
	}
	return out
}

// Replace normalizes and persists a whole new collection. Positions are
// compacted to match the new order before saving.
func (m *Manager) Replace(ctx context.Context, tasks []task.Task) error {
	now := m.now()
	normalized := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		normalized = append(normalized, task.Renormalize(t, now))
	}
	task.CompactPositions(normalized)
	m.tasks = normalized
	return m.store.Save(ctx, m.tasks)
}

// Draft carries the fields of a task creation request. Hashtags found in the
// title are unioned with the explicit tags.
type Draft struct {
	Title        string
	Notes        string
	Due          string
	Priority     string
	Tags         string
	SubtaskLines string
	Recurrence   string
	Attachment   *task.Attachment
}

// Add creates a task from a draft, normalizes it, and appends it at the end
// of the manual order.
func (m *Manager) Add(ctx context.Context, draft Draft) (task.Task, error) {
	now := m.now()

	tags := task.ParseTags([]any{task.ParseHashtags(draft.Title), draft.Tags})
	t := task.Task{
		ID:         task.NewID(),
		Title:      draft.Title,
		Notes:      draft.Notes,
		Due:        draft.Due,
		Priority:   task.Priority(draft.Priority),
		Tags:       tags,
		Subtasks:   task.ParseSubtaskLines(draft.SubtaskLines, false, nil),
		Recurrence: task.ParseRecurrence(draft.Recurrence),
		CreatedAt:  now,
		UpdatedAt:  now,
		Position:   task.NextPosition(m.tasks),
		Attachment: draft.Attachment,
	}
	created := task.Renormalize(t, now)

	next := append(m.Tasks(), created)
	if err := m.Replace(ctx, next); err != nil {
		return task.Task{}, err
	}
	return created, nil
}

// EditRequest carries proposed field changes for an existing task. Nil
// fields are left untouched; the result is validated through the same
// normalization path as creation. KeepSubtaskState controls whether subtask
// lines reconcile completion against the current subtasks.
type EditRequest struct {
	Title            *string
	Notes            *string
	Due              *string
	Priority         *string
	Tags             *string
	Recurrence       *string
	SubtaskLines     *string
	KeepSubtaskState bool
}

// Edit applies an edit request to the task with the given identity.
func (m *Manager) Edit(ctx context.Context, id string, req EditRequest) (task.Task, error) {
	i, err := m.indexOf(id)
	if err != nil {
		return task.Task{}, err
	}

	now := m.now()
	t := m.tasks[i].Clone()
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		t.Title = *req.Title
	}
	if req.Notes != nil {
		t.Notes = *req.Notes
	}
	if req.Due != nil {
		t.Due = *req.Due
	}
	if req.Priority != nil {
		t.Priority = task.Priority(*req.Priority)
	}
	if req.Tags != nil {
		t.Tags = task.ParseTags(*req.Tags)
	}
	if req.Recurrence != nil {
		t.Recurrence = task.ParseRecurrence(*req.Recurrence)
	}
	if req.SubtaskLines != nil {
		t.Subtasks = task.ParseSubtaskLines(*req.SubtaskLines, req.KeepSubtaskState, m.tasks[i].Subtasks)
	}
	t.UpdatedAt = now

	updated := task.Renormalize(t, now)
	next := m.Tasks()
	next[i] = updated
	if err := m.Replace(ctx, next); err != nil {
		return task.Task{}, err
	}
	return updated, nil
}

// Toggle flips a task's completion state. When an incomplete recurring task
// with a due date is completed, the next occurrence is materialized at the
// end of the manual order; the completed original stays. The returned clone
// is nil when no occurrence was created.
func (m *Manager) Toggle(ctx context.Context, id string) (task.Task, *task.Task, error) {
	i, err := m.indexOf(id)
	if err != nil {
		return task.Task{}, nil, err
	}

	now := m.now()
	next := m.Tasks()
	wasCompleted := next[i].Completed
	next[i].Completed = !wasCompleted
	next[i].UpdatedAt = now

	var clone *task.Task
	if !wasCompleted && next[i].Completed {
		if c := task.NextOccurrence(next[i], now); c != nil {
			c.Position = task.NextPosition(next)
			next = append(next, *c)
			clone = c
		}
	}

	if err := m.Replace(ctx, next); err != nil {
		return task.Task{}, nil, err
	}
	return m.tasks[i], clone, nil
}

// AddSubtask appends one subtask to an existing task.
func (m *Manager) AddSubtask(ctx context.Context, id, title string) (task.Task, error) {
	i, err := m.indexOf(id)
	if err != nil {
		return task.Task{}, err
	}
	sub := task.NewSubtask(title, false, "")
	if sub == nil {
		return task.Task{}, fmt.Errorf("subtask title cannot be empty")
	}

	next := m.Tasks()
	next[i].Subtasks = append(next[i].Subtasks, *sub)
	next[i].UpdatedAt = m.now()
	if err := m.Replace(ctx, next); err != nil {
		return task.Task{}, err
	}
	return m.tasks[i], nil
}

// ToggleSubtask flips the completion of the n-th subtask (1-based) of a task
// and bumps the parent's updatedAt.
func (m *Manager) ToggleSubtask(ctx context.Context, id string, n int) (task.Task, error) {
	i, err := m.indexOf(id)
	if err != nil {
		return task.Task{}, err
	}
	if n < 1 || n > len(m.tasks[i].Subtasks) {
		return task.Task{}, fmt.Errorf("no subtask %d on task %q", n, m.tasks[i].Title)
	}

	next := m.Tasks()
	next[i].Subtasks[n-1].Completed = !next[i].Subtasks[n-1].Completed
	next[i].UpdatedAt = m.now()
	if err := m.Replace(ctx, next); err != nil {
		return task.Task{}, err
	}
	return m.tasks[i], nil
}

// Delete removes a task by identity.
func (m *Manager) Delete(ctx context.Context, id string) error {
	i, err := m.indexOf(id)
	if err != nil {
		return err
	}
	next := m.Tasks()
	next = append(next[:i], next[i+1:]...)
	return m.Replace(ctx, next)
}

// Reorder rearranges the collection to match an explicit identity sequence;
// unmentioned tasks keep their prior relative order at the end.
func (m *Manager) Reorder(ctx context.Context, order []string) error {
	return m.Replace(ctx, task.Reorder(m.Tasks(), order))
}

// Import merges a JSON array of task entries into the collection. The
// top-level shape must be an array; bad entries inside it are tolerated and
// normalized away. Returns the number of entries consumed.
func (m *Manager) Import(ctx context.Context, data []byte) (int, error) {
	entries, err := task.DecodeEntries(data)
	if err != nil {
		return 0, utils.ErrImportFormat(err)
	}
	merged := task.Merge(m.Tasks(), entries, m.now())
	if err := m.Replace(ctx, merged); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Seed replaces the whole collection from a sample data array. Entries are
// consumed exactly like an import into an empty collection.
func (m *Manager) Seed(ctx context.Context, data []byte) (int, error) {
	entries, err := task.DecodeEntries(data)
	if err != nil {
		return 0, utils.ErrImportFormat(err)
	}
	now := m.now()
	seeded := task.NormalizeAll(entries, now)
	if err := m.Replace(ctx, seeded); err != nil {
		return 0, err
	}
	return len(seeded), nil
}

// ExportJSON renders the current collection as pretty-printed JSON.
func (m *Manager) ExportJSON() ([]byte, error) {
	tasks := m.tasks
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// Find resolves a task reference: exact identity, unique identity prefix, or
// case-insensitive title substring (first match in manual order).
func (m *Manager) Find(ref string) (*task.Task, error) {
	i, err := m.resolve(ref)
	if err != nil {
		return nil, err
	}
	t := m.tasks[i].Clone()
	return &t, nil
}

func (m *Manager) indexOf(id string) (int, error) {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i, nil
		}
	}
	return 0, utils.ErrTaskNotFound(id)
}

func (m *Manager) resolve(ref string) (int, error) {
	for i := range m.tasks {
		if m.tasks[i].ID == ref {
			return i, nil
		}
	}

	prefix := -1
	for i := range m.tasks {
		if strings.HasPrefix(m.tasks[i].ID, ref) {
			if prefix >= 0 {
				return 0, fmt.Errorf("task reference %q is ambiguous", ref)
			}
			prefix = i
		}
	}
	if prefix >= 0 {
		return prefix, nil
	}

	needle := strings.ToLower(ref)
	for i := range m.tasks {
		if strings.Contains(strings.ToLower(m.tasks[i].Title), needle) {
			return i, nil
		}
	}
	return 0, utils.ErrTaskNotFound(ref)
}

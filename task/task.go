// Package task implements the task model and the normalization, merge,
// recurrence, ordering, and filtering rules that keep a persisted task
// collection internally consistent. Every task that is read from or written
// to storage passes through Normalize; callers never construct persisted
// tasks by hand.
package task

import (
	"github.com/google/uuid"
)

// Priority is the user-facing importance bucket of a task.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Recurrence is the repeat rule of a task. The empty string means the task
// does not repeat.
type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Score returns the sort weight of a priority (high > medium > low > none).
func (p Priority) Score() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Subtask is a checklist item owned by exactly one task. It has no lifecycle
// of its own; it is created, reconciled, and destroyed with its parent.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Attachment is an embedded file blob, stored as an encoded data URL.
// Absent metadata fields are omitted rather than written empty.
type Attachment struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
	Size int64  `json:"size,omitempty"`
	Data string `json:"data"`
}

// Task is the central entity. CreatedAt and UpdatedAt are epoch milliseconds;
// Due is a calendar date in YYYY-MM-DD form with "" meaning no due date.
type Task struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Notes      string      `json:"notes"`
	Due        string      `json:"due,omitempty"`
	Priority   Priority    `json:"priority"`
	Tags       []string    `json:"tags"`
	Completed  bool        `json:"completed"`
	Subtasks   []Subtask   `json:"subtasks"`
	Recurrence Recurrence  `json:"recurrence,omitempty"`
	CreatedAt  int64       `json:"createdAt"`
	UpdatedAt  int64       `json:"updatedAt"`
	Position   int         `json:"position"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Raw is an untrusted, untyped task-shaped value as decoded from JSON.
// Normalize is the only conversion from Raw (or any other unknown value)
// into a Task.
type Raw map[string]any

// DefaultTitle is substituted when a task title is empty after trimming.
const DefaultTitle = "Untitled task"

// NewID generates a unique identifier using UUID v4. Identities are opaque
// and stable: once a task or subtask carries an ID, normalization never
// replaces it.
func NewID() string {
	return uuid.New().String()
}

// HasTag reports whether the task carries the exact tag.
func (t *Task) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// CloneSubtasks returns a deep copy of the subtask slice.
func CloneSubtasks(subs []Subtask) []Subtask {
	if subs == nil {
		return nil
	}
	out := make([]Subtask, len(subs))
	copy(out, subs)
	return out
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.Tags = append([]string(nil), t.Tags...)
	c.Subtasks = CloneSubtasks(t.Subtasks)
	if t.Attachment != nil {
		att := *t.Attachment
		c.Attachment = &att
	}
	return c
}

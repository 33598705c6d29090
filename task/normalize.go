package task

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Normalize is the single conversion boundary between untrusted input and
// the Task type. It accepts anything a JSON decoder (or a careless caller)
// can produce and returns a well-formed task, or nil when the value is not
// object-like. It never panics, has no side effects beyond fresh identity
// generation, and is idempotent: re-normalizing a normalized task changes
// nothing, including its identity and timestamps.
//
// now is the timestamp (epoch milliseconds) substituted for missing or
// malformed createdAt/updatedAt values.
func Normalize(raw any, now int64) *Task {
	switch v := raw.(type) {
	case Raw:
		return normalizeMap(map[string]any(v), now)
	case map[string]any:
		return normalizeMap(v, now)
	case Task:
		t := Renormalize(v, now)
		return &t
	case *Task:
		if v == nil {
			return nil
		}
		t := Renormalize(*v, now)
		return &t
	default:
		return nil
	}
}

// NormalizeAll normalizes a decoded collection, silently dropping entries
// that are not object-like. Malformed entries are discarded, not repaired.
func NormalizeAll(raws []any, now int64) []Task {
	out := make([]Task, 0, len(raws))
	for _, raw := range raws {
		if t := Normalize(raw, now); t != nil {
			out = append(out, *t)
		}
	}
	return out
}

// Renormalize re-applies every field rule to an already-typed task. Used on
// each mutation so no code path can persist a task that skipped the rules.
func Renormalize(t Task, now int64) Task {
	out := t.Clone()
	if out.ID == "" {
		out.ID = NewID()
	}
	out.Title = strings.TrimSpace(out.Title)
	if out.Title == "" {
		out.Title = DefaultTitle
	}
	out.Due = ParseDate(out.Due)
	out.Priority = normalizePriority(string(out.Priority))
	out.Tags = ParseTags(out.Tags)
	out.Subtasks = normalizeSubtaskSlice(out.Subtasks)
	out.Recurrence = ParseRecurrence(string(out.Recurrence))
	if out.CreatedAt == 0 {
		out.CreatedAt = now
	}
	if out.UpdatedAt == 0 {
		out.UpdatedAt = now
	}
	if out.Attachment != nil && out.Attachment.Data == "" {
		out.Attachment = nil
	}
	return out
}

func normalizeMap(raw map[string]any, now int64) *Task {
	if raw == nil {
		return nil
	}

	t := Task{
		ID:        stringField(raw, "id"),
		Title:     strings.TrimSpace(stringField(raw, "title")),
		Notes:     stringField(raw, "notes"),
		Completed: truthy(raw["completed"]),
		Tags:      ParseTags(raw["tags"]),
	}
	if t.ID == "" {
		t.ID = NewID()
	}
	if t.Title == "" {
		t.Title = DefaultTitle
	}
	t.Due = ParseDate(stringify(raw["due"]))
	t.Priority = normalizePriority(stringify(raw["priority"]))
	t.Recurrence = ParseRecurrence(stringify(raw["recurrence"]))
	t.Subtasks = normalizeSubtasks(raw["subtasks"])

	t.CreatedAt = millisOr(raw["createdAt"], now)
	t.UpdatedAt = millisOr(raw["updatedAt"], now)
	if pos, ok := intOf(raw["position"]); ok {
		t.Position = pos
	}
	t.Attachment = normalizeAttachment(raw["attachment"])
	return &t
}

func normalizePriority(input string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(input))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityMedium:
		return PriorityMedium
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityNone
	}
}

// normalizeSubtasks coerces arbitrary subtask input. Only object-like
// entries with a non-empty trimmed title survive; identities are preserved
// when present and generated otherwise.
func normalizeSubtasks(v any) []Subtask {
	items, ok := v.([]any)
	if !ok {
		return []Subtask{}
	}
	out := make([]Subtask, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		sub := NewSubtask(stringField(entry, "title"), truthy(entry["completed"]), stringField(entry, "id"))
		if sub != nil {
			out = append(out, *sub)
		}
	}
	return out
}

func normalizeSubtaskSlice(subs []Subtask) []Subtask {
	out := make([]Subtask, 0, len(subs))
	for _, sub := range subs {
		if clean := NewSubtask(sub.Title, sub.Completed, sub.ID); clean != nil {
			out = append(out, *clean)
		}
	}
	return out
}

func normalizeAttachment(v any) *Attachment {
	entry, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	data := stringField(entry, "data")
	if data == "" {
		return nil
	}
	att := &Attachment{
		Name: stringField(entry, "name"),
		Type: stringField(entry, "type"),
		Data: data,
	}
	if size, ok := intOf(entry["size"]); ok && size > 0 {
		att.Size = int64(size)
	}
	return att
}

// =============================================================================
// Coercion helpers
// =============================================================================

// stringField returns the value only when it is actually a string; other
// types are treated as absent rather than stringified.
func stringField(raw map[string]any, key string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}

// stringify renders scalar values as strings, the way loosely typed input
// formats tend to interchange them. Composite and nil values yield "".
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// truthy mirrors the loose boolean coercion of the import formats this
// module accepts: false, 0, "", and nil are false, everything else true.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0 && !math.IsNaN(val)
	case int:
		return val != 0
	case int64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}

// intOf extracts a finite integer from numeric or numeric-string input.
func intOf(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// millisOr extracts an epoch-milliseconds timestamp, falling back when the
// value is missing or not a finite number.
func millisOr(v any, fallback int64) int64 {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fallback
		}
		return int64(val)
	case int:
		return int64(val)
	case int64:
		return val
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return int64(f)
		}
		return fallback
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
		return fallback
	default:
		return fallback
	}
}

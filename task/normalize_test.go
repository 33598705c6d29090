package task_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"todobreeze/task"
)

const testNow = int64(1700000000000)

// mustNormalize normalizes raw input and fails the test when it is rejected
func mustNormalize(t *testing.T, raw any) task.Task {
	t.Helper()
	n := task.Normalize(raw, testNow)
	if n == nil {
		t.Fatalf("Normalize(%v) rejected object-like input", raw)
	}
	return *n
}

func TestNormalizeDefaults(t *testing.T) {
	got := mustNormalize(t, map[string]any{})

	if got.ID == "" {
		t.Error("empty input should get a generated id")
	}
	if got.Title != task.DefaultTitle {
		t.Errorf("title = %q, want %q", got.Title, task.DefaultTitle)
	}
	if got.Due != "" {
		t.Errorf("due = %q, want empty", got.Due)
	}
	if got.Priority != task.PriorityNone {
		t.Errorf("priority = %q, want none", got.Priority)
	}
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("tags = %v, want empty non-nil slice", got.Tags)
	}
	if got.Subtasks == nil || len(got.Subtasks) != 0 {
		t.Errorf("subtasks = %v, want empty non-nil slice", got.Subtasks)
	}
	if got.Completed {
		t.Error("completed should default false")
	}
	if got.CreatedAt != testNow || got.UpdatedAt != testNow {
		t.Errorf("timestamps = %d/%d, want %d", got.CreatedAt, got.UpdatedAt, testNow)
	}
}

func TestNormalizeFieldRules(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]any
		check func(t *testing.T, got task.Task)
	}{
		{
			name: "title whitespace trimmed",
			raw:  map[string]any{"title": "  buy milk  "},
			check: func(t *testing.T, got task.Task) {
				if got.Title != "buy milk" {
					t.Errorf("title = %q", got.Title)
				}
			},
		},
		{
			name: "whitespace-only title replaced",
			raw:  map[string]any{"title": "   "},
			check: func(t *testing.T, got task.Task) {
				if got.Title != task.DefaultTitle {
					t.Errorf("title = %q", got.Title)
				}
			},
		},
		{
			name: "numeric id regenerated",
			raw:  map[string]any{"id": float64(42), "title": "x"},
			check: func(t *testing.T, got task.Task) {
				if got.ID == "42" || got.ID == "" {
					t.Errorf("non-string id should get a fresh identity, got %q", got.ID)
				}
			},
		},
		{
			name: "boolean id regenerated",
			raw:  map[string]any{"id": true, "title": "x"},
			check: func(t *testing.T, got task.Task) {
				if got.ID == "true" || got.ID == "" {
					t.Errorf("non-string id should get a fresh identity, got %q", got.ID)
				}
			},
		},
		{
			name: "numeric subtask id regenerated",
			raw: map[string]any{"subtasks": []any{
				map[string]any{"id": float64(7), "title": "step"},
			}},
			check: func(t *testing.T, got task.Task) {
				if len(got.Subtasks) != 1 {
					t.Fatalf("subtasks = %+v", got.Subtasks)
				}
				if id := got.Subtasks[0].ID; id == "7" || id == "" {
					t.Errorf("non-string subtask id should get a fresh identity, got %q", id)
				}
			},
		},
		{
			name: "invalid date dropped",
			raw:  map[string]any{"due": "2024-13-40"},
			check: func(t *testing.T, got task.Task) {
				if got.Due != "" {
					t.Errorf("due = %q, want empty", got.Due)
				}
			},
		},
		{
			name: "valid date kept",
			raw:  map[string]any{"due": "2024-06-15"},
			check: func(t *testing.T, got task.Task) {
				if got.Due != "2024-06-15" {
					t.Errorf("due = %q", got.Due)
				}
			},
		},
		{
			name: "unknown priority becomes none",
			raw:  map[string]any{"priority": "urgent"},
			check: func(t *testing.T, got task.Task) {
				if got.Priority != task.PriorityNone {
					t.Errorf("priority = %q", got.Priority)
				}
			},
		},
		{
			name: "priority case-insensitive",
			raw:  map[string]any{"priority": "HIGH"},
			check: func(t *testing.T, got task.Task) {
				if got.Priority != task.PriorityHigh {
					t.Errorf("priority = %q", got.Priority)
				}
			},
		},
		{
			name: "tags string split and deduped",
			raw:  map[string]any{"tags": "a, #a, b,,  c "},
			check: func(t *testing.T, got task.Task) {
				if !reflect.DeepEqual(got.Tags, []string{"a", "b", "c"}) {
					t.Errorf("tags = %v", got.Tags)
				}
			},
		},
		{
			name: "truthy completed coercion",
			raw:  map[string]any{"completed": float64(1)},
			check: func(t *testing.T, got task.Task) {
				if !got.Completed {
					t.Error("completed should be true for numeric 1")
				}
			},
		},
		{
			name: "falsy completed coercion",
			raw:  map[string]any{"completed": ""},
			check: func(t *testing.T, got task.Task) {
				if got.Completed {
					t.Error("completed should be false for empty string")
				}
			},
		},
		{
			name: "subtasks without titles dropped",
			raw: map[string]any{"subtasks": []any{
				map[string]any{"title": "keep", "completed": true},
				map[string]any{"title": "   "},
				"not an object",
			}},
			check: func(t *testing.T, got task.Task) {
				if len(got.Subtasks) != 1 || got.Subtasks[0].Title != "keep" || !got.Subtasks[0].Completed {
					t.Errorf("subtasks = %+v", got.Subtasks)
				}
				if got.Subtasks[0].ID == "" {
					t.Error("surviving subtask should get an id")
				}
			},
		},
		{
			name: "unknown recurrence dropped",
			raw:  map[string]any{"recurrence": "yearly"},
			check: func(t *testing.T, got task.Task) {
				if got.Recurrence != task.RecurrenceNone {
					t.Errorf("recurrence = %q", got.Recurrence)
				}
			},
		},
		{
			name: "numeric timestamps preserved",
			raw:  map[string]any{"createdAt": float64(1600000000000), "updatedAt": float64(1600000000001)},
			check: func(t *testing.T, got task.Task) {
				if got.CreatedAt != 1600000000000 || got.UpdatedAt != 1600000000001 {
					t.Errorf("timestamps = %d/%d", got.CreatedAt, got.UpdatedAt)
				}
			},
		},
		{
			name: "malformed timestamps replaced",
			raw:  map[string]any{"createdAt": "yesterday"},
			check: func(t *testing.T, got task.Task) {
				if got.CreatedAt != testNow {
					t.Errorf("createdAt = %d, want %d", got.CreatedAt, testNow)
				}
			},
		},
		{
			name: "attachment without data dropped",
			raw:  map[string]any{"attachment": map[string]any{"name": "x.png"}},
			check: func(t *testing.T, got task.Task) {
				if got.Attachment != nil {
					t.Errorf("attachment = %+v, want nil", got.Attachment)
				}
			},
		},
		{
			name: "attachment with data kept",
			raw:  map[string]any{"attachment": map[string]any{"name": "x.png", "type": "image/png", "size": float64(3), "data": "data:image/png;base64,AAAA"}},
			check: func(t *testing.T, got task.Task) {
				if got.Attachment == nil || got.Attachment.Name != "x.png" || got.Attachment.Size != 3 {
					t.Errorf("attachment = %+v", got.Attachment)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, mustNormalize(t, tt.raw))
		})
	}
}

func TestNormalizeRejectsNonObjects(t *testing.T) {
	for _, raw := range []any{nil, "a string", float64(42), true, []any{"nested"}} {
		if got := task.Normalize(raw, testNow); got != nil {
			t.Errorf("Normalize(%v) = %+v, want nil", raw, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := map[string]any{
		"id":       "t1",
		"title":    "  hello  ",
		"due":      "2024-06-15T12:00:00Z",
		"priority": "High",
		"tags":     "a, #b, a",
		"subtasks": []any{map[string]any{"id": "s1", "title": "step", "completed": true}},
	}
	first := mustNormalize(t, raw)
	second := mustNormalize(t, first)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if second.ID != "t1" {
		t.Errorf("identity changed on re-normalization: %q", second.ID)
	}
	if second.CreatedAt != first.CreatedAt || second.UpdatedAt != first.UpdatedAt {
		t.Error("timestamps changed on re-normalization")
	}
}

func TestNormalizeAll(t *testing.T) {
	var entries []any
	data := `[{"title":"one"},"junk",7,{"title":"two"},null]`
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := task.NormalizeAll(entries, testNow)
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got))
	}
	if got[0].Title != "one" || got[1].Title != "two" {
		t.Errorf("titles = %q, %q", got[0].Title, got[1].Title)
	}
}

func TestRenormalize(t *testing.T) {
	in := task.Task{
		Title:      "  padded  ",
		Due:        "not-a-date",
		Priority:   "URGENT",
		Recurrence: "hourly",
		Subtasks:   []task.Subtask{{Title: "  "}, {ID: "s1", Title: "ok"}},
	}
	got := task.Renormalize(in, testNow)

	if got.ID == "" {
		t.Error("missing id should be generated")
	}
	if got.Title != "padded" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Due != "" || got.Priority != task.PriorityNone || got.Recurrence != task.RecurrenceNone {
		t.Errorf("field rules not applied: due=%q priority=%q recurrence=%q", got.Due, got.Priority, got.Recurrence)
	}
	if len(got.Subtasks) != 1 || got.Subtasks[0].ID != "s1" {
		t.Errorf("subtasks = %+v", got.Subtasks)
	}
	if got.CreatedAt != testNow {
		t.Errorf("createdAt = %d", got.CreatedAt)
	}
}

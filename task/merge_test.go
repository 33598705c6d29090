package task_test

import (
	"encoding/json"
	"testing"

	"todobreeze/task"
)

func decodeArray(t *testing.T, data string) []any {
	t.Helper()
	entries, err := task.DecodeEntries([]byte(data))
	if err != nil {
		t.Fatalf("DecodeEntries: %v", err)
	}
	return entries
}

func TestDecodeEntries(t *testing.T) {
	t.Run("array accepted", func(t *testing.T) {
		entries := decodeArray(t, `[{"title":"a"},{"title":"b"}]`)
		if len(entries) != 2 {
			t.Errorf("expected 2 entries, got %d", len(entries))
		}
	})

	t.Run("empty array accepted", func(t *testing.T) {
		entries := decodeArray(t, `[]`)
		if len(entries) != 0 {
			t.Errorf("expected 0 entries, got %d", len(entries))
		}
	})

	t.Run("object rejected", func(t *testing.T) {
		if _, err := task.DecodeEntries([]byte(`{"tasks":[]}`)); err == nil {
			t.Error("top-level object should be a format error")
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		if _, err := task.DecodeEntries([]byte(`not json`)); err == nil {
			t.Error("invalid JSON should be a format error")
		}
	})
}

func TestMergeUpdatesMatchingIdentity(t *testing.T) {
	current := []task.Task{{
		ID:        "t1",
		Title:     "Old title",
		Notes:     "keep these notes",
		Priority:  task.PriorityLow,
		CreatedAt: 1000,
		UpdatedAt: 2000,
		Position:  1,
	}}
	incoming := decodeArray(t, `[{"id":"t1","title":"New title","priority":"high"}]`)

	merged := task.Merge(current, incoming, testNow)
	if len(merged) != 1 {
		t.Fatalf("expected 1 task, got %d", len(merged))
	}
	got := merged[0]
	if got.Title != "New title" || got.Priority != task.PriorityHigh {
		t.Errorf("incoming fields should win: %+v", got)
	}
	if got.Notes != "keep these notes" {
		t.Errorf("omitted fields should keep existing values: notes = %q", got.Notes)
	}
	if got.CreatedAt != 1000 {
		t.Errorf("createdAt = %d, want original 1000", got.CreatedAt)
	}
	if got.UpdatedAt != testNow {
		t.Errorf("updatedAt = %d, want merge time %d", got.UpdatedAt, testNow)
	}
}

func TestMergeIsUnion(t *testing.T) {
	current := []task.Task{
		{ID: "a", Title: "existing only", CreatedAt: 1, UpdatedAt: 1},
		{ID: "b", Title: "shared", CreatedAt: 2, UpdatedAt: 2},
	}
	incoming := decodeArray(t, `[{"id":"b","title":"shared updated"},{"id":"c","title":"incoming only"}]`)

	merged := task.Merge(current, incoming, testNow)
	if len(merged) != 3 {
		t.Fatalf("expected union of 3 tasks, got %d", len(merged))
	}
	if merged[0].ID != "a" || merged[1].ID != "b" || merged[2].ID != "c" {
		t.Errorf("order should be current first then arrivals: %v", []string{merged[0].ID, merged[1].ID, merged[2].ID})
	}
	if merged[0].Title != "existing only" {
		t.Errorf("untouched task changed: %q", merged[0].Title)
	}
	if merged[1].Title != "shared updated" {
		t.Errorf("matched task not updated: %q", merged[1].Title)
	}
}

func TestMergeDropsNonObjectEntries(t *testing.T) {
	incoming := decodeArray(t, `["junk",42,null,{"id":"ok","title":"kept"},[1,2]]`)
	merged := task.Merge(nil, incoming, testNow)
	if len(merged) != 1 || merged[0].ID != "ok" {
		t.Errorf("only the object entry should survive: %+v", merged)
	}
}

func TestMergeGeneratesMissingIdentity(t *testing.T) {
	incoming := decodeArray(t, `[{"title":"no id"}]`)
	merged := task.Merge(nil, incoming, testNow)
	if len(merged) != 1 {
		t.Fatalf("expected 1 task, got %d", len(merged))
	}
	if merged[0].ID == "" {
		t.Error("entry without id should get a generated one")
	}
}

func TestMergeTreatsNonStringIdentityAsAbsent(t *testing.T) {
	current := []task.Task{{ID: "42", Title: "existing", CreatedAt: 1000}}
	incoming := decodeArray(t, `[{"id":42,"title":"incoming"}]`)

	merged := task.Merge(current, incoming, testNow)
	if len(merged) != 2 {
		t.Fatalf("numeric id must not match task %q, got %d tasks", "42", len(merged))
	}
	if merged[0].Title != "existing" {
		t.Errorf("existing task should be untouched: %+v", merged[0])
	}
	if merged[1].ID == "42" || merged[1].ID == "" {
		t.Errorf("incoming entry should get a fresh identity, got %q", merged[1].ID)
	}
	if merged[1].Title != "incoming" {
		t.Errorf("arrival = %+v", merged[1])
	}
}

func TestMergeNormalizesIncoming(t *testing.T) {
	incoming := decodeArray(t, `[{"id":"x","title":"  spaced  ","due":"2024-13-40","tags":"a, a, #b"}]`)
	merged := task.Merge(nil, incoming, testNow)
	got := merged[0]
	if got.Title != "spaced" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Due != "" {
		t.Errorf("invalid due should be dropped, got %q", got.Due)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "a" || got.Tags[1] != "b" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestMergeRoundTripThroughExport(t *testing.T) {
	original := task.Merge(nil, decodeArray(t, `[{"id":"r1","title":"task","due":"2024-06-15","subtasks":[{"id":"s1","title":"sub","completed":true}]}]`), testNow)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	entries, err := task.DecodeEntries(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	merged := task.Merge(original, entries, testNow+1)
	if len(merged) != 1 {
		t.Fatalf("round-trip should not duplicate, got %d tasks", len(merged))
	}
	got := merged[0]
	if got.ID != "r1" || got.Due != "2024-06-15" || len(got.Subtasks) != 1 || !got.Subtasks[0].Completed {
		t.Errorf("round-trip lost data: %+v", got)
	}
	if got.CreatedAt != original[0].CreatedAt {
		t.Errorf("createdAt changed across round-trip: %d != %d", got.CreatedAt, original[0].CreatedAt)
	}
}

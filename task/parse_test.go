package task_test

import (
	"reflect"
	"strings"
	"testing"

	"todobreeze/task"
)

// =============================================================================
// Tag Parsing Tests
// =============================================================================

func TestParseTags(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{"comma separated with noise", "a, #a, b,,  c ", []string{"a", "b", "c"}},
		{"single tag", "home", []string{"home"}},
		{"hash prefix stripped", "#work", []string{"work"}},
		{"empty string", "", []string{}},
		{"nil input", nil, []string{}},
		{"slice of strings", []any{"a", "b", "a"}, []string{"a", "b"}},
		{"nested slices flattened", []any{"a", []any{"b, c", "d"}}, []string{"a", "b", "c", "d"}},
		{"numbers stringified", []any{42, "x"}, []string{"42", "x"}},
		{"whitespace only entries dropped", " , \t ,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := task.ParseTags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTags(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTagsIdempotent(t *testing.T) {
	first := task.ParseTags("x, #y, z, x")
	second := task.ParseTags(first)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-parsing changed the result: %v != %v", first, second)
	}
}

func TestParseHashtags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single hashtag", "buy milk #errand", []string{"errand"}},
		{"multiple hashtags", "fix #bug in #parser", []string{"bug", "parser"}},
		{"unicode hashtag", "réunion #équipe", []string{"équipe"}},
		{"underscore and hyphen", "#multi_word-tag", []string{"multi_word-tag"}},
		{"no hashtags", "plain title", []string{}},
		{"duplicates kept for later dedup", "#a and #a again", []string{"a", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := task.ParseHashtags(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseHashtags(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Date and Recurrence Parsing Tests
// =============================================================================

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid date", "2024-06-15", "2024-06-15"},
		{"leap day", "2024-02-29", "2024-02-29"},
		{"non-leap february 29", "2023-02-29", ""},
		{"month out of range", "2024-13-40", ""},
		{"datetime truncated to date", "2024-06-15T10:30:00Z", "2024-06-15"},
		{"garbage", "next tuesday", ""},
		{"empty", "", ""},
		{"wrong separator", "2024/06/15", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := task.ParseDate(tt.input); got != tt.want {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRecurrence(t *testing.T) {
	tests := []struct {
		input string
		want  task.Recurrence
	}{
		{"daily", task.RecurrenceDaily},
		{"weekly", task.RecurrenceWeekly},
		{"monthly", task.RecurrenceMonthly},
		{"yearly", task.RecurrenceNone},
		{"", task.RecurrenceNone},
		{"DAILY", task.RecurrenceNone},
	}

	for _, tt := range tests {
		if got := task.ParseRecurrence(tt.input); got != tt.want {
			t.Errorf("ParseRecurrence(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// =============================================================================
// Subtask Line Parsing Tests
// =============================================================================

func TestParseSubtaskLines(t *testing.T) {
	t.Run("markers set completion when kept", func(t *testing.T) {
		input := "[x] done thing\n[ ] pending thing"
		subs := task.ParseSubtaskLines(input, true, nil)
		if len(subs) != 2 {
			t.Fatalf("expected 2 subtasks, got %d", len(subs))
		}
		if !subs[0].Completed || subs[0].Title != "done thing" {
			t.Errorf("first subtask = %+v, want completed 'done thing'", subs[0])
		}
		if subs[1].Completed || subs[1].Title != "pending thing" {
			t.Errorf("second subtask = %+v, want incomplete 'pending thing'", subs[1])
		}
	})

	t.Run("markers ignored when not kept", func(t *testing.T) {
		subs := task.ParseSubtaskLines("[x] a\n[X] b", false, nil)
		for _, s := range subs {
			if s.Completed {
				t.Errorf("subtask %q should start incomplete", s.Title)
			}
		}
	})

	t.Run("bare lines become incomplete subtasks", func(t *testing.T) {
		subs := task.ParseSubtaskLines("just a line\n- [ ] dashed", true, nil)
		if len(subs) != 2 {
			t.Fatalf("expected 2 subtasks, got %d", len(subs))
		}
		if subs[0].Title != "just a line" || subs[0].Completed {
			t.Errorf("bare line parsed as %+v", subs[0])
		}
		if subs[1].Title != "dashed" {
			t.Errorf("dashed line parsed as %+v", subs[1])
		}
	})

	t.Run("blank lines skipped", func(t *testing.T) {
		subs := task.ParseSubtaskLines("a\n\n  \nb", true, nil)
		if len(subs) != 2 {
			t.Fatalf("expected 2 subtasks, got %d", len(subs))
		}
	})

	t.Run("identity reused by matching title", func(t *testing.T) {
		current := []task.Subtask{
			{ID: "s1", Title: "Walk dog", Completed: true},
			{ID: "s2", Title: "Feed cat", Completed: false},
		}
		subs := task.ParseSubtaskLines("feed cat\nwalk dog", true, current)
		if len(subs) != 2 {
			t.Fatalf("expected 2 subtasks, got %d", len(subs))
		}
		if subs[0].ID != "s2" {
			t.Errorf("feed cat should reuse id s2, got %q", subs[0].ID)
		}
		if subs[1].ID != "s1" {
			t.Errorf("walk dog should reuse id s1, got %q", subs[1].ID)
		}
	})

	t.Run("duplicate titles consume matches in order", func(t *testing.T) {
		current := []task.Subtask{
			{ID: "s1", Title: "step"},
			{ID: "s2", Title: "step"},
		}
		subs := task.ParseSubtaskLines("step\nstep\nstep", true, current)
		if len(subs) != 3 {
			t.Fatalf("expected 3 subtasks, got %d", len(subs))
		}
		if subs[0].ID != "s1" || subs[1].ID != "s2" {
			t.Errorf("duplicate reconciliation got ids %q, %q", subs[0].ID, subs[1].ID)
		}
		if subs[2].ID == "" || subs[2].ID == "s1" || subs[2].ID == "s2" {
			t.Errorf("third subtask should have a fresh id, got %q", subs[2].ID)
		}
	})

	t.Run("unmarked line keeps existing completion", func(t *testing.T) {
		current := []task.Subtask{{ID: "s1", Title: "done already", Completed: true}}
		subs := task.ParseSubtaskLines("done already", true, current)
		if len(subs) != 1 || !subs[0].Completed {
			t.Errorf("expected completion carried over, got %+v", subs)
		}
	})
}

func TestFormatSubtaskLines(t *testing.T) {
	subs := []task.Subtask{
		{ID: "a", Title: "first", Completed: true},
		{ID: "b", Title: "second", Completed: false},
	}
	got := task.FormatSubtaskLines(subs)
	want := "[x] first\n[ ] second"
	if got != want {
		t.Errorf("FormatSubtaskLines = %q, want %q", got, want)
	}

	// Round-trip preserves titles and completion.
	back := task.ParseSubtaskLines(got, true, subs)
	if len(back) != 2 || back[0].ID != "a" || !back[0].Completed || back[1].Completed {
		t.Errorf("round-trip mismatch: %+v", back)
	}
}

func TestNewSubtask(t *testing.T) {
	if s := task.NewSubtask("   ", false, ""); s != nil {
		t.Errorf("blank title should yield nil, got %+v", s)
	}
	s := task.NewSubtask("  trimmed  ", true, "")
	if s == nil {
		t.Fatal("expected a subtask")
	}
	if s.Title != "trimmed" || !s.Completed || s.ID == "" {
		t.Errorf("NewSubtask = %+v", s)
	}
	if s2 := task.NewSubtask("x", false, "fixed"); s2.ID != "fixed" {
		t.Errorf("explicit id not kept: %q", s2.ID)
	}
	if strings.Contains(s.ID, " ") {
		t.Errorf("generated id contains whitespace: %q", s.ID)
	}
}

package task

import (
	"regexp"
	"strings"
	"time"
)

// DateFormat is the calendar date layout used for due dates.
const DateFormat = "2006-01-02"

// hashtagPattern matches #tag tokens inside a title. Unicode letter aware.
var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_-]+)`)

// subtaskLinePattern matches an optional checkbox marker at the start of a
// subtask line: "[ ] text", "[x] text", with an optional leading "- ".
var subtaskLinePattern = regexp.MustCompile(`^\s*(?:-\s*)?\[(x|X| )\]\s*(.*)$`)

// ParseTags flattens arbitrary tag input into a clean tag list. It accepts a
// string, a slice of strings, or any nesting of either (as produced by JSON
// decoding); strings are split on commas, entries are trimmed, empties are
// dropped, one leading '#' is stripped, and duplicates collapse to first
// occurrence. Parsing an already-parsed list yields the same list.
func ParseTags(input any) []string {
	var out []string
	seen := make(map[string]bool)

	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case nil:
			return
		case string:
			for _, part := range strings.Split(val, ",") {
				tag := strings.TrimPrefix(strings.TrimSpace(part), "#")
				if tag == "" || seen[tag] {
					continue
				}
				seen[tag] = true
				out = append(out, tag)
			}
		case []string:
			for _, item := range val {
				walk(item)
			}
		case []any:
			for _, item := range val {
				walk(item)
			}
		case map[string]any:
			// Tolerate object-shaped tag input by taking its values.
			for _, item := range val {
				walk(item)
			}
		default:
			walk(stringify(v))
		}
	}
	walk(input)

	if out == nil {
		return []string{}
	}
	return out
}

// ParseHashtags extracts #tag tokens from a title, without the '#'.
func ParseHashtags(title string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(title, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// ParseRecurrence validates a recurrence string. Only daily, weekly, and
// monthly (case-insensitive) are recognized; everything else, including
// "none", means no recurrence.
func ParseRecurrence(input string) Recurrence {
	switch Recurrence(strings.ToLower(strings.TrimSpace(input))) {
	case RecurrenceDaily:
		return RecurrenceDaily
	case RecurrenceWeekly:
		return RecurrenceWeekly
	case RecurrenceMonthly:
		return RecurrenceMonthly
	default:
		return RecurrenceNone
	}
}

// ParseDate validates a calendar date string. Input longer than ten
// characters is truncated first, so datetime-ish values like
// "2024-06-15T00:00" still yield their date part. Returns "" for anything
// that is not a real calendar date.
func ParseDate(input string) string {
	s := strings.TrimSpace(input)
	if len(s) > 10 {
		s = s[:10]
	}
	if s == "" {
		return ""
	}
	if _, err := time.Parse(DateFormat, s); err != nil {
		return ""
	}
	return s
}

// NewSubtask builds a subtask from a title, generating an identity when none
// is supplied. Returns nil when the trimmed title is empty; such a subtask
// cannot exist.
func NewSubtask(title string, completed bool, id string) *Subtask {
	text := strings.TrimSpace(title)
	if text == "" {
		return nil
	}
	if id == "" {
		id = NewID()
	}
	return &Subtask{ID: id, Title: text, Completed: completed}
}

// ParseSubtaskLines parses multi-line subtask input, one subtask per
// non-blank line. A line may begin with a checkbox marker ("[ ]", "[x]",
// optionally after "- "); a line without a marker never marks the subtask
// complete on its own.
//
// When keepCompletion is true the parse reconciles against current: a line
// is matched to an existing subtask by case-insensitive trimmed title
// (multiset semantics, first available match consumed) and reuses that
// subtask's identity, and, when the line has no marker, its completion
// state. When keepCompletion is false every parsed subtask starts incomplete
// regardless of markers, though identities are still reused so re-typing an
// unchanged title does not orphan toggles.
func ParseSubtaskLines(input string, keepCompletion bool, current []Subtask) []Subtask {
	existing := make(map[string][]Subtask)
	for _, sub := range current {
		key := strings.ToLower(strings.TrimSpace(sub.Title))
		existing[key] = append(existing[key], sub)
	}

	var out []Subtask
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		text := strings.TrimSpace(line)
		completed := false
		hasMarker := false
		if m := subtaskLinePattern.FindStringSubmatch(line); m != nil {
			hasMarker = true
			completed = keepCompletion && strings.EqualFold(m[1], "x")
			text = m[2]
		}

		key := strings.ToLower(strings.TrimSpace(text))
		var reused *Subtask
		if bucket := existing[key]; len(bucket) > 0 {
			r := bucket[0]
			existing[key] = bucket[1:]
			reused = &r
		}

		done := completed
		if !hasMarker {
			done = keepCompletion && reused != nil && reused.Completed
		}
		reusedID := ""
		if reused != nil {
			reusedID = reused.ID
		}
		if sub := NewSubtask(text, done, reusedID); sub != nil {
			out = append(out, *sub)
		}
	}
	return out
}

// FormatSubtaskLines renders subtasks back into the line format accepted by
// ParseSubtaskLines, for pre-filling edit input.
func FormatSubtaskLines(subs []Subtask) string {
	lines := make([]string, 0, len(subs))
	for _, sub := range subs {
		marker := " "
		if sub.Completed {
			marker = "x"
		}
		lines = append(lines, "["+marker+"] "+sub.Title)
	}
	return strings.Join(lines, "\n")
}

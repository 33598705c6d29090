package task

import (
	"sort"
	"strings"
	"time"
)

// SortMode selects how a task list is presented.
type SortMode string

const (
	SortManual   SortMode = "manual"
	SortPriority SortMode = "priority"
	SortDue      SortMode = "due"
	SortCreated  SortMode = "created"
	SortTitle    SortMode = "title"
)

// ParseSortMode validates a sort mode string, defaulting to manual.
func ParseSortMode(input string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(input))) {
	case SortPriority:
		return SortPriority
	case SortDue:
		return SortDue
	case SortCreated:
		return SortCreated
	case SortTitle:
		return SortTitle
	default:
		return SortManual
	}
}

// When is a temporal bucket filter.
type When string

const (
	WhenAny       When = ""
	WhenCompleted When = "completed"
	WhenActive    When = "active"
	WhenToday     When = "today"
	WhenOverdue   When = "overdue"
	WhenUpcoming  When = "upcoming"
)

// ParseWhen validates a temporal bucket name; unknown values mean no bucket
// filter.
func ParseWhen(input string) When {
	switch When(strings.ToLower(strings.TrimSpace(input))) {
	case WhenCompleted, WhenActive, WhenToday, WhenOverdue, WhenUpcoming:
		return When(strings.ToLower(strings.TrimSpace(input)))
	default:
		return WhenAny
	}
}

// Filter holds combinable task predicates with AND semantics. Today anchors
// the temporal bucket; when empty the current local date is used.
type Filter struct {
	Search string
	Tag    string
	When   When
	Today  string
}

// Matches reports whether a task passes every predicate in the filter.
func (f Filter) Matches(t *Task) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !matchesSearch(t, q) {
			return false
		}
	}
	if f.Tag != "" && !t.HasTag(f.Tag) {
		return false
	}
	return matchesWhen(t, f.When, f.today())
}

func (f Filter) today() string {
	if f.Today != "" {
		return f.Today
	}
	return time.Now().Format(DateFormat)
}

func matchesSearch(t *Task, query string) bool {
	if strings.Contains(strings.ToLower(t.Title), query) ||
		strings.Contains(strings.ToLower(t.Notes), query) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	for _, sub := range t.Subtasks {
		if strings.Contains(strings.ToLower(sub.Title), query) {
			return true
		}
	}
	return false
}

// matchesWhen applies the temporal bucket. Due dates are plain YYYY-MM-DD
// strings, so lexicographic comparison is date comparison.
func matchesWhen(t *Task, when When, today string) bool {
	switch when {
	case WhenCompleted:
		return t.Completed
	case WhenActive:
		return !t.Completed
	case WhenToday:
		return t.Due != "" && t.Due == today
	case WhenOverdue:
		return t.Due != "" && t.Due < today && !t.Completed
	case WhenUpcoming:
		return t.Due != "" && t.Due > today && !t.Completed
	default:
		return true
	}
}

// Apply returns the tasks matching the filter, preserving input order.
func (f Filter) Apply(tasks []Task) []Task {
	var out []Task
	for i := range tasks {
		if f.Matches(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// Sort returns a sorted copy of the tasks. Manual mode orders by position
// (stable, arrival order breaks ties); the computed modes follow fixed
// tie-break chains so output is deterministic.
func Sort(tasks []Task, mode SortMode) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)

	switch mode {
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			if c := out[j].Priority.Score() - out[i].Priority.Score(); c != 0 {
				return c < 0
			}
			if c := compareDue(&out[i], &out[j]); c != 0 {
				return c < 0
			}
			return compareCreated(&out[i], &out[j]) < 0
		})
	case SortDue:
		sort.SliceStable(out, func(i, j int) bool {
			if c := compareDue(&out[i], &out[j]); c != 0 {
				return c < 0
			}
			return compareCreated(&out[i], &out[j]) < 0
		})
	case SortCreated:
		sort.SliceStable(out, func(i, j int) bool {
			return compareCreated(&out[i], &out[j]) < 0
		})
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	default:
		SortByPosition(out)
	}
	return out
}

// compareDue orders by due date ascending with undated tasks last.
func compareDue(a, b *Task) int {
	switch {
	case a.Due == "" && b.Due == "":
		return 0
	case a.Due == "":
		return 1
	case b.Due == "":
		return -1
	}
	return strings.Compare(a.Due, b.Due)
}

// compareCreated orders by creation time descending (most recent first).
func compareCreated(a, b *Task) int {
	switch {
	case a.CreatedAt > b.CreatedAt:
		return -1
	case a.CreatedAt < b.CreatedAt:
		return 1
	default:
		return 0
	}
}

// DistinctTags returns the sorted set of tags across all tasks.
func DistinctTags(tasks []Task) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tasks {
		for _, tag := range t.Tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	sort.Strings(out)
	return out
}

package task

import "time"

// NextDue computes the next occurrence date for a recurring task. Returns ""
// when due is not a valid calendar date or rule is not a valid recurrence.
//
// Monthly advancement clamps to the last valid day of the target month, so
// 2024-01-31 recurs on 2024-02-29 rather than overflowing into March.
func NextDue(due string, rule Recurrence) string {
	date, err := time.Parse(DateFormat, ParseDate(due))
	if err != nil {
		return ""
	}

	switch rule {
	case RecurrenceDaily:
		date = date.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		date = date.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		date = addMonthClamped(date)
	default:
		return ""
	}
	return date.Format(DateFormat)
}

// addMonthClamped advances a date by one calendar month, clamping the day of
// month when the target month is shorter.
func addMonthClamped(date time.Time) time.Time {
	firstOfNext := time.Date(date.Year(), date.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	day := date.Day()
	if last := daysIn(firstOfNext.Year(), firstOfNext.Month()); day > last {
		day = last
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextOccurrence materializes the recurrence clone of a task that just
// transitioned to completed. The clone keeps the title, notes, tags,
// priority, recurrence, and attachment; it gets a fresh identity, the
// computed next due date, fresh timestamps, and its subtasks reset to
// incomplete with regenerated identities. Returns nil when the task has no
// due date or no valid recurrence.
//
// The caller assigns the clone's position (end of manual order) and retains
// the completed original; completion history accumulates.
func NextOccurrence(t Task, now int64) *Task {
	next := NextDue(t.Due, t.Recurrence)
	if next == "" {
		return nil
	}

	clone := t.Clone()
	clone.ID = NewID()
	clone.Completed = false
	clone.Due = next
	clone.CreatedAt = now
	clone.UpdatedAt = now
	clone.Position = 0
	for i := range clone.Subtasks {
		clone.Subtasks[i].ID = NewID()
		clone.Subtasks[i].Completed = false
	}
	normalized := Renormalize(clone, now)
	return &normalized
}

// Package ics renders a task collection as an iCalendar document of VTODO
// components, one per task.
package ics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"todobreeze/task"
)

// ProdID identifies this application in generated calendars.
const ProdID = "-//Todo Breeze//EN"

// UIDSuffix is appended to the task identity to form a globally scoped UID.
const UIDSuffix = "@todobreeze"

const stampFormat = "20060102T150405Z"

// Build renders tasks into an iCalendar document. Each entry carries its
// identity-derived UID, creation timestamp, optional date-only DUE, escaped
// SUMMARY/DESCRIPTION/CATEGORIES, STATUS, a COMPLETED stamp for finished
// tasks, and an RRULE line when a recurrence is set. Lines are CRLF-joined
// per the format. Tasks are normalized on the way out; entries that fail
// normalization are skipped.
func Build(tasks []task.Task, now time.Time) string {
	stamp := now.UTC().Format(stampFormat)

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ProdID,
	}

	for i := range tasks {
		t := task.Normalize(tasks[i], now.UnixMilli())
		if t == nil {
			continue
		}
		lines = append(lines, "BEGIN:VTODO")
		lines = append(lines, "UID:"+Escape(t.ID+UIDSuffix))
		lines = append(lines, "DTSTAMP:"+stamp)
		lines = append(lines, "CREATED:"+time.UnixMilli(t.CreatedAt).UTC().Format(stampFormat))
		if t.Due != "" {
			lines = append(lines, "DUE;VALUE=DATE:"+strings.ReplaceAll(t.Due, "-", ""))
		}
		lines = append(lines, "SUMMARY:"+Escape(t.Title))
		if t.Notes != "" {
			lines = append(lines, "DESCRIPTION:"+Escape(t.Notes))
		}
		if len(t.Tags) > 0 {
			escaped := make([]string, len(t.Tags))
			for j, tag := range t.Tags {
				escaped[j] = Escape(tag)
			}
			lines = append(lines, "CATEGORIES:"+strings.Join(escaped, ","))
		}
		if t.Completed {
			lines = append(lines, "STATUS:COMPLETED")
			lines = append(lines, "COMPLETED:"+time.UnixMilli(t.UpdatedAt).UTC().Format(stampFormat))
		} else {
			lines = append(lines, "STATUS:NEEDS-ACTION")
		}
		if t.Recurrence != task.RecurrenceNone {
			lines = append(lines, "RRULE:FREQ="+strings.ToUpper(string(t.Recurrence)))
		}
		lines = append(lines, "END:VTODO")
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

// Escape applies iCalendar TEXT escaping: backslash, semicolon, comma, and
// newlines.
func Escape(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, ";", `\;`)
	value = strings.ReplaceAll(value, ",", `\,`)
	value = strings.ReplaceAll(value, "\r\n", `\n`)
	value = strings.ReplaceAll(value, "\n", `\n`)
	return value
}

// Unescape reverses Escape.
func Unescape(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c != '\\' || i+1 >= len(value) {
			b.WriteByte(c)
			continue
		}
		i++
		switch value[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(value[i])
		}
	}
	return b.String()
}

// ExtractProperty extracts the raw (still escaped) value of the first
// occurrence of a property, tolerating parameters such as
// "DUE;VALUE=DATE:20260120".
func ExtractProperty(content, property string) string {
	pattern := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(property) + `(?:;[^:]*)?:(.*)$`)
	m := pattern.FindStringSubmatch(content)
	if len(m) >= 2 {
		return strings.TrimRight(m[1], "\r")
	}
	return ""
}

// ParseStamp parses a UTC timestamp in the layout Build emits.
func ParseStamp(value string) (time.Time, error) {
	t, err := time.Parse(stampFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", value)
	}
	return t, nil
}

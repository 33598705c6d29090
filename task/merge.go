package task

import (
	"encoding/json"
	"fmt"
)

// DecodeEntries parses an import or seed payload. The top-level value must
// be a JSON array; anything else is a format error. Entries inside the array
// are returned as-is for Normalize and Merge to judge individually.
func DecodeEntries(data []byte) ([]any, error) {
	var entries []any
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid file format: expected a JSON array of tasks: %w", err)
	}
	return entries, nil
}

// Merge reconciles an imported collection against the current one by
// identity. Incoming fields win over existing ones field-by-field, with
// existing values filling whatever incoming omits; the merged record is then
// renormalized. A matched task keeps its original createdAt; updatedAt is
// always set to the merge timestamp. Entries with no match are inserted, and
// current tasks absent from incoming are preserved untouched — merge is a
// union and never deletes.
//
// Non-object entries are dropped. Result order is current tasks first, then
// new arrivals in incoming order; the ordering engine re-sequences after.
func Merge(current []Task, incoming []any, now int64) []Task {
	result := make([]Task, 0, len(current)+len(incoming))
	index := make(map[string]int, len(current))
	for _, t := range current {
		norm := Renormalize(t, now)
		index[norm.ID] = len(result)
		result = append(result, norm)
	}

	for _, raw := range incoming {
		entry, ok := raw.(map[string]any)
		if !ok {
			if r, isRaw := raw.(Raw); isRaw {
				entry = map[string]any(r)
			} else {
				continue
			}
		}

		// Identities are opaque strings; anything else is treated as absent.
		id := stringField(entry, "id")
		if id == "" {
			id = NewID()
		}

		at, found := index[id]
		if !found {
			overlay := cloneEntry(entry)
			overlay["id"] = id
			merged := Normalize(overlay, now)
			if merged == nil {
				continue
			}
			merged.UpdatedAt = now
			index[merged.ID] = len(result)
			result = append(result, *merged)
			continue
		}

		existing := result[at]
		base := existing.asRaw()
		for key, value := range entry {
			base[key] = value
		}
		base["id"] = id
		merged := Normalize(base, now)
		if merged == nil {
			continue
		}
		merged.CreatedAt = existing.CreatedAt
		merged.UpdatedAt = now
		result[at] = *merged
	}

	return result
}

func cloneEntry(entry map[string]any) map[string]any {
	out := make(map[string]any, len(entry))
	for k, v := range entry {
		out[k] = v
	}
	return out
}

// asRaw lowers a task back into the untyped shape so incoming raw fields can
// be overlaid before renormalization.
func (t Task) asRaw() map[string]any {
	raw := map[string]any{
		"id":        t.ID,
		"title":     t.Title,
		"notes":     t.Notes,
		"priority":  string(t.Priority),
		"tags":      t.Tags,
		"completed": t.Completed,
		"createdAt": t.CreatedAt,
		"updatedAt": t.UpdatedAt,
		"position":  t.Position,
	}
	if t.Due != "" {
		raw["due"] = t.Due
	}
	if t.Recurrence != RecurrenceNone {
		raw["recurrence"] = string(t.Recurrence)
	}
	subs := make([]any, 0, len(t.Subtasks))
	for _, sub := range t.Subtasks {
		subs = append(subs, map[string]any{
			"id":        sub.ID,
			"title":     sub.Title,
			"completed": sub.Completed,
		})
	}
	raw["subtasks"] = subs
	if t.Attachment != nil {
		att := map[string]any{"data": t.Attachment.Data}
		if t.Attachment.Name != "" {
			att["name"] = t.Attachment.Name
		}
		if t.Attachment.Type != "" {
			att["type"] = t.Attachment.Type
		}
		if t.Attachment.Size != 0 {
			att["size"] = t.Attachment.Size
		}
		raw["attachment"] = att
	}
	return raw
}

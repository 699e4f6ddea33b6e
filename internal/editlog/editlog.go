// Package editlog maintains the per-report edit history.
//
// The log only grows: entries are never reordered or removed, and the first
// entry always records creation.
package editlog

import (
	"time"

	"flooring-cli/internal/model"
)

// SystemUser stands in for an unknown author when a legacy report has no history.
const SystemUser = "System"

// Seed returns the initial history for a newly created report.
func Seed(author string, createdAt time.Time) []model.EditLogEntry {
	return []model.EditLogEntry{{User: author, Timestamp: createdAt, Action: model.EditActionCreated}}
}

// Append returns existing's history plus one edited entry. When existing has no
// history, a created entry is synthesized from its author and createdAt first.
// The returned slice never aliases existing.EditLog.
func Append(existing *model.Report, editor string, now time.Time) []model.EditLogEntry {
	var prev []model.EditLogEntry
	if existing != nil {
		prev = existing.EditLog
	}
	out := make([]model.EditLogEntry, 0, len(prev)+2)
	out = append(out, prev...)
	if len(out) == 0 {
		out = append(out, synthesizedCreated(existing, now))
	}
	return append(out, model.EditLogEntry{User: editor, Timestamp: now, Action: model.EditActionEdited})
}

func synthesizedCreated(existing *model.Report, now time.Time) model.EditLogEntry {
	e := model.EditLogEntry{User: SystemUser, Timestamp: now, Action: model.EditActionCreated}
	if existing == nil {
		return e
	}
	if existing.Author != "" {
		e.User = existing.Author
	}
	if !existing.CreatedAt.IsZero() {
		e.Timestamp = existing.CreatedAt
	}
	return e
}

// Valid reports whether a history is non-empty and starts with a created entry.
func Valid(log []model.EditLogEntry) bool {
	return len(log) > 0 && log[0].Action == model.EditActionCreated
}

// Editors returns distinct editors in first-seen order, excluding the creator entry.
func Editors(log []model.EditLogEntry) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range log {
		if e.Action != model.EditActionEdited || e.User == "" || seen[e.User] {
			continue
		}
		seen[e.User] = true
		out = append(out, e.User)
	}
	return out
}

package domain

import (
	"maps"
	"time"
)

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus    TicketChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee  TicketChangeType = "ASSIGNEE_CHANGE"
	ChangeTypePriority  TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeIssueType TicketChangeType = "ISSUE_TYPE_CHANGE"
	ChangeTypeDetails   TicketChangeType = "DETAILS_CHANGE"
)

// TicketHistory is an immutable audit trail entry.
type TicketHistory struct {
	ID          string
	TicketID    string
	ChangedByID string
	ChangeType  TicketChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}

// Clone returns a copy that shares no maps with h.
func (h TicketHistory) Clone() TicketHistory {
	h.OldValue = maps.Clone(h.OldValue)
	h.NewValue = maps.Clone(h.NewValue)
	return h
}

// DiffTickets lists the history entries that turn before into after. Comments and
// timestamps are not tracked.
func DiffTickets(before, after Ticket, changedByID string) []TicketHistory {
	var out []TicketHistory
	add := func(changeType TicketChangeType, field string, oldVal, newVal any) {
		out = append(out, TicketHistory{
			TicketID:    after.ID,
			ChangedByID: changedByID,
			ChangeType:  changeType,
			OldValue:    map[string]any{field: oldVal},
			NewValue:    map[string]any{field: newVal},
			CreatedAt:   after.UpdatedAt,
		})
	}
	if before.Status != after.Status {
		add(ChangeTypeStatus, "status", string(before.Status), string(after.Status))
	}
	if before.Priority != after.Priority {
		add(ChangeTypePriority, "priority", string(before.Priority), string(after.Priority))
	}
	if before.IssueType != after.IssueType {
		add(ChangeTypeIssueType, "issue_type", string(before.IssueType), string(after.IssueType))
	}
	if oldID, newID := assigneeID(before), assigneeID(after); oldID != newID {
		add(ChangeTypeAssignee, "assignee_id", oldID, newID)
	}

	oldDetails, newDetails := map[string]any{}, map[string]any{}
	if before.Summary != after.Summary {
		oldDetails["summary"], newDetails["summary"] = before.Summary, after.Summary
	}
	if before.Description != after.Description {
		oldDetails["description"], newDetails["description"] = before.Description, after.Description
	}
	if len(newDetails) > 0 {
		out = append(out, TicketHistory{
			TicketID:    after.ID,
			ChangedByID: changedByID,
			ChangeType:  ChangeTypeDetails,
			OldValue:    oldDetails,
			NewValue:    newDetails,
			CreatedAt:   after.UpdatedAt,
		})
	}
	return out
}

func assigneeID(t Ticket) string {
	if t.Assignee == nil {
		return ""
	}
	return t.Assignee.ID
}

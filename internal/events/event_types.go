package events

import (
	"time"

	"github.com/spec-kit/issue-board/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketUpdated      EventType = "ticket_updated"
	EventTicketCommentAdded EventType = "ticket_comment_added"
)

// Actor identifies the user behind an event.
type Actor struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
}

// Event represents a board change emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	TicketKey string      `json:"ticket_key"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Project    string                `json:"project"`
	IssueType  domain.IssueType      `json:"issue_type"`
	Priority   domain.TicketPriority `json:"priority"`
	Summary    string                `json:"summary"`
	AssigneeID *string               `json:"assignee_id,omitempty"`
}

// TicketUpdatedPayload lists the patched fields. Status and priority transitions are
// included only when the value actually changed.
type TicketUpdatedPayload struct {
	Fields      []string               `json:"fields"`
	OldStatus   *domain.TicketStatus   `json:"old_status,omitempty"`
	NewStatus   *domain.TicketStatus   `json:"new_status,omitempty"`
	OldPriority *domain.TicketPriority `json:"old_priority,omitempty"`
	NewPriority *domain.TicketPriority `json:"new_priority,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	AuthorID    string `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}

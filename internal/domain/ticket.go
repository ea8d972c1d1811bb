package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownStatus    = errors.New("unknown ticket status")
	ErrUnknownPriority  = errors.New("unknown ticket priority")
	ErrUnknownIssueType = errors.New("unknown issue type")
)

// TicketStatus enumerates board columns for tickets.
type TicketStatus string

const (
	TicketStatusTodo       TicketStatus = "todo"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusInReview   TicketStatus = "in-review"
	TicketStatusDone       TicketStatus = "done"
)

// TicketStatuses lists statuses in board order.
var TicketStatuses = []TicketStatus{
	TicketStatusTodo,
	TicketStatusInProgress,
	TicketStatusInReview,
	TicketStatusDone,
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketPriorities lists priorities from least to most urgent.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// IssueType classifies the kind of work a ticket tracks.
type IssueType string

const (
	IssueTypeStory IssueType = "story"
	IssueTypeTask  IssueType = "task"
	IssueTypeBug   IssueType = "bug"
	IssueTypeEpic  IssueType = "epic"
)

// IssueTypes lists the supported issue types.
var IssueTypes = []IssueType{
	IssueTypeStory,
	IssueTypeTask,
	IssueTypeBug,
	IssueTypeEpic,
}

// Ticket is the aggregate shown on the board.
type Ticket struct {
	ID          string
	Key         string
	Summary     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Assignee    *User
	Reporter    User
	Project     string
	IssueType   IssueType
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Comments    []Comment
}

// Clone returns a deep copy that shares no memory with t.
func (t Ticket) Clone() Ticket {
	out := t
	if t.Assignee != nil {
		assignee := *t.Assignee
		out.Assignee = &assignee
	}
	if t.Comments != nil {
		out.Comments = make([]Comment, len(t.Comments))
		copy(out.Comments, t.Comments)
	}
	return out
}

// Unassigned reports whether nobody owns the ticket.
func (t Ticket) Unassigned() bool {
	return t.Assignee == nil
}

// ParseTicketStatus normalizes s and maps it to a known status.
func ParseTicketStatus(s string) (TicketStatus, error) {
	candidate := TicketStatus(normalize(s))
	for _, status := range TicketStatuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// ParseTicketPriority normalizes s and maps it to a known priority.
func ParseTicketPriority(s string) (TicketPriority, error) {
	candidate := TicketPriority(normalize(s))
	for _, priority := range TicketPriorities {
		if priority == candidate {
			return priority, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPriority, s)
}

// ParseIssueType normalizes s and maps it to a known issue type.
func ParseIssueType(s string) (IssueType, error) {
	candidate := IssueType(normalize(s))
	for _, issueType := range IssueTypes {
		if issueType == candidate {
			return issueType, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIssueType, s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", "-")
}

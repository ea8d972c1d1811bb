package dto

import (
	"time"

	"github.com/spec-kit/issue-board/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Project     string `json:"project"`
	IssueType   string `json:"issue_type"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	AssigneeID  string `json:"assignee_id"`
}

// UpdateTicketRequest payload. Omitted fields are left as they are; an empty
// assignee_id unassigns the ticket.
type UpdateTicketRequest struct {
	Summary     *string `json:"summary"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	IssueType   *string `json:"issue_type"`
	AssigneeID  *string `json:"assignee_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// TicketSummary response used by the list view.
type TicketSummary struct {
	ID           string                `json:"id"`
	Key          string                `json:"key"`
	Summary      string                `json:"summary"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	IssueType    domain.IssueType      `json:"issue_type"`
	Project      string                `json:"project"`
	Assignee     *UserResponse         `json:"assignee"`
	CommentCount int                   `json:"comment_count"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID          string                `json:"id"`
	Key         string                `json:"key"`
	Summary     string                `json:"summary"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	IssueType   domain.IssueType      `json:"issue_type"`
	Project     string                `json:"project"`
	Assignee    *UserResponse         `json:"assignee"`
	Reporter    UserResponse          `json:"reporter"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Comments    []CommentResponse     `json:"comments"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID        string       `json:"id"`
	Author    UserResponse `json:"author"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
}

// HistoryEntryResponse is one audit trail row.
type HistoryEntryResponse struct {
	ID          string                  `json:"id"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	ChangedByID string                  `json:"changed_by_id"`
	OldValue    map[string]any          `json:"old_value"`
	NewValue    map[string]any          `json:"new_value"`
	CreatedAt   time.Time               `json:"created_at"`
}

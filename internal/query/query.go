// Package query derives display views from a snapshot of the ticket store.
// Every function here is pure: it never mutates its input and keeps store order.
package query

import (
	"strings"

	"github.com/spec-kit/issue-board/internal/domain"
)

// Unassigned is the assignee id that matches tickets without an owner.
const Unassigned = "unassigned"

// Criteria narrows a ticket list. Empty fields match everything.
type Criteria struct {
	Search      string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	AssigneeIDs []string
}

// IsZero reports whether the criteria match every ticket.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Search) == "" &&
		len(c.Statuses) == 0 && len(c.Priorities) == 0 && len(c.AssigneeIDs) == 0
}

// Filter keeps tickets whose key or summary contains q, ignoring case.
func Filter(tickets []domain.Ticket, q string) []domain.Ticket {
	return Apply(tickets, Criteria{Search: q})
}

// Apply keeps the tickets matching every criterion, in their original order.
func Apply(tickets []domain.Ticket, c Criteria) []domain.Ticket {
	needle := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if !matchesSearch(ticket, needle) {
			continue
		}
		if len(c.Statuses) > 0 && !containsValue(c.Statuses, ticket.Status) {
			continue
		}
		if len(c.Priorities) > 0 && !containsValue(c.Priorities, ticket.Priority) {
			continue
		}
		if len(c.AssigneeIDs) > 0 && !containsValue(c.AssigneeIDs, assigneeID(ticket)) {
			continue
		}
		out = append(out, ticket)
	}
	return out
}

func matchesSearch(ticket domain.Ticket, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(ticket.Key), needle) ||
		strings.Contains(strings.ToLower(ticket.Summary), needle)
}

func assigneeID(ticket domain.Ticket) string {
	if ticket.Assignee == nil {
		return Unassigned
	}
	return ticket.Assignee.ID
}

func containsValue[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

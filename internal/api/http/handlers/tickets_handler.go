package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-board/internal/api/dto"
	"github.com/spec-kit/issue-board/internal/domain"
	"github.com/spec-kit/issue-board/internal/query"
	"github.com/spec-kit/issue-board/internal/repository"
	"github.com/spec-kit/issue-board/internal/service"
	apperrors "github.com/spec-kit/issue-board/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	criteria, err := parseTicketCriteria(c)
	if err != nil {
		return err
	}
	tickets := h.service.ListTickets(c.UserContext(), criteria)
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items, "total": len(items)})
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), repository.CreateTicketForm{
		Project:     req.Project,
		IssueType:   req.IssueType,
		Summary:     req.Summary,
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// GetTicket GET /api/tickets/:id. The id may also be a ticket key.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// UpdateTicket PATCH /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	patch, err := ticketPatch(req)
	if err != nil {
		return err
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// AddComment POST /api/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.AddComment(c.UserContext(), c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// TicketHistory GET /api/tickets/:id/history.
func (h *TicketsHandler) TicketHistory(c *fiber.Ctx) error {
	entries, err := h.service.TicketHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryEntryResponse{
			ID:          entry.ID,
			ChangeType:  entry.ChangeType,
			ChangedByID: entry.ChangedByID,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func ticketPatch(req dto.UpdateTicketRequest) (repository.TicketPatch, error) {
	patch := repository.TicketPatch{
		Summary:     req.Summary,
		Description: req.Description,
	}
	if req.AssigneeID != nil {
		id := strings.TrimSpace(*req.AssigneeID)
		patch.AssigneeID = &id
	}
	fieldErrs := apperrors.FieldErrors{}
	if req.Status != nil {
		status, err := domain.ParseTicketStatus(*req.Status)
		if err != nil {
			fieldErrs.Add("status", err.Error())
		}
		patch.Status = &status
	}
	if req.Priority != nil {
		priority, err := domain.ParseTicketPriority(*req.Priority)
		if err != nil {
			fieldErrs.Add("priority", err.Error())
		}
		patch.Priority = &priority
	}
	if req.IssueType != nil {
		issueType, err := domain.ParseIssueType(*req.IssueType)
		if err != nil {
			fieldErrs.Add("issue_type", err.Error())
		}
		patch.IssueType = &issueType
	}
	return patch, fieldErrs.Err()
}

func parseTicketCriteria(c *fiber.Ctx) (query.Criteria, error) {
	criteria := query.Criteria{Search: c.Query("search")}
	fieldErrs := apperrors.FieldErrors{}
	for _, part := range splitList(c.Query("status")) {
		status, err := domain.ParseTicketStatus(part)
		if err != nil {
			fieldErrs.Add("status", err.Error())
			continue
		}
		criteria.Statuses = append(criteria.Statuses, status)
	}
	for _, part := range splitList(c.Query("priority")) {
		priority, err := domain.ParseTicketPriority(part)
		if err != nil {
			fieldErrs.Add("priority", err.Error())
			continue
		}
		criteria.Priorities = append(criteria.Priorities, priority)
	}
	criteria.AssigneeIDs = splitList(c.Query("assignee"))
	return criteria, fieldErrs.Err()
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func userResponse(user domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
	}
}

func assigneeResponse(user *domain.User) *dto.UserResponse {
	if user == nil {
		return nil
	}
	resp := userResponse(*user)
	return &resp
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		Key:          ticket.Key,
		Summary:      ticket.Summary,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		IssueType:    ticket.IssueType,
		Project:      ticket.Project,
		Assignee:     assigneeResponse(ticket.Assignee),
		CommentCount: len(ticket.Comments),
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	comments := make([]dto.CommentResponse, 0, len(ticket.Comments))
	for _, comment := range ticket.Comments {
		comments = append(comments, dto.CommentResponse{
			ID:        comment.ID,
			Author:    userResponse(comment.Author),
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		Key:         ticket.Key,
		Summary:     ticket.Summary,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		IssueType:   ticket.IssueType,
		Project:     ticket.Project,
		Assignee:    assigneeResponse(ticket.Assignee),
		Reporter:    userResponse(ticket.Reporter),
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		Comments:    comments,
	}
}

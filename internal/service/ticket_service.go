package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-board/internal/domain"
	"github.com/spec-kit/issue-board/internal/events"
	"github.com/spec-kit/issue-board/internal/query"
	"github.com/spec-kit/issue-board/internal/repository"
	apperrors "github.com/spec-kit/issue-board/pkg/util/errorutil"
)

// TicketService coordinates board workflows on top of the ticket store.
type TicketService struct {
	store      *repository.TicketStore
	users      repository.UserDirectory
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      *repository.TicketStore
	Users      repository.UserDirectory
	History    repository.TicketHistoryRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		store:      deps.Store,
		users:      deps.Users,
		history:    deps.History,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateTicket files a new ticket on behalf of the current user.
func (s *TicketService) CreateTicket(ctx context.Context, form repository.CreateTicketForm) (*domain.Ticket, error) {
	ticket, err := s.store.Create(form)
	if err != nil {
		s.logger.Debug("create ticket rejected", zap.Error(err))
		return nil, err
	}
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("key", ticket.Key),
		zap.String("project", ticket.Project))

	var assigneeID *string
	if ticket.Assignee != nil {
		id := ticket.Assignee.ID
		assigneeID = &id
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		TicketKey: ticket.Key,
		Timestamp: ticket.CreatedAt,
		Payload: events.TicketCreatedPayload{
			Project:    ticket.Project,
			IssueType:  ticket.IssueType,
			Priority:   ticket.Priority,
			Summary:    ticket.Summary,
			AssigneeID: assigneeID,
		},
	})
	return &ticket, nil
}

// ListTickets returns the tickets matching criteria in store order.
func (s *TicketService) ListTickets(_ context.Context, criteria query.Criteria) []domain.Ticket {
	tickets := s.store.List()
	if criteria.IsZero() {
		return tickets
	}
	return query.Apply(tickets, criteria)
}

// GetTicket resolves ref as a ticket id first and as a ticket key second.
func (s *TicketService) GetTicket(_ context.Context, ref string) (*domain.Ticket, error) {
	if ticket, ok := s.store.SelectByID(ref); ok {
		return &ticket, nil
	}
	if ticket, ok := s.store.GetByKey(ref); ok {
		return &ticket, nil
	}
	return nil, apperrors.WrapNotFound("ticket", map[string]any{"id": ref}, repository.ErrTicketNotFound)
}

// UpdateTicket applies patch to the ticket referenced by ref.
func (s *TicketService) UpdateTicket(ctx context.Context, ref string, patch repository.TicketPatch) (*domain.Ticket, error) {
	target, err := s.GetTicket(ctx, ref)
	if err != nil {
		return nil, err
	}
	before, ticket, err := s.store.UpdateByIDWithPrevious(target.ID, patch)
	if err != nil {
		return nil, err
	}
	fields := patch.Fields()
	s.logger.Info("ticket updated",
		zap.String("ticket_id", ticket.ID),
		zap.String("key", ticket.Key),
		zap.Strings("fields", fields))
	s.recordHistory(ctx, before, ticket)

	payload := events.TicketUpdatedPayload{Fields: fields}
	if before.Status != ticket.Status {
		oldStatus, newStatus := before.Status, ticket.Status
		payload.OldStatus, payload.NewStatus = &oldStatus, &newStatus
	}
	if before.Priority != ticket.Priority {
		oldPriority, newPriority := before.Priority, ticket.Priority
		payload.OldPriority, payload.NewPriority = &oldPriority, &newPriority
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketUpdated,
		TicketID:  ticket.ID,
		TicketKey: ticket.Key,
		Timestamp: ticket.UpdatedAt,
		Payload:   payload,
	})
	return &ticket, nil
}

// AddComment appends a comment by the current user and returns the updated ticket.
func (s *TicketService) AddComment(ctx context.Context, ref, content string) (*domain.Ticket, error) {
	target, err := s.GetTicket(ctx, ref)
	if err != nil {
		return nil, err
	}
	ticket, err := s.store.AppendComment(target.ID, content)
	if err != nil {
		return nil, err
	}
	comment := ticket.Comments[len(ticket.Comments)-1]
	s.logger.Info("comment added",
		zap.String("ticket_id", ticket.ID),
		zap.String("comment_id", comment.ID),
		zap.Int("comments", len(ticket.Comments)))

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCommentAdded,
		TicketID:  ticket.ID,
		TicketKey: ticket.Key,
		Timestamp: comment.CreatedAt,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.Author.ID,
			BodyPreview: stringPreview(comment.Content, 120),
		},
	})
	return &ticket, nil
}

// TicketHistory returns the change log of the ticket referenced by ref, oldest first.
func (s *TicketService) TicketHistory(ctx context.Context, ref string) ([]domain.TicketHistory, error) {
	ticket, err := s.GetTicket(ctx, ref)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	entries, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

// Users returns every registered user.
func (s *TicketService) Users() []domain.User {
	return s.users.List()
}

// Projects returns the project codes tickets can be filed under.
func (s *TicketService) Projects() []string {
	return s.store.Projects()
}

// DefaultProject returns the project preselected in the create form.
func (s *TicketService) DefaultProject() string {
	return s.store.DefaultProject()
}

// CurrentUser returns the user acting on the board.
func (s *TicketService) CurrentUser() domain.User {
	return s.store.CurrentUser()
}

func (s *TicketService) recordHistory(ctx context.Context, before, after domain.Ticket) {
	if s.history == nil {
		return
	}
	for _, entry := range domain.DiffTickets(before, after, s.store.CurrentUser().ID) {
		if err := s.history.Create(ctx, &entry); err != nil {
			s.logger.Warn("record ticket history failed",
				zap.String("ticket_id", after.ID),
				zap.String("change_type", string(entry.ChangeType)),
				zap.Error(err))
		}
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Actor.UserID == "" {
		current := s.store.CurrentUser()
		event.Actor = events.Actor{UserID: current.ID, Name: current.Name}
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}

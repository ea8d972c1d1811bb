package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-board/internal/domain"
	apperrors "github.com/spec-kit/issue-board/pkg/util/errorutil"
)

var (
	ErrTicketNotFound = errors.New("no such ticket id")
	ErrStoreClosed    = errors.New("ticket store closed")
)

// firstKeyNumber is the counter value before the first generated key, so keys start at 101.
const firstKeyNumber = 100

// CreateTicketForm is the raw input of the create form.
type CreateTicketForm struct {
	Project     string
	IssueType   string
	Summary     string
	Description string
	Priority    string
	AssigneeID  string
}

// TicketPatch carries the fields to merge onto an existing ticket. Nil fields are left
// untouched; an empty AssigneeID unassigns the ticket. The enum fields are re-validated
// by the store since any string converts to them.
type TicketPatch struct {
	Summary     *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	IssueType   *domain.IssueType
	AssigneeID  *string
}

// Fields returns the json names of the fields the patch sets.
func (p TicketPatch) Fields() []string {
	var fields []string
	if p.Summary != nil {
		fields = append(fields, "summary")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	if p.Priority != nil {
		fields = append(fields, "priority")
	}
	if p.IssueType != nil {
		fields = append(fields, "issue_type")
	}
	if p.AssigneeID != nil {
		fields = append(fields, "assignee_id")
	}
	return fields
}

// StoreConfig holds board level settings the store needs to build tickets.
type StoreConfig struct {
	Projects       []string
	DefaultProject string
	CurrentUserID  string
}

// StoreOption customizes a TicketStore.
type StoreOption func(*TicketStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *TicketStore) { s.now = now }
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(next func() string) StoreOption {
	return func(s *TicketStore) { s.newID = next }
}

// TicketStore owns the canonical, most-recent-first sequence of tickets. Every read
// returns clones; the only way to change a ticket is through the store's methods.
type TicketStore struct {
	mu       sync.RWMutex
	closed   bool
	tickets  []*domain.Ticket
	keys     map[string]string
	counters map[string]int

	users       UserDirectory
	currentUser domain.User
	projects    []string
	defaultProj string

	now   func() time.Time
	newID func() string
}

// NewTicketStore creates an empty store. The current user must exist in users.
func NewTicketStore(users UserDirectory, cfg StoreConfig, opts ...StoreOption) (*TicketStore, error) {
	current, ok := users.GetByID(cfg.CurrentUserID)
	if !ok {
		return nil, fmt.Errorf("current user %q not in directory", cfg.CurrentUserID)
	}
	if len(cfg.Projects) == 0 {
		return nil, errors.New("at least one project is required")
	}
	defaultProj := cfg.DefaultProject
	if defaultProj == "" {
		defaultProj = cfg.Projects[0]
	}
	s := &TicketStore{
		keys:        make(map[string]string),
		counters:    make(map[string]int),
		users:       users,
		currentUser: current,
		projects:    append([]string(nil), cfg.Projects...),
		defaultProj: defaultProj,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Seed loads pre-existing tickets in the given order, which must already be
// most-recent-first. Ticket ids must be unique.
func (s *TicketStore) Seed(tickets []domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	seen := make(map[string]struct{}, len(tickets))
	for _, ticket := range tickets {
		if ticket.ID == "" {
			return errors.New("seed ticket without id")
		}
		if _, dup := seen[ticket.ID]; dup || s.indexOf(ticket.ID) >= 0 {
			return fmt.Errorf("duplicate ticket id %q", ticket.ID)
		}
		seen[ticket.ID] = struct{}{}
	}
	for _, ticket := range tickets {
		clone := ticket.Clone()
		s.tickets = append(s.tickets, &clone)
		s.registerKey(clone.Key, clone.ID)
	}
	return nil
}

// Create validates form, builds a todo ticket and puts it at the head of the sequence.
// On validation failure the store is left unchanged.
func (s *TicketStore) Create(form CreateTicketForm) (domain.Ticket, error) {
	summary := strings.TrimSpace(form.Summary)
	description := strings.TrimSpace(form.Description)

	fieldErrs := apperrors.FieldErrors{}
	if summary == "" {
		fieldErrs.Add("summary", "Summary is required")
	}
	if description == "" {
		fieldErrs.Add("description", "Description is required")
	}
	project := strings.ToUpper(strings.TrimSpace(form.Project))
	if project == "" {
		project = s.defaultProj
	} else if !s.knownProject(project) {
		fieldErrs.Add("project", fmt.Sprintf("Unknown project %q", form.Project))
	}
	issueType := domain.IssueTypeStory
	if strings.TrimSpace(form.IssueType) != "" {
		parsed, err := domain.ParseIssueType(form.IssueType)
		if err != nil {
			fieldErrs.Add("issue_type", err.Error())
		}
		issueType = parsed
	}
	priority := domain.TicketPriorityMedium
	if strings.TrimSpace(form.Priority) != "" {
		parsed, err := domain.ParseTicketPriority(form.Priority)
		if err != nil {
			fieldErrs.Add("priority", err.Error())
		}
		priority = parsed
	}
	if err := fieldErrs.Err(); err != nil {
		return domain.Ticket{}, err
	}

	var assignee *domain.User
	if user, ok := s.users.GetByID(strings.TrimSpace(form.AssigneeID)); ok {
		assignee = &user
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.Ticket{}, ErrStoreClosed
	}

	now := s.now()
	ticket := &domain.Ticket{
		ID:          s.newID(),
		Key:         s.nextKey(project),
		Summary:     summary,
		Description: description,
		Status:      domain.TicketStatusTodo,
		Priority:    priority,
		Assignee:    assignee,
		Reporter:    s.currentUser,
		Project:     project,
		IssueType:   issueType,
		CreatedAt:   now,
		UpdatedAt:   now,
		Comments:    []domain.Comment{},
	}
	s.tickets = append([]*domain.Ticket{ticket}, s.tickets...)
	s.registerKey(ticket.Key, ticket.ID)
	return ticket.Clone(), nil
}

// UpdateByID merges patch onto the ticket and restamps UpdatedAt, even for an empty patch.
func (s *TicketStore) UpdateByID(id string, patch TicketPatch) (domain.Ticket, error) {
	_, after, err := s.UpdateByIDWithPrevious(id, patch)
	return after, err
}

// UpdateByIDWithPrevious is UpdateByID that also returns the ticket as it was right
// before the merge, read under the same lock.
func (s *TicketStore) UpdateByIDWithPrevious(id string, patch TicketPatch) (before, after domain.Ticket, err error) {
	fieldErrs := apperrors.FieldErrors{}
	var summary, description string
	if patch.Summary != nil {
		if summary = strings.TrimSpace(*patch.Summary); summary == "" {
			fieldErrs.Add("summary", "Summary is required")
		}
	}
	if patch.Description != nil {
		if description = strings.TrimSpace(*patch.Description); description == "" {
			fieldErrs.Add("description", "Description is required")
		}
	}
	var (
		status    domain.TicketStatus
		priority  domain.TicketPriority
		issueType domain.IssueType
	)
	if patch.Status != nil {
		if status, err = domain.ParseTicketStatus(string(*patch.Status)); err != nil {
			fieldErrs.Add("status", err.Error())
		}
	}
	if patch.Priority != nil {
		if priority, err = domain.ParseTicketPriority(string(*patch.Priority)); err != nil {
			fieldErrs.Add("priority", err.Error())
		}
	}
	if patch.IssueType != nil {
		if issueType, err = domain.ParseIssueType(string(*patch.IssueType)); err != nil {
			fieldErrs.Add("issue_type", err.Error())
		}
	}
	var assignee *domain.User
	if patch.AssigneeID != nil && *patch.AssigneeID != "" {
		user, ok := s.users.GetByID(*patch.AssigneeID)
		if !ok {
			fieldErrs.Add("assignee_id", fmt.Sprintf("Unknown user %q", *patch.AssigneeID))
		}
		assignee = &user
	}
	if err := fieldErrs.Err(); err != nil {
		return domain.Ticket{}, domain.Ticket{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, err := s.lookup(id)
	if err != nil {
		return domain.Ticket{}, domain.Ticket{}, err
	}
	before = ticket.Clone()

	if patch.Summary != nil {
		ticket.Summary = summary
	}
	if patch.Description != nil {
		ticket.Description = description
	}
	if patch.Status != nil {
		ticket.Status = status
	}
	if patch.Priority != nil {
		ticket.Priority = priority
	}
	if patch.IssueType != nil {
		ticket.IssueType = issueType
	}
	if patch.AssigneeID != nil {
		ticket.Assignee = assignee
	}
	s.touch(ticket, s.now())
	return before, ticket.Clone(), nil
}

// AppendComment adds a comment by the current user to the end of the ticket thread.
// Blank content is rejected without touching the ticket.
func (s *TicketStore) AppendComment(id, content string) (domain.Ticket, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Ticket{}, apperrors.NewValidationError("comment content required",
			map[string]any{"content": "Comment cannot be empty"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, err := s.lookup(id)
	if err != nil {
		return domain.Ticket{}, err
	}
	now := s.now()
	ticket.Comments = append(ticket.Comments, domain.Comment{
		ID:        s.newID(),
		Author:    s.currentUser,
		Content:   content,
		CreatedAt: now,
	})
	s.touch(ticket, now)
	return ticket.Clone(), nil
}

// SelectByID returns the ticket with the given id.
func (s *TicketStore) SelectByID(id string) (domain.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.Ticket{}, false
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.Ticket{}, false
	}
	return s.tickets[idx].Clone(), true
}

// GetByKey returns the ticket with the given human readable key, compared case-insensitively.
func (s *TicketStore) GetByKey(key string) (domain.Ticket, bool) {
	s.mu.RLock()
	id, ok := s.keys[strings.ToUpper(key)]
	s.mu.RUnlock()
	if !ok {
		return domain.Ticket{}, false
	}
	return s.SelectByID(id)
}

// List returns a snapshot of every ticket, most recently created first.
func (s *TicketStore) List() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		out = append(out, ticket.Clone())
	}
	return out
}

// Len returns the number of tickets.
func (s *TicketStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

// Projects returns the project codes tickets can be filed under.
func (s *TicketStore) Projects() []string {
	return append([]string(nil), s.projects...)
}

// DefaultProject returns the project used when the form leaves it empty.
func (s *TicketStore) DefaultProject() string {
	return s.defaultProj
}

// CurrentUser returns the user recorded as reporter and comment author.
func (s *TicketStore) CurrentUser() domain.User {
	return s.currentUser
}

// Close drops all tickets. Later mutations fail with ErrStoreClosed and reads come back empty.
func (s *TicketStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.tickets = nil
	s.keys = map[string]string{}
}

// Closed reports whether Close was called.
func (s *TicketStore) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *TicketStore) lookup(id string) (*domain.Ticket, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, apperrors.WrapNotFound("ticket", map[string]any{"id": id}, ErrTicketNotFound)
	}
	return s.tickets[idx], nil
}

func (s *TicketStore) indexOf(id string) int {
	for i, ticket := range s.tickets {
		if ticket.ID == id {
			return i
		}
	}
	return -1
}

// touch stamps UpdatedAt without ever moving it backwards.
func (s *TicketStore) touch(ticket *domain.Ticket, now time.Time) {
	if now.Before(ticket.UpdatedAt) {
		now = ticket.UpdatedAt
	}
	ticket.UpdatedAt = now
}

func (s *TicketStore) knownProject(project string) bool {
	for _, p := range s.projects {
		if p == project {
			return true
		}
	}
	return false
}

// nextKey returns PROJECT-N with N one past the highest number handed out or seeded for
// the project, skipping keys that are already taken.
func (s *TicketStore) nextKey(project string) string {
	n, ok := s.counters[project]
	if !ok {
		n = firstKeyNumber
	}
	for {
		n++
		key := project + "-" + strconv.Itoa(n)
		if _, taken := s.keys[key]; !taken {
			s.counters[project] = n
			return key
		}
	}
}

func (s *TicketStore) registerKey(key, id string) {
	if key == "" {
		return
	}
	key = strings.ToUpper(key)
	s.keys[key] = id
	dash := strings.LastIndex(key, "-")
	if dash <= 0 {
		return
	}
	n, err := strconv.Atoi(key[dash+1:])
	if err != nil {
		return
	}
	project := key[:dash]
	current, ok := s.counters[project]
	if !ok {
		current = firstKeyNumber
	}
	if n > current {
		s.counters[project] = n
	}
}

package service

import (
	"sync"

	"github.com/spec-kit/issue-board/internal/domain"
	"github.com/spec-kit/issue-board/internal/repository"
	apperrors "github.com/spec-kit/issue-board/pkg/util/errorutil"
)

type ticketReader interface {
	SelectByID(id string) (domain.Ticket, bool)
}

// Selection tracks which ticket the detail view shows. It keeps only the id and reads
// the ticket from the store on every call, so it can never drift from the store.
type Selection struct {
	mu    sync.RWMutex
	store ticketReader
	id    string
}

// NewSelection returns an empty selection over store.
func NewSelection(store ticketReader) *Selection {
	return &Selection{store: store}
}

// Select makes id the current ticket.
func (s *Selection) Select(id string) (domain.Ticket, error) {
	ticket, ok := s.store.SelectByID(id)
	if !ok {
		return domain.Ticket{}, apperrors.WrapNotFound("ticket", map[string]any{"id": id}, repository.ErrTicketNotFound)
	}
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
	return ticket, nil
}

// Current returns the selected ticket as the store has it now.
func (s *Selection) Current() (domain.Ticket, bool) {
	s.mu.RLock()
	id := s.id
	s.mu.RUnlock()
	if id == "" {
		return domain.Ticket{}, false
	}
	return s.store.SelectByID(id)
}

// Clear returns to the list view.
func (s *Selection) Clear() {
	s.mu.Lock()
	s.id = ""
	s.mu.Unlock()
}

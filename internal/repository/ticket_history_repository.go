package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-board/internal/domain"
)

// TicketHistoryRepository stores audit entries.
type TicketHistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]domain.TicketHistory
}

// NewTicketHistoryRepository builds an in-memory repository.
func NewTicketHistoryRepository() TicketHistoryRepository {
	return &ticketHistoryRepository{entries: make(map[string][]domain.TicketHistory)}
}

// Create assigns an id and timestamp when missing and appends the entry.
func (r *ticketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[history.TicketID] = append(r.entries[history.TicketID], history.Clone())
	return nil
}

// ListByTicket returns the entries for ticketID oldest first.
func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.entries[ticketID]
	result := make([]domain.TicketHistory, 0, len(stored))
	for _, history := range stored {
		result = append(result, history.Clone())
	}
	return result, nil
}

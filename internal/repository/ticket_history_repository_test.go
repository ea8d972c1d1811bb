package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-board/internal/domain"
	"github.com/spec-kit/issue-board/internal/repository"
)

func TestTicketHistoryRepository(t *testing.T) {
	t.Parallel()

	repo := repository.NewTicketHistoryRepository()
	ctx := context.Background()
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	first := domain.TicketHistory{
		TicketID:   "1",
		ChangeType: domain.ChangeTypeStatus,
		OldValue:   map[string]any{"status": "todo"},
		NewValue:   map[string]any{"status": "done"},
		CreatedAt:  at,
	}
	require.NoError(t, repo.Create(ctx, &first))
	assert.NotEmpty(t, first.ID)

	second := domain.TicketHistory{TicketID: "1", ChangeType: domain.ChangeTypePriority}
	require.NoError(t, repo.Create(ctx, &second))
	assert.False(t, second.CreatedAt.IsZero())
	require.NoError(t, repo.Create(ctx, &domain.TicketHistory{TicketID: "2", ChangeType: domain.ChangeTypeAssignee}))

	first.NewValue["status"] = "mutated"

	entries, err := repo.ListByTicket(ctx, "1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, "done", entries[0].NewValue["status"])
	assert.Equal(t, at, entries[0].CreatedAt)

	entries[0].OldValue["status"] = "mutated"
	again, err := repo.ListByTicket(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "todo", again[0].OldValue["status"])

	empty, err := repo.ListByTicket(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTicketHistoryRepositoryHonorsContext(t *testing.T) {
	t.Parallel()

	repo := repository.NewTicketHistoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, repo.Create(ctx, &domain.TicketHistory{TicketID: "1"}), context.Canceled)
	_, err := repo.ListByTicket(ctx, "1")
	require.ErrorIs(t, err, context.Canceled)
}

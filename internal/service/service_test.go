package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-board/internal/events"
	"github.com/spec-kit/issue-board/internal/repository"
	"github.com/spec-kit/issue-board/internal/seed"
	"github.com/spec-kit/issue-board/internal/service"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

type fixture struct {
	svc    *service.TicketService
	store  *repository.TicketStore
	events *recorder
}

func newFixture(t *testing.T, logger *zap.Logger) fixture {
	t.Helper()

	data, err := seed.Load("")
	require.NoError(t, err)
	users := repository.NewUserDirectory(data.Users)
	store, err := repository.NewTicketStore(users, repository.StoreConfig{
		Projects:       []string{"PROJECT", "DEMO", "TEST"},
		DefaultProject: "PROJECT",
		CurrentUserID:  "1",
	})
	require.NoError(t, err)
	require.NoError(t, store.Seed(data.Tickets))

	rec := &recorder{}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{events.EventTicketCreated, events.EventTicketUpdated, events.EventTicketCommentAdded} {
		dispatcher.Subscribe(eventType, rec.handle)
	}

	svc := service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Users:      users,
		History:    repository.NewTicketHistoryRepository(),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	return fixture{svc: svc, store: store, events: rec}
}

package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-board/internal/events"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewInMemoryDispatcher()
	var got []string
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		got = append(got, "first:"+e.TicketID)
		return nil
	})
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		got = append(got, "second:"+e.TicketID)
		return nil
	})
	dispatcher.Subscribe(events.EventTicketUpdated, func(_ context.Context, e events.Event) error {
		got = append(got, "updated:"+e.TicketID)
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated, TicketID: "1"}))
	assert.Equal(t, []string{"first:1", "second:1"}, got)
}

func TestDispatcherRunsAllHandlersOnError(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0
	dispatcher.Subscribe(events.EventTicketCommentAdded, func(context.Context, events.Event) error {
		calls++
		return boom
	})
	dispatcher.Subscribe(events.EventTicketCommentAdded, func(context.Context, events.Event) error {
		calls++
		return nil
	})

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCommentAdded})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestDispatcherWithoutSubscribers(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketUpdated}))
}

func TestDispatcherSkipsHandlersAfterCancel(t *testing.T) {
	t.Parallel()

	dispatcher := events.NewInMemoryDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	dispatcher.Subscribe(events.EventTicketUpdated, func(context.Context, events.Event) error {
		calls++
		cancel()
		return nil
	})
	dispatcher.Subscribe(events.EventTicketUpdated, func(context.Context, events.Event) error {
		calls++
		return nil
	})

	err := dispatcher.Publish(ctx, events.Event{Type: events.EventTicketUpdated})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher_Publish(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	var calls []string
	d.Subscribe(EventTicketStatusChanged, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("smtp down")
	})
	d.Subscribe(EventTicketStatusChanged, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "created")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketStatusChanged, TicketID: 1})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestInMemoryDispatcher_NoListeners(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketUserChanged}))
}

func TestInMemoryDispatcher_HandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher(nil)

	reached := false
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		panic("nil notifier")
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		reached = true
		return nil
	})

	assert.NotPanics(t, func() {
		require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 3}))
	})
	assert.True(t, reached)
}

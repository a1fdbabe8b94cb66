package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/sms-scheduler/internal/domain"
)

func TestBus_EmitCallsListenersInRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Register(domain.EventMessageSent, func(ctx context.Context, e domain.Event) error {
		order = append(order, "first")
		return nil
	})
	bus.Register(domain.EventMessageSent, func(ctx context.Context, e domain.Event) error {
		order = append(order, "second")
		return nil
	})

	bus.Emit(context.Background(), domain.Event{Type: domain.EventMessageSent, ID: 1})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestBus_FailingListenerDoesNotBlockLaterListeners(t *testing.T) {
	tests := []struct {
		name  string
		first Listener
	}{
		{
			name: "returns error",
			first: func(ctx context.Context, e domain.Event) error {
				return errors.New("boom")
			},
		},
		{
			name: "panics",
			first: func(ctx context.Context, e domain.Event) error {
				panic("listener exploded")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewBus()

			var received []domain.Event
			bus.Register(domain.EventMessageFailed, tt.first)
			bus.Register(domain.EventMessageFailed, func(ctx context.Context, e domain.Event) error {
				received = append(received, e)
				return nil
			})

			require.NotPanics(t, func() {
				bus.Emit(context.Background(), domain.Event{Type: domain.EventMessageFailed, ID: 9, Error: "provider down"})
			})

			require.Len(t, received, 1)
			assert.Equal(t, int64(9), received[0].ID)
			assert.Equal(t, "provider down", received[0].Error)
		})
	}
}

func TestBus_EmitWithoutListenersIsNoop(t *testing.T) {
	bus := NewBus()

	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), domain.Event{Type: "unknown_event"})
	})
	assert.Equal(t, 0, bus.ListenerCount("unknown_event"))
}

func TestBus_ListenersOnlyReceiveTheirEventType(t *testing.T) {
	bus := NewBus()

	var sent, cancelled int
	bus.Register(domain.EventMessageSent, func(ctx context.Context, e domain.Event) error {
		sent++
		return nil
	})
	bus.Register(domain.EventMessageCancelled, func(ctx context.Context, e domain.Event) error {
		cancelled++
		return nil
	})
	bus.Register(domain.EventMessageCancelled, nil)

	bus.Emit(context.Background(), domain.Event{Type: domain.EventMessageCancelled, ID: 3})

	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, 1, bus.ListenerCount(domain.EventMessageCancelled))
}

func TestBus_ListenerMayRegisterDuringEmit(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Register(domain.EventMessageUpdated, func(ctx context.Context, e domain.Event) error {
		calls++
		bus.Register(domain.EventMessageUpdated, func(ctx context.Context, e domain.Event) error {
			calls++
			return nil
		})
		return nil
	})

	bus.Emit(context.Background(), domain.Event{Type: domain.EventMessageUpdated, ID: 1})
	assert.Equal(t, 1, calls)

	bus.Emit(context.Background(), domain.Event{Type: domain.EventMessageUpdated, ID: 1})
	assert.Equal(t, 3, calls)
}

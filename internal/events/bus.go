// Package events dispatches scheduler events to in-process listeners.
package events

import (
	"context"
	"sync"

	"github.com/onurcolak/sms-scheduler/internal/domain"
	"github.com/onurcolak/sms-scheduler/pkg/logger"
)

// Listener receives a scheduler event. A returned error or a panic is logged
// and does not stop delivery to the remaining listeners.
type Listener func(ctx context.Context, e domain.Event) error

// Bus maps event types to their listeners, kept in registration order.
type Bus struct {
	mu        sync.RWMutex
	listeners map[domain.EventType][]Listener
}

func NewBus() *Bus {
	return &Bus{
		listeners: make(map[domain.EventType][]Listener),
	}
}

// Register appends fn to the listeners of eventType.
func (b *Bus) Register(eventType domain.EventType, fn Listener) {
	if fn == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventType] = append(b.listeners[eventType], fn)
}

// Emit calls every listener registered for e.Type synchronously on the
// caller's goroutine. Events without listeners are dropped.
func (b *Bus) Emit(ctx context.Context, e domain.Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners[e.Type]))
	copy(listeners, b.listeners[e.Type])
	b.mu.RUnlock()

	for i, fn := range listeners {
		if err := invoke(ctx, fn, e); err != nil {
			logger.Errorf("Error in %s listener #%d (message %d): %v", e.Type, i, e.ID, err)
		}
	}
}

// ListenerCount returns the number of listeners registered for eventType.
func (b *Bus) ListenerCount(eventType domain.EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[eventType])
}

func invoke(ctx context.Context, fn Listener, e domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn(ctx, e)
}

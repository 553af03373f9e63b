package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/marketpay/stripe-mirakl-connector/pkg/domain/events"
)

// SimpleEventBus is a synchronous in-process Bus. Handlers run in
// subscription order on the publisher's goroutine; the first handler error
// stops delivery and is returned to the publisher.
type SimpleEventBus struct {
	handlers map[string][]HandlerFunc
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewSimpleEventBus creates an empty bus.
func NewSimpleEventBus(logger *slog.Logger) *SimpleEventBus {
	return &SimpleEventBus{
		handlers: make(map[string][]HandlerFunc),
		logger:   logger,
	}
}

// Publish implements Bus.
func (b *SimpleEventBus) Publish(ctx context.Context, e events.Event) error {
	b.mu.RLock()
	handlers := b.handlers[e.Type()]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			b.logger.Error("event handler failed",
				"event_type", e.Type(),
				"error", err,
			)
			return err
		}
	}
	return nil
}

// Subscribe implements Bus.
func (b *SimpleEventBus) Subscribe(eventType string, h HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

package eventbus

import (
	"context"

	"github.com/marketpay/stripe-mirakl-connector/pkg/domain/events"
)

// HandlerFunc consumes one event. A non-nil error tells the dispatcher the
// message was not handled and may be redelivered.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus defines the contract for publishing and subscribing to domain events.
// The in-process implementation stands in for the external message transport;
// redelivery and backoff live with whatever drives Publish.
type Bus interface {
	Publish(ctx context.Context, e events.Event) error
	Subscribe(eventType string, h HandlerFunc)
}

package events

import "github.com/google/uuid"

// Event is the marker contract for messages carried by the bus.
type Event interface {
	Type() string
}

// EventTypeProcessTransfer identifies ProcessTransferRequested on the bus.
const EventTypeProcessTransfer = "transfer.process.requested"

// ProcessTransferRequested instructs the processor to settle one transfer.
type ProcessTransferRequested struct {
	TransferID uuid.UUID
}

// Type implements Event.
func (ProcessTransferRequested) Type() string { return EventTypeProcessTransfer }

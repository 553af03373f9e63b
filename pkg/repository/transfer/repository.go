package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketpay/stripe-mirakl-connector/pkg/dto"
)

// Repository defines transfer record data access with CQRS-style DTOs.
type Repository interface {
	// Create inserts a new transfer record from a DTO.
	Create(ctx context.Context, create dto.TransferCreate) error

	// Get retrieves a transfer with its account mapping preloaded.
	// Returns domain.ErrNotFound when no record exists.
	Get(ctx context.Context, id uuid.UUID) (*dto.TransferRead, error)

	// Update writes the processing outcome for a transfer by its ID.
	Update(ctx context.Context, id uuid.UUID, update dto.TransferUpdate) error
}

package accountmapping

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketpay/stripe-mirakl-connector/pkg/dto"
)

// Repository defines account mapping data access.
//
// MiraklShopID carries a unique constraint: Create surfaces
// domain.ErrAlreadyExists when another caller won the race for the same
// shop, so resolvers can re-read the winner's row.
type Repository interface {
	// Create inserts a new mapping.
	Create(ctx context.Context, create dto.AccountMappingCreate) error

	// Update applies a partial update to a mapping by its ID.
	Update(ctx context.Context, id uuid.UUID, update dto.AccountMappingUpdate) error

	// FindByShopID retrieves the mapping for one Mirakl shop.
	// Returns domain.ErrNotFound when the shop has no mapping yet.
	FindByShopID(ctx context.Context, miraklShopID int64) (*dto.AccountMappingRead, error)

	// ListByShopIDs retrieves mappings for a set of Mirakl shops.
	ListByShopIDs(ctx context.Context, miraklShopIDs []int64) ([]*dto.AccountMappingRead, error)

	// FindByOnboardingToken retrieves the mapping holding the given token.
	// Returns domain.ErrNotFound for unknown tokens.
	FindByOnboardingToken(ctx context.Context, token string) (*dto.AccountMappingRead, error)
}

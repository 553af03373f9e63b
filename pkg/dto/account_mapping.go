package dto

import (
	"time"

	"github.com/google/uuid"
)

// AccountMappingRead is a read-optimized DTO for shop to account mappings.
type AccountMappingRead struct {
	ID              uuid.UUID
	MiraklShopID    int64
	StripeAccountID string
	PayoutEnabled   bool
	PayinEnabled    bool
	DisabledReason  *string
	Ignored         bool
	OnboardingToken *string
	CreatedAt       time.Time
}

// AccountMappingCreate is a DTO for first-time mapping creation.
type AccountMappingCreate struct {
	ID              uuid.UUID
	MiraklShopID    int64
	StripeAccountID string
	PayoutEnabled   bool
	PayinEnabled    bool
	DisabledReason  *string
}

// AccountMappingUpdate is a DTO for partial mapping updates.
type AccountMappingUpdate struct {
	PayoutEnabled   *bool
	PayinEnabled    *bool
	DisabledReason  *string
	Ignored         *bool
	OnboardingToken *string
}

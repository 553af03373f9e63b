package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketpay/stripe-mirakl-connector/pkg/domain"
)

// TransferRead is a read-optimized DTO for transfer records. The linked
// account mapping, when any, comes preloaded so the processor never issues
// a second lookup.
type TransferRead struct {
	ID             uuid.UUID
	Type           domain.TransferType
	MiraklID       int64
	TransactionID  *string
	TransferID     *string
	Amount         *int64
	Currency       *string
	Status         domain.TransferStatus
	StatusReason   *string
	AccountMapping *AccountMappingRead
	CreatedAt      time.Time
}

// TransferCreate is a DTO for creating a new transfer record. Records enter
// PENDING; the upstream producer owns creation.
type TransferCreate struct {
	ID               uuid.UUID
	Type             domain.TransferType
	MiraklID         int64
	TransactionID    *string
	Amount           *int64
	Currency         *string
	AccountMappingID *uuid.UUID
}

// TransferUpdate is a DTO for the single status write the processor performs.
type TransferUpdate struct {
	Status       *domain.TransferStatus
	TransferID   *string
	StatusReason *string
	// ClearStatusReason nulls the reason column; a nil StatusReason alone
	// leaves it untouched.
	ClearStatusReason bool
}

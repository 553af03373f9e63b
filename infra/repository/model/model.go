package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountMapping links a Mirakl shop to its Stripe connected account.
type AccountMapping struct {
	gorm.Model
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	MiraklShopID    int64     `gorm:"column:mirakl_shop_id;uniqueIndex;not null"`
	StripeAccountID string    `gorm:"type:varchar(64);column:stripe_account_id;not null"`
	PayoutEnabled   bool      `gorm:"not null;default:false"`
	PayinEnabled    bool      `gorm:"not null;default:false"`
	DisabledReason  *string   `gorm:"type:varchar(255)"`
	Ignored         bool      `gorm:"not null;default:false"`
	OnboardingToken *string   `gorm:"type:varchar(32);uniqueIndex"`
}

// TableName specifies the table name for the AccountMapping model.
func (AccountMapping) TableName() string {
	return "account_mappings"
}

// StripeTransfer is one settlement instruction for a marketplace event.
type StripeTransfer struct {
	gorm.Model
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	Type          string    `gorm:"type:varchar(32);not null"`
	MiraklID      int64     `gorm:"column:mirakl_id;index;not null"`
	TransactionID *string   `gorm:"type:varchar(64);column:transaction_id;index"`
	TransferID    *string   `gorm:"type:varchar(64);column:transfer_id"`
	Amount        *int64
	Currency      *string `gorm:"type:varchar(3)"`
	Status        string  `gorm:"type:varchar(32);not null;default:'PENDING'"`
	StatusReason  *string `gorm:"type:varchar(1024)"`

	AccountMappingID *uuid.UUID `gorm:"type:uuid;index"`
	AccountMapping   *AccountMapping
}

// TableName specifies the table name for the StripeTransfer model.
func (StripeTransfer) TableName() string {
	return "stripe_transfers"
}

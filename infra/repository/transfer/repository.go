package infrarepo // import alias for infra/repository/transfer

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	infrarepository "github.com/marketpay/stripe-mirakl-connector/infra/repository"
	"github.com/marketpay/stripe-mirakl-connector/infra/repository/model"
	"github.com/marketpay/stripe-mirakl-connector/pkg/domain"
	"github.com/marketpay/stripe-mirakl-connector/pkg/dto"
	repo "github.com/marketpay/stripe-mirakl-connector/pkg/repository/transfer"
)

type repository struct {
	db *gorm.DB
}

// New creates a transfer repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements transfer.Repository.
func (r *repository) Create(
	ctx context.Context,
	create dto.TransferCreate,
) error {
	t := mapCreateDTOToModel(create)
	return infrarepository.MapGormErrorToDomain(
		r.db.WithContext(ctx).Create(&t).Error,
	)
}

// Get implements transfer.Repository.
func (r *repository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*dto.TransferRead, error) {
	var t model.StripeTransfer
	if err := r.db.WithContext(
		ctx,
	).Preload(
		"AccountMapping",
	).First(
		&t,
		"id = ?",
		id,
	).Error; err != nil {
		return nil, infrarepository.MapGormErrorToDomain(err)
	}
	return mapModelToReadDTO(&t), nil
}

// Update implements transfer.Repository.
func (r *repository) Update(
	ctx context.Context,
	id uuid.UUID,
	update dto.TransferUpdate,
) error {
	updates := mapUpdateDTOToModel(update)
	return infrarepository.MapGormErrorToDomain(
		r.db.WithContext(
			ctx,
		).Model(
			&model.StripeTransfer{},
		).Where(
			"id = ?",
			id,
		).Updates(
			updates,
		).Error,
	)
}

func mapCreateDTOToModel(create dto.TransferCreate) model.StripeTransfer {
	return model.StripeTransfer{
		ID:               create.ID,
		Type:             string(create.Type),
		MiraklID:         create.MiraklID,
		TransactionID:    create.TransactionID,
		Amount:           create.Amount,
		Currency:         create.Currency,
		Status:           string(domain.TransferPending),
		AccountMappingID: create.AccountMappingID,
	}
}

func mapUpdateDTOToModel(update dto.TransferUpdate) map[string]any {
	updates := map[string]any{}
	if update.Status != nil {
		updates["status"] = string(*update.Status)
	}
	if update.TransferID != nil {
		updates["transfer_id"] = *update.TransferID
	}
	if update.StatusReason != nil {
		updates["status_reason"] = *update.StatusReason
	} else if update.ClearStatusReason {
		updates["status_reason"] = nil
	}
	return updates
}

func mapModelToReadDTO(t *model.StripeTransfer) *dto.TransferRead {
	read := &dto.TransferRead{
		ID:            t.ID,
		Type:          domain.TransferType(t.Type),
		MiraklID:      t.MiraklID,
		TransactionID: t.TransactionID,
		TransferID:    t.TransferID,
		Amount:        t.Amount,
		Currency:      t.Currency,
		Status:        domain.TransferStatus(t.Status),
		StatusReason:  t.StatusReason,
		CreatedAt:     t.CreatedAt,
	}
	if t.AccountMapping != nil {
		read.AccountMapping = mapMappingModelToReadDTO(t.AccountMapping)
	}
	return read
}

func mapMappingModelToReadDTO(m *model.AccountMapping) *dto.AccountMappingRead {
	return &dto.AccountMappingRead{
		ID:              m.ID,
		MiraklShopID:    m.MiraklShopID,
		StripeAccountID: m.StripeAccountID,
		PayoutEnabled:   m.PayoutEnabled,
		PayinEnabled:    m.PayinEnabled,
		DisabledReason:  m.DisabledReason,
		Ignored:         m.Ignored,
		OnboardingToken: m.OnboardingToken,
		CreatedAt:       m.CreatedAt,
	}
}

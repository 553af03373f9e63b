package infrarepo // import alias for infra/repository/accountmapping

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	infrarepository "github.com/marketpay/stripe-mirakl-connector/infra/repository"
	"github.com/marketpay/stripe-mirakl-connector/infra/repository/model"
	"github.com/marketpay/stripe-mirakl-connector/pkg/dto"
	repo "github.com/marketpay/stripe-mirakl-connector/pkg/repository/accountmapping"
)

type repository struct {
	db *gorm.DB
}

// New creates an account mapping repository using the provided *gorm.DB.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements accountmapping.Repository. The unique index on
// mirakl_shop_id surfaces as domain.ErrAlreadyExists when racing creations
// collide.
func (r *repository) Create(
	ctx context.Context,
	create dto.AccountMappingCreate,
) error {
	m := model.AccountMapping{
		ID:              create.ID,
		MiraklShopID:    create.MiraklShopID,
		StripeAccountID: create.StripeAccountID,
		PayoutEnabled:   create.PayoutEnabled,
		PayinEnabled:    create.PayinEnabled,
		DisabledReason:  create.DisabledReason,
	}
	return infrarepository.MapGormErrorToDomain(
		r.db.WithContext(ctx).Create(&m).Error,
	)
}

// Update implements accountmapping.Repository.
func (r *repository) Update(
	ctx context.Context,
	id uuid.UUID,
	update dto.AccountMappingUpdate,
) error {
	updates := map[string]any{}
	if update.PayoutEnabled != nil {
		updates["payout_enabled"] = *update.PayoutEnabled
	}
	if update.PayinEnabled != nil {
		updates["payin_enabled"] = *update.PayinEnabled
	}
	if update.DisabledReason != nil {
		updates["disabled_reason"] = *update.DisabledReason
	}
	if update.Ignored != nil {
		updates["ignored"] = *update.Ignored
	}
	if update.OnboardingToken != nil {
		updates["onboarding_token"] = *update.OnboardingToken
	}
	return infrarepository.MapGormErrorToDomain(
		r.db.WithContext(
			ctx,
		).Model(
			&model.AccountMapping{},
		).Where(
			"id = ?",
			id,
		).Updates(
			updates,
		).Error,
	)
}

// FindByShopID implements accountmapping.Repository.
func (r *repository) FindByShopID(
	ctx context.Context,
	miraklShopID int64,
) (*dto.AccountMappingRead, error) {
	var m model.AccountMapping
	if err := r.db.WithContext(
		ctx,
	).Where(
		"mirakl_shop_id = ?",
		miraklShopID,
	).First(
		&m,
	).Error; err != nil {
		return nil, infrarepository.MapGormErrorToDomain(err)
	}
	return mapModelToReadDTO(&m), nil
}

// ListByShopIDs implements accountmapping.Repository.
func (r *repository) ListByShopIDs(
	ctx context.Context,
	miraklShopIDs []int64,
) ([]*dto.AccountMappingRead, error) {
	var ms []model.AccountMapping
	if err := r.db.WithContext(
		ctx,
	).Where(
		"mirakl_shop_id IN ?",
		miraklShopIDs,
	).Find(
		&ms,
	).Error; err != nil {
		return nil, infrarepository.MapGormErrorToDomain(err)
	}
	reads := make([]*dto.AccountMappingRead, 0, len(ms))
	for i := range ms {
		reads = append(reads, mapModelToReadDTO(&ms[i]))
	}
	return reads, nil
}

// FindByOnboardingToken implements accountmapping.Repository.
func (r *repository) FindByOnboardingToken(
	ctx context.Context,
	token string,
) (*dto.AccountMappingRead, error) {
	var m model.AccountMapping
	if err := r.db.WithContext(
		ctx,
	).Where(
		"onboarding_token = ?",
		token,
	).First(
		&m,
	).Error; err != nil {
		return nil, infrarepository.MapGormErrorToDomain(err)
	}
	return mapModelToReadDTO(&m), nil
}

func mapModelToReadDTO(m *model.AccountMapping) *dto.AccountMappingRead {
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

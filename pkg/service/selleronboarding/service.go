package selleronboarding

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/marketpay/stripe-mirakl-connector/pkg/config"
	"github.com/marketpay/stripe-mirakl-connector/pkg/domain"
	"github.com/marketpay/stripe-mirakl-connector/pkg/dto"
	"github.com/marketpay/stripe-mirakl-connector/pkg/provider/marketplace"
	"github.com/marketpay/stripe-mirakl-connector/pkg/provider/payment"
	mappingrepo "github.com/marketpay/stripe-mirakl-connector/pkg/repository/accountmapping"
)

const metaMiraklShopID = "miraklShopId"

// ignoredShopFieldValue is the exact custom field value excluding a shop.
const ignoredShopFieldValue = "true"

// Service owns the account-mapping lifecycle: resolve-or-create a Stripe
// Express account per Mirakl shop, keep its metadata in sync, and issue
// onboarding and login links back to the shop.
//
// Unlike the transfer processor, every Stripe or Mirakl failure here
// propagates to the synchronous caller.
type Service struct {
	mappings  mappingrepo.Repository
	mirakl    marketplace.Provider
	stripe    payment.Provider
	stripeCfg *config.Stripe
	miraklCfg *config.Mirakl
	logger    *slog.Logger

	// accountMetadata maps Mirakl shop attribute keys to Stripe account
	// metadata keys, parsed once from config.
	accountMetadata map[string]string

	// shopLocks serializes first-time mapping creation per shop id so that
	// concurrent resolutions cannot provision two Stripe accounts.
	shopLocks sync.Map
}

// New builds the onboarding service. The configured account metadata
// mapping must be empty or valid JSON.
func New(
	mappings mappingrepo.Repository,
	mirakl marketplace.Provider,
	stripe payment.Provider,
	stripeCfg *config.Stripe,
	miraklCfg *config.Mirakl,
	logger *slog.Logger,
) (*Service, error) {
	accountMetadata := map[string]string{}
	if stripeCfg.AccountMetadata != "" {
		if err := json.Unmarshal([]byte(stripeCfg.AccountMetadata), &accountMetadata); err != nil {
			return nil, fmt.Errorf("invalid account metadata mapping: %w", err)
		}
	}
	return &Service{
		mappings:        mappings,
		mirakl:          mirakl,
		stripe:          stripe,
		stripeCfg:       stripeCfg,
		miraklCfg:       miraklCfg,
		logger:          logger,
		accountMetadata: accountMetadata,
	}, nil
}

// GetAccountMappingFromShop resolves the mapping for shop, creating the
// Stripe account and the mapping on first resolution. On later resolutions
// it re-fetches the account and pushes a metadata-only sync; local
// payout/payin flags are left to the account.updated webhook flow.
func (s *Service) GetAccountMappingFromShop(ctx context.Context, shop *domain.Shop) (*dto.AccountMappingRead, error) {
	unlock := s.lockShop(shop.ID)
	defer unlock()

	mapping, err := s.mappings.FindByShopID(ctx, shop.ID)
	if err == nil {
		account, retrieveErr := s.stripe.RetrieveAccount(ctx, mapping.StripeAccountID)
		if retrieveErr != nil {
			return nil, fmt.Errorf("failed to retrieve Stripe account: %w", retrieveErr)
		}
		if account != nil && account.ID != "" {
			if updateErr := s.stripe.UpdateAccountMetadata(ctx, account.ID, s.metadataFields(shop)); updateErr != nil {
				return nil, fmt.Errorf("failed to sync Stripe account metadata: %w", updateErr)
			}
		}
		return mapping, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account mapping: %w", err)
	}

	account, err := s.createStripeAccountFromShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	create := dto.AccountMappingCreate{
		ID:              uuid.New(),
		MiraklShopID:    shop.ID,
		StripeAccountID: account.ID,
		PayoutEnabled:   account.PayoutsEnabled,
		PayinEnabled:    account.ChargesEnabled,
	}
	if account.DisabledReason != "" {
		reason := account.DisabledReason
		create.DisabledReason = &reason
	}
	if err = s.mappings.Create(ctx, create); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost a cross-process race; the unique index kept a single
			// mapping, return the winner's row.
			return s.mappings.FindByShopID(ctx, shop.ID)
		}
		return nil, fmt.Errorf("failed to persist account mapping: %w", err)
	}

	s.logger.Info("created Stripe account for shop",
		"miraklShopId", shop.ID,
		"stripeAccountId", account.ID,
	)
	return &dto.AccountMappingRead{
		ID:              create.ID,
		MiraklShopID:    create.MiraklShopID,
		StripeAccountID: create.StripeAccountID,
		PayoutEnabled:   create.PayoutEnabled,
		PayinEnabled:    create.PayinEnabled,
		DisabledReason:  create.DisabledReason,
	}, nil
}

// UpdateIgnored flips the seller's exclusion flag. Downstream transfer
// creation skips ignored shops.
func (s *Service) UpdateIgnored(ctx context.Context, mapping *dto.AccountMappingRead, ignored bool) error {
	if err := s.mappings.Update(ctx, mapping.ID, dto.AccountMappingUpdate{Ignored: &ignored}); err != nil {
		return fmt.Errorf("failed to update ignored flag: %w", err)
	}
	mapping.Ignored = ignored
	return nil
}

// UpdateIgnoredByShopID resolves the shop's existing mapping and flips its
// exclusion flag. Shops without a mapping surface domain.ErrNotFound.
func (s *Service) UpdateIgnoredByShopID(ctx context.Context, shopID int64, ignored bool) (*dto.AccountMappingRead, error) {
	mapping, err := s.mappings.FindByShopID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account mapping: %w", err)
	}
	if err = s.UpdateIgnored(ctx, mapping, ignored); err != nil {
		return nil, err
	}
	return mapping, nil
}

// IsShopIgnored reports whether the shop carries the explicit ignore signal.
func (s *Service) IsShopIgnored(shop *domain.Shop) bool {
	value, ok := shop.CustomFieldValue(s.miraklCfg.IgnoredShopFieldCode)
	return ok && value == ignoredShopFieldValue
}

// CustomFieldValue reads the shop custom field holding the generated link.
func (s *Service) CustomFieldValue(shop *domain.Shop) (string, bool) {
	return shop.CustomFieldValue(s.miraklCfg.CustomFieldCode)
}

// AddLoginLinkToShop mints a fresh Express dashboard login link and writes
// it into the shop's custom field. Nothing is persisted; every call yields
// a new link.
func (s *Service) AddLoginLinkToShop(ctx context.Context, shopID int64, mapping *dto.AccountMappingRead) (string, error) {
	link, err := s.stripe.CreateLoginLink(ctx, mapping.StripeAccountID)
	if err != nil {
		return "", fmt.Errorf("failed to create login link: %w", err)
	}
	if err = s.mirakl.UpdateShopCustomField(ctx, shopID, s.miraklCfg.CustomFieldCode, link.URL); err != nil {
		return "", fmt.Errorf("failed to write login link to shop: %w", err)
	}
	return link.URL, nil
}

// AddOnboardingLinkToShop mints an onboarding link for the mapping and
// writes it into the shop's custom field. The refresh URL embedded in the
// link carries the mapping's onboarding token; the token is generated on
// the first call and reused ever after.
func (s *Service) AddOnboardingLinkToShop(ctx context.Context, shopID int64, mapping *dto.AccountMappingRead) (string, error) {
	hasToken := mapping.OnboardingToken != nil

	var token string
	if hasToken {
		token = *mapping.OnboardingToken
	} else {
		var err error
		if token, err = newOnboardingToken(); err != nil {
			return "", err
		}
	}

	linkURL, err := s.createAccountLink(ctx, mapping.StripeAccountID, token)
	if err != nil {
		return "", err
	}

	if err = s.mirakl.UpdateShopCustomField(ctx, shopID, s.miraklCfg.CustomFieldCode, linkURL); err != nil {
		return "", fmt.Errorf("failed to write onboarding link to shop: %w", err)
	}

	if !hasToken {
		if err = s.mappings.Update(ctx, mapping.ID, dto.AccountMappingUpdate{OnboardingToken: &token}); err != nil {
			return "", fmt.Errorf("failed to persist onboarding token: %w", err)
		}
		mapping.OnboardingToken = &token
	}

	return linkURL, nil
}

// RefreshOnboardingLink resolves the mapping behind an onboarding token and
// mints a new link for it. This backs the refresh URL Stripe redirects
// sellers to when a link expires.
func (s *Service) RefreshOnboardingLink(ctx context.Context, token string) (string, error) {
	mapping, err := s.mappings.FindByOnboardingToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to resolve onboarding token: %w", err)
	}
	return s.createAccountLink(ctx, mapping.StripeAccountID, token)
}

func (s *Service) createAccountLink(ctx context.Context, accountID, token string) (string, error) {
	refreshURL := s.stripeCfg.OnboardingRefreshURL + "?token=" + url.QueryEscape(token)
	link, err := s.stripe.CreateAccountLink(ctx, accountID, refreshURL, s.stripeCfg.OnboardingReturnURL)
	if err != nil {
		return "", fmt.Errorf("failed to create account link: %w", err)
	}
	return link.URL, nil
}

// createStripeAccountFromShop provisions the Express account, forwarding
// prefill details from the shop profile when the toggle is on.
func (s *Service) createStripeAccountFromShop(ctx context.Context, shop *domain.Shop) (*payment.Account, error) {
	var profile *payment.AccountProfile
	if s.stripeCfg.PrefillOnboarding {
		profile = &payment.AccountProfile{
			BusinessType: "individual",
			Name:         shop.Name,
			URL:          shop.ContactInformation.WebSite,
			SupportEmail: shop.ContactInformation.Email,
		}
		if shop.IsProfessional {
			profile.BusinessType = "company"
		}
		if shop.ContactInformation.Phone != "" {
			profile.SupportPhone = shop.ContactInformation.Phone
		}
	}

	metadata := s.metadataFields(shop)
	metadata[metaMiraklShopID] = fmt.Sprintf("%d", shop.ID)

	account, err := s.stripe.CreateAccount(ctx, shop.ID, profile, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to create Stripe account: %w", err)
	}
	return account, nil
}

// metadataFields applies the configured attribute-to-metadata mapping to the
// shop, forwarding only attributes actually present.
func (s *Service) metadataFields(shop *domain.Shop) map[string]string {
	fields := map[string]string{}
	for attrKey, metaKey := range s.accountMetadata {
		if value, ok := shop.Attribute(attrKey); ok {
			fields[metaKey] = value
		}
	}
	return fields
}

// lockShop serializes callers per shop id and returns the unlock.
func (s *Service) lockShop(shopID int64) func() {
	v, _ := s.shopLocks.LoadOrStore(shopID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// newOnboardingToken returns a 128-bit random value, hex-encoded.
func newOnboardingToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate onboarding token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

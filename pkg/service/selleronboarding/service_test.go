package selleronboarding

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marketpay/stripe-mirakl-connector/pkg/config"
	"github.com/marketpay/stripe-mirakl-connector/pkg/domain"
	"github.com/marketpay/stripe-mirakl-connector/pkg/dto"
	"github.com/marketpay/stripe-mirakl-connector/pkg/provider/payment"
)

// MockAccountMappingRepository is a mock implementation for testing
type MockAccountMappingRepository struct {
	mock.Mock
}

func (m *MockAccountMappingRepository) Create(ctx context.Context, create dto.AccountMappingCreate) error {
	args := m.Called(ctx, create)
	return args.Error(0)
}

func (m *MockAccountMappingRepository) Update(ctx context.Context, id uuid.UUID, update dto.AccountMappingUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockAccountMappingRepository) FindByShopID(ctx context.Context, miraklShopID int64) (*dto.AccountMappingRead, error) {
	args := m.Called(ctx, miraklShopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AccountMappingRead), args.Error(1)
}

func (m *MockAccountMappingRepository) ListByShopIDs(ctx context.Context, miraklShopIDs []int64) ([]*dto.AccountMappingRead, error) {
	args := m.Called(ctx, miraklShopIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.AccountMappingRead), args.Error(1)
}

func (m *MockAccountMappingRepository) FindByOnboardingToken(ctx context.Context, token string) (*dto.AccountMappingRead, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AccountMappingRead), args.Error(1)
}

// MockPaymentProvider is a mock implementation for testing
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateTransfer(ctx context.Context, currency string, amount int64, destinationAccountID, idempotencyKey string, metadata map[string]string) (*payment.TransferResult, error) {
	args := m.Called(ctx, currency, amount, destinationAccountID, idempotencyKey, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.TransferResult), args.Error(1)
}

func (m *MockPaymentProvider) CreateTransferFromConnectedAccount(ctx context.Context, currency string, amount int64, sourceAccountID string, metadata map[string]string) (*payment.TransferResult, error) {
	args := m.Called(ctx, currency, amount, sourceAccountID, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.TransferResult), args.Error(1)
}

func (m *MockPaymentProvider) ReverseTransfer(ctx context.Context, amount int64, originalTransferID string, metadata map[string]string) (*payment.TransferResult, error) {
	args := m.Called(ctx, amount, originalTransferID, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.TransferResult), args.Error(1)
}

func (m *MockPaymentProvider) CreateAccount(ctx context.Context, miraklShopID int64, profile *payment.AccountProfile, metadata map[string]string) (*payment.Account, error) {
	args := m.Called(ctx, miraklShopID, profile, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Account), args.Error(1)
}

func (m *MockPaymentProvider) RetrieveAccount(ctx context.Context, accountID string) (*payment.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Account), args.Error(1)
}

func (m *MockPaymentProvider) UpdateAccountMetadata(ctx context.Context, accountID string, metadata map[string]string) error {
	args := m.Called(ctx, accountID, metadata)
	return args.Error(0)
}

func (m *MockPaymentProvider) CreateLoginLink(ctx context.Context, accountID string) (*payment.Link, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Link), args.Error(1)
}

func (m *MockPaymentProvider) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (*payment.Link, error) {
	args := m.Called(ctx, accountID, refreshURL, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Link), args.Error(1)
}

// MockMarketplaceProvider is a mock implementation for testing
type MockMarketplaceProvider struct {
	mock.Mock
}

func (m *MockMarketplaceProvider) ListProductOrdersByID(ctx context.Context, orderIDs []string) (map[string]*domain.ProductOrder, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.ProductOrder), args.Error(1)
}

func (m *MockMarketplaceProvider) GetShop(ctx context.Context, shopID int64) (*domain.Shop, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shop), args.Error(1)
}

func (m *MockMarketplaceProvider) UpdateShopCustomField(ctx context.Context, shopID int64, fieldCode, value string) error {
	args := m.Called(ctx, shopID, fieldCode, value)
	return args.Error(0)
}

func testConfigs() (*config.Stripe, *config.Mirakl) {
	return &config.Stripe{
			OnboardingReturnURL:  "https://operator.example.com/onboarding/complete",
			OnboardingRefreshURL: "https://operator.example.com/onboarding/refresh",
		}, &config.Mirakl{
			CustomFieldCode:      "stripe-url",
			IgnoredShopFieldCode: "stripe-ignored",
		}
}

func newTestService(t *testing.T, stripeCfg *config.Stripe, miraklCfg *config.Mirakl) (*Service, *MockAccountMappingRepository, *MockMarketplaceProvider, *MockPaymentProvider) {
	t.Helper()
	mappings := &MockAccountMappingRepository{}
	mirakl := &MockMarketplaceProvider{}
	stripe := &MockPaymentProvider{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := New(mappings, mirakl, stripe, stripeCfg, miraklCfg, logger)
	require.NoError(t, err)
	return svc, mappings, mirakl, stripe
}

func testShop() *domain.Shop {
	return &domain.Shop{
		ID:             2001,
		Name:           "Acme Supplies",
		IsProfessional: true,
		ContactInformation: domain.ContactInformation{
			Email:   "support@acme.example.com",
			Phone:   "+33100000000",
			WebSite: "https://acme.example.com",
		},
		Attributes: map[string]string{
			"shop_name":       "Acme Supplies",
			"is_professional": "true",
		},
	}
}

func TestNew_RejectsInvalidMetadataMapping(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	stripeCfg.AccountMetadata = "{not json"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := New(&MockAccountMappingRepository{}, &MockMarketplaceProvider{}, &MockPaymentProvider{}, stripeCfg, miraklCfg, logger)
	require.Error(t, err)
}

func TestGetAccountMappingFromShop_FirstResolutionCreatesAccountAndMapping(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	stripeCfg.PrefillOnboarding = true
	stripeCfg.AccountMetadata = `{"shop_name":"shopName","missing_attr":"other"}`
	svc, mappings, _, stripe := newTestService(t, stripeCfg, miraklCfg)
	shop := testShop()

	mappings.On("FindByShopID", mock.Anything, int64(2001)).Return(nil, domain.ErrNotFound)

	expectedProfile := &payment.AccountProfile{
		BusinessType: "company",
		Name:         "Acme Supplies",
		URL:          "https://acme.example.com",
		SupportEmail: "support@acme.example.com",
		SupportPhone: "+33100000000",
	}
	// Only attributes present on the shop are forwarded.
	expectedMetadata := map[string]string{
		"shopName":     "Acme Supplies",
		"miraklShopId": "2001",
	}
	stripe.On("CreateAccount", mock.Anything, int64(2001), expectedProfile, expectedMetadata).
		Return(&payment.Account{
			ID:             "acct_new",
			PayoutsEnabled: false,
			ChargesEnabled: true,
			DisabledReason: "requirements.past_due",
		}, nil)

	mappings.On("Create", mock.Anything, mock.MatchedBy(func(c dto.AccountMappingCreate) bool {
		return c.MiraklShopID == 2001 &&
			c.StripeAccountID == "acct_new" &&
			!c.PayoutEnabled && c.PayinEnabled &&
			c.DisabledReason != nil && *c.DisabledReason == "requirements.past_due"
	})).Return(nil)

	mapping, err := svc.GetAccountMappingFromShop(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, "acct_new", mapping.StripeAccountID)
	assert.Equal(t, int64(2001), mapping.MiraklShopID)
	stripe.AssertExpectations(t)
	mappings.AssertExpectations(t)
	stripe.AssertNotCalled(t, "RetrieveAccount", mock.Anything, mock.Anything)
}

func TestGetAccountMappingFromShop_NoPrefillOmitsProfile(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	svc, mappings, _, stripe := newTestService(t, stripeCfg, miraklCfg)
	shop := testShop()

	mappings.On("FindByShopID", mock.Anything, int64(2001)).Return(nil, domain.ErrNotFound)
	stripe.On("CreateAccount", mock.Anything, int64(2001), (*payment.AccountProfile)(nil), map[string]string{
		"miraklShopId": "2001",
	}).Return(&payment.Account{ID: "acct_new", PayoutsEnabled: true, ChargesEnabled: true}, nil)
	mappings.On("Create", mock.Anything, mock.Anything).Return(nil)

	mapping, err := svc.GetAccountMappingFromShop(context.Background(), shop)
	require.NoError(t, err)
	assert.Nil(t, mapping.DisabledReason)
	stripe.AssertExpectations(t)
}

func TestGetAccountMappingFromShop_ExistingMappingSyncsMetadataOnly(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	stripeCfg.AccountMetadata = `{"shop_name":"shopName"}`
	svc, mappings, _, stripe := newTestService(t, stripeCfg, miraklCfg)
	shop := testShop()

	existing := &dto.AccountMappingRead{
		ID:              uuid.New(),
		MiraklShopID:    2001,
		StripeAccountID: "acct_existing",
		PayoutEnabled:   true,
	}
	mappings.On("FindByShopID", mock.Anything, int64(2001)).Return(existing, nil)
	stripe.On("RetrieveAccount", mock.Anything, "acct_existing").
		Return(&payment.Account{ID: "acct_existing", PayoutsEnabled: false}, nil)
	stripe.On("UpdateAccountMetadata", mock.Anything, "acct_existing", map[string]string{
		"shopName": "Acme Supplies",
	}).Return(nil)

	mapping, err := svc.GetAccountMappingFromShop(context.Background(), shop)
	require.NoError(t, err)
	// Local payout/payin flags are not touched by the sync.
	assert.True(t, mapping.PayoutEnabled)
	stripe.AssertExpectations(t)
	stripe.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mappings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetAccountMappingFromShop_LostRaceReturnsWinnersRow(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	svc, mappings, _, stripe := newTestService(t, stripeCfg, miraklCfg)
	shop := testShop()

	winner := &dto.AccountMappingRead{
		ID:              uuid.New(),
		MiraklShopID:    2001,
		StripeAccountID: "acct_winner",
	}
	mappings.On("FindByShopID", mock.Anything, int64(2001)).Return(nil, domain.ErrNotFound).Once()
	stripe.On("CreateAccount", mock.Anything, int64(2001), mock.Anything, mock.Anything).
		Return(&payment.Account{ID: "acct_loser"}, nil)
	mappings.On("Create", mock.Anything, mock.Anything).Return(domain.ErrAlreadyExists)
	mappings.On("FindByShopID", mock.Anything, int64(2001)).Return(winner, nil).Once()

	mapping, err := svc.GetAccountMappingFromShop(context.Background(), shop)
	require.NoError(t, err)
	assert.Equal(t, "acct_winner", mapping.StripeAccountID)
}

func TestUpdateIgnored(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	svc, mappings, _, _ := newTestService(t, stripeCfg, miraklCfg)

	mapping := &dto.AccountMappingRead{ID: uuid.New()}
	mappings.On("Update", mock.Anything, mapping.ID, mock.MatchedBy(func(u dto.AccountMappingUpdate) bool {
		return u.Ignored != nil && *u.Ignored
	})).Return(nil)

	require.NoError(t, svc.UpdateIgnored(context.Background(), mapping, true))
	assert.True(t, mapping.Ignored)
	mappings.AssertExpectations(t)
}

func TestUpdateIgnoredByShopID(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	svc, mappings, _, _ := newTestService(t, stripeCfg, miraklCfg)

	mapping := &dto.AccountMappingRead{ID: uuid.New(), MiraklShopID: 2001}
	mappings.On("FindByShopID", mock.Anything, int64(2001)).Return(mapping, nil)
	mappings.On("Update", mock.Anything, mapping.ID, mock.Anything).Return(nil)

	updated, err := svc.UpdateIgnoredByShopID(context.Background(), 2001, true)
	require.NoError(t, err)
	assert.True(t, updated.Ignored)

	mappings.On("FindByShopID", mock.Anything, int64(404)).Return(nil, domain.ErrNotFound)
	_, err = svc.UpdateIgnoredByShopID(context.Background(), 404, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIsShopIgnored(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	svc, _, _, _ := newTestService(t, stripeCfg, miraklCfg)

	shop := testShop()
	assert.False(t, svc.IsShopIgnored(shop))

	shop.CustomFields = []domain.CustomField{{Code: "stripe-ignored", Value: "true"}}
	assert.True(t, svc.IsShopIgnored(shop))

	// Only the exact value "true" counts.
	shop.CustomFields = []domain.CustomField{{Code: "stripe-ignored", Value: "TRUE"}}
	assert.False(t, svc.IsShopIgnored(shop))
}

func TestAddLoginLinkToShop_NotPersisted(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	svc, mappings, mirakl, stripe := newTestService(t, stripeCfg, miraklCfg)

	mapping := &dto.AccountMappingRead{ID: uuid.New(), StripeAccountID: "acct_1"}
	stripe.On("CreateLoginLink", mock.Anything, "acct_1").
		Return(&payment.Link{URL: "https://connect.stripe.com/express/login/abc"}, nil)
	mirakl.On("UpdateShopCustomField", mock.Anything, int64(2001), "stripe-url", "https://connect.stripe.com/express/login/abc").
		Return(nil)

	url, err := svc.AddLoginLinkToShop(context.Background(), 2001, mapping)
	require.NoError(t, err)
	assert.Equal(t, "https://connect.stripe.com/express/login/abc", url)
	mappings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddOnboardingLinkToShop_GeneratesTokenOnceAndReusesIt(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	svc, mappings, mirakl, stripe := newTestService(t, stripeCfg, miraklCfg)

	mapping := &dto.AccountMappingRead{ID: uuid.New(), MiraklShopID: 2001, StripeAccountID: "acct_1"}

	var firstRefreshURL string
	stripe.On("CreateAccountLink", mock.Anything, "acct_1", mock.AnythingOfType("string"), stripeCfg.OnboardingReturnURL).
		Run(func(args mock.Arguments) {
			if firstRefreshURL == "" {
				firstRefreshURL = args.String(2)
			}
		}).
		Return(&payment.Link{URL: "https://connect.stripe.com/setup/x"}, nil)
	mirakl.On("UpdateShopCustomField", mock.Anything, int64(2001), "stripe-url", "https://connect.stripe.com/setup/x").
		Return(nil)
	mappings.On("Update", mock.Anything, mapping.ID, mock.MatchedBy(func(u dto.AccountMappingUpdate) bool {
		return u.OnboardingToken != nil
	})).Return(nil).Once()

	_, err := svc.AddOnboardingLinkToShop(context.Background(), 2001, mapping)
	require.NoError(t, err)
	require.NotNil(t, mapping.OnboardingToken)

	token := *mapping.OnboardingToken
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), token)
	assert.Equal(t, stripeCfg.OnboardingRefreshURL+"?token="+token, firstRefreshURL)

	// Second call reuses the stored token; no further persist.
	_, err = svc.AddOnboardingLinkToShop(context.Background(), 2001, mapping)
	require.NoError(t, err)
	assert.Equal(t, token, *mapping.OnboardingToken)
	mappings.AssertNumberOfCalls(t, "Update", 1)
	stripe.AssertNumberOfCalls(t, "CreateAccountLink", 2)
}

func TestRefreshOnboardingLink(t *testing.T) {
	stripeCfg, miraklCfg := testConfigs()
	svc, mappings, _, stripe := newTestService(t, stripeCfg, miraklCfg)

	token := "00112233445566778899aabbccddeeff"
	mappings.On("FindByOnboardingToken", mock.Anything, token).Return(&dto.AccountMappingRead{
		ID:              uuid.New(),
		StripeAccountID: "acct_1",
		OnboardingToken: &token,
	}, nil)
	stripe.On("CreateAccountLink", mock.Anything, "acct_1", stripeCfg.OnboardingRefreshURL+"?token="+token, stripeCfg.OnboardingReturnURL).
		Return(&payment.Link{URL: "https://connect.stripe.com/setup/y"}, nil)

	url, err := svc.RefreshOnboardingLink(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "https://connect.stripe.com/setup/y", url)
}

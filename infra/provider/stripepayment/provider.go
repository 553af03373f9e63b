package stripepayment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/stripe/stripe-go/v82"

	"github.com/marketpay/stripe-mirakl-connector/pkg/config"
	"github.com/marketpay/stripe-mirakl-connector/pkg/provider/payment"
)

// Provider implements payment.Provider using the official Stripe client.
type Provider struct {
	client *stripe.Client
	cfg    *config.Stripe
	logger *slog.Logger
}

// New creates a Stripe-backed payment provider.
func New(cfg *config.Stripe, logger *slog.Logger) *Provider {
	return &Provider{
		client: stripe.NewClient(cfg.ApiKey),
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTransfer implements payment.Provider. The idempotency key rides the
// request so Stripe deduplicates redelivered instructions.
func (p *Provider) CreateTransfer(
	ctx context.Context,
	currency string,
	amount int64,
	destinationAccountID string,
	idempotencyKey string,
	metadata map[string]string,
) (*payment.TransferResult, error) {
	params := &stripe.TransferCreateParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Destination: stripe.String(destinationAccountID),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	transfer, err := p.client.V1Transfers.Create(ctx, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &payment.TransferResult{ID: transfer.ID}, nil
}

// CreateTransferFromConnectedAccount implements payment.Provider. The call
// runs on the connected account (Stripe-Account header) with the platform
// account as destination. Stripe offers no idempotency key here.
func (p *Provider) CreateTransferFromConnectedAccount(
	ctx context.Context,
	currency string,
	amount int64,
	sourceAccountID string,
	metadata map[string]string,
) (*payment.TransferResult, error) {
	params := &stripe.TransferCreateParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Destination: stripe.String(p.cfg.PlatformAccountID),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.SetStripeAccount(sourceAccountID)

	transfer, err := p.client.V1Transfers.Create(ctx, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &payment.TransferResult{ID: transfer.ID}, nil
}

// ReverseTransfer implements payment.Provider.
func (p *Provider) ReverseTransfer(
	ctx context.Context,
	amount int64,
	originalTransferID string,
	metadata map[string]string,
) (*payment.TransferResult, error) {
	params := &stripe.TransferReversalCreateParams{
		ID:     stripe.String(originalTransferID),
		Amount: stripe.Int64(amount),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	reversal, err := p.client.V1TransferReversals.Create(ctx, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &payment.TransferResult{ID: reversal.ID}, nil
}

// CreateAccount implements payment.Provider, provisioning an Express
// account with transfer capabilities for the shop.
func (p *Provider) CreateAccount(
	ctx context.Context,
	miraklShopID int64,
	profile *payment.AccountProfile,
	metadata map[string]string,
) (*payment.Account, error) {
	params := &stripe.AccountCreateParams{
		Type: stripe.String(string(stripe.AccountTypeExpress)),
		Capabilities: &stripe.AccountCreateCapabilitiesParams{
			CardPayments: &stripe.AccountCreateCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCreateCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}
	if profile != nil {
		params.BusinessType = stripe.String(profile.BusinessType)
		businessProfile := &stripe.AccountCreateBusinessProfileParams{}
		if profile.Name != "" {
			businessProfile.Name = stripe.String(profile.Name)
		}
		if profile.URL != "" {
			businessProfile.URL = stripe.String(profile.URL)
		}
		if profile.SupportEmail != "" {
			businessProfile.SupportEmail = stripe.String(profile.SupportEmail)
		}
		if profile.SupportPhone != "" {
			businessProfile.SupportPhone = stripe.String(profile.SupportPhone)
		}
		params.BusinessProfile = businessProfile
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.SetIdempotencyKey("shop-account-" + strconv.FormatInt(miraklShopID, 10))

	account, err := p.client.V1Accounts.Create(ctx, params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	p.logger.Info("created Stripe Express account",
		"miraklShopId", miraklShopID,
		"stripeAccountId", account.ID,
	)
	return mapAccount(account), nil
}

// RetrieveAccount implements payment.Provider.
func (p *Provider) RetrieveAccount(ctx context.Context, accountID string) (*payment.Account, error) {
	account, err := p.client.V1Accounts.GetByID(ctx, accountID, nil)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return mapAccount(account), nil
}

// UpdateAccountMetadata implements payment.Provider.
func (p *Provider) UpdateAccountMetadata(ctx context.Context, accountID string, metadata map[string]string) error {
	if len(metadata) == 0 {
		return nil
	}
	params := &stripe.AccountUpdateParams{}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	if _, err := p.client.V1Accounts.Update(ctx, accountID, params); err != nil {
		return mapStripeError(err)
	}
	return nil
}

// CreateLoginLink implements payment.Provider.
func (p *Provider) CreateLoginLink(ctx context.Context, accountID string) (*payment.Link, error) {
	params := &stripe.LoginLinkCreateParams{
		Account: stripe.String(accountID),
	}
	link, err := p.client.V1LoginLinks.Create(ctx, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &payment.Link{URL: link.URL}, nil
}

// CreateAccountLink implements payment.Provider.
func (p *Provider) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (*payment.Link, error) {
	params := &stripe.AccountLinkCreateParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	link, err := p.client.V1AccountLinks.Create(ctx, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &payment.Link{URL: link.URL}, nil
}

// mapAccount reduces a Stripe account to the state the connector tracks.
func mapAccount(account *stripe.Account) *payment.Account {
	mapped := &payment.Account{
		ID:             account.ID,
		PayoutsEnabled: account.PayoutsEnabled,
		ChargesEnabled: account.ChargesEnabled,
	}
	if account.Requirements != nil {
		mapped.DisabledReason = string(account.Requirements.DisabledReason)
	}
	return mapped
}

// mapStripeError converts any Stripe failure into *payment.Error so the
// processor can tell API failures apart from invariant violations.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &payment.Error{
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
		}
	}
	return &payment.Error{
		Code:    "api_connection_error",
		Message: fmt.Sprintf("stripe request failed: %v", err),
	}
}

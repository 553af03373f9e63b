package payment

import "context"

// Provider is the payment platform capability set the connector drives.
// API failures come back as *Error so callers can tell them apart from
// transport or invariant failures.
type Provider interface {
	// CreateTransfer moves amount from the platform to a connected account.
	// The idempotency key makes redelivered instructions safe.
	CreateTransfer(
		ctx context.Context,
		currency string,
		amount int64,
		destinationAccountID string,
		idempotencyKey string,
		metadata map[string]string,
	) (*TransferResult, error)

	// CreateTransferFromConnectedAccount moves amount from a connected
	// account back to the platform. The platform offers no idempotency key
	// on this call; redelivery protection is the caller's problem.
	CreateTransferFromConnectedAccount(
		ctx context.Context,
		currency string,
		amount int64,
		sourceAccountID string,
		metadata map[string]string,
	) (*TransferResult, error)

	// ReverseTransfer reverses a previously created transfer.
	ReverseTransfer(
		ctx context.Context,
		amount int64,
		originalTransferID string,
		metadata map[string]string,
	) (*TransferResult, error)

	// CreateAccount provisions a connected account for a Mirakl shop.
	CreateAccount(
		ctx context.Context,
		miraklShopID int64,
		profile *AccountProfile,
		metadata map[string]string,
	) (*Account, error)

	// RetrieveAccount fetches the current state of a connected account.
	RetrieveAccount(ctx context.Context, accountID string) (*Account, error)

	// UpdateAccountMetadata pushes a metadata-only patch to an account.
	UpdateAccountMetadata(ctx context.Context, accountID string, metadata map[string]string) error

	// CreateLoginLink issues a fresh Express dashboard login link.
	CreateLoginLink(ctx context.Context, accountID string) (*Link, error)

	// CreateAccountLink issues an onboarding link with the given refresh
	// and return URLs.
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (*Link, error)
}

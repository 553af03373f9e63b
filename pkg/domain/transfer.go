package domain

// TransferType identifies the marketplace event a transfer settles.
type TransferType string

const (
	// TransferProductOrder settles a physical product order payout.
	TransferProductOrder TransferType = "PRODUCT_ORDER"
	// TransferServiceOrder settles a service order payout.
	TransferServiceOrder TransferType = "SERVICE_ORDER"
	// TransferExtraCredits settles extra credits granted to a seller.
	TransferExtraCredits TransferType = "EXTRA_CREDITS"
	// TransferSubscription collects a subscription fee from a seller.
	TransferSubscription TransferType = "SUBSCRIPTION"
	// TransferExtraInvoices collects extra invoices from a seller.
	TransferExtraInvoices TransferType = "EXTRA_INVOICES"
	// TransferRefund reverses a previously created transfer.
	TransferRefund TransferType = "REFUND"
)

// TransferStatus is the processing state of a transfer record.
type TransferStatus string

const (
	// TransferPending is the initial state set by the upstream producer.
	TransferPending TransferStatus = "PENDING"
	// TransferCreated means the Stripe transfer was created successfully.
	TransferCreated TransferStatus = "CREATED"
	// TransferFailed means the Stripe call failed; StatusReason carries why.
	TransferFailed TransferStatus = "FAILED"
)

// MaxStatusReasonLength caps the persisted failure reason.
const MaxStatusReasonLength = 1024

// TruncateStatusReason trims a failure message to the persistable length.
func TruncateStatusReason(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MaxStatusReasonLength {
		return msg
	}
	return string(runes[:MaxStatusReasonLength])
}

package payment

import "fmt"

// TransferResult is the provider response for any money movement call.
type TransferResult struct {
	// ID is the provider-side transfer (or reversal) identifier.
	ID string
}

// AccountProfile holds optional prefill details forwarded when creating a
// connected account. Empty fields are not sent.
type AccountProfile struct {
	BusinessType string // "company" or "individual"
	Name         string
	URL          string
	SupportEmail string
	SupportPhone string
}

// Account mirrors the provider-side connected account state the connector
// cares about.
type Account struct {
	ID             string
	PayoutsEnabled bool
	ChargesEnabled bool
	DisabledReason string
}

// Link is a provider-generated one-time URL (login or onboarding).
type Link struct {
	URL string
}

// Error is a payment API failure with a machine-readable code. The transfer
// processor recovers this class into a FAILED status; every other error
// propagates to the dispatcher.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment api error (%s): %s", e.Code, e.Message)
}

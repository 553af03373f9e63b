package transferprocessor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/marketpay/stripe-mirakl-connector/pkg/domain"
	"github.com/marketpay/stripe-mirakl-connector/pkg/domain/events"
	"github.com/marketpay/stripe-mirakl-connector/pkg/dto"
	"github.com/marketpay/stripe-mirakl-connector/pkg/eventbus"
	"github.com/marketpay/stripe-mirakl-connector/pkg/provider/marketplace"
	"github.com/marketpay/stripe-mirakl-connector/pkg/provider/payment"
	transferrepo "github.com/marketpay/stripe-mirakl-connector/pkg/repository/transfer"
)

// Metadata keys attached to outgoing Stripe transfers.
const (
	metaMiraklID          = "miraklId"
	metaMiraklShopID      = "miraklShopId"
	metaOrderTaxAmount    = "ORDER_TAX_AMOUNT"
	metaShippingTaxAmount = "SHIPPING_TAX_AMOUNT"
	metaCommissionFees    = "COMMISSION_FEES"
)

// strategy turns one loaded transfer record plus its enriched metadata into
// a single payment platform call.
type strategy func(ctx context.Context, t *dto.TransferRead, metadata map[string]string) (*payment.TransferResult, error)

// Processor settles one queued transfer record per Process call: load,
// enrich, dispatch by type, record the outcome.
type Processor struct {
	transfers  transferrepo.Repository
	mirakl     marketplace.Provider
	stripe     payment.Provider
	logger     *slog.Logger
	strategies map[domain.TransferType]strategy
}

// New wires a Processor with its per-type dispatch table.
func New(
	transfers transferrepo.Repository,
	mirakl marketplace.Provider,
	stripe payment.Provider,
	logger *slog.Logger,
) *Processor {
	p := &Processor{
		transfers: transfers,
		mirakl:    mirakl,
		stripe:    stripe,
		logger:    logger,
	}
	p.strategies = map[domain.TransferType]strategy{
		domain.TransferProductOrder:  p.executePlatformTransfer,
		domain.TransferServiceOrder:  p.executePlatformTransfer,
		domain.TransferExtraCredits:  p.executePlatformTransfer,
		domain.TransferSubscription:  p.executeConnectedAccountTransfer,
		domain.TransferExtraInvoices: p.executeConnectedAccountTransfer,
		domain.TransferRefund:        p.executeReversal,
	}
	return p
}

// HandleProcessTransfer bridges the bus to Process.
func (p *Processor) HandleProcessTransfer() eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		msg, ok := e.(events.ProcessTransferRequested)
		if !ok {
			return fmt.Errorf("unexpected event type %T", e)
		}
		return p.Process(ctx, msg.TransferID)
	}
}

// Process settles the transfer identified by transferID.
//
// Stripe API failures are recovered locally into a FAILED status with a
// truncated reason; every other failure (missing record, reprocessing a
// CREATED record, Mirakl lookup, persistence) propagates so the dispatcher
// can govern redelivery.
func (p *Processor) Process(ctx context.Context, transferID uuid.UUID) error {
	const op = "transferprocessor.Process"

	t, err := p.transfers.Get(ctx, transferID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewInvariantError(op, fmt.Errorf("transfer %s: %w", transferID, err))
		}
		return fmt.Errorf("failed to load transfer %s: %w", transferID, err)
	}
	if t.Status == domain.TransferCreated {
		return domain.NewInvariantError(op, fmt.Errorf("transfer %s: %w", transferID, domain.ErrTransferAlreadyCreated))
	}
	if t.Amount == nil || t.Currency == nil {
		return domain.NewInvariantError(op, fmt.Errorf("transfer %s has no amount or currency", transferID))
	}

	metadata := map[string]string{
		metaMiraklID: strconv.FormatInt(t.MiraklID, 10),
	}
	if t.Type == domain.TransferProductOrder {
		if err = p.enrichProductOrderMetadata(ctx, t, metadata); err != nil {
			return err
		}
	}

	execute, ok := p.strategies[t.Type]
	if !ok {
		return domain.NewInvariantError(op, fmt.Errorf("unknown transfer type %q", t.Type))
	}

	res, err := execute(ctx, t, metadata)
	if err != nil {
		var apiErr *payment.Error
		if !errors.As(err, &apiErr) {
			return err
		}
		p.logger.Error("could not create Stripe transfer",
			"miraklId", t.MiraklID,
			"transferId", derefString(t.TransferID),
			"transactionId", derefString(t.TransactionID),
			"amount", *t.Amount,
			"stripeErrorCode", apiErr.Code,
			"error", apiErr.Message,
		)
		failed := domain.TransferFailed
		reason := domain.TruncateStatusReason(apiErr.Message)
		if err = p.transfers.Update(ctx, t.ID, dto.TransferUpdate{
			Status:       &failed,
			StatusReason: &reason,
		}); err != nil {
			return fmt.Errorf("failed to record transfer failure: %w", err)
		}
		return nil
	}

	created := domain.TransferCreated
	if err = p.transfers.Update(ctx, t.ID, dto.TransferUpdate{
		Status:            &created,
		TransferID:        &res.ID,
		ClearStatusReason: true,
	}); err != nil {
		return fmt.Errorf("failed to record transfer success: %w", err)
	}
	return nil
}

// enrichProductOrderMetadata fetches the Mirakl order backing t and merges
// its tax and commission totals into metadata.
func (p *Processor) enrichProductOrderMetadata(
	ctx context.Context,
	t *dto.TransferRead,
	metadata map[string]string,
) error {
	orderID := strconv.FormatInt(t.MiraklID, 10)
	orders, err := p.mirakl.ListProductOrdersByID(ctx, []string{orderID})
	if err != nil {
		return fmt.Errorf("failed to fetch Mirakl order %s: %w", orderID, err)
	}
	order, ok := orders[orderID]
	if !ok {
		return fmt.Errorf("mirakl order %s not found", orderID)
	}
	metadata[metaOrderTaxAmount] = formatAmount(order.TotalTaxes())
	metadata[metaShippingTaxAmount] = formatAmount(order.TotalShippingTaxes())
	metadata[metaCommissionFees] = formatAmount(order.OperatorCommission)
	return nil
}

// executePlatformTransfer moves funds from the platform to the seller.
// Used for PRODUCT_ORDER, SERVICE_ORDER and EXTRA_CREDITS.
func (p *Processor) executePlatformTransfer(
	ctx context.Context,
	t *dto.TransferRead,
	metadata map[string]string,
) (*payment.TransferResult, error) {
	const op = "transferprocessor.executePlatformTransfer"

	mapping := t.AccountMapping
	if mapping == nil || mapping.StripeAccountID == "" {
		return nil, domain.NewInvariantError(op, fmt.Errorf("transfer %s: %w", t.ID, domain.ErrMissingAccountMapping))
	}
	metadata[metaMiraklShopID] = strconv.FormatInt(mapping.MiraklShopID, 10)

	return p.stripe.CreateTransfer(
		ctx,
		*t.Currency,
		*t.Amount,
		mapping.StripeAccountID,
		derefString(t.TransactionID),
		metadata,
	)
}

// executeConnectedAccountTransfer pulls funds from the seller back to the
// platform. Used for SUBSCRIPTION and EXTRA_INVOICES. No idempotency key is
// available on this call.
func (p *Processor) executeConnectedAccountTransfer(
	ctx context.Context,
	t *dto.TransferRead,
	metadata map[string]string,
) (*payment.TransferResult, error) {
	const op = "transferprocessor.executeConnectedAccountTransfer"

	mapping := t.AccountMapping
	if mapping == nil || mapping.StripeAccountID == "" {
		return nil, domain.NewInvariantError(op, fmt.Errorf("transfer %s: %w", t.ID, domain.ErrMissingAccountMapping))
	}
	metadata[metaMiraklShopID] = strconv.FormatInt(mapping.MiraklShopID, 10)

	return p.stripe.CreateTransferFromConnectedAccount(
		ctx,
		*t.Currency,
		*t.Amount,
		mapping.StripeAccountID,
		metadata,
	)
}

// executeReversal reverses a previously created transfer. Used for REFUND;
// no account mapping lookup happens on this path.
func (p *Processor) executeReversal(
	ctx context.Context,
	t *dto.TransferRead,
	metadata map[string]string,
) (*payment.TransferResult, error) {
	const op = "transferprocessor.executeReversal"

	if t.TransactionID == nil {
		return nil, domain.NewInvariantError(op, fmt.Errorf("refund transfer %s has no transaction id", t.ID))
	}

	return p.stripe.ReverseTransfer(ctx, *t.Amount, *t.TransactionID, metadata)
}

// formatAmount renders a Mirakl monetary value the way it appears in order
// payloads, without a trailing fractional zero.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

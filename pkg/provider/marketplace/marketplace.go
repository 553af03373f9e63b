package marketplace

import (
	"context"

	"github.com/marketpay/stripe-mirakl-connector/pkg/domain"
)

// Provider is the Mirakl capability set the connector drives. Errors are
// never recovered locally; they propagate to the caller.
type Provider interface {
	// ListProductOrdersByID fetches product orders keyed by their Mirakl
	// order id.
	ListProductOrdersByID(ctx context.Context, orderIDs []string) (map[string]*domain.ProductOrder, error)

	// GetShop fetches one shop profile.
	GetShop(ctx context.Context, shopID int64) (*domain.Shop, error)

	// UpdateShopCustomField writes value into the shop's custom field.
	UpdateShopCustomField(ctx context.Context, shopID int64, fieldCode, value string) error
}

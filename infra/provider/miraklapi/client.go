package miraklapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/marketpay/stripe-mirakl-connector/pkg/config"
	"github.com/marketpay/stripe-mirakl-connector/pkg/domain"
	"github.com/marketpay/stripe-mirakl-connector/pkg/provider/marketplace"
)

// Client implements marketplace.Provider against the Mirakl REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Mirakl API client using config.
func New(cfg *config.Mirakl, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.ApiKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

var _ marketplace.Provider = (*Client)(nil)

type taxLine struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

type orderLine struct {
	Taxes         []taxLine `json:"taxes"`
	ShippingTaxes []taxLine `json:"shipping_taxes"`
}

type productOrder struct {
	OrderID         string      `json:"order_id"`
	OrderLines      []orderLine `json:"order_lines"`
	TotalCommission float64     `json:"total_commission"`
}

type listOrdersResponse struct {
	Orders []productOrder `json:"orders"`
}

// ListProductOrdersByID implements marketplace.Provider (Mirakl OR11).
func (c *Client) ListProductOrdersByID(ctx context.Context, orderIDs []string) (map[string]*domain.ProductOrder, error) {
	query := url.Values{}
	query.Set("order_ids", strings.Join(orderIDs, ","))

	var resp listOrdersResponse
	if err := c.get(ctx, "/api/orders", query, &resp); err != nil {
		return nil, err
	}

	orders := make(map[string]*domain.ProductOrder, len(resp.Orders))
	for _, o := range resp.Orders {
		lines := make([]domain.OrderLine, 0, len(o.OrderLines))
		for _, l := range o.OrderLines {
			lines = append(lines, domain.OrderLine{
				Taxes:         mapTaxLines(l.Taxes),
				ShippingTaxes: mapTaxLines(l.ShippingTaxes),
			})
		}
		orders[o.OrderID] = &domain.ProductOrder{
			ID:                 o.OrderID,
			Lines:              lines,
			OperatorCommission: o.TotalCommission,
		}
	}
	return orders, nil
}

type contactInformation struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	WebSite string `json:"web_site"`
}

type additionalField struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

type listShopsResponse struct {
	Shops []json.RawMessage `json:"shops"`
}

// GetShop implements marketplace.Provider (Mirakl S20).
func (c *Client) GetShop(ctx context.Context, shopID int64) (*domain.Shop, error) {
	query := url.Values{}
	query.Set("shop_ids", strconv.FormatInt(shopID, 10))

	var resp listShopsResponse
	if err := c.get(ctx, "/api/shops", query, &resp); err != nil {
		return nil, err
	}
	if len(resp.Shops) == 0 {
		return nil, fmt.Errorf("mirakl shop %d: %w", shopID, domain.ErrNotFound)
	}
	return parseShop(resp.Shops[0])
}

// UpdateShopCustomField implements marketplace.Provider (Mirakl S07).
func (c *Client) UpdateShopCustomField(ctx context.Context, shopID int64, fieldCode, value string) error {
	body := map[string]any{
		"shops": []map[string]any{
			{
				"shop_id": shopID,
				"shop_additional_fields": []additionalField{
					{Code: fieldCode, Value: value},
				},
			},
		},
	}
	if err := c.put(ctx, "/api/shops", body); err != nil {
		return err
	}
	c.logger.Info("updated Mirakl shop custom field",
		"miraklShopId", shopID,
		"fieldCode", fieldCode,
	)
	return nil
}

// parseShop decodes the typed fields of a raw shop payload and flattens its
// top-level scalars into Attributes for the configurable metadata mapping.
func parseShop(raw json.RawMessage) (*domain.Shop, error) {
	var typed struct {
		ShopID               int64              `json:"shop_id"`
		ShopName             string             `json:"shop_name"`
		IsProfessional       bool               `json:"is_professional"`
		ContactInformations  contactInformation `json:"contact_informations"`
		ShopAdditionalFields []additionalField  `json:"shop_additional_fields"`
	}
	if err := json.Unmarshal(raw, &typed); err != nil {
		return nil, fmt.Errorf("failed to decode shop: %w", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode shop attributes: %w", err)
	}
	attributes := map[string]string{}
	for k, v := range generic {
		switch value := v.(type) {
		case string:
			attributes[k] = value
		case bool:
			attributes[k] = strconv.FormatBool(value)
		case float64:
			attributes[k] = strconv.FormatFloat(value, 'f', -1, 64)
		}
	}

	customFields := make([]domain.CustomField, 0, len(typed.ShopAdditionalFields))
	for _, f := range typed.ShopAdditionalFields {
		customFields = append(customFields, domain.CustomField{Code: f.Code, Value: f.Value})
	}

	return &domain.Shop{
		ID:             typed.ShopID,
		Name:           typed.ShopName,
		IsProfessional: typed.IsProfessional,
		ContactInformation: domain.ContactInformation{
			Email:   typed.ContactInformations.Email,
			Phone:   typed.ContactInformations.Phone,
			WebSite: typed.ContactInformations.WebSite,
		},
		CustomFields: customFields,
		Attributes:   attributes,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) put(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mirakl request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mirakl API returned status %d: %s", resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode mirakl response: %w", err)
	}
	return nil
}

func mapTaxLines(lines []taxLine) []domain.TaxAmount {
	taxes := make([]domain.TaxAmount, 0, len(lines))
	for _, l := range lines {
		taxes = append(taxes, domain.TaxAmount{Code: l.Code, Amount: l.Amount})
	}
	return taxes
}

package onboarding

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/marketpay/stripe-mirakl-connector/pkg/provider/marketplace"
	"github.com/marketpay/stripe-mirakl-connector/pkg/service/selleronboarding"
	"github.com/marketpay/stripe-mirakl-connector/webapi"
)

// Handlers exposes the seller onboarding flow over HTTP.
type Handlers struct {
	onboardingSvc *selleronboarding.Service
	mirakl        marketplace.Provider
	logger        *slog.Logger
}

// NewHandlers wires the onboarding handlers.
func NewHandlers(
	onboardingSvc *selleronboarding.Service,
	mirakl marketplace.Provider,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		onboardingSvc: onboardingSvc,
		mirakl:        mirakl,
		logger:        logger,
	}
}

// AddOnboardingLink resolves the shop's account mapping (creating the
// Stripe account on first call) and writes a fresh onboarding link into
// the shop's custom field.
func (h *Handlers) AddOnboardingLink(c *fiber.Ctx) error {
	shopID, err := shopIDParam(c)
	if err != nil {
		return webapi.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid shop id", err.Error())
	}

	shop, err := h.mirakl.GetShop(c.Context(), shopID)
	if err != nil {
		return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to fetch shop", err.Error())
	}
	if h.onboardingSvc.IsShopIgnored(shop) {
		return webapi.ErrorResponseJSON(c, fiber.StatusConflict, "Shop is ignored", "shop is excluded from settlement")
	}

	mapping, err := h.onboardingSvc.GetAccountMappingFromShop(c.Context(), shop)
	if err != nil {
		return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to resolve account mapping", err.Error())
	}

	linkURL, err := h.onboardingSvc.AddOnboardingLinkToShop(c.Context(), shopID, mapping)
	if err != nil {
		return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to create onboarding link", err.Error())
	}

	return webapi.SuccessResponseJSON(c, fiber.StatusOK, "Onboarding link created", fiber.Map{
		"url": linkURL,
	})
}

// AddLoginLink writes a fresh Express dashboard login link into the shop's
// custom field. Requires an existing mapping.
func (h *Handlers) AddLoginLink(c *fiber.Ctx) error {
	shopID, err := shopIDParam(c)
	if err != nil {
		return webapi.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid shop id", err.Error())
	}

	shop, err := h.mirakl.GetShop(c.Context(), shopID)
	if err != nil {
		return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to fetch shop", err.Error())
	}

	mapping, err := h.onboardingSvc.GetAccountMappingFromShop(c.Context(), shop)
	if err != nil {
		return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to resolve account mapping", err.Error())
	}

	linkURL, err := h.onboardingSvc.AddLoginLinkToShop(c.Context(), shopID, mapping)
	if err != nil {
		return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to create login link", err.Error())
	}

	return webapi.SuccessResponseJSON(c, fiber.StatusOK, "Login link created", fiber.Map{
		"url": linkURL,
	})
}

// IgnoreRequest toggles a shop's exclusion from settlement.
type IgnoreRequest struct {
	Ignored *bool `json:"ignored" validate:"required"`
}

// UpdateIgnored flips the exclusion flag on the shop's mapping. Ignored
// shops keep their mapping but are skipped by transfer creation.
func (h *Handlers) UpdateIgnored(c *fiber.Ctx) error {
	shopID, err := shopIDParam(c)
	if err != nil {
		return webapi.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid shop id", err.Error())
	}

	input, err := webapi.BindAndValidate[IgnoreRequest](c)
	if input == nil {
		return err // error response already written
	}

	mapping, err := h.onboardingSvc.UpdateIgnoredByShopID(c.Context(), shopID, *input.Ignored)
	if err != nil {
		return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to update ignored flag", err.Error())
	}

	return webapi.SuccessResponseJSON(c, fiber.StatusOK, "Ignored flag updated", fiber.Map{
		"miraklShopId": mapping.MiraklShopID,
		"ignored":      mapping.Ignored,
	})
}

// Refresh backs the refresh URL embedded in onboarding links: Stripe sends
// sellers here when a link expires, and we redirect to a fresh one.
func (h *Handlers) Refresh(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return webapi.ErrorResponseJSON(c, fiber.StatusBadRequest, "Missing token", "token query parameter is required")
	}

	linkURL, err := h.onboardingSvc.RefreshOnboardingLink(c.Context(), token)
	if err != nil {
		return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to refresh onboarding link", err.Error())
	}

	return c.Redirect(linkURL, fiber.StatusFound)
}

// MapRoutes registers the onboarding routes.
func (h *Handlers) MapRoutes(router fiber.Router) {
	router.Post("/shops/:shopId/onboarding-link", h.AddOnboardingLink)
	router.Post("/shops/:shopId/login-link", h.AddLoginLink)
	router.Put("/shops/:shopId/ignore", h.UpdateIgnored)
	router.Get("/onboarding/refresh", h.Refresh)
}

func shopIDParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("shopId"), 10, 64)
}

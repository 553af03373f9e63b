package transfer

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/marketpay/stripe-mirakl-connector/pkg/domain/events"
	"github.com/marketpay/stripe-mirakl-connector/pkg/eventbus"
	"github.com/marketpay/stripe-mirakl-connector/webapi"
)

// Handlers exposes the operator-facing transfer trigger.
type Handlers struct {
	bus    eventbus.Bus
	logger *slog.Logger
}

// NewHandlers wires the transfer handlers.
func NewHandlers(bus eventbus.Bus, logger *slog.Logger) *Handlers {
	return &Handlers{bus: bus, logger: logger}
}

// Process publishes a processing instruction for one transfer record. The
// dispatcher delivers it to the processor; the HTTP caller only learns the
// instruction was accepted.
func (h *Handlers) Process(c *fiber.Ctx) error {
	transferID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return webapi.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid transfer id", err.Error())
	}

	if err := h.bus.Publish(c.Context(), events.ProcessTransferRequested{TransferID: transferID}); err != nil {
		return webapi.ErrorResponseJSON(c, webapi.ErrorToStatusCode(err), "Failed to process transfer", err.Error())
	}

	return webapi.SuccessResponseJSON(c, fiber.StatusAccepted, "Transfer processing requested", fiber.Map{
		"transferId": transferID,
	})
}

// MapRoutes registers the transfer routes.
func (h *Handlers) MapRoutes(router fiber.Router) {
	router.Post("/transfers/:id/process", h.Process)
}

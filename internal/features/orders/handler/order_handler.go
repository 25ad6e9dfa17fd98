package handler

import (
	"errors"
	"net/http"

	"order-history/internal/core/logger"
	"order-history/internal/features/orders/domain"
	"order-history/internal/features/orders/poller"
	"order-history/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler exposes the order-history view state over HTTP. It is a thin
// translation layer: all screen state lives in the poller, all backend
// interaction in the service.
type OrderHandler struct {
	// service performs order actions (cancel).
	service *service.OrderService
	// poller owns the list state and the refresh triggers.
	poller *poller.Poller
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s *service.OrderService, p *poller.Poller) *OrderHandler {
	return &OrderHandler{
		service: s,
		poller:  p,
	}
}

// GetOrders returns the current view snapshot.
// @Summary Order history snapshot
// @Description Current order list under the selected filter, plus loading/refreshing/error flags.
// @Produce json
// @Success 200 {object} poller.View
// @Router /orders [get]
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.poller.Snapshot())
}

// Refresh performs a user-initiated refresh and returns the resulting
// snapshot. A failure here is user-visible, unlike background ticks.
// @Summary Manual refresh
// @Description Re-fetches the order list immediately. Does not reset the periodic timer.
// @Produce json
// @Success 200 {object} poller.View
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /orders/refresh [post]
func (h *OrderHandler) Refresh(c *fiber.Ctx) error {
	rayID := rayID(c)

	if err := h.poller.Refresh(c.Context()); err != nil {
		logger.Get().Error("manual refresh failed",
			zap.String("ray_id", rayID),
			zap.Error(err),
		)
		return c.Status(fetchErrorStatus(err)).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID,
		})
	}

	return c.Status(http.StatusOK).JSON(h.poller.Snapshot())
}

// filterRequest is the body of the filter selection endpoint.
type filterRequest struct {
	// Label is the human-readable filter label, e.g. "Out for Delivery".
	Label string `json:"label"`
}

// SetFilter selects the status filter and returns the resulting snapshot.
// @Summary Select status filter
// @Description Sets the filter label; "All" shows every order.
// @Accept json
// @Produce json
// @Param body body filterRequest true "Filter label"
// @Success 200 {object} poller.View
// @Failure 400 {object} ErrorResponse
// @Router /orders/filter [put]
func (h *OrderHandler) SetFilter(c *fiber.Ctx) error {
	rayID := rayID(c)

	var req filterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   rayID,
		})
	}
	if req.Label == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "filter label is required",
			RayID:   rayID,
		})
	}

	h.poller.SetFilter(req.Label)
	return c.Status(http.StatusOK).JSON(h.poller.Snapshot())
}

// CancelOrder asks the backend to cancel an order, then refreshes the list
// so the local copy reflects the backend's view.
// @Summary Cancel an order
// @Description Marks the order cancelled on the backend and re-fetches the list.
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} poller.View
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	rayID := rayID(c)

	orderID := c.Params("id")
	if orderID == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "order ID is required",
			RayID:   rayID,
		})
	}

	if err := h.service.CancelOrder(c.Context(), orderID); err != nil {
		logger.Get().Error("failed to cancel order",
			zap.String("order_id", orderID),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)
		return c.Status(fetchErrorStatus(err)).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID,
		})
	}

	if err := h.poller.Refresh(c.Context()); err != nil {
		// Cancel succeeded; the stale list will be replaced on the next
		// tick, so report success with the current snapshot.
		logger.Get().Warn("refresh after cancel failed",
			zap.String("order_id", orderID),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)
	}

	return c.Status(http.StatusOK).JSON(h.poller.Snapshot())
}

// fetchErrorStatus maps fetch error kinds to HTTP statuses.
func fetchErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNetworkFailure):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrServerRejected),
		errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// rayID extracts the request id set by the requestid middleware.
func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/session"
	"github.com/example/mangabrew/internal/utils"
	"github.com/example/mangabrew/internal/validation"
)

// OrderHandler handles checkout and order history.
type OrderHandler struct {
	checkout *services.CheckoutService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(checkout *services.CheckoutService) *OrderHandler {
	return &OrderHandler{checkout: checkout}
}

// Checkout places a pickup order from the session cart.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	sess := middleware.Current(c)

	var cmd validation.CheckoutCommand
	if err := c.BodyParser(&cmd); err != nil {
		return redirectError(c, "/cart", apperrors.ErrValidation)
	}

	order, err := h.checkout.Checkout(c.UserContext(), &sess.Data.Cart, services.CheckoutInput{
		UserID:        sess.Data.UserID,
		CustomerName:  sess.Data.FullName,
		PickupTime:    cmd.PickupTime,
		PaymentMethod: cmd.PaymentMethod,
		Card: services.CardDetails{
			Number: postBytes(c, "card_number"),
			Expiry: cmd.CardExpiry,
			CVV:    postBytes(c, "card_cvv"),
		},
	})
	if err != nil {
		return redirectError(c, "/cart", err)
	}
	return redirectWith(c, "/orders/"+order.ID.String(), session.FlashSuccess,
		"Order placed successfully! Your order number is "+order.OrderNumber+".")
}

// postBytes copies a urlencoded form value into a slice the caller owns and
// can wipe. The request buffers themselves belong to fasthttp and are
// recycled after the response.
func postBytes(c *fiber.Ctx, key string) []byte {
	return append([]byte(nil), c.Request().PostArgs().Peek(key)...)
}

// ListOrders returns orders for authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c, 20)
	orders, total, err := h.checkout.Orders(c.UserContext(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}

	return view(c, fiber.Map{
		"orders":     orders,
		"pagination": pg.Meta(total),
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	order, err := h.checkout.Order(c.UserContext(), userID, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}
	if err != nil {
		return err
	}
	return view(c, order)
}

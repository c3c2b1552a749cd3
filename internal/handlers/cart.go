package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/mangabrew/internal/cart"
	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/session"
)

// CartHandler exposes the session cart.
type CartHandler struct {
	carts *services.CartService
}

func NewCartHandler(carts *services.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartLine struct {
	Index    int             `json:"index"`
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func cartView(c *cart.Cart) fiber.Map {
	lines := make([]cartLine, 0, len(c.Items))
	for i, item := range c.Items {
		lines = append(lines, cartLine{
			Index:    i,
			ItemID:   item.ItemID.String(),
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal(),
		})
	}
	return fiber.Map{
		"items":      lines,
		"total":      c.Total(),
		"totalItems": c.Count(),
	}
}

// View returns the cart lines and totals.
func (h *CartHandler) View(c *fiber.Ctx) error {
	return view(c, cartView(&middleware.Current(c).Data.Cart))
}

func formInt(c *fiber.Ctx, key string) (int, bool) {
	n, err := strconv.Atoi(c.FormValue(key))
	return n, err == nil
}

// UpdateQuantity is called from the cart page without a reload.
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	index, ok := formInt(c, "index")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, apperrors.ErrInvalidIndex)
	}
	quantity, ok := formInt(c, "quantity")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, apperrors.ErrInvalidQuantity)
	}

	sc := &middleware.Current(c).Data.Cart
	if err := h.carts.UpdateQuantity(c.UserContext(), sc, index, quantity); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"subtotal":   sc.Items[index].Subtotal(),
		"total":      sc.Total(),
		"totalItems": sc.Count(),
	})
}

// RemoveItem drops one line and repacks the remaining indices.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	index, ok := formInt(c, "remove_index")
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, apperrors.ErrInvalidIndex)
	}

	sc := &middleware.Current(c).Data.Cart
	if err := h.carts.Remove(sc, index); err != nil {
		return jsonError(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"total":      sc.Total(),
		"totalItems": sc.Count(),
	})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.carts.Clear(&middleware.Current(c).Data.Cart)
	return redirectWith(c, "/cart", session.FlashSuccess, "Your cart has been cleared.")
}

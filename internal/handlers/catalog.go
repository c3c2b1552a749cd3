package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/session"
)

// CatalogHandler serves the café menu and the manga library.
type CatalogHandler struct {
	carts   *services.CartService
	library *services.LibraryService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(carts *services.CartService, library *services.LibraryService) *CatalogHandler {
	return &CatalogHandler{carts: carts, library: library}
}

type menuItemView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url,omitempty"`
}

type menuSection struct {
	Category string         `json:"category"`
	Items    []menuItemView `json:"items"`
}

// groupMenu folds an already sorted item list into category sections.
func groupMenu(items []models.MenuItem) []menuSection {
	sections := []menuSection{}
	for _, item := range items {
		name := ""
		if item.Category != nil {
			name = item.Category.Name
		}
		if len(sections) == 0 || sections[len(sections)-1].Category != name {
			sections = append(sections, menuSection{Category: name})
		}
		last := &sections[len(sections)-1]
		last.Items = append(last.Items, menuItemView{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Price:       item.Price,
			Stock:       item.Stock,
			ImageURL:    item.ImageURL,
		})
	}
	return sections
}

// Menu lists orderable items grouped by category.
func (h *CatalogHandler) Menu(c *fiber.Ctx) error {
	items, err := h.carts.Menu(c.UserContext())
	if err != nil {
		return err
	}
	return view(c, fiber.Map{
		"menu":       groupMenu(items),
		"cart_count": middleware.Current(c).Data.Cart.Count(),
	})
}

// AddToCart merges the posted item into the session cart.
func (h *CatalogHandler) AddToCart(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.FormValue("item_id"))
	if err != nil {
		return redirectError(c, "/menu", apperrors.ErrItemUnavailable)
	}
	quantity, err := strconv.Atoi(c.FormValue("quantity", "1"))
	if err != nil {
		return redirectError(c, "/menu", apperrors.ErrInvalidQuantity)
	}

	item, err := h.carts.Add(c.UserContext(), &middleware.Current(c).Data.Cart, itemID, quantity)
	if err != nil {
		return redirectError(c, "/menu", err)
	}
	return redirectWith(c, "/menu", session.FlashSuccess, item.Name+" added to cart!")
}

// Library lists manga titles, optionally filtered by genre and title.
func (h *CatalogHandler) Library(c *fiber.Ctx) error {
	lib, err := h.library.Browse(c.UserContext(), c.Query("genre"), c.Query("q"))
	if err != nil {
		return err
	}
	return view(c, lib)
}

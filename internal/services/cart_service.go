package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/example/mangabrew/internal/cart"
	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
)

// CartService applies cart mutations after checking live menu stock.
type CartService struct {
	menu repository.MenuRepository
}

func NewCartService(menu repository.MenuRepository) *CartService {
	return &CartService{menu: menu}
}

// Menu lists the items that can currently be ordered.
func (s *CartService) Menu(ctx context.Context) ([]models.MenuItem, error) {
	return s.menu.ListAvailable(ctx)
}

func (s *CartService) available(ctx context.Context, itemID uuid.UUID) (*models.MenuItem, error) {
	item, err := s.menu.FindByID(ctx, itemID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrItemUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !item.IsAvailable {
		return nil, apperrors.ErrItemUnavailable
	}
	return item, nil
}

// Add puts quantity units of an item in the cart, merging with an existing
// line. The merged quantity must fit the live stock.
func (s *CartService) Add(ctx context.Context, c *cart.Cart, itemID uuid.UUID, quantity int) (*models.MenuItem, error) {
	if !cart.ValidQuantity(quantity) {
		return nil, apperrors.ErrInvalidQuantity
	}
	item, err := s.available(ctx, itemID)
	if err != nil {
		return nil, err
	}

	merged := c.Quantity(itemID) + quantity
	if merged > item.Stock {
		return nil, &apperrors.StockError{Item: item.Name, Available: item.Stock}
	}
	if merged > cart.MaxQuantity {
		return nil, apperrors.ErrInvalidQuantity
	}

	c.Merge(cart.Item{ItemID: item.ID, Name: item.Name, Price: item.Price, Quantity: quantity})
	return item, nil
}

// UpdateQuantity replaces the quantity of the line at index.
func (s *CartService) UpdateQuantity(ctx context.Context, c *cart.Cart, index, quantity int) error {
	line, err := c.At(index)
	if err != nil {
		return err
	}
	if !cart.ValidQuantity(quantity) {
		return apperrors.ErrInvalidQuantity
	}
	item, err := s.available(ctx, line.ItemID)
	if err != nil {
		return err
	}
	if quantity > item.Stock {
		return &apperrors.StockError{Item: item.Name, Available: item.Stock}
	}
	return c.SetQuantity(index, quantity)
}

func (s *CartService) Remove(c *cart.Cart, index int) error {
	return c.Remove(index)
}

func (s *CartService) Clear(c *cart.Cart) {
	c.Clear()
}

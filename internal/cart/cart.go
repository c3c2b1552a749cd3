// Package cart holds the session-scoped shopping cart. Prices are snapshots
// taken when an item is added; lines are addressed by their index.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/example/mangabrew/internal/errors"
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

type Item struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	Items []Item `json:"items"`
}

// ValidQuantity reports whether q is within the per-line bounds.
func ValidQuantity(q int) bool {
	return q >= MinQuantity && q <= MaxQuantity
}

// Quantity returns how many units of itemID are already in the cart.
func (c *Cart) Quantity(itemID uuid.UUID) int {
	for _, it := range c.Items {
		if it.ItemID == itemID {
			return it.Quantity
		}
	}
	return 0
}

// Merge adds item, summing quantities when the item is already present.
func (c *Cart) Merge(item Item) {
	for i := range c.Items {
		if c.Items[i].ItemID == item.ItemID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

func (c *Cart) At(index int) (Item, error) {
	if index < 0 || index >= len(c.Items) {
		return Item{}, apperrors.ErrInvalidIndex
	}
	return c.Items[index], nil
}

func (c *Cart) SetQuantity(index, quantity int) error {
	if index < 0 || index >= len(c.Items) {
		return apperrors.ErrInvalidIndex
	}
	if !ValidQuantity(quantity) {
		return apperrors.ErrInvalidQuantity
	}
	c.Items[index].Quantity = quantity
	return nil
}

// Remove deletes the line at index; later lines shift down by one.
func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.Items) {
		return apperrors.ErrInvalidIndex
	}
	c.Items = append(c.Items[:index:index], c.Items[index+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.Items = nil
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}
